package common

import "strings"

// Argument names shared by several tools.
const (
	ArgAdminEmail  = "adminEmail"
	ArgMailboxID   = "mailboxId"
	ArgDomain      = "domain"
	ArgStartDate   = "startDate"
	ArgEndDate     = "endDate"
	ArgAccessToken = "accessToken"
	ArgRequest     = "request"
)

// StringArg returns the trimmed string argument name, or "" when it is missing
// or not a string.
func StringArg(args map[string]any, name string) string {
	v, ok := args[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// AdminEmailFromArgs returns the delegated administrator a call acts as, if any.
func AdminEmailFromArgs(args map[string]any) string {
	return StringArg(args, ArgAdminEmail)
}
