// Package router maps a free-text request to the tools that can serve it.
//
// Routing is keyword based and best effort. Requests unrelated to Workspace
// administration are declined; related ones require a super-admin verification
// first, then go to the user or mail tools.
package router

import (
	"strings"

	"github.com/teemow/workspace-console/internal/adminverify"
)

// Route names a routing outcome.
type Route string

const (
	RouteVerify  Route = "verify"
	RouteDenied  Route = "denied"
	RouteUsers   Route = "users"
	RouteMail    Route = "mail"
	RouteDecline Route = "decline"
)

// Tool names the router can select.
const (
	ToolVerify         = "verifySuperAdminStatus"
	ToolListUsers      = "listDomainUsers"
	ToolAnalyzeEmails  = "listEmailsAndAnalyze"
	ToolYesterdayMails = "listYesterdaysEmails"
)

// Messages attached to decisions that do not run a task.
const (
	MsgVerifyFirst = "Super administrator status must be verified before this request can be handled."
	MsgDenied      = "Sorry, super administrator privileges are required to perform this task."
	MsgDecline     = "I can only help with Google Workspace administration, such as listing domain users or analyzing mail headers. Could you rephrase your request?"
)

// Decision is the routing result.
type Decision struct {
	Route   Route    `json:"route"`
	Tools   []string `json:"tools,omitempty"`
	Message string   `json:"message,omitempty"`
	Keyword string   `json:"keyword,omitempty"`
}

var (
	userKeywords = []string{"users", "user", "directory", "account", "member", "사용자 목록", "사용자", "계정", "디렉터리"}
	mailKeywords = []string{"email", "e-mail", "mail", "spam", "header", "period", "inbox", "메일", "이메일", "스팸", "헤더", "기간"}
)

// Decide decides how to handle text given the session's verification, which is
// nil when the session has not been verified yet.
func Decide(text string, v *adminverify.Verification) Decision {
	target, keyword := classify(text)
	if target == RouteDecline {
		return Decision{Route: RouteDecline, Message: MsgDecline}
	}

	if v == nil {
		return Decision{Route: RouteVerify, Tools: []string{ToolVerify}, Message: MsgVerifyFirst, Keyword: keyword}
	}
	if !v.IsSuperAdmin {
		return Decision{Route: RouteDenied, Message: MsgDenied, Keyword: keyword}
	}

	d := Decision{Route: target, Keyword: keyword}
	switch target {
	case RouteUsers:
		d.Tools = []string{ToolListUsers}
	case RouteMail:
		d.Tools = []string{ToolAnalyzeEmails, ToolYesterdayMails}
	}
	return d
}

// classify returns the task route for text and the keyword that selected it.
// User keywords are checked first so "user mail settings" lists users.
func classify(text string) (Route, string) {
	lower := strings.ToLower(text)
	for _, kw := range userKeywords {
		if strings.Contains(lower, kw) {
			return RouteUsers, kw
		}
	}
	for _, kw := range mailKeywords {
		if strings.Contains(lower, kw) {
			return RouteMail, kw
		}
	}
	return RouteDecline, ""
}
