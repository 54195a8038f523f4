package instrumentation

import "strings"

// Metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	CredentialResultSuccess = "success"
	CredentialResultFailure = "failure"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Google services and operations used as labels and span names.
const (
	ServiceGmail     = "gmail"
	ServiceDirectory = "directory"
	ServiceUserInfo  = "userinfo"

	OperationList = "list"
	OperationGet  = "get"
)

// unknownDomain labels addresses without a domain part.
const unknownDomain = "unknown"

// DomainOf returns the domain of an email address, or "unknown". Metrics and
// spans carry domains only, never full addresses.
func DomainOf(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return unknownDomain
	}
	return strings.ToLower(domain)
}
