package google

// OAuth scopes used by the workspace tools.
const (
	// ScopeGmailReadonly allows listing and reading raw messages of a delegated mailbox.
	ScopeGmailReadonly = "https://www.googleapis.com/auth/gmail.readonly"

	// ScopeDirectoryUserReadonly allows listing and reading directory users.
	ScopeDirectoryUserReadonly = "https://www.googleapis.com/auth/admin.directory.user.readonly"

	// ScopeUserInfoEmail allows resolving the caller's email from a bearer token.
	ScopeUserInfoEmail = "https://www.googleapis.com/auth/userinfo.email"

	// ScopeOpenID is required alongside userinfo.email for the OpenID userinfo endpoint.
	ScopeOpenID = "openid"
)

// DefaultOAuthScopes are requested by the interactive user flow.
// The user's token is used for identity and for the admin lookup on their own record.
var DefaultOAuthScopes = []string{
	ScopeOpenID,
	ScopeUserInfoEmail,
	ScopeDirectoryUserReadonly,
}
