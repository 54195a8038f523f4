// Package google obtains credentials for Google Workspace APIs.
//
// Two kinds of credentials are handled:
//
//   - Delegated service-account credentials (CredentialBroker): a service account with
//     domain-wide delegation impersonates a Workspace administrator. Each Acquire call
//     performs one token exchange and the resulting Credential belongs to the caller.
//   - End-user bearer tokens: obtained through the interactive OAuth flow
//     (UserOAuthConfig) or forwarded by an upstream front-end and kept per MCP session
//     in an mcp-oauth token store (SessionTokenProvider).
//
// Tokens are never logged and never written to disk by this package.
package google
