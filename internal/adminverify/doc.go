// Package adminverify decides whether the signed-in end user is a Workspace super
// administrator and remembers the answer for the rest of the MCP session.
//
// The first verification in a session resolves the user's email from the OpenID
// userinfo endpoint and reads their directory record with the administrator view,
// both with the user's own access token. The verdict is stored write-once in the
// session under the "auth_agent" namespace; later calls return it without any
// network traffic. Failures are reported as messages and are never cached.
package adminverify
