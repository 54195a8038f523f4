// Package admin_tools exposes the super-admin verification and the keyword
// router as MCP tools:
//
//   - verifySuperAdminStatus(accessToken?): verifies the signed-in user once per
//     MCP session and returns the verdict message
//   - routeRequest(request): tells the agent which tools serve a request, given the
//     session's verification
package admin_tools
