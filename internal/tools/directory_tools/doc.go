// Package directory_tools exposes the domain user listing as the MCP tool
// listDomainUsers(adminEmail, domain).
//
// Raw directory records never leave the process: the handler masks every record
// before it is rendered, so the envelope carries only masked summary lines.
package directory_tools
