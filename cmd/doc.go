// Package cmd implements the command-line interface for workspace-console.
//
// This package provides the following commands:
//   - serve: Start the MCP server (stdio or streamable-http)
//   - harvest: Retrieve and classify the mail headers of a mailbox for a date range
//   - users: List the users of a domain with masked addresses
//   - verify: Check whether a user's access token belongs to a super administrator
//   - route: Show which tools the keyword router selects for a request
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Configuration is read from --config-dir (base.yaml, <env>.yaml, secrets.env)
// and WORKSPACE_CONSOLE_* environment variables. Flags win.
package cmd
