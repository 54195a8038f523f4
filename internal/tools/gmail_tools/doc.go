// Package gmail_tools exposes the mail header harvester as MCP tools.
//
//   - listEmailsAndAnalyze(adminEmail, mailboxId, startDate, endDate)
//   - listYesterdaysEmails(adminEmail, mailboxId)
//
// Both return the JSON envelope whose data is one entry per message: either the
// subject, verdict, findings and spam report, or the id and the error that kept
// the message from being analyzed.
package gmail_tools
