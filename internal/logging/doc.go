// Package logging builds the process slog logger and holds the attribute
// helpers every component logs with.
//
// Addresses never appear in logs: use UserHash for a stable pseudonym or
// Domain for the Workspace domain. Tokens are described by length only.
//
//	logger, err := logging.New("info", "json", os.Stderr)
//	logger = logging.WithOperation(logger, "gmail.harvest")
//	logger.Info("harvest completed", logging.Domain(adminEmail), logging.Status(logging.StatusSuccess))
package logging
