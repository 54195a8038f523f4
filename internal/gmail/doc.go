// Package gmail retrieves raw message headers from a delegated mailbox and
// classifies them for spam signals.
//
// Classify is a pure function over a header block: it reports failed SPF, DKIM
// and DMARC checks from Authentication-Results and counts Received hops.
//
// Harvester drives the Gmail API: it acquires a gmail.readonly credential for a
// Workspace administrator, lists every message id matching a date range across
// all result pages, fetches each message in raw format with a bounded worker pool
// and classifies it. Results keep listing order and a failed message never aborts
// the rest of the batch.
//
// Example usage:
//
//	h := gmail.NewHarvester(gmail.HarvesterConfig{Credentials: broker})
//	r, err := gmail.ParseDateRange("2024/05/01", "2024/05/02")
//	if err != nil {
//	    return err
//	}
//	report, err := h.Harvest(ctx, "admin@example.com", "user@example.com", r)
package gmail
