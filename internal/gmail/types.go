package gmail

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/batch"
)

// Verdict is the classifier outcome for one message.
type Verdict string

const (
	VerdictSpam  Verdict = "SPAM"
	VerdictClean Verdict = "CLEAN"
)

// DateLayout is the date format accepted in queries (YYYY/MM/DD).
const DateLayout = "2006/01/02"

// DateRange bounds a harvest. Start is inclusive and End exclusive, following the
// Gmail after:/before: search operators.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two YYYY/MM/DD dates and validates the range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := parseDate("startDate", start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := parseDate("endDate", end)
	if err != nil {
		return DateRange{}, err
	}
	r := DateRange{Start: s, End: e}
	return r, r.Validate()
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Required(field)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be YYYY/MM/DD, got %q", value)
	}
	return t, nil
}

// Validate rejects a zero range and a range whose start is after its end.
func (r DateRange) Validate() error {
	if r.Start.IsZero() {
		return apperr.Required("startDate")
	}
	if r.End.IsZero() {
		return apperr.Required("endDate")
	}
	if r.Start.After(r.End) {
		return apperr.Validation("startDate", "%s is after endDate %s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return nil
}

// Query renders the Gmail search query for the range.
func (r DateRange) Query() string {
	return fmt.Sprintf("after:%s before:%s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

// YesterdayRange returns the UTC range from yesterday to today.
func YesterdayRange(now time.Time) DateRange {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: today.AddDate(0, 0, -1), End: today}
}

// HeaderAnalysis is the per-message harvest result. Exactly one of the analysis
// fields and Error is set.
type HeaderAnalysis struct {
	ID         string   `json:"id"`
	Subject    string   `json:"subject,omitempty"`
	Verdict    Verdict  `json:"verdict,omitempty"`
	Findings   []string `json:"findings,omitempty"`
	SpamReport string   `json:"spamReport,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// HarvestReport is the outcome of one Harvest call.
type HarvestReport struct {
	RunID   string           `json:"runId"`
	Mailbox string           `json:"mailbox"`
	Query   string           `json:"query"`
	Items   []HeaderAnalysis `json:"items"`
	Summary batch.Summary    `json:"summary"`
	Spam    int              `json:"spam"`
}

// Message is the human-readable outcome line, e.g. for an empty listing.
func (r *HarvestReport) Message() string {
	if len(r.Items) == 0 {
		return fmt.Sprintf("no messages matched %s", r.Query)
	}
	return fmt.Sprintf("analyzed %d messages matching %s: %d spam, %d failed",
		r.Summary.Successful, r.Query, r.Spam, r.Summary.Failed)
}
