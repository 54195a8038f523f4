package gmail

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/batch"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantField string
		wantQuery string
	}{
		{name: "valid", start: "2024/05/01", end: "2024/05/02", wantQuery: "after:2024/05/01 before:2024/05/02"},
		{name: "same day", start: "2024/05/01", end: "2024/05/01", wantQuery: "after:2024/05/01 before:2024/05/01"},
		{name: "trimmed", start: " 2024/05/01 ", end: "2024/05/03", wantQuery: "after:2024/05/01 before:2024/05/03"},
		{name: "missing start", start: "", end: "2024/05/02", wantField: "startDate"},
		{name: "missing end", start: "2024/05/01", end: "  ", wantField: "endDate"},
		{name: "dashes", start: "2024-05-01", end: "2024/05/02", wantField: "startDate"},
		{name: "bad end", start: "2024/05/01", end: "2024/13/40", wantField: "endDate"},
		{name: "start after end", start: "2024/05/03", end: "2024/05/02", wantField: "startDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseDateRange(tt.start, tt.end)
			if tt.wantField != "" {
				var valErr *apperr.ValidationError
				require.True(t, errors.As(err, &valErr), "got %v", err)
				assert.Equal(t, tt.wantField, valErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, r.Query())
		})
	}
}

func TestDateRange_ValidateZero(t *testing.T) {
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(DateRange{}.Validate()))
}

func TestYesterdayRange(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	// 2024-05-02 03:00 in Seoul is still 2024-05-01 in UTC.
	now := time.Date(2024, 5, 2, 3, 0, 0, 0, seoul)

	r := YesterdayRange(now)
	assert.Equal(t, "after:2024/04/30 before:2024/05/01", r.Query())
	require.NoError(t, r.Validate())
}

func TestHarvestReport_Message(t *testing.T) {
	empty := &HarvestReport{Query: "after:2024/05/01 before:2024/05/02", Items: []HeaderAnalysis{}}
	assert.Equal(t, "no messages matched after:2024/05/01 before:2024/05/02", empty.Message())

	report := &HarvestReport{
		Query:   "after:2024/05/01 before:2024/05/02",
		Items:   make([]HeaderAnalysis, 3),
		Summary: batch.Summary{Total: 3, Successful: 2, Failed: 1},
		Spam:    1,
	}
	assert.Equal(t, "analyzed 2 messages matching after:2024/05/01 before:2024/05/02: 1 spam, 1 failed", report.Message())
}
