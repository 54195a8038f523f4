package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"long local part", "alice.smith@example.com", "ali***@example.com"},
		{"three characters", "bob@example.com", "bob***@example.com"},
		{"short local part", "al@example.com", "al***@example.com"},
		{"empty local part", "@example.com", "***@example.com"},
		{"multibyte local part", "김철수님@example.kr", "김철수***@example.kr"},
		{"no at sign", "not-an-email", "not-an-email"},
		{"two at signs", "a@b@example.com", "a@b@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.email))
		})
	}
}

func TestMask(t *testing.T) {
	records := []UserRecord{
		{PrimaryEmail: "alice@example.com", Aliases: []string{"ali@example.com", "a.smith@example.com"}, IsAdmin: true},
		{PrimaryEmail: "bob@example.com", Suspended: true},
	}

	got := Mask(records)

	assert.Equal(t, 2, got.Count)
	assert.Equal(t, []string{
		"Email: ali***@example.com | Aliases: ali***@example.com, a.s***@example.com | Role: Admin | Status: Active",
		"Email: bob***@example.com | Aliases: none | Role: User | Status: Suspended",
	}, got.Summaries)
	assert.Equal(t, "found 2 users", got.Message())
}

func TestMask_Empty(t *testing.T) {
	got := Mask(nil)

	assert.Equal(t, 0, got.Count)
	assert.NotNil(t, got.Summaries)
	assert.Empty(t, got.Summaries)
	assert.Equal(t, "no users found", got.Message())
}

func TestMaskRecord(t *testing.T) {
	got := MaskRecord(UserRecord{PrimaryEmail: "carol@example.com", IsAdmin: true, Suspended: true})

	assert.Equal(t, MaskedUserRecord{
		MaskedEmail:  "car***@example.com",
		AliasSummary: NoAliases,
		RoleLabel:    RoleAdmin,
		StatusLabel:  StatusSuspended,
	}, got)
}

func TestMask_NeverLeaksFullAddress(t *testing.T) {
	records := []UserRecord{{PrimaryEmail: "dorothy@example.com", Aliases: []string{"dottie@example.com"}}}
	for _, line := range Mask(records).Summaries {
		assert.NotContains(t, line, "dorothy@")
		assert.NotContains(t, line, "dottie@")
	}
}
