package directory

import (
	"fmt"
	"strings"
)

const visibleLocalRunes = 3

// MaskEmail keeps the first three characters of the local part and the whole domain,
// e.g. "alice@example.com" becomes "ali***@example.com". Input that does not contain
// exactly one "@" is returned unchanged.
func MaskEmail(email string) string {
	if strings.Count(email, "@") != 1 {
		return email
	}
	local, domain, _ := strings.Cut(email, "@")
	runes := []rune(local)
	if len(runes) > visibleLocalRunes {
		runes = runes[:visibleLocalRunes]
	}
	return string(runes) + "***@" + domain
}

// MaskRecord masks one record.
func MaskRecord(r UserRecord) MaskedUserRecord {
	aliases := NoAliases
	if len(r.Aliases) > 0 {
		masked := make([]string, len(r.Aliases))
		for i, a := range r.Aliases {
			masked[i] = MaskEmail(a)
		}
		aliases = strings.Join(masked, ", ")
	}

	role := RoleUser
	if r.IsAdmin {
		role = RoleAdmin
	}
	status := StatusActive
	if r.Suspended {
		status = StatusSuspended
	}

	return MaskedUserRecord{
		MaskedEmail:  MaskEmail(r.PrimaryEmail),
		AliasSummary: aliases,
		RoleLabel:    role,
		StatusLabel:  status,
	}
}

// Summary renders the masked record as a single line.
func (m MaskedUserRecord) Summary() string {
	return fmt.Sprintf("Email: %s | Aliases: %s | Role: %s | Status: %s",
		m.MaskedEmail, m.AliasSummary, m.RoleLabel, m.StatusLabel)
}

// Mask turns a listing into one summary line per record, in input order.
func Mask(records []UserRecord) MaskResult {
	summaries := make([]string, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, MaskRecord(r).Summary())
	}
	return MaskResult{Summaries: summaries, Count: len(records)}
}

// Message is the human-readable outcome line.
func (r MaskResult) Message() string {
	if r.Count == 0 {
		return "no users found"
	}
	return fmt.Sprintf("found %d users", r.Count)
}
