package directory

// UserRecord is the subset of a Workspace directory user this package exposes.
type UserRecord struct {
	// PrimaryEmail is the user's primary address
	PrimaryEmail string `json:"primaryEmail"`

	// Aliases are additional addresses for the user
	Aliases []string `json:"aliases,omitempty"`

	// IsAdmin is true for super administrators
	IsAdmin bool `json:"isAdmin"`

	// Suspended is true when the account is suspended
	Suspended bool `json:"suspended"`
}

// MaskedUserRecord is a UserRecord with its addresses masked and flags rendered as labels.
type MaskedUserRecord struct {
	MaskedEmail  string `json:"maskedEmail"`
	AliasSummary string `json:"aliasSummary"`
	RoleLabel    string `json:"role"`
	StatusLabel  string `json:"status"`
}

// MaskResult is the masked view of a user listing.
type MaskResult struct {
	Summaries []string `json:"userSummaryList"`
	Count     int      `json:"userCount"`
}

// Labels used in masked summaries.
const (
	RoleAdmin       = "Admin"
	RoleUser        = "User"
	StatusSuspended = "Suspended"
	StatusActive    = "Active"
	NoAliases       = "none"
)
