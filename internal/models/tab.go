package models

// TabType distinguishes the two ledger flavors a tab can have.
type TabType string

const (
	// TabTypeOneBill is a single shared bill split equally.
	TabTypeOneBill TabType = "one_bill"

	// TabTypeTrip is a running ledger for a multi-expense activity.
	TabTypeTrip TabType = "trip"
)

// Valid reports whether t is a known tab type.
func (t TabType) Valid() bool {
	return t == TabTypeOneBill || t == TabTypeTrip
}

// TabStatus is the lifecycle state of a tab.
type TabStatus string

const (
	TabStatusActive TabStatus = "active"
	TabStatusClosed TabStatus = "closed"
)

// Tab represents a shared ledger for one group activity.
// Tabs are created by a registered user, mutated only by status
// transitions, and never deleted.
type Tab struct {
	// ID is the unique identifier for the tab (UUID format).
	ID string

	// CreatorUserID is the registered user who created the tab.
	// The creator always has an organizer Participant row.
	CreatorUserID string

	// Title is the human-readable name of the tab.
	Title string

	// Type selects the config variant and the tab's UI flavor.
	Type TabType

	// Status is active or closed. Closed tabs accept no new entries.
	Status TabStatus

	// Config is the type-dependent configuration. Its variant must
	// match Type; see TabConfig.
	Config TabConfig

	// CreatedAt is the Unix timestamp when the tab was created.
	CreatedAt int64
}

// TabSummary is a Tab decorated with derived read-side data for listings.
type TabSummary struct {
	Tab

	// ParticipantCount is the live number of participants, derived at
	// read time rather than stored.
	ParticipantCount int
}
