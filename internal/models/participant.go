package models

// Role is a participant's standing within a tab.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleMember    Role = "member"
	RoleGuest     Role = "guest"
)

// Participant represents one person's membership in exactly one Tab.
// Rows are immutable once created.
//
// Identity is a two-variant sum: a registered participant has UserID set
// and GuestName/Token empty; a guest has GuestName and Token set and no
// UserID. The two are mutually exclusive, never both.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// TabID is the tab this membership belongs to. Immutable.
	TabID string

	// Role is organizer, member, or guest. The tab creator is always the
	// organizer; joins create members (registered) or guests (anonymous).
	Role Role

	// UserID references the registered user, if any.
	UserID string

	// GuestName is the display name a guest joined under.
	GuestName string

	// Token is the guest's magic-link credential: 16 random bytes, hex
	// encoded, unique across the store. Empty for registered participants.
	// Losing it means losing the identity; there is no recovery path.
	Token string

	// JoinedAt is the Unix timestamp when the participant was created.
	JoinedAt int64
}

// IsGuest reports whether the participant joined without a user account.
func (p *Participant) IsGuest() bool {
	return p.UserID == ""
}

// DisplayRef is the stable display identity for settlement output: the
// guest's name when the participant is a guest, otherwise the participant
// id (callers resolve registered display names from the users table).
func (p *Participant) DisplayRef() string {
	if p.IsGuest() && p.GuestName != "" {
		return p.GuestName
	}
	return p.ID
}
