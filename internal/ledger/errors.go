// Package ledger defines the domain error kinds shared by the storage,
// service, and HTTP layers. They are business-level failures, not system
// errors; the HTTP layer maps each to a status code in one place. Nothing
// is retried internally, and a failed mutation leaves the store exactly as
// it was.
package ledger

import "errors"

var (
	// ErrInvalidInput means a required field is missing or malformed
	// (blank title, unknown tab type, from == to, negative amount).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the tab does not exist.
	ErrNotFound = errors.New("tab not found")

	// ErrNotAParticipant means a referenced participant id does not
	// belong to the tab.
	ErrNotAParticipant = errors.New("not a participant of this tab")

	// ErrNotAMember means the authenticated user has no participant row
	// for the tab. Distinct from being unauthenticated.
	ErrNotAMember = errors.New("not a member of this tab")

	// ErrInvalidToken means the guest token matches no participant.
	ErrInvalidToken = errors.New("invalid guest token")

	// ErrForbidden means the operation is not permitted for the resolved
	// identity (e.g. a guest adding an expense).
	ErrForbidden = errors.New("operation not permitted")

	// ErrAuthRequired means an anonymous caller hit an operation that
	// requires an identity.
	ErrAuthRequired = errors.New("authentication required")
)
