package models

// Expense is a single outlay paid by one participant on behalf of the
// tab. Expenses are immutable: there is no edit or delete path.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TabID is the tab the expense belongs to.
	TabID string

	// PayerParticipantID references a Participant of the same tab.
	PayerParticipantID string

	// Description is the human-readable label (e.g. "Groceries").
	Description string

	// AmountCents is the amount in minor currency units. Never negative;
	// zero is accepted and contributes nothing to balances.
	AmountCents int64

	// Date is the Unix timestamp of when the expense occurred.
	Date int64

	// ReceiptRef is an opaque reference to an uploaded receipt, supplied
	// by the caller's upload handling. Empty when no receipt was attached.
	ReceiptRef string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

// Payment is a direct transfer from one participant to another, recorded
// to offset balances (e.g. settling up in cash). Immutable once created.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// TabID is the tab the payment belongs to.
	TabID string

	// FromParticipantID is the sender; must belong to the tab.
	FromParticipantID string

	// ToParticipantID is the recipient; must belong to the tab and
	// differ from the sender.
	ToParticipantID string

	// AmountCents is the amount in minor currency units, never negative.
	AmountCents int64

	// ProofRef is an opaque reference to an uploaded proof of payment.
	ProofRef string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}
