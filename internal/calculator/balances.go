// Package calculator derives participant balances from a tab's ledger
// and turns them into a small set of suggested settlement transfers.
//
// Both entry points are pure functions of their inputs: no I/O, no
// shared state, deterministic for a fixed input order. They operate on
// minimal view structs so they can be tested without any storage.
package calculator

// Participant is the minimal participant view needed for balance
// calculations: a stable id plus the display identity settlement output
// names (guest name, or a resolved registered display name).
type Participant struct {
	ID          string
	DisplayName string
}

// Expense is the minimal expense view: who paid, and how much.
type Expense struct {
	PayerParticipantID string
	AmountCents        int64
}

// Payment is the minimal payment view: sender, recipient, amount.
type Payment struct {
	FromParticipantID string
	ToParticipantID   string
	AmountCents       int64
}

// ParticipantBalance is one participant's net position.
//
// Balance is in minor currency units but float-valued: the fair share is
// a real division of the expense total, so individual balances carry up
// to a fraction of a cent of rounding. The sum of all balances is zero
// up to that rounding, bounded by (participant count - 1) cents.
type ParticipantBalance struct {
	ParticipantID string
	DisplayName   string

	// Balance is paid minus fair share. Positive = net creditor (owed
	// money), negative = net debtor (owes money).
	Balance float64

	// PaidCents is the participant's gross contribution: expenses paid
	// plus payments sent minus payments received.
	PaidCents int64
}

// ComputeBalances derives each participant's net balance under the
// equal-split policy.
//
// fairShare = totalExpenses / participantCount (0 when the tab has no
// participants). paid(p) = expenses paid by p + payments sent by p -
// payments received by p. balance(p) = paid(p) - fairShare.
//
// Output order follows the input participant order; expenses or
// payments referencing unknown participants are ignored rather than
// invented into the result (the store's referential invariants make
// that unreachable in practice).
func ComputeBalances(participants []Participant, expenses []Expense, payments []Payment) []ParticipantBalance {
	if len(participants) == 0 {
		return nil
	}

	paid := make(map[string]int64, len(participants))
	for _, p := range participants {
		paid[p.ID] = 0
	}

	var total int64
	for _, e := range expenses {
		total += e.AmountCents
		if _, ok := paid[e.PayerParticipantID]; ok {
			paid[e.PayerParticipantID] += e.AmountCents
		}
	}

	for _, pm := range payments {
		if _, ok := paid[pm.FromParticipantID]; ok {
			paid[pm.FromParticipantID] += pm.AmountCents
		}
		if _, ok := paid[pm.ToParticipantID]; ok {
			paid[pm.ToParticipantID] -= pm.AmountCents
		}
	}

	fairShare := float64(total) / float64(len(participants))

	balances := make([]ParticipantBalance, 0, len(participants))
	for _, p := range participants {
		balances = append(balances, ParticipantBalance{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			Balance:       float64(paid[p.ID]) - fairShare,
			PaidCents:     paid[p.ID],
		})
	}

	return balances
}
