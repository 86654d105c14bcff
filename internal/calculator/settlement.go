package calculator

import (
	"math"
	"sort"
)

// SettleThreshold is the noise floor in minor currency units. Balances
// within this distance of zero are treated as settled; it absorbs the
// fractional-cent rounding the fair-share division introduces.
const SettleThreshold = 10.0

// Transfer is one suggested settlement payment.
type Transfer struct {
	// FromParticipantID / ToParticipantID are stable references.
	FromParticipantID string
	ToParticipantID   string

	// From / To are the display identities the plan is shown with.
	From string
	To   string

	// AmountCents is the transfer amount rounded to whole minor units.
	AmountCents int64
}

// SuggestTransfers reduces the given balances to a small settlement
// plan using greedy largest-first matching.
//
// Debtors are sorted most-negative first, creditors largest first, and
// the two lists are walked with a cursor each: every step transfers
// min(|debtor|, creditor) between the current pair and advances
// whichever side is now within SettleThreshold of zero. The plan has at
// most len(debtors)+len(creditors)-1 transfers; it does not chase the
// theoretical minimum (an NP-hard partition problem) but is small
// enough for a person to review and execute.
//
// Executing the plan settles the tab: re-deriving balances after
// applying every transfer leaves everyone within SettleThreshold of
// zero. The result is deterministic for a fixed input order.
func SuggestTransfers(balances []ParticipantBalance) []Transfer {
	type side struct {
		ParticipantBalance
		remaining float64
	}

	var debtors, creditors []side
	for _, b := range balances {
		switch {
		case b.Balance < -SettleThreshold:
			debtors = append(debtors, side{b, b.Balance})
		case b.Balance > SettleThreshold:
			creditors = append(creditors, side{b, b.Balance})
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].remaining < debtors[j].remaining
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].remaining > creditors[j].remaining
	})

	var transfers []Transfer
	d, c := 0, 0
	for d < len(debtors) && c < len(creditors) {
		debtor := &debtors[d]
		creditor := &creditors[c]

		amount := math.Min(-debtor.remaining, creditor.remaining)
		transfers = append(transfers, Transfer{
			FromParticipantID: debtor.ParticipantID,
			ToParticipantID:   creditor.ParticipantID,
			From:              debtor.DisplayName,
			To:                creditor.DisplayName,
			AmountCents:       int64(math.Round(amount)),
		})

		debtor.remaining += amount
		creditor.remaining -= amount

		if math.Abs(debtor.remaining) < SettleThreshold {
			d++
		}
		if creditor.remaining < SettleThreshold {
			c++
		}
	}

	return transfers
}
