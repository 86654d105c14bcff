package service

import (
	"context"
	"log/slog"

	"github.com/grouptab/grouptab/internal/calculator"
	"github.com/grouptab/grouptab/internal/models"
)

// SettlementResult is a tab's current balances plus the suggested
// transfers that would settle them.
type SettlementResult struct {
	Balances  []calculator.ParticipantBalance
	Transfers []calculator.Transfer
}

// Settlement loads a consistent snapshot of the tab and runs the
// balance calculator and settlement optimizer over it. Display
// identities are resolved here: guest name for guests, the registered
// display name where one exists, otherwise the participant id.
func (s *TabService) Settlement(ctx context.Context, tabID string) (*SettlementResult, error) {
	detail, err := s.GetTab(ctx, tabID)
	if err != nil {
		return nil, err
	}

	names, err := s.displayNames(ctx, detail.Participants)
	if err != nil {
		return nil, err
	}

	participants := make([]calculator.Participant, len(detail.Participants))
	for i, p := range detail.Participants {
		participants[i] = calculator.Participant{
			ID:          p.ID,
			DisplayName: names[p.ID],
		}
	}

	expenses := make([]calculator.Expense, len(detail.Expenses))
	for i, e := range detail.Expenses {
		expenses[i] = calculator.Expense{
			PayerParticipantID: e.PayerParticipantID,
			AmountCents:        e.AmountCents,
		}
	}

	payments := make([]calculator.Payment, len(detail.Payments))
	for i, p := range detail.Payments {
		payments[i] = calculator.Payment{
			FromParticipantID: p.FromParticipantID,
			ToParticipantID:   p.ToParticipantID,
			AmountCents:       p.AmountCents,
		}
	}

	balances := calculator.ComputeBalances(participants, expenses, payments)
	transfers := calculator.SuggestTransfers(balances)

	slog.Info("Settlement computed",
		"tab_id", tabID,
		"participants", len(participants),
		"transfers", len(transfers),
	)

	return &SettlementResult{Balances: balances, Transfers: transfers}, nil
}

// displayNames maps participant id to display identity.
func (s *TabService) displayNames(ctx context.Context, participants []*models.Participant) (map[string]string, error) {
	var userIDs []string
	for _, p := range participants {
		if !p.IsGuest() {
			userIDs = append(userIDs, p.UserID)
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(participants))
	for _, p := range participants {
		if u, ok := users[p.UserID]; ok && u.DisplayName != "" {
			names[p.ID] = u.DisplayName
			continue
		}
		names[p.ID] = p.DisplayRef()
	}
	return names, nil
}
