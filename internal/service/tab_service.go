// Package service implements the ledger operations over storage.Store:
// tab lifecycle, joins, expense and payment recording, and settlement.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/grouptab/grouptab/internal/identity"
	"github.com/grouptab/grouptab/internal/ledger"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/storage"
)

// maxTokenAttempts bounds the retry loop on guest token collisions.
// A collision needs two identical 128-bit values, so one retry is
// already overkill; the loop exists so a collision is never silently
// ignored.
const maxTokenAttempts = 3

// TabService implements the ledger operations. All mutations run as
// transactions against the store; a failed call leaves it untouched.
type TabService struct {
	store  storage.Store
	tokens *identity.TokenMinter
}

// NewTabService creates a TabService with the given storage backend and
// guest token minter.
func NewTabService(store storage.Store, tokens *identity.TokenMinter) *TabService {
	return &TabService{store: store, tokens: tokens}
}

// CreateTab creates a tab and its organizer participant atomically.
// The creator must be a registered user; the tab is never observable
// without its organizer row.
func (s *TabService) CreateTab(ctx context.Context, creatorUserID, title string, typ models.TabType, config *models.TabConfig) (*models.Tab, error) {
	if creatorUserID == "" {
		return nil, ledger.ErrAuthRequired
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title required", ledger.ErrInvalidInput)
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown tab type %q", ledger.ErrInvalidInput, typ)
	}

	cfg := models.DefaultTabConfig(typ)
	if config != nil && !config.IsZero() {
		if err := config.Validate(typ); err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err)
		}
		cfg = *config
	}

	tab := &models.Tab{
		CreatorUserID: creatorUserID,
		Title:         strings.TrimSpace(title),
		Type:          typ,
		Status:        models.TabStatusActive,
		Config:        cfg,
	}
	organizer := &models.Participant{
		Role:   models.RoleOrganizer,
		UserID: creatorUserID,
	}

	if err := s.store.CreateTab(ctx, tab, organizer); err != nil {
		slog.Error("CreateTab failed", "creator", creatorUserID, "error", err)
		return nil, err
	}

	slog.Info("Tab created", "tab_id", tab.ID, "type", tab.Type, "creator", creatorUserID)
	return tab, nil
}

// ListTabs returns the tabs the user participates in, newest first,
// each decorated with its live participant count.
func (s *TabService) ListTabs(ctx context.Context, userID string) ([]*models.TabSummary, error) {
	if userID == "" {
		return nil, ledger.ErrAuthRequired
	}
	return s.store.ListTabsByUser(ctx, userID)
}

// TabDetail is the full snapshot of one tab.
type TabDetail struct {
	Tab          *models.Tab
	Participants []*models.Participant
	Expenses     []*models.Expense // ordered by occurrence date descending
	Payments     []*models.Payment
}

// GetTab returns a tab with its participants, expenses, and payments.
// No authorization happens at this layer; the caller decides how much
// of the detail to expose based on the resolved identity.
func (s *TabService) GetTab(ctx context.Context, tabID string) (*TabDetail, error) {
	tab, err := s.store.GetTab(ctx, tabID)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.ListParticipants(ctx, tabID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, tabID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, tabID)
	if err != nil {
		return nil, err
	}

	return &TabDetail{
		Tab:          tab,
		Participants: participants,
		Expenses:     expenses,
		Payments:     payments,
	}, nil
}

// JoinAsMember adds the user to the tab as a member. Idempotent: if the
// user already has a participant row it is returned unchanged.
func (s *TabService) JoinAsMember(ctx context.Context, tabID, userID string) (*models.Participant, error) {
	if userID == "" {
		return nil, ledger.ErrAuthRequired
	}
	if _, err := s.store.GetTab(ctx, tabID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetParticipantByUser(ctx, tabID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	p := &models.Participant{
		TabID:  tabID,
		Role:   models.RoleMember,
		UserID: userID,
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		slog.Error("JoinAsMember failed", "tab_id", tabID, "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Member joined", "tab_id", tabID, "participant_id", p.ID)
	return p, nil
}

// JoinAsGuestByName creates a guest participant identified by a freshly
// minted magic-link token and returns both. The token is the guest's
// only credential; the caller is responsible for delivering it.
func (s *TabService) JoinAsGuestByName(ctx context.Context, tabID, name string) (*models.Participant, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name required", ledger.ErrInvalidInput)
	}
	if _, err := s.store.GetTab(ctx, tabID); err != nil {
		return nil, "", err
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.tokens.Mint()
		if err != nil {
			return nil, "", err
		}

		p := &models.Participant{
			TabID:     tabID,
			Role:      models.RoleGuest,
			GuestName: name,
			Token:     token,
		}
		err = s.store.CreateParticipant(ctx, p)
		if errors.Is(err, storage.ErrTokenExists) {
			slog.Warn("Guest token collision, re-minting", "tab_id", tabID, "attempt", attempt)
			continue
		}
		if err != nil {
			slog.Error("JoinAsGuestByName failed", "tab_id", tabID, "error", err)
			return nil, "", err
		}

		slog.Info("Guest joined", "tab_id", tabID, "participant_id", p.ID)
		return p, token, nil
	}

	return nil, "", fmt.Errorf("failed to mint a unique guest token after %d attempts", maxTokenAttempts)
}

// ReclaimGuestByToken returns the existing guest participant for the
// token. It never creates a new identity; an unknown token is
// InvalidToken.
func (s *TabService) ReclaimGuestByToken(ctx context.Context, tabID, token string) (*models.Participant, error) {
	if _, err := s.store.GetTab(ctx, tabID); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ledger.ErrInvalidToken
	}

	p, err := s.store.GetParticipantByToken(ctx, tabID, token)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ledger.ErrInvalidToken
	}
	return p, nil
}

// AddExpense records an outlay paid by payerParticipantID on behalf of
// the tab. Only resolved members and organizers may add expenses;
// guests and anonymous callers are Forbidden.
func (s *TabService) AddExpense(ctx context.Context, tabID string, caller *models.Participant, payerParticipantID, description string, amountCents int64, receiptRef string) (*models.Expense, error) {
	if caller == nil || caller.IsGuest() {
		return nil, fmt.Errorf("%w: expenses require a registered participant", ledger.ErrForbidden)
	}

	tab, err := s.store.GetTab(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if tab.Status == models.TabStatusClosed {
		return nil, fmt.Errorf("%w: tab is closed", ledger.ErrForbidden)
	}

	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description required", ledger.ErrInvalidInput)
	}
	if amountCents < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ledger.ErrInvalidInput)
	}

	payer, err := s.store.GetParticipant(ctx, tabID, payerParticipantID)
	if err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, fmt.Errorf("%w: payer %s", ledger.ErrNotAParticipant, payerParticipantID)
	}

	expense := &models.Expense{
		TabID:              tabID,
		PayerParticipantID: payer.ID,
		Description:        strings.TrimSpace(description),
		AmountCents:        amountCents,
		ReceiptRef:         receiptRef,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "tab_id", tabID, "error", err)
		return nil, err
	}

	slog.Info("Expense added", "tab_id", tabID, "expense_id", expense.ID, "amount_cents", expense.AmountCents)
	return expense, nil
}

// AddPayment records a direct transfer from the caller to another
// participant of the same tab. Guests may record payments.
func (s *TabService) AddPayment(ctx context.Context, tabID string, caller *models.Participant, toParticipantID string, amountCents int64, proofRef string) (*models.Payment, error) {
	if caller == nil {
		return nil, ledger.ErrAuthRequired
	}
	if caller.TabID != tabID {
		return nil, fmt.Errorf("%w: sender %s", ledger.ErrNotAParticipant, caller.ID)
	}

	tab, err := s.store.GetTab(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if tab.Status == models.TabStatusClosed {
		return nil, fmt.Errorf("%w: tab is closed", ledger.ErrForbidden)
	}

	if amountCents < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ledger.ErrInvalidInput)
	}
	if toParticipantID == caller.ID {
		return nil, fmt.Errorf("%w: cannot pay yourself", ledger.ErrInvalidInput)
	}

	to, err := s.store.GetParticipant(ctx, tabID, toParticipantID)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, fmt.Errorf("%w: recipient %s", ledger.ErrNotAParticipant, toParticipantID)
	}

	payment := &models.Payment{
		TabID:             tabID,
		FromParticipantID: caller.ID,
		ToParticipantID:   to.ID,
		AmountCents:       amountCents,
		ProofRef:          proofRef,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("AddPayment failed", "tab_id", tabID, "error", err)
		return nil, err
	}

	slog.Info("Payment added", "tab_id", tabID, "payment_id", payment.ID, "amount_cents", payment.AmountCents)
	return payment, nil
}

// CloseTab transitions a tab from active to closed. Organizer only;
// closing an already-closed tab is a no-op.
func (s *TabService) CloseTab(ctx context.Context, tabID string, caller *models.Participant) (*models.Tab, error) {
	if caller == nil {
		return nil, ledger.ErrAuthRequired
	}

	tab, err := s.store.GetTab(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if caller.TabID != tabID || caller.Role != models.RoleOrganizer {
		return nil, fmt.Errorf("%w: only the organizer can close a tab", ledger.ErrForbidden)
	}
	if tab.Status == models.TabStatusClosed {
		return tab, nil
	}

	if err := s.store.SetTabStatus(ctx, tabID, models.TabStatusClosed); err != nil {
		return nil, err
	}
	tab.Status = models.TabStatusClosed

	slog.Info("Tab closed", "tab_id", tabID)
	return tab, nil
}
