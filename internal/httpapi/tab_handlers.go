package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/grouptab/grouptab/internal/identity"
	"github.com/grouptab/grouptab/internal/ledger"
	"github.com/grouptab/grouptab/internal/middleware"
	"github.com/grouptab/grouptab/internal/models"
)

type createTabRequest struct {
	Title  string          `json:"title"`
	Type   models.TabType  `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

func (s *Server) createTab(w http.ResponseWriter, r *http.Request) {
	var req createTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err))
		return
	}

	var config *models.TabConfig
	if len(req.Config) > 0 {
		cfg, err := models.UnmarshalBlob(req.Type, req.Config)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err))
			return
		}
		config = &cfg
	}

	tab, err := s.tabs.CreateTab(r.Context(), middleware.GetUserID(r.Context()), req.Title, req.Type, config)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"tab": toTabJSON(tab)})
}

func (s *Server) listTabs(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.tabs.ListTabs(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	tabs := make([]tabJSON, len(summaries))
	for i, summary := range summaries {
		tabs[i] = toTabJSON(&summary.Tab)
		tabs[i].ParticipantCount = summary.ParticipantCount
	}

	writeJSON(w, http.StatusOK, map[string]any{"tabs": tabs})
}

func (s *Server) getTab(w http.ResponseWriter, r *http.Request) {
	tabID := r.PathValue("id")

	detail, err := s.tabs.GetTab(r.Context(), tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Viewing is open: a stale guest cookie or a user who hasn't
	// joined still gets the tab, just with no current participant.
	current, err := s.resolveCaller(r, tabID)
	if err != nil && !errors.Is(err, ledger.ErrNotAMember) && !errors.Is(err, ledger.ErrInvalidToken) {
		writeError(w, r, err)
		return
	}

	participants := make([]participantJSON, len(detail.Participants))
	for i, p := range detail.Participants {
		participants[i] = toParticipantJSON(p)
	}
	expenses := make([]expenseJSON, len(detail.Expenses))
	for i, e := range detail.Expenses {
		expenses[i] = toExpenseJSON(e)
	}
	payments := make([]paymentJSON, len(detail.Payments))
	for i, p := range detail.Payments {
		payments[i] = toPaymentJSON(p)
	}

	resp := map[string]any{
		"tab":          toTabJSON(detail.Tab),
		"participants": participants,
		"expenses":     expenses,
		"payments":     payments,
	}
	if current != nil {
		cur := toParticipantJSON(current)
		resp["current_participant"] = cur
	}

	writeJSON(w, http.StatusOK, resp)
}

type joinRequest struct {
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
}

// join handles all three entry paths: an authenticated user joins as a
// member (idempotently), a guest token reclaims an existing identity,
// and a bare name mints a new guest. Guests get the token back once and
// as a persistent cookie; it never appears anywhere else.
func (s *Server) join(w http.ResponseWriter, r *http.Request) {
	tabID := r.PathValue("id")

	var req joinRequest
	if r.Body != nil {
		// An empty body is fine for member joins.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if userID := middleware.GetUserID(r.Context()); userID != "" {
		p, err := s.tabs.JoinAsMember(r.Context(), tabID, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"participant": toParticipantJSON(p)})
		return
	}

	token := req.Token
	if token == "" {
		token = middleware.GuestToken(r)
	}
	if token != "" {
		p, err := s.tabs.ReclaimGuestByToken(r.Context(), tabID, token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		setGuestCookie(w, token)
		writeJSON(w, http.StatusOK, map[string]any{"participant": toParticipantJSON(p)})
		return
	}

	p, newToken, err := s.tabs.JoinAsGuestByName(r.Context(), tabID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setGuestCookie(w, newToken)
	writeJSON(w, http.StatusCreated, map[string]any{
		"participant": toParticipantJSON(p),
		"token":       newToken,
	})
}

type addExpenseRequest struct {
	Description        string `json:"description"`
	AmountCents        int64  `json:"amount_cents"`
	PayerParticipantID string `json:"payer_participant_id,omitempty"`
	ReceiptRef         string `json:"receipt_ref,omitempty"`
}

func (s *Server) addExpense(w http.ResponseWriter, r *http.Request) {
	tabID := r.PathValue("id")

	var req addExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err))
		return
	}

	caller, err := s.resolveCaller(r, tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payerID := req.PayerParticipantID
	if payerID == "" && caller != nil {
		payerID = caller.ID
	}

	expense, err := s.tabs.AddExpense(r.Context(), tabID, caller, payerID, req.Description, req.AmountCents, req.ReceiptRef)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"expense": toExpenseJSON(expense)})
}

type addPaymentRequest struct {
	ToParticipantID string `json:"to_participant_id"`
	AmountCents     int64  `json:"amount_cents"`
	ProofRef        string `json:"proof_ref,omitempty"`
}

func (s *Server) addPayment(w http.ResponseWriter, r *http.Request) {
	tabID := r.PathValue("id")

	var req addPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err))
		return
	}

	caller, err := s.resolveCaller(r, tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := s.tabs.AddPayment(r.Context(), tabID, caller, req.ToParticipantID, req.AmountCents, req.ProofRef)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"payment": toPaymentJSON(payment)})
}

func (s *Server) settlement(w http.ResponseWriter, r *http.Request) {
	tabID := r.PathValue("id")

	result, err := s.tabs.Settlement(r.Context(), tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	balances := make([]balanceJSON, len(result.Balances))
	for i, b := range result.Balances {
		balances[i] = toBalanceJSON(b)
	}
	suggestions := make([]transferJSON, len(result.Transfers))
	for i, t := range result.Transfers {
		suggestions[i] = toTransferJSON(t)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balances":    balances,
		"suggestions": suggestions,
	})
}

func (s *Server) closeTab(w http.ResponseWriter, r *http.Request) {
	tabID := r.PathValue("id")

	caller, err := s.resolver.Resolve(r.Context(), tabID, identity.Credentials{UserID: middleware.GetUserID(r.Context())})
	if err != nil {
		writeError(w, r, err)
		return
	}

	tab, err := s.tabs.CloseTab(r.Context(), tabID, caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tab": toTabJSON(tab)})
}
