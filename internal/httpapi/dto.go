package httpapi

import (
	"encoding/json"
	"math"

	"github.com/grouptab/grouptab/internal/calculator"
	"github.com/grouptab/grouptab/internal/models"
)

// tabJSON is the wire shape of a tab. Config is the flat type-specific
// object ({"split_mode": ...} or {"receipt_required": ...}).
type tabJSON struct {
	ID               string           `json:"id"`
	CreatorUserID    string           `json:"creator_user_id"`
	Title            string           `json:"title"`
	Type             models.TabType   `json:"type"`
	Status           models.TabStatus `json:"status"`
	Config           json.RawMessage  `json:"config"`
	CreatedAt        int64            `json:"created_at"`
	ParticipantCount int              `json:"participant_count,omitempty"`
}

func toTabJSON(t *models.Tab) tabJSON {
	blob, err := t.Config.MarshalBlob()
	if err != nil {
		blob = []byte("{}")
	}
	return tabJSON{
		ID:            t.ID,
		CreatorUserID: t.CreatorUserID,
		Title:         t.Title,
		Type:          t.Type,
		Status:        t.Status,
		Config:        blob,
		CreatedAt:     t.CreatedAt,
	}
}

// participantJSON deliberately has no token field: a guest's token is
// a credential and never appears in any response body. It travels only
// in the join response to its owner and in the session cookie.
type participantJSON struct {
	ID        string      `json:"id"`
	TabID     string      `json:"tab_id"`
	Role      models.Role `json:"role"`
	UserID    string      `json:"user_id,omitempty"`
	GuestName string      `json:"guest_name,omitempty"`
	JoinedAt  int64       `json:"joined_at"`
}

func toParticipantJSON(p *models.Participant) participantJSON {
	return participantJSON{
		ID:        p.ID,
		TabID:     p.TabID,
		Role:      p.Role,
		UserID:    p.UserID,
		GuestName: p.GuestName,
		JoinedAt:  p.JoinedAt,
	}
}

type expenseJSON struct {
	ID                 string `json:"id"`
	TabID              string `json:"tab_id"`
	PayerParticipantID string `json:"payer_participant_id"`
	Description        string `json:"description"`
	AmountCents        int64  `json:"amount_cents"`
	Date               int64  `json:"date"`
	ReceiptRef         string `json:"receipt_ref,omitempty"`
	CreatedAt          int64  `json:"created_at"`
}

func toExpenseJSON(e *models.Expense) expenseJSON {
	return expenseJSON{
		ID:                 e.ID,
		TabID:              e.TabID,
		PayerParticipantID: e.PayerParticipantID,
		Description:        e.Description,
		AmountCents:        e.AmountCents,
		Date:               e.Date,
		ReceiptRef:         e.ReceiptRef,
		CreatedAt:          e.CreatedAt,
	}
}

type paymentJSON struct {
	ID                string `json:"id"`
	TabID             string `json:"tab_id"`
	FromParticipantID string `json:"from_participant_id"`
	ToParticipantID   string `json:"to_participant_id"`
	AmountCents       int64  `json:"amount_cents"`
	ProofRef          string `json:"proof_ref,omitempty"`
	CreatedAt         int64  `json:"created_at"`
}

func toPaymentJSON(p *models.Payment) paymentJSON {
	return paymentJSON{
		ID:                p.ID,
		TabID:             p.TabID,
		FromParticipantID: p.FromParticipantID,
		ToParticipantID:   p.ToParticipantID,
		AmountCents:       p.AmountCents,
		ProofRef:          p.ProofRef,
		CreatedAt:         p.CreatedAt,
	}
}

// balanceJSON rounds the float-valued balance to whole cents: no
// floating-point money leaves the core.
type balanceJSON struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	BalanceCents  int64  `json:"balance_cents"`
}

func toBalanceJSON(b calculator.ParticipantBalance) balanceJSON {
	return balanceJSON{
		ParticipantID: b.ParticipantID,
		DisplayName:   b.DisplayName,
		BalanceCents:  int64(math.Round(b.Balance)),
	}
}

type transferJSON struct {
	From              string `json:"from"`
	To                string `json:"to"`
	FromParticipantID string `json:"from_participant_id"`
	ToParticipantID   string `json:"to_participant_id"`
	AmountCents       int64  `json:"amount_cents"`
}

func toTransferJSON(t calculator.Transfer) transferJSON {
	return transferJSON{
		From:              t.From,
		To:                t.To,
		FromParticipantID: t.FromParticipantID,
		ToParticipantID:   t.ToParticipantID,
		AmountCents:       t.AmountCents,
	}
}

type userJSON struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}
