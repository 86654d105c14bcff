package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grouptab/grouptab/internal/models"
)

// CreateExpense persists a new expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	if e.Date == 0 {
		e.Date = now
	}

	var receiptRef any
	if e.ReceiptRef != "" {
		receiptRef = e.ReceiptRef
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, tab_id, payer_participant_id, description, amount_cents, date, receipt_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TabID, e.PayerParticipantID, e.Description, e.AmountCents, e.Date, receiptRef, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return nil
}

// ListExpenses returns a tab's expenses ordered by occurrence date descending.
func (s *SQLiteStore) ListExpenses(ctx context.Context, tabID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tab_id, payer_participant_id, description, amount_cents, date, receipt_ref, created_at
		 FROM expenses WHERE tab_id = ? ORDER BY date DESC, created_at DESC`,
		tabID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		var receiptRef sql.NullString
		if err := rows.Scan(&e.ID, &e.TabID, &e.PayerParticipantID, &e.Description,
			&e.AmountCents, &e.Date, &receiptRef, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.ReceiptRef = receiptRef.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// CreatePayment persists a new payment.
func (s *SQLiteStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	var proofRef any
	if p.ProofRef != "" {
		proofRef = p.ProofRef
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, tab_id, from_participant_id, to_participant_id, amount_cents, proof_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TabID, p.FromParticipantID, p.ToParticipantID, p.AmountCents, proofRef, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// ListPayments returns a tab's payments, newest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, tabID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tab_id, from_participant_id, to_participant_id, amount_cents, proof_ref, created_at
		 FROM payments WHERE tab_id = ? ORDER BY created_at DESC`,
		tabID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var proofRef sql.NullString
		if err := rows.Scan(&p.ID, &p.TabID, &p.FromParticipantID, &p.ToParticipantID,
			&p.AmountCents, &proofRef, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.ProofRef = proofRef.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
