// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/grouptab/grouptab/internal/models"
)

// ErrTokenExists is returned by CreateParticipant when the guest token
// collides with an existing one (store-wide uniqueness constraint).
// Collisions are vanishingly rare but must not be silently ignored; the
// caller re-mints the token and retries.
var ErrTokenExists = errors.New("guest token already exists")

// Store defines the interface for ledger persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Multi-row writes (CreateTab) are atomic: a reader never observes a tab
// without its organizer. Lookup methods return (nil, nil) when the row
// does not exist; only GetTab reports absence as an error, since a
// missing tab is a domain-level NotFound.
type Store interface {
	// CreateTab persists a tab and its organizer participant in one
	// transaction. IDs and timestamps are populated if unset.
	CreateTab(ctx context.Context, tab *models.Tab, organizer *models.Participant) error

	// GetTab retrieves a tab by ID. Returns ledger.ErrNotFound (wrapped)
	// if the tab does not exist.
	GetTab(ctx context.Context, tabID string) (*models.Tab, error)

	// ListTabsByUser returns tabs where the user has a participant row,
	// newest first, each with its live participant count.
	ListTabsByUser(ctx context.Context, userID string) ([]*models.TabSummary, error)

	// SetTabStatus updates a tab's lifecycle status.
	SetTabStatus(ctx context.Context, tabID string, status models.TabStatus) error

	// CreateParticipant persists a participant. Returns ErrTokenExists
	// on a guest token collision.
	CreateParticipant(ctx context.Context, p *models.Participant) error

	// GetParticipant looks up a participant by id within a tab.
	GetParticipant(ctx context.Context, tabID, participantID string) (*models.Participant, error)

	// GetParticipantByUser looks up the participant row for (tab, user).
	GetParticipantByUser(ctx context.Context, tabID, userID string) (*models.Participant, error)

	// GetParticipantByToken looks up a guest participant by (tab, token).
	GetParticipantByToken(ctx context.Context, tabID, token string) (*models.Participant, error)

	// ListParticipants returns all participants of a tab, oldest first.
	ListParticipants(ctx context.Context, tabID string) ([]*models.Participant, error)

	// CreateExpense persists an expense.
	CreateExpense(ctx context.Context, e *models.Expense) error

	// ListExpenses returns a tab's expenses ordered by occurrence date
	// descending.
	ListExpenses(ctx context.Context, tabID string) ([]*models.Expense, error)

	// CreatePayment persists a payment.
	CreatePayment(ctx context.Context, p *models.Payment) error

	// ListPayments returns a tab's payments, newest first.
	ListPayments(ctx context.Context, tabID string) ([]*models.Payment, error)

	// CreateUser inserts a registered user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email, (nil, nil) if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id, (nil, nil) if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by id; missing ids
	// are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
