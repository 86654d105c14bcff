package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/storage"
)

// execer lets insertParticipant run inside or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertParticipant(ctx context.Context, ex execer, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.JoinedAt == 0 {
		p.JoinedAt = time.Now().Unix()
	}

	var userID, guestName, token any
	if p.UserID != "" {
		userID = p.UserID
	}
	if p.GuestName != "" {
		guestName = p.GuestName
	}
	if p.Token != "" {
		token = p.Token
	}

	_, err := ex.ExecContext(ctx,
		"INSERT INTO participants (id, tab_id, role, user_id, guest_name, token, joined_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.TabID, p.Role, userID, guestName, token, p.JoinedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "participants.token") {
			return fmt.Errorf("%w: %v", storage.ErrTokenExists, err)
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// CreateParticipant persists a participant row.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	return insertParticipant(ctx, s.db, p)
}

const participantColumns = "id, tab_id, role, user_id, guest_name, token, joined_at"

func scanParticipant(row interface{ Scan(...any) error }) (*models.Participant, error) {
	p := &models.Participant{}
	var userID, guestName, token sql.NullString
	err := row.Scan(&p.ID, &p.TabID, &p.Role, &userID, &guestName, &token, &p.JoinedAt)
	if err != nil {
		return nil, err
	}
	p.UserID = userID.String
	p.GuestName = guestName.String
	p.Token = token.String
	return p, nil
}

// GetParticipant looks up a participant by id within a tab.
// Returns (nil, nil) when no row matches.
func (s *SQLiteStore) GetParticipant(ctx context.Context, tabID, participantID string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE tab_id = ? AND id = ?",
		tabID, participantID,
	)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// GetParticipantByUser looks up the participant row for (tab, user).
// Returns (nil, nil) when the user has not joined the tab.
func (s *SQLiteStore) GetParticipantByUser(ctx context.Context, tabID, userID string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE tab_id = ? AND user_id = ?",
		tabID, userID,
	)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant by user: %w", err)
	}
	return p, nil
}

// GetParticipantByToken looks up a guest participant by (tab, token).
// Returns (nil, nil) when the token matches no participant.
func (s *SQLiteStore) GetParticipantByToken(ctx context.Context, tabID, token string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE tab_id = ? AND token = ?",
		tabID, token,
	)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant by token: %w", err)
	}
	return p, nil
}

// ListParticipants returns all participants of a tab, oldest first.
func (s *SQLiteStore) ListParticipants(ctx context.Context, tabID string) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE tab_id = ? ORDER BY joined_at, id",
		tabID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}
