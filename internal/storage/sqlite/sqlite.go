// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/grouptab/grouptab/internal/ledger"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTab persists a tab and its organizer participant atomically.
// A reader can never observe the tab without its organizer.
func (s *SQLiteStore) CreateTab(ctx context.Context, tab *models.Tab, organizer *models.Participant) error {
	if tab.ID == "" {
		tab.ID = uuid.New().String()
	}
	if tab.CreatedAt == 0 {
		tab.CreatedAt = time.Now().Unix()
	}
	if tab.Status == "" {
		tab.Status = models.TabStatusActive
	}
	organizer.TabID = tab.ID

	config, err := tab.Config.MarshalBlob()
	if err != nil {
		return fmt.Errorf("failed to encode tab config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO tabs (id, creator_user_id, title, type, status, config, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		tab.ID, tab.CreatorUserID, tab.Title, tab.Type, tab.Status, string(config), tab.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tab: %w", err)
	}

	if err := insertParticipant(ctx, tx, organizer); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetTab retrieves a tab by ID.
func (s *SQLiteStore) GetTab(ctx context.Context, tabID string) (*models.Tab, error) {
	tab := &models.Tab{}
	var config string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, creator_user_id, title, type, status, config, created_at FROM tabs WHERE id = ?",
		tabID,
	).Scan(&tab.ID, &tab.CreatorUserID, &tab.Title, &tab.Type, &tab.Status, &config, &tab.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, tabID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tab: %w", err)
	}

	tab.Config, err = models.UnmarshalBlob(tab.Type, []byte(config))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tab config: %w", err)
	}

	return tab, nil
}

// ListTabsByUser returns the tabs where the user has a participant row,
// newest first, each decorated with its live participant count.
func (s *SQLiteStore) ListTabsByUser(ctx context.Context, userID string) ([]*models.TabSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.creator_user_id, t.title, t.type, t.status, t.config, t.created_at,
		        (SELECT COUNT(*) FROM participants WHERE tab_id = t.id) AS participant_count
		 FROM tabs t
		 WHERE t.id IN (SELECT tab_id FROM participants WHERE user_id = ?)
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	defer rows.Close()

	var tabs []*models.TabSummary
	for rows.Next() {
		summary := &models.TabSummary{}
		var config string
		if err := rows.Scan(
			&summary.ID, &summary.CreatorUserID, &summary.Title, &summary.Type,
			&summary.Status, &config, &summary.CreatedAt, &summary.ParticipantCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		summary.Config, err = models.UnmarshalBlob(summary.Type, []byte(config))
		if err != nil {
			return nil, fmt.Errorf("failed to decode tab config: %w", err)
		}
		tabs = append(tabs, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tabs: %w", err)
	}

	return tabs, nil
}

// SetTabStatus updates a tab's lifecycle status.
func (s *SQLiteStore) SetTabStatus(ctx context.Context, tabID string, status models.TabStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tabs SET status = ? WHERE id = ?",
		status, tabID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tab status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check tab status update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, tabID)
	}
	return nil
}
