package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/moodlist/moodlist/internal/session"
)

// SessionRepository implements [session.Store] on a SQLite table.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a SessionRepository with the given database.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the value for key, or session.ErrKeyNotFound.
func (r *SessionRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", session.ErrKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value for key.
func (r *SessionRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		"INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

// Remove deletes a single key. Removing an absent key is not an error.
func (r *SessionRepository) Remove(key string) error {
	if _, err := r.db.Exec("DELETE FROM session WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove session key %s: %w", key, err)
	}
	return nil
}

// Clear deletes every persisted session field.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM session"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
