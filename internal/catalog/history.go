package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Event kinds recorded in the playback history.
const (
	EventChanged  = "changed"
	EventProgress = "progress"
	EventAdded    = "added"
	EventRemoved  = "removed"
)

// Event is one row of playback history.
type Event struct {
	ID         int64     `json:"id"`
	Sound      string    `json:"sound"`
	Selector   string    `json:"selector"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// History persists playback events.
type History interface {
	Record(ctx context.Context, e *Event) error
	List(ctx context.Context, sound string, limit int) ([]Event, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

const defaultHistoryLimit = 100

// historyLayout has a fixed width so recorded_at sorts as text.
const historyLayout = "2006-01-02T15:04:05.000000Z"

// SQLiteHistory stores events in the playback_history table.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory wraps a migrated database.
func NewSQLiteHistory(db *sql.DB) *SQLiteHistory {
	return &SQLiteHistory{db: db}
}

// Record inserts an event and fills in its id and timestamp.
func (h *SQLiteHistory) Record(ctx context.Context, e *Event) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	res, err := h.db.ExecContext(ctx, `
		INSERT INTO playback_history (sound, selector, event, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.Sound, e.Selector, e.Kind, e.Detail, e.RecordedAt.UTC().Format(historyLayout))
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading event id: %w", err)
	}
	return nil
}

// List returns the newest events first. An empty sound lists every sound;
// a limit of zero or less uses 100.
func (h *SQLiteHistory) List(ctx context.Context, sound string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query := `SELECT id, sound, selector, event, detail, recorded_at FROM playback_history`
	args := []any{}
	if sound != "" {
		query += ` WHERE sound = ?`
		args = append(args, sound)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e  Event
			at string
		)
		if err := rows.Scan(&e.ID, &e.Sound, &e.Selector, &e.Kind, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.RecordedAt, _ = time.Parse(historyLayout, at) //nolint:errcheck // written by Record
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes events recorded before the cutoff and returns the count.
func (h *SQLiteHistory) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx,
		`DELETE FROM playback_history WHERE recorded_at < ?`,
		before.UTC().Format(historyLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
