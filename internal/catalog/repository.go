package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// Entry is a persisted sound definition.
type Entry struct {
	Name      string         `json:"name"`
	Path      string         `json:"path"`
	Settings  sound.Settings `json:"settings"`
	Autoplay  bool           `json:"autoplay"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate checks the fields the database requires.
func (e *Entry) Validate() error {
	if e.Name == "" || e.Path == "" {
		return ErrInvalidEntry
	}
	return nil
}

// Repository persists catalog entries.
type Repository interface {
	Get(ctx context.Context, name string) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Create(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, name string) error
}

const entryColumns = `name, path, volume, pitch, loop, mute, bus, spatial, autoplay, created_at, updated_at`

// SQLiteRepository stores entries in the sounds table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open database that has been migrated.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns one entry.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM sounds WHERE name = ?`, name)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying sound %q: %w", name, err)
	}
	return e, nil
}

// List returns every entry in creation order.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM sounds ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("querying sounds: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sound: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sounds: %w", err)
	}
	return out, nil
}

// Create inserts an entry and sets its timestamps.
func (r *SQLiteRepository) Create(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	spatial, err := json.Marshal(e.Settings.Spatial)
	if err != nil {
		return fmt.Errorf("marshalling spatial: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sounds (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Path,
		e.Settings.Volume, e.Settings.Pitch,
		boolToInt(e.Settings.Loop), boolToInt(e.Settings.Mute),
		e.Settings.Bus, string(spatial), boolToInt(e.Autoplay),
		e.CreatedAt.Format(time.RFC3339), e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting sound: %w", err)
	}
	return nil
}

// Update rewrites an existing entry.
func (r *SQLiteRepository) Update(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	spatial, err := json.Marshal(e.Settings.Spatial)
	if err != nil {
		return fmt.Errorf("marshalling spatial: %w", err)
	}
	e.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, `
		UPDATE sounds SET
			path = ?, volume = ?, pitch = ?, loop = ?, mute = ?,
			bus = ?, spatial = ?, autoplay = ?, updated_at = ?
		WHERE name = ?`,
		e.Path, e.Settings.Volume, e.Settings.Pitch,
		boolToInt(e.Settings.Loop), boolToInt(e.Settings.Mute),
		e.Settings.Bus, string(spatial), boolToInt(e.Autoplay),
		e.UpdatedAt.Format(time.RFC3339), e.Name,
	)
	if err != nil {
		return fmt.Errorf("updating sound: %w", err)
	}
	return expectOne(res)
}

// Delete removes an entry.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sounds WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting sound: %w", err)
	}
	return expectOne(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e                    Entry
		loop, mute, autoplay int
		spatial              string
		createdAt, updatedAt string
	)
	err := s.Scan(&e.Name, &e.Path,
		&e.Settings.Volume, &e.Settings.Pitch, &loop, &mute,
		&e.Settings.Bus, &spatial, &autoplay, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Settings.Loop = loop != 0
	e.Settings.Mute = mute != 0
	e.Autoplay = autoplay != 0
	if err := json.Unmarshal([]byte(spatial), &e.Settings.Spatial); err != nil {
		return nil, fmt.Errorf("decoding spatial for %q: %w", e.Name, err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // written by Create
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // written by Update
	return &e, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
