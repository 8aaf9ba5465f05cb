// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/indico/internal/history"
)

// SQLite implements history.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
// The parent directory of path is created if missing.
func New(path string) (*SQLite, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Append stores a journal record and its mutations atomically.
func (s *SQLite) Append(ctx context.Context, r *history.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO swaps (id, conference_id, entry_a, entry_b, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.ConferenceID,
		r.EntryA,
		r.EntryB,
		r.Status,
		r.Detail,
		formatTime(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting swap: %w", err)
	}

	for i, m := range r.Mutations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO swap_mutations (swap_id, position, entry_id, old_start, old_end, new_start, new_end)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID,
			i,
			m.EntryID,
			formatTime(m.OldStart),
			formatTime(m.OldEnd),
			formatTime(m.NewStart),
			formatTime(m.NewEnd),
		)
		if err != nil {
			return fmt.Errorf("inserting mutation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// List returns journal records newest first.
func (s *SQLite) List(ctx context.Context, f history.Filter) ([]*history.Record, error) {
	query := `
		SELECT id, conference_id, entry_a, entry_b, status, detail, created_at
		FROM swaps
	`
	var args []any
	if f.ConferenceID != "" {
		query += ` WHERE conference_id = ?`
		args = append(args, f.ConferenceID)
	}
	query += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying swaps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*history.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating swaps: %w", err)
	}

	for _, r := range records {
		if r.Mutations, err = s.mutations(ctx, r.ID); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// Get retrieves a journal record by id.
func (s *SQLite) Get(ctx context.Context, id string) (*history.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, conference_id, entry_a, entry_b, status, detail, created_at
		FROM swaps
		WHERE id = ?
	`, id)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", history.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if r.Mutations, err = s.mutations(ctx, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) mutations(ctx context.Context, swapID string) ([]history.Mutation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, old_start, old_end, new_start, new_end
		FROM swap_mutations
		WHERE swap_id = ?
		ORDER BY position
	`, swapID)
	if err != nil {
		return nil, fmt.Errorf("querying mutations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []history.Mutation
	for rows.Next() {
		var (
			m                                  history.Mutation
			oldStart, oldEnd, newStart, newEnd string
		)
		if err := rows.Scan(&m.EntryID, &oldStart, &oldEnd, &newStart, &newEnd); err != nil {
			return nil, fmt.Errorf("scanning mutation: %w", err)
		}
		for _, p := range []struct {
			dst *time.Time
			src string
		}{
			{&m.OldStart, oldStart},
			{&m.OldEnd, oldEnd},
			{&m.NewStart, newStart},
			{&m.NewEnd, newEnd},
		} {
			if *p.dst, err = parseTime(p.src); err != nil {
				return nil, fmt.Errorf("parsing mutation time: %w", err)
			}
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mutations: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*history.Record, error) {
	var (
		r         history.Record
		createdAt string
	)
	err := row.Scan(
		&r.ID,
		&r.ConferenceID,
		&r.EntryA,
		&r.EntryB,
		&r.Status,
		&r.Detail,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning swap: %w", err)
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	return &r, nil
}

// formatTime stores times in UTC with a fixed width so they sort as text.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
