package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS swaps (
			id            TEXT PRIMARY KEY,
			conference_id TEXT NOT NULL,
			entry_a       TEXT NOT NULL,
			entry_b       TEXT NOT NULL,
			status        TEXT NOT NULL CHECK(status IN ('applied', 'rolled_back', 'rollback_failed', 'partial', 'aborted', 'failed')),
			detail        TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS swap_mutations (
			swap_id   TEXT NOT NULL REFERENCES swaps(id) ON DELETE CASCADE,
			position  INTEGER NOT NULL,
			entry_id  TEXT NOT NULL,
			old_start TEXT NOT NULL,
			old_end   TEXT NOT NULL,
			new_start TEXT NOT NULL,
			new_end   TEXT NOT NULL,
			PRIMARY KEY (swap_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_swaps_conference ON swaps(conference_id);
		CREATE INDEX IF NOT EXISTS idx_swaps_created ON swaps(created_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating journal tables: %w", err)
	}

	return nil
}
