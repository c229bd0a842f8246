package database

import "fmt"

// RunMigrations crée les tables si nécessaire
func (s *Store) RunMigrations() error {
	migrations := []string{
		createSnapshotsTable,
		createReloadsTable,
		createReloadsIndex,
	}

	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}

	return nil
}

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence INTEGER NOT NULL,
	entries INTEGER NOT NULL DEFAULT 0,
	questions INTEGER NOT NULL DEFAULT 0,
	dataset TEXT NOT NULL,
	loaded_at DATETIME NOT NULL
)`

const createReloadsTable = `
CREATE TABLE IF NOT EXISTS reloads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence INTEGER NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('ok', 'failed', 'stale')),
	error TEXT DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL
)`

const createReloadsIndex = `
CREATE INDEX IF NOT EXISTS idx_reloads_started_at ON reloads (started_at DESC)`
