package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pickem-tracker/internal/models"
)

// Statuts d'un rechargement
const (
	ReloadOK     = "ok"
	ReloadFailed = "failed"
	ReloadStale  = "stale"
)

// snapshotsKept nombre d'instantanés conservés
const snapshotsKept = 20

// ReloadRecord entrée de l'historique des rechargements
type ReloadRecord struct {
	ID        int64         `json:"id"`
	Sequence  uint64        `json:"sequence"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// Snapshots

// SaveSnapshot enregistre un instantané publié et purge les plus anciens
func (s *Store) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil || snap.Dataset == nil {
		return fmt.Errorf("save snapshot: empty dataset")
	}

	payload, err := json.Marshal(snap.Dataset)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	return s.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (sequence, entries, questions, dataset, loaded_at) VALUES (?, ?, ?, ?, ?)`,
			snap.Sequence, len(snap.Dataset.Entries), len(snap.Dataset.QuestionColumns), string(payload), snap.LoadedAt.UTC(),
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
			snapshotsKept,
		)
		return err
	})
}

// LatestSnapshot dernier instantané enregistré, nil si la base est vide
func (s *Store) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var (
		sequence uint64
		payload  string
		loadedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sequence, dataset, loaded_at FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&sequence, &payload, &loadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ds models.Dataset
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	return &models.Snapshot{
		Dataset:  &ds,
		LoadedAt: loadedAt,
		Sequence: sequence,
		Restored: true,
	}, nil
}

// Reloads

// RecordReload ajoute une entrée à l'historique
func (s *Store) RecordReload(ctx context.Context, rec ReloadRecord) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO reloads (sequence, status, error, duration_ms, started_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Sequence, rec.Status, rec.Error, rec.Duration.Milliseconds(), rec.StartedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecentReloads derniers rechargements, du plus récent au plus ancien
func (s *Store) RecentReloads(ctx context.Context, limit int) ([]ReloadRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sequence, status, error, duration_ms, started_at
		FROM reloads ORDER BY started_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ReloadRecord
	for rows.Next() {
		var (
			rec        ReloadRecord
			durationMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Status, &rec.Error, &durationMs, &rec.StartedAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
