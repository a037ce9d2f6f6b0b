package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"field-service-compliance/internal/models"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	org_id     TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresSink stores the snapshot as one jsonb row per organization.
type PostgresSink struct {
	pool  *pgxpool.Pool
	orgID string
}

// NewPostgresSink connects a pool and ensures the snapshots table exists.
func NewPostgresSink(ctx context.Context, dsn, orgID string) (*PostgresSink, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, snapshotSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure snapshots table: %w", err)
	}
	return &PostgresSink{pool: pool, orgID: orgID}, nil
}

func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresSink) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: fmt.Errorf("marshal snapshot: %w", err)}
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshots (org_id, doc, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (org_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
	`, s.orgID, data)
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *PostgresSink) Load(ctx context.Context) (Snapshot, bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT doc FROM snapshots WHERE org_id = $1
	`, s.orgID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: fmt.Errorf("decode snapshot: %w", err)}
	}
	return snap, true, nil
}
