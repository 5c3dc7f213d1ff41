package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artello/backend/internal/models"
)

// AlgorithmConfigRepo stores versioned matching configs. Each row holds the
// full config document as JSONB; at most one row is active.
type AlgorithmConfigRepo struct {
	pool *pgxpool.Pool
}

func NewAlgorithmConfigRepo(pool *pgxpool.Pool) *AlgorithmConfigRepo {
	return &AlgorithmConfigRepo{pool: pool}
}

// GetActive returns the active config or (nil, nil) when none is active.
func (r *AlgorithmConfigRepo) GetActive(ctx context.Context) (*models.AlgorithmConfig, error) {
	var (
		id        uuid.UUID
		version   int
		doc       []byte
		createdAt time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, version, document, created_at
		FROM algorithm_configs WHERE active = TRUE
	`).Scan(&id, &version, &doc, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg models.AlgorithmConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, err
	}
	// The row, not the stored document, is authoritative for identity fields.
	cfg.ID = id
	cfg.Version = version
	cfg.CreatedAt = createdAt
	cfg.Active = true
	return &cfg, nil
}

// Activate stores cfg as a new version and makes it the single active row.
func (r *AlgorithmConfigRepo) Activate(ctx context.Context, cfg *models.AlgorithmConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE algorithm_configs SET active = FALSE WHERE active = TRUE`); err != nil {
		return err
	}

	cfg.ID = uuid.New()
	cfg.Active = true
	err = tx.QueryRow(ctx, `
		INSERT INTO algorithm_configs (id, version, active, document)
		VALUES ($1, (SELECT COALESCE(MAX(version), 0) + 1 FROM algorithm_configs), TRUE, $2)
		RETURNING version, created_at
	`, cfg.ID, doc).Scan(&cfg.Version, &cfg.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
