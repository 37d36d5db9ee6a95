package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rliu/stock-universe/internal/config"
	"github.com/rliu/stock-universe/internal/model"
)

// Catalog is a Postgres-backed registry of completed snapshots.
type Catalog struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Catalog{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (c *Catalog) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// Ping verifies the connection is healthy.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// RecordSnapshot inserts one completed snapshot's summary. Re-running
// with the same run ID is a no-op.
func (c *Catalog) RecordSnapshot(ctx context.Context, m *model.Manifest, snapshotPath string) error {
	ct, err := c.pool.Exec(ctx, `
		INSERT INTO snapshots (run_id, exchange, asof, snapshot_path,
			total_pages, unique_records, failed_pages, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING
	`,
		m.RunID,
		m.Exchange,
		m.Asof,
		snapshotPath,
		m.Stats.TotalPages,
		m.Stats.UniqueRecords,
		m.Stats.FailedPages,
		m.Stats.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if ct.RowsAffected() == 0 {
		c.logger.Debug("snapshot already cataloged", "run_id", m.RunID)
	} else {
		c.logger.Info("snapshot cataloged",
			"run_id", m.RunID,
			"exchange", m.Exchange,
			"records", m.Stats.UniqueRecords,
		)
	}
	return nil
}
