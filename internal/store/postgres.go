package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// schemaSQL is idempotent; it runs on every startup.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
    id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    transcription TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at
    ON transcriptions (created_at DESC, id DESC);
`

// Postgres stores transcription records directly in a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgres connects, verifies the connection, and applies the schema.
func NewPostgres(ctx context.Context, databaseURL, password string, log zerolog.Logger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.ConnConfig.Password == "" && password != "" {
		cfg.ConnConfig.Password = password
	}

	cfg.MaxConns = 20
	cfg.MinConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	p := &Postgres{pool: pool, log: log}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Info().
		Str("url", maskDSN(databaseURL)).
		Int32("max_conns", cfg.MaxConns).
		Int32("min_conns", cfg.MinConns).
		Msg("record store connected (postgres)")

	return p, nil
}

// Insert appends one transcription record and returns the stored row.
func (p *Postgres) Insert(ctx context.Context, text string) (*Record, error) {
	var rec Record
	err := p.pool.QueryRow(ctx,
		`INSERT INTO transcriptions (transcription)
		 VALUES ($1)
		 RETURNING id, transcription, created_at`,
		text,
	).Scan(&rec.ID, &rec.Transcription, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert: %v", ErrWrite, err)
	}
	return &rec, nil
}

// List returns all records newest first. Id breaks timestamp ties so records
// created in the same instant still list newest insert first.
func (p *Postgres) List(ctx context.Context) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, transcription, created_at
		 FROM transcriptions
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrRead, err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Transcription, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrRead, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrRead, err)
	}
	return records, nil
}

// Delete removes one record. Missing ids delete cleanly.
func (p *Postgres) Delete(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM transcriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrWrite, err)
	}
	return nil
}

// DeleteAll removes every record.
func (p *Postgres) DeleteAll(ctx context.Context) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM transcriptions`)
	if err != nil {
		return fmt.Errorf("%w: delete all: %v", ErrWrite, err)
	}
	p.log.Info().Int64("removed", tag.RowsAffected()).Msg("all transcriptions deleted")
	return nil
}

// Pool exposes the underlying connection pool for scrape-time metrics.
func (p *Postgres) Pool() *pgxpool.Pool { return p.pool }

// Ping verifies the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() {
	p.log.Info().Msg("closing record store pool")
	p.pool.Close()
}
