package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists usage records in PostgreSQL for deployments where
// the counter must survive restarts and be shared across replicas.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := `CREATE TABLE IF NOT EXISTS audio_usage (
		client_id TEXT PRIMARY KEY,
		month TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init usage schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, clientID string) (Record, bool, error) {
	var rec Record
	err := s.pool.QueryRow(ctx,
		`SELECT month, count FROM audio_usage WHERE client_id=$1`,
		clientID,
	).Scan(&rec.Month, &rec.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load usage: %w", err)
	}
	return rec, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, clientID string, rec Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audio_usage (client_id, month, count, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (client_id) DO UPDATE SET month=$2, count=$3, updated_at=now()`,
		clientID,
		rec.Month,
		rec.Count,
	)
	if err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
