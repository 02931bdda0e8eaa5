package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timelinetracker/backend/internal/store"
)

const schema = `CREATE TABLE IF NOT EXISTS timeline_documents (
	object_key TEXT PRIMARY KEY,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store keeps timeline documents in Postgres, one row per object key.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the documents table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var doc string
	err := s.Pool.QueryRow(ctx, `SELECT document::text FROM timeline_documents WHERE object_key = $1`, key).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return []byte(doc), nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO timeline_documents (object_key, document, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (object_key) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		key, string(data))
	if err != nil {
		return "", err
	}
	return "timeline_documents/" + key, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM timeline_documents WHERE object_key = $1`, key)
	return err
}
