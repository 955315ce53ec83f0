package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/katakuxiko/llmrelay/internal/model"
)

// PgStore пишет журнал вызовов модели в Postgres.
type PgStore struct {
	db *sql.DB
}

func NewPgStore(conn string) (*PgStore, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PgStore{db: db}, nil
}

func (s *PgStore) Record(ctx context.Context, ex model.Exchange) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (request_id, model, temperature, prompt, question, response, error, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ex.RequestID, ex.Model, ex.Temperature, ex.Prompt, ex.Question, ex.Response, ex.Error, ex.DurationMS)
	return err
}

func (s *PgStore) Close() error {
	return s.db.Close()
}
