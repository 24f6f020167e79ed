package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the history snapshot in PostgreSQL so it
// survives across service restarts, not only browser reloads.
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
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_messages (
			seq BIGINT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (seq)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

// Save replaces the stored snapshot atomically. The manager persists the
// full history on every append, so the snapshot is always authoritative.
func (s *PostgresStore) Save(ctx context.Context, messages []Message) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	for i, msg := range messages {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (seq, role, content) VALUES ($1, $2, $3)`,
			i, msg.Role, msg.Text,
		); err != nil {
			return fmt.Errorf("save message %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Load(ctx context.Context) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, content FROM chat_messages ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Text); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return messages, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
