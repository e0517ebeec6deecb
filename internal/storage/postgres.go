package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game"
)

// PostgresStore keeps match logs as JSONB rows.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects, pings and creates the table if needed.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &PostgresStore{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	stats := pool.Stat()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
	)
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_logs (
			match_id   UUID PRIMARY KEY,
			log        JSONB NOT NULL,
			commands   INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// SaveMatch upserts the log for id.
func (s *PostgresStore) SaveMatch(ctx context.Context, id string, log game.MatchLog) error {
	if err := checkID(id); err != nil {
		return err
	}
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO match_logs (match_id, log, commands, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (match_id) DO UPDATE SET log = EXCLUDED.log, commands = EXCLUDED.commands, updated_at = EXCLUDED.updated_at
	`, id, raw, len(log.Entries))
	if err != nil {
		return fmt.Errorf("save match %s: %w", id, err)
	}
	s.logger.Debug("saved match log", zap.String("match_id", id), zap.Int("entries", len(log.Entries)))
	return nil
}

// LoadMatch retrieves the log for id.
func (s *PostgresStore) LoadMatch(ctx context.Context, id string) (game.MatchLog, error) {
	if err := checkID(id); err != nil {
		return game.MatchLog{}, err
	}
	var raw []byte
	err := s.pool.QueryRow(ctx, "SELECT log FROM match_logs WHERE match_id = $1", id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.MatchLog{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return game.MatchLog{}, fmt.Errorf("load match %s: %w", id, err)
	}
	var log game.MatchLog
	if err := json.Unmarshal(raw, &log); err != nil {
		return game.MatchLog{}, fmt.Errorf("decode match %s: %w", id, err)
	}
	return log, nil
}

// ListMatches returns the stored ids, sorted.
func (s *PostgresStore) ListMatches(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT match_id::text FROM match_logs ORDER BY match_id::text")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// DeleteMatch removes the log for id.
func (s *PostgresStore) DeleteMatch(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM match_logs WHERE match_id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
