package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/arrakis/arrakis-server-go/internal/game"
)

// SQLiteStore keeps match logs as JSON rows in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// writes are serialized by the manager; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS match_logs (
			match_id   TEXT PRIMARY KEY,
			log_json   TEXT NOT NULL,
			commands   INTEGER NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// SaveMatch upserts the log for id.
func (s *SQLiteStore) SaveMatch(ctx context.Context, id string, log game.MatchLog) error {
	if err := checkID(id); err != nil {
		return err
	}
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO match_logs (match_id, log_json, commands, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(match_id) DO UPDATE SET log_json = excluded.log_json, commands = excluded.commands, updated_at = excluded.updated_at
	`, id, string(raw), len(log.Entries))
	if err != nil {
		return fmt.Errorf("save match %s: %w", id, err)
	}
	s.logger.Debug("saved match log", zap.String("match_id", id), zap.Int("entries", len(log.Entries)))
	return nil
}

// LoadMatch retrieves the log for id.
func (s *SQLiteStore) LoadMatch(ctx context.Context, id string) (game.MatchLog, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT log_json FROM match_logs WHERE match_id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return game.MatchLog{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return game.MatchLog{}, fmt.Errorf("load match %s: %w", id, err)
	}
	var log game.MatchLog
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		return game.MatchLog{}, fmt.Errorf("decode match %s: %w", id, err)
	}
	return log, nil
}

// ListMatches returns the stored ids, sorted.
func (s *SQLiteStore) ListMatches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT match_id FROM match_logs ORDER BY match_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteMatch removes the log for id.
func (s *SQLiteStore) DeleteMatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM match_logs WHERE match_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
