// Package storage persists match logs. A log is the match config plus the
// ordered command envelopes; stores treat it as opaque.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game"
)

// ErrNotFound is returned when no log is stored under an id.
var ErrNotFound = errors.New("match log not found")

// Store is the persistence collaborator of the match manager.
type Store interface {
	game.Persister
	LoadMatch(ctx context.Context, id string) (game.MatchLog, error)
	ListMatches(ctx context.Context) ([]string, error)
	DeleteMatch(ctx context.Context, id string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the store for driver. source is a directory for the file
// driver, a database path for sqlite and a connection string for postgres.
func Open(ctx context.Context, driver, source string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch driver {
	case DriverFile:
		return NewFileStore(source, logger)
	case DriverSQLite:
		return NewSQLiteStore(ctx, source, logger)
	case DriverPostgres:
		return NewPostgresStore(ctx, source, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// RestoreAll loads every stored log into m. Logs that no longer replay are
// skipped and logged.
func RestoreAll(ctx context.Context, s Store, m *game.Manager, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ids, err := s.ListMatches(ctx)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, id := range ids {
		log, err := s.LoadMatch(ctx, id)
		if err != nil {
			return restored, fmt.Errorf("load match %s: %w", id, err)
		}
		if err := m.Restore(id, log); err != nil {
			logger.Warn("skipping match that does not replay",
				zap.String("match_id", id),
				zap.Error(err),
			)
			continue
		}
		restored++
	}
	return restored, nil
}

func checkID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("invalid match id %q: %w", id, err)
	}
	return nil
}
