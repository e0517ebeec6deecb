package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arrakis/arrakis-server-go/internal/game"
	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

func clock() func() time.Time {
	t := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// sampleLog plays a short opening and returns its log and checksum.
func sampleLog(t *testing.T) (game.MatchLog, string) {
	t.Helper()
	e, err := game.New(game.Config{Seed: 7, PlayerCount: 3, Rules: rules.RuleSet{rules.RuleHomeworlds}}, game.WithClock(clock()))
	require.NoError(t, err)
	require.NoError(t, e.Submit(&game.EstablishPlayers{
		Names:    []string{"alia", "feyd", "shaddam"},
		Factions: []data.Faction{data.FactionAtreides, data.FactionHarkonnen, data.FactionEmperor},
	}))
	g := e.Game()
	for _, p := range g.Players {
		if len(p.TraitorOptions) == 0 {
			continue
		}
		require.NoError(t, e.Submit(&game.TraitorSelected{By: game.By{Faction: p.Faction}, Leader: p.TraitorOptions[0]}))
	}
	return e.Log(), e.Checksum()
}

func replayChecksum(t *testing.T, log game.MatchLog) string {
	t.Helper()
	e, err := game.LoadFrom(log.Config, log.Entries)
	require.NoError(t, err)
	return e.Checksum()
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	log, sum := sampleLog(t)
	id := uuid.NewString()

	_, err := s.LoadMatch(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.SaveMatch(ctx, id, log))
	got, err := s.LoadMatch(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Entries, len(log.Entries))
	assert.Equal(t, log.Config.Seed, got.Config.Seed)
	assert.Equal(t, sum, replayChecksum(t, got))

	shorter := game.MatchLog{Config: log.Config, Entries: log.Entries[:1]}
	require.NoError(t, s.SaveMatch(ctx, id, shorter))
	got, err = s.LoadMatch(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1, "a save replaces the previous log")

	other := uuid.NewString()
	require.NoError(t, s.SaveMatch(ctx, other, log))
	ids, err := s.ListMatches(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{id, other}, ids)

	require.NoError(t, s.DeleteMatch(ctx, id))
	assert.True(t, errors.Is(s.DeleteMatch(ctx, id), ErrNotFound))
	ids, err = s.ListMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{other}, ids)

	assert.Error(t, s.SaveMatch(ctx, "../escape", log))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())
}

func TestFileStoreRejectsForeignArchive(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	log, _ := sampleLog(t)
	id, other := uuid.NewString(), uuid.NewString()
	require.NoError(t, s.SaveMatch(context.Background(), id, log))
	require.NoError(t, os.Rename(filepath.Join(dir, id+archiveExt), filepath.Join(dir, other+archiveExt)))

	_, err = s.LoadMatch(context.Background(), other)
	assert.ErrorContains(t, err, "holds match")

	require.NoError(t, os.WriteFile(filepath.Join(dir, id+archiveExt), []byte("not gzip"), 0o644))
	_, err = s.LoadMatch(context.Background(), id)
	assert.ErrorContains(t, err, "gzip")
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "arrakis.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("ARRAKIS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ARRAKIS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	_, err = s.pool.Exec(ctx, "TRUNCATE match_logs")
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "redis", "", nil)
	assert.ErrorContains(t, err, "unknown storage driver")

	s, err := Open(context.Background(), DriverFile, t.TempDir(), nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
}

func TestRestoreAllSkipsBrokenLogs(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	s, err := NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	log, sum := sampleLog(t)
	good, bad := uuid.NewString(), uuid.NewString()
	require.NoError(t, s.SaveMatch(ctx, good, log))
	broken := game.MatchLog{Config: log.Config, Entries: []game.Entry{log.Entries[1]}}
	require.NoError(t, s.SaveMatch(ctx, bad, broken))

	m := game.NewManager(logger, s)
	n, err := RestoreAll(ctx, s, m, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{good}, m.List())
	view, err := m.View(good)
	require.NoError(t, err)
	assert.Equal(t, sum, view.Checksum)
}
