package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arrakis/arrakis-server-go/internal/game"
	"github.com/arrakis/arrakis-server-go/internal/game/data"
)

func writeLog(t *testing.T, log game.MatchLog) string {
	t.Helper()
	raw, err := json.Marshal(log)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "match.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestRunVerifiesChecksum(t *testing.T) {
	e, err := game.New(game.Config{Seed: 9, PlayerCount: 2})
	require.NoError(t, err)
	require.NoError(t, e.Submit(&game.EstablishPlayers{
		Names:    []string{"leto", "rabban"},
		Factions: []data.Faction{data.FactionAtreides, data.FactionHarkonnen},
	}))
	*logFile = writeLog(t, e.Log())
	*steps = true
	t.Cleanup(func() { *logFile, *expected, *steps = "", "", false })

	*expected = e.Checksum()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, zaptest.NewLogger(t)))
	assert.Contains(t, out.String(), "checksum: "+e.Checksum())
	assert.Contains(t, out.String(), string(game.KindEstablishPlayers))
	assert.Contains(t, out.String(), "commands: 1")

	*expected = "0000"
	err = run(context.Background(), &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "checksum mismatch")
}

func TestRunReportsBrokenLog(t *testing.T) {
	e, err := game.New(game.Config{Seed: 9, PlayerCount: 2})
	require.NoError(t, err)
	log := e.Log()
	rec, err := game.EncodeCommand(&game.EndPhase{})
	require.NoError(t, err)
	log.Entries = append(log.Entries, game.Entry{Record: rec})

	*logFile = writeLog(t, log)
	t.Cleanup(func() { *logFile = "" })
	err = run(context.Background(), &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "entry 0")
}

func TestRunNeedsASource(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "-match or -log")
}
