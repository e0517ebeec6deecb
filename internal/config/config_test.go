package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrakis/arrakis-server-go/internal/game/rules"
	"github.com/arrakis/arrakis-server-go/internal/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.GRPC.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.GRPC.KeepaliveTime)
	assert.Equal(t, storage.DriverFile, cfg.Storage.Driver)
	assert.Equal(t, int(rules.LatestVersion), cfg.Engine.Version)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  grpc:
    address: "127.0.0.1:7000"
  rate_limit:
    requests_per_second: 5
    burst: 10
engine:
  version: 3
  max_turns: 15
  rules: [Homeworlds, AdvancedCombat]
storage:
  driver: sqlite
  source: arrakis.db
logging:
  level: debug
  format: json
`)
	t.Setenv("ARRAKIS_SERVER_GRPC_ADDRESS", "0.0.0.0:7100")
	t.Setenv("ARRAKIS_STORAGE_SOURCE", "/var/lib/arrakis.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7100", cfg.Server.GRPC.Address, "environment overrides the file")
	assert.Equal(t, "/var/lib/arrakis.db", cfg.Storage.Source)
	assert.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 5.0, cfg.Server.RateLimit.RequestsPerSecond)
	assert.Equal(t, "json", cfg.Logging.Format)

	mc := cfg.Engine.MatchConfig(99, 4)
	assert.Equal(t, rules.Version(3), mc.Version)
	assert.Equal(t, 15, mc.MaxTurns)
	assert.True(t, mc.Rules.Has(rules.RuleHomeworlds))
	assert.True(t, mc.Rules.Has(rules.RuleAdvancedCombat))
	assert.NoError(t, mc.Validate())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"driver", "storage:\n  driver: redis\n", "storage.driver"},
		{"level", "logging:\n  level: loud\n", "logging.level"},
		{"streams", "server:\n  grpc:\n    max_concurrent_streams: 0\n", "max_concurrent_streams"},
		{"rate", "server:\n  rate_limit:\n    burst: -1\n", "rate_limit"},
		{"version", "engine:\n  version: 42\n", "engine defaults"},
		{"rule prerequisite", "engine:\n  rules: [HomeworldThresholds]\n", "engine defaults"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReportsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated"))
	assert.ErrorContains(t, err, "read config")
}
