// Package config loads server configuration from YAML, an optional .env file
// and ARRAKIS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/arrakis/arrakis-server-go/internal/game"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
	"github.com/arrakis/arrakis-server-go/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. ARRAKIS_SERVER_GRPC_ADDRESS.
const EnvPrefix = "ARRAKIS"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// ShutdownTimeout bounds graceful stop of both listeners.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Address              string        `mapstructure:"address"`
	MaxConcurrentStreams int           `mapstructure:"max_concurrent_streams"`
	KeepaliveTime        time.Duration `mapstructure:"keepalive_time"`
	KeepaliveTimeout     time.Duration `mapstructure:"keepalive_timeout"`
}

type WebSocketConfig struct {
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AuthConfig holds the bcrypt hash of the host password. An empty hash
// disables host commands over the network.
type AuthConfig struct {
	HostPasswordHash string `mapstructure:"host_password_hash"`
}

// EngineConfig supplies defaults for matches created without explicit settings.
type EngineConfig struct {
	Version  int      `mapstructure:"version"`
	MaxTurns int      `mapstructure:"max_turns"`
	Rules    []string `mapstructure:"rules"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// Source is a directory, a database file or a connection string depending on Driver.
	Source string `mapstructure:"source"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 256)
	v.SetDefault("server.grpc.keepalive_time", 30*time.Second)
	v.SetDefault("server.grpc.keepalive_timeout", 10*time.Second)
	v.SetDefault("server.websocket.address", ":9091")
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.websocket.ping_interval", 30*time.Second)
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests_per_second", 20.0)
	v.SetDefault("server.rate_limit.burst", 40)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("auth.host_password_hash", "")
	v.SetDefault("engine.version", int(rules.LatestVersion))
	v.SetDefault("engine.max_turns", game.DefaultMaxTurns)
	v.SetDefault("engine.rules", []string{})
	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("storage.source", "data/matches")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads path (if it exists) and applies environment overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks limits, the storage driver and the engine defaults.
func (c *Config) Validate() error {
	if c.Server.GRPC.Address == "" {
		return errors.New("server.grpc.address is required")
	}
	if c.Server.GRPC.MaxConcurrentStreams <= 0 {
		return fmt.Errorf("server.grpc.max_concurrent_streams must be positive, got %d", c.Server.GRPC.MaxConcurrentStreams)
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RequestsPerSecond <= 0 || c.Server.RateLimit.Burst <= 0) {
		return errors.New("server.rate_limit requires positive requests_per_second and burst")
	}
	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite, storage.DriverPostgres:
	default:
		return fmt.Errorf("storage.driver %q is not one of file, sqlite, postgres", c.Storage.Driver)
	}
	if c.Storage.Source == "" {
		return errors.New("storage.source is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	defaults := c.Engine.MatchConfig(0, game.MinPlayers)
	if err := defaults.Validate(); err != nil {
		return fmt.Errorf("engine defaults: %w", err)
	}
	return nil
}

// MatchConfig builds a normalized game config from the engine defaults.
func (e EngineConfig) MatchConfig(seed int64, players int) game.Config {
	rs := make(rules.RuleSet, 0, len(e.Rules))
	for _, r := range e.Rules {
		rs = append(rs, rules.Rule(r))
	}
	return game.Config{
		Seed:        seed,
		Version:     rules.Version(e.Version),
		Rules:       rs,
		PlayerCount: players,
		MaxTurns:    e.MaxTurns,
	}.Normalize()
}
