package game

import (
	"fmt"

	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const (
	MinPlayers      = 2
	MaxPlayers      = 10
	DefaultMaxTurns = 10
	MaxTurnsLimit   = 20
)

// Config fixes everything a game's behaviour depends on besides its command log.
type Config struct {
	Seed        int64         `json:"seed"`
	Version     rules.Version `json:"version"`
	Rules       rules.RuleSet `json:"rules"`
	PlayerCount int           `json:"player_count"`
	MaxTurns    int           `json:"max_turns"`
}

// Normalize fills defaults and canonicalizes the rule set.
func (c Config) Normalize() Config {
	if c.Version == 0 {
		c.Version = rules.LatestVersion
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	c.Rules = rules.NewRuleSet(c.Rules...)
	return c
}

// Validate reports the first configuration problem as a *ConfigError.
func (c Config) Validate() error {
	if !c.Version.Supported() {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported version %d (supported %d..%d)", c.Version, rules.MinVersion, rules.LatestVersion)}
	}
	if c.PlayerCount < MinPlayers || c.PlayerCount > MaxPlayers {
		return &ConfigError{Field: "player_count", Message: fmt.Sprintf("%d outside %d..%d", c.PlayerCount, MinPlayers, MaxPlayers)}
	}
	if c.MaxTurns < 1 || c.MaxTurns > MaxTurnsLimit {
		return &ConfigError{Field: "max_turns", Message: fmt.Sprintf("%d outside 1..%d", c.MaxTurns, MaxTurnsLimit)}
	}
	if err := c.Rules.Validate(); err != nil {
		return &ConfigError{Field: "rules", Message: err.Error()}
	}
	return nil
}

// Applies reports whether rule r is enabled and effective under the configured version.
func (c Config) Applies(r rules.Rule) bool {
	return rules.Applicable(c.Rules, r, c.Version)
}
