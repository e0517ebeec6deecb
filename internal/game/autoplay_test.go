package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

var tables = [][]data.Faction{
	{data.FactionAtreides, data.FactionHarkonnen},
	{data.FactionFremen, data.FactionBeneGesserit, data.FactionIxian},
	{data.FactionTleilaxu, data.FactionCHOAM, data.FactionRichese, data.FactionGuild},
	{data.FactionEmperor, data.FactionFremen, data.FactionRichese, data.FactionIxian, data.FactionBeneGesserit},
	{data.FactionAtreides, data.FactionHarkonnen, data.FactionFremen, data.FactionEmperor, data.FactionGuild, data.FactionBeneGesserit, data.FactionCHOAM},
	allFactions[2:],
	allFactions,
}

// ruleSets enables each rule on its own, with its prerequisite, then all of them.
func ruleSets() []rules.RuleSet {
	sets := []rules.RuleSet{nil}
	for _, r := range rules.AllRules() {
		set := rules.NewRuleSet(r)
		if req := r.Requires(); req != "" {
			set = rules.NewRuleSet(r, req)
		}
		sets = append(sets, set)
	}
	return append(sets, rules.NewRuleSet(rules.AllRules()...))
}

func TestAutoplayAcrossTablesAndRules(t *testing.T) {
	for ti, factions := range tables {
		for _, set := range ruleSets() {
			for v := rules.MinVersion; v <= rules.LatestVersion; v++ {
				name := fmt.Sprintf("%d players/%v/v%d", len(factions), []rules.Rule(set), v)
				t.Run(name, func(t *testing.T) {
					cfg := Config{Seed: int64(100*ti + int(v)), MaxTurns: 3, Version: v, Rules: set}
					e := newTestEngine(t, cfg, factions...)
					autoplay(t, e, 5000, nil)

					g := e.Game()
					assert.True(t, e.Ended(), "stuck in %s on turn %d", g.Phase, g.Turn)
					assert.Empty(t, g.TransitionFaults)

					replayed, err := LoadFrom(e.Config(), e.History())
					require.NoError(t, err)
					assert.Equal(t, e.Checksum(), replayed.Checksum())
				})
			}
		}
	}
}
