package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// battleground returns an open desert territory and one of its storm-free locations.
func battleground(t *testing.T, g *Game) (data.TerritoryID, data.LocationID) {
	t.Helper()
	for _, terr := range g.catalog.Territories() {
		if terr == data.PolarSinkTerritory || g.isStronghold(terr) {
			continue
		}
		for _, loc := range g.catalog.LocationsOf(terr) {
			if !g.inStorm(loc) {
				return terr, loc
			}
		}
	}
	t.Fatal("no storm-free territory")
	return "", ""
}

func strongestLeader(g *Game, p *Player) data.LeaderID {
	best := p.AliveLeaders()[0]
	for _, id := range p.AliveLeaders() {
		if g.leader(id).Value > g.leader(best).Value {
			best = id
		}
	}
	return best
}

func weakestLeader(g *Game, p *Player) data.LeaderID {
	worst := p.AliveLeaders()[0]
	for _, id := range p.AliveLeaders() {
		if g.leader(id).Value < g.leader(worst).Value {
			worst = id
		}
	}
	return worst
}

type battleSetup struct {
	e        *Engine
	g        *Game
	terr     data.TerritoryID
	loc      data.LocationID
	agg, def *Player
}

// startBattle puts five Atreides and five Harkonnen forces in one territory
// and plays into BattleInitiating.
func startBattle(t *testing.T) battleSetup {
	t.Helper()
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	playUntil(t, e, rules.PhaseShipmentAndMoveConcluded)
	g := e.Game()
	terr, loc := battleground(t, g)
	g.placeForces(g.Player(data.FactionAtreides), loc, Forces{Normal: 5})
	g.placeForces(g.Player(data.FactionHarkonnen), loc, Forces{Normal: 5})

	require.NoError(t, e.Submit(&EndPhase{}))
	require.Equal(t, rules.PhaseBattleInitiating, g.Phase)
	agg := g.aggressor()
	require.NotNil(t, agg)
	def := g.Player(data.FactionHarkonnen)
	if agg == def {
		def = g.Player(data.FactionAtreides)
	}
	require.Equal(t, []data.TerritoryID{terr}, g.battleTerritories())
	return battleSetup{e: e, g: g, terr: terr, loc: loc, agg: agg, def: def}
}

func (s battleSetup) initiate(t *testing.T) {
	t.Helper()
	require.NoError(t, s.e.Submit(&BattleInitiated{By: By{s.agg.Faction}, Territory: s.terr, Defender: s.def.Faction}))
	require.Equal(t, rules.PhaseBattlePlanning, s.g.Phase)
}

func TestBattleInitiationRules(t *testing.T) {
	s := startBattle(t)
	assert.Equal(t, []data.Faction{s.agg.Faction}, s.e.Awaited())

	err := s.e.Submit(&BattleInitiated{By: By{s.def.Faction}, Territory: s.terr, Defender: s.agg.Faction})
	assert.Equal(t, ReasonNotYourTurn, ReasonOf(err))

	err = s.e.Submit(&BattleInitiated{By: By{s.agg.Faction}, Territory: s.terr, Defender: data.FactionEmperor})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))

	err = s.e.Submit(&BattleInitiated{By: By{s.agg.Faction}, Territory: data.PolarSinkTerritory, Defender: s.def.Faction})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))
}

func TestBattlePlanValidation(t *testing.T) {
	s := startBattle(t)
	s.initiate(t)

	err := s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Normal: 1}})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err), "a leader is required while one is available")

	err = s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Leader: strongestLeader(s.g, s.agg), Normal: 6}})
	assert.Equal(t, ReasonInvalidAmount, ReasonOf(err))

	err = s.e.Submit(&BattlePlanned{By: By{data.FactionEmperor}, BattlePlan: BattlePlan{}})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))

	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Leader: strongestLeader(s.g, s.agg), Normal: 1}}))
	err = s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Leader: strongestLeader(s.g, s.agg), Normal: 1}})
	assert.Equal(t, ReasonAlreadyActed, ReasonOf(err))
	assert.Equal(t, []data.Faction{s.def.Faction}, s.e.Awaited())
}

func TestBattleStrongerSideWins(t *testing.T) {
	s := startBattle(t)
	s.initiate(t)
	aggLeader, defLeader := strongestLeader(s.g, s.agg), weakestLeader(s.g, s.def)
	s.agg.Traitors, s.def.Traitors = nil, nil
	aggSpice := s.agg.Spice

	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Leader: aggLeader, Normal: 3}}))
	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.def.Faction}, BattlePlan: BattlePlan{Leader: defLeader, Normal: 1}}))
	require.Equal(t, rules.PhaseCallingTraitors, s.g.Phase)

	err := s.e.Submit(&TraitorCalled{By: By{s.def.Faction}, Call: true})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))

	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.agg.Faction}}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.def.Faction}}))

	assert.Equal(t, rules.PhaseBattleReport, s.g.Phase)
	assert.Nil(t, s.g.Battle)
	assert.Equal(t, Forces{Normal: 2}, s.agg.Board[s.loc])
	assert.True(t, s.def.Board[s.loc].Empty())
	assert.True(t, s.agg.LeaderAlive(aggLeader))
	assert.True(t, s.def.LeaderAlive(defLeader))
	assert.Equal(t, aggSpice, s.agg.Spice)
	assert.Equal(t, 1, s.g.Reports.Current().Count(report.EventBattleWon))
}

func TestBattleTraitorWins(t *testing.T) {
	s := startBattle(t)
	s.initiate(t)
	aggLeader := strongestLeader(s.g, s.agg)
	s.agg.Traitors = nil
	s.def.Traitors = []data.LeaderID{aggLeader}
	defSpice := s.def.Spice

	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Leader: aggLeader, Normal: 5}}))
	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.def.Faction}, BattlePlan: BattlePlan{Leader: weakestLeader(s.g, s.def)}}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.def.Faction}, Call: true}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.agg.Faction}}))

	assert.Equal(t, rules.PhaseBattleReport, s.g.Phase)
	assert.True(t, s.agg.Board[s.loc].Empty())
	assert.Equal(t, Forces{Normal: 5}, s.def.Board[s.loc])
	assert.True(t, s.agg.LeaderDead(aggLeader))
	assert.Equal(t, defSpice+s.g.leader(aggLeader).Value, s.def.Spice)
}

func TestBattleMutualTraitorsDestroyBoth(t *testing.T) {
	s := startBattle(t)
	s.initiate(t)
	aggLeader, defLeader := strongestLeader(s.g, s.agg), weakestLeader(s.g, s.def)
	s.agg.Traitors = []data.LeaderID{defLeader}
	s.def.Traitors = []data.LeaderID{aggLeader}

	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Leader: aggLeader}}))
	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.def.Faction}, BattlePlan: BattlePlan{Leader: defLeader}}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.agg.Faction}, Call: true}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.def.Faction}, Call: true}))

	assert.True(t, s.agg.Board[s.loc].Empty())
	assert.True(t, s.def.Board[s.loc].Empty())
	assert.True(t, s.agg.LeaderDead(aggLeader))
	assert.True(t, s.def.LeaderDead(defLeader))
	assert.Equal(t, 1, s.g.Reports.Current().Count(report.EventBattleDrawn))
	assert.Equal(t, rules.PhaseBattleReport, s.g.Phase)
}

func TestAdvancedCombatChargesDialedForces(t *testing.T) {
	cfg := testConfig(42, 4)
	cfg.Rules = rules.RuleSet{rules.RuleAdvancedCombat}
	e := newTestEngine(t, cfg, fourFactions...)
	g := e.Game()

	assert.Equal(t, 3, g.dialCost(g.Player(data.FactionAtreides), Forces{Normal: 2, Special: 1}))

	plain := newTestEngine(t, testConfig(42, 4), fourFactions...)
	assert.Zero(t, plain.Game().dialCost(plain.Game().Player(data.FactionAtreides), Forces{Normal: 2}))
}

func TestStormCutsForcesOutOfBattle(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	g := e.Game()
	terr, loc := battleground(t, g)
	atreides := g.Player(data.FactionAtreides)
	g.placeForces(atreides, loc, Forces{Normal: 4})

	assert.Equal(t, Forces{Normal: 4}, g.battleForces(atreides, terr))
	l, _ := g.catalog.Location(loc)
	g.StormSector = l.Sector
	assert.True(t, g.battleForces(atreides, terr).Empty())
}
