package game

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

var fourFactions = []data.Faction{
	data.FactionAtreides,
	data.FactionHarkonnen,
	data.FactionEmperor,
	data.FactionGuild,
}

// fixedClock advances one second per call so entry times are reproducible.
func fixedClock() func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func testConfig(seed int64, players int) Config {
	return Config{Seed: seed, PlayerCount: players, MaxTurns: 3}
}

// newTestEngine creates an engine and seats the given factions.
func newTestEngine(t *testing.T, cfg Config, factions ...data.Faction) *Engine {
	t.Helper()
	cfg.PlayerCount = len(factions)
	e, err := New(cfg, WithLogger(zaptest.NewLogger(t)), WithClock(fixedClock()))
	require.NoError(t, err)
	names := make([]string, len(factions))
	for i, f := range factions {
		names[i] = "player-" + string(f)
	}
	require.NoError(t, e.Submit(&EstablishPlayers{Names: names, Factions: factions}))
	return e
}

// nextMove picks a simple legal command: the host closes phases first, then
// the first awaited player takes the most passive option available.
func nextMove(g *Game) Command {
	if g.Ended() {
		return nil
	}
	if slices.Contains(g.AdmissibleCommands(data.FactionNone), KindEndPhase) {
		return &EndPhase{}
	}
	awaited := g.Awaited()
	if len(awaited) == 0 {
		return nil
	}
	p := g.Player(awaited[0])
	by := By{Faction: p.Faction}
	switch g.Phase {
	case rules.PhaseSelectingTraitors:
		return &TraitorSelected{By: by, Leader: p.TraitorOptions[0]}
	case rules.PhaseBluePredicting:
		for _, o := range g.Players {
			if o != p {
				return &BluePrediction{By: by, Winner: o.Faction, Turn: g.Config.MaxTurns}
			}
		}
	case rules.PhaseYellowSettingUp:
		return &YellowSetup{By: by, Placements: []data.Placement{{Location: "sietch-tabr", Normal: fremenSetupForce}}}
	case rules.PhaseBlueSettingUp:
		return &BlueSetup{By: by, Location: data.PolarSink}
	case rules.PhaseDiallingStorm:
		return &StormDialled{By: by, Amount: 1}
	case rules.PhaseYellowRidingMonsterA, rules.PhaseYellowRidingMonsterB:
		return &YellowRidesMonster{By: by, Passed: true}
	case rules.PhaseWhiteAnnouncingAuction:
		return &WhiteAnnouncesAuction{By: by, Moment: MomentSkip}
	case rules.PhaseWhiteSpecifyingAuction:
		return &WhiteSpecifiesAuction{By: by, Card: p.Hand[0]}
	case rules.PhaseGreySelectingCard:
		return &GreySelectsCard{By: by, Card: g.Bidding.Auction[0]}
	case rules.PhaseBidding, rules.PhaseWhiteBidding:
		return &Bid{By: by, Passed: true}
	case rules.PhaseOrangeDeciding:
		return &OrangeDetermined{By: by, Moment: MomentNormal}
	case rules.PhaseShipping:
		return &Shipment{By: by, Passed: true}
	case rules.PhaseBlueAccompanying:
		return &BlueAccompanies{By: by, Passed: true}
	case rules.PhaseMoving:
		return &Movement{By: by, Passed: true}
	case rules.PhaseBattleInitiating:
		for _, t := range g.battleTerritories() {
			if !g.combatants(t)[p] {
				continue
			}
			for _, o := range g.Players {
				if g.combatants(t)[o] && !g.sameSide(p.Faction, o.Faction) {
					return &BattleInitiated{By: by, Territory: t, Defender: o.Faction}
				}
			}
		}
	case rules.PhaseBattlePlanning:
		plan := BattlePlan{}
		if alive := p.AliveLeaders(); len(alive) > 0 {
			plan.Leader = alive[0]
		} else if g.holdsType(p, data.CardCheapHero) {
			plan.CheapHero = true
		}
		return &BattlePlanned{By: by, BattlePlan: plan}
	case rules.PhaseCallingTraitors:
		return &TraitorCalled{By: by}
	case rules.PhaseBattleConcluding:
		return &BattleConcluded{By: by}
	}
	return nil
}

// autoplay submits nextMove until the game ends, no move is found, or steps
// run out. each is called after every accepted command.
func autoplay(t *testing.T, e *Engine, steps int, each func(step int)) {
	t.Helper()
	for i := 0; i < steps; i++ {
		cmd := nextMove(e.Game())
		if cmd == nil {
			return
		}
		require.NoError(t, e.Submit(cmd), "step %d: %s during %s", i, cmd.Kind(), e.Game().Phase)
		if each != nil {
			each(i)
		}
	}
}

// playUntil autoplays until phase p is current.
func playUntil(t *testing.T, e *Engine, p rules.Phase) {
	t.Helper()
	for i := 0; i < 2000 && e.Game().Phase != p; i++ {
		cmd := nextMove(e.Game())
		require.NotNil(t, cmd, "stuck in %s waiting for %s", e.Game().Phase, p)
		require.NoError(t, e.Submit(cmd))
	}
	require.Equal(t, p, e.Game().Phase)
}

// playUntilTurn autoplays until phase p is current on the given turn.
func playUntilTurn(t *testing.T, e *Engine, turn int, p rules.Phase) {
	t.Helper()
	g := e.Game()
	for i := 0; i < 5000 && (g.Turn != turn || g.Phase != p); i++ {
		cmd := nextMove(g)
		require.NotNil(t, cmd, "stuck in %s on turn %d waiting for %s on turn %d", g.Phase, g.Turn, p, turn)
		require.NoError(t, e.Submit(cmd))
	}
	require.Equal(t, turn, g.Turn)
	require.Equal(t, p, g.Phase)
}

// give moves card into p's hand from wherever it is.
func give(g *Game, p *Player, card data.CardID) {
	for _, o := range g.Players {
		o.dropCard(card)
	}
	g.TreacheryDeck = slices.DeleteFunc(g.TreacheryDeck, func(c data.CardID) bool { return c == card })
	g.TreacheryDiscard = slices.DeleteFunc(g.TreacheryDiscard, func(c data.CardID) bool { return c == card })
	if g.Bidding != nil {
		g.Bidding.Auction = slices.DeleteFunc(g.Bidding.Auction, func(c data.CardID) bool { return c == card })
	}
	p.takeCard(card)
}
