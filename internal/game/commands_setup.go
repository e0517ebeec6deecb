package game

import (
	"slices"
	"strings"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const (
	traitorsDealt    = 4
	fremenSetupForce = 10
)

type setupState struct {
	YellowPlaced bool
	BluePlaced   bool
}

// EstablishPlayers seats the players. Without explicit factions they are drawn at random.
type EstablishPlayers struct {
	Host
	Names    []string       `json:"names"`
	Factions []data.Faction `json:"factions,omitempty"`
}

func (c *EstablishPlayers) Kind() Kind { return KindEstablishPlayers }

func (c *EstablishPlayers) Check(g *Game) error {
	if err := g.requirePhase(c.Kind(), rules.PhaseAwaitingPlayers); err != nil {
		return err
	}
	if len(c.Names) != g.Config.PlayerCount {
		return reject(c.Kind(), ReasonInvalidAmount, "expected %d players, got %d", g.Config.PlayerCount, len(c.Names))
	}
	seen := make(map[string]bool, len(c.Names))
	for _, name := range c.Names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return reject(c.Kind(), ReasonInvalidTarget, "player name must not be empty")
		}
		if seen[key] {
			return reject(c.Kind(), ReasonInvalidTarget, "duplicate player name %q", name)
		}
		seen[key] = true
	}
	if len(c.Factions) == 0 {
		if len(g.catalog.Factions()) < len(c.Names) {
			return reject(c.Kind(), ReasonCapacityExceeded, "not enough factions for %d players", len(c.Names))
		}
		return nil
	}
	if len(c.Factions) != len(c.Names) {
		return reject(c.Kind(), ReasonInvalidAmount, "%d factions for %d players", len(c.Factions), len(c.Names))
	}
	taken := make(map[data.Faction]bool, len(c.Factions))
	for _, f := range c.Factions {
		if _, ok := g.catalog.Profile(f); !ok {
			return reject(c.Kind(), ReasonInvalidTarget, "unknown faction %q", f)
		}
		if taken[f] {
			return reject(c.Kind(), ReasonInvalidTarget, "faction %s chosen twice", f)
		}
		taken[f] = true
	}
	return nil
}

func (c *EstablishPlayers) Apply(g *Game) {
	factions := slices.Clone(c.Factions)
	if len(factions) == 0 {
		pool := g.catalog.Factions()
		shuffle(g.rng, pool)
		factions = pool[:len(c.Names)]
	}

	type seatAssignment struct {
		name    string
		faction data.Faction
	}
	seats := make([]seatAssignment, len(c.Names))
	for i, name := range c.Names {
		seats[i] = seatAssignment{name: strings.TrimSpace(name), faction: factions[i]}
	}
	shuffle(g.rng, seats)

	g.Players = make([]*Player, len(seats))
	for seat, s := range seats {
		profile, _ := g.catalog.Profile(s.faction)
		p := newPlayer(s.name, profile, seat)
		for _, pl := range profile.Starting {
			p.Board.add(pl.Location, Forces{Normal: pl.Normal, Special: pl.Special})
		}
		g.Players[seat] = p
		g.record(report.NewEntry(report.EventFactionAssigned, string(p.Faction), p.Name))
	}

	g.TreacheryDeck = g.catalog.TreacheryDeck()
	shuffle(g.rng, g.TreacheryDeck)
	g.SpiceDeck = g.catalog.SpiceDeck()
	shuffle(g.rng, g.SpiceDeck)

	g.TraitorDeck = nil
	for _, p := range g.Players {
		g.TraitorDeck = append(g.TraitorDeck, p.Leaders()...)
	}
	shuffle(g.rng, g.TraitorDeck)
	for _, p := range g.Players {
		n := min(traitorsDealt, len(g.TraitorDeck))
		p.TraitorOptions = slices.Clone(g.TraitorDeck[:n])
		g.TraitorDeck = g.TraitorDeck[n:]
		if p.Faction == data.FactionHarkonnen {
			p.Traitors = p.TraitorOptions
			p.TraitorOptions = nil
		}
		g.record(report.NewEntryWithAmount(report.EventTraitorsDealt, string(p.Faction), "", n))
	}
	g.record(report.NewEntryWithAmount(report.EventPlayersEstablished, "", "", len(g.Players)))
}

// TraitorSelected keeps one of the dealt traitor cards.
type TraitorSelected struct {
	By
	Leader data.LeaderID `json:"leader"`
}

func (c *TraitorSelected) Kind() Kind { return KindTraitorSelected }

func (c *TraitorSelected) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseSelectingTraitors)
	if err != nil {
		return err
	}
	if !mustSelectTraitor(p) {
		return reject(c.Kind(), ReasonAlreadyActed, "%s already holds traitors", p.Faction)
	}
	if !slices.Contains(p.TraitorOptions, c.Leader) {
		return reject(c.Kind(), ReasonInvalidTarget, "%s was not dealt to %s", c.Leader, p.Faction)
	}
	return nil
}

func (c *TraitorSelected) Apply(g *Game) {
	p := g.Player(c.Faction)
	p.Traitors = []data.LeaderID{c.Leader}
	p.TraitorOptions = nil
	g.record(report.NewEntry(report.EventTraitorSelected, string(p.Faction), ""))
}

func mustSelectTraitor(p *Player) bool {
	return len(p.Traitors) == 0 && len(p.TraitorOptions) > 0
}

// BluePrediction records which faction the Bene Gesserit expect to win, and when.
type BluePrediction struct {
	By
	Winner data.Faction `json:"winner"`
	Turn   int          `json:"turn"`
}

func (c *BluePrediction) Kind() Kind { return KindBluePrediction }

func (c *BluePrediction) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseBluePredicting)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionBeneGesserit); err != nil {
		return err
	}
	if c.Winner == data.FactionBeneGesserit || !g.InPlay(c.Winner) {
		return reject(c.Kind(), ReasonInvalidTarget, "cannot predict %q", c.Winner)
	}
	if c.Turn < 1 || c.Turn > g.Config.MaxTurns {
		return reject(c.Kind(), ReasonInvalidAmount, "turn %d outside 1..%d", c.Turn, g.Config.MaxTurns)
	}
	return nil
}

func (c *BluePrediction) Apply(g *Game) {
	g.Prediction = Prediction{Faction: c.Winner, Turn: c.Turn}
	g.record(report.NewEntry(report.EventPredictionMade, string(c.Faction), ""))
}

// YellowSetup places the Fremen starting forces.
type YellowSetup struct {
	By
	Placements []data.Placement `json:"placements"`
}

func (c *YellowSetup) Kind() Kind { return KindYellowSetup }

var fremenHomeland = []data.TerritoryID{data.SietchTabr, data.FalseWallSouth, data.FalseWallWest}

func (c *YellowSetup) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseYellowSettingUp)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionFremen); err != nil {
		return err
	}
	var total Forces
	for _, pl := range c.Placements {
		f := Forces{Normal: pl.Normal, Special: pl.Special}
		if err := requireForces(c.Kind(), f); err != nil {
			return err
		}
		loc, err := g.requireLocation(c.Kind(), pl.Location)
		if err != nil {
			return err
		}
		if !slices.Contains(fremenHomeland, loc.Territory) {
			return reject(c.Kind(), ReasonInvalidTarget, "%s is outside the Fremen homeland", pl.Location)
		}
		total = total.Add(f)
	}
	if total.Total() != fremenSetupForce {
		return reject(c.Kind(), ReasonInvalidAmount, "place exactly %d forces, got %d", fremenSetupForce, total.Total())
	}
	if !p.Reserves.Covers(total) {
		return reject(c.Kind(), ReasonInsufficientResources, "not enough forces in reserve")
	}
	return nil
}

func (c *YellowSetup) Apply(g *Game) {
	p := g.Player(c.Faction)
	for _, pl := range c.Placements {
		g.placeForces(p, pl.Location, Forces{Normal: pl.Normal, Special: pl.Special})
		g.record(report.NewEntryWithAmount(report.EventForcesPlaced, string(p.Faction), string(pl.Location), pl.Normal+pl.Special))
	}
	g.Setup.YellowPlaced = true
}

// BlueSetup places the single Bene Gesserit starting force.
type BlueSetup struct {
	By
	Location data.LocationID `json:"location"`
}

func (c *BlueSetup) Kind() Kind { return KindBlueSetup }

func (c *BlueSetup) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseBlueSettingUp)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionBeneGesserit); err != nil {
		return err
	}
	if _, err := g.requireLocation(c.Kind(), c.Location); err != nil {
		return err
	}
	if !g.applies(rules.RuleAdvancedBeneGesserit) && c.Location != data.PolarSink {
		return reject(c.Kind(), ReasonInvalidTarget, "the starting force goes to the Polar Sink")
	}
	if p.Reserves.Normal < 1 {
		return reject(c.Kind(), ReasonInsufficientResources, "no forces in reserve")
	}
	return nil
}

func (c *BlueSetup) Apply(g *Game) {
	p := g.Player(c.Faction)
	g.placeForces(p, c.Location, Forces{Normal: 1})
	g.record(report.NewEntryWithAmount(report.EventForcesPlaced, string(p.Faction), string(c.Location), 1))
	g.Setup.BluePlaced = true
}

// Setup routines

func playersSeated(g *Game) bool { return len(g.Players) > 0 }

func traitorsChosen(g *Game) bool {
	for _, p := range g.Players {
		if mustSelectTraitor(p) {
			return false
		}
	}
	return true
}

func predictionMade(g *Game) bool { return g.Prediction.Faction != data.FactionNone }

func (g *Game) nextSetupStep() {
	switch {
	case g.InPlay(data.FactionBeneGesserit) && !predictionMade(g):
		g.enter(rules.PhaseBluePredicting)
	case g.InPlay(data.FactionFremen) && !g.Setup.YellowPlaced:
		g.enter(rules.PhaseYellowSettingUp)
	case g.InPlay(data.FactionBeneGesserit) && !g.Setup.BluePlaced:
		g.enter(rules.PhaseBlueSettingUp)
	default:
		g.concludeSetup()
	}
}

func (g *Game) concludeSetup() {
	for _, p := range g.Players {
		draws := 1
		if p.Faction == data.FactionHarkonnen {
			draws = 2
		}
		for i := 0; i < draws; i++ {
			g.dealCard(p)
		}
	}
	g.record(report.NewEntryWithAmount(report.EventStartingHandsDealt, "", "", len(g.Players)))
	g.startTurn()
}

func (g *Game) startTurn() {
	g.Turn++
	g.Effects.CleanupEndOfTurn()
	g.record(report.NewEntryWithAmount(report.EventTurnStarted, "", "", g.Turn))
	g.enter(rules.PhaseStormStart)
}
