package game

import (
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/effects"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// Prediction is the Bene Gesserit's secret victory prediction.
type Prediction struct {
	Faction data.Faction `json:"faction"`
	Turn    int          `json:"turn"`
}

type stormState struct {
	Dialers []data.Faction
	Dials   map[data.Faction]int
	Held    bool
	Moved   int
}

type blowState struct {
	Done    [2]bool
	Ride    data.TerritoryID
	Nexus   bool
	Devours int
}

// Game is the complete state of one match. It is mutated only by the
// engine's single writer through command Apply methods and machine routines.
type Game struct {
	Config Config

	Turn      int
	MainPhase rules.MainPhase
	Phase     rules.Phase

	// Players is indexed by seat.
	Players     []*Player
	StormSector int

	TreacheryDeck    []data.CardID
	TreacheryDiscard []data.CardID
	SpiceDeck        []int
	SpiceDiscard     [2][]int
	WormsAside       []int
	TraitorDeck      []data.LeaderID
	Spice            map[data.LocationID]int

	Effects       *effects.Registry
	Acted         map[data.Faction]bool
	HostProceeded bool

	Setup    setupState
	Storm    stormState
	Blow     blowState
	Bidding  *biddingState
	ShipMove *shipMoveState
	Battle   *battleState

	Prediction Prediction
	Winners    []data.Faction

	Reports          report.Log
	TransitionFaults []string

	catalog data.Catalog
	rng     *Random
	bus     *report.EventBus
	logger  *zap.Logger
	cascade int
}

func newGame(cfg Config, catalog data.Catalog, logger *zap.Logger) *Game {
	return &Game{
		Config:    cfg,
		MainPhase: rules.MainPhaseSetup,
		Phase:     rules.PhaseAwaitingPlayers,
		Spice:     make(map[data.LocationID]int),
		Effects:   effects.NewRegistry(),
		Acted:     make(map[data.Faction]bool),
		catalog:   catalog,
		rng:       newRandom(cfg.Seed),
		logger:    logger,
	}
}

// Catalog returns the static data the game runs on.
func (g *Game) Catalog() data.Catalog {
	return g.catalog
}

// Player returns the player of faction f, or nil if f is not in play.
func (g *Game) Player(f data.Faction) *Player {
	for _, p := range g.Players {
		if p.Faction == f {
			return p
		}
	}
	return nil
}

// InPlay reports whether faction f has a seat.
func (g *Game) InPlay(f data.Faction) bool {
	return g.Player(f) != nil
}

// Ended reports whether the game has reached its terminal phase.
func (g *Game) Ended() bool {
	return g.MainPhase == rules.MainPhaseEnded
}

func (g *Game) applies(r rules.Rule) bool {
	return g.Config.Applies(r)
}

func (g *Game) version() rules.Version {
	return g.Config.Version
}

func (g *Game) record(entries ...report.Entry) {
	g.Reports.Add(entries...)
	if g.bus != nil {
		g.bus.PublishBatch(entries)
	}
}

func (g *Game) hasActed(f data.Faction) bool {
	return g.Acted[f]
}

func (g *Game) markActed(f data.Faction) {
	g.Acted[f] = true
}

func (g *Game) resetActed() {
	clear(g.Acted)
}

func (g *Game) card(id data.CardID) data.TreacheryCard {
	card, _ := g.catalog.Card(id)
	return card
}

func (g *Game) leader(id data.LeaderID) data.Leader {
	l, _ := g.catalog.Leader(id)
	return l
}

// cardOfType returns the first card of type t in p's hand.
func (g *Game) cardOfType(p *Player, t data.CardType) (data.CardID, bool) {
	for _, id := range p.Hand {
		if g.card(id).Type == t {
			return id, true
		}
	}
	return 0, false
}

func (g *Game) holdsType(p *Player, t data.CardType) bool {
	_, ok := g.cardOfType(p, t)
	return ok
}

// Spice economy

func (g *Game) gainSpice(p *Player, amount int, reason string) {
	if amount <= 0 {
		return
	}
	p.Spice += amount
	g.record(report.NewEntryWithAmount(report.EventSpiceReceived, string(p.Faction), reason, amount))
}

// pay moves spice from p to faction to, or to the bank when to is FactionNone
// or not in play. Callers have already checked p can afford it.
func (g *Game) pay(p *Player, to data.Faction, amount int, reason string) {
	if amount <= 0 {
		return
	}
	p.Spice -= amount
	g.record(report.NewEntryWithAmount(report.EventSpicePaid, string(p.Faction), reason, amount).With("to", string(to)))
	if recipient := g.Player(to); recipient != nil && recipient != p {
		recipient.Spice += amount
	}
}

// Treachery deck

func (g *Game) drawTreachery() (data.CardID, bool) {
	if len(g.TreacheryDeck) == 0 {
		if len(g.TreacheryDiscard) == 0 {
			return 0, false
		}
		g.TreacheryDeck = g.TreacheryDiscard
		g.TreacheryDiscard = nil
		shuffle(g.rng, g.TreacheryDeck)
		g.record(report.NewEntryWithAmount(report.EventDeckReshuffled, "", "treachery", len(g.TreacheryDeck)))
	}
	card := g.TreacheryDeck[0]
	g.TreacheryDeck = g.TreacheryDeck[1:]
	return card, true
}

// returnToDeck puts cards back on top of the treachery deck, preserving their order.
func (g *Game) returnToDeck(cards ...data.CardID) {
	g.TreacheryDeck = append(slices.Clone(cards), g.TreacheryDeck...)
}

func (g *Game) discard(p *Player, card data.CardID) {
	if p.dropCard(card) {
		g.TreacheryDiscard = append(g.TreacheryDiscard, card)
		g.record(report.NewEntry(report.EventCardDiscarded, string(p.Faction), g.card(card).Name))
	}
}

// dealCard gives the top card to p if the hand has room.
func (g *Game) dealCard(p *Player) (data.CardID, bool) {
	if p.HandFull() {
		return 0, false
	}
	card, ok := g.drawTreachery()
	if !ok {
		return 0, false
	}
	p.takeCard(card)
	return card, true
}

// Forces

func (g *Game) placeForces(p *Player, loc data.LocationID, f Forces) {
	p.Reserves = p.Reserves.Sub(f)
	p.Board.add(loc, f)
}

func (g *Game) moveForces(p *Player, from, to data.LocationID, f Forces) {
	p.Board.remove(from, f)
	p.Board.add(to, f)
}

func (g *Game) killForces(p *Player, loc data.LocationID, f Forces, cause report.EventType) {
	if f.Empty() {
		return
	}
	p.Board.remove(loc, f)
	p.Tanks = p.Tanks.Add(f)
	g.record(report.NewEntryWithAmount(cause, string(p.Faction), string(loc), f.Total()).
		With("special", strconv.Itoa(f.Special)))
}

func (g *Game) reviveForces(p *Player, f Forces) {
	p.Tanks = p.Tanks.Sub(f)
	p.Reserves = p.Reserves.Add(f)
}

func (g *Game) killLeader(p *Player, id data.LeaderID) {
	p.killLeader(id)
	g.record(report.NewEntry(report.EventLeaderKilled, string(p.Faction), string(id)))
}

// Board spice

func (g *Game) addSpice(loc data.LocationID, amount int) {
	g.Spice[loc] += amount
}

func (g *Game) takeSpice(loc data.LocationID, amount int) int {
	have := g.Spice[loc]
	if amount > have {
		amount = have
	}
	if have-amount == 0 {
		delete(g.Spice, loc)
	} else {
		g.Spice[loc] = have - amount
	}
	return amount
}

// Alliances

func (g *Game) allied(a, b data.Faction) bool {
	pa := g.Player(a)
	return pa != nil && a != b && pa.Ally == b
}

// sameSide reports whether a and b are the same faction or allies.
func (g *Game) sameSide(a, b data.Faction) bool {
	return a == b || g.allied(a, b)
}
