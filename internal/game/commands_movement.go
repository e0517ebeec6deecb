package game

import (
	"strconv"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/effects"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const (
	maxRevivals        = 3
	revivalCost        = 2
	strongholdShipCost = 1
	shipCost           = 2
	fremenShipRange    = 2
)

type shipMoveState struct {
	OrangeDecided bool
	Actor         data.Faction
	Shipped       bool
	ShipTo        data.LocationID
	MovesLeft     int
}

// Revival brings forces and possibly a leader back from the tanks.
type Revival struct {
	By
	Normal  int           `json:"normal,omitempty"`
	Special int           `json:"special,omitempty"`
	Leader  data.LeaderID `json:"leader,omitempty"`
}

func (c *Revival) Kind() Kind { return KindRevival }

func (c *Revival) forces() Forces { return Forces{Normal: c.Normal, Special: c.Special} }

func (c *Revival) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseResurrection)
	if err != nil {
		return err
	}
	if g.hasActed(p.Faction) {
		return reject(c.Kind(), ReasonAlreadyActed, "already revived this turn")
	}
	f := c.forces()
	if !f.valid() || (f.Empty() && c.Leader == "") {
		return reject(c.Kind(), ReasonInvalidAmount, "nothing to revive")
	}
	if f.Total() > maxRevivals {
		return reject(c.Kind(), ReasonCapacityExceeded, "at most %d forces per turn", maxRevivals)
	}
	if !p.Tanks.Covers(f) {
		return reject(c.Kind(), ReasonInvalidAmount, "only %d forces in the tanks", p.Tanks.Total())
	}
	if c.Leader != "" {
		if !p.LeaderDead(c.Leader) {
			return reject(c.Kind(), ReasonInvalidTarget, "%s is not in the tanks", c.Leader)
		}
		if len(p.AliveLeaders()) > 0 {
			return reject(c.Kind(), ReasonInvalidTarget, "leaders revive only when all are dead")
		}
	}
	if cost := g.revivalCost(p, f, c.Leader); cost > p.Spice {
		return reject(c.Kind(), ReasonInsufficientResources, "revival costs %d, have %d", cost, p.Spice)
	}
	return nil
}

func (c *Revival) Apply(g *Game) {
	p := g.Player(c.Faction)
	f := c.forces()
	g.pay(p, g.revivalPayee(p), g.revivalCost(p, f, c.Leader), "revival")
	if !f.Empty() {
		g.reviveForces(p, f)
		g.record(report.NewEntryWithAmount(report.EventForcesRevived, string(p.Faction), "", f.Total()))
	}
	if c.Leader != "" {
		p.reviveLeader(c.Leader)
		g.record(report.NewEntry(report.EventLeaderRevived, string(p.Faction), string(c.Leader)))
	}
	g.markActed(p.Faction)
}

// freeRevivals is raised by one while the homeworld is below its threshold.
func (g *Game) freeRevivals(p *Player) int {
	free := p.profile.FreeRevivals
	if g.applies(rules.RuleHomeworldThresholds) && p.Reserves.Total() < p.profile.HomeworldThreshold {
		free++
	}
	return free
}

func (g *Game) revivalCost(p *Player, f Forces, leader data.LeaderID) int {
	cost := max(0, f.Total()-g.freeRevivals(p)) * revivalCost
	if leader != "" {
		cost += g.leader(leader).Value
	}
	return cost
}

func (g *Game) revivalPayee(p *Player) data.Faction {
	if p.Faction == data.FactionTleilaxu {
		return data.FactionNone
	}
	return data.FactionTleilaxu
}

// OrangeDetermined fixes when the Guild takes its shipment and move.
type OrangeDetermined struct {
	By
	Moment string `json:"moment"`
}

func (c *OrangeDetermined) Kind() Kind { return KindOrangeDetermined }

func (c *OrangeDetermined) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseOrangeDeciding)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionGuild); err != nil {
		return err
	}
	switch c.Moment {
	case MomentFirst, MomentNormal, MomentLast:
		return nil
	}
	return reject(c.Kind(), ReasonInvalidTarget, "unknown moment %q", c.Moment)
}

func (c *OrangeDetermined) Apply(g *Game) {
	owner := string(c.Faction)
	switch c.Moment {
	case MomentFirst:
		g.Effects.Add(effects.Effect{Kind: effects.KindOrangeFirst, Owner: owner, Duration: effects.DurationEndOfMainPhase})
	case MomentLast:
		g.Effects.Add(effects.Effect{Kind: effects.KindOrangeLast, Owner: owner, Duration: effects.DurationEndOfMainPhase})
	}
	g.ShipMove.OrangeDecided = true
	g.record(report.NewEntry(report.EventMomentChosen, owner, c.Moment))
}

// Shipment lands forces from reserves onto the board, or passes.
type Shipment struct {
	By
	To      data.LocationID `json:"to,omitempty"`
	Normal  int             `json:"normal,omitempty"`
	Special int             `json:"special,omitempty"`
	Passed  bool            `json:"passed,omitempty"`
}

func (c *Shipment) Kind() Kind { return KindShipment }

func (c *Shipment) forces() Forces { return Forces{Normal: c.Normal, Special: c.Special} }

func (c *Shipment) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseShipping)
	if err != nil {
		return err
	}
	if g.ShipMove.Actor != p.Faction {
		return reject(c.Kind(), ReasonNotYourTurn, "waiting for %s", g.ShipMove.Actor)
	}
	if c.Passed {
		return nil
	}
	f := c.forces()
	if err := requireForces(c.Kind(), f); err != nil {
		return err
	}
	if !p.Reserves.Covers(f) {
		return reject(c.Kind(), ReasonInvalidAmount, "only %d forces in reserve", p.Reserves.Total())
	}
	loc, err := g.requireLocation(c.Kind(), c.To)
	if err != nil {
		return err
	}
	if g.inStorm(c.To) {
		return reject(c.Kind(), ReasonStorm, "%s is in the storm", c.To)
	}
	if g.occupiedByOthers(p, loc.Territory) {
		return reject(c.Kind(), ReasonOccupancy, "%s is held by two factions", loc.Territory)
	}
	if p.Faction == data.FactionFremen {
		if d := g.territoryDistance(data.GreatFlat, loc.Territory); d < 0 || d > fremenShipRange {
			return reject(c.Kind(), ReasonInvalidTarget, "Fremen land within %d territories of the Great Flat", fremenShipRange)
		}
	}
	if cost := g.shipmentCost(p, loc.Territory, f.Total()); cost > p.Spice {
		return reject(c.Kind(), ReasonInsufficientResources, "shipment costs %d, have %d", cost, p.Spice)
	}
	return nil
}

func (c *Shipment) Apply(g *Game) {
	p := g.Player(c.Faction)
	if c.Passed {
		g.record(report.NewEntry(report.EventPassed, string(p.Faction), "shipment"))
		return
	}
	f := c.forces()
	cost := g.shipmentCost(p, g.territoryOf(c.To), f.Total())
	payee := data.FactionGuild
	if p.Faction == data.FactionGuild {
		payee = data.FactionNone
	}
	g.pay(p, payee, cost, "shipment")
	g.placeForces(p, c.To, f)
	g.ShipMove.Shipped = true
	g.ShipMove.ShipTo = c.To
	g.record(report.NewEntryWithAmount(report.EventShipped, string(p.Faction), string(c.To), f.Total()).
		With("cost", strconv.Itoa(cost)))
}

// shipmentCost prices n forces landing in territory t for p.
func (g *Game) shipmentCost(p *Player, t data.TerritoryID, n int) int {
	if p.Faction == data.FactionFremen {
		return 0
	}
	per := shipCost
	if g.isStronghold(t) {
		per = strongholdShipCost
	}
	cost := per * n
	if p.Faction == data.FactionGuild {
		if g.version().AtLeast(rules.VersionGuildRoundsUp) {
			return (cost + 1) / 2
		}
		return cost / 2
	}
	return cost
}

// BlueAccompanies sends one Bene Gesserit force along with another faction's shipment.
type BlueAccompanies struct {
	By
	To     data.LocationID `json:"to,omitempty"`
	Passed bool            `json:"passed,omitempty"`
}

func (c *BlueAccompanies) Kind() Kind { return KindBlueAccompanies }

func (c *BlueAccompanies) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseBlueAccompanying)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionBeneGesserit); err != nil {
		return err
	}
	if c.Passed {
		return nil
	}
	if c.To != g.ShipMove.ShipTo && c.To != data.PolarSink {
		return reject(c.Kind(), ReasonInvalidTarget, "accompany to %s or the Polar Sink", g.ShipMove.ShipTo)
	}
	if p.Reserves.Normal < 1 {
		return reject(c.Kind(), ReasonInsufficientResources, "no forces in reserve")
	}
	return nil
}

func (c *BlueAccompanies) Apply(g *Game) {
	if c.Passed {
		return
	}
	p := g.Player(c.Faction)
	g.placeForces(p, c.To, Forces{Normal: 1})
	g.record(report.NewEntryWithAmount(report.EventAccompanied, string(p.Faction), string(c.To), 1))
}

// Movement moves a group of forces to another location, or passes.
type Movement struct {
	By
	From    data.LocationID `json:"from,omitempty"`
	To      data.LocationID `json:"to,omitempty"`
	Normal  int             `json:"normal,omitempty"`
	Special int             `json:"special,omitempty"`
	Passed  bool            `json:"passed,omitempty"`
}

func (c *Movement) Kind() Kind { return KindMovement }

func (c *Movement) forces() Forces { return Forces{Normal: c.Normal, Special: c.Special} }

func (c *Movement) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseMoving)
	if err != nil {
		return err
	}
	if g.ShipMove.Actor != p.Faction {
		return reject(c.Kind(), ReasonNotYourTurn, "waiting for %s", g.ShipMove.Actor)
	}
	if c.Passed {
		return nil
	}
	f := c.forces()
	if err := requireForces(c.Kind(), f); err != nil {
		return err
	}
	if _, err := g.requireLocation(c.Kind(), c.From); err != nil {
		return err
	}
	to, err := g.requireLocation(c.Kind(), c.To)
	if err != nil {
		return err
	}
	if c.From == c.To {
		return reject(c.Kind(), ReasonInvalidTarget, "forces are already there")
	}
	if !p.Board[c.From].Covers(f) {
		return reject(c.Kind(), ReasonInvalidAmount, "not enough forces in %s", c.From)
	}
	if g.inStorm(c.From) || g.inStorm(c.To) {
		return reject(c.Kind(), ReasonStorm, "cannot move through the storm")
	}
	cost := g.pathCost(c.From, c.To)
	if cost < 0 {
		return reject(c.Kind(), ReasonStorm, "no path around the storm")
	}
	if cost > g.moveRange(p) {
		return reject(c.Kind(), ReasonInvalidTarget, "%s is %d territories away, range %d", c.To, cost, g.moveRange(p))
	}
	if g.occupiedByOthers(p, to.Territory) {
		return reject(c.Kind(), ReasonOccupancy, "%s is held by two factions", to.Territory)
	}
	return nil
}

func (c *Movement) Apply(g *Game) {
	p := g.Player(c.Faction)
	if c.Passed {
		g.ShipMove.MovesLeft = 0
		g.record(report.NewEntry(report.EventPassed, string(p.Faction), "movement"))
		return
	}
	f := c.forces()
	g.moveForces(p, c.From, c.To, f)
	g.ShipMove.MovesLeft--
	g.record(report.NewEntryWithAmount(report.EventMoved, string(p.Faction), string(c.To), f.Total()).
		With("from", string(c.From)))
}

// HajrPlayed grants the current mover one extra move.
type HajrPlayed struct {
	By
}

func (c *HajrPlayed) Kind() Kind { return KindHajrPlayed }

func (c *HajrPlayed) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseMoving)
	if err != nil {
		return err
	}
	if g.ShipMove.Actor != p.Faction {
		return reject(c.Kind(), ReasonNotYourTurn, "waiting for %s", g.ShipMove.Actor)
	}
	if g.Effects.ActiveFor(effects.KindHajr, string(p.Faction)) {
		return reject(c.Kind(), ReasonAlreadyActed, "Hajr already played")
	}
	if !g.holdsType(p, data.CardHajr) {
		return reject(c.Kind(), ReasonInsufficientResources, "no Hajr in hand")
	}
	return nil
}

func (c *HajrPlayed) Apply(g *Game) {
	p := g.Player(c.Faction)
	card, _ := g.cardOfType(p, data.CardHajr)
	g.discard(p, card)
	g.Effects.Add(effects.Effect{Kind: effects.KindHajr, Owner: string(p.Faction), Duration: effects.DurationEndOfMainPhase})
	g.ShipMove.MovesLeft++
	g.record(report.NewEntry(report.EventHajrPlayed, string(p.Faction), ""))
}

// Shipment and move routines

func (g *Game) openShipmentAndMove() {
	g.ShipMove = &shipMoveState{}
}

func orangeDecides(g *Game) bool {
	return g.InPlay(data.FactionGuild) && g.applies(rules.RuleOrangeDetermineMoveMoment) && !g.ShipMove.OrangeDecided
}

func orangeDecided(g *Game) bool { return g.ShipMove.OrangeDecided }

func (g *Game) shippers() *PlayerSequence {
	return g.sequence(nil).WithOrangeMoment()
}

// beginNextActor hands the shipment and move to the next player who has not yet had it.
func (g *Game) beginNextActor() {
	next := g.shippers().Advance()
	if next == nil {
		g.enter(rules.PhaseShipmentAndMoveConcluded)
		return
	}
	s := g.ShipMove
	s.Actor = next.Faction
	s.Shipped = false
	s.ShipTo = ""
	s.MovesLeft = 1
	g.enter(rules.PhaseShipping)
}

func blueMayAccompany(g *Game) bool {
	blue := g.Player(data.FactionBeneGesserit)
	s := g.ShipMove
	return blue != nil && s.Shipped && s.Actor != blue.Faction && blue.Reserves.Normal > 0
}

func movesLeft(g *Game) bool { return g.ShipMove.MovesLeft > 0 }

func (g *Game) finishActor() {
	g.markActed(g.ShipMove.Actor)
	g.beginNextActor()
}
