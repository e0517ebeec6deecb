package game

import (
	"strconv"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/effects"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const (
	firstStormDialMax = 20
	stormDialMin      = 1
	stormDialMax      = 3
	stormDeckMin      = 1
	stormDeckMax      = 6
)

// StormDialled is one dialler's secret storm movement.
type StormDialled struct {
	By
	Amount int `json:"amount"`
}

func (c *StormDialled) Kind() Kind { return KindStormDialled }

func (c *StormDialled) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseDiallingStorm)
	if err != nil {
		return err
	}
	if stormDeckTurn(g) {
		return reject(c.Kind(), ReasonNotAdmissible, "the storm deck decides movement")
	}
	if !isStormDialer(g, p) {
		return reject(c.Kind(), ReasonNotYourTurn, "%s does not dial the storm", p.Faction)
	}
	if _, dialled := g.Storm.Dials[p.Faction]; dialled {
		return reject(c.Kind(), ReasonAlreadyActed, "already dialled")
	}
	lo, hi := stormDialMin, stormDialMax
	if g.Turn == 1 {
		lo, hi = 0, firstStormDialMax
	}
	if c.Amount < lo || c.Amount > hi {
		return reject(c.Kind(), ReasonInvalidAmount, "dial %d outside %d..%d", c.Amount, lo, hi)
	}
	return nil
}

func (c *StormDialled) Apply(g *Game) {
	g.Storm.Dials[c.Faction] = c.Amount
	g.record(report.NewEntry(report.EventStormDialled, string(c.Faction), ""))
}

// WeatherControlled spends Weather Control to keep the storm in place.
type WeatherControlled struct {
	By
}

func (c *WeatherControlled) Kind() Kind { return KindWeatherControlled }

func (c *WeatherControlled) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseDiallingStorm)
	if err != nil {
		return err
	}
	if g.Turn == 1 {
		return reject(c.Kind(), ReasonNotAdmissible, "the first storm cannot be controlled")
	}
	if g.Storm.Held {
		return reject(c.Kind(), ReasonAlreadyActed, "the storm is already held")
	}
	if !g.holdsType(p, data.CardWeatherControl) {
		return reject(c.Kind(), ReasonInsufficientResources, "no Weather Control in hand")
	}
	return nil
}

func (c *WeatherControlled) Apply(g *Game) {
	p := g.Player(c.Faction)
	card, _ := g.cardOfType(p, data.CardWeatherControl)
	g.discard(p, card)
	g.Storm.Held = true
	g.Effects.Add(effects.Effect{Kind: effects.KindWeatherControl, Owner: string(p.Faction), Duration: effects.DurationEndOfMainPhase})
}

// YellowRidesMonster moves the Fremen forces caught by a worm, or declines.
type YellowRidesMonster struct {
	By
	To     data.LocationID `json:"to,omitempty"`
	Passed bool            `json:"passed,omitempty"`
}

func (c *YellowRidesMonster) Kind() Kind { return KindYellowRidesMonster }

func (c *YellowRidesMonster) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseYellowRidingMonsterA, rules.PhaseYellowRidingMonsterB)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionFremen); err != nil {
		return err
	}
	if c.Passed {
		return nil
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
	return nil
}

func (c *YellowRidesMonster) Apply(g *Game) {
	p := g.Player(c.Faction)
	from := g.Blow.Ride
	g.Blow.Ride = ""
	if c.Passed {
		return
	}
	moved := 0
	for _, loc := range g.catalog.LocationsOf(from) {
		if f := p.Board[loc]; !f.Empty() {
			g.moveForces(p, loc, c.To, f)
			moved += f.Total()
		}
	}
	g.record(report.NewEntryWithAmount(report.EventMonsterRidden, string(p.Faction), string(c.To), moved))
}

// AllianceOffered proposes an alliance during a Nexus. Mutual offers form it.
type AllianceOffered struct {
	By
	To data.Faction `json:"to"`
}

func (c *AllianceOffered) Kind() Kind { return KindAllianceOffered }

func (c *AllianceOffered) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseAllianceA, rules.PhaseAllianceB)
	if err != nil {
		return err
	}
	target := g.Player(c.To)
	if target == nil {
		return reject(c.Kind(), ReasonUnknownPlayer, "faction %q is not in play", c.To)
	}
	if target == p {
		return reject(c.Kind(), ReasonInvalidTarget, "cannot ally with yourself")
	}
	if p.HasAlly() || target.HasAlly() {
		return reject(c.Kind(), ReasonInvalidTarget, "already allied")
	}
	return nil
}

func (c *AllianceOffered) Apply(g *Game) {
	p := g.Player(c.Faction)
	target := g.Player(c.To)
	if target.Offer == p.Faction {
		p.Ally, target.Ally = target.Faction, p.Faction
		p.Offer, target.Offer = data.FactionNone, data.FactionNone
		g.record(report.NewEntry(report.EventAllianceFormed, string(p.Faction), string(target.Faction)))
		return
	}
	p.Offer = target.Faction
	g.record(report.NewEntry(report.EventAllianceOffered, string(p.Faction), string(target.Faction)))
}

// Storm routines

func stormDeckTurn(g *Game) bool {
	return g.Turn > 1 && g.applies(rules.RuleStormDeck)
}

func weatherControlHeld(g *Game) bool {
	for _, p := range g.Players {
		if g.holdsType(p, data.CardWeatherControl) {
			return true
		}
	}
	return false
}

func isStormDialer(g *Game, p *Player) bool {
	for _, f := range g.Storm.Dialers {
		if f == p.Faction {
			return true
		}
	}
	return false
}

// stormDialers picks who dials: the first and last seats on turn one, then
// the players on either side of the storm.
func (g *Game) stormDialers() []data.Faction {
	n := len(g.Players)
	if n == 0 {
		return nil
	}
	var first, last *Player
	if g.Turn == 1 {
		first, last = g.Players[0], g.Players[n-1]
	} else {
		seq := g.sequence(nil)
		first, last = seq.First(), seq.Reversed().First()
	}
	if first == last {
		return []data.Faction{first.Faction}
	}
	return []data.Faction{first.Faction, last.Faction}
}

func allDialled(g *Game) bool {
	return len(g.Storm.Dialers) > 0 && len(g.Storm.Dials) == len(g.Storm.Dialers)
}

func stormHeld(g *Game) bool { return g.Storm.Held }

func stormDeckReady(g *Game) bool {
	return stormDeckTurn(g) && g.HostProceeded
}

func stormDeckUnopposed(g *Game) bool {
	return stormDeckTurn(g) && !weatherControlHeld(g)
}

func (g *Game) holdStorm() {
	g.record(report.NewEntry(report.EventStormHeld, "", ""))
	g.enter(rules.PhaseStormReport)
}

func (g *Game) moveStormByDials() {
	total := 0
	for _, f := range g.Storm.Dialers {
		total += g.Storm.Dials[f]
	}
	g.moveStorm(total)
	g.enter(rules.PhaseStormReport)
}

func (g *Game) moveStormFromDeck() {
	g.moveStorm(g.rng.Between(stormDeckMin, stormDeckMax))
	g.enter(rules.PhaseStormReport)
}

// moveStorm advances the storm sector by sector, striking each sector it enters.
func (g *Game) moveStorm(n int) {
	for i := 0; i < n; i++ {
		g.StormSector = (g.StormSector + 1) % data.Sectors
		g.stormStrike(g.StormSector)
	}
	g.Storm.Moved = n
	g.record(report.NewEntryWithAmount(report.EventStormMoved, "", "", n).With("sector", strconv.Itoa(g.StormSector)))
}

func (g *Game) stormStrike(sector int) {
	for _, id := range g.catalog.Locations() {
		loc, _ := g.catalog.Location(id)
		if !loc.InSector(sector) {
			continue
		}
		terr, _ := g.catalog.Territory(loc.Territory)
		if terr.Protected {
			continue
		}
		for _, p := range g.Players {
			f := p.Board[id]
			if f.Empty() {
				continue
			}
			g.killForces(p, id, g.stormLoss(p, f), report.EventForcesKilledStorm)
		}
		if amount := g.takeSpice(id, g.Spice[id]); amount > 0 {
			g.record(report.NewEntryWithAmount(report.EventSpiceBlownAway, "", string(id), amount))
		}
	}
}

// stormLoss is the part of f the storm destroys.
func (g *Game) stormLoss(p *Player, f Forces) Forces {
	if p.Faction != data.FactionFremen || !g.version().AtLeast(rules.VersionFremenHalfStormLoss) {
		return f
	}
	return takeUpTo(f, (f.Total()+1)/2)
}

// takeUpTo selects n forces from f, normal forces first.
func takeUpTo(f Forces, n int) Forces {
	normal := min(n, f.Normal)
	special := min(n-normal, f.Special)
	return Forces{Normal: normal, Special: special}
}

// Blow routines

const (
	pileA = 0
	pileB = 1
)

func (g *Game) startBlow() {
	g.Blow = blowState{}
	g.enter(rules.PhaseBlowA)
}

func ridePending(g *Game) bool { return g.Blow.Ride != "" }
func nexusPending(g *Game) bool { return g.Blow.Nexus }
func secondBlow(g *Game) bool   { return g.applies(rules.RuleSecondSpiceBlow) }

func (g *Game) drawSpiceCard() (int, bool) {
	if len(g.SpiceDeck) == 0 {
		g.SpiceDeck = append(g.SpiceDiscard[pileA], g.SpiceDiscard[pileB]...)
		g.SpiceDiscard = [2][]int{}
		if len(g.SpiceDeck) == 0 {
			return 0, false
		}
		shuffle(g.rng, g.SpiceDeck)
		g.record(report.NewEntryWithAmount(report.EventDeckReshuffled, "", "spice", len(g.SpiceDeck)))
	}
	card := g.SpiceDeck[0]
	g.SpiceDeck = g.SpiceDeck[1:]
	return card, true
}

// drawSpice reveals cards onto pile until a territory card settles the blow
// or a worm leaves Fremen forces able to ride.
func (g *Game) drawSpice(pile int) {
	for !g.Blow.Done[pile] {
		id, ok := g.drawSpiceCard()
		if !ok {
			g.Blow.Done[pile] = true
			break
		}
		card, _ := g.catalog.SpiceCard(id)
		if card.Worm {
			if g.Turn == 1 {
				g.WormsAside = append(g.WormsAside, id)
				g.record(report.NewEntry(report.EventWormSetAside, "", ""))
				continue
			}
			previous := g.SpiceDiscard[pile]
			g.SpiceDiscard[pile] = append(g.SpiceDiscard[pile], id)
			g.Blow.Nexus = true
			g.Blow.Devours++
			if len(previous) > 0 {
				top, _ := g.catalog.SpiceCard(previous[len(previous)-1])
				if g.devour(g.territoryOf(top.Location)) {
					return
				}
			}
			continue
		}
		if g.inStorm(card.Location) {
			g.record(report.NewEntryWithAmount(report.EventSpiceInStorm, "", string(card.Location), card.Amount))
		} else {
			g.addSpice(card.Location, card.Amount)
			g.record(report.NewEntryWithAmount(report.EventSpiceBlow, "", string(card.Location), card.Amount))
		}
		g.SpiceDiscard[pile] = append(g.SpiceDiscard[pile], id)
		g.Blow.Done[pile] = true
	}
	if len(g.WormsAside) > 0 {
		g.SpiceDeck = append(g.SpiceDeck, g.WormsAside...)
		g.WormsAside = nil
		shuffle(g.rng, g.SpiceDeck)
	}
}

// devour destroys everything in territory t except Fremen, who may ride the
// worm instead. It reports whether a ride is pending.
func (g *Game) devour(t data.TerritoryID) bool {
	g.record(report.NewEntry(report.EventWormDevoured, "", string(t)))
	for _, id := range g.catalog.LocationsOf(t) {
		for _, p := range g.Players {
			if p.Faction == data.FactionFremen {
				continue
			}
			g.killForces(p, id, p.Board[id], report.EventWormDevoured)
		}
		g.takeSpice(id, g.Spice[id])
	}
	if fremen := g.Player(data.FactionFremen); fremen != nil && !g.forcesIn(fremen, t).Empty() {
		g.Blow.Ride = t
		return true
	}
	return false
}

func startNexusA(g *Game) { g.openNexus(rules.PhaseAllianceA) }
func startNexusB(g *Game) { g.openNexus(rules.PhaseAllianceB) }

func (g *Game) openNexus(p rules.Phase) {
	g.Blow.Nexus = false
	for _, pl := range g.Players {
		pl.Offer = data.FactionNone
	}
	g.record(report.NewEntry(report.EventNexus, "", ""))
	g.enter(p)
}
