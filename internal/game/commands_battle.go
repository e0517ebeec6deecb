package game

import (
	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// BattlePlan is the secret wheel and cards one side commits to a battle.
type BattlePlan struct {
	Leader    data.LeaderID `json:"leader,omitempty"`
	CheapHero bool          `json:"cheap_hero,omitempty"`
	Normal    int           `json:"normal,omitempty"`
	Special   int           `json:"special,omitempty"`
	Weapon    data.CardID   `json:"weapon,omitempty"`
	Defense   data.CardID   `json:"defense,omitempty"`
}

func (p BattlePlan) dialed() Forces { return Forces{Normal: p.Normal, Special: p.Special} }

type battleState struct {
	Territory data.TerritoryID
	Aggressor data.Faction
	Defender  data.Faction
	Plans     map[data.Faction]BattlePlan
	Calls     map[data.Faction]bool
	Winner    data.Faction
	Concluded bool
}

func (b *battleState) participant(f data.Faction) bool {
	return f == b.Aggressor || f == b.Defender
}

func (b *battleState) opponent(f data.Faction) data.Faction {
	if f == b.Aggressor {
		return b.Defender
	}
	return b.Aggressor
}

// BattleInitiated is the aggressor picking where and against whom to fight.
type BattleInitiated struct {
	By
	Territory data.TerritoryID `json:"territory"`
	Defender  data.Faction     `json:"defender"`
}

func (c *BattleInitiated) Kind() Kind { return KindBattleInitiated }

func (c *BattleInitiated) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseBattleInitiating)
	if err != nil {
		return err
	}
	if aggressor := g.aggressor(); aggressor == nil || aggressor != p {
		return reject(c.Kind(), ReasonNotYourTurn, "%s is not the aggressor", p.Faction)
	}
	def := g.Player(c.Defender)
	if def == nil || g.sameSide(p.Faction, def.Faction) {
		return reject(c.Kind(), ReasonInvalidTarget, "cannot fight %q", c.Defender)
	}
	if c.Territory == data.PolarSinkTerritory || !g.combatants(c.Territory)[p] || !g.combatants(c.Territory)[def] {
		return reject(c.Kind(), ReasonInvalidTarget, "no battle between %s and %s in %s", p.Faction, def.Faction, c.Territory)
	}
	return nil
}

func (c *BattleInitiated) Apply(g *Game) {
	g.Battle = &battleState{
		Territory: c.Territory,
		Aggressor: c.Faction,
		Defender:  c.Defender,
		Plans:     make(map[data.Faction]BattlePlan, 2),
		Calls:     make(map[data.Faction]bool, 2),
	}
	g.record(report.NewEntry(report.EventBattleStarted, string(c.Faction), string(c.Territory)).
		With("defender", string(c.Defender)))
}

// BattlePlanned commits one side's battle plan.
type BattlePlanned struct {
	By
	BattlePlan
}

func (c *BattlePlanned) Kind() Kind { return KindBattlePlanned }

func (c *BattlePlanned) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseBattlePlanning)
	if err != nil {
		return err
	}
	b := g.Battle
	if !b.participant(p.Faction) {
		return reject(c.Kind(), ReasonNotAdmissible, "%s is not in this battle", p.Faction)
	}
	if _, done := b.Plans[p.Faction]; done {
		return reject(c.Kind(), ReasonAlreadyActed, "battle plan already submitted")
	}
	dialed := c.dialed()
	if !dialed.valid() {
		return reject(c.Kind(), ReasonInvalidAmount, "force counts must not be negative")
	}
	if !g.battleForces(p, b.Territory).Covers(dialed) {
		return reject(c.Kind(), ReasonInvalidAmount, "cannot dial more forces than are present")
	}
	if err := g.checkHero(c.Kind(), p, c.BattlePlan); err != nil {
		return err
	}
	if c.Weapon != 0 && (!p.Holds(c.Weapon) || !g.card(c.Weapon).Type.IsWeapon()) {
		return reject(c.Kind(), ReasonInvalidTarget, "card %d is not a weapon in hand", c.Weapon)
	}
	if c.Defense != 0 && (!p.Holds(c.Defense) || !g.card(c.Defense).Type.IsDefense()) {
		return reject(c.Kind(), ReasonInvalidTarget, "card %d is not a defense in hand", c.Defense)
	}
	if cost := g.dialCost(p, dialed); cost > p.Spice {
		return reject(c.Kind(), ReasonInsufficientResources, "supporting %d forces costs %d", dialed.Total(), cost)
	}
	return nil
}

// checkHero enforces that a player with a leader or cheap hero available commits exactly one.
func (g *Game) checkHero(kind Kind, p *Player, plan BattlePlan) error {
	hasHero := g.holdsType(p, data.CardCheapHero)
	available := len(p.AliveLeaders()) > 0 || hasHero
	switch {
	case plan.Leader != "" && plan.CheapHero:
		return reject(kind, ReasonInvalidTarget, "choose a leader or a cheap hero, not both")
	case plan.Leader != "" && !p.LeaderAlive(plan.Leader):
		return reject(kind, ReasonInvalidTarget, "%s cannot fight", plan.Leader)
	case plan.CheapHero && !hasHero:
		return reject(kind, ReasonInsufficientResources, "no cheap hero in hand")
	case plan.Leader == "" && !plan.CheapHero && available:
		return reject(kind, ReasonInvalidTarget, "a leader or cheap hero must be played")
	}
	return nil
}

func (g *Game) dialCost(p *Player, dialed Forces) int {
	if !g.applies(rules.RuleAdvancedCombat) || p.Faction == data.FactionFremen {
		return 0
	}
	return dialed.Total()
}

func (c *BattlePlanned) Apply(g *Game) {
	p := g.Player(c.Faction)
	g.pay(p, data.FactionNone, g.dialCost(p, c.dialed()), "battle support")
	g.Battle.Plans[p.Faction] = c.BattlePlan
	g.record(report.NewEntry(report.EventBattlePlanned, string(p.Faction), string(g.Battle.Territory)))
}

// TraitorCalled reveals, or declines to reveal, the opposing leader as a traitor.
type TraitorCalled struct {
	By
	Call bool `json:"call"`
}

func (c *TraitorCalled) Kind() Kind { return KindTraitorCalled }

func (c *TraitorCalled) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseCallingTraitors)
	if err != nil {
		return err
	}
	b := g.Battle
	if !b.participant(p.Faction) {
		return reject(c.Kind(), ReasonNotAdmissible, "%s is not in this battle", p.Faction)
	}
	if _, done := b.Calls[p.Faction]; done {
		return reject(c.Kind(), ReasonAlreadyActed, "traitor decision already made")
	}
	if c.Call && !g.canCallTraitor(p) {
		return reject(c.Kind(), ReasonInvalidTarget, "the opposing leader is not your traitor")
	}
	return nil
}

func (g *Game) canCallTraitor(p *Player) bool {
	b := g.Battle
	plan := b.Plans[b.opponent(p.Faction)]
	if plan.Leader == "" {
		return false
	}
	for _, t := range p.Traitors {
		if t == plan.Leader {
			return true
		}
	}
	return false
}

func (c *TraitorCalled) Apply(g *Game) {
	g.Battle.Calls[c.Faction] = c.Call
	if c.Call {
		victim := g.Battle.Plans[g.Battle.opponent(c.Faction)].Leader
		g.record(report.NewEntry(report.EventTraitorRevealed, string(c.Faction), string(victim)))
	}
}

// BattleConcluded lets the winner decide which of their used cards to keep.
type BattleConcluded struct {
	By
	KeepWeapon  bool `json:"keep_weapon,omitempty"`
	KeepDefense bool `json:"keep_defense,omitempty"`
}

func (c *BattleConcluded) Kind() Kind { return KindBattleConcluded }

func (c *BattleConcluded) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseBattleConcluding)
	if err != nil {
		return err
	}
	if p.Faction != g.Battle.Winner {
		return reject(c.Kind(), ReasonNotAdmissible, "only the winner concludes the battle")
	}
	return nil
}

func (c *BattleConcluded) Apply(g *Game) {
	p := g.Player(c.Faction)
	plan := g.Battle.Plans[p.Faction]
	if plan.Weapon != 0 && !c.KeepWeapon {
		g.discard(p, plan.Weapon)
	}
	if plan.Defense != 0 && !c.KeepDefense {
		g.discard(p, plan.Defense)
	}
	g.Battle.Concluded = true
}

// Battle routines

// battleForces returns p's forces in territory t that are not cut off by the storm.
func (g *Game) battleForces(p *Player, t data.TerritoryID) Forces {
	var total Forces
	for _, loc := range g.catalog.LocationsOf(t) {
		if !g.inStorm(loc) {
			total = total.Add(p.Board[loc])
		}
	}
	return total
}

// combatants returns the players in territory t facing at least one opponent.
func (g *Game) combatants(t data.TerritoryID) map[*Player]bool {
	var present []*Player
	for _, p := range g.Players {
		if !g.battleForces(p, t).Empty() {
			present = append(present, p)
		}
	}
	out := make(map[*Player]bool)
	for _, a := range present {
		for _, b := range present {
			if a != b && !g.sameSide(a.Faction, b.Faction) {
				out[a] = true
			}
		}
	}
	return out
}

// battleTerritories lists contested territories in catalog order.
func (g *Game) battleTerritories() []data.TerritoryID {
	var out []data.TerritoryID
	for _, t := range g.catalog.Territories() {
		if t == data.PolarSinkTerritory {
			continue
		}
		if len(g.combatants(t)) > 0 {
			out = append(out, t)
		}
	}
	return out
}

func battlesPending(g *Game) bool { return len(g.battleTerritories()) > 0 }

func (g *Game) inBattle(p *Player) bool {
	for _, t := range g.battleTerritories() {
		if g.combatants(t)[p] {
			return true
		}
	}
	return false
}

// aggressor is the first player in storm order who still has a battle to fight.
func (g *Game) aggressor() *Player {
	return g.sequence(g.inBattle).First()
}

func battleChosen(g *Game) bool { return g.Battle != nil }

func bothPlanned(g *Game) bool { return len(g.Battle.Plans) == 2 }

func bothDecided(g *Game) bool { return len(g.Battle.Calls) == 2 }

func battleConcluded(g *Game) bool { return g.Battle.Concluded }

func (g *Game) finishBattle() {
	g.Battle = nil
	if battlesPending(g) {
		g.enter(rules.PhaseBattleInitiating)
		return
	}
	g.enter(rules.PhaseBattleReport)
}
