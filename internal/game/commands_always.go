package game

import (
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const (
	brownDiscardSpice = 2
	gholaMaxForces    = 5
)

// Interrupt commands may arrive in any phase except these.
var uninterruptible = []rules.Phase{
	rules.PhaseAwaitingPlayers,
	rules.PhaseSelectingTraitors,
	rules.PhaseBluePredicting,
	rules.PhaseYellowSettingUp,
	rules.PhaseBlueSettingUp,
	rules.PhaseCallingTraitors,
	rules.PhaseBattleConcluding,
	rules.PhaseGameEnded,
}

func interruptible(g *Game) bool {
	return !slices.Contains(uninterruptible, g.Phase)
}

func (g *Game) requireInterrupt(kind Kind, f data.Faction) (*Player, error) {
	if g.Ended() {
		return nil, reject(kind, ReasonGameEnded, "the game is over")
	}
	if !interruptible(g) {
		return nil, reject(kind, ReasonWrongPhase, "not allowed during %s", g.Phase)
	}
	return g.requirePlayer(kind, f)
}

// Donated gives spice to another faction.
type Donated struct {
	By
	To     data.Faction `json:"to"`
	Amount int          `json:"amount"`
}

func (c *Donated) Kind() Kind { return KindDonated }

func (c *Donated) Check(g *Game) error {
	p, err := g.requireInterrupt(c.Kind(), c.Faction)
	if err != nil {
		return err
	}
	to := g.Player(c.To)
	if to == nil || to == p {
		return reject(c.Kind(), ReasonInvalidTarget, "cannot donate to %q", c.To)
	}
	if !g.applies(rules.RuleOpenDonations) && !g.allied(p.Faction, to.Faction) {
		return reject(c.Kind(), ReasonNotAdmissible, "donations go to allies only")
	}
	if c.Amount <= 0 {
		return reject(c.Kind(), ReasonInvalidAmount, "donation must be positive")
	}
	if c.Amount > p.Spice {
		return reject(c.Kind(), ReasonInsufficientResources, "have %d spice", p.Spice)
	}
	return nil
}

func (c *Donated) Apply(g *Game) {
	p := g.Player(c.Faction)
	g.pay(p, c.To, c.Amount, "donation")
	g.record(report.NewEntryWithAmount(report.EventDonated, string(p.Faction), string(c.To), c.Amount))
}

// AllianceBroken dissolves the initiator's alliance.
type AllianceBroken struct {
	By
}

func (c *AllianceBroken) Kind() Kind { return KindAllianceBroken }

func (c *AllianceBroken) Check(g *Game) error {
	p, err := g.requireInterrupt(c.Kind(), c.Faction)
	if err != nil {
		return err
	}
	if !p.HasAlly() {
		return reject(c.Kind(), ReasonInvalidTarget, "%s has no ally", p.Faction)
	}
	return nil
}

func (c *AllianceBroken) Apply(g *Game) {
	p := g.Player(c.Faction)
	if ally := g.Player(p.Ally); ally != nil {
		ally.Ally = data.FactionNone
	}
	g.record(report.NewEntry(report.EventAllianceBroken, string(p.Faction), string(p.Ally)))
	p.Ally = data.FactionNone
}

// BrownDiscarded is CHOAM selling a treachery card back for spice.
type BrownDiscarded struct {
	By
	Card data.CardID `json:"card"`
}

func (c *BrownDiscarded) Kind() Kind { return KindBrownDiscarded }

func (c *BrownDiscarded) Check(g *Game) error {
	p, err := g.requireInterrupt(c.Kind(), c.Faction)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionCHOAM); err != nil {
		return err
	}
	if !p.Holds(c.Card) {
		return reject(c.Kind(), ReasonInvalidTarget, "card %d is not in hand", c.Card)
	}
	return nil
}

func (c *BrownDiscarded) Apply(g *Game) {
	p := g.Player(c.Faction)
	g.discard(p, c.Card)
	g.gainSpice(p, brownDiscardSpice, "discard")
}

// GholaRevived plays Tleilaxu Ghola to revive a leader or up to five forces.
type GholaRevived struct {
	By
	Leader data.LeaderID `json:"leader,omitempty"`
	Normal int           `json:"normal,omitempty"`
}

func (c *GholaRevived) Kind() Kind { return KindGholaRevived }

func (c *GholaRevived) Check(g *Game) error {
	p, err := g.requireInterrupt(c.Kind(), c.Faction)
	if err != nil {
		return err
	}
	if !g.holdsType(p, data.CardTleilaxuGhola) {
		return reject(c.Kind(), ReasonInsufficientResources, "no Tleilaxu Ghola in hand")
	}
	switch {
	case c.Leader != "" && c.Normal != 0:
		return reject(c.Kind(), ReasonInvalidTarget, "revive a leader or forces, not both")
	case c.Leader != "":
		if !p.LeaderDead(c.Leader) {
			return reject(c.Kind(), ReasonInvalidTarget, "%s is not in the tanks", c.Leader)
		}
	case c.Normal < 1 || c.Normal > gholaMaxForces:
		return reject(c.Kind(), ReasonInvalidAmount, "revive 1..%d forces", gholaMaxForces)
	case c.Normal > p.Tanks.Normal:
		return reject(c.Kind(), ReasonInvalidAmount, "only %d forces in the tanks", p.Tanks.Normal)
	}
	return nil
}

func (c *GholaRevived) Apply(g *Game) {
	p := g.Player(c.Faction)
	card, _ := g.cardOfType(p, data.CardTleilaxuGhola)
	g.discard(p, card)
	if c.Leader != "" {
		p.reviveLeader(c.Leader)
		g.record(report.NewEntry(report.EventLeaderRevived, string(p.Faction), string(c.Leader)))
		return
	}
	g.reviveForces(p, Forces{Normal: c.Normal})
	g.record(report.NewEntryWithAmount(report.EventForcesRevived, string(p.Faction), "ghola", c.Normal))
}
