package game

import (
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

func (g *Game) requirePhase(kind Kind, phases ...rules.Phase) error {
	if g.Ended() {
		return reject(kind, ReasonGameEnded, "the game is over")
	}
	if !slices.Contains(phases, g.Phase) {
		return reject(kind, ReasonWrongPhase, "not allowed during %s", g.Phase)
	}
	return nil
}

func (g *Game) requirePlayer(kind Kind, f data.Faction) (*Player, error) {
	p := g.Player(f)
	if p == nil {
		return nil, reject(kind, ReasonUnknownPlayer, "faction %q is not in play", f)
	}
	return p, nil
}

// requireActor combines the phase and player checks shared by most commands.
func (g *Game) requireActor(kind Kind, f data.Faction, phases ...rules.Phase) (*Player, error) {
	if err := g.requirePhase(kind, phases...); err != nil {
		return nil, err
	}
	return g.requirePlayer(kind, f)
}

func requireFaction(kind Kind, p *Player, f data.Faction) error {
	if p.Faction != f {
		return reject(kind, ReasonNotAdmissible, "only %s may do this", f)
	}
	return nil
}

func (g *Game) requireLocation(kind Kind, id data.LocationID) (data.Location, error) {
	loc, ok := g.location(id)
	if !ok {
		return data.Location{}, reject(kind, ReasonInvalidTarget, "unknown location %q", id)
	}
	return loc, nil
}

func requireForces(kind Kind, f Forces) error {
	if !f.valid() {
		return reject(kind, ReasonInvalidAmount, "force counts must not be negative")
	}
	if f.Empty() {
		return reject(kind, ReasonInvalidAmount, "no forces given")
	}
	return nil
}
