package game

import (
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// hostEndable lists the phases the host closes by hand.
var hostEndable = []rules.Phase{
	rules.PhaseStormReport,
	rules.PhaseAllianceA,
	rules.PhaseAllianceB,
	rules.PhaseBlowReport,
	rules.PhaseClaimingCharity,
	rules.PhaseBiddingReport,
	rules.PhaseResurrection,
	rules.PhaseShipmentAndMoveConcluded,
	rules.PhaseBattleReport,
	rules.PhaseCollectionReport,
	rules.PhaseTurnConcluded,
}

// EndPhase is the host closing a phase that waits on optional actions.
type EndPhase struct {
	Host
}

func (c *EndPhase) Kind() Kind { return KindEndPhase }

func (c *EndPhase) Check(g *Game) error {
	if err := g.requirePhase(c.Kind(), append(slices.Clone(hostEndable), rules.PhaseDiallingStorm)...); err != nil {
		return err
	}
	if g.Phase == rules.PhaseDiallingStorm && !stormDeckTurn(g) {
		return reject(c.Kind(), ReasonWrongPhase, "the storm is still being dialled")
	}
	return nil
}

func (c *EndPhase) Apply(g *Game) {
	g.HostProceeded = true
}

func hostEnded(g *Game) bool { return g.HostProceeded }

func hostCanEnd(g *Game) bool {
	if g.Phase == rules.PhaseDiallingStorm {
		return stormDeckTurn(g)
	}
	return slices.Contains(hostEndable, g.Phase)
}
