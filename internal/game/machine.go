package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// transition is one guarded edge out of a phase. Exactly one of stay, do and
// then is meaningful: stay keeps the phase, do runs a compound routine that
// decides the next phase itself, then names the next phase directly.
type transition struct {
	name string
	when func(*Game) bool
	then rules.Phase
	do   func(*Game)
	stay bool
}

func always(*Game) bool { return true }

func goTo(name string, when func(*Game) bool, next rules.Phase) transition {
	return transition{name: name, when: when, then: next}
}

func run(name string, when func(*Game) bool, routine func(*Game)) transition {
	return transition{name: name, when: when, do: routine}
}

func stay(name string, when func(*Game) bool) transition {
	return transition{name: name, when: when, stay: true}
}

// maxCascade bounds the automatic phases entered while handling one command.
const maxCascade = 256

var (
	transitions map[rules.Phase][]transition
	onEnter     map[rules.Phase]func(*Game)
)

func init() {
	transitions = buildTransitions()
	onEnter = buildHooks()
}

// advance evaluates the transition table after a phase-driving command.
func (g *Game) advance() {
	g.cascade = 0
	g.dispatch()
}

// dispatch follows the first matching transition out of the current phase.
func (g *Game) dispatch() {
	from := g.Phase
	for _, t := range transitions[from] {
		if !t.when(g) {
			continue
		}
		switch {
		case t.stay:
		case t.do != nil:
			t.do(g)
		default:
			g.enter(t.then)
		}
		return
	}
	g.fault(from, "no transition matched")
}

// enter makes p the current phase, running main-phase bookkeeping, the
// phase's entry hook and, for automatic phases, its transitions.
func (g *Game) enter(p rules.Phase) {
	g.cascade++
	if g.cascade > maxCascade {
		g.fault(p, "automatic phase cascade exceeded")
		return
	}
	g.Effects.CleanupEndOfPhase()
	g.HostProceeded = false
	if p.Main() != g.MainPhase {
		g.Effects.CleanupEndOfMainPhase()
		g.resetActed()
		g.Reports.Begin(g.Turn, p.Main())
		g.record(report.NewEntry(report.EventMainPhaseStarted, "", p.Main().String()))
	}
	g.Phase = p
	g.MainPhase = p.Main()
	if hook := onEnter[p]; hook != nil {
		hook(g)
	}
	if p.Automatic() && g.Phase == p {
		g.dispatch()
	}
}

func (g *Game) fault(p rules.Phase, msg string) {
	detail := fmt.Sprintf("%s: %s", p, msg)
	g.TransitionFaults = append(g.TransitionFaults, detail)
	g.record(report.NewEntry(report.EventTransitionFault, "", p.String()).With("detail", msg))
	if g.logger != nil {
		g.logger.Error("phase transition fault",
			zap.String("phase", p.String()),
			zap.Int("turn", g.Turn),
			zap.String("detail", msg),
		)
	}
}
