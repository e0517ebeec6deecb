package game

import (
	"strconv"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// leaderSurvives reports whether the leader in plan outlives the opposing weapon.
func (g *Game) leaderSurvives(plan, opposing BattlePlan) bool {
	if plan.Leader == "" || opposing.Weapon == 0 {
		return true
	}
	weapon := g.card(opposing.Weapon).Type
	if plan.Defense == 0 {
		return false
	}
	return g.card(plan.Defense).Type.Counters(weapon)
}

// battleStrength totals dialed forces, weighting specials, plus a surviving leader.
func (g *Game) battleStrength(p *Player, plan BattlePlan, leaderAlive bool) int {
	total := plan.Normal + plan.Special*p.SpecialStrength()
	if plan.Leader != "" && leaderAlive {
		total += g.leader(plan.Leader).Value
	}
	return total
}

// resolveBattle settles the current battle once both plans and traitor decisions are in.
func (g *Game) resolveBattle() {
	b := g.Battle
	agg, def := g.Player(b.Aggressor), g.Player(b.Defender)
	aggPlan, defPlan := b.Plans[agg.Faction], b.Plans[def.Faction]

	switch aggCall, defCall := b.Calls[agg.Faction], b.Calls[def.Faction]; {
	case aggCall && defCall:
		g.loseBattle(agg, aggPlan, true)
		g.loseBattle(def, defPlan, true)
		g.record(report.NewEntry(report.EventBattleDrawn, "", string(b.Territory)))
		g.discardHeroes()
		g.finishBattle()
		return
	case aggCall || defCall:
		winner, loser, loserPlan := agg, def, defPlan
		if defCall {
			winner, loser, loserPlan = def, agg, aggPlan
		}
		g.loseBattle(loser, loserPlan, true)
		g.gainSpice(winner, g.leader(loserPlan.Leader).Value, "traitor")
		b.Winner = winner.Faction
		g.record(report.NewEntry(report.EventBattleWon, string(winner.Faction), string(b.Territory)).With("by", "traitor"))
		g.discardHeroes()
		g.concludeOrFinish(winner)
		return
	}

	aggLives := g.leaderSurvives(aggPlan, defPlan)
	defLives := g.leaderSurvives(defPlan, aggPlan)
	aggTotal := g.battleStrength(agg, aggPlan, aggLives)
	defTotal := g.battleStrength(def, defPlan, defLives)

	winner, loser := agg, def
	winnerPlan, loserPlan := aggPlan, defPlan
	winnerLives, loserLives := aggLives, defLives
	if defTotal > aggTotal {
		winner, loser = def, agg
		winnerPlan, loserPlan = defPlan, aggPlan
		winnerLives, loserLives = defLives, aggLives
	}

	bounty := 0
	if !winnerLives {
		g.killLeader(winner, winnerPlan.Leader)
		bounty += g.leader(winnerPlan.Leader).Value
	}
	if !loserLives {
		bounty += g.leader(loserPlan.Leader).Value
	}
	g.loseBattle(loser, loserPlan, !loserLives)
	g.killInTerritory(winner, b.Territory, winnerPlan.dialed())
	g.gainSpice(winner, bounty, "leaders killed")
	b.Winner = winner.Faction
	g.record(report.NewEntryWithAmount(report.EventBattleWon, string(winner.Faction), string(b.Territory), max(aggTotal, defTotal)).
		With("loser", string(loser.Faction)).
		With("loser_total", strconv.Itoa(min(aggTotal, defTotal))))
	g.discardHeroes()
	g.concludeOrFinish(winner)
}

// loseBattle sends every force p has in the battle territory to the tanks and
// discards the cards p played, killing the leader when leaderDies is set.
func (g *Game) loseBattle(p *Player, plan BattlePlan, leaderDies bool) {
	t := g.Battle.Territory
	g.killInTerritory(p, t, g.battleForces(p, t))
	if leaderDies && plan.Leader != "" && p.LeaderAlive(plan.Leader) {
		g.killLeader(p, plan.Leader)
	}
	if plan.Weapon != 0 {
		g.discard(p, plan.Weapon)
	}
	if plan.Defense != 0 {
		g.discard(p, plan.Defense)
	}
}

// killInTerritory removes f from p's storm-free locations in t, normals first.
func (g *Game) killInTerritory(p *Player, t data.TerritoryID, f Forces) {
	remaining := f
	for _, loc := range g.catalog.LocationsOf(t) {
		if remaining.Empty() {
			return
		}
		if g.inStorm(loc) {
			continue
		}
		have := p.Board[loc]
		take := Forces{Normal: min(have.Normal, remaining.Normal), Special: min(have.Special, remaining.Special)}
		g.killForces(p, loc, take, report.EventForcesLost)
		remaining = remaining.Sub(take)
	}
}

func (g *Game) discardHeroes() {
	b := g.Battle
	for _, f := range []data.Faction{b.Aggressor, b.Defender} {
		if !b.Plans[f].CheapHero {
			continue
		}
		p := g.Player(f)
		if card, ok := g.cardOfType(p, data.CardCheapHero); ok {
			g.discard(p, card)
		}
	}
}

func (g *Game) concludeOrFinish(winner *Player) {
	plan := g.Battle.Plans[winner.Faction]
	if (plan.Weapon != 0 && winner.Holds(plan.Weapon)) || (plan.Defense != 0 && winner.Holds(plan.Defense)) {
		g.enter(rules.PhaseBattleConcluding)
		return
	}
	g.finishBattle()
}
