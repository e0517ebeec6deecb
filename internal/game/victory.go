package game

import (
	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const (
	soloStrongholds   = 3
	alliedStrongholds = 4
)

// strongholdsHeld counts strongholds occupied only by p's side.
func (g *Game) strongholdsHeld(p *Player) int {
	held := 0
	for _, t := range g.catalog.Territories() {
		if !g.isStronghold(t) {
			continue
		}
		occ := g.occupants(t)
		if len(occ) == 0 {
			continue
		}
		ours := true
		for _, o := range occ {
			if !g.sameSide(p.Faction, o.Faction) {
				ours = false
				break
			}
		}
		if ours {
			held++
		}
	}
	return held
}

// strongholdWinners returns the first side in storm order meeting its stronghold goal.
func (g *Game) strongholdWinners() []data.Faction {
	for p := range g.sequence(nil).PlayersInOrder() {
		need := soloStrongholds
		if p.HasAlly() {
			need = alliedStrongholds
		}
		if g.strongholdsHeld(p) < need {
			continue
		}
		if p.HasAlly() {
			return sortedSide(p.Faction, p.Ally)
		}
		return []data.Faction{p.Faction}
	}
	return nil
}

func sortedSide(a, b data.Faction) []data.Faction {
	if b < a {
		a, b = b, a
	}
	return []data.Faction{a, b}
}

func victoryReached(g *Game) bool { return len(g.strongholdWinners()) > 0 }

func finalTurn(g *Game) bool { return g.Turn >= g.Config.MaxTurns }

// predictionFulfilled reports whether the Bene Gesserit foresaw this win.
func (g *Game) predictionFulfilled(winners []data.Faction) bool {
	if !g.InPlay(data.FactionBeneGesserit) || g.Prediction.Turn != g.Turn {
		return false
	}
	for _, w := range winners {
		if w == g.Prediction.Faction {
			return true
		}
	}
	return false
}

func (g *Game) declareVictory() {
	winners := g.strongholdWinners()
	if g.predictionFulfilled(winners) {
		g.endGame([]data.Faction{data.FactionBeneGesserit}, "prediction")
		return
	}
	g.endGame(winners, "strongholds")
}

// declareDefaultVictory settles a game that reached its last turn without a winner.
func (g *Game) declareDefaultVictory() {
	var winners []data.Faction
	switch {
	case g.InPlay(data.FactionGuild):
		winners = []data.Faction{data.FactionGuild}
	case g.InPlay(data.FactionFremen):
		winners = []data.Faction{data.FactionFremen}
	}
	g.endGame(winners, "default")
}

func (g *Game) endGame(winners []data.Faction, how string) {
	g.Winners = winners
	for _, w := range winners {
		g.record(report.NewEntry(report.EventGameWon, string(w), how))
	}
	g.record(report.NewEntryWithAmount(report.EventGameEnded, "", how, g.Turn))
	g.enter(rules.PhaseGameEnded)
}
