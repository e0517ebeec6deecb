package game

import (
	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

func not(pred func(*Game) bool) func(*Game) bool {
	return func(g *Game) bool { return !pred(g) }
}

func both(a, b func(*Game) bool) func(*Game) bool {
	return func(g *Game) bool { return a(g) && b(g) }
}

func setupDone(g *Game) bool {
	switch g.Phase {
	case rules.PhaseBluePredicting:
		return predictionMade(g)
	case rules.PhaseYellowSettingUp:
		return g.Setup.YellowPlaced
	case rules.PhaseBlueSettingUp:
		return g.Setup.BluePlaced
	}
	return false
}

// buildTransitions returns the guarded edges out of every phase. Guards are
// tried in order and the first match wins.
func buildTransitions() map[rules.Phase][]transition {
	return map[rules.Phase][]transition{
		rules.PhaseAwaitingPlayers: {
			goTo("players seated", playersSeated, rules.PhaseSelectingTraitors),
			stay("waiting for players", always),
		},
		rules.PhaseSelectingTraitors: {
			run("traitors chosen", traitorsChosen, (*Game).nextSetupStep),
			stay("selecting traitors", always),
		},
		rules.PhaseBluePredicting: {
			run("prediction made", setupDone, (*Game).nextSetupStep),
			stay("predicting", always),
		},
		rules.PhaseYellowSettingUp: {
			run("fremen placed", setupDone, (*Game).nextSetupStep),
			stay("placing fremen", always),
		},
		rules.PhaseBlueSettingUp: {
			run("bene gesserit placed", setupDone, (*Game).nextSetupStep),
			stay("placing bene gesserit", always),
		},

		rules.PhaseStormStart: {
			run("storm deck", stormDeckUnopposed, (*Game).moveStormFromDeck),
			goTo("dial storm", always, rules.PhaseDiallingStorm),
		},
		rules.PhaseDiallingStorm: {
			run("weather control", stormHeld, (*Game).holdStorm),
			run("storm deck", stormDeckReady, (*Game).moveStormFromDeck),
			run("storm dialled", allDialled, (*Game).moveStormByDials),
			stay("dialling", always),
		},
		rules.PhaseStormReport: {
			run("report closed", hostEnded, (*Game).startBlow),
			stay("storm report", always),
		},

		rules.PhaseBlowA: {
			goTo("worm ride", ridePending, rules.PhaseYellowRidingMonsterA),
			run("nexus", nexusPending, startNexusA),
			goTo("second blow", secondBlow, rules.PhaseBlowB),
			goTo("blow done", always, rules.PhaseBlowReport),
		},
		rules.PhaseYellowRidingMonsterA: {
			goTo("ride resolved", not(ridePending), rules.PhaseBlowA),
			stay("riding", always),
		},
		rules.PhaseAllianceA: {
			goTo("nexus closed", both(hostEnded, secondBlow), rules.PhaseBlowB),
			goTo("nexus closed", hostEnded, rules.PhaseBlowReport),
			stay("nexus", always),
		},
		rules.PhaseBlowB: {
			goTo("worm ride", ridePending, rules.PhaseYellowRidingMonsterB),
			run("nexus", nexusPending, startNexusB),
			goTo("blow done", always, rules.PhaseBlowReport),
		},
		rules.PhaseYellowRidingMonsterB: {
			goTo("ride resolved", not(ridePending), rules.PhaseBlowB),
			stay("riding", always),
		},
		rules.PhaseAllianceB: {
			goTo("nexus closed", hostEnded, rules.PhaseBlowReport),
			stay("nexus", always),
		},
		rules.PhaseBlowReport: {
			goTo("report closed", hostEnded, rules.PhaseClaimingCharity),
			stay("blow report", always),
		},

		rules.PhaseClaimingCharity: {
			goTo("charity closed", hostEnded, rules.PhaseBiddingStart),
			stay("claiming charity", always),
		},

		rules.PhaseBiddingStart: {
			goTo("richese announce", whiteMustAnnounce, rules.PhaseWhiteAnnouncingAuction),
			goTo("richese first", whiteDue(MomentFirst), rules.PhaseWhiteSpecifyingAuction),
			goTo("ixian select", greyMustSelect, rules.PhaseGreySelectingCard),
			run("next card", auctionCardsRemain, (*Game).startNextCard),
			goTo("richese last", whiteDue(MomentLast), rules.PhaseWhiteSpecifyingAuction),
			run("auction over", always, (*Game).concludeBidding),
		},
		rules.PhaseWhiteAnnouncingAuction: {
			goTo("announced", whiteAnnounced, rules.PhaseBiddingStart),
			stay("announcing", always),
		},
		rules.PhaseWhiteSpecifyingAuction: {
			run("card chosen", whiteCardChosen, (*Game).openWhiteBidding),
			stay("choosing card", always),
		},
		rules.PhaseWhiteBidding: {
			run("card sold", cardWon, (*Game).awardWhiteCard),
			run("no buyer", everyonePassed, (*Game).returnWhiteCard),
			stay("bidding", always),
		},
		rules.PhaseGreySelectingCard: {
			goTo("card selected", greySelected, rules.PhaseBiddingStart),
			stay("selecting", always),
		},
		rules.PhaseBidding: {
			run("card sold", cardWon, (*Game).awardCard),
			run("no buyer", everyonePassed, (*Game).returnAuction),
			stay("bidding", always),
		},
		rules.PhaseBiddingReport: {
			goTo("report closed", hostEnded, rules.PhaseResurrection),
			stay("bidding report", always),
		},

		rules.PhaseResurrection: {
			goTo("revival closed", hostEnded, rules.PhaseShipmentStart),
			stay("reviving", always),
		},

		rules.PhaseShipmentStart: {
			goTo("guild moment", orangeDecides, rules.PhaseOrangeDeciding),
			run("first mover", always, (*Game).beginNextActor),
		},
		rules.PhaseOrangeDeciding: {
			run("moment chosen", orangeDecided, (*Game).beginNextActor),
			stay("deciding", always),
		},
		rules.PhaseShipping: {
			goTo("accompany", blueMayAccompany, rules.PhaseBlueAccompanying),
			goTo("move", always, rules.PhaseMoving),
		},
		rules.PhaseBlueAccompanying: {
			goTo("move", always, rules.PhaseMoving),
		},
		rules.PhaseMoving: {
			stay("moves left", movesLeft),
			run("mover done", always, (*Game).finishActor),
		},
		rules.PhaseShipmentAndMoveConcluded: {
			goTo("movement closed", hostEnded, rules.PhaseBattleStart),
			stay("movement report", always),
		},

		rules.PhaseBattleStart: {
			goTo("battles pending", battlesPending, rules.PhaseBattleInitiating),
			goTo("no battles", always, rules.PhaseBattleReport),
		},
		rules.PhaseBattleInitiating: {
			goTo("battle chosen", battleChosen, rules.PhaseBattlePlanning),
			stay("choosing battle", always),
		},
		rules.PhaseBattlePlanning: {
			goTo("plans in", bothPlanned, rules.PhaseCallingTraitors),
			stay("planning", always),
		},
		rules.PhaseCallingTraitors: {
			run("traitors decided", bothDecided, (*Game).resolveBattle),
			stay("calling traitors", always),
		},
		rules.PhaseBattleConcluding: {
			run("cards kept", battleConcluded, (*Game).finishBattle),
			stay("concluding", always),
		},
		rules.PhaseBattleReport: {
			goTo("report closed", hostEnded, rules.PhaseCollecting),
			stay("battle report", always),
		},

		rules.PhaseCollecting: {
			goTo("collected", always, rules.PhaseCollectionReport),
		},
		rules.PhaseCollectionReport: {
			goTo("report closed", hostEnded, rules.PhaseContemplating),
			stay("collection report", always),
		},

		rules.PhaseContemplating: {
			run("victory", victoryReached, (*Game).declareVictory),
			run("last turn", finalTurn, (*Game).declareDefaultVictory),
			goTo("turn over", always, rules.PhaseTurnConcluded),
		},
		rules.PhaseTurnConcluded: {
			run("next turn", hostEnded, (*Game).startTurn),
			stay("turn report", always),
		},

		rules.PhaseGameEnded: {
			stay("game over", always),
		},
	}
}

// buildHooks returns the entry actions of phases that prepare state.
// Hooks never enter another phase themselves.
func buildHooks() map[rules.Phase]func(*Game) {
	return map[rules.Phase]func(*Game){
		rules.PhaseStormStart: func(g *Game) {
			g.Storm = stormState{
				Dials:   map[data.Faction]int{},
				Dialers: g.stormDialers(),
			}
		},
		rules.PhaseBlowA: func(g *Game) {
			if !g.Blow.Done[pileA] && !ridePending(g) {
				g.drawSpice(pileA)
			}
		},
		rules.PhaseBlowB: func(g *Game) {
			if !g.Blow.Done[pileB] && !ridePending(g) {
				g.drawSpice(pileB)
			}
		},
		rules.PhaseBiddingStart:  (*Game).prepareAuction,
		rules.PhaseShipmentStart: (*Game).openShipmentAndMove,
		rules.PhaseBattleStart: func(g *Game) {
			g.Battle = nil
		},
		rules.PhaseCollecting: (*Game).collectSpice,
	}
}
