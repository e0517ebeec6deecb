package game

import (
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/effects"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// permit names a command kind a player may issue in a phase, and who.
type permit struct {
	kind Kind
	who  func(g *Game, p *Player) bool
}

func faction(f data.Faction) func(*Game, *Player) bool {
	return func(_ *Game, p *Player) bool { return p.Faction == f }
}

func mover(g *Game, p *Player) bool { return g.ShipMove != nil && g.ShipMove.Actor == p.Faction }

func currentBidder(g *Game, p *Player) bool {
	return g.Bidding != nil && g.Bidding.Round != nil && g.Bidding.Round.Current == p.Faction
}

func battleSide(g *Game, p *Player) bool { return g.Battle != nil && g.Battle.participant(p.Faction) }

var playerPermits = map[rules.Phase][]permit{
	rules.PhaseSelectingTraitors: {{KindTraitorSelected, func(_ *Game, p *Player) bool { return mustSelectTraitor(p) }}},
	rules.PhaseBluePredicting:    {{KindBluePrediction, faction(data.FactionBeneGesserit)}},
	rules.PhaseYellowSettingUp:   {{KindYellowSetup, faction(data.FactionFremen)}},
	rules.PhaseBlueSettingUp:     {{KindBlueSetup, faction(data.FactionBeneGesserit)}},

	rules.PhaseDiallingStorm: {
		{KindStormDialled, func(g *Game, p *Player) bool {
			_, dialled := g.Storm.Dials[p.Faction]
			return !stormDeckTurn(g) && isStormDialer(g, p) && !dialled
		}},
		{KindWeatherControlled, func(g *Game, p *Player) bool {
			return g.Turn > 1 && !g.Storm.Held && g.holdsType(p, data.CardWeatherControl)
		}},
	},

	rules.PhaseYellowRidingMonsterA: {{KindYellowRidesMonster, faction(data.FactionFremen)}},
	rules.PhaseYellowRidingMonsterB: {{KindYellowRidesMonster, faction(data.FactionFremen)}},
	rules.PhaseAllianceA:            {{KindAllianceOffered, mayOfferAlliance}},
	rules.PhaseAllianceB:            {{KindAllianceOffered, mayOfferAlliance}},

	rules.PhaseClaimingCharity: {{KindCharityClaimed, func(g *Game, p *Player) bool {
		return !g.hasActed(p.Faction) && charityEligible(g, p)
	}}},

	rules.PhaseWhiteAnnouncingAuction: {{KindWhiteAnnouncesAuction, faction(data.FactionRichese)}},
	rules.PhaseWhiteSpecifyingAuction: {{KindWhiteSpecifiesAuction, faction(data.FactionRichese)}},
	rules.PhaseGreySelectingCard:      {{KindGreySelectsCard, faction(data.FactionIxian)}},
	rules.PhaseBidding:                {{KindBid, currentBidder}},
	rules.PhaseWhiteBidding:           {{KindBid, currentBidder}},

	rules.PhaseResurrection: {{KindRevival, func(g *Game, p *Player) bool { return !g.hasActed(p.Faction) && g.canRevive(p) }}},

	rules.PhaseOrangeDeciding:   {{KindOrangeDetermined, faction(data.FactionGuild)}},
	rules.PhaseShipping:         {{KindShipment, mover}},
	rules.PhaseBlueAccompanying: {{KindBlueAccompanies, faction(data.FactionBeneGesserit)}},
	rules.PhaseMoving: {
		{KindMovement, mover},
		{KindHajrPlayed, func(g *Game, p *Player) bool {
			return mover(g, p) && g.holdsType(p, data.CardHajr) && !g.Effects.ActiveFor(effects.KindHajr, string(p.Faction))
		}},
	},

	rules.PhaseBattleInitiating: {{KindBattleInitiated, func(g *Game, p *Player) bool { return g.aggressor() == p }}},
	rules.PhaseBattlePlanning: {{KindBattlePlanned, func(g *Game, p *Player) bool {
		_, done := g.Battle.Plans[p.Faction]
		return battleSide(g, p) && !done
	}}},
	rules.PhaseCallingTraitors: {{KindTraitorCalled, func(g *Game, p *Player) bool {
		_, done := g.Battle.Calls[p.Faction]
		return battleSide(g, p) && !done
	}}},
	rules.PhaseBattleConcluding: {{KindBattleConcluded, func(g *Game, p *Player) bool {
		return g.Battle.Winner == p.Faction
	}}},
}

var interruptPermits = []permit{
	{KindDonated, mayDonate},
	{KindAllianceBroken, func(_ *Game, p *Player) bool { return p.HasAlly() }},
	{KindBrownDiscarded, func(_ *Game, p *Player) bool { return p.Faction == data.FactionCHOAM && len(p.Hand) > 0 }},
	{KindGholaRevived, func(g *Game, p *Player) bool { return g.holdsType(p, data.CardTleilaxuGhola) && hasRevivable(p) }},
}

// Donations go to the ally unless they are open to everyone.
func mayDonate(g *Game, p *Player) bool {
	return p.Spice > 0 && (p.HasAlly() || g.applies(rules.RuleOpenDonations))
}

func mayOfferAlliance(g *Game, p *Player) bool {
	if p.HasAlly() {
		return false
	}
	for _, o := range g.Players {
		if o != p && !o.HasAlly() {
			return true
		}
	}
	return false
}

func hasRevivable(p *Player) bool {
	if p.Tanks.Normal > 0 {
		return true
	}
	for _, l := range p.Leaders() {
		if p.LeaderDead(l) {
			return true
		}
	}
	return false
}

// canRevive reports whether p can afford to bring back a single force, or a
// leader once all of them are dead.
func (g *Game) canRevive(p *Player) bool {
	for _, f := range []Forces{{Normal: 1}, {Special: 1}} {
		if p.Tanks.Covers(f) && g.revivalCost(p, f, "") <= p.Spice {
			return true
		}
	}
	if len(p.AliveLeaders()) > 0 {
		return false
	}
	for _, l := range p.Leaders() {
		if p.LeaderDead(l) && g.revivalCost(p, Forces{}, l) <= p.Spice {
			return true
		}
	}
	return false
}

// AdmissibleCommands lists the kinds actor may currently issue. The host is
// addressed with FactionNone. The result is sorted.
func (g *Game) AdmissibleCommands(actor data.Faction) []Kind {
	var kinds []Kind
	if g.Ended() {
		return kinds
	}
	if actor == data.FactionNone {
		if g.Phase == rules.PhaseAwaitingPlayers {
			kinds = append(kinds, KindEstablishPlayers)
		}
		if hostCanEnd(g) {
			kinds = append(kinds, KindEndPhase)
		}
		return kinds
	}
	p := g.Player(actor)
	if p == nil {
		return kinds
	}
	for _, pm := range playerPermits[g.Phase] {
		if pm.who(g, p) {
			kinds = append(kinds, pm.kind)
		}
	}
	if interruptible(g) {
		for _, pm := range interruptPermits {
			if pm.who(g, p) {
				kinds = append(kinds, pm.kind)
			}
		}
	}
	slices.Sort(kinds)
	return slices.Compact(kinds)
}

func (g *Game) admissible(actor data.Faction, kind Kind) bool {
	return slices.Contains(g.AdmissibleCommands(actor), kind)
}

// Awaited returns the factions whose action the current phase requires,
// in sequence order. Phases closed by the host await nobody.
func (g *Game) Awaited() []data.Faction {
	var out []data.Faction
	add := func(p *Player) {
		if p != nil && !slices.Contains(out, p.Faction) {
			out = append(out, p.Faction)
		}
	}
	switch g.Phase {
	case rules.PhaseSelectingTraitors:
		for p := range g.sequence(mustSelectTraitor).PlayersInOrder() {
			add(p)
		}
	case rules.PhaseBluePredicting, rules.PhaseBlueSettingUp, rules.PhaseBlueAccompanying:
		add(g.Player(data.FactionBeneGesserit))
	case rules.PhaseYellowSettingUp, rules.PhaseYellowRidingMonsterA, rules.PhaseYellowRidingMonsterB:
		add(g.Player(data.FactionFremen))
	case rules.PhaseDiallingStorm:
		if stormDeckTurn(g) {
			break
		}
		for _, f := range g.Storm.Dialers {
			if _, dialled := g.Storm.Dials[f]; !dialled {
				add(g.Player(f))
			}
		}
	case rules.PhaseWhiteAnnouncingAuction, rules.PhaseWhiteSpecifyingAuction:
		add(g.Player(data.FactionRichese))
	case rules.PhaseGreySelectingCard:
		add(g.Player(data.FactionIxian))
	case rules.PhaseBidding, rules.PhaseWhiteBidding:
		add(g.Player(g.Bidding.Round.Current))
	case rules.PhaseOrangeDeciding:
		add(g.Player(data.FactionGuild))
	case rules.PhaseShipping, rules.PhaseMoving:
		add(g.Player(g.ShipMove.Actor))
	case rules.PhaseBattleInitiating:
		add(g.aggressor())
	case rules.PhaseBattlePlanning:
		for _, f := range []data.Faction{g.Battle.Aggressor, g.Battle.Defender} {
			if _, done := g.Battle.Plans[f]; !done {
				add(g.Player(f))
			}
		}
	case rules.PhaseCallingTraitors:
		for _, f := range []data.Faction{g.Battle.Aggressor, g.Battle.Defender} {
			if _, done := g.Battle.Calls[f]; !done {
				add(g.Player(f))
			}
		}
	case rules.PhaseBattleConcluding:
		add(g.Player(g.Battle.Winner))
	}
	return out
}
