package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const (
	crysknife      data.CardID = 1
	shieldCard     data.CardID = 10
	hajrCard       data.CardID = 22
	gholaCard      data.CardID = 25
	weatherControl data.CardID = 28
	baliset        data.CardID = 29

	cielagoNorthSpice = 1
	greatFlatSpice    = 9
	wormSpice         = 13
)

func withRules(seed int64, rs ...rules.Rule) Config {
	cfg := testConfig(seed, 4)
	cfg.Rules = rules.NewRuleSet(rs...)
	return cfg
}

// discardAll takes card out of every hand.
func discardAll(g *Game, card data.CardID) {
	for _, p := range g.Players {
		g.discard(p, card)
	}
}

// stackSpice makes top the last card on pile's discard and draws the next
// blow in the given order.
func stackSpice(g *Game, pile, top int, draws ...int) {
	stacked := append([]int{top}, draws...)
	drop := func(s []int) []int {
		return slices.DeleteFunc(s, func(c int) bool { return slices.Contains(stacked, c) })
	}
	g.SpiceDeck = drop(g.SpiceDeck)
	g.SpiceDiscard[pileA] = drop(g.SpiceDiscard[pileA])
	g.SpiceDiscard[pileB] = drop(g.SpiceDiscard[pileB])
	g.WormsAside = drop(g.WormsAside)
	g.SpiceDiscard[pile] = append(g.SpiceDiscard[pile], top)
	g.SpiceDeck = append(slices.Clone(draws), g.SpiceDeck...)
}

func greatFlat(g *Game) data.LocationID {
	return g.catalog.LocationsOf(data.GreatFlat)[0]
}

func TestStormDeckMovesTheStormUnopposed(t *testing.T) {
	e := newTestEngine(t, withRules(42, rules.RuleStormDeck), fourFactions...)
	playUntil(t, e, rules.PhaseTurnConcluded)
	g := e.Game()
	discardAll(g, weatherControl)
	sector := g.StormSector

	require.NoError(t, e.Submit(&EndPhase{}))

	assert.Equal(t, 2, g.Turn)
	assert.Equal(t, rules.PhaseStormReport, g.Phase)
	assert.Empty(t, g.Storm.Dials)
	assert.GreaterOrEqual(t, g.Storm.Moved, stormDeckMin)
	assert.LessOrEqual(t, g.Storm.Moved, stormDeckMax)
	assert.Equal(t, (sector+g.Storm.Moved)%data.Sectors, g.StormSector)
	assert.Equal(t, 1, g.Reports.Current().Count(report.EventStormMoved))
}

func TestStormDeckWaitsForWeatherControl(t *testing.T) {
	e := newTestEngine(t, withRules(42, rules.RuleStormDeck), fourFactions...)
	playUntil(t, e, rules.PhaseTurnConcluded)
	g := e.Game()
	atreides := g.Player(data.FactionAtreides)
	give(g, atreides, weatherControl)

	require.NoError(t, e.Submit(&EndPhase{}))
	require.Equal(t, rules.PhaseDiallingStorm, g.Phase)
	assert.Empty(t, e.Awaited())
	assert.Equal(t, []Kind{KindEndPhase}, e.Admissible(data.FactionNone))
	assert.Contains(t, e.Admissible(atreides.Faction), KindWeatherControlled)

	dialer := g.Storm.Dialers[0]
	err := e.Submit(&StormDialled{By: By{dialer}, Amount: 1})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))

	require.NoError(t, e.Submit(&EndPhase{}))
	assert.Equal(t, rules.PhaseStormReport, g.Phase)
	assert.GreaterOrEqual(t, g.Storm.Moved, stormDeckMin)
	assert.True(t, atreides.Holds(weatherControl))
}

func TestWeatherControlHoldsTheStorm(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	playUntil(t, e, rules.PhaseDiallingStorm)
	g := e.Game()
	atreides := g.Player(data.FactionAtreides)
	give(g, atreides, weatherControl)

	err := e.Submit(&WeatherControlled{By: By{atreides.Faction}})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err), "the first storm is never held")
	assert.NotContains(t, e.Admissible(atreides.Faction), KindWeatherControlled)

	playUntilTurn(t, e, 2, rules.PhaseDiallingStorm)
	give(g, atreides, weatherControl)
	sector := g.StormSector

	err = e.Submit(&WeatherControlled{By: By{data.FactionHarkonnen}})
	assert.Equal(t, ReasonInsufficientResources, ReasonOf(err))

	require.NoError(t, e.Submit(&WeatherControlled{By: By{atreides.Faction}}))
	assert.Equal(t, rules.PhaseStormReport, g.Phase)
	assert.Equal(t, sector, g.StormSector)
	assert.Zero(t, g.Storm.Moved)
	assert.False(t, atreides.Holds(weatherControl))
	assert.Contains(t, g.TreacheryDiscard, weatherControl)
	assert.Equal(t, 1, g.Reports.Current().Count(report.EventStormHeld))
}

func TestSecondSpiceBlowFillsPileB(t *testing.T) {
	e := newTestEngine(t, withRules(42, rules.RuleSecondSpiceBlow), fourFactions...)
	playUntil(t, e, rules.PhaseBlowReport)
	g := e.Game()
	assert.Len(t, g.SpiceDiscard[pileA], 1)
	assert.Len(t, g.SpiceDiscard[pileB], 1)
	assert.Empty(t, g.WormsAside, "first-turn worms go back into the deck")

	plain := newTestEngine(t, testConfig(42, 4), fourFactions...)
	playUntil(t, plain, rules.PhaseBlowReport)
	assert.Len(t, plain.Game().SpiceDiscard[pileA], 1)
	assert.Empty(t, plain.Game().SpiceDiscard[pileB])
}

func TestWormDevoursAndOpensNexus(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	playUntilTurn(t, e, 2, rules.PhaseStormReport)
	g := e.Game()
	harkonnen := g.Player(data.FactionHarkonnen)
	g.placeForces(harkonnen, greatFlat(g), Forces{Normal: 4})
	tanks := harkonnen.Tanks
	stackSpice(g, pileA, greatFlatSpice, wormSpice, cielagoNorthSpice)

	require.NoError(t, e.Submit(&EndPhase{}))
	require.Equal(t, rules.PhaseAllianceA, g.Phase)
	assert.True(t, harkonnen.Board[greatFlat(g)].Empty())
	assert.Equal(t, tanks.Normal+4, harkonnen.Tanks.Normal)
	assert.Equal(t, 1, g.Blow.Devours)
	assert.False(t, g.Blow.Nexus)
	assert.Equal(t, []int{greatFlatSpice, wormSpice, cielagoNorthSpice}, g.SpiceDiscard[pileA][len(g.SpiceDiscard[pileA])-3:])

	require.NoError(t, e.Submit(&AllianceOffered{By: By{data.FactionAtreides}, To: data.FactionEmperor}))
	assert.False(t, g.allied(data.FactionAtreides, data.FactionEmperor))
	require.NoError(t, e.Submit(&AllianceOffered{By: By{data.FactionEmperor}, To: data.FactionAtreides}))
	assert.True(t, g.allied(data.FactionAtreides, data.FactionEmperor))

	err := e.Submit(&AllianceOffered{By: By{data.FactionGuild}, To: data.FactionAtreides})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))
	err = e.Submit(&AllianceOffered{By: By{data.FactionGuild}, To: data.FactionGuild})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))
	assert.Contains(t, e.Admissible(harkonnen.Faction), KindAllianceOffered)
	assert.NotContains(t, e.Admissible(data.FactionAtreides), KindAllianceOffered)

	require.NoError(t, e.Submit(&EndPhase{}))
	assert.Equal(t, rules.PhaseBlowReport, g.Phase)

	require.NoError(t, e.Submit(&AllianceBroken{By: By{data.FactionEmperor}}))
	assert.False(t, g.allied(data.FactionAtreides, data.FactionEmperor))
	assert.Equal(t, data.FactionNone, g.Player(data.FactionAtreides).Ally)
}

func TestFremenRideTheWorm(t *testing.T) {
	factions := []data.Faction{data.FactionFremen, data.FactionAtreides, data.FactionHarkonnen, data.FactionEmperor}
	e := newTestEngine(t, testConfig(42, 4), factions...)
	playUntilTurn(t, e, 2, rules.PhaseStormReport)
	g := e.Game()
	fremen := g.Player(data.FactionFremen)
	g.placeForces(fremen, greatFlat(g), Forces{Normal: 3})
	sink := fremen.Board[data.PolarSink]
	stackSpice(g, pileA, greatFlatSpice, wormSpice, cielagoNorthSpice)

	require.NoError(t, e.Submit(&EndPhase{}))
	require.Equal(t, rules.PhaseYellowRidingMonsterA, g.Phase)
	assert.Equal(t, data.GreatFlat, g.Blow.Ride)
	assert.Equal(t, []data.Faction{fremen.Faction}, e.Awaited())

	err := e.Submit(&YellowRidesMonster{By: By{data.FactionAtreides}, To: data.PolarSink})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))
	err = e.Submit(&YellowRidesMonster{By: By{fremen.Faction}, To: "nowhere"})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))

	require.NoError(t, e.Submit(&YellowRidesMonster{By: By{fremen.Faction}, To: data.PolarSink}))
	assert.Equal(t, rules.PhaseAllianceA, g.Phase, "the blow resumes, then the Nexus opens")
	assert.True(t, fremen.Board[greatFlat(g)].Empty())
	assert.Equal(t, sink.Normal+3, fremen.Board[data.PolarSink].Normal)
	assert.True(t, g.Blow.Done[pileA])
	assert.Equal(t, 1, g.Reports.Current().Count(report.EventMonsterRidden))
}

func TestIxianReturnsAnAuctionCard(t *testing.T) {
	factions := []data.Faction{data.FactionIxian, data.FactionAtreides, data.FactionHarkonnen, data.FactionEmperor}
	e := newTestEngine(t, testConfig(42, 4), factions...)
	playUntil(t, e, rules.PhaseGreySelectingCard)
	g := e.Game()
	eligible := g.sequence(func(p *Player) bool { return !p.HandFull() }).Count()
	require.Len(t, g.Bidding.Auction, eligible+1)
	assert.Equal(t, []data.Faction{data.FactionIxian}, e.Awaited())

	card := g.Bidding.Auction[1]
	err := e.Submit(&GreySelectsCard{By: By{data.FactionAtreides}, Card: card})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))
	err = e.Submit(&GreySelectsCard{By: By{data.FactionIxian}, Card: g.TreacheryDeck[0]})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))

	require.NoError(t, e.Submit(&GreySelectsCard{By: By{data.FactionIxian}, Card: card}))
	assert.Equal(t, rules.PhaseBidding, g.Phase)
	assert.Equal(t, card, g.TreacheryDeck[0])
	assert.Len(t, g.Bidding.Auction, eligible)
	assert.NotContains(t, g.Bidding.Auction, card)
}

// richeseAuction seats the Richese with a Baliset and plays to their announcement.
func richeseAuction(t *testing.T) (*Engine, *Player) {
	t.Helper()
	factions := []data.Faction{data.FactionRichese, data.FactionAtreides, data.FactionHarkonnen, data.FactionEmperor}
	e := newTestEngine(t, testConfig(42, 4), factions...)
	playUntil(t, e, rules.PhaseClaimingCharity)
	richese := e.Game().Player(data.FactionRichese)
	give(e.Game(), richese, baliset)
	playUntil(t, e, rules.PhaseWhiteAnnouncingAuction)
	return e, richese
}

// passAround passes for whoever holds the bid until phase p closes.
func passAround(t *testing.T, e *Engine, p rules.Phase) {
	t.Helper()
	g := e.Game()
	for i := 0; i < len(g.Players) && g.Phase == p; i++ {
		require.NoError(t, e.Submit(&Bid{By: By{g.Bidding.Round.Current}, Passed: true}))
	}
	require.NotEqual(t, p, g.Phase)
}

func TestRicheseAuctionFirst(t *testing.T) {
	e, richese := richeseAuction(t)
	g := e.Game()

	err := e.Submit(&WhiteAnnouncesAuction{By: By{richese.Faction}, Moment: "whenever"})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))
	err = e.Submit(&WhiteAnnouncesAuction{By: By{data.FactionAtreides}, Moment: MomentFirst})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))

	require.NoError(t, e.Submit(&WhiteAnnouncesAuction{By: By{richese.Faction}, Moment: MomentFirst}))
	require.Equal(t, rules.PhaseWhiteSpecifyingAuction, g.Phase)
	err = e.Submit(&WhiteSpecifiesAuction{By: By{richese.Faction}, Card: crysknife + 100})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))

	require.NoError(t, e.Submit(&WhiteSpecifiesAuction{By: By{richese.Faction}, Card: baliset}))
	require.Equal(t, rules.PhaseWhiteBidding, g.Phase)
	assert.False(t, richese.Holds(baliset))

	err = e.Submit(&Bid{By: By{richese.Faction}, Amount: 1})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))

	buyer := g.Player(g.Bidding.Round.Current)
	require.NotEqual(t, richese, buyer)
	richeseSpice, buyerSpice := richese.Spice, buyer.Spice
	require.NoError(t, e.Submit(&Bid{By: By{buyer.Faction}, Amount: 1}))
	passAround(t, e, rules.PhaseWhiteBidding)

	assert.True(t, buyer.Holds(baliset))
	assert.Equal(t, richeseSpice+1, richese.Spice)
	assert.Equal(t, buyerSpice-1, buyer.Spice)
	assert.True(t, g.Bidding.White.Done)
	assert.Equal(t, rules.PhaseBidding, g.Phase, "the normal auction follows")
}

func TestRicheseAuctionLast(t *testing.T) {
	e, richese := richeseAuction(t)
	g := e.Game()

	require.NoError(t, e.Submit(&WhiteAnnouncesAuction{By: By{richese.Faction}, Moment: MomentLast}))
	require.Equal(t, rules.PhaseBidding, g.Phase)
	playUntil(t, e, rules.PhaseWhiteSpecifyingAuction)
	assert.Empty(t, g.Bidding.Auction)

	require.NoError(t, e.Submit(&WhiteSpecifiesAuction{By: By{richese.Faction}, Card: baliset}))
	passAround(t, e, rules.PhaseWhiteBidding)

	assert.True(t, richese.Holds(baliset), "an unsold card goes back to the Richese")
	assert.Equal(t, rules.PhaseBiddingReport, g.Phase)
}

func TestRevivalPaysTleilaxu(t *testing.T) {
	factions := []data.Faction{data.FactionTleilaxu, data.FactionAtreides, data.FactionHarkonnen, data.FactionEmperor}
	e := newTestEngine(t, testConfig(42, 4), factions...)
	playUntil(t, e, rules.PhaseResurrection)
	g := e.Game()
	atreides, tleilaxu := g.Player(data.FactionAtreides), g.Player(data.FactionTleilaxu)
	atreides.Tanks = Forces{Normal: 5}
	atreides.Spice = 10
	collected := tleilaxu.Spice

	require.NoError(t, e.Submit(&Revival{By: By{atreides.Faction}, Normal: 3}))
	assert.Equal(t, 10-revivalCost, atreides.Spice)
	assert.Equal(t, collected+revivalCost, tleilaxu.Spice)

	tleilaxu.Tanks = Forces{Normal: 3}
	spice := tleilaxu.Spice
	require.NoError(t, e.Submit(&Revival{By: By{tleilaxu.Faction}, Normal: 3}))
	assert.Equal(t, spice-g.revivalCost(tleilaxu, Forces{Normal: 3}, ""), tleilaxu.Spice)
}

func TestOrangeShipsFirst(t *testing.T) {
	e := newTestEngine(t, withRules(42, rules.RuleOrangeDetermineMoveMoment), fourFactions...)
	playUntil(t, e, rules.PhaseOrangeDeciding)
	g := e.Game()
	assert.Equal(t, []data.Faction{data.FactionGuild}, e.Awaited())

	err := e.Submit(&OrangeDetermined{By: By{data.FactionAtreides}, Moment: MomentFirst})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))
	err = e.Submit(&OrangeDetermined{By: By{data.FactionGuild}, Moment: "sideways"})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))

	require.NoError(t, e.Submit(&OrangeDetermined{By: By{data.FactionGuild}, Moment: MomentFirst}))
	assert.Equal(t, rules.PhaseShipping, g.Phase)
	assert.Equal(t, data.FactionGuild, g.ShipMove.Actor)
}

func TestOrangeShipsLast(t *testing.T) {
	e := newTestEngine(t, withRules(42, rules.RuleOrangeDetermineMoveMoment), fourFactions...)
	playUntil(t, e, rules.PhaseOrangeDeciding)
	g := e.Game()
	require.NoError(t, e.Submit(&OrangeDetermined{By: By{data.FactionGuild}, Moment: MomentLast}))

	var order []data.Faction
	for i := 0; i < 100 && g.Phase != rules.PhaseShipmentAndMoveConcluded; i++ {
		if g.Phase == rules.PhaseShipping {
			order = append(order, g.ShipMove.Actor)
		}
		require.NoError(t, e.Submit(nextMove(g)))
	}
	require.Len(t, order, 4)
	assert.Equal(t, data.FactionGuild, order[3])
}

func TestBlueAccompaniesShipment(t *testing.T) {
	factions := []data.Faction{data.FactionBeneGesserit, data.FactionAtreides, data.FactionHarkonnen, data.FactionEmperor}
	e := newTestEngine(t, testConfig(42, 4), factions...)
	playUntil(t, e, rules.PhaseShipping)
	g := e.Game()
	for i := 0; i < 2 && g.ShipMove.Actor == data.FactionBeneGesserit; i++ {
		require.NoError(t, e.Submit(&Shipment{By: By{data.FactionBeneGesserit}, Passed: true}))
		require.NoError(t, e.Submit(&Movement{By: By{data.FactionBeneGesserit}, Passed: true}))
	}
	require.Equal(t, rules.PhaseShipping, g.Phase)
	shipper := g.Player(g.ShipMove.Actor)
	blue := g.Player(data.FactionBeneGesserit)

	strongholds := []data.LocationID{data.Arrakeen, data.Carthag, "tueks-sietch", "habbanya-sietch", "sietch-tabr"}
	var target, other data.LocationID
	for _, loc := range strongholds {
		if target == "" && (&Shipment{By: By{shipper.Faction}, To: loc, Normal: 1}).Check(g) == nil {
			target = loc
		} else if other == "" {
			other = loc
		}
	}
	require.NotEmpty(t, target)
	require.NotEmpty(t, other)

	require.NoError(t, e.Submit(&Shipment{By: By{shipper.Faction}, To: target, Normal: 1}))
	require.Equal(t, rules.PhaseBlueAccompanying, g.Phase)
	assert.Equal(t, []data.Faction{blue.Faction}, e.Awaited())

	err := e.Submit(&BlueAccompanies{By: By{shipper.Faction}, To: target})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))
	err = e.Submit(&BlueAccompanies{By: By{blue.Faction}, To: other})
	assert.Equal(t, ReasonInvalidTarget, ReasonOf(err))

	before, reserves := blue.Board[target], blue.Reserves
	require.NoError(t, e.Submit(&BlueAccompanies{By: By{blue.Faction}, To: target}))
	assert.Equal(t, rules.PhaseMoving, g.Phase)
	assert.Equal(t, before.Normal+1, blue.Board[target].Normal)
	assert.Equal(t, reserves.Normal-1, blue.Reserves.Normal)
}

func TestBattleWinnerKeepsWeapon(t *testing.T) {
	s := startBattle(t)
	s.initiate(t)
	s.agg.Traitors, s.def.Traitors = nil, nil
	give(s.g, s.agg, crysknife)
	give(s.g, s.agg, shieldCard)
	defLeader := weakestLeader(s.g, s.def)

	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{
		Leader: strongestLeader(s.g, s.agg), Normal: 3, Weapon: crysknife, Defense: shieldCard,
	}}))
	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.def.Faction}, BattlePlan: BattlePlan{Leader: defLeader, Normal: 1}}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.agg.Faction}}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.def.Faction}}))

	require.Equal(t, rules.PhaseBattleConcluding, s.g.Phase)
	assert.Equal(t, []data.Faction{s.agg.Faction}, s.e.Awaited())
	assert.True(t, s.def.LeaderDead(defLeader))

	err := s.e.Submit(&BattleConcluded{By: By{s.def.Faction}})
	assert.Equal(t, ReasonNotAdmissible, ReasonOf(err))

	require.NoError(t, s.e.Submit(&BattleConcluded{By: By{s.agg.Faction}, KeepWeapon: true}))
	assert.Equal(t, rules.PhaseBattleReport, s.g.Phase)
	assert.True(t, s.agg.Holds(crysknife))
	assert.False(t, s.agg.Holds(shieldCard))
	assert.Contains(t, s.g.TreacheryDiscard, shieldCard)
}

func TestBattleLoserDiscardsWithoutConcluding(t *testing.T) {
	s := startBattle(t)
	s.initiate(t)
	s.agg.Traitors, s.def.Traitors = nil, nil
	give(s.g, s.def, crysknife)

	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.agg.Faction}, BattlePlan: BattlePlan{Leader: strongestLeader(s.g, s.agg), Normal: 5}}))
	require.NoError(t, s.e.Submit(&BattlePlanned{By: By{s.def.Faction}, BattlePlan: BattlePlan{Leader: weakestLeader(s.g, s.def), Weapon: crysknife}}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.agg.Faction}}))
	require.NoError(t, s.e.Submit(&TraitorCalled{By: By{s.def.Faction}}))

	assert.Equal(t, rules.PhaseBattleReport, s.g.Phase)
	assert.False(t, s.def.Holds(crysknife))
	assert.Contains(t, s.g.TreacheryDiscard, crysknife)
}
