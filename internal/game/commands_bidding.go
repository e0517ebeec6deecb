package game

import (
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

const charityFloor = 2

// Auction moments the Richese may choose for their own card.
const (
	MomentFirst  = "first"
	MomentLast   = "last"
	MomentSkip   = "skip"
	MomentNormal = "normal"
)

// auctionRound tracks bidding on the card currently up for sale.
type auctionRound struct {
	Card    data.CardID
	White   bool
	Current data.Faction
	Highest int
	Bidder  data.Faction
	Passes  int
}

type whiteAuction struct {
	Announced bool
	Moment    string
	Done      bool
}

type biddingState struct {
	Auction     []data.CardID
	GreyPending bool
	CardNumber  int
	LastStarter data.Faction
	Round       *auctionRound
	White       whiteAuction
}

// CharityClaimed takes CHOAM charity.
type CharityClaimed struct {
	By
}

func (c *CharityClaimed) Kind() Kind { return KindCharityClaimed }

func (c *CharityClaimed) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseClaimingCharity)
	if err != nil {
		return err
	}
	if g.hasActed(p.Faction) {
		return reject(c.Kind(), ReasonAlreadyActed, "charity already claimed")
	}
	if !charityEligible(g, p) {
		return reject(c.Kind(), ReasonNotAdmissible, "%s holds %d spice", p.Faction, p.Spice)
	}
	return nil
}

func (c *CharityClaimed) Apply(g *Game) {
	p := g.Player(c.Faction)
	amount := charityFloor - p.Spice
	if amount <= 0 {
		amount = charityFloor
	}
	g.gainSpice(p, amount, "charity")
	g.markActed(p.Faction)
	g.record(report.NewEntryWithAmount(report.EventCharityClaimed, string(p.Faction), "", amount))
}

func charityEligible(g *Game, p *Player) bool {
	if p.Spice < charityFloor {
		return true
	}
	return p.Faction == data.FactionBeneGesserit && g.applies(rules.RuleBlueWorthyCharity)
}

// WhiteAnnouncesAuction chooses when the Richese sell their own card.
type WhiteAnnouncesAuction struct {
	By
	Moment string `json:"moment"`
}

func (c *WhiteAnnouncesAuction) Kind() Kind { return KindWhiteAnnouncesAuction }

func (c *WhiteAnnouncesAuction) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseWhiteAnnouncingAuction)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionRichese); err != nil {
		return err
	}
	switch c.Moment {
	case MomentFirst, MomentLast, MomentSkip:
		return nil
	}
	return reject(c.Kind(), ReasonInvalidTarget, "unknown moment %q", c.Moment)
}

func (c *WhiteAnnouncesAuction) Apply(g *Game) {
	g.Bidding.White = whiteAuction{Announced: true, Moment: c.Moment}
	g.record(report.NewEntry(report.EventAuctionAnnounced, string(c.Faction), c.Moment))
}

// WhiteSpecifiesAuction puts one Richese card up for sale.
type WhiteSpecifiesAuction struct {
	By
	Card data.CardID `json:"card"`
}

func (c *WhiteSpecifiesAuction) Kind() Kind { return KindWhiteSpecifiesAuction }

func (c *WhiteSpecifiesAuction) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseWhiteSpecifyingAuction)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionRichese); err != nil {
		return err
	}
	if !p.Holds(c.Card) {
		return reject(c.Kind(), ReasonInvalidTarget, "card %d is not in hand", c.Card)
	}
	return nil
}

func (c *WhiteSpecifiesAuction) Apply(g *Game) {
	p := g.Player(c.Faction)
	p.dropCard(c.Card)
	g.Bidding.Round = &auctionRound{Card: c.Card, White: true}
	g.record(report.NewEntry(report.EventCardsOnAuction, string(p.Faction), g.card(c.Card).Name))
}

// GreySelectsCard returns one card from the auction to the top of the deck.
type GreySelectsCard struct {
	By
	Card data.CardID `json:"card"`
}

func (c *GreySelectsCard) Kind() Kind { return KindGreySelectsCard }

func (c *GreySelectsCard) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseGreySelectingCard)
	if err != nil {
		return err
	}
	if err := requireFaction(c.Kind(), p, data.FactionIxian); err != nil {
		return err
	}
	if !slices.Contains(g.Bidding.Auction, c.Card) {
		return reject(c.Kind(), ReasonInvalidTarget, "card %d is not on auction", c.Card)
	}
	return nil
}

func (c *GreySelectsCard) Apply(g *Game) {
	b := g.Bidding
	i := slices.Index(b.Auction, c.Card)
	b.Auction = slices.Delete(b.Auction, i, i+1)
	g.returnToDeck(c.Card)
	b.GreyPending = false
	g.record(report.NewEntry(report.EventCardReturned, string(c.Faction), ""))
}

// Bid raises the standing bid on the current card, or passes.
type Bid struct {
	By
	Amount int  `json:"amount,omitempty"`
	Passed bool `json:"passed,omitempty"`
}

func (c *Bid) Kind() Kind { return KindBid }

func (c *Bid) Check(g *Game) error {
	p, err := g.requireActor(c.Kind(), c.Faction, rules.PhaseBidding, rules.PhaseWhiteBidding)
	if err != nil {
		return err
	}
	round := g.Bidding.Round
	if p.HandFull() {
		if g.version().AtLeast(rules.VersionSkipFullHandBidders) {
			return reject(c.Kind(), ReasonCapacityExceeded, "hand is full (%d cards)", len(p.Hand))
		}
		if !c.Passed {
			return reject(c.Kind(), ReasonCapacityExceeded, "hand is full, %s must pass", p.Faction)
		}
	}
	if round.White && p.Faction == data.FactionRichese {
		return reject(c.Kind(), ReasonNotAdmissible, "cannot bid on your own card")
	}
	if round.Current != p.Faction {
		return reject(c.Kind(), ReasonNotYourTurn, "waiting for %s", round.Current)
	}
	if c.Passed {
		return nil
	}
	if c.Amount <= round.Highest {
		return reject(c.Kind(), ReasonInvalidAmount, "bid %d does not exceed %d", c.Amount, round.Highest)
	}
	if c.Amount > p.Spice {
		return reject(c.Kind(), ReasonInsufficientResources, "bid %d exceeds %d spice", c.Amount, p.Spice)
	}
	return nil
}

func (c *Bid) Apply(g *Game) {
	p := g.Player(c.Faction)
	round := g.Bidding.Round
	if c.Passed {
		round.Passes++
		g.record(report.NewEntry(report.EventPassed, string(p.Faction), ""))
	} else {
		round.Highest = c.Amount
		round.Bidder = p.Faction
		round.Passes = 0
		g.record(report.NewEntryWithAmount(report.EventBid, string(p.Faction), "", c.Amount))
	}
	if next := g.bidders().NextAfter(p); next != nil {
		round.Current = next.Faction
	}
}

// Bidding routines

// bidders is the sequence of players who may be offered the current card.
func (g *Game) bidders() *PlayerSequence {
	white := g.Bidding != nil && g.Bidding.Round != nil && g.Bidding.Round.White
	skipFull := g.version().AtLeast(rules.VersionSkipFullHandBidders)
	return g.sequence(func(p *Player) bool {
		if white && p.Faction == data.FactionRichese {
			return false
		}
		return !(skipFull && p.HandFull())
	})
}

func (g *Game) prepareAuction() {
	if g.Bidding != nil {
		return
	}
	eligible := g.sequence(func(p *Player) bool { return !p.HandFull() }).Count()
	n := eligible
	ixian := g.InPlay(data.FactionIxian)
	if ixian && n > 0 {
		n++
	}
	b := &biddingState{}
	for i := 0; i < n; i++ {
		card, ok := g.drawTreachery()
		if !ok {
			break
		}
		b.Auction = append(b.Auction, card)
	}
	b.GreyPending = ixian && len(b.Auction) > eligible
	g.Bidding = b
	g.record(report.NewEntryWithAmount(report.EventCardsOnAuction, "", "", len(b.Auction)))
}

func whiteMustAnnounce(g *Game) bool {
	richese := g.Player(data.FactionRichese)
	return richese != nil && !g.Bidding.White.Announced && len(richese.Hand) > 0
}

func whiteDue(moment string) func(*Game) bool {
	return func(g *Game) bool {
		w := g.Bidding.White
		richese := g.Player(data.FactionRichese)
		return w.Moment == moment && !w.Done && richese != nil && len(richese.Hand) > 0
	}
}

func whiteAnnounced(g *Game) bool { return g.Bidding.White.Announced }

func greyMustSelect(g *Game) bool { return g.Bidding.GreyPending }

func greySelected(g *Game) bool { return !g.Bidding.GreyPending }

func auctionCardsRemain(g *Game) bool { return len(g.Bidding.Auction) > 0 }

func whiteCardChosen(g *Game) bool {
	return g.Bidding.Round != nil && g.Bidding.Round.White
}

func cardWon(g *Game) bool {
	r := g.Bidding.Round
	return r != nil && r.Bidder != data.FactionNone && r.Passes >= g.bidders().Count()-1
}

func everyonePassed(g *Game) bool {
	r := g.Bidding.Round
	return r != nil && r.Bidder == data.FactionNone && r.Passes >= g.bidders().Count()
}

// startNextCard opens bidding on the next auction card. The first bidder
// rotates one seat per card.
func (g *Game) startNextCard() {
	b := g.Bidding
	b.Round = &auctionRound{Card: b.Auction[0]}
	seq := g.bidders()
	if seq.Count() == 0 {
		g.returnAuction()
		return
	}
	var starter *Player
	if last := g.Player(b.LastStarter); last != nil {
		starter = seq.NextAfter(last)
	} else {
		starter = seq.First()
	}
	b.Round.Current = starter.Faction
	b.LastStarter = starter.Faction
	b.CardNumber++
	g.enter(rules.PhaseBidding)
}

// openWhiteBidding starts the round on the Richese card chosen during WhiteSpecifyingAuction.
func (g *Game) openWhiteBidding() {
	seq := g.bidders()
	if seq.Count() == 0 {
		g.returnWhiteCard()
		return
	}
	g.Bidding.Round.Current = seq.First().Faction
	g.enter(rules.PhaseWhiteBidding)
}

func (g *Game) awardCard() {
	b := g.Bidding
	r := b.Round
	winner := g.Player(r.Bidder)
	g.pay(winner, g.auctionPayee(winner, false), r.Highest, "auction")
	winner.takeCard(r.Card)
	g.record(report.NewEntryWithAmount(report.EventCardWon, string(winner.Faction), "", r.Highest))
	g.harkonnenBonus(winner)
	b.Auction = b.Auction[1:]
	b.Round = nil
	g.enter(rules.PhaseBiddingStart)
}

func (g *Game) awardWhiteCard() {
	b := g.Bidding
	r := b.Round
	winner := g.Player(r.Bidder)
	g.pay(winner, g.auctionPayee(winner, true), r.Highest, "white auction")
	winner.takeCard(r.Card)
	g.record(report.NewEntryWithAmount(report.EventCardWon, string(winner.Faction), "", r.Highest).With("auction", "white"))
	g.harkonnenBonus(winner)
	b.White.Done = true
	b.Round = nil
	g.enter(rules.PhaseBiddingStart)
}

// returnAuction puts every unsold card back on top of the deck and ends normal bidding.
func (g *Game) returnAuction() {
	b := g.Bidding
	if len(b.Auction) > 0 {
		g.returnToDeck(b.Auction...)
		g.record(report.NewEntryWithAmount(report.EventCardReturned, "", "", len(b.Auction)))
	}
	b.Auction = nil
	b.Round = nil
	g.enter(rules.PhaseBiddingStart)
}

func (g *Game) returnWhiteCard() {
	b := g.Bidding
	if richese := g.Player(data.FactionRichese); richese != nil {
		richese.takeCard(b.Round.Card)
	}
	b.White.Done = true
	b.Round = nil
	g.enter(rules.PhaseBiddingStart)
}

func (g *Game) auctionPayee(winner *Player, white bool) data.Faction {
	payee := data.FactionEmperor
	if white {
		payee = data.FactionRichese
	}
	if winner.Faction == payee || !g.InPlay(payee) {
		return data.FactionNone
	}
	return payee
}

func (g *Game) harkonnenBonus(p *Player) {
	if p.Faction != data.FactionHarkonnen {
		return
	}
	if _, ok := g.dealCard(p); ok {
		g.record(report.NewEntry(report.EventBonusCardDrawn, string(p.Faction), ""))
	}
}

func (g *Game) concludeBidding() {
	g.Bidding = nil
	g.enter(rules.PhaseBiddingReport)
}
