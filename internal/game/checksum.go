package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
)

// Checksum is a SHA-256 over a canonical rendering of the whole match state,
// including the random generator. Two engines fed the same config and
// commands always agree on it.
func (e *Engine) Checksum() string {
	return e.game.Checksum()
}

// Checksum hashes the canonical representation of g.
func (g *Game) Checksum() string {
	sum := sha256.Sum256([]byte(g.canonical()))
	return hex.EncodeToString(sum[:])
}

func joinInts[T ~int](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(int(x))
	}
	return strings.Join(parts, ",")
}

func joinStrings[T ~string](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = string(x)
	}
	return strings.Join(parts, ",")
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// canonical renders state independent of map iteration order.
func (g *Game) canonical() string {
	var buf bytes.Buffer
	c := g.Config
	fmt.Fprintf(&buf, "CONFIG:%d|%d|%s|%d|%d\n", c.Seed, c.Version, joinStrings(c.Rules), c.PlayerCount, c.MaxTurns)
	fmt.Fprintf(&buf, "GAME:%d|%s|%s|%d|%t\n", g.Turn, g.MainPhase, g.Phase, g.StormSector, g.HostProceeded)
	fmt.Fprintf(&buf, "RNG:%s\n", hex.EncodeToString(g.rng.State()))

	for _, p := range g.Players {
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%s|%d|%s|%s\n", p.Seat, p.Name, p.Faction, p.Spice, p.Ally, p.Offer)
		fmt.Fprintf(&buf, "  HAND:%s\n", joinInts(p.Hand))
		fmt.Fprintf(&buf, "  TRAITORS:%s|%s\n", joinStrings(p.Traitors), joinStrings(p.TraitorOptions))
		fmt.Fprintf(&buf, "  FORCES:%d/%d|%d/%d\n", p.Reserves.Normal, p.Reserves.Special, p.Tanks.Normal, p.Tanks.Special)
		for _, loc := range p.Board.Locations() {
			f := p.Board[loc]
			fmt.Fprintf(&buf, "  BOARD:%s=%d/%d\n", loc, f.Normal, f.Special)
		}
		fmt.Fprintf(&buf, "  DEAD:%s\n", joinStrings(p.DeadLeaders))
	}

	fmt.Fprintf(&buf, "TREACHERY:%s|%s\n", joinInts(g.TreacheryDeck), joinInts(g.TreacheryDiscard))
	fmt.Fprintf(&buf, "SPICEDECK:%s|%s|%s|%s\n", joinInts(g.SpiceDeck), joinInts(g.SpiceDiscard[pileA]), joinInts(g.SpiceDiscard[pileB]), joinInts(g.WormsAside))
	fmt.Fprintf(&buf, "TRAITORDECK:%s\n", joinStrings(g.TraitorDeck))
	for _, loc := range sortedKeys(g.Spice) {
		fmt.Fprintf(&buf, "SPICE:%s=%d\n", loc, g.Spice[loc])
	}
	for _, eff := range g.Effects.Snapshot() {
		fmt.Fprintf(&buf, "EFFECT:%s|%s|%s\n", eff.Kind, eff.Owner, eff.Duration)
	}
	fmt.Fprintf(&buf, "ACTED:%s\n", joinStrings(sortedKeys(g.Acted)))

	fmt.Fprintf(&buf, "SETUP:%t|%t\n", g.Setup.YellowPlaced, g.Setup.BluePlaced)
	fmt.Fprintf(&buf, "STORM:%s|%t|%d\n", joinStrings(g.Storm.Dialers), g.Storm.Held, g.Storm.Moved)
	for _, f := range sortedKeys(g.Storm.Dials) {
		fmt.Fprintf(&buf, "  DIAL:%s=%d\n", f, g.Storm.Dials[f])
	}
	fmt.Fprintf(&buf, "BLOW:%t|%t|%s|%t|%d\n", g.Blow.Done[pileA], g.Blow.Done[pileB], g.Blow.Ride, g.Blow.Nexus, g.Blow.Devours)
	if b := g.Bidding; b != nil {
		fmt.Fprintf(&buf, "BIDDING:%s|%t|%d|%s|%t|%s|%t\n", joinInts(b.Auction), b.GreyPending, b.CardNumber, b.LastStarter,
			b.White.Announced, b.White.Moment, b.White.Done)
		if r := b.Round; r != nil {
			fmt.Fprintf(&buf, "  ROUND:%d|%t|%s|%d|%s|%d\n", r.Card, r.White, r.Current, r.Highest, r.Bidder, r.Passes)
		}
	}
	if s := g.ShipMove; s != nil {
		fmt.Fprintf(&buf, "SHIPMOVE:%t|%s|%t|%s|%d\n", s.OrangeDecided, s.Actor, s.Shipped, s.ShipTo, s.MovesLeft)
	}
	if b := g.Battle; b != nil {
		fmt.Fprintf(&buf, "BATTLE:%s|%s|%s|%s|%t\n", b.Territory, b.Aggressor, b.Defender, b.Winner, b.Concluded)
		for _, f := range []data.Faction{b.Aggressor, b.Defender} {
			if plan, ok := b.Plans[f]; ok {
				fmt.Fprintf(&buf, "  PLAN:%s=%s|%t|%d|%d|%d|%d\n", f, plan.Leader, plan.CheapHero, plan.Normal, plan.Special, plan.Weapon, plan.Defense)
			}
			if call, ok := b.Calls[f]; ok {
				fmt.Fprintf(&buf, "  CALL:%s=%t\n", f, call)
			}
		}
	}
	fmt.Fprintf(&buf, "PREDICTION:%s|%d\n", g.Prediction.Faction, g.Prediction.Turn)
	fmt.Fprintf(&buf, "WINNERS:%s\n", joinStrings(g.Winners))
	fmt.Fprintf(&buf, "FAULTS:%s\n", strings.Join(g.TransitionFaults, ";"))
	fmt.Fprintf(&buf, "REPORTS:%d|%d\n", len(g.Reports.Reports), len(g.Reports.All()))
	return buf.String()
}
