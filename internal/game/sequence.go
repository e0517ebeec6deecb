package game

import (
	"iter"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/effects"
)

// SeatSector returns the storm sector of a seat at a table of n players.
func SeatSector(seat, n int) int {
	return (1 + seat*data.Sectors/n) % data.Sectors
}

// firstSeat returns the seat the storm reaches first moving counter-clockwise.
func (g *Game) firstSeat() int {
	n := len(g.Players)
	best, bestDist := 0, data.Sectors+1
	for seat := 0; seat < n; seat++ {
		d := (SeatSector(seat, n) - g.StormSector - 1 + data.Sectors) % data.Sectors
		if d < bestDist {
			best, bestDist = seat, d
		}
	}
	return best
}

// PlayerSequence yields the players who may act in the current phase, in
// table order starting after the storm. Qualification is re-evaluated on
// every query.
type PlayerSequence struct {
	g         *Game
	qualifies func(*Player) bool
	reverse   bool
	first     data.Faction
	last      data.Faction
}

// sequence builds the table-order sequence for players satisfying qualifies.
// A nil qualifies admits every player.
func (g *Game) sequence(qualifies func(*Player) bool) *PlayerSequence {
	return &PlayerSequence{g: g, qualifies: qualifies}
}

// Reversed returns a copy iterating in the opposite direction.
func (s *PlayerSequence) Reversed() *PlayerSequence {
	c := *s
	c.reverse = !c.reverse
	return &c
}

// WithOrangeMoment returns a copy that honours the Guild's chosen moment.
func (s *PlayerSequence) WithOrangeMoment() *PlayerSequence {
	c := *s
	if guild := s.g.Player(data.FactionGuild); guild != nil {
		owner := string(guild.Faction)
		switch {
		case s.g.Effects.ActiveFor(effects.KindOrangeFirst, owner):
			c.first = guild.Faction
		case s.g.Effects.ActiveFor(effects.KindOrangeLast, owner):
			c.last = guild.Faction
		}
	}
	return &c
}

// base returns every seated player in table order without qualification.
func (s *PlayerSequence) base() []*Player {
	n := len(s.g.Players)
	if n == 0 {
		return nil
	}
	start := s.g.firstSeat()
	out := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		seat := (start + i) % n
		if s.reverse {
			seat = (start - i + n) % n
		}
		out = append(out, s.g.Players[seat])
	}
	if s.first != data.FactionNone {
		out = moveTo(out, s.first, true)
	}
	if s.last != data.FactionNone {
		out = moveTo(out, s.last, false)
	}
	return out
}

func moveTo(players []*Player, f data.Faction, front bool) []*Player {
	var picked *Player
	rest := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Faction == f {
			picked = p
			continue
		}
		rest = append(rest, p)
	}
	if picked == nil {
		return players
	}
	if front {
		return append([]*Player{picked}, rest...)
	}
	return append(rest, picked)
}

func (s *PlayerSequence) admits(p *Player) bool {
	return s.qualifies == nil || s.qualifies(p)
}

// Order returns the qualified players in sequence order.
func (s *PlayerSequence) Order() []*Player {
	var out []*Player
	for _, p := range s.base() {
		if s.admits(p) {
			out = append(out, p)
		}
	}
	return out
}

// PlayersInOrder lazily yields each qualified player exactly once.
func (s *PlayerSequence) PlayersInOrder() iter.Seq[*Player] {
	return func(yield func(*Player) bool) {
		for _, p := range s.base() {
			if !s.admits(p) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Count returns the number of qualified players.
func (s *PlayerSequence) Count() int {
	n := 0
	for range s.PlayersInOrder() {
		n++
	}
	return n
}

// First returns the first qualified player, or nil.
func (s *PlayerSequence) First() *Player {
	for p := range s.PlayersInOrder() {
		return p
	}
	return nil
}

// CurrentPlayer returns the first qualified player who has not acted in
// this round, or nil when the round is complete. When players remain but
// none of them qualifies any longer, the answer is the first player of a
// fresh round. CurrentPlayer never changes state; Advance does.
func (s *PlayerSequence) CurrentPlayer() *Player {
	if s.stalled() {
		return s.First()
	}
	return s.unacted()
}

// Advance is CurrentPlayer for the command path: a stalled round clears the
// acted tracker before the next player is picked.
func (s *PlayerSequence) Advance() *Player {
	if s.stalled() {
		s.g.resetActed()
	}
	return s.unacted()
}

func (s *PlayerSequence) unacted() *Player {
	for p := range s.PlayersInOrder() {
		if !s.g.hasActed(p.Faction) {
			return p
		}
	}
	return nil
}

// stalled reports whether some players have yet to act, none of them
// qualifies, and somebody who already acted still does.
func (s *PlayerSequence) stalled() bool {
	remaining := false
	for _, p := range s.base() {
		if s.g.hasActed(p.Faction) {
			continue
		}
		if s.admits(p) {
			return false
		}
		remaining = true
	}
	return remaining && s.First() != nil
}

// NextAfter returns the next qualified player after p, wrapping around.
// p itself need not qualify. It returns nil when nobody qualifies.
func (s *PlayerSequence) NextAfter(p *Player) *Player {
	order := s.base()
	idx := -1
	for i, o := range order {
		if o == p {
			idx = i
			break
		}
	}
	for i := 1; i <= len(order); i++ {
		cand := order[(idx+i+len(order))%len(order)]
		if s.admits(cand) {
			return cand
		}
	}
	return nil
}
