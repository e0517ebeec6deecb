package game

import (
	"cmp"
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
)

// Forces counts normal and special forces. Counts are never negative.
type Forces struct {
	Normal  int `json:"normal"`
	Special int `json:"special"`
}

func (f Forces) Total() int {
	return f.Normal + f.Special
}

func (f Forces) Empty() bool {
	return f.Normal == 0 && f.Special == 0
}

func (f Forces) Add(o Forces) Forces {
	return Forces{Normal: f.Normal + o.Normal, Special: f.Special + o.Special}
}

// Covers reports whether f holds at least o of each kind.
func (f Forces) Covers(o Forces) bool {
	return f.Normal >= o.Normal && f.Special >= o.Special
}

// Sub removes o from f. Callers check Covers first.
func (f Forces) Sub(o Forces) Forces {
	return Forces{Normal: f.Normal - o.Normal, Special: f.Special - o.Special}
}

func (f Forces) valid() bool {
	return f.Normal >= 0 && f.Special >= 0
}

// Battalion is one faction's forces on one location.
type Battalion struct {
	Faction  data.Faction    `json:"faction"`
	Location data.LocationID `json:"location"`
	Forces
}

// Board maps locations to a faction's forces there. Empty entries are removed.
type Board map[data.LocationID]Forces

func (b Board) add(loc data.LocationID, f Forces) {
	if f.Empty() {
		return
	}
	b[loc] = b[loc].Add(f)
}

func (b Board) remove(loc data.LocationID, f Forces) {
	left := b[loc].Sub(f)
	if left.Empty() {
		delete(b, loc)
		return
	}
	b[loc] = left
}

// Locations returns occupied locations in sorted order.
func (b Board) Locations() []data.LocationID {
	locs := make([]data.LocationID, 0, len(b))
	for loc := range b {
		locs = append(locs, loc)
	}
	slices.SortFunc(locs, func(a, c data.LocationID) int { return cmp.Compare(a, c) })
	return locs
}

func (b Board) clone() Board {
	out := make(Board, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
