package game

import (
	"github.com/arrakis/arrakis-server-go/internal/game/data"
)

func (g *Game) location(id data.LocationID) (data.Location, bool) {
	return g.catalog.Location(id)
}

func (g *Game) territoryOf(id data.LocationID) data.TerritoryID {
	loc, _ := g.catalog.Location(id)
	return loc.Territory
}

func (g *Game) inStorm(id data.LocationID) bool {
	loc, ok := g.catalog.Location(id)
	return ok && loc.InSector(g.StormSector)
}

func (g *Game) isStronghold(t data.TerritoryID) bool {
	terr, ok := g.catalog.Territory(t)
	return ok && terr.Stronghold
}

// forcesIn sums p's forces over every location of territory t.
func (g *Game) forcesIn(p *Player, t data.TerritoryID) Forces {
	var total Forces
	for _, loc := range g.catalog.LocationsOf(t) {
		total = total.Add(p.Board[loc])
	}
	return total
}

// occupants returns the players with forces in territory t, in seat order.
func (g *Game) occupants(t data.TerritoryID) []*Player {
	var out []*Player
	for _, p := range g.Players {
		if !g.forcesIn(p, t).Empty() {
			out = append(out, p)
		}
	}
	return out
}

// occupiedByOthers reports whether p may not enter stronghold t because two
// other factions already hold it.
func (g *Game) occupiedByOthers(p *Player, t data.TerritoryID) bool {
	if !g.isStronghold(t) {
		return false
	}
	others := 0
	for _, o := range g.occupants(t) {
		if o != p {
			others++
		}
	}
	return others >= 2
}

// pathCost returns the number of territory borders crossed on the cheapest
// storm-free path between two locations, or -1 when none exists. Moving
// between sectors of one territory is free.
func (g *Game) pathCost(from, to data.LocationID) int {
	if from == to {
		return 0
	}
	if g.inStorm(from) || g.inStorm(to) {
		return -1
	}
	dist := map[data.LocationID]int{from: 0}
	deque := []data.LocationID{from}
	for len(deque) > 0 {
		cur := deque[0]
		deque = deque[1:]
		if cur == to {
			return dist[cur]
		}
		terr := g.territoryOf(cur)
		relax := func(next data.LocationID, w int) {
			if g.inStorm(next) {
				return
			}
			nd := dist[cur] + w
			if d, seen := dist[next]; seen && d <= nd {
				return
			}
			dist[next] = nd
			if w == 0 {
				deque = append([]data.LocationID{next}, deque...)
			} else {
				deque = append(deque, next)
			}
		}
		for _, loc := range g.catalog.LocationsOf(terr) {
			relax(loc, 0)
		}
		t, _ := g.catalog.Territory(terr)
		for _, adj := range t.Adjacent {
			for _, loc := range g.catalog.LocationsOf(adj) {
				relax(loc, 1)
			}
		}
	}
	return -1
}

// territoryDistance is the border count between two territories ignoring the storm.
func (g *Game) territoryDistance(a, b data.TerritoryID) int {
	if a == b {
		return 0
	}
	dist := map[data.TerritoryID]int{a: 0}
	queue := []data.TerritoryID{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		t, _ := g.catalog.Territory(cur)
		for _, adj := range t.Adjacent {
			if _, seen := dist[adj]; seen {
				continue
			}
			dist[adj] = dist[cur] + 1
			if adj == b {
				return dist[adj]
			}
			queue = append(queue, adj)
		}
	}
	return -1
}

// moveRange is how many borders p's forces may cross in one move.
func (g *Game) moveRange(p *Player) int {
	ornithopters := !p.Board[data.Arrakeen].Empty() || !p.Board[data.Carthag].Empty()
	switch {
	case ornithopters:
		return 3
	case p.Faction == data.FactionFremen:
		return 2
	default:
		return 1
	}
}

// controls reports whether p alone occupies stronghold t.
func (g *Game) controls(p *Player, t data.TerritoryID) bool {
	occ := g.occupants(t)
	return len(occ) == 1 && occ[0] == p
}
