package game

import (
	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
)

const (
	collectRate            = 2
	ornithopterCollectRate = 3
)

// collectSpice lets every player harvest spice from locations they occupy.
func (g *Game) collectSpice() {
	for _, loc := range g.spiceLocations() {
		for _, p := range g.Players {
			f := p.Board[loc]
			if f.Empty() || g.Spice[loc] == 0 {
				continue
			}
			rate := collectRate
			if !p.Board[data.Arrakeen].Empty() || !p.Board[data.Carthag].Empty() {
				rate = ornithopterCollectRate
			}
			got := g.takeSpice(loc, f.Total()*rate)
			p.Spice += got
			g.record(report.NewEntryWithAmount(report.EventSpiceCollected, string(p.Faction), string(loc), got))
		}
	}
}

// spiceLocations returns locations holding spice in catalog order.
func (g *Game) spiceLocations() []data.LocationID {
	var out []data.LocationID
	for _, loc := range g.catalog.Locations() {
		if g.Spice[loc] > 0 {
			out = append(out, loc)
		}
	}
	return out
}
