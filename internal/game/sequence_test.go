package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/effects"
)

func TestSeatSector(t *testing.T) {
	assert.Equal(t, []int{1, 5, 10, 14}, []int{SeatSector(0, 4), SeatSector(1, 4), SeatSector(2, 4), SeatSector(3, 4)})
	assert.Equal(t, 1, SeatSector(0, 2))
	assert.Equal(t, 10, SeatSector(1, 2))
}

func seats(players []*Player) []int {
	out := make([]int, len(players))
	for i, p := range players {
		out[i] = p.Seat
	}
	return out
}

func TestSequenceStartsAfterStorm(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	g := e.Game()

	g.StormSector = 6
	assert.Equal(t, 2, g.firstSeat())
	assert.Equal(t, []int{2, 3, 0, 1}, seats(g.sequence(nil).Order()))
	assert.Equal(t, []int{2, 1, 0, 3}, seats(g.sequence(nil).Reversed().Order()))

	g.StormSector = 0
	assert.Equal(t, []int{0, 1, 2, 3}, seats(g.sequence(nil).Order()))

	g.StormSector = 1
	assert.Equal(t, 1, g.firstSeat(), "a seat under the storm goes last")
}

func TestSequenceQualificationIsLive(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	g := e.Game()
	g.StormSector = 0
	rich := func(p *Player) bool { return p.Spice >= 10 }
	seq := g.sequence(rich)

	g.Players[0].Spice = 100
	g.Players[1].Spice = 0
	after := seq.Order()
	require.NotEmpty(t, after)
	assert.Equal(t, g.Players[0], seq.First())
	assert.NotContains(t, after, g.Players[1])
	assert.Equal(t, len(after), seq.Count())

	var yielded []*Player
	for p := range seq.PlayersInOrder() {
		yielded = append(yielded, p)
	}
	assert.Equal(t, after, yielded)
}

func TestSequenceNextAfterWraps(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	g := e.Game()
	g.StormSector = 6
	seq := g.sequence(nil)

	assert.Equal(t, g.Players[2], seq.NextAfter(g.Players[1]))
	assert.Equal(t, g.Players[3], seq.NextAfter(g.Players[2]))

	only := g.sequence(func(p *Player) bool { return p.Seat == 0 })
	assert.Equal(t, g.Players[0], only.NextAfter(g.Players[0]))
	assert.Equal(t, g.Players[0], only.NextAfter(g.Players[3]))

	nobody := g.sequence(func(*Player) bool { return false })
	assert.Nil(t, nobody.NextAfter(g.Players[0]))
	assert.Nil(t, nobody.First())
}

func TestSequenceCurrentPlayerSkipsActed(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	g := e.Game()
	g.StormSector = 0
	seq := g.sequence(nil)

	g.markActed(g.Players[0].Faction)
	assert.Equal(t, g.Players[1], seq.CurrentPlayer())
	for _, p := range g.Players {
		g.markActed(p.Faction)
	}
	assert.Nil(t, seq.CurrentPlayer())
}

func TestSequenceRestartsWhenRemainingPlayersDropOut(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	g := e.Game()
	g.StormSector = 0
	for _, p := range g.Players {
		p.Spice = 20
	}
	seq := g.sequence(func(p *Player) bool { return p.Spice >= 10 })

	g.markActed(g.Players[0].Faction)
	g.markActed(g.Players[1].Faction)
	assert.Equal(t, g.Players[2], seq.CurrentPlayer())

	g.Players[2].Spice, g.Players[3].Spice = 0, 0
	assert.Equal(t, g.Players[0], seq.CurrentPlayer(), "a fresh round starts from the first qualified player")
	assert.True(t, g.hasActed(g.Players[0].Faction), "CurrentPlayer leaves the tracker alone")

	assert.Equal(t, g.Players[0], seq.Advance())
	assert.Empty(t, g.Acted)
	g.markActed(g.Players[0].Faction)
	assert.Equal(t, g.Players[1], seq.Advance())

	g.markActed(g.Players[1].Faction)
	assert.Equal(t, g.Players[0], seq.Advance(), "the round rolls over again")
	assert.Empty(t, g.Acted)

	for _, p := range g.Players {
		g.markActed(p.Faction)
	}
	assert.Nil(t, seq.Advance(), "a round with nobody left to act is complete")
	assert.Len(t, g.Acted, 4)

	nobody := g.sequence(func(*Player) bool { return false })
	g.resetActed()
	assert.Nil(t, nobody.CurrentPlayer())
	assert.Nil(t, nobody.Advance())
}

func TestSequenceOrangeMoment(t *testing.T) {
	e := newTestEngine(t, testConfig(42, 4), fourFactions...)
	g := e.Game()
	g.StormSector = 0
	guild := g.Player(data.FactionGuild)

	g.Effects.Add(effects.Effect{Kind: effects.KindOrangeFirst, Owner: string(guild.Faction), Duration: effects.DurationEndOfMainPhase})
	assert.Equal(t, guild, g.sequence(nil).WithOrangeMoment().First())

	g.Effects.Remove(effects.KindOrangeFirst, string(guild.Faction))
	g.Effects.Add(effects.Effect{Kind: effects.KindOrangeLast, Owner: string(guild.Faction), Duration: effects.DurationEndOfMainPhase})
	order := g.sequence(nil).WithOrangeMoment().Order()
	assert.Equal(t, guild, order[len(order)-1])
	assert.Len(t, order, 4)

	g.Effects.CleanupEndOfMainPhase()
	assert.Equal(t, seats(g.sequence(nil).Order()), seats(g.sequence(nil).WithOrangeMoment().Order()))
}
