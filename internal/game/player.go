package game

import (
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
)

// Player is one seat at the table.
type Player struct {
	Name    string
	Faction data.Faction
	Seat    int

	Spice int
	Hand  []data.CardID

	Traitors       []data.LeaderID
	TraitorOptions []data.LeaderID

	Reserves Forces
	Tanks    Forces
	Board    Board

	// DeadLeaders is kept sorted.
	DeadLeaders []data.LeaderID

	Ally  data.Faction
	Offer data.Faction

	profile data.FactionProfile
}

func newPlayer(name string, profile data.FactionProfile, seat int) *Player {
	return &Player{
		Name:     name,
		Faction:  profile.Faction,
		Seat:     seat,
		Spice:    profile.StartingSpice,
		Reserves: Forces{Normal: profile.ReserveNormal, Special: profile.ReserveSpecial},
		Board:    make(Board),
		profile:  profile,
	}
}

// HandLimit returns the faction's maximum hand size.
func (p *Player) HandLimit() int {
	return p.profile.HandLimit
}

// HandFull reports whether the player cannot take another card.
func (p *Player) HandFull() bool {
	return len(p.Hand) >= p.profile.HandLimit
}

// Holds reports whether card is in the player's hand.
func (p *Player) Holds(card data.CardID) bool {
	return slices.Contains(p.Hand, card)
}

// Leaders returns the faction's leaders in profile order.
func (p *Player) Leaders() []data.LeaderID {
	return p.profile.Leaders
}

// LeaderAlive reports whether the player owns the leader and it is not in the tanks.
func (p *Player) LeaderAlive(id data.LeaderID) bool {
	return slices.Contains(p.profile.Leaders, id) && !p.LeaderDead(id)
}

// LeaderDead reports whether the leader is in the tanks.
func (p *Player) LeaderDead(id data.LeaderID) bool {
	_, found := slices.BinarySearch(p.DeadLeaders, id)
	return found
}

// AliveLeaders returns living leaders in profile order.
func (p *Player) AliveLeaders() []data.LeaderID {
	var out []data.LeaderID
	for _, id := range p.profile.Leaders {
		if !p.LeaderDead(id) {
			out = append(out, id)
		}
	}
	return out
}

// HasAlly reports whether the player is in an alliance.
func (p *Player) HasAlly() bool {
	return p.Ally != data.FactionNone
}

// SpecialStrength returns the battle strength of one special force.
func (p *Player) SpecialStrength() int {
	if p.profile.SpecialStrength == 0 {
		return 1
	}
	return p.profile.SpecialStrength
}

// OnBoard returns the total forces on the board.
func (p *Player) OnBoard() Forces {
	var total Forces
	for _, f := range p.Board {
		total = total.Add(f)
	}
	return total
}

func (p *Player) takeCard(card data.CardID) {
	p.Hand = append(p.Hand, card)
}

func (p *Player) dropCard(card data.CardID) bool {
	i := slices.Index(p.Hand, card)
	if i < 0 {
		return false
	}
	p.Hand = slices.Delete(p.Hand, i, i+1)
	return true
}

func (p *Player) killLeader(id data.LeaderID) {
	i, found := slices.BinarySearch(p.DeadLeaders, id)
	if !found {
		p.DeadLeaders = slices.Insert(p.DeadLeaders, i, id)
	}
}

func (p *Player) reviveLeader(id data.LeaderID) {
	i, found := slices.BinarySearch(p.DeadLeaders, id)
	if found {
		p.DeadLeaders = slices.Delete(p.DeadLeaders, i, i+1)
	}
}
