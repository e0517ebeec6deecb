package data

import (
	"fmt"
	"slices"
	"sync"
)

// Catalog is the read-only static data the engine consults.
type Catalog interface {
	Profile(f Faction) (FactionProfile, bool)
	Factions() []Faction
	Leader(id LeaderID) (Leader, bool)
	Card(id CardID) (TreacheryCard, bool)
	TreacheryDeck() []CardID
	SpiceCard(id int) (SpiceCard, bool)
	SpiceDeck() []int
	Territory(id TerritoryID) (Territory, bool)
	Territories() []TerritoryID
	Location(id LocationID) (Location, bool)
	Locations() []LocationID
	LocationsOf(id TerritoryID) []LocationID
	Adjacent(a, b TerritoryID) bool
}

type catalog struct {
	profiles        map[Faction]FactionProfile
	leaders         map[LeaderID]Leader
	cards           map[CardID]TreacheryCard
	cardOrder       []CardID
	spice           map[int]SpiceCard
	spiceOrder      []int
	territories     map[TerritoryID]Territory
	territoryOrder  []TerritoryID
	locations       map[LocationID]Location
	locationOrder   []LocationID
	locationsByTerr map[TerritoryID][]LocationID
}

var (
	defaultOnce    sync.Once
	defaultCatalog *catalog
)

// DefaultCatalog returns the built-in game content. The result is shared and immutable.
func DefaultCatalog() Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = build()
	})
	return defaultCatalog
}

func locationID(t TerritoryID, sector int, sectors int) LocationID {
	if sectors == 1 {
		return LocationID(t)
	}
	return LocationID(fmt.Sprintf("%s-%d", t, sector))
}

func build() *catalog {
	c := &catalog{
		profiles:        make(map[Faction]FactionProfile, len(profiles)),
		leaders:         make(map[LeaderID]Leader, len(leaders)),
		cards:           make(map[CardID]TreacheryCard, len(treacheryCards)),
		spice:           make(map[int]SpiceCard, len(spiceCards)),
		territories:     make(map[TerritoryID]Territory, len(territories)),
		locations:       make(map[LocationID]Location),
		locationsByTerr: make(map[TerritoryID][]LocationID),
	}
	for _, p := range profiles {
		c.profiles[p.Faction] = p
	}
	for _, l := range leaders {
		c.leaders[l.ID] = l
	}
	for _, card := range treacheryCards {
		c.cards[card.ID] = card
		c.cardOrder = append(c.cardOrder, card.ID)
	}
	for _, s := range spiceCards {
		c.spice[s.ID] = s
		c.spiceOrder = append(c.spiceOrder, s.ID)
	}
	adjacency := make(map[TerritoryID][]TerritoryID)
	for _, b := range borders {
		adjacency[b[0]] = append(adjacency[b[0]], b[1])
		adjacency[b[1]] = append(adjacency[b[1]], b[0])
	}
	for _, def := range territories {
		t := def.territory
		t.Adjacent = slices.Sorted(slices.Values(adjacency[t.ID]))
		c.territories[t.ID] = t
		c.territoryOrder = append(c.territoryOrder, t.ID)
		for _, sector := range def.sectors {
			id := locationID(t.ID, sector, len(def.sectors))
			c.locations[id] = Location{ID: id, Territory: t.ID, Sector: sector}
			c.locationOrder = append(c.locationOrder, id)
			c.locationsByTerr[t.ID] = append(c.locationsByTerr[t.ID], id)
		}
	}
	return c
}

func (c *catalog) Profile(f Faction) (FactionProfile, bool) {
	p, ok := c.profiles[f]
	return p, ok
}

func (c *catalog) Factions() []Faction {
	out := make([]Faction, 0, len(AllFactions))
	for _, f := range AllFactions {
		if _, ok := c.profiles[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (c *catalog) Leader(id LeaderID) (Leader, bool) {
	l, ok := c.leaders[id]
	return l, ok
}

func (c *catalog) Card(id CardID) (TreacheryCard, bool) {
	card, ok := c.cards[id]
	return card, ok
}

func (c *catalog) TreacheryDeck() []CardID {
	return slices.Clone(c.cardOrder)
}

func (c *catalog) SpiceCard(id int) (SpiceCard, bool) {
	s, ok := c.spice[id]
	return s, ok
}

func (c *catalog) SpiceDeck() []int {
	return slices.Clone(c.spiceOrder)
}

func (c *catalog) Territory(id TerritoryID) (Territory, bool) {
	t, ok := c.territories[id]
	return t, ok
}

func (c *catalog) Territories() []TerritoryID {
	return slices.Clone(c.territoryOrder)
}

func (c *catalog) Location(id LocationID) (Location, bool) {
	l, ok := c.locations[id]
	return l, ok
}

func (c *catalog) Locations() []LocationID {
	return slices.Clone(c.locationOrder)
}

func (c *catalog) LocationsOf(id TerritoryID) []LocationID {
	return slices.Clone(c.locationsByTerr[id])
}

func (c *catalog) Adjacent(a, b TerritoryID) bool {
	t, ok := c.territories[a]
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(t.Adjacent, b)
	return found
}

// TerritoryOf resolves the territory of a location through cat.
func TerritoryOf(cat Catalog, id LocationID) (Territory, bool) {
	loc, ok := cat.Location(id)
	if !ok {
		return Territory{}, false
	}
	return cat.Territory(loc.Territory)
}
