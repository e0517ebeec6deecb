package data

// Faction identifies one of the playable houses.
type Faction string

const (
	FactionNone         Faction = ""
	FactionAtreides     Faction = "Atreides"
	FactionHarkonnen    Faction = "Harkonnen"
	FactionFremen       Faction = "Fremen"
	FactionEmperor      Faction = "Emperor"
	FactionGuild        Faction = "Guild"
	FactionBeneGesserit Faction = "BeneGesserit"
	FactionIxian        Faction = "Ixian"
	FactionTleilaxu     Faction = "Tleilaxu"
	FactionCHOAM        Faction = "CHOAM"
	FactionRichese      Faction = "Richese"
)

// AllFactions lists every faction in canonical order.
var AllFactions = []Faction{
	FactionAtreides,
	FactionHarkonnen,
	FactionFremen,
	FactionEmperor,
	FactionGuild,
	FactionBeneGesserit,
	FactionIxian,
	FactionTleilaxu,
	FactionCHOAM,
	FactionRichese,
}

// LeaderID identifies a leader disc.
type LeaderID string

// CardID identifies one physical treachery card.
type CardID int

// TerritoryID identifies a territory on the board.
type TerritoryID string

// LocationID identifies a (territory, sector) pair.
type LocationID string

// NoSector marks a location outside the storm track.
const NoSector = -1

// Sectors is the number of storm sectors around the board.
const Sectors = 18

// Placement describes forces put on a location.
type Placement struct {
	Location LocationID `json:"location"`
	Normal   int        `json:"normal"`
	Special  int        `json:"special"`
}

// FactionProfile holds the starting configuration of a faction.
type FactionProfile struct {
	Faction        Faction
	StartingSpice  int
	Starting       []Placement
	ReserveNormal  int
	ReserveSpecial int
	FreeRevivals   int
	HandLimit      int
	// HomeworldThreshold is the reserve count below which the homeworld is at its low side.
	HomeworldThreshold int
	// SpecialStrength is the battle strength of one special force.
	SpecialStrength int
	Leaders         []LeaderID
}

// Leader is a named leader disc.
type Leader struct {
	ID      LeaderID
	Name    string
	Faction Faction
	Value   int
}

// CardType classifies treachery cards.
type CardType string

const (
	CardProjectileWeapon CardType = "ProjectileWeapon"
	CardPoisonWeapon     CardType = "PoisonWeapon"
	CardLasgun           CardType = "Lasgun"
	CardShield           CardType = "Shield"
	CardSnooper          CardType = "Snooper"
	CardCheapHero        CardType = "CheapHero"
	CardFamilyAtomics    CardType = "FamilyAtomics"
	CardHajr             CardType = "Hajr"
	CardKarama           CardType = "Karama"
	CardTleilaxuGhola    CardType = "TleilaxuGhola"
	CardTruthtrance      CardType = "Truthtrance"
	CardWeatherControl   CardType = "WeatherControl"
	CardWorthless        CardType = "Worthless"
)

// IsWeapon reports whether the card can be played as a battle weapon.
func (t CardType) IsWeapon() bool {
	return t == CardProjectileWeapon || t == CardPoisonWeapon || t == CardLasgun
}

// IsDefense reports whether the card can be played as a battle defense.
func (t CardType) IsDefense() bool {
	return t == CardShield || t == CardSnooper
}

// Counters reports whether defense t stops weapon w.
func (t CardType) Counters(w CardType) bool {
	switch t {
	case CardShield:
		return w == CardProjectileWeapon
	case CardSnooper:
		return w == CardPoisonWeapon
	}
	return false
}

// TreacheryCard is one card of the treachery deck.
type TreacheryCard struct {
	ID   CardID
	Name string
	Type CardType
}

// SpiceCard is one card of the spice deck. Worm cards have no location.
type SpiceCard struct {
	ID       int
	Name     string
	Location LocationID
	Amount   int
	Worm     bool
}

// Territory is a named region of the board.
type Territory struct {
	ID         TerritoryID
	Name       string
	Stronghold bool
	// Protected territories are sheltered from the storm.
	Protected bool
	Adjacent  []TerritoryID
}

// Location is a (territory, sector) pair where forces and spice sit.
type Location struct {
	ID        LocationID
	Territory TerritoryID
	Sector    int
}

// InSector reports whether the location lies in sector s.
func (l Location) InSector(s int) bool {
	return l.Sector != NoSector && l.Sector == s
}
