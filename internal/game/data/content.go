package data

var profiles = []FactionProfile{
	{
		Faction:            FactionAtreides,
		StartingSpice:      10,
		Starting:           []Placement{{Location: "arrakeen", Normal: 10}},
		ReserveNormal:      10,
		FreeRevivals:       2,
		HandLimit:          4,
		HomeworldThreshold: 6,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"thufir-hawat", "lady-jessica", "gurney-halleck", "duncan-idaho", "dr-yueh"},
	},
	{
		Faction:            FactionHarkonnen,
		StartingSpice:      10,
		Starting:           []Placement{{Location: "carthag", Normal: 10}},
		ReserveNormal:      10,
		FreeRevivals:       2,
		HandLimit:          8,
		HomeworldThreshold: 7,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"feyd-rautha", "beast-rabban", "piter-de-vries", "captain-iakin-nefud", "umman-kudu"},
	},
	{
		Faction:            FactionFremen,
		StartingSpice:      3,
		ReserveNormal:      17,
		ReserveSpecial:     3,
		FreeRevivals:       3,
		HandLimit:          4,
		HomeworldThreshold: 5,
		SpecialStrength:    2,
		Leaders:            []LeaderID{"stilgar", "chani", "otheym", "shadout-mapes", "jamis"},
	},
	{
		Faction:            FactionEmperor,
		StartingSpice:      10,
		ReserveNormal:      15,
		ReserveSpecial:     5,
		FreeRevivals:       1,
		HandLimit:          4,
		HomeworldThreshold: 5,
		SpecialStrength:    2,
		Leaders:            []LeaderID{"hasimir-fenring", "captain-aramsham", "caid", "burseg", "bashar"},
	},
	{
		Faction:            FactionGuild,
		StartingSpice:      5,
		Starting:           []Placement{{Location: "tueks-sietch", Normal: 5}},
		ReserveNormal:      15,
		FreeRevivals:       1,
		HandLimit:          4,
		HomeworldThreshold: 6,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"staban-tuek", "master-bewt", "esmar-tuek", "soo-soo-sook", "guild-rep"},
	},
	{
		Faction:            FactionBeneGesserit,
		StartingSpice:      5,
		ReserveNormal:      20,
		FreeRevivals:       1,
		HandLimit:          4,
		HomeworldThreshold: 9,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"alia", "margot-fenring", "mother-ramallo", "princess-irulan", "wanna-yueh"},
	},
	{
		Faction:            FactionIxian,
		StartingSpice:      10,
		Starting:           []Placement{{Location: "polar-sink", Normal: 3}},
		ReserveNormal:      17,
		FreeRevivals:       1,
		HandLimit:          4,
		HomeworldThreshold: 8,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"dominic-vernius", "cammar-pilru", "tessia-vernius", "kailea-vernius", "ctair-pilru"},
	},
	{
		Faction:            FactionTleilaxu,
		StartingSpice:      5,
		ReserveNormal:      20,
		FreeRevivals:       2,
		HandLimit:          4,
		HomeworldThreshold: 10,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"hidar-fen-ajidica", "master-zaaf", "zoal", "blin", "wykk"},
	},
	{
		Faction:            FactionCHOAM,
		StartingSpice:      2,
		ReserveNormal:      20,
		FreeRevivals:       2,
		HandLimit:          5,
		HomeworldThreshold: 10,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"frankos-aru", "rajiv-londine", "lady-jalma", "duke-verdun", "viscount-tull"},
	},
	{
		Faction:            FactionRichese,
		StartingSpice:      5,
		ReserveNormal:      20,
		FreeRevivals:       2,
		HandLimit:          5,
		HomeworldThreshold: 10,
		SpecialStrength:    1,
		Leaders:            []LeaderID{"ein-calimar", "talis-balt", "haloa-rund", "lady-helena", "flinto-kinnis"},
	},
}

var leaders = []Leader{
	{"thufir-hawat", "Thufir Hawat", FactionAtreides, 5},
	{"lady-jessica", "Lady Jessica", FactionAtreides, 5},
	{"gurney-halleck", "Gurney Halleck", FactionAtreides, 4},
	{"duncan-idaho", "Duncan Idaho", FactionAtreides, 2},
	{"dr-yueh", "Dr. Wellington Yueh", FactionAtreides, 1},

	{"feyd-rautha", "Feyd-Rautha", FactionHarkonnen, 6},
	{"beast-rabban", "Beast Rabban", FactionHarkonnen, 4},
	{"piter-de-vries", "Piter de Vries", FactionHarkonnen, 3},
	{"captain-iakin-nefud", "Captain Iakin Nefud", FactionHarkonnen, 2},
	{"umman-kudu", "Umman Kudu", FactionHarkonnen, 1},

	{"stilgar", "Stilgar", FactionFremen, 7},
	{"chani", "Chani", FactionFremen, 6},
	{"otheym", "Otheym", FactionFremen, 5},
	{"shadout-mapes", "Shadout Mapes", FactionFremen, 3},
	{"jamis", "Jamis", FactionFremen, 2},

	{"hasimir-fenring", "Hasimir Fenring", FactionEmperor, 6},
	{"captain-aramsham", "Captain Aramsham", FactionEmperor, 5},
	{"caid", "Caid", FactionEmperor, 3},
	{"burseg", "Burseg", FactionEmperor, 3},
	{"bashar", "Bashar", FactionEmperor, 2},

	{"staban-tuek", "Staban Tuek", FactionGuild, 5},
	{"master-bewt", "Master Bewt", FactionGuild, 3},
	{"esmar-tuek", "Esmar Tuek", FactionGuild, 3},
	{"soo-soo-sook", "Soo-Soo Sook", FactionGuild, 2},
	{"guild-rep", "Guild Rep.", FactionGuild, 1},

	{"alia", "Alia", FactionBeneGesserit, 5},
	{"margot-fenring", "Margot Lady Fenring", FactionBeneGesserit, 5},
	{"mother-ramallo", "Mother Ramallo", FactionBeneGesserit, 5},
	{"princess-irulan", "Princess Irulan", FactionBeneGesserit, 5},
	{"wanna-yueh", "Wanna Yueh", FactionBeneGesserit, 5},

	{"dominic-vernius", "Dominic Vernius", FactionIxian, 4},
	{"cammar-pilru", "Cammar Pilru", FactionIxian, 3},
	{"tessia-vernius", "Tessia Vernius", FactionIxian, 2},
	{"kailea-vernius", "Kailea Vernius", FactionIxian, 2},
	{"ctair-pilru", "C'Tair Pilru", FactionIxian, 1},

	{"hidar-fen-ajidica", "Hidar Fen Ajidica", FactionTleilaxu, 4},
	{"master-zaaf", "Master Zaaf", FactionTleilaxu, 3},
	{"zoal", "Zoal", FactionTleilaxu, 3},
	{"blin", "Blin", FactionTleilaxu, 2},
	{"wykk", "Wykk", FactionTleilaxu, 1},

	{"frankos-aru", "Frankos Aru", FactionCHOAM, 4},
	{"rajiv-londine", "Rajiv Londine", FactionCHOAM, 3},
	{"lady-jalma", "Lady Jalma", FactionCHOAM, 2},
	{"duke-verdun", "Duke Verdun", FactionCHOAM, 2},
	{"viscount-tull", "Viscount Tull", FactionCHOAM, 1},

	{"ein-calimar", "Ein Calimar", FactionRichese, 5},
	{"talis-balt", "Talis Balt", FactionRichese, 4},
	{"haloa-rund", "Haloa Rund", FactionRichese, 3},
	{"lady-helena", "Lady Helena", FactionRichese, 2},
	{"flinto-kinnis", "Flinto Kinnis", FactionRichese, 1},
}

var treacheryCards = []TreacheryCard{
	{1, "Crysknife", CardProjectileWeapon},
	{2, "Maula Pistol", CardProjectileWeapon},
	{3, "Slip Tip", CardProjectileWeapon},
	{4, "Stunner", CardProjectileWeapon},
	{5, "Chaumas", CardPoisonWeapon},
	{6, "Chaumurky", CardPoisonWeapon},
	{7, "Ellaca Drug", CardPoisonWeapon},
	{8, "Gom Jabbar", CardPoisonWeapon},
	{9, "Lasgun", CardLasgun},
	{10, "Shield", CardShield},
	{11, "Shield", CardShield},
	{12, "Shield", CardShield},
	{13, "Shield", CardShield},
	{14, "Snooper", CardSnooper},
	{15, "Snooper", CardSnooper},
	{16, "Snooper", CardSnooper},
	{17, "Snooper", CardSnooper},
	{18, "Cheap Hero", CardCheapHero},
	{19, "Cheap Hero", CardCheapHero},
	{20, "Cheap Heroine", CardCheapHero},
	{21, "Family Atomics", CardFamilyAtomics},
	{22, "Hajr", CardHajr},
	{23, "Karama", CardKarama},
	{24, "Karama", CardKarama},
	{25, "Tleilaxu Ghola", CardTleilaxuGhola},
	{26, "Truthtrance", CardTruthtrance},
	{27, "Truthtrance", CardTruthtrance},
	{28, "Weather Control", CardWeatherControl},
	{29, "Baliset", CardWorthless},
	{30, "Jubba Cloak", CardWorthless},
	{31, "Kulon", CardWorthless},
	{32, "La La La", CardWorthless},
	{33, "Trip to Gamont", CardWorthless},
}

var spiceCards = []SpiceCard{
	{1, "Cielago North", "cielago-north-2", 8, false},
	{2, "South Mesa", "south-mesa-4", 10, false},
	{3, "Red Chasm", "red-chasm", 8, false},
	{4, "The Minor Erg", "the-minor-erg-7", 8, false},
	{5, "Old Gap", "old-gap-9", 6, false},
	{6, "Broken Land", "broken-land-11", 8, false},
	{7, "Hagga Basin", "hagga-basin-12", 6, false},
	{8, "Rock Outcroppings", "rock-outcroppings-13", 6, false},
	{9, "The Great Flat", "the-great-flat", 10, false},
	{10, "Funeral Plain", "funeral-plain", 6, false},
	{11, "Wind Pass North", "wind-pass-north-16", 6, false},
	{12, "Meridian", "meridian-1", 8, false},
	{13, "Shai-Hulud", "", 0, true},
	{14, "Shai-Hulud", "", 0, true},
	{15, "Shai-Hulud", "", 0, true},
	{16, "Shai-Hulud", "", 0, true},
	{17, "Shai-Hulud", "", 0, true},
	{18, "Shai-Hulud", "", 0, true},
}

type territorySpec struct {
	territory Territory
	sectors   []int
}

var territories = []territorySpec{
	{Territory{ID: "polar-sink", Name: "Polar Sink", Protected: true}, []int{NoSector}},
	{Territory{ID: "arrakeen", Name: "Arrakeen", Stronghold: true, Protected: true}, []int{9}},
	{Territory{ID: "carthag", Name: "Carthag", Stronghold: true, Protected: true}, []int{10}},
	{Territory{ID: "sietch-tabr", Name: "Sietch Tabr", Stronghold: true, Protected: true}, []int{13}},
	{Territory{ID: "habbanya-sietch", Name: "Habbanya Sietch", Stronghold: true, Protected: true}, []int{16}},
	{Territory{ID: "tueks-sietch", Name: "Tuek's Sietch", Stronghold: true, Protected: true}, []int{4}},
	{Territory{ID: "imperial-basin", Name: "Imperial Basin", Protected: true}, []int{8, 9, 10}},
	{Territory{ID: "false-wall-south", Name: "False Wall South", Protected: true}, []int{3, 4}},
	{Territory{ID: "false-wall-west", Name: "False Wall West", Protected: true}, []int{15, 16, 17}},
	{Territory{ID: "the-great-flat", Name: "The Great Flat"}, []int{14}},
	{Territory{ID: "funeral-plain", Name: "Funeral Plain"}, []int{14}},
	{Territory{ID: "broken-land", Name: "Broken Land"}, []int{10, 11}},
	{Territory{ID: "cielago-north", Name: "Cielago North"}, []int{0, 1, 2}},
	{Territory{ID: "south-mesa", Name: "South Mesa"}, []int{3, 4, 5}},
	{Territory{ID: "red-chasm", Name: "Red Chasm"}, []int{6}},
	{Territory{ID: "the-minor-erg", Name: "The Minor Erg"}, []int{5, 6, 7}},
	{Territory{ID: "hagga-basin", Name: "Hagga Basin"}, []int{11, 12}},
	{Territory{ID: "rock-outcroppings", Name: "Rock Outcroppings"}, []int{12, 13}},
	{Territory{ID: "wind-pass-north", Name: "Wind Pass North"}, []int{16, 17}},
	{Territory{ID: "meridian", Name: "Meridian"}, []int{0, 1}},
	{Territory{ID: "old-gap", Name: "Old Gap"}, []int{8, 9, 10}},
}

// borders lists each adjacency once; the catalog makes them symmetric.
var borders = [][2]TerritoryID{
	{"polar-sink", "imperial-basin"},
	{"polar-sink", "the-minor-erg"},
	{"polar-sink", "false-wall-south"},
	{"polar-sink", "cielago-north"},
	{"polar-sink", "wind-pass-north"},
	{"polar-sink", "hagga-basin"},
	{"polar-sink", "rock-outcroppings"},
	{"arrakeen", "imperial-basin"},
	{"arrakeen", "old-gap"},
	{"carthag", "imperial-basin"},
	{"carthag", "broken-land"},
	{"carthag", "hagga-basin"},
	{"imperial-basin", "old-gap"},
	{"imperial-basin", "broken-land"},
	{"imperial-basin", "the-minor-erg"},
	{"old-gap", "the-minor-erg"},
	{"broken-land", "hagga-basin"},
	{"hagga-basin", "rock-outcroppings"},
	{"rock-outcroppings", "sietch-tabr"},
	{"rock-outcroppings", "funeral-plain"},
	{"sietch-tabr", "the-great-flat"},
	{"funeral-plain", "the-great-flat"},
	{"the-great-flat", "false-wall-west"},
	{"the-great-flat", "wind-pass-north"},
	{"false-wall-west", "habbanya-sietch"},
	{"false-wall-west", "wind-pass-north"},
	{"habbanya-sietch", "wind-pass-north"},
	{"wind-pass-north", "cielago-north"},
	{"cielago-north", "meridian"},
	{"cielago-north", "false-wall-south"},
	{"meridian", "south-mesa"},
	{"false-wall-south", "south-mesa"},
	{"false-wall-south", "tueks-sietch"},
	{"false-wall-south", "the-minor-erg"},
	{"south-mesa", "tueks-sietch"},
	{"south-mesa", "red-chasm"},
	{"red-chasm", "the-minor-erg"},
}

// Fixed board references used by faction abilities.
const (
	PolarSink          = LocationID("polar-sink")
	PolarSinkTerritory = TerritoryID("polar-sink")
	Arrakeen           = LocationID("arrakeen")
	Carthag            = LocationID("carthag")
	GreatFlat          = TerritoryID("the-great-flat")
	SietchTabr         = TerritoryID("sietch-tabr")
	FalseWallSouth     = TerritoryID("false-wall-south")
	FalseWallWest      = TerritoryID("false-wall-west")
)
