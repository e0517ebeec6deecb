package rules

import "fmt"

// MainPhase is one of the coarse stages of a game turn.
type MainPhase int

const (
	MainPhaseSetup MainPhase = iota
	MainPhaseStorm
	MainPhaseBlow
	MainPhaseCharity
	MainPhaseBidding
	MainPhaseRevival
	MainPhaseShipmentAndMove
	MainPhaseBattle
	MainPhaseCollection
	MainPhaseContemplate
	MainPhaseEnded
)

var mainPhaseNames = map[MainPhase]string{
	MainPhaseSetup:           "SETUP",
	MainPhaseStorm:           "STORM",
	MainPhaseBlow:            "BLOW",
	MainPhaseCharity:         "CHARITY",
	MainPhaseBidding:         "BIDDING",
	MainPhaseRevival:         "REVIVAL",
	MainPhaseShipmentAndMove: "SHIPMENT_AND_MOVE",
	MainPhaseBattle:          "BATTLE",
	MainPhaseCollection:      "COLLECTION",
	MainPhaseContemplate:     "CONTEMPLATE",
	MainPhaseEnded:           "ENDED",
}

func (m MainPhase) String() string {
	if name, ok := mainPhaseNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MAIN_PHASE_%d", int(m))
}

// Phase is a fine-grained state nested under exactly one MainPhase.
type Phase int

const (
	PhaseAwaitingPlayers Phase = iota
	PhaseSelectingTraitors
	PhaseBluePredicting
	PhaseYellowSettingUp
	PhaseBlueSettingUp

	PhaseStormStart
	PhaseDiallingStorm
	PhaseStormReport

	PhaseBlowA
	PhaseYellowRidingMonsterA
	PhaseAllianceA
	PhaseBlowB
	PhaseYellowRidingMonsterB
	PhaseAllianceB
	PhaseBlowReport

	PhaseClaimingCharity

	PhaseBiddingStart
	PhaseWhiteAnnouncingAuction
	PhaseWhiteSpecifyingAuction
	PhaseWhiteBidding
	PhaseGreySelectingCard
	PhaseBidding
	PhaseBiddingReport

	PhaseResurrection

	PhaseShipmentStart
	PhaseOrangeDeciding
	PhaseShipping
	PhaseBlueAccompanying
	PhaseMoving
	PhaseShipmentAndMoveConcluded

	PhaseBattleStart
	PhaseBattleInitiating
	PhaseBattlePlanning
	PhaseCallingTraitors
	PhaseBattleConcluding
	PhaseBattleReport

	PhaseCollecting
	PhaseCollectionReport

	PhaseContemplating
	PhaseTurnConcluded

	PhaseGameEnded
)

type phaseEntry struct {
	name      string
	main      MainPhase
	automatic bool
}

// phaseTable declares every fine phase with its parent and whether it is
// resolved without waiting for any actor.
var phaseTable = map[Phase]phaseEntry{
	PhaseAwaitingPlayers:   {"AWAITING_PLAYERS", MainPhaseSetup, false},
	PhaseSelectingTraitors: {"SELECTING_TRAITORS", MainPhaseSetup, false},
	PhaseBluePredicting:    {"BLUE_PREDICTING", MainPhaseSetup, false},
	PhaseYellowSettingUp:   {"YELLOW_SETTING_UP", MainPhaseSetup, false},
	PhaseBlueSettingUp:     {"BLUE_SETTING_UP", MainPhaseSetup, false},

	PhaseStormStart:    {"STORM_START", MainPhaseStorm, true},
	PhaseDiallingStorm: {"DIALLING_STORM", MainPhaseStorm, false},
	PhaseStormReport:   {"STORM_REPORT", MainPhaseStorm, false},

	PhaseBlowA:                {"BLOW_A", MainPhaseBlow, true},
	PhaseYellowRidingMonsterA: {"YELLOW_RIDING_MONSTER_A", MainPhaseBlow, false},
	PhaseAllianceA:            {"ALLIANCE_A", MainPhaseBlow, false},
	PhaseBlowB:                {"BLOW_B", MainPhaseBlow, true},
	PhaseYellowRidingMonsterB: {"YELLOW_RIDING_MONSTER_B", MainPhaseBlow, false},
	PhaseAllianceB:            {"ALLIANCE_B", MainPhaseBlow, false},
	PhaseBlowReport:           {"BLOW_REPORT", MainPhaseBlow, false},

	PhaseClaimingCharity: {"CLAIMING_CHARITY", MainPhaseCharity, false},

	PhaseBiddingStart:           {"BIDDING_START", MainPhaseBidding, true},
	PhaseWhiteAnnouncingAuction: {"WHITE_ANNOUNCING_AUCTION", MainPhaseBidding, false},
	PhaseWhiteSpecifyingAuction: {"WHITE_SPECIFYING_AUCTION", MainPhaseBidding, false},
	PhaseWhiteBidding:           {"WHITE_BIDDING", MainPhaseBidding, false},
	PhaseGreySelectingCard:      {"GREY_SELECTING_CARD", MainPhaseBidding, false},
	PhaseBidding:                {"BIDDING", MainPhaseBidding, false},
	PhaseBiddingReport:          {"BIDDING_REPORT", MainPhaseBidding, false},

	PhaseResurrection: {"RESURRECTION", MainPhaseRevival, false},

	PhaseShipmentStart:            {"SHIPMENT_START", MainPhaseShipmentAndMove, true},
	PhaseOrangeDeciding:           {"ORANGE_DECIDING", MainPhaseShipmentAndMove, false},
	PhaseShipping:                 {"SHIPPING", MainPhaseShipmentAndMove, false},
	PhaseBlueAccompanying:         {"BLUE_ACCOMPANYING", MainPhaseShipmentAndMove, false},
	PhaseMoving:                   {"MOVING", MainPhaseShipmentAndMove, false},
	PhaseShipmentAndMoveConcluded: {"SHIPMENT_AND_MOVE_CONCLUDED", MainPhaseShipmentAndMove, false},

	PhaseBattleStart:      {"BATTLE_START", MainPhaseBattle, true},
	PhaseBattleInitiating: {"BATTLE_INITIATING", MainPhaseBattle, false},
	PhaseBattlePlanning:   {"BATTLE_PLANNING", MainPhaseBattle, false},
	PhaseCallingTraitors:  {"CALLING_TRAITORS", MainPhaseBattle, false},
	PhaseBattleConcluding: {"BATTLE_CONCLUDING", MainPhaseBattle, false},
	PhaseBattleReport:     {"BATTLE_REPORT", MainPhaseBattle, false},

	PhaseCollecting:       {"COLLECTING", MainPhaseCollection, true},
	PhaseCollectionReport: {"COLLECTION_REPORT", MainPhaseCollection, false},

	PhaseContemplating: {"CONTEMPLATING", MainPhaseContemplate, true},
	PhaseTurnConcluded: {"TURN_CONCLUDED", MainPhaseContemplate, false},

	PhaseGameEnded: {"GAME_ENDED", MainPhaseEnded, false},
}

func (p Phase) String() string {
	if entry, ok := phaseTable[p]; ok {
		return entry.name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Main returns the MainPhase the phase belongs to.
func (p Phase) Main() MainPhase {
	if entry, ok := phaseTable[p]; ok {
		return entry.main
	}
	return MainPhaseEnded
}

// Automatic reports whether the phase resolves on entry without waiting for a command.
func (p Phase) Automatic() bool {
	return phaseTable[p].automatic
}

// Known reports whether the phase is declared.
func (p Phase) Known() bool {
	_, ok := phaseTable[p]
	return ok
}

// AllPhases returns every declared phase in declaration order.
func AllPhases() []Phase {
	phases := make([]Phase, 0, len(phaseTable))
	for p := PhaseAwaitingPlayers; p <= PhaseGameEnded; p++ {
		if _, ok := phaseTable[p]; ok {
			phases = append(phases, p)
		}
	}
	return phases
}

// PhasesOf returns the fine phases nested under a MainPhase in declaration order.
func PhasesOf(main MainPhase) []Phase {
	var phases []Phase
	for _, p := range AllPhases() {
		if p.Main() == main {
			phases = append(phases, p)
		}
	}
	return phases
}
