package game

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
)

// Kind names a command type.
type Kind string

const (
	KindEstablishPlayers      Kind = "EstablishPlayers"
	KindEndPhase              Kind = "EndPhase"
	KindTraitorSelected       Kind = "TraitorSelected"
	KindBluePrediction        Kind = "BluePrediction"
	KindYellowSetup           Kind = "YellowSetup"
	KindBlueSetup             Kind = "BlueSetup"
	KindStormDialled          Kind = "StormDialled"
	KindWeatherControlled     Kind = "WeatherControlled"
	KindYellowRidesMonster    Kind = "YellowRidesMonster"
	KindAllianceOffered       Kind = "AllianceOffered"
	KindCharityClaimed        Kind = "CharityClaimed"
	KindWhiteAnnouncesAuction Kind = "WhiteAnnouncesAuction"
	KindWhiteSpecifiesAuction Kind = "WhiteSpecifiesAuction"
	KindGreySelectsCard       Kind = "GreySelectsCard"
	KindBid                   Kind = "Bid"
	KindRevival               Kind = "Revival"
	KindOrangeDetermined      Kind = "OrangeDetermined"
	KindShipment              Kind = "Shipment"
	KindBlueAccompanies       Kind = "BlueAccompanies"
	KindMovement              Kind = "Movement"
	KindHajrPlayed            Kind = "HajrPlayed"
	KindBattleInitiated       Kind = "BattleInitiated"
	KindBattlePlanned         Kind = "BattlePlanned"
	KindTraitorCalled         Kind = "TraitorCalled"
	KindBattleConcluded       Kind = "BattleConcluded"
	KindDonated               Kind = "Donated"
	KindAllianceBroken        Kind = "AllianceBroken"
	KindBrownDiscarded        Kind = "BrownDiscarded"
	KindGholaRevived          Kind = "GholaRevived"
)

// Command is a typed request to change the game. Check validates it against
// the current state without mutating anything; Apply performs the change and
// may only be called after Check succeeded.
type Command interface {
	Kind() Kind
	// Initiator is the faction issuing the command, or FactionNone for the host.
	Initiator() data.Faction
	Check(g *Game) error
	Apply(g *Game)
}

// By carries the initiating faction of a player command.
type By struct {
	Faction data.Faction `json:"by"`
}

func (b By) Initiator() data.Faction { return b.Faction }

func (b *By) attribute(f data.Faction) { b.Faction = f }

// Attribute sets the initiating faction of a player command, overriding any
// value from its payload. Host commands are left unchanged.
func Attribute(cmd Command, f data.Faction) {
	if a, ok := cmd.(interface{ attribute(data.Faction) }); ok {
		a.attribute(f)
	}
}

// IsHostCommand reports whether cmd can only be issued by the host.
func IsHostCommand(cmd Command) bool {
	_, player := cmd.(interface{ attribute(data.Faction) })
	return !player
}

// Host marks a command issued by the game host.
type Host struct{}

func (Host) Initiator() data.Faction { return data.FactionNone }

type registration struct {
	factory func() Command
	// interrupt commands do not drive the phase machine.
	interrupt bool
}

var registry = map[Kind]registration{}

func register(kind Kind, interrupt bool, factory func() Command) {
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("command kind %s registered twice", kind))
	}
	registry[kind] = registration{factory: factory, interrupt: interrupt}
}

// Kinds returns every registered command kind, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// NewCommand returns a zero command of the given kind.
func NewCommand(kind Kind) (Command, error) {
	reg, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return reg.factory(), nil
}

func isInterrupt(kind Kind) bool {
	return registry[kind].interrupt
}

// Record is the persisted envelope of one command.
type Record struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeCommand wraps cmd in a Record.
func EncodeCommand(cmd Command) (Record, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", cmd.Kind(), err)
	}
	return Record{Kind: cmd.Kind(), Payload: payload}, nil
}

// DecodeCommand rebuilds the command carried by rec.
func DecodeCommand(rec Record) (Command, error) {
	cmd, err := NewCommand(rec.Kind)
	if err != nil {
		return nil, err
	}
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rec.Kind, err)
		}
	}
	return cmd, nil
}

func init() {
	register(KindEstablishPlayers, false, func() Command { return &EstablishPlayers{} })
	register(KindEndPhase, false, func() Command { return &EndPhase{} })
	register(KindTraitorSelected, false, func() Command { return &TraitorSelected{} })
	register(KindBluePrediction, false, func() Command { return &BluePrediction{} })
	register(KindYellowSetup, false, func() Command { return &YellowSetup{} })
	register(KindBlueSetup, false, func() Command { return &BlueSetup{} })
	register(KindStormDialled, false, func() Command { return &StormDialled{} })
	register(KindWeatherControlled, false, func() Command { return &WeatherControlled{} })
	register(KindYellowRidesMonster, false, func() Command { return &YellowRidesMonster{} })
	register(KindAllianceOffered, false, func() Command { return &AllianceOffered{} })
	register(KindCharityClaimed, false, func() Command { return &CharityClaimed{} })
	register(KindWhiteAnnouncesAuction, false, func() Command { return &WhiteAnnouncesAuction{} })
	register(KindWhiteSpecifiesAuction, false, func() Command { return &WhiteSpecifiesAuction{} })
	register(KindGreySelectsCard, false, func() Command { return &GreySelectsCard{} })
	register(KindBid, false, func() Command { return &Bid{} })
	register(KindRevival, false, func() Command { return &Revival{} })
	register(KindOrangeDetermined, false, func() Command { return &OrangeDetermined{} })
	register(KindShipment, false, func() Command { return &Shipment{} })
	register(KindBlueAccompanies, false, func() Command { return &BlueAccompanies{} })
	register(KindMovement, false, func() Command { return &Movement{} })
	register(KindHajrPlayed, false, func() Command { return &HajrPlayed{} })
	register(KindBattleInitiated, false, func() Command { return &BattleInitiated{} })
	register(KindBattlePlanned, false, func() Command { return &BattlePlanned{} })
	register(KindTraitorCalled, false, func() Command { return &TraitorCalled{} })
	register(KindBattleConcluded, false, func() Command { return &BattleConcluded{} })

	register(KindDonated, true, func() Command { return &Donated{} })
	register(KindAllianceBroken, true, func() Command { return &AllianceBroken{} })
	register(KindBrownDiscarded, true, func() Command { return &BrownDiscarded{} })
	register(KindGholaRevived, true, func() Command { return &GholaRevived{} })
}
