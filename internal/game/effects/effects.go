package effects

import (
	"cmp"
	"slices"
)

// Duration represents how long an effect lasts
type Duration string

const (
	// DurationEndOfPhase - Effect expires when the fine phase changes
	DurationEndOfPhase Duration = "EndOfPhase"

	// DurationEndOfMainPhase - Effect expires when the main phase changes
	DurationEndOfMainPhase Duration = "EndOfMainPhase"

	// DurationEndOfTurn - Effect expires at end of turn
	DurationEndOfTurn Duration = "EndOfTurn"

	// DurationPermanent - Effect lasts until removed explicitly
	DurationPermanent Duration = "Permanent"
)

// Kind names a transient effect.
type Kind string

const (
	KindOrangeFirst    Kind = "OrangeFirst"
	KindOrangeLast     Kind = "OrangeLast"
	KindWeatherControl Kind = "WeatherControl"
	KindHajr           Kind = "Hajr"
	KindKarama         Kind = "Karama"
)

// Effect is a transient modifier owned by a faction.
type Effect struct {
	Kind     Kind     `json:"kind"`
	Owner    string   `json:"owner"`
	Duration Duration `json:"duration"`
}

// Registry holds the active effects of one game in insertion order.
// It is owned by the game's single writer and is not safe for concurrent use.
type Registry struct {
	effects []Effect
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add activates an effect. Adding the same kind for the same owner replaces it.
func (r *Registry) Add(e Effect) {
	r.Remove(e.Kind, e.Owner)
	r.effects = append(r.effects, e)
}

// Remove deactivates the effect of kind owned by owner.
func (r *Registry) Remove(kind Kind, owner string) {
	r.effects = slices.DeleteFunc(r.effects, func(e Effect) bool {
		return e.Kind == kind && e.Owner == owner
	})
}

// Active returns the first active effect of kind, if any.
func (r *Registry) Active(kind Kind) (Effect, bool) {
	for _, e := range r.effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return Effect{}, false
}

// ActiveFor reports whether owner holds an active effect of kind.
func (r *Registry) ActiveFor(kind Kind, owner string) bool {
	for _, e := range r.effects {
		if e.Kind == kind && e.Owner == owner {
			return true
		}
	}
	return false
}

// Len returns the number of active effects.
func (r *Registry) Len() int {
	return len(r.effects)
}

// Snapshot returns the active effects sorted by kind then owner.
func (r *Registry) Snapshot() []Effect {
	out := slices.Clone(r.effects)
	slices.SortFunc(out, func(a, b Effect) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Owner, b.Owner)
	})
	return out
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	return &Registry{effects: slices.Clone(r.effects)}
}

func (r *Registry) expire(durations ...Duration) {
	r.effects = slices.DeleteFunc(r.effects, func(e Effect) bool {
		return slices.Contains(durations, e.Duration)
	})
}

// CleanupEndOfPhase removes effects that expire when the fine phase changes.
func (r *Registry) CleanupEndOfPhase() {
	r.expire(DurationEndOfPhase)
}

// CleanupEndOfMainPhase removes effects that expire when the main phase changes.
// Leaving a main phase also leaves its fine phase.
func (r *Registry) CleanupEndOfMainPhase() {
	r.expire(DurationEndOfPhase, DurationEndOfMainPhase)
}

// CleanupEndOfTurn removes every effect that does not outlive the turn.
func (r *Registry) CleanupEndOfTurn() {
	r.expire(DurationEndOfPhase, DurationEndOfMainPhase, DurationEndOfTurn)
}
