package game

import (
	"errors"
	"fmt"
)

// Reason is a machine-readable rejection code.
type Reason string

const (
	ReasonNotAdmissible         Reason = "not-admissible"
	ReasonWrongPhase            Reason = "wrong-phase"
	ReasonNotYourTurn           Reason = "not-your-turn"
	ReasonCapacityExceeded      Reason = "capacity-exceeded"
	ReasonInsufficientResources Reason = "insufficient-resources"
	ReasonInvalidTarget         Reason = "invalid-target"
	ReasonInvalidAmount         Reason = "invalid-amount"
	ReasonUnknownPlayer         Reason = "unknown-player"
	ReasonGameEnded             Reason = "game-ended"
	ReasonStorm                 Reason = "storm"
	ReasonOccupancy             Reason = "occupancy"
	ReasonAlreadyActed          Reason = "already-acted"
)

// RejectedError reports a command that was not applied. State is unchanged.
type RejectedError struct {
	Kind    Kind
	Reason  Reason
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s rejected: %s: %s", e.Kind, e.Reason, e.Message)
}

func reject(kind Kind, reason Reason, format string, args ...any) *RejectedError {
	return &RejectedError{Kind: kind, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, or "" if err is not a rejection.
func ReasonOf(err error) Reason {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}
	return ""
}

// ReplayError reports the first log entry that failed to apply during a load.
type ReplayError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay failed at entry %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid game configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

var (
	// ErrUnknownKind is returned when decoding a record of an unregistered command kind.
	ErrUnknownKind = errors.New("unknown command kind")
	// ErrMatchNotFound is returned by the Manager for unknown match ids.
	ErrMatchNotFound = errors.New("match not found")
	// ErrUndoRange is returned when undoing to a position outside the history.
	ErrUndoRange = errors.New("undo position out of range")
)
