package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
)

// SeatTokenHeader carries the seat token on player commands.
const SeatTokenHeader = "x-arrakis-seat-token"

// seatTokens binds each seated faction of a match to a bearer token. Only
// digests are kept.
type seatTokens struct {
	mu      sync.Mutex
	byMatch map[string]map[data.Faction][sha256.Size]byte
}

func newSeatTokens() *seatTokens {
	return &seatTokens{byMatch: make(map[string]map[data.Faction][sha256.Size]byte)}
}

// issue replaces every token of match id with a fresh one per faction.
func (s *seatTokens) issue(id string, factions []data.Faction) map[string]any {
	digests := make(map[data.Faction][sha256.Size]byte, len(factions))
	out := make(map[string]any, len(factions))
	for _, f := range factions {
		token := uuid.NewString()
		digests[f] = sha256.Sum256([]byte(token))
		out[string(f)] = token
	}
	s.mu.Lock()
	s.byMatch[id] = digests
	s.mu.Unlock()
	return out
}

func (s *seatTokens) verify(id string, f data.Faction, token string) bool {
	s.mu.Lock()
	want, ok := s.byMatch[id][f]
	s.mu.Unlock()
	if !ok {
		return false
	}
	got := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}
