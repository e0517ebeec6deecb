package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Random is the game's single seeded generator. Every random draw goes
// through it so a replay consumes the same sequence.
type Random struct {
	pcg *rand.PCG
	r   *rand.Rand
}

func newRandom(seed int64) *Random {
	s := uint64(seed)
	pcg := rand.NewPCG(s, s*0x9e3779b97f4a7c15^0xda3e39cb94b95bdb)
	return &Random{pcg: pcg, r: rand.New(pcg)}
}

// Between returns a uniform value in [lo, hi].
func (r *Random) Between(lo, hi int) int {
	return lo + r.r.IntN(hi-lo+1)
}

// State returns the generator's internal state for checksumming.
func (r *Random) State() []byte {
	b, err := r.pcg.MarshalBinary()
	if err != nil {
		return nil
	}
	return b
}

func shuffle[T any](r *Random, s []T) {
	r.r.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// NewSeed returns a seed from the operating system's entropy source.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read seed entropy: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}
