package server

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PeerLimiter keeps one token bucket per peer host. A nil or disabled
// limiter allows everything.
type PeerLimiter struct {
	rps     float64
	burst   int
	enabled bool

	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

// NewPeerLimiter allows rps calls per second per peer with the given burst.
func NewPeerLimiter(rps float64, burst int, enabled bool) *PeerLimiter {
	return &PeerLimiter{
		rps:     rps,
		burst:   burst,
		enabled: enabled,
		clients: make(map[string]*rate.Limiter),
	}
}

func (l *PeerLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.clients[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.clients[host] = lim
	}
	return lim
}

// Allow reports whether host may make a call now.
func (l *PeerLimiter) Allow(host string) bool {
	if l == nil || !l.enabled {
		return true
	}
	return l.limiter(host).Allow()
}

// Sweep forgets peers whose bucket has refilled.
func (l *PeerLimiter) Sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for host, lim := range l.clients {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.clients, host)
		}
	}
}

// Peers returns the number of tracked peers.
func (l *PeerLimiter) Peers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Run sweeps every interval until ctx is done.
func (l *PeerLimiter) Run(ctx context.Context, interval time.Duration) error {
	if l == nil || !l.enabled {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			l.Sweep(now)
		}
	}
}
