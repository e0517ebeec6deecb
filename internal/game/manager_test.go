package game

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

type memoryPersister struct {
	mu    sync.Mutex
	saved map[string]MatchLog
	fail  error
}

func (p *memoryPersister) SaveMatch(_ context.Context, id string, log MatchLog) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	if p.saved == nil {
		p.saved = make(map[string]MatchLog)
	}
	p.saved[id] = log
	return nil
}

func (p *memoryPersister) get(id string) (MatchLog, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	log, ok := p.saved[id]
	return log, ok
}

func establish() *EstablishPlayers {
	return &EstablishPlayers{Names: []string{"a", "b", "c", "d"}, Factions: fourFactions}
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &memoryPersister{}
	m := NewManager(zaptest.NewLogger(t), store, WithClock(fixedClock()))

	id, err := m.Create(ctx, testConfig(42, 4))
	require.NoError(t, err)
	assert.Equal(t, []string{id}, m.List())

	view, err := m.Submit(ctx, id, establish())
	require.NoError(t, err)
	current, err := m.View(id)
	require.NoError(t, err)
	assert.Equal(t, current, view)
	assert.Equal(t, rules.PhaseSelectingTraitors, view.Phase)
	assert.Equal(t, 1, view.Commands)
	assert.Len(t, view.Awaited, 3)
	assert.Empty(t, view.Admissible[data.FactionNone])
	assert.Contains(t, view.Admissible[data.FactionAtreides], KindTraitorSelected)

	saved, ok := store.get(id)
	require.True(t, ok)
	assert.Len(t, saved.Entries, 1)

	restored := NewManager(zaptest.NewLogger(t), nil)
	require.NoError(t, restored.Restore(id, saved))
	again, err := restored.View(id)
	require.NoError(t, err)
	assert.Equal(t, view.Checksum, again.Checksum)

	require.NoError(t, m.Undo(ctx, id, 0))
	view, err = m.View(id)
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseAwaitingPlayers, view.Phase)
	assert.Zero(t, view.Commands)

	require.NoError(t, m.Remove(id))
	assert.Empty(t, m.List())
	_, err = m.View(id)
	assert.True(t, errors.Is(err, ErrMatchNotFound))
}

func TestManagerRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, nil)

	_, err := m.Create(ctx, Config{PlayerCount: 1})
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = m.Submit(ctx, "missing", establish())
	assert.True(t, errors.Is(err, ErrMatchNotFound))

	id, err := m.Create(ctx, testConfig(1, 4))
	require.NoError(t, err)
	_, err = m.Submit(ctx, id, &EndPhase{})
	assert.Equal(t, ReasonWrongPhase, ReasonOf(err))
	assert.True(t, errors.Is(m.Remove("missing"), ErrMatchNotFound))
}

func TestManagerReportsPersistFailure(t *testing.T) {
	ctx := context.Background()
	store := &memoryPersister{}
	m := NewManager(zaptest.NewLogger(t), store)
	id, err := m.Create(ctx, testConfig(1, 4))
	require.NoError(t, err)

	store.fail = errors.New("disk full")
	applied, err := m.Submit(ctx, id, establish())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, applied.Commands)

	view, err := m.View(id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Commands, "the command stays applied in memory")
}

func TestManagerNotifications(t *testing.T) {
	ctx := context.Background()
	m := NewManager(zaptest.NewLogger(t), nil)

	var got []Notification
	m.SetNotificationHandler(func(n Notification) {
		got = append(got, n)
	})

	id, err := m.Create(ctx, testConfig(1, 4))
	require.NoError(t, err)
	_, err = m.Submit(ctx, id, establish())
	require.NoError(t, err)

	require.Len(t, got, 2, "handlers run before Submit returns")
	assert.Equal(t, NotifyCommandApplied, got[0].Type)
	assert.Equal(t, NotifyPhaseChanged, got[1].Type)
}

func TestManagerNotifiesInCommandOrder(t *testing.T) {
	ctx := context.Background()
	m := NewManager(zaptest.NewLogger(t), nil)

	var mu sync.Mutex
	var indices []int
	m.SetNotificationHandler(func(n Notification) {
		if n.Type != NotifyCommandApplied {
			return
		}
		mu.Lock()
		indices = append(indices, n.Data["index"].(int))
		mu.Unlock()
	})

	id, err := m.Create(ctx, testConfig(1, 4))
	require.NoError(t, err)
	_, err = m.Submit(ctx, id, establish())
	require.NoError(t, err)

	mt, err := m.lookup(id)
	require.NoError(t, err)
	var picks []*TraitorSelected
	for _, f := range fourFactions {
		if options := mt.engine.game.Player(f).TraitorOptions; len(options) > 0 {
			picks = append(picks, &TraitorSelected{By: By{f}, Leader: options[0]})
		}
	}

	var wg sync.WaitGroup
	for _, pick := range picks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Submit(ctx, id, pick)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, indices, 1+len(picks))
	for i, idx := range indices {
		assert.Equal(t, i, idx)
	}
}

func TestManagerSerializesConcurrentSubmits(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, nil)
	id, err := m.Create(ctx, testConfig(1, 4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Submit(ctx, id, establish()); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)

	log, err := m.Log(id)
	require.NoError(t, err)
	assert.Len(t, log.Entries, 1)
}
