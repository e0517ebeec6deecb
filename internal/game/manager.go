package game

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// Notification is pushed to subscribers after every accepted command.
type Notification struct {
	Type      string
	MatchID   string
	Timestamp time.Time
	Data      map[string]any
}

// Notification types.
const (
	NotifyCommandApplied = "COMMAND_APPLIED"
	NotifyPhaseChanged   = "PHASE_CHANGED"
	NotifyGameEnded      = "GAME_ENDED"
)

// NotificationHandler receives notifications in command order. It runs on
// the submitting goroutine while the match is locked, so it must not block or
// call back into the manager.
type NotificationHandler func(Notification)

// Persister stores match logs. Implementations live in the storage package.
type Persister interface {
	SaveMatch(ctx context.Context, id string, log MatchLog) error
}

type match struct {
	mu     sync.Mutex
	engine *Engine
}

// Manager hosts many matches, serializing commands per match.
type Manager struct {
	logger    *zap.Logger
	persister Persister
	opts      []Option

	mu      sync.RWMutex
	matches map[string]*match
	handler NotificationHandler
}

// NewManager creates a manager. persister may be nil.
func NewManager(logger *zap.Logger, persister Persister, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:    logger,
		persister: persister,
		opts:      append([]Option{WithLogger(logger)}, opts...),
		matches:   make(map[string]*match),
	}
}

// SetNotificationHandler installs the handler for match notifications.
func (m *Manager) SetNotificationHandler(h NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

func (m *Manager) emit(n Notification) {
	m.mu.RLock()
	h := m.handler
	m.mu.RUnlock()
	if h != nil {
		h(n)
	}
}

// Create starts a new match and returns its id.
func (m *Manager) Create(ctx context.Context, cfg Config) (string, error) {
	e, err := New(cfg, m.opts...)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.mu.Lock()
	m.matches[id] = &match{engine: e}
	m.mu.Unlock()
	m.logger.Info("match created",
		zap.String("match_id", id),
		zap.Int64("seed", e.Config().Seed),
		zap.Int("players", e.Config().PlayerCount),
	)
	return id, m.save(ctx, id, e)
}

// Restore loads a persisted log under id, replacing any match with that id.
func (m *Manager) Restore(id string, log MatchLog) error {
	e, err := LoadFrom(log.Config, log.Entries, m.opts...)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.matches[id] = &match{engine: e}
	m.mu.Unlock()
	return nil
}

func (m *Manager) lookup(id string) (*match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return mt, nil
}

// Submit applies cmd to match id and persists the log on success. The
// returned view is taken right after cmd was applied, before any other
// command on the match. A persist failure still returns the view since the
// command stays applied.
func (m *Manager) Submit(ctx context.Context, id string, cmd Command) (View, error) {
	mt, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()

	from := mt.engine.game.Phase
	if err := mt.engine.Submit(cmd); err != nil {
		return View{}, err
	}
	e := mt.engine
	now := time.Now()
	m.emit(Notification{
		Type:      NotifyCommandApplied,
		MatchID:   id,
		Timestamp: now,
		Data:      map[string]any{"kind": string(cmd.Kind()), "by": string(cmd.Initiator()), "index": e.Len() - 1},
	})
	if phase := e.game.Phase; phase != from {
		m.emit(Notification{
			Type:      NotifyPhaseChanged,
			MatchID:   id,
			Timestamp: now,
			Data:      map[string]any{"from": from.String(), "to": phase.String(), "turn": e.game.Turn},
		})
	}
	if e.Ended() {
		m.emit(Notification{
			Type:      NotifyGameEnded,
			MatchID:   id,
			Timestamp: now,
			Data:      map[string]any{"winners": joinStrings(e.Winners())},
		})
		m.logger.Info("match ended", zap.String("match_id", id), zap.Strings("winners", factionStrings(e.Winners())))
	}
	return snapshot(id, e), m.save(ctx, id, e)
}

// Undo rewinds match id to its first n commands.
func (m *Manager) Undo(ctx context.Context, id string, n int) error {
	mt, err := m.lookup(id)
	if err != nil {
		return err
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	e, err := mt.engine.UndoTo(n)
	if err != nil {
		return err
	}
	mt.engine = e
	m.logger.Info("match rewound", zap.String("match_id", id), zap.Int("commands", n))
	return m.save(ctx, id, e)
}

// View is a read-only summary of a match.
type View struct {
	MatchID    string
	Turn       int
	Phase      rules.Phase
	MainPhase  rules.MainPhase
	Awaited    []data.Faction
	Admissible map[data.Faction][]Kind
	Commands   int
	Checksum   string
	Winners    []data.Faction
	Reports    []*report.Report
}

// View snapshots match id. Admissible includes the host under FactionNone.
func (m *Manager) View(id string) (View, error) {
	mt, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return snapshot(id, mt.engine), nil
}

func snapshot(id string, e *Engine) View {
	g := e.game
	adm := map[data.Faction][]Kind{data.FactionNone: e.Admissible(data.FactionNone)}
	for _, p := range g.Players {
		adm[p.Faction] = e.Admissible(p.Faction)
	}
	return View{
		MatchID:    id,
		Turn:       g.Turn,
		Phase:      g.Phase,
		MainPhase:  g.MainPhase,
		Awaited:    e.Awaited(),
		Admissible: adm,
		Commands:   e.Len(),
		Checksum:   e.Checksum(),
		Winners:    slices.Clone(g.Winners),
		Reports:    slices.Clone(g.Reports.Reports),
	}
}

// Log returns the persisted form of match id.
func (m *Manager) Log(id string) (MatchLog, error) {
	mt, err := m.lookup(id)
	if err != nil {
		return MatchLog{}, err
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.engine.Log(), nil
}

// Remove forgets match id.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[id]; !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	delete(m.matches, id)
	return nil
}

// List returns the ids of hosted matches, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.matches))
	for id := range m.matches {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *Manager) save(ctx context.Context, id string, e *Engine) error {
	if m.persister == nil {
		return nil
	}
	if err := m.persister.SaveMatch(ctx, id, e.Log()); err != nil {
		m.logger.Warn("failed to persist match", zap.String("match_id", id), zap.Error(err))
		return fmt.Errorf("persist match %s: %w", id, err)
	}
	return nil
}

func factionStrings(fs []data.Faction) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
