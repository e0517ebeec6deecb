package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/report"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// Entry is one accepted command in a match log.
type Entry struct {
	Record Record    `json:"record"`
	At     time.Time `json:"at"`
}

// MatchLog is everything needed to rebuild a match.
type MatchLog struct {
	Config  Config  `json:"config"`
	Entries []Entry `json:"entries"`
}

type options struct {
	logger  *zap.Logger
	catalog data.Catalog
	clock   func() time.Time
	bus     *report.EventBus
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the engine logger. The default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCatalog replaces the static game data.
func WithCatalog(c data.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithClock sets the time source used to stamp log entries.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithEventBus publishes every report entry to bus as it is recorded.
func WithEventBus(bus *report.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// Engine owns one match. It is not safe for concurrent use; the Manager
// serializes access per match.
type Engine struct {
	cfg      Config
	game     *Game
	history  []Entry
	opts     options
	thinking map[data.Faction]time.Duration
	lastAt   time.Time
}

// New starts a match awaiting EstablishPlayers.
func New(cfg Config, opts ...Option) (*Engine, error) {
	o := options{
		logger:  zap.NewNop(),
		catalog: data.DefaultCatalog(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return newEngine(cfg, o)
}

func newEngine(cfg Config, o options) (*Engine, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := newGame(cfg, o.catalog, o.logger)
	g.bus = o.bus
	return &Engine{
		cfg:      cfg,
		game:     g,
		opts:     o,
		thinking: make(map[data.Faction]time.Duration),
		lastAt:   o.clock(),
	}, nil
}

// Submit checks cmd and, if it is legal, applies it and advances the phase machine.
// A rejected command leaves the match untouched and returns a *RejectedError.
func (e *Engine) Submit(cmd Command) error {
	return e.submit(cmd, e.opts.clock())
}

func (e *Engine) submit(cmd Command, at time.Time) (err error) {
	g := e.game
	kind := cmd.Kind()
	if err := cmd.Check(g); err != nil {
		e.opts.logger.Debug("command rejected",
			zap.String("kind", string(kind)),
			zap.String("by", string(cmd.Initiator())),
			zap.String("phase", g.Phase.String()),
			zap.Error(err),
		)
		return err
	}
	if !g.admissible(cmd.Initiator(), kind) {
		return reject(kind, ReasonNotAdmissible, "%q may not issue %s during %s", cmd.Initiator(), kind, g.Phase)
	}
	rec, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			e.opts.logger.Error("command panicked, restoring match",
				zap.String("kind", string(kind)),
				zap.Any("panic", r),
			)
			if restored, rerr := replay(e.cfg, e.history, e.opts); rerr == nil {
				*e = *restored
			}
			err = fmt.Errorf("command %s failed and state was restored: %v", kind, r)
		}
	}()

	e.accrueThinkTime(g.Awaited(), at)
	from := g.Phase
	cmd.Apply(g)
	if !isInterrupt(kind) {
		g.advance()
	}
	e.history = append(e.history, Entry{Record: rec, At: at})

	if g.Phase != from {
		e.opts.logger.Debug("phase changed",
			zap.String("from", from.String()),
			zap.String("to", g.Phase.String()),
			zap.Int("turn", g.Turn),
		)
	}
	return nil
}

func (e *Engine) accrueThinkTime(awaited []data.Faction, at time.Time) {
	if elapsed := at.Sub(e.lastAt); elapsed > 0 {
		for _, f := range awaited {
			e.thinking[f] += elapsed
		}
	}
	e.lastAt = at
}

// replay rebuilds a match from entries without publishing events, then
// attaches the event bus from o.
func replay(cfg Config, entries []Entry, o options) (*Engine, error) {
	quiet := o
	quiet.bus = nil
	quiet.logger = o.logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	e, err := newEngine(cfg, quiet)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		e.lastAt = entries[0].At
	}
	for i, en := range entries {
		cmd, err := DecodeCommand(en.Record)
		if err != nil {
			return nil, &ReplayError{Index: i, Kind: en.Record.Kind, Err: err}
		}
		if err := e.submit(cmd, en.At); err != nil {
			return nil, &ReplayError{Index: i, Kind: en.Record.Kind, Err: err}
		}
	}
	e.opts = o
	e.game.bus = o.bus
	e.game.logger = o.logger
	return e, nil
}

// LoadFrom rebuilds a match by replaying entries. The first entry that fails
// is reported as a *ReplayError.
func LoadFrom(cfg Config, entries []Entry, opts ...Option) (*Engine, error) {
	o := options{
		logger:  zap.NewNop(),
		catalog: data.DefaultCatalog(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return replay(cfg, entries, o)
}

// UndoTo returns a new engine holding the state after the first n commands.
func (e *Engine) UndoTo(n int) (*Engine, error) {
	if n < 0 || n > len(e.history) {
		return nil, fmt.Errorf("%w: %d not in 0..%d", ErrUndoRange, n, len(e.history))
	}
	return replay(e.cfg, e.history[:n], e.opts)
}

// Config returns the normalized configuration.
func (e *Engine) Config() Config { return e.cfg }

// Game exposes the match state for inspection. Callers must not mutate it.
func (e *Engine) Game() *Game { return e.game }

// CurrentPhase returns the fine and main phase.
func (e *Engine) CurrentPhase() (rules.Phase, rules.MainPhase) {
	return e.game.Phase, e.game.MainPhase
}

// Awaited returns the factions the current phase is waiting on.
func (e *Engine) Awaited() []data.Faction { return e.game.Awaited() }

// CurrentActor returns the single faction the match waits on, or FactionNone
// when it waits on several players or on the host.
func (e *Engine) CurrentActor() data.Faction {
	if awaited := e.game.Awaited(); len(awaited) == 1 {
		return awaited[0]
	}
	return data.FactionNone
}

// Admissible lists the command kinds actor may issue now. FactionNone is the host.
func (e *Engine) Admissible(actor data.Faction) []Kind {
	return e.game.AdmissibleCommands(actor)
}

// History returns the accepted commands in order.
func (e *Engine) History() []Entry {
	out := make([]Entry, len(e.history))
	copy(out, e.history)
	return out
}

// Len returns the number of accepted commands.
func (e *Engine) Len() int { return len(e.history) }

// Log returns the persisted form of the match.
func (e *Engine) Log() MatchLog {
	return MatchLog{Config: e.cfg, Entries: e.History()}
}

// Reports returns the semantic log grouped by turn and main phase.
func (e *Engine) Reports() []*report.Report { return e.game.Reports.Reports }

// ThinkTime returns how long faction f has kept the match waiting.
func (e *Engine) ThinkTime(f data.Faction) time.Duration { return e.thinking[f] }

// Ended reports whether the match is over.
func (e *Engine) Ended() bool { return e.game.Ended() }

// Winners returns the winning factions once the match has ended.
func (e *Engine) Winners() []data.Faction { return e.game.Winners }
