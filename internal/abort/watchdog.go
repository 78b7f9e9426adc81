package abort

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Phase is the watchdog lifecycle: Idle -> Armed -> {Cancelled | Fired}.
type Phase int

const (
	Idle Phase = iota
	Armed
	Cancelled
	Fired
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Cancelled:
		return "cancelled"
	case Fired:
		return "fired"
	default:
		return "unknown"
	}
}

// Level is the countdown UI the watchdog currently asks for.
type Level int

const (
	LevelNone Level = iota
	LevelWarning
	LevelUrgent
)

type Config struct {
	AbortAfter  time.Duration
	WarnAfter   time.Duration
	UrgentUnder time.Duration
}

func DefaultConfig() Config {
	return Config{
		AbortAfter:  30 * time.Second,
		WarnAfter:   15 * time.Second,
		UrgentUnder: 10 * time.Second,
	}
}

// Hooks receive watchdog transitions. Countdown hooks get whole seconds left.
type Hooks struct {
	OnWarning func(remaining int)
	OnUrgent  func(remaining int)
	OnClear   func()
	OnFired   func()
}

// Status is the result of one evaluation.
type Status struct {
	Phase     Phase
	Level     Level
	Elapsed   int
	Remaining int
}

// Watchdog aborts a game nobody has moved in. It keys off a single global
// first-move flag, not per side.
type Watchdog struct {
	clk      clockwork.Clock
	dispatch func(func())
	cfg      Config
	hooks    Hooks
	logger   *zap.Logger

	mu        sync.Mutex
	phase     Phase
	start     time.Time
	firstMove bool
	gen       uint64
	stop      chan struct{}
}

type Option func(*Watchdog)

func WithClock(c clockwork.Clock) Option {
	return func(w *Watchdog) { w.clk = c }
}

func WithDispatcher(d func(func())) Option {
	return func(w *Watchdog) { w.dispatch = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Watchdog) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(cfg Config, hooks Hooks, opts ...Option) *Watchdog {
	if cfg.AbortAfter <= 0 {
		cfg = DefaultConfig()
	}
	w := &Watchdog{
		clk:      clockwork.NewRealClock(),
		dispatch: func(f func()) { f() },
		cfg:      cfg,
		hooks:    hooks,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Arm starts the grace window. It only succeeds from Idle and only while no
// move has been made.
func (w *Watchdog) Arm() bool {
	w.mu.Lock()
	if w.phase != Idle || w.firstMove {
		w.mu.Unlock()
		return false
	}
	w.phase = Armed
	w.start = w.clk.Now()
	w.gen++
	w.stop = make(chan struct{})
	gen, stop := w.gen, w.stop
	ticker := w.clk.NewTicker(time.Second)
	w.mu.Unlock()

	w.logger.Debug("abort_armed", zap.Duration("window", w.cfg.AbortAfter))
	go w.run(gen, ticker, stop)
	return true
}

func (w *Watchdog) run(gen uint64, t clockwork.Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.Chan():
			w.dispatch(func() { w.tick(gen) })
		}
	}
}

func (w *Watchdog) tick(gen uint64) {
	w.mu.Lock()
	stale := w.gen != gen
	w.mu.Unlock()
	if stale {
		return
	}
	w.Check()
}

// MarkFirstMove records that somebody moved. An armed watchdog cancels at once.
func (w *Watchdog) MarkFirstMove() {
	w.mu.Lock()
	w.firstMove = true
	if w.phase != Armed {
		w.mu.Unlock()
		return
	}
	w.finishLocked(Cancelled)
	w.mu.Unlock()

	w.logger.Debug("abort_cancelled")
	if w.hooks.OnClear != nil {
		w.hooks.OnClear()
	}
}

// Cancel disarms the watchdog without firing, e.g. when the game ended some other way.
func (w *Watchdog) Cancel() {
	w.mu.Lock()
	if w.phase != Armed {
		w.mu.Unlock()
		return
	}
	w.finishLocked(Cancelled)
	w.mu.Unlock()
	if w.hooks.OnClear != nil {
		w.hooks.OnClear()
	}
}

// Check evaluates the window at the current clock time.
func (w *Watchdog) Check() Status {
	w.mu.Lock()
	if w.phase != Armed {
		st := Status{Phase: w.phase}
		w.mu.Unlock()
		return st
	}
	if w.firstMove {
		w.finishLocked(Cancelled)
		w.mu.Unlock()
		if w.hooks.OnClear != nil {
			w.hooks.OnClear()
		}
		return Status{Phase: Cancelled}
	}

	elapsed := int(w.clk.Since(w.start) / time.Second)
	remaining := int(w.cfg.AbortAfter/time.Second) - elapsed
	st := Status{Phase: Armed, Elapsed: elapsed, Remaining: remaining}

	switch {
	case remaining <= 0:
		w.finishLocked(Fired)
		w.mu.Unlock()
		st.Phase, st.Remaining = Fired, 0
		w.logger.Info("abort_fired", zap.Int("elapsed", elapsed))
		if w.hooks.OnClear != nil {
			w.hooks.OnClear()
		}
		if w.hooks.OnFired != nil {
			w.hooks.OnFired()
		}
		return st
	case remaining <= int(w.cfg.UrgentUnder/time.Second):
		w.mu.Unlock()
		st.Level = LevelUrgent
		if w.hooks.OnUrgent != nil {
			w.hooks.OnUrgent(remaining)
		}
	case elapsed >= int(w.cfg.WarnAfter/time.Second):
		w.mu.Unlock()
		st.Level = LevelWarning
		if w.hooks.OnWarning != nil {
			w.hooks.OnWarning(remaining)
		}
	default:
		w.mu.Unlock()
	}
	return st
}

func (w *Watchdog) finishLocked(p Phase) {
	w.phase = p
	w.gen++
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
}

func (w *Watchdog) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

func (w *Watchdog) FirstMoveMade() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstMove
}
