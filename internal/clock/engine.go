package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/elbionredenica/simchess/pkg/simdto"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultTolerance is the divergence (in seconds) an authoritative value must
// exceed before it overwrites a locally ticking clock.
const DefaultTolerance = 2

// Dispatcher runs f on the owner's event loop. The default runs f inline.
type Dispatcher func(f func())

// State is the observable state of one side's clock.
type State struct {
	Seconds int
	Running bool
}

type side struct {
	remaining int
	running   bool
	gen       uint64
	stop      chan struct{}
	timedOut  bool
}

// Engine runs two independent one-second countdowns, one per color.
// Every tick carries the generation it was started with; a tick whose
// generation no longer matches is dropped, so nothing lands after Stop.
type Engine struct {
	clk       clockwork.Clock
	dispatch  Dispatcher
	tolerance int
	logger    *zap.Logger

	onChange  func(simdto.Color, State)
	onTimeout func(simdto.Color)

	mu    sync.Mutex
	sides [2]*side
}

type Option func(*Engine)

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clk = c }
}

func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) { e.dispatch = d }
}

func WithTolerance(seconds int) Option {
	return func(e *Engine) {
		if seconds >= 0 {
			e.tolerance = seconds
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// OnChange is called after every start, stop, tick or sync of a side.
func OnChange(fn func(simdto.Color, State)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// OnTimeout is called once per side when it reaches zero.
func OnTimeout(fn func(simdto.Color)) Option {
	return func(e *Engine) { e.onTimeout = fn }
}

func New(initialSeconds int, opts ...Option) *Engine {
	if initialSeconds < 0 {
		initialSeconds = 0
	}
	e := &Engine{
		clk:       clockwork.NewRealClock(),
		dispatch:  func(f func()) { f() },
		tolerance: DefaultTolerance,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for i := range e.sides {
		e.sides[i] = &side{remaining: initialSeconds}
	}
	return e
}

func index(c simdto.Color) int {
	if c == simdto.Black {
		return 1
	}
	return 0
}

// Start begins the countdown for c. Starting a running clock is a no-op.
func (e *Engine) Start(c simdto.Color) {
	if !c.Valid() {
		return
	}
	e.mu.Lock()
	s := e.sides[index(c)]
	if s.running || s.timedOut {
		e.mu.Unlock()
		return
	}
	s.running = true
	s.gen++
	s.stop = make(chan struct{})
	gen, stop := s.gen, s.stop
	ticker := e.clk.NewTicker(time.Second)
	st := State{Seconds: s.remaining, Running: true}
	e.mu.Unlock()

	go e.run(c, gen, ticker, stop)
	e.logger.Debug("clock_start", zap.String("color", string(c)), zap.Int("seconds", st.Seconds))
	e.notify(c, st)
}

func (e *Engine) run(c simdto.Color, gen uint64, t clockwork.Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.Chan():
			e.dispatch(func() { e.fire(c, gen) })
		}
	}
}

func (e *Engine) fire(c simdto.Color, gen uint64) {
	e.mu.Lock()
	s := e.sides[index(c)]
	if !s.running || s.gen != gen {
		e.mu.Unlock()
		return
	}
	st, timedOut := e.tickLocked(s)
	e.mu.Unlock()
	e.after(c, st, timedOut)
}

// Stop cancels the countdown for c. Stopping a stopped clock is a no-op.
func (e *Engine) Stop(c simdto.Color) {
	if !c.Valid() {
		return
	}
	e.mu.Lock()
	s := e.sides[index(c)]
	if !s.running {
		e.mu.Unlock()
		return
	}
	stopLocked(s)
	st := State{Seconds: s.remaining}
	e.mu.Unlock()
	e.notify(c, st)
}

func (e *Engine) StopAll() {
	e.Stop(simdto.White)
	e.Stop(simdto.Black)
}

func stopLocked(s *side) {
	if !s.running {
		return
	}
	s.running = false
	s.gen++
	close(s.stop)
	s.stop = nil
}

// Tick removes one second from c, floored at zero. Reaching zero stops the
// side and raises the timeout exactly once.
func (e *Engine) Tick(c simdto.Color) {
	if !c.Valid() {
		return
	}
	e.mu.Lock()
	st, timedOut := e.tickLocked(e.sides[index(c)])
	e.mu.Unlock()
	e.after(c, st, timedOut)
}

func (e *Engine) tickLocked(s *side) (State, bool) {
	if s.remaining > 0 {
		s.remaining--
	}
	fireTimeout := false
	if s.remaining == 0 {
		stopLocked(s)
		if !s.timedOut {
			s.timedOut = true
			fireTimeout = true
		}
	}
	return State{Seconds: s.remaining, Running: s.running}, fireTimeout
}

func (e *Engine) after(c simdto.Color, st State, timedOut bool) {
	e.notify(c, st)
	if timedOut {
		e.logger.Info("clock_timeout", zap.String("color", string(c)))
		if e.onTimeout != nil {
			e.onTimeout(c)
		}
	}
}

// SyncFromAuthority overwrites each side whose local value diverges from the
// authoritative one by more than the tolerance.
func (e *Engine) SyncFromAuthority(white, black int) (whiteChanged, blackChanged bool) {
	whiteChanged = e.SyncSide(simdto.White, white)
	blackChanged = e.SyncSide(simdto.Black, black)
	return whiteChanged, blackChanged
}

// SyncSide applies the tolerance rule to a single side.
func (e *Engine) SyncSide(c simdto.Color, seconds int) bool {
	if !c.Valid() {
		return false
	}
	if seconds < 0 {
		seconds = 0
	}
	e.mu.Lock()
	s := e.sides[index(c)]
	diff := s.remaining - seconds
	if diff < 0 {
		diff = -diff
	}
	if diff <= e.tolerance {
		e.mu.Unlock()
		return false
	}
	prev := s.remaining
	s.remaining = seconds
	st := State{Seconds: s.remaining, Running: s.running}
	e.mu.Unlock()

	e.logger.Info("clock_sync",
		zap.String("color", string(c)),
		zap.Int("local", prev),
		zap.Int("authority", seconds),
	)
	e.notify(c, st)
	return true
}

// Set forces both sides to the given values and clears any timeout latch.
// Running clocks keep running.
func (e *Engine) Set(white, black int) {
	for _, c := range simdto.Colors {
		v := white
		if c == simdto.Black {
			v = black
		}
		if v < 0 {
			v = 0
		}
		e.mu.Lock()
		s := e.sides[index(c)]
		s.remaining = v
		s.timedOut = false
		st := State{Seconds: s.remaining, Running: s.running}
		e.mu.Unlock()
		e.notify(c, st)
	}
}

func (e *Engine) State(c simdto.Color) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.sides[index(c)]
	return State{Seconds: s.remaining, Running: s.running}
}

func (e *Engine) Remaining(c simdto.Color) int { return e.State(c).Seconds }

func (e *Engine) Running(c simdto.Color) bool { return e.State(c).Running }

// Snapshot returns both remaining values in wire form.
func (e *Engine) Snapshot() simdto.ClockSeconds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return simdto.ClockSeconds{White: e.sides[0].remaining, Black: e.sides[1].remaining}
}

func (e *Engine) notify(c simdto.Color, st State) {
	if e.onChange != nil {
		e.onChange(c, st)
	}
}

// Format renders seconds as m:ss. Negative input renders as 0:00.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// LowTime reports whether a clock should be styled as running out.
func LowTime(seconds int) bool {
	return seconds > 0 && seconds <= 60
}
