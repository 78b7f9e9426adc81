package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/elbionredenica/simchess/internal/clock"
	"github.com/elbionredenica/simchess/internal/history"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

type fakePresenter struct {
	mu        sync.Mutex
	positions []string
	viewing   []bool
	histories []history.View
	statuses  []Status
	outcomes  []Outcome
	alerts    []string
	input     []bool
	countdown []int
	urgent    []bool
	clears    int
	clocks    map[simdto.Color]clock.State
	outcomeCh chan Outcome
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{clocks: map[simdto.Color]clock.State{}, outcomeCh: make(chan Outcome, 4)}
}

func (p *fakePresenter) ShowPosition(fen string, viewing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.positions = append(p.positions, fen)
	p.viewing = append(p.viewing, viewing)
}

func (p *fakePresenter) ShowClock(c simdto.Color, st clock.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clocks[c] = st
}

func (p *fakePresenter) ShowHistory(v history.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.histories = append(p.histories, v)
}

func (p *fakePresenter) ShowStatus(s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, s)
}

func (p *fakePresenter) ShowAbortCountdown(remaining int, urgent bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countdown = append(p.countdown, remaining)
	p.urgent = append(p.urgent, urgent)
}

func (p *fakePresenter) ClearAbortCountdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
}

func (p *fakePresenter) ShowOutcome(o Outcome) {
	p.mu.Lock()
	p.outcomes = append(p.outcomes, o)
	p.mu.Unlock()
	select {
	case p.outcomeCh <- o:
	default:
	}
}

func (p *fakePresenter) ShowAlert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, msg)
}

func (p *fakePresenter) SetInputEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = append(p.input, enabled)
}

func (p *fakePresenter) lastPosition() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.positions) == 0 {
		return ""
	}
	return p.positions[len(p.positions)-1]
}

func (p *fakePresenter) lastStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.statuses) == 0 {
		return Status{}
	}
	return p.statuses[len(p.statuses)-1]
}

type fakeAuthority struct {
	mu          sync.Mutex
	submits     []simdto.SubmitMoveRequest
	startClocks int
	timeouts    []simdto.Color
	submitErr   error
}

func (a *fakeAuthority) SubmitMove(_ context.Context, req simdto.SubmitMoveRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitErr != nil {
		return a.submitErr
	}
	a.submits = append(a.submits, req)
	return nil
}

func (a *fakeAuthority) StartClocks(context.Context, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startClocks++
	return nil
}

func (a *fakeAuthority) TimeOut(_ context.Context, _ string, c simdto.Color) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeouts = append(a.timeouts, c)
	return nil
}

// queue collects timer callbacks so a test can run them on its own goroutine.
type queue struct {
	mu    sync.Mutex
	funcs []func()
}

func (q *queue) push(f func()) {
	q.mu.Lock()
	q.funcs = append(q.funcs, f)
	q.mu.Unlock()
}

func (q *queue) waitAndDrain(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		q.mu.Lock()
		if len(q.funcs) >= n {
			pending := q.funcs
			q.funcs = nil
			q.mu.Unlock()
			for _, f := range pending {
				f()
			}
			return
		}
		q.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d timer callbacks", n)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

type harness struct {
	c    *Controller
	pres *fakePresenter
	auth *fakeAuthority
	fc   *clockwork.FakeClock
}

// newHarness builds a controller whose timer ticks are discarded unless
// dispatch is given.
func newHarness(t *testing.T, cfg Config, dispatch func(func())) *harness {
	t.Helper()
	fc := clockwork.NewFakeClock()
	if dispatch == nil {
		dispatch = func(func()) {}
	}
	cfg.Clock = fc
	cfg.Dispatch = dispatch
	h := &harness{pres: newFakePresenter(), auth: &fakeAuthority{}, fc: fc}
	h.c = New("g1", cfg, h.pres, h.auth)
	t.Cleanup(h.c.Shutdown)
	return h
}

func (h *harness) join(color simdto.Color, fen string) {
	h.c.Handle(Joined{Color: color, State: simdto.GameState{GameID: "g1", FEN: fen, TurnNumber: 1}})
	h.c.Handle(PlayerJoined{State: simdto.GameState{GameID: "g1", FEN: fen, TurnNumber: 1}})
}

func boolPtr(v bool) *bool { return &v }

func placement(fen string) string {
	for i := 0; i < len(fen); i++ {
		if fen[i] == ' ' {
			return fen[:i]
		}
	}
	return fen
}
