package clock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/elbionredenica/simchess/pkg/simdto"
	"github.com/jonboulle/clockwork"
)

type recorder struct {
	mu       sync.Mutex
	timeouts []simdto.Color
	changes  chan State
}

func newRecorder() *recorder { return &recorder{changes: make(chan State, 64)} }

func (r *recorder) opts() []Option {
	return []Option{
		OnChange(func(_ simdto.Color, st State) { r.changes <- st }),
		OnTimeout(func(c simdto.Color) {
			r.mu.Lock()
			r.timeouts = append(r.timeouts, c)
			r.mu.Unlock()
		}),
	}
}

func (r *recorder) timeoutCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timeouts)
}

func waitState(t *testing.T, ch <-chan State, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-ch:
			if st.Seconds == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %d seconds", want)
		}
	}
}

func TestTickFloorsAtZeroAndTimesOutOnce(t *testing.T) {
	rec := newRecorder()
	e := New(3, rec.opts()...)

	prev := e.Remaining(simdto.White)
	for i := 0; i < 10; i++ {
		e.Tick(simdto.White)
		cur := e.Remaining(simdto.White)
		if cur > prev || cur < 0 {
			t.Fatalf("tick %d: remaining went from %d to %d", i, prev, cur)
		}
		prev = cur
	}
	if prev != 0 {
		t.Fatalf("expected 0, got %d", prev)
	}
	if n := rec.timeoutCount(); n != 1 {
		t.Fatalf("expected exactly one timeout, got %d", n)
	}
	if e.Running(simdto.White) {
		t.Fatalf("expired clock must be stopped")
	}
	if e.Remaining(simdto.Black) != 3 {
		t.Fatalf("black must be untouched")
	}
}

func TestStartAfterTimeoutIsNoop(t *testing.T) {
	e := New(1)
	e.Tick(simdto.Black)
	e.Start(simdto.Black)
	if e.Running(simdto.Black) {
		t.Fatalf("expired side restarted")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := newRecorder()
	e := New(600, append(rec.opts(), WithClock(fc))...)

	e.Start(simdto.White)
	e.Start(simdto.White)
	waitState(t, rec.changes, 600)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("ticker not registered: %v", err)
	}
	fc.Advance(time.Second)
	waitState(t, rec.changes, 599)

	e.Stop(simdto.White)
	e.Stop(simdto.White)
	if e.Running(simdto.White) {
		t.Fatalf("still running after stop")
	}
	if got := e.Remaining(simdto.White); got != 599 {
		t.Fatalf("remaining = %d, want 599", got)
	}
}

func TestBothSidesRunIndependently(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := newRecorder()
	e := New(10, append(rec.opts(), WithClock(fc))...)

	e.Start(simdto.White)
	e.Start(simdto.Black)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fc.BlockUntilContext(ctx, 2); err != nil {
		t.Fatalf("tickers not registered: %v", err)
	}

	e.Stop(simdto.Black)
	fc.Advance(time.Second)
	waitState(t, rec.changes, 9)

	if e.Remaining(simdto.Black) != 10 {
		t.Fatalf("stopped side ticked: %d", e.Remaining(simdto.Black))
	}
}

func TestStaleTickAfterStopIsDropped(t *testing.T) {
	fc := clockwork.NewFakeClock()
	var (
		mu     sync.Mutex
		queued []func()
	)
	e := New(600,
		WithClock(fc),
		WithDispatcher(func(f func()) {
			mu.Lock()
			queued = append(queued, f)
			mu.Unlock()
		}),
	)

	e.Start(simdto.White)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("ticker not registered: %v", err)
	}
	fc.Advance(time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(queued)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("tick never dispatched")
		}
		time.Sleep(5 * time.Millisecond)
	}

	e.Stop(simdto.White)
	mu.Lock()
	pending := queued
	mu.Unlock()
	for _, f := range pending {
		f()
	}
	if got := e.Remaining(simdto.White); got != 600 {
		t.Fatalf("late tick applied after stop: %d", got)
	}
}

func TestRestartDropsPreviousGeneration(t *testing.T) {
	var queued []func()
	fc := clockwork.NewFakeClock()
	e := New(100, WithClock(fc), WithDispatcher(func(f func()) { queued = append(queued, f) }))

	e.Start(simdto.Black)
	e.mu.Lock()
	oldGen := e.sides[1].gen
	e.mu.Unlock()
	e.Stop(simdto.Black)
	e.Start(simdto.Black)

	e.fire(simdto.Black, oldGen)
	if got := e.Remaining(simdto.Black); got != 100 {
		t.Fatalf("tick from previous generation applied: %d", got)
	}
	e.StopAll()
}

func TestSyncFromAuthorityTolerance(t *testing.T) {
	e := New(600)

	w, b := e.SyncFromAuthority(598, 602)
	if w || b {
		t.Fatalf("divergence within tolerance must not sync")
	}
	if e.Remaining(simdto.White) != 600 || e.Remaining(simdto.Black) != 600 {
		t.Fatalf("values changed within tolerance")
	}

	w, b = e.SyncFromAuthority(600, 570)
	if w || !b {
		t.Fatalf("expected only black to sync, got white=%v black=%v", w, b)
	}
	if e.Remaining(simdto.Black) != 570 {
		t.Fatalf("black = %d, want 570", e.Remaining(simdto.Black))
	}

	if !e.SyncSide(simdto.White, -5) {
		t.Fatalf("expected negative authority value to sync")
	}
	if e.Remaining(simdto.White) != 0 {
		t.Fatalf("negative authority value must floor at 0")
	}
}

func TestSetClearsTimeoutLatch(t *testing.T) {
	rec := newRecorder()
	e := New(1, rec.opts()...)
	e.Tick(simdto.White)
	e.Set(5, 5)
	for i := 0; i < 5; i++ {
		e.Tick(simdto.White)
	}
	if n := rec.timeoutCount(); n != 2 {
		t.Fatalf("expected a fresh timeout after Set, got %d", n)
	}
}

func TestFormat(t *testing.T) {
	cases := map[int]string{
		600: "10:00",
		599: "9:59",
		65:  "1:05",
		9:   "0:09",
		0:   "0:00",
		-3:  "0:00",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Fatalf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestLowTime(t *testing.T) {
	if LowTime(0) || !LowTime(1) || !LowTime(60) || LowTime(61) {
		t.Fatalf("unexpected low-time thresholds")
	}
}
