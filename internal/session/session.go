package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elbionredenica/simchess/internal/archive"
	"github.com/elbionredenica/simchess/internal/obslog"
	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

const (
	defaultQueueSize      = 64
	defaultArchiveTimeout = 10 * time.Second
)

var (
	ErrClosed     = errors.New("session closed")
	ErrNoResigner = errors.New("resign is not available")
)

// Resigner ends the game on the authority's side.
type Resigner interface {
	ResignGame(ctx context.Context, gameID string, color simdto.Color) (simdto.ResignResponse, error)
}

// Archiver receives every finished game once.
type Archiver interface {
	Archive(ctx context.Context, g archive.Game) error
}

type ArchiverFunc func(ctx context.Context, g archive.Game) error

func (f ArchiverFunc) Archive(ctx context.Context, g archive.Game) error { return f(ctx, g) }

type Options struct {
	Controller     reconcile.Config
	Presenter      reconcile.Presenter
	Authority      reconcile.Authority
	Resigner       Resigner
	Archivers      []Archiver
	ArchiveTimeout time.Duration
	QueueSize      int
	Logger         *zap.Logger
}

// Session owns one game. Every controller mutation, including clock and
// watchdog ticks, runs on the loop started by Run.
type Session struct {
	id   string
	ctrl *reconcile.Controller
	pres reconcile.Presenter
	log  *zap.Logger

	resigner       Resigner
	archivers      []Archiver
	archiveTimeout time.Duration
	startedAt      time.Time

	events    chan func()
	quit      chan struct{}
	stopping  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	runOnce   sync.Once
	wg        sync.WaitGroup
}

func New(gameID string, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Presenter == nil {
		opts.Presenter = reconcile.NopPresenter{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.ArchiveTimeout <= 0 {
		opts.ArchiveTimeout = defaultArchiveTimeout
	}

	s := &Session{
		id:             strings.TrimSpace(gameID),
		pres:           opts.Presenter,
		log:            obslog.ForGame(opts.Logger, strings.TrimSpace(gameID), ""),
		resigner:       opts.Resigner,
		archivers:      opts.Archivers,
		archiveTimeout: opts.ArchiveTimeout,
		startedAt:      time.Now(),
		events:         make(chan func(), opts.QueueSize),
		quit:           make(chan struct{}),
		stopping:       make(chan struct{}),
		done:           make(chan struct{}),
	}

	cfg := opts.Controller
	user := cfg.OnGameOver
	cfg.OnGameOver = func(o reconcile.Outcome) {
		if user != nil {
			user(o)
		}
		s.archive(o)
	}
	cfg.Dispatch = func(f func()) { s.Post(f) }
	if cfg.Offload == nil {
		cfg.Offload = s.goTracked
	}
	if cfg.Logger == nil {
		cfg.Logger = s.log
	}
	s.ctrl = reconcile.New(s.id, cfg, opts.Presenter, opts.Authority)
	return s
}

func (s *Session) ID() string { return s.id }

// Done closes once the loop has exited and pending archives finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close stops the loop. Timers are stopped without an outcome.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}

// Run processes events until ctx ends or Close is called. It may only run
// once; later calls return ErrClosed.
func (s *Session) Run(ctx context.Context) error {
	err := ErrClosed
	s.runOnce.Do(func() { err = s.loop(ctx) })
	return err
}

func (s *Session) loop(ctx context.Context) error {
	defer func() {
		close(s.stopping)
		s.ctrl.Shutdown()
		s.wg.Wait()
		close(s.done)
	}()
	for {
		select {
		case f := <-s.events:
			f()
		case <-s.quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Post queues f on the loop. It reports false once the session is closed.
func (s *Session) Post(f func()) bool {
	select {
	case <-s.stopping:
		return false
	case <-s.quit:
		return false
	default:
	}
	select {
	case s.events <- f:
		return true
	case <-s.stopping:
		return false
	case <-s.quit:
		return false
	}
}

// goTracked runs f on its own goroutine; the loop waits for it on exit.
// Only call it from the loop.
func (s *Session) goTracked(f func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		f()
	}()
}

// Deliver queues one inbound push event.
func (s *Session) Deliver(msg reconcile.Message) bool {
	if msg == nil {
		return false
	}
	return s.Post(func() { s.ctrl.Handle(msg) })
}

// Do runs fn on the loop and waits for its result.
func (s *Session) Do(ctx context.Context, fn func(*reconcile.Controller) error) error {
	res := make(chan error, 1)
	if !s.Post(func() { res <- fn(s.ctrl) }) {
		return ErrClosed
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// Resign asks the authority to end the game. The terminal state itself
// arrives later as a push event; on failure only an alert is shown.
func (s *Session) Resign(ctx context.Context) error {
	var color simdto.Color
	err := s.Do(ctx, func(c *reconcile.Controller) error {
		if c.Color() == "" {
			return reconcile.ErrNotJoined
		}
		if c.State() == reconcile.GameOver {
			return reconcile.ErrGameOver
		}
		color = c.Color()
		return nil
	})
	if err != nil {
		return err
	}
	if s.resigner == nil {
		return ErrNoResigner
	}

	resp, err := s.resigner.ResignGame(ctx, s.id, color)
	if err == nil && !resp.Success {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = "rejected by server"
		}
		err = errors.New(msg)
	}
	if err != nil {
		s.log.Warn("resign_failed", zap.String("color", string(color)), zap.Error(err))
		alert := fmt.Sprintf("Failed to resign: %v", err)
		s.Post(func() { s.pres.ShowAlert(alert) })
		return fmt.Errorf("resign: %w", err)
	}
	s.log.Info("resign_sent", zap.String("color", string(color)))
	return nil
}

// archive runs on the loop inside the game-over transition.
func (s *Session) archive(o reconcile.Outcome) {
	if len(s.archivers) == 0 {
		return
	}
	g := archive.Game{
		ID:         archive.NewID(),
		GameID:     s.id,
		Color:      s.ctrl.Color(),
		Result:     string(o.Kind),
		Winner:     o.Winner,
		Reason:     o.Reason,
		Turns:      o.Turns,
		Clocks:     s.ctrl.Clocks(),
		FinalFEN:   s.ctrl.ConfirmedFEN(),
		StartedAt:  s.startedAt,
		FinishedAt: time.Now(),
	}
	if l := s.ctrl.Ledger(); l != nil {
		g.Records = l.Records()
	}

	s.goTracked(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.archiveTimeout)
		defer cancel()
		for _, a := range s.archivers {
			if err := a.Archive(ctx, g); err != nil {
				s.log.Warn("archive_failed", zap.Error(err))
			}
		}
		s.log.Info("game_archived", zap.String("result", g.Result), zap.Int("turns", g.Turns))
	})
}
