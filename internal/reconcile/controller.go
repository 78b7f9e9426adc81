package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/elbionredenica/simchess/internal/abort"
	"github.com/elbionredenica/simchess/internal/clock"
	"github.com/elbionredenica/simchess/internal/history"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

const (
	defaultThreshold  = 3
	mutualReason      = "Mutual Illegality"
	abortedReason     = "no moves made"
	timeReason        = "time"
	resignationReason = "resignation"
)

// Config tunes a Controller. Zero values fall back to DefaultConfig.
type Config struct {
	TimeControl int
	Tolerance   int
	Abort       abort.Config
	Promotion   PromotionPolicy
	SendTimeout time.Duration

	Clock    clockwork.Clock
	Dispatch func(func())
	Logger   *zap.Logger

	// Offload runs move submissions off the caller's goroutine; the result
	// comes back through Dispatch. Nil sends inline.
	Offload func(func())

	// OnGameOver runs once, after the outcome is shown.
	OnGameOver func(Outcome)
}

func DefaultConfig() Config {
	return Config{
		TimeControl: 600,
		Tolerance:   clock.DefaultTolerance,
		Abort:       abort.DefaultConfig(),
		Promotion:   AutoQueen,
		SendTimeout: 5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TimeControl <= 0 {
		c.TimeControl = d.TimeControl
	}
	if c.Tolerance < 0 {
		c.Tolerance = d.Tolerance
	}
	if c.Abort.AbortAfter <= 0 {
		c.Abort = d.Abort
	}
	if c.Promotion == nil {
		c.Promotion = d.Promotion
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = d.SendTimeout
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Dispatch == nil {
		c.Dispatch = func(f func()) { f() }
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Controller is the per-game reconciliation state machine. All methods must
// be called from one goroutine (the session loop); timer callbacks reach it
// through cfg.Dispatch.
type Controller struct {
	cfg  Config
	log  *zap.Logger
	pres Presenter
	auth Authority

	clocks   *clock.Engine
	watchdog *abort.Watchdog
	ledger   *history.Ledger

	gameID string
	color  simdto.Color
	state  State

	intent     *Intent
	pendingFEN string
	input      bool

	turn      int
	attempt   int
	ready     [2]bool
	submitSeq uint64
	status    Status
	outcome   *Outcome
}

func New(gameID string, cfg Config, pres Presenter, auth Authority) *Controller {
	cfg = cfg.withDefaults()
	if pres == nil {
		pres = NopPresenter{}
	}
	c := &Controller{
		cfg:    cfg,
		log:    cfg.Logger.With(zap.String("game_id", gameID)),
		pres:   pres,
		auth:   auth,
		gameID: gameID,
		state:  Idle,
	}
	c.status = Status{GameID: gameID, Threshold: defaultThreshold}
	c.clocks = clock.New(cfg.TimeControl,
		clock.WithClock(cfg.Clock),
		clock.WithDispatcher(cfg.Dispatch),
		clock.WithTolerance(cfg.Tolerance),
		clock.WithLogger(c.log),
		clock.OnChange(func(side simdto.Color, st clock.State) { c.pres.ShowClock(side, st) }),
		clock.OnTimeout(c.HandleTimeout),
	)
	c.watchdog = abort.New(cfg.Abort, abort.Hooks{
		OnWarning: func(r int) { c.pres.ShowAbortCountdown(r, false) },
		OnUrgent:  func(r int) { c.pres.ShowAbortCountdown(r, true) },
		OnClear:   func() { c.pres.ClearAbortCountdown() },
		OnFired:   c.handleAbort,
	}, abort.WithClock(cfg.Clock), abort.WithDispatcher(cfg.Dispatch), abort.WithLogger(c.log))
	return c
}

func (c *Controller) GameID() string              { return c.gameID }
func (c *Controller) Color() simdto.Color         { return c.color }
func (c *Controller) State() State                { return c.state }
func (c *Controller) InputEnabled() bool          { return c.input }
func (c *Controller) Ledger() *history.Ledger     { return c.ledger }
func (c *Controller) Clocks() simdto.ClockSeconds { return c.clocks.Snapshot() }
func (c *Controller) Watchdog() abort.Phase       { return c.watchdog.Phase() }

func (c *Controller) Intent() (Intent, bool) {
	if c.intent == nil {
		return Intent{}, false
	}
	return *c.intent, true
}

func (c *Controller) Outcome() (Outcome, bool) {
	if c.outcome == nil {
		return Outcome{}, false
	}
	return *c.outcome, true
}

func (c *Controller) Status() Status {
	s := c.status
	s.State = c.state
	s.Color = c.color
	if c.intent != nil {
		s.Intent = c.intent.UCI()
	}
	return s
}

// ConfirmedFEN is the last position the authority committed.
func (c *Controller) ConfirmedFEN() string {
	if c.ledger == nil {
		return ""
	}
	return c.ledger.ConfirmedFEN()
}

// DisplayedFEN is what the board currently shows: a history record while
// viewing, otherwise the optimistic or confirmed position.
func (c *Controller) DisplayedFEN() string {
	if c.ledger == nil {
		return ""
	}
	if c.ledger.Viewing() {
		return c.ledger.View().FEN
	}
	return c.liveFEN()
}

func (c *Controller) liveFEN() string {
	if c.pendingFEN != "" && c.state != GameOver {
		return c.pendingFEN
	}
	return c.ledger.ConfirmedFEN()
}

// Shutdown stops every timer without producing an outcome.
func (c *Controller) Shutdown() {
	c.clocks.StopAll()
	c.watchdog.Cancel()
}

// Handle applies one push event.
func (c *Controller) Handle(msg Message) {
	switch m := msg.(type) {
	case Joined:
		c.onJoined(m)
	case PlayerJoined:
		c.onPlayerJoined(m)
	case ClocksStarted:
		c.onClocksStarted()
	case MoveSubmitted:
		c.onMoveSubmitted(m)
	case MovesProcessed:
		c.onMovesProcessed(m)
	case GameStateUpdate:
		c.onGameStateUpdate(m)
	case ErrorNotice:
		c.log.Warn("authority_error", zap.String("message", m.Message))
		c.pres.ShowAlert(m.Message)
	default:
		c.log.Warn("unknown_message", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (c *Controller) onJoined(m Joined) {
	gs := m.State
	if c.state == GameOver {
		return
	}
	if c.state != Idle {
		c.onRejoined(m)
		return
	}
	if m.Color.Valid() {
		c.color = m.Color
	}
	fen := gs.FEN
	if !ValidFEN(fen) {
		fen = StartFEN
	}
	c.ledger = history.New(fen, history.WithListener(c.onHistory))
	c.turn, c.attempt = gs.TurnNumber, gs.IllegalAttempt
	c.observe(gs)
	if gs.ClockSeconds != nil && (gs.TurnNumber > 1 || gs.HasIllegalities()) {
		c.clocks.Set(gs.ClockSeconds.White, gs.ClockSeconds.Black)
	}
	c.log.Info("joined", zap.String("color", string(c.color)), zap.Int("turn", gs.TurnNumber))

	c.state = AwaitingLocalMove
	if gs.Ready(c.color) {
		c.state = PendingServerResult
	}
	c.pres.ShowHistory(c.ledger.View())
	c.pres.ShowPosition(fen, false)
	for _, side := range simdto.Colors {
		c.pres.ShowClock(side, c.clocks.State(side))
	}
	if gs.GameOver {
		c.finish(c.outcomeFromState(gs, resignationReason))
		return
	}
	c.setInput(c.state == AwaitingLocalMove)
	c.emitStatus()
}

// onRejoined handles the joined echo after a reconnect. The ledger only grows
// when the authority has moved past the last applied turn.
func (c *Controller) onRejoined(m Joined) {
	gs := m.State
	c.observe(gs)
	if gs.TurnNumber > c.turn && ValidFEN(gs.FEN) {
		c.log.Warn("rejoin_resync", zap.Int("local_turn", c.turn), zap.Int("authority_turn", gs.TurnNumber))
		c.clearIntent()
		c.ledger.Append(history.Record{Kind: history.Legal, Turn: gs.TurnNumber - 1, FEN: gs.FEN})
		c.turn, c.attempt = gs.TurnNumber, gs.IllegalAttempt
		c.state = AwaitingLocalMove
	}
	if gs.ClockSeconds != nil {
		c.clocks.SyncFromAuthority(gs.ClockSeconds.White, gs.ClockSeconds.Black)
	}
	if gs.GameOver {
		c.finish(c.outcomeFromState(gs, resignationReason))
		return
	}
	if c.state == PendingServerResult && !gs.Ready(c.color) {
		c.log.Warn("submission_lost_on_reconnect")
		c.pres.ShowAlert("Connection dropped before your move was received. Please submit again.")
		if c.intent != nil {
			c.state = MoveIntentSet
		} else {
			c.pendingFEN = ""
			c.state = AwaitingLocalMove
			c.pres.ShowPosition(c.liveFEN(), false)
		}
		c.clocks.Start(c.color)
	}
	c.setInput(c.state == AwaitingLocalMove || c.state == MoveIntentSet)
	c.emitStatus()
}

func (c *Controller) onPlayerJoined(m PlayerJoined) {
	if c.state == Idle || c.state == GameOver {
		c.log.Debug("player_joined_ignored", zap.String("state", c.state.String()))
		return
	}
	c.observe(m.State)
	c.startClocks()
	if err := c.send(func(ctx context.Context) error { return c.auth.StartClocks(ctx, c.gameID) }); err != nil {
		c.log.Warn("start_clocks_failed", zap.Error(err))
	}
	c.emitStatus()
}

func (c *Controller) onClocksStarted() {
	if c.state == Idle || c.state == GameOver {
		return
	}
	c.startClocks()
}

// startClocks begins the simultaneous countdown for every side that still
// owes a move and arms the watchdog before the first move.
func (c *Controller) startClocks() {
	for _, side := range simdto.Colors {
		if !c.ready[index(side)] {
			c.clocks.Start(side)
		}
	}
	if !c.ledger.HasMoves() {
		c.watchdog.Arm()
	}
}

func (c *Controller) onMoveSubmitted(m MoveSubmitted) {
	if c.state == Idle || c.state == GameOver {
		return
	}
	c.observe(m.State)
	c.watchdog.MarkFirstMove()
	if m.Color.Valid() {
		c.clocks.Stop(m.Color)
	}
	if m.Color == c.color {
		c.status.Waiting = WaitingForOpponent
		if c.state == PendingServerResult {
			c.intent = nil
		}
	} else if m.Color.Valid() {
		if c.state == PendingServerResult {
			c.status.Waiting = WaitingNone
		} else {
			c.status.Waiting = WaitingForYou
		}
	}
	c.emitStatus()
}

func (c *Controller) onMovesProcessed(m MovesProcessed) {
	res, gs := m.Result, m.State
	if c.state == Idle || c.state == GameOver {
		c.log.Warn("resolution_dropped", zap.String("state", c.state.String()), zap.Int("turn", gs.TurnNumber))
		return
	}
	terminal := res.Terminal() || gs.GameOver
	attempt := gs.IllegalAttempt
	if res.IllegalAttempt > attempt {
		attempt = res.IllegalAttempt
	}

	if c.fresh(res.TurnComplete, gs.TurnNumber, attempt) {
		c.observe(gs)
		c.status.Penalty = nil
		if p := res.PenaltyApplied; p != nil && p.Color.Valid() {
			pen := *p
			c.status.Penalty = &pen
			if gs.ClockSeconds != nil {
				c.clocks.SyncSide(p.Color, gs.ClockSeconds.Get(p.Color))
			}
			c.log.Info("penalty_applied", zap.String("color", string(p.Color)), zap.Int("seconds", p.Seconds))
		}
		if res.TurnComplete {
			c.commit(res, gs)
		} else {
			c.revert(res, gs)
		}
		c.turn, c.attempt = gs.TurnNumber, attempt
		if res.TurnComplete {
			c.attempt = 0
		}
	} else if !terminal {
		if c.discarded(res, gs, attempt) {
			c.abandonSubmission(res, gs)
			return
		}
		c.log.Warn("resolution_dropped",
			zap.Int("turn", gs.TurnNumber),
			zap.Int("attempt", attempt),
			zap.Int("current_turn", c.turn),
			zap.Int("current_attempt", c.attempt),
			zap.Bool("turn_complete", res.TurnComplete),
		)
		return
	}

	if terminal {
		c.finish(c.outcomeFromResult(res, gs))
		return
	}
	c.resume(res, gs)
}

// fresh reports whether a resolution keyed (turn, attempt) is the immediate
// successor of the last applied one.
func (c *Controller) fresh(complete bool, turn, attempt int) bool {
	if complete {
		return turn == c.turn+1
	}
	return turn == c.turn && attempt > c.attempt
}

// discarded reports a rejection that did not advance the resolution key but
// still cleared our submission on the authority, as its error path does.
func (c *Controller) discarded(res simdto.MoveResult, gs simdto.GameState, attempt int) bool {
	return !res.TurnComplete &&
		c.state == PendingServerResult &&
		gs.TurnNumber == c.turn &&
		attempt == c.attempt &&
		res.ValidMoves.Rejected(c.color) &&
		!gs.Ready(c.color)
}

// abandonSubmission puts the board back on the confirmed position and asks
// for the move again. The ledger is left alone since the key did not move.
func (c *Controller) abandonSubmission(res simdto.MoveResult, gs simdto.GameState) {
	reason := firstNonEmpty(res.IllegalReason.Get(c.color), res.IllegalReason.Get(c.color.Opponent()), "Move was not processed")
	c.log.Warn("submission_discarded", zap.Int("turn", gs.TurnNumber), zap.Int("attempt", c.attempt), zap.String("reason", reason))
	c.observe(gs)
	c.clearIntent()
	if !c.ledger.Viewing() {
		c.pres.ShowPosition(c.ledger.ConfirmedFEN(), false)
	}
	c.pres.ShowAlert(reason + ". Please submit again.")
	c.resume(res, gs)
}

func (c *Controller) commit(res simdto.MoveResult, gs simdto.GameState) {
	prev := c.ledger.ConfirmedFEN()
	fen := gs.FEN
	if !ValidFEN(fen) {
		fen = res.FEN
	}
	if !ValidFEN(fen) {
		c.log.Warn("commit_without_position", zap.Int("turn", gs.TurnNumber))
		fen = prev
	}
	rec := history.Record{
		Kind:     history.Legal,
		Turn:     gs.TurnNumber - 1,
		FEN:      fen,
		White:    firstNonEmpty(res.MovesSAN.White, res.IntendedMoves.White),
		Black:    firstNonEmpty(res.MovesSAN.Black, res.IntendedMoves.Black),
		Intended: res.IntendedMoves,
		IntendedSAN: simdto.MovePair{
			White: intendedSAN(prev, simdto.White, res.IntendedMoves.White),
			Black: intendedSAN(prev, simdto.Black, res.IntendedMoves.Black),
		},
	}
	c.watchdog.MarkFirstMove()
	c.clearIntent()
	c.state = TurnComplete
	c.ledger.Append(rec)
	c.log.Info("turn_committed", zap.Int("turn", rec.Turn), zap.String("white", rec.White), zap.String("black", rec.Black))
}

func (c *Controller) revert(res simdto.MoveResult, gs simdto.GameState) {
	intended := res.IntendedMoves
	if intended.Empty() {
		intended = gs.LastIllegalMoves
	}
	reason := firstNonEmpty(res.IllegalReason.White, res.IllegalReason.Black, mutualReason)
	c.clearIntent()
	c.ledger.Append(history.Record{
		Kind:     history.Illegal,
		Turn:     gs.TurnNumber,
		FEN:      c.ledger.ConfirmedFEN(),
		Intended: intended,
		Reason:   reason,
	})
	c.log.Info("turn_reverted",
		zap.Int("turn", gs.TurnNumber),
		zap.String("type", res.IllegalityType),
		zap.String("reason", reason),
	)
}

// resume starts the next round after a non-terminal resolution. A side moves
// again when the authority rejected it or no longer holds its submission.
func (c *Controller) resume(res simdto.MoveResult, gs simdto.GameState) {
	owes := func(side simdto.Color) bool {
		return res.ValidMoves.Rejected(side) || !gs.Ready(side)
	}
	for _, side := range simdto.Colors {
		if owes(side) {
			c.clocks.Start(side)
		}
	}
	if owes(c.color) {
		c.state = AwaitingLocalMove
		c.status.Waiting = WaitingNone
		c.setInput(true)
	} else {
		c.state = PendingServerResult
		c.status.Waiting = WaitingForOpponent
		c.setInput(false)
	}
	c.emitStatus()
}

func (c *Controller) onGameStateUpdate(m GameStateUpdate) {
	if m.State == nil || c.state == Idle || c.state == GameOver {
		return
	}
	gs := *m.State
	c.observe(gs)
	if gs.GameOver {
		c.finish(c.outcomeFromState(gs, resignationReason))
		return
	}
	if gs.ClockSeconds != nil && gs.HasIllegalities() {
		c.clocks.SyncFromAuthority(gs.ClockSeconds.White, gs.ClockSeconds.Black)
	}
	c.emitStatus()
}

// HandleTimeout ends the game when a local clock reaches zero and tells the
// authority, which stays the arbiter of record.
func (c *Controller) HandleTimeout(side simdto.Color) {
	if c.state == Idle || c.state == GameOver || !side.Valid() {
		return
	}
	winner := side.Opponent()
	c.finish(Outcome{Kind: c.kindFor(winner), Winner: winner, Reason: timeReason, Turns: max(c.turn-1, 0), ByTime: true})
	if err := c.send(func(ctx context.Context) error { return c.auth.TimeOut(ctx, c.gameID, side) }); err != nil {
		c.log.Warn("time_out_notify_failed", zap.Error(err))
	}
}

func (c *Controller) handleAbort() {
	if c.state == Idle || c.state == GameOver {
		return
	}
	c.finish(Outcome{Kind: OutcomeAborted, Reason: abortedReason})
}

func (c *Controller) finish(o Outcome) {
	c.clocks.StopAll()
	c.watchdog.Cancel()
	c.intent = nil
	c.pendingFEN = ""
	c.state = GameOver
	c.setInput(false)
	c.status.Waiting = WaitingNone
	c.outcome = &o
	if c.ledger != nil && !c.ledger.Viewing() {
		c.pres.ShowPosition(c.ledger.ConfirmedFEN(), false)
	}
	c.log.Info("game_over",
		zap.String("kind", string(o.Kind)),
		zap.String("winner", string(o.Winner)),
		zap.String("reason", o.Reason),
		zap.Int("turns", o.Turns),
	)
	c.pres.ShowOutcome(o)
	c.emitStatus()
	if c.cfg.OnGameOver != nil {
		c.cfg.OnGameOver(o)
	}
}

func (c *Controller) outcomeFromResult(res simdto.MoveResult, gs simdto.GameState) Outcome {
	turns := max(gs.TurnNumber-1, 0)
	winner := res.Winner
	if winner == "" {
		winner = gs.Winner
	}
	if winner.Valid() && !res.Draw {
		reason := res.WinReason
		if reason == "" {
			reason = gs.WinReason
		}
		if reason == "" && res.KingCaptured {
			reason = "king capture"
		}
		if reason == "" && res.Checkmate {
			reason = "checkmate"
		}
		if reason == "" {
			reason = "timeout"
		}
		return Outcome{Kind: c.kindFor(winner), Winner: winner, Reason: reason, Turns: turns}
	}
	return Outcome{
		Kind:   OutcomeDraw,
		Reason: firstNonEmpty(res.DrawReasonText, res.DrawReason, gs.DrawReason),
		Turns:  turns,
	}
}

func (c *Controller) outcomeFromState(gs simdto.GameState, defaultWinReason string) Outcome {
	turns := max(gs.TurnNumber-1, 0)
	if gs.Winner.Valid() {
		return Outcome{
			Kind:   c.kindFor(gs.Winner),
			Winner: gs.Winner,
			Reason: firstNonEmpty(gs.WinReason, defaultWinReason),
			Turns:  turns,
		}
	}
	return Outcome{Kind: OutcomeDraw, Reason: gs.DrawReason, Turns: turns}
}

func (c *Controller) kindFor(winner simdto.Color) OutcomeKind {
	if winner == c.color {
		return OutcomeWin
	}
	return OutcomeLoss
}

// Drop records a local move intent from a piece dropped on target.
func (c *Controller) Drop(source, target string) (Intent, error) {
	if err := c.acceptingInput(); err != nil {
		return Intent{}, err
	}
	source = strings.ToLower(strings.TrimSpace(source))
	target = strings.ToLower(strings.TrimSpace(target))
	if target == OffBoard || target == source {
		return Intent{}, ErrBadTarget
	}
	if _, ok := parseSquare(source); !ok {
		return Intent{}, ErrInvalidSquare
	}
	if _, ok := parseSquare(target); !ok {
		return Intent{}, ErrInvalidSquare
	}
	confirmed := c.ledger.ConfirmedFEN()
	piece, err := ownPiece(confirmed, source, c.color)
	if err != nil {
		return Intent{}, err
	}

	in := Intent{From: source, To: target}
	if isPawn(piece) && farRank(c.color, target) {
		in.Promotion = c.cfg.Promotion.Promotion(c.color, source, target)
	}
	fen, err := optimisticFEN(confirmed, in)
	if err != nil {
		return Intent{}, err
	}
	c.intent = &in
	c.pendingFEN = fen
	c.state = MoveIntentSet
	c.log.Debug("move_intent", zap.String("move", in.UCI()))
	c.pres.ShowPosition(fen, false)
	c.emitStatus()
	return in, nil
}

// Reset discards the intent and shows the confirmed position again.
func (c *Controller) Reset() error {
	switch c.state {
	case Idle:
		return ErrNotJoined
	case GameOver:
		return ErrGameOver
	case MoveIntentSet:
	default:
		return ErrNoIntent
	}
	c.clearIntent()
	c.state = AwaitingLocalMove
	if !c.ledger.Viewing() {
		c.pres.ShowPosition(c.ledger.ConfirmedFEN(), false)
	}
	c.emitStatus()
	return nil
}

// Submit sends the intent. A transport failure puts the intent back for a
// manual resubmit.
func (c *Controller) Submit() error {
	switch c.state {
	case Idle:
		return ErrNotJoined
	case GameOver:
		return ErrGameOver
	case MoveIntentSet:
	default:
		return ErrNoIntent
	}
	if c.intent == nil {
		return ErrNoIntent
	}
	in := *c.intent
	c.watchdog.MarkFirstMove()
	c.clocks.Stop(c.color)
	snap := c.clocks.Snapshot()
	req := simdto.SubmitMoveRequest{GameID: c.gameID, Color: c.color, Move: in.UCI(), ClockSeconds: &snap}

	c.state = PendingServerResult
	c.status.Waiting = WaitingForOpponent
	c.setInput(false)
	c.emitStatus()

	c.submitSeq++
	seq := c.submitSeq
	deliver := func(ctx context.Context) error { return c.auth.SubmitMove(ctx, req) }
	if c.cfg.Offload == nil {
		return c.submitted(seq, in, c.send(deliver))
	}
	c.cfg.Offload(func() {
		err := c.send(deliver)
		c.cfg.Dispatch(func() { _ = c.submitted(seq, in, err) })
	})
	return nil
}

// submitted applies the transport result of submission seq. A result for an
// older submission, or one that arrives after the state moved on, is ignored.
func (c *Controller) submitted(seq uint64, in Intent, err error) error {
	if err == nil {
		c.log.Info("move_submitted", zap.String("move", in.UCI()))
		return nil
	}
	c.log.Warn("submit_failed", zap.String("move", in.UCI()), zap.Error(err))
	if seq != c.submitSeq || c.state != PendingServerResult || c.intent == nil {
		return fmt.Errorf("submit move: %w", err)
	}
	c.pres.ShowAlert("Failed to submit move: " + err.Error())
	c.state = MoveIntentSet
	c.status.Waiting = WaitingNone
	c.setInput(true)
	c.clocks.Start(c.color)
	c.emitStatus()
	return fmt.Errorf("submit move: %w", err)
}

func (c *Controller) acceptingInput() error {
	switch c.state {
	case Idle:
		return ErrNotJoined
	case GameOver:
		return ErrGameOver
	}
	if !c.input || (c.state != AwaitingLocalMove && c.state != MoveIntentSet) {
		return ErrInputDisabled
	}
	if c.ledger.Viewing() {
		return ErrViewingHistory
	}
	return nil
}

// History navigation. None of it touches the live game state.

func (c *Controller) Navigate(i int) error {
	if c.ledger == nil {
		return ErrNotJoined
	}
	return c.ledger.Navigate(i)
}

func (c *Controller) First() error { return c.nav((*history.Ledger).First) }
func (c *Controller) Prev() error  { return c.nav((*history.Ledger).Prev) }
func (c *Controller) Next() error  { return c.nav((*history.Ledger).Next) }
func (c *Controller) Last() error  { return c.nav((*history.Ledger).Last) }

func (c *Controller) JumpToLatest() error {
	if c.ledger == nil {
		return ErrNotJoined
	}
	c.ledger.JumpToLatest()
	return nil
}

func (c *Controller) nav(fn func(*history.Ledger) error) error {
	if c.ledger == nil {
		return ErrNotJoined
	}
	return fn(c.ledger)
}

func (c *Controller) onHistory(v history.View) {
	c.pres.ShowHistory(v)
	if v.Viewing {
		c.pres.ShowPosition(v.FEN, true)
		return
	}
	c.pres.ShowPosition(c.liveFEN(), false)
}

func (c *Controller) observe(gs simdto.GameState) {
	c.ready[0], c.ready[1] = gs.WhiteReady, gs.BlackReady
	c.status.Turn = gs.TurnNumber
	c.status.Attempt = gs.IllegalAttempt
	c.status.Mutual = gs.MutualIllegalCount
	c.status.OneSided = gs.OneSidedIllegalCounts
	c.status.Threshold = gs.OneSidedThreshold
	if c.status.Threshold <= 0 {
		c.status.Threshold = defaultThreshold
	}
}

func (c *Controller) clearIntent() {
	c.intent = nil
	c.pendingFEN = ""
}

func (c *Controller) setInput(enabled bool) {
	c.input = enabled
	c.pres.SetInputEnabled(enabled)
}

func (c *Controller) emitStatus() { c.pres.ShowStatus(c.Status()) }

func (c *Controller) send(fn func(ctx context.Context) error) error {
	if c.auth == nil {
		return ErrNoAuthority
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SendTimeout)
	defer cancel()
	return fn(ctx)
}

func index(c simdto.Color) int {
	if c == simdto.Black {
		return 1
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
