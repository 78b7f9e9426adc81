package reconcile

import (
	"github.com/elbionredenica/simchess/internal/clock"
	"github.com/elbionredenica/simchess/internal/history"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

// State is the controller's position in the turn cycle.
type State int

const (
	Idle State = iota
	AwaitingLocalMove
	MoveIntentSet
	PendingServerResult
	TurnComplete
	GameOver
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingLocalMove:
		return "awaiting_local_move"
	case MoveIntentSet:
		return "move_intent_set"
	case PendingServerResult:
		return "pending_server_result"
	case TurnComplete:
		return "turn_complete"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Intent is the local move between drop and submit.
type Intent struct {
	From      string
	To        string
	Promotion string
}

// UCI renders the intent the way the authority expects it.
func (i Intent) UCI() string { return i.From + i.To + i.Promotion }

type OutcomeKind string

const (
	OutcomeWin     OutcomeKind = "win"
	OutcomeLoss    OutcomeKind = "loss"
	OutcomeDraw    OutcomeKind = "draw"
	OutcomeAborted OutcomeKind = "aborted"
)

// Outcome is the terminal summary shown once per game.
type Outcome struct {
	Kind   OutcomeKind
	Winner simdto.Color
	Reason string
	Turns  int
	// ByTime marks a clock expiry; presenters word it "on time".
	ByTime bool
}

// Waiting is the submission banner.
type Waiting int

const (
	WaitingNone Waiting = iota
	WaitingForOpponent
	WaitingForYou
)

// Status is the side panel: turn counter, waiting banner, penalty and counters.
type Status struct {
	GameID  string
	Color   simdto.Color
	State   State
	Turn    int
	Attempt int
	Intent  string
	Waiting Waiting

	Penalty   *simdto.Penalty
	Mutual    int
	OneSided  simdto.ColorCounts
	Threshold int
}

// Presenter is the display sink the controller drives. Calls arrive on the
// session loop.
type Presenter interface {
	ShowPosition(fen string, viewing bool)
	ShowClock(c simdto.Color, st clock.State)
	ShowHistory(v history.View)
	ShowStatus(s Status)
	ShowAbortCountdown(remaining int, urgent bool)
	ClearAbortCountdown()
	ShowOutcome(o Outcome)
	ShowAlert(msg string)
	SetInputEnabled(enabled bool)
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) ShowPosition(string, bool) {}
func (NopPresenter) ShowClock(simdto.Color, clock.State) {}
func (NopPresenter) ShowHistory(history.View) {}
func (NopPresenter) ShowStatus(Status) {}
func (NopPresenter) ShowAbortCountdown(int, bool) {}
func (NopPresenter) ClearAbortCountdown() {}
func (NopPresenter) ShowOutcome(Outcome) {}
func (NopPresenter) ShowAlert(string) {}
func (NopPresenter) SetInputEnabled(bool) {}
