package reconcile

import (
	"context"

	"github.com/elbionredenica/simchess/pkg/simdto"
)

// Push event names on the wire.
const (
	EventJoined          = "joined"
	EventPlayerJoined    = "player_joined"
	EventClocksStarted   = "clocks_started"
	EventMoveSubmitted   = "move_submitted"
	EventMovesProcessed  = "moves_processed"
	EventGameStateUpdate = "game_state_update"
	EventError           = "error"
)

// Message is one decoded push event.
type Message interface {
	Event() string
}

type Joined struct {
	Color simdto.Color
	State simdto.GameState
}

type PlayerJoined struct {
	State simdto.GameState
}

type ClocksStarted struct{}

type MoveSubmitted struct {
	Color simdto.Color
	State simdto.GameState
}

type MovesProcessed struct {
	Result simdto.MoveResult
	State  simdto.GameState
}

// GameStateUpdate may carry no state; it is then ignored.
type GameStateUpdate struct {
	State *simdto.GameState
}

type ErrorNotice struct {
	Message string
}

func (Joined) Event() string          { return EventJoined }
func (PlayerJoined) Event() string    { return EventPlayerJoined }
func (ClocksStarted) Event() string   { return EventClocksStarted }
func (MoveSubmitted) Event() string   { return EventMoveSubmitted }
func (MovesProcessed) Event() string  { return EventMovesProcessed }
func (GameStateUpdate) Event() string { return EventGameStateUpdate }
func (ErrorNotice) Event() string     { return EventError }

// Authority is the outbound half of the push channel.
type Authority interface {
	SubmitMove(ctx context.Context, req simdto.SubmitMoveRequest) error
	StartClocks(ctx context.Context, gameID string) error
	TimeOut(ctx context.Context, gameID string, c simdto.Color) error
}
