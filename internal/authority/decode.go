package authority

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

var ErrUnknownEvent = errors.New("unknown push event")

// Decode turns one push envelope into its typed message.
func Decode(env Envelope) (reconcile.Message, error) {
	switch env.Event {
	case reconcile.EventJoined:
		var p simdto.JoinedPayload
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return reconcile.Joined{Color: p.Color, State: p.GameState}, nil
	case reconcile.EventPlayerJoined:
		var p simdto.PlayerJoinedPayload
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return reconcile.PlayerJoined{State: p.GameState}, nil
	case reconcile.EventClocksStarted:
		return reconcile.ClocksStarted{}, nil
	case reconcile.EventMoveSubmitted:
		var p simdto.MoveSubmittedPayload
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return reconcile.MoveSubmitted{Color: p.Color, State: p.GameState}, nil
	case reconcile.EventMovesProcessed:
		var p simdto.MovesProcessedPayload
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return reconcile.MovesProcessed{Result: p.Result, State: p.GameState}, nil
	case reconcile.EventGameStateUpdate:
		var p simdto.GameStateUpdatePayload
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return reconcile.GameStateUpdate{State: p.GameState}, nil
	case reconcile.EventError:
		var p simdto.ErrorPayload
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return reconcile.ErrorNotice{Message: p.Message}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
}

func unmarshal(env Envelope, v any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", env.Event, err)
	}
	return nil
}

// Bind feeds decoded pushes for one game into deliver and joins the game
// on every (re)connect. The returned func detaches both callbacks.
func Bind(ws *WebSocket, gameID string, deliver func(reconcile.Message) bool, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	msgID := ws.OnMessage(func(env Envelope) {
		msg, err := Decode(env)
		if err != nil {
			logger.Warn("push_decode_failed", zap.String("event", env.Event), zap.Error(err))
			return
		}
		logger.Debug("push_received", zap.String("event", env.Event))
		deliver(msg)
	})
	stateID := ws.OnStateChange(func(s State) {
		if s != StateConnected {
			return
		}
		// the state callback runs on the dialing goroutine; join off it
		go func() {
			if err := ws.Join(ws.rootCtx, gameID); err != nil {
				logger.Warn("join_failed", zap.String("game_id", gameID), zap.Error(err))
			}
		}()
	})
	return func() {
		ws.RemoveMessageCallback(msgID)
		ws.RemoveStateCallback(stateID)
	}
}
