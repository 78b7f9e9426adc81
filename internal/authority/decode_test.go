package authority

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

func env(event, data string) Envelope {
	return Envelope{Event: event, Data: json.RawMessage(data)}
}

func TestDecodeJoined(t *testing.T) {
	msg, err := Decode(env("joined", `{"color":"black","game_state":{"game_id":"g1","fen":"x","turn_number":3,"white_ready":true,"clock_seconds":{"white":500,"black":480}}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	j, ok := msg.(reconcile.Joined)
	if !ok {
		t.Fatalf("type = %T", msg)
	}
	if j.Color != simdto.Black || j.State.TurnNumber != 3 || !j.State.WhiteReady || j.State.ClockSeconds == nil || j.State.ClockSeconds.Black != 480 {
		t.Fatalf("joined = %+v", j)
	}
}

func TestDecodeMovesProcessed(t *testing.T) {
	raw := `{"result":{"turn_complete":false,"valid_moves":{"white":false,"black":true},"illegal_reason":{"white":"Piece cannot move there"},"penalty_applied":{"color":"white","seconds":30},"illegal_attempt":2},"game_state":{"turn_number":4,"illegal_attempt":2}}`
	msg, err := Decode(env("moves_processed", raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := msg.(reconcile.MovesProcessed)
	if m.Result.TurnComplete || m.State.TurnNumber != 4 || m.Result.PenaltyApplied == nil || m.Result.PenaltyApplied.Seconds != 30 {
		t.Fatalf("moves_processed = %+v", m)
	}
	if !m.Result.ValidMoves.Rejected(simdto.White) || m.Result.ValidMoves.Rejected(simdto.Black) {
		t.Fatalf("valid moves = %+v", m.Result.ValidMoves)
	}
}

func TestDecodeSimpleEvents(t *testing.T) {
	cases := map[string]reconcile.Message{
		"clocks_started": reconcile.ClocksStarted{},
	}
	for event, want := range cases {
		got, err := Decode(env(event, `{}`))
		if err != nil || got != want {
			t.Fatalf("%s: %v %v", event, got, err)
		}
	}

	msg, err := Decode(env("error", `{"message":"Game not found"}`))
	if err != nil || msg.(reconcile.ErrorNotice).Message != "Game not found" {
		t.Fatalf("error notice: %v %v", msg, err)
	}

	msg, err = Decode(Envelope{Event: "game_state_update"})
	if err != nil || msg.(reconcile.GameStateUpdate).State != nil {
		t.Fatalf("empty update: %v %v", msg, err)
	}

	msg, err = Decode(env("move_submitted", `{"color":"white","game_state":{"white_ready":true}}`))
	if err != nil {
		t.Fatalf("move_submitted: %v", err)
	}
	if ms := msg.(reconcile.MoveSubmitted); ms.Color != simdto.White || !ms.State.WhiteReady {
		t.Fatalf("move_submitted = %+v", ms)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(env("chat", `{}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("unknown event = %v", err)
	}
	if _, err := Decode(env("joined", `{"color":`)); err == nil {
		t.Fatalf("malformed payload accepted")
	}
}
