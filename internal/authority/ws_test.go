package authority

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

type fakeServer struct {
	srv     *httptest.Server
	joins   int32
	frames  chan Envelope
	dropOne bool
}

func newFakeServer(t *testing.T, dropFirst bool) *fakeServer {
	t.Helper()
	fs := &fakeServer{frames: make(chan Envelope, 16), dropOne: dropFirst}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()
		for {
			var env Envelope
			if err := wsjson.Read(ctx, conn, &env); err != nil {
				return
			}
			if env.Event != EventJoin {
				fs.frames <- env
				continue
			}
			n := atomic.AddInt32(&fs.joins, 1)
			data, _ := json.Marshal(simdto.JoinedPayload{Color: simdto.White, GameState: simdto.GameState{GameID: "g1", TurnNumber: int(n)}})
			if err := wsjson.Write(ctx, conn, Envelope{Event: "joined", Data: data}); err != nil {
				return
			}
			if fs.dropOne && n == 1 {
				conn.Close(websocket.StatusGoingAway, "restart")
				return
			}
		}
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) url() string { return "ws://" + strings.TrimPrefix(fs.srv.URL, "http://") }

func nextMessage(t *testing.T, ch <-chan reconcile.Message) reconcile.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(3 * time.Second):
		t.Fatalf("no push received")
	}
	return nil
}

func closeWS(t *testing.T, ws *WebSocket) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := ws.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestWebSocketJoinAndSubmit(t *testing.T) {
	fs := newFakeServer(t, false)
	ws := NewWebSocket(fs.url(), 0, 0)
	msgs := make(chan reconcile.Message, 8)
	detach := Bind(ws, "g1", func(m reconcile.Message) bool { msgs <- m; return true }, nil)
	defer detach()

	if err := ws.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer closeWS(t, ws)

	j, ok := nextMessage(t, msgs).(reconcile.Joined)
	if !ok || j.Color != simdto.White || j.State.GameID != "g1" {
		t.Fatalf("joined = %+v", j)
	}

	clk := simdto.ClockSeconds{White: 590, Black: 600}
	if err := ws.SubmitMove(context.Background(), simdto.SubmitMoveRequest{GameID: "g1", Color: simdto.White, Move: "e2e4", ClockSeconds: &clk}); err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	select {
	case env := <-fs.frames:
		var req simdto.SubmitMoveRequest
		if env.Event != EventSubmitMove || json.Unmarshal(env.Data, &req) != nil {
			t.Fatalf("frame = %+v", env)
		}
		if req.Move != "e2e4" || req.ClockSeconds == nil || req.ClockSeconds.White != 590 {
			t.Fatalf("submit = %+v", req)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("submit not received")
	}

	if err := ws.TimeOut(context.Background(), "g1", simdto.Black); err != nil {
		t.Fatalf("TimeOut: %v", err)
	}
	select {
	case env := <-fs.frames:
		if env.Event != EventTimeOut {
			t.Fatalf("frame = %+v", env)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("time_out not received")
	}
}

func TestWebSocketRejoinsAfterReconnect(t *testing.T) {
	fs := newFakeServer(t, true)
	ws := NewWebSocket(fs.url(), 3, 10*time.Millisecond)
	msgs := make(chan reconcile.Message, 8)
	Bind(ws, "g1", func(m reconcile.Message) bool { msgs <- m; return true }, nil)

	if err := ws.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer closeWS(t, ws)

	first := nextMessage(t, msgs).(reconcile.Joined)
	second := nextMessage(t, msgs).(reconcile.Joined)
	if first.State.TurnNumber != 1 || second.State.TurnNumber != 2 {
		t.Fatalf("joins = %d, %d", first.State.TurnNumber, second.State.TurnNumber)
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1", 0, 0)
	if err := ws.StartClocks(context.Background(), "g1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("StartClocks = %v", err)
	}
	if ws.State() != StateDisconnected || ws.State().String() != "disconnected" {
		t.Fatalf("state = %v", ws.State())
	}
}
