package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/elbionredenica/simchess/internal/adapter/termpresenter"
	"github.com/elbionredenica/simchess/internal/msgcat"
	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/internal/session"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

type nopAuthority struct{}

func (nopAuthority) SubmitMove(context.Context, simdto.SubmitMoveRequest) error { return nil }
func (nopAuthority) StartClocks(context.Context, string) error                  { return nil }
func (nopAuthority) TimeOut(context.Context, string, simdto.Color) error        { return nil }

func TestSplitMove(t *testing.T) {
	cases := []struct {
		args     []string
		from, to string
		ok       bool
	}{
		{[]string{"e2e4"}, "e2", "e4", true},
		{[]string{"E7E8Q"}, "e7", "e8", true},
		{[]string{"g1", "f3"}, "g1", "f3", true},
		{[]string{"e2"}, "", "", false},
		{nil, "", "", false},
	}
	for _, c := range cases {
		from, to, err := splitMove(c.args)
		if (err == nil) != c.ok || from != c.from || to != c.to {
			t.Fatalf("splitMove(%v) = %q %q %v", c.args, from, to, err)
		}
	}
}

func TestRunnerDrivesSession(t *testing.T) {
	var out bytes.Buffer
	pres := termpresenter.New(&out, msgcat.Default())
	sess := session.New("g1", session.Options{Presenter: pres, Authority: nopAuthority{}})
	go func() { _ = sess.Run(context.Background()) }()
	defer sess.Close()

	sess.Deliver(reconcile.Joined{Color: simdto.White, State: simdto.GameState{GameID: "g1", FEN: reconcile.StartFEN, TurnNumber: 1}})
	r := &runner{sess: sess, pres: pres, out: &out}
	ctx := context.Background()

	if _, err := r.run(ctx, "move e2e4"); err != nil {
		t.Fatalf("move: %v", err)
	}
	var state reconcile.State
	_ = sess.Do(ctx, func(c *reconcile.Controller) error { state = c.State(); return nil })
	if state != reconcile.MoveIntentSet {
		t.Fatalf("state = %s", state)
	}
	if _, err := r.run(ctx, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := r.run(ctx, "history prev"); err == nil {
		t.Fatalf("prev at anchor should fail")
	}
	if _, err := r.run(ctx, "bogus"); !errors.Is(err, errUsage) {
		t.Fatalf("bogus = %v", err)
	}
	quit, err := r.run(ctx, "quit")
	if !quit || err != nil {
		t.Fatalf("quit = %v %v", quit, err)
	}
}
