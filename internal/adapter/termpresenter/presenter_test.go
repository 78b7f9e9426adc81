package termpresenter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/elbionredenica/simchess/internal/clock"
	"github.com/elbionredenica/simchess/internal/history"
	"github.com/elbionredenica/simchess/internal/msgcat"
	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

func newTestPresenter(opts ...Option) (*Presenter, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, msgcat.Default(), opts...), &buf
}

func TestBoardOrientation(t *testing.T) {
	white := strings.Split(Board(reconcile.StartFEN, simdto.White), "\n")
	if white[0] != "8 r n b q k b n r" || white[8] != "  a b c d e f g h" {
		t.Fatalf("white board:\n%s", strings.Join(white, "\n"))
	}
	black := strings.Split(Board(reconcile.StartFEN, simdto.Black), "\n")
	if black[0] != "1 R N B K Q B N R" || black[8] != "  h g f e d c b a" {
		t.Fatalf("black board:\n%s", strings.Join(black, "\n"))
	}
	if Board("nonsense", simdto.White) != "" {
		t.Fatalf("bad fen should render nothing")
	}
}

func TestOutcomeText(t *testing.T) {
	cat := msgcat.Default()
	cases := []struct {
		o               reconcile.Outcome
		title, subtitle string
	}{
		{reconcile.Outcome{Kind: reconcile.OutcomeWin, Winner: simdto.White, Reason: "Checkmate"}, "Victory!", "White wins by checkmate"},
		{reconcile.Outcome{Kind: reconcile.OutcomeLoss, Winner: simdto.Black, Reason: "time", ByTime: true}, "Defeat", "Black wins on time"},
		{reconcile.Outcome{Kind: reconcile.OutcomeDraw, Reason: "Stalemate"}, "Draw", "Game drawn by stalemate"},
		{reconcile.Outcome{Kind: reconcile.OutcomeDraw}, "Draw", "Game drawn"},
		{reconcile.Outcome{Kind: reconcile.OutcomeAborted, Reason: "no moves made"}, "Game Aborted", "No moves made"},
	}
	for _, c := range cases {
		if got := OutcomeTitle(cat, c.o); got != c.title {
			t.Fatalf("title(%+v) = %q", c.o, got)
		}
		if got := OutcomeSubtitle(cat, c.o); got != c.subtitle {
			t.Fatalf("subtitle(%+v) = %q", c.o, got)
		}
	}
}

func TestShowOutcomeWritesSummary(t *testing.T) {
	p, buf := newTestPresenter()
	p.ShowOutcome(reconcile.Outcome{Kind: reconcile.OutcomeWin, Winner: simdto.White, Reason: "king capture", Turns: 12})
	want := "Victory!\nWhite wins by king capture\nTurns played: 12\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}

func TestStatusPanel(t *testing.T) {
	p, buf := newTestPresenter()
	p.ShowStatus(reconcile.Status{
		GameID:    "g1",
		Color:     simdto.Black,
		Turn:      3,
		Attempt:   2,
		Waiting:   reconcile.WaitingForYou,
		Penalty:   &simdto.Penalty{Color: simdto.Black, Seconds: 30},
		OneSided:  simdto.ColorCounts{Black: 3},
		Threshold: 3,
	})
	out := buf.String()
	for _, want := range []string{
		"Game g1 | You are Black",
		"Turn 3.2",
		"Opponent has submitted their move. Waiting for you...",
		"Penalty: -30s applied to black for repeated one-sided illegality.",
		"black 3/3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("status missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	p.ShowPosition(reconcile.StartFEN, false)
	if !strings.HasPrefix(buf.String(), "1 R N B K Q B N R") {
		t.Fatalf("board should follow the joined color:\n%s", buf.String())
	}
}

func TestHistoryBlock(t *testing.T) {
	p, buf := newTestPresenter()
	l := history.New(reconcile.StartFEN)
	l.Append(history.Record{Kind: history.Legal, Turn: 1, FEN: "x", White: "e4", Black: "e5"})
	l.Append(history.Record{Kind: history.Illegal, Turn: 2, FEN: "x", Intended: simdto.MovePair{White: "e1e3"}, Reason: "Mutual Illegality"})
	if err := l.Navigate(1); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	p.ShowHistory(l.View())
	out := buf.String()
	if !strings.Contains(out, "> 1. e4 e5") || !strings.Contains(out, "Mutual Illegality") {
		t.Fatalf("history:\n%s", out)
	}
	if !strings.Contains(out, "Viewing move 1 of 2.") {
		t.Fatalf("viewing notice missing:\n%s", out)
	}
}

func TestAbortCountdownAndClear(t *testing.T) {
	p, buf := newTestPresenter()
	p.ClearAbortCountdown()
	if buf.Len() != 0 {
		t.Fatalf("clear without countdown printed %q", buf.String())
	}
	p.ShowAbortCountdown(14, false)
	p.ShowAbortCountdown(9, true)
	p.ClearAbortCountdown()
	want := "No moves yet. Game aborts in 14s.\nABORTING in 9s! Make a move.\nAbort countdown cleared.\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}

func TestClockEcho(t *testing.T) {
	p, buf := newTestPresenter()
	p.ShowClock(simdto.White, clock.State{Seconds: 59, Running: true})
	if buf.Len() != 0 {
		t.Fatalf("clock printed without echo")
	}
	p.Clocks()
	if got := buf.String(); got != "White 0:59 * !  Black 0:00\n" {
		t.Fatalf("clock line = %q", got)
	}

	e, ebuf := newTestPresenter(WithClockEcho(true))
	e.ShowClock(simdto.Black, clock.State{Seconds: 600})
	if !strings.Contains(ebuf.String(), "Black 10:00") {
		t.Fatalf("echo = %q", ebuf.String())
	}
}

func TestInputPromptOnlyOnChange(t *testing.T) {
	p, buf := newTestPresenter()
	p.SetInputEnabled(true)
	p.SetInputEnabled(true)
	p.SetInputEnabled(false)
	if buf.String() != "Your move.\n" {
		t.Fatalf("got %q", buf.String())
	}
	p.ShowAlert("Failed to submit move: boom")
	if !strings.HasSuffix(buf.String(), "! Failed to submit move: boom\n") {
		t.Fatalf("alert = %q", buf.String())
	}
}
