package termpresenter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/elbionredenica/simchess/internal/clock"
	"github.com/elbionredenica/simchess/internal/history"
	"github.com/elbionredenica/simchess/internal/msgcat"
	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

// Presenter writes the game to a line-oriented terminal.
type Presenter struct {
	mu  sync.Mutex
	w   io.Writer
	cat *msgcat.Catalog

	echoClocks bool

	color    simdto.Color
	fen      string
	viewing  bool
	clocks   map[simdto.Color]clock.State
	status   reconcile.Status
	input    bool
	counting bool
}

type Option func(*Presenter)

// WithClockEcho prints every clock tick instead of only on request.
func WithClockEcho(on bool) Option {
	return func(p *Presenter) { p.echoClocks = on }
}

func New(w io.Writer, cat *msgcat.Catalog, opts ...Option) *Presenter {
	if cat == nil {
		cat = msgcat.Default()
	}
	p := &Presenter{w: w, cat: cat, clocks: map[simdto.Color]clock.State{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ reconcile.Presenter = (*Presenter)(nil)

func (p *Presenter) ShowPosition(fen string, viewing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fen, p.viewing = fen, viewing
	p.println(Board(fen, p.color))
}

func (p *Presenter) ShowClock(c simdto.Color, st clock.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clocks[c] = st
	if p.echoClocks {
		p.println(p.clockLine())
	}
}

func (p *Presenter) ShowHistory(v history.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(p.historyBlock(v))
}

func (p *Presenter) ShowStatus(s reconcile.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.Color != "" {
		p.color = s.Color
	}
	p.status = s
	p.println(p.statusBlock(s))
}

func (p *Presenter) ShowAbortCountdown(remaining int, urgent bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counting = true
	key, fallback := "abort.warning", fmt.Sprintf("Game aborts in %ds.", remaining)
	if urgent {
		key = "abort.urgent"
	}
	p.println(p.cat.Text(key, map[string]any{"Seconds": remaining}, fallback))
}

func (p *Presenter) ClearAbortCountdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.counting {
		return
	}
	p.counting = false
	p.println(p.cat.Text("abort.cleared", nil, "Abort countdown cleared."))
}

func (p *Presenter) ShowOutcome(o reconcile.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(OutcomeTitle(p.cat, o))
	p.println(OutcomeSubtitle(p.cat, o))
	p.println(p.cat.Text("outcome.turns", map[string]any{"Turns": o.Turns}, fmt.Sprintf("Turns played: %d", o.Turns)))
}

func (p *Presenter) ShowAlert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(p.cat.Text("alert", map[string]any{"Message": msg}, "! "+msg))
}

func (p *Presenter) SetInputEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enabled == p.input {
		return
	}
	p.input = enabled
	if enabled {
		p.println(p.cat.Text("input.enabled", nil, "Your move."))
	}
}

// Clocks prints the current clock line.
func (p *Presenter) Clocks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(p.clockLine())
}

// Displayed returns the FEN on screen and the orientation, for snapshots.
func (p *Presenter) Displayed() (fen string, orientation simdto.Color, viewing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fen, p.color, p.viewing
}

// Caption is a one-line summary for image headers.
func (p *Presenter) Caption() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.turnLabel(p.status)
}

func (p *Presenter) println(s string) {
	if p.w == nil || s == "" {
		return
	}
	fmt.Fprintln(p.w, s)
}

func (p *Presenter) clockLine() string {
	side := func(c simdto.Color) string {
		st := p.clocks[c]
		return p.cat.Text("clock.side", map[string]any{
			"Color":   c.Title(),
			"Time":    clock.Format(st.Seconds),
			"Running": st.Running,
			"Low":     clock.LowTime(st.Seconds),
		}, c.Title()+" "+clock.Format(st.Seconds))
	}
	w, b := side(simdto.White), side(simdto.Black)
	return p.cat.Text("clock.line", map[string]any{"White": w, "Black": b}, w+"  "+b)
}

func (p *Presenter) turnLabel(s reconcile.Status) string {
	if s.Attempt > 0 {
		return p.cat.Text("status.turn_attempt", map[string]any{"Turn": s.Turn, "Attempt": s.Attempt},
			fmt.Sprintf("Turn %d.%d", s.Turn, s.Attempt))
	}
	return p.cat.Text("status.turn", map[string]any{"Turn": s.Turn}, fmt.Sprintf("Turn %d", s.Turn))
}

func (p *Presenter) statusBlock(s reconcile.Status) string {
	var lines []string
	if s.GameID != "" {
		lines = append(lines, p.cat.Text("status.header", map[string]any{"GameID": s.GameID, "Color": s.Color.Title()},
			"Game "+s.GameID))
	}
	if s.Turn > 0 {
		lines = append(lines, p.turnLabel(s))
	}
	if s.Intent != "" {
		lines = append(lines, p.cat.Text("status.intent", map[string]any{"Move": s.Intent}, "Intended move: "+s.Intent))
	}
	switch s.Waiting {
	case reconcile.WaitingForOpponent:
		lines = append(lines, p.cat.Text("status.waiting_opponent", nil, "Waiting for opponent to submit move..."))
	case reconcile.WaitingForYou:
		lines = append(lines, p.cat.Text("status.waiting_you", nil, "Opponent has submitted their move. Waiting for you..."))
	}
	if s.Penalty != nil && s.Penalty.Seconds > 0 {
		lines = append(lines, p.cat.Text("status.penalty", map[string]any{"Seconds": s.Penalty.Seconds, "Color": string(s.Penalty.Color)},
			fmt.Sprintf("Penalty: -%ds applied to %s", s.Penalty.Seconds, s.Penalty.Color)))
	}
	if s.Mutual > 0 || s.OneSided.White > 0 || s.OneSided.Black > 0 {
		lines = append(lines, p.cat.Text("status.counters", map[string]any{
			"Mutual":    s.Mutual,
			"White":     s.OneSided.White,
			"Black":     s.OneSided.Black,
			"Threshold": s.Threshold,
		}, fmt.Sprintf("Illegal attempts: mutual %d", s.Mutual)))
	}
	return strings.Join(lines, "\n")
}

func (p *Presenter) historyBlock(v history.View) string {
	var b strings.Builder
	b.WriteString(p.cat.Text("history.header", nil, "Moves"))
	if len(v.Entries) == 0 {
		b.WriteString("\n  ")
		b.WriteString(p.cat.Text("history.empty", nil, "(no moves yet)"))
	}
	for _, e := range v.Entries {
		marker := "  "
		if e.Selected && v.Viewing {
			marker = "> "
		}
		b.WriteString("\n")
		b.WriteString(marker)
		b.WriteString(e.Line())
	}
	if v.Viewing {
		last := 0
		if n := len(v.Entries); n > 0 {
			last = v.Entries[n-1].Index
		}
		b.WriteString("\n")
		b.WriteString(p.cat.Text("history.viewing", map[string]any{"Index": v.Selected, "Last": last},
			fmt.Sprintf("Viewing move %d of %d.", v.Selected, last)))
	}
	return b.String()
}

// OutcomeTitle is the headline of the game-over summary.
func OutcomeTitle(cat *msgcat.Catalog, o reconcile.Outcome) string {
	fallback := map[reconcile.OutcomeKind]string{
		reconcile.OutcomeWin:     "Victory!",
		reconcile.OutcomeLoss:    "Defeat",
		reconcile.OutcomeDraw:    "Draw",
		reconcile.OutcomeAborted: "Game Aborted",
	}[o.Kind]
	return cat.Text("outcome.title."+string(o.Kind), nil, fallback)
}

// OutcomeSubtitle explains how the game ended, e.g. "White wins by checkmate".
func OutcomeSubtitle(cat *msgcat.Catalog, o reconcile.Outcome) string {
	reason := strings.ToLower(strings.TrimSpace(o.Reason))
	winner := o.Winner.Title()
	switch {
	case o.Kind == reconcile.OutcomeAborted:
		return cat.Text("outcome.subtitle.aborted", nil, "No moves made")
	case o.Kind == reconcile.OutcomeDraw && reason == "":
		return cat.Text("outcome.subtitle.draw_plain", nil, "Game drawn")
	case o.Kind == reconcile.OutcomeDraw:
		return cat.Text("outcome.subtitle.draw", map[string]any{"Reason": reason}, "Game drawn by "+reason)
	case o.ByTime:
		return cat.Text("outcome.subtitle.time", map[string]any{"Winner": winner}, winner+" wins on time")
	default:
		return cat.Text("outcome.subtitle.win", map[string]any{"Winner": winner, "Reason": reason}, winner+" wins by "+reason)
	}
}
