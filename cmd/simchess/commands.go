package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elbionredenica/simchess/internal/adapter/termpresenter"
	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/internal/render"
	"github.com/elbionredenica/simchess/internal/session"
)

const helpText = `commands:
  move <from><to> | move <from> <to>   set the move intent (alias: drop)
  submit                               send the intent
  reset                                drop the intent
  resign                               resign the game
  history first|prev|next|last|<n>     browse the move list
  board                                show the displayed position
  clocks                               show both clocks
  snapshot <file.png>                  save the displayed position
  quit`

var errUsage = errors.New("bad command, type 'help'")

// runner turns one input line into session calls.
type runner struct {
	sess *session.Session
	pres *termpresenter.Presenter
	out  io.Writer
}

// run executes line and reports whether the user asked to quit.
func (r *runner) run(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
		return false, nil
	case "move", "drop":
		from, to, err := splitMove(args)
		if err != nil {
			return false, err
		}
		return false, r.sess.Do(ctx, func(c *reconcile.Controller) error {
			_, err := c.Drop(from, to)
			return err
		})
	case "submit":
		return false, r.sess.Do(ctx, func(c *reconcile.Controller) error { return c.Submit() })
	case "reset":
		return false, r.sess.Do(ctx, func(c *reconcile.Controller) error { return c.Reset() })
	case "resign":
		return false, r.sess.Resign(ctx)
	case "history":
		return false, r.history(ctx, args)
	case "board":
		return false, r.sess.Do(ctx, func(c *reconcile.Controller) error {
			if c.Ledger() == nil {
				return reconcile.ErrNotJoined
			}
			r.pres.ShowPosition(c.DisplayedFEN(), c.Ledger().Viewing())
			return nil
		})
	case "clocks":
		r.pres.Clocks()
		return false, nil
	case "snapshot":
		if len(args) != 1 {
			return false, errUsage
		}
		return false, r.snapshot(ctx, args[0])
	}
	return false, errUsage
}

func (r *runner) history(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	var op func(*reconcile.Controller) error
	switch strings.ToLower(args[0]) {
	case "first":
		op = (*reconcile.Controller).First
	case "prev":
		op = (*reconcile.Controller).Prev
	case "next":
		op = (*reconcile.Controller).Next
	case "last", "latest":
		op = (*reconcile.Controller).Last
	default:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return errUsage
		}
		op = func(c *reconcile.Controller) error { return c.Navigate(n) }
	}
	return r.sess.Do(ctx, op)
}

func (r *runner) snapshot(ctx context.Context, path string) error {
	opts := render.Options{}
	var fen string
	err := r.sess.Do(ctx, func(c *reconcile.Controller) error {
		if c.Ledger() == nil {
			return reconcile.ErrNotJoined
		}
		fen = c.DisplayedFEN()
		opts.Orientation = c.Color()
		if in, ok := c.Intent(); ok && !c.Ledger().Viewing() {
			opts.Highlight = &render.Highlight{From: in.From, To: in.To}
		}
		return nil
	})
	if err != nil {
		return err
	}
	opts.Header = r.pres.Caption()
	if err := render.WriteFile(ctx, path, fen, opts); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	fmt.Fprintf(r.out, "saved %s\n", path)
	return nil
}

// splitMove accepts "e2e4", "e7e8q" or "e2 e4". A promotion letter is
// ignored; the promotion policy decides.
func splitMove(args []string) (from, to string, err error) {
	switch len(args) {
	case 1:
		s := strings.ToLower(args[0])
		if len(s) != 4 && len(s) != 5 {
			return "", "", errUsage
		}
		return s[:2], s[2:4], nil
	case 2:
		return strings.ToLower(args[0]), strings.ToLower(args[1]), nil
	}
	return "", "", errUsage
}
