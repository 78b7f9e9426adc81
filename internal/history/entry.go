package history

import (
	"fmt"
	"strings"
)

// DefaultIllegalReason is shown when the authority gave no reason.
const DefaultIllegalReason = "Illegal Attempt"

var ErrIndexOutOfRange = errf("history index out of range")

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

// Entry is one visible line of the move list. The turn-0 anchor has no entry.
type Entry struct {
	Index    int
	Turn     int
	Illegal  bool
	Selected bool

	White string
	Black string

	// Annotations are set only when the realized move differs from what was intended.
	WhiteIntended string
	BlackIntended string

	Reason string
}

func (l *Ledger) entries() []Entry {
	out := make([]Entry, 0, len(l.records))
	for i, r := range l.records {
		if r.Turn <= 0 {
			continue
		}
		e := Entry{Index: i, Turn: r.Turn, Selected: i == l.cursor}
		if r.Kind == Illegal {
			e.Illegal = true
			e.White = orPlaceholder(r.Intended.White)
			e.Black = orPlaceholder(r.Intended.Black)
			e.Reason = r.Reason
			if e.Reason == "" {
				e.Reason = DefaultIllegalReason
			}
		} else {
			e.White = r.White
			e.Black = r.Black
			e.WhiteIntended = annotation(r.White, r.IntendedSAN.White, r.Intended.White)
			e.BlackIntended = annotation(r.Black, r.IntendedSAN.Black, r.Intended.Black)
		}
		out = append(out, e)
	}
	return out
}

func orPlaceholder(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func annotation(realized, intendedSAN, intendedRaw string) string {
	if realized == "" {
		return ""
	}
	intended := intendedSAN
	if intended == "" {
		intended = intendedRaw
	}
	if intended == "" || intended == realized {
		return ""
	}
	return intended
}

// Line renders e as plain text. Illegal attempts are struck through.
func (e Entry) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. ", e.Turn)
	if e.Illegal {
		b.WriteString(Strike(e.White))
		b.WriteString(" | ")
		b.WriteString(Strike(e.Black))
		b.WriteString("  ")
		b.WriteString(e.Reason)
		return b.String()
	}
	b.WriteString(withIntent(e.White, e.WhiteIntended))
	if e.Black != "" {
		b.WriteString(" ")
		b.WriteString(withIntent(e.Black, e.BlackIntended))
	}
	return b.String()
}

func withIntent(realized, intended string) string {
	if intended == "" {
		return realized
	}
	return realized + " (intended " + intended + ")"
}

// Strike overlays a combining long stroke on every rune of s.
func Strike(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		b.WriteRune('\u0336')
	}
	return b.String()
}
