package history

import (
	"github.com/elbionredenica/simchess/pkg/simdto"
)

// Kind distinguishes committed turns from rejected attempts.
type Kind int

const (
	Legal Kind = iota
	Illegal
)

func (k Kind) String() string {
	if k == Illegal {
		return "illegal"
	}
	return "legal"
}

// Record is one immutable ledger entry.
type Record struct {
	Kind Kind   `json:"kind"`
	Turn int    `json:"turn"`
	FEN  string `json:"fen"`

	// Realized SAN for legal turns.
	White string `json:"white,omitempty"`
	Black string `json:"black,omitempty"`

	// Intended carries the submitted moves as sent; IntendedSAN the same moves
	// in SAN when they could be decoded against the pre-turn position.
	Intended    simdto.MovePair `json:"intended"`
	IntendedSAN simdto.MovePair `json:"intended_san"`

	Reason string `json:"reason,omitempty"`
}

// Initial is the turn-0 anchor.
func Initial(fen string) Record {
	return Record{Kind: Legal, Turn: 0, FEN: fen}
}

// Nav holds the enabled state of the four navigation controls.
type Nav struct {
	First bool
	Prev  bool
	Next  bool
	Last  bool
}

// View is what a presenter needs to draw the ledger.
type View struct {
	Entries  []Entry
	Selected int
	Viewing  bool
	Nav      Nav
	FEN      string
}

// Ledger is the append-only turn log. It is owned by a single session loop
// and is not safe for concurrent use.
type Ledger struct {
	records   []Record
	cursor    int
	viewing   bool
	listeners []func(View)
}

type Option func(*Ledger)

// WithListener registers a callback run after every append or navigation.
func WithListener(fn func(View)) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.listeners = append(l.listeners, fn)
		}
	}
}

func New(initialFEN string, opts ...Option) *Ledger {
	l := &Ledger{records: []Record{Initial(initialFEN)}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds r and makes it current. Viewing history ends.
func (l *Ledger) Append(r Record) {
	l.records = append(l.records, r)
	l.cursor = len(l.records) - 1
	l.viewing = false
	l.emit()
}

// Navigate shows record i without touching the ledger or live state.
func (l *Ledger) Navigate(i int) error {
	if i < 0 || i >= len(l.records) {
		return ErrIndexOutOfRange
	}
	l.cursor = i
	l.viewing = true
	l.emit()
	return nil
}

// JumpToLatest returns to the live record.
func (l *Ledger) JumpToLatest() {
	l.cursor = len(l.records) - 1
	l.viewing = false
	l.emit()
}

func (l *Ledger) First() error { return l.Navigate(0) }

func (l *Ledger) Prev() error {
	if l.cursor <= 0 {
		return ErrIndexOutOfRange
	}
	return l.Navigate(l.cursor - 1)
}

func (l *Ledger) Next() error {
	if l.cursor >= len(l.records)-1 {
		return ErrIndexOutOfRange
	}
	return l.Navigate(l.cursor + 1)
}

// Last behaves like JumpToLatest.
func (l *Ledger) Last() error {
	l.JumpToLatest()
	return nil
}

func (l *Ledger) Len() int { return len(l.records) }

func (l *Ledger) At(i int) (Record, bool) {
	if i < 0 || i >= len(l.records) {
		return Record{}, false
	}
	return l.records[i], true
}

func (l *Ledger) Latest() Record { return l.records[len(l.records)-1] }

// ConfirmedFEN is the position of the newest record.
func (l *Ledger) ConfirmedFEN() string { return l.Latest().FEN }

// LastLegalTurn is the turn number of the newest legal record (0 for the anchor).
func (l *Ledger) LastLegalTurn() int {
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].Kind == Legal {
			return l.records[i].Turn
		}
	}
	return 0
}

// HasMoves reports whether any turn beyond the anchor has been committed.
func (l *Ledger) HasMoves() bool { return l.LastLegalTurn() > 0 }

func (l *Ledger) Cursor() int { return l.cursor }

func (l *Ledger) Viewing() bool { return l.viewing }

// Records returns a copy of the ledger.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) Nav() Nav {
	last := len(l.records) - 1
	return Nav{
		First: l.cursor > 0,
		Prev:  l.cursor > 0,
		Next:  l.cursor < last,
		Last:  l.cursor < last && l.viewing,
	}
}

func (l *Ledger) View() View {
	return View{
		Entries:  l.entries(),
		Selected: l.cursor,
		Viewing:  l.viewing,
		Nav:      l.Nav(),
		FEN:      l.records[l.cursor].FEN,
	}
}

func (l *Ledger) emit() {
	if len(l.listeners) == 0 {
		return
	}
	v := l.View()
	for _, fn := range l.listeners {
		fn(v)
	}
}
