package simdto

// ClockSeconds carries remaining seconds per side.
type ClockSeconds struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func (c ClockSeconds) Get(color Color) int {
	if color == Black {
		return c.Black
	}
	return c.White
}

// ColorCounts is a per-side counter pair.
type ColorCounts struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func (c ColorCounts) Get(color Color) int {
	if color == Black {
		return c.Black
	}
	return c.White
}

// MovePair holds one optional string per side (moves, SAN, reasons).
type MovePair struct {
	White string `json:"white,omitempty"`
	Black string `json:"black,omitempty"`
}

func (p MovePair) Get(color Color) string {
	if color == Black {
		return p.Black
	}
	return p.White
}

func (p MovePair) Empty() bool { return p.White == "" && p.Black == "" }

// ValidMoves reports per-side acceptance of the submitted moves.
// A nil pointer means the authority did not report that side.
type ValidMoves struct {
	White *bool `json:"white,omitempty"`
	Black *bool `json:"black,omitempty"`
}

// Rejected is true only when the authority explicitly rejected color's move.
func (v ValidMoves) Rejected(color Color) bool {
	p := v.White
	if color == Black {
		p = v.Black
	}
	return p != nil && !*p
}

// GameState is the authoritative game snapshot pushed with most events.
type GameState struct {
	GameID                string        `json:"game_id"`
	FEN                   string        `json:"fen"`
	TurnNumber            int           `json:"turn_number"`
	IllegalAttempt        int           `json:"illegal_attempt"`
	WhiteReady            bool          `json:"white_ready"`
	BlackReady            bool          `json:"black_ready"`
	GameOver              bool          `json:"game_over"`
	Winner                Color         `json:"winner,omitempty"`
	WinReason             string        `json:"win_reason,omitempty"`
	DrawReason            string        `json:"draw_reason,omitempty"`
	MutualIllegalCount    int           `json:"mutual_illegal_count"`
	OneSidedIllegalCounts ColorCounts   `json:"one_sided_illegal_counts"`
	OneSidedThreshold     int           `json:"one_sided_threshold"`
	PenaltySeconds        int           `json:"penalty_seconds"`
	ClockSeconds          *ClockSeconds `json:"clock_seconds,omitempty"`
	LastIllegalMoves      MovePair      `json:"last_illegal_moves"`
}

func (s GameState) Ready(color Color) bool {
	if color == Black {
		return s.BlackReady
	}
	return s.WhiteReady
}

// HasIllegalities reports whether any illegality counter is non-zero.
func (s GameState) HasIllegalities() bool {
	return s.MutualIllegalCount > 0 || s.OneSidedIllegalCounts.White > 0 || s.OneSidedIllegalCounts.Black > 0
}

// Penalty is a clock deduction applied by the authority.
type Penalty struct {
	Color   Color `json:"color"`
	Seconds int   `json:"seconds"`
}

// MoveResult is the turn resolution attached to moves_processed.
type MoveResult struct {
	TurnComplete   bool       `json:"turn_complete"`
	ValidMoves     ValidMoves `json:"valid_moves"`
	IllegalReason  MovePair   `json:"illegal_reason"`
	IntendedMoves  MovePair   `json:"intended_moves"`
	MovesSAN       MovePair   `json:"moves_san"`
	PenaltyApplied *Penalty   `json:"penalty_applied,omitempty"`
	IllegalAttempt int        `json:"illegal_attempt,omitempty"`
	IllegalityType string     `json:"illegality_type,omitempty"`
	GameOver       bool       `json:"game_over,omitempty"`
	Draw           bool       `json:"draw,omitempty"`
	DrawReason     string     `json:"draw_reason,omitempty"`
	DrawReasonText string     `json:"draw_reason_text,omitempty"`
	Winner         Color      `json:"winner,omitempty"`
	WinReason      string     `json:"win_reason,omitempty"`
	KingCaptured   bool       `json:"king_captured,omitempty"`
	Checkmate      bool       `json:"checkmate,omitempty"`
	FEN            string     `json:"fen,omitempty"`
}

// Terminal reports whether the resolution itself ends the game.
func (r MoveResult) Terminal() bool {
	return r.GameOver || r.Draw || r.Winner != ""
}
