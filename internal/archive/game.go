package archive

import (
	"time"

	"github.com/google/uuid"

	"github.com/elbionredenica/simchess/internal/history"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

// Game is a finished game as seen by one client.
type Game struct {
	ID         string              `json:"id"`
	GameID     string              `json:"game_id"`
	Color      simdto.Color        `json:"color"`
	Result     string              `json:"result"`
	Winner     simdto.Color        `json:"winner,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	Turns      int                 `json:"turns"`
	Clocks     simdto.ClockSeconds `json:"clocks"`
	FinalFEN   string              `json:"final_fen"`
	Records    []history.Record    `json:"records"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// NewID returns a fresh archive id.
func NewID() string { return uuid.NewString() }

// IllegalAttempts counts rejected submissions in the ledger.
func (g Game) IllegalAttempts() int {
	n := 0
	for _, r := range g.Records {
		if r.Kind == history.Illegal {
			n++
		}
	}
	return n
}

// PGNResult maps the outcome to a PGN result token.
func (g Game) PGNResult() string {
	switch g.Result {
	case "draw":
		return "1/2-1/2"
	case "win", "loss":
		switch g.Winner {
		case simdto.White:
			return "1-0"
		case simdto.Black:
			return "0-1"
		}
	}
	return "*"
}
