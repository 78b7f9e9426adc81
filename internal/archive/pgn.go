package archive

import (
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/elbionredenica/simchess/internal/history"
)

// BuildPGN renders the ledger as PGN. Rejected attempts become comments in
// front of the turn that finally went through.
func BuildPGN(g Game) string {
	var b strings.Builder
	date := g.FinishedAt
	if date.IsZero() {
		date = time.Now()
	}
	result := g.PGNResult()

	b.WriteString("[Event \"Simultaneous Chess\"]\n")
	b.WriteString("[Site \"simchess\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString("[White \"?\"]\n")
	b.WriteString("[Black \"?\"]\n")
	if g.GameID != "" {
		b.WriteString(fmt.Sprintf("[GameId \"%s\"]\n", sanitizePGN(g.GameID)))
	}
	if len(g.Records) > 0 && !standardStart(g.Records[0].FEN) {
		b.WriteString("[SetUp \"1\"]\n")
		b.WriteString(fmt.Sprintf("[FEN \"%s\"]\n", sanitizePGN(g.Records[0].FEN)))
	}
	if g.Reason != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(g.Reason))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

	for _, r := range g.Records {
		if r.Turn <= 0 {
			continue
		}
		if r.Kind == history.Illegal {
			b.WriteString(fmt.Sprintf("{turn %d illegal: %s | %s, %s} ",
				r.Turn,
				orDash(r.Intended.White),
				orDash(r.Intended.Black),
				sanitizeComment(r.Reason),
			))
			continue
		}
		b.WriteString(fmt.Sprintf("%d. %s", r.Turn, orDash(strings.TrimSpace(r.White))))
		if black := strings.TrimSpace(r.Black); black != "" {
			b.WriteString(" ")
			b.WriteString(black)
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func standardStart(fen string) bool {
	start := strings.Fields(nchess.NewGame().Position().String())
	got := strings.Fields(fen)
	if len(got) < 4 || len(start) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if got[i] != start[i] {
			return false
		}
	}
	return true
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "--"
	}
	return s
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}

func sanitizeComment(s string) string {
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
