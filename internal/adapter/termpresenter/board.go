package termpresenter

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/elbionredenica/simchess/pkg/simdto"
)

// Board draws the placement of fen as text, with orientation's pieces at
// the bottom. An unparsable FEN yields "".
func Board(fen string, orientation simdto.Color) string {
	if strings.TrimSpace(fen) == "" {
		return ""
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return ""
	}
	board := nchess.NewGame(opt).Position().Board()

	ranks := []int{7, 6, 5, 4, 3, 2, 1, 0}
	files := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if orientation == simdto.Black {
		ranks = []int{0, 1, 2, 3, 4, 5, 6, 7}
		files = []int{7, 6, 5, 4, 3, 2, 1, 0}
	}

	var b strings.Builder
	for _, r := range ranks {
		b.WriteByte(byte('1' + r))
		for _, f := range files {
			b.WriteByte(' ')
			b.WriteString(glyph(board.Piece(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))))
		}
		b.WriteByte('\n')
	}
	b.WriteByte(' ')
	for _, f := range files {
		b.WriteByte(' ')
		b.WriteByte(byte('a' + f))
	}
	return b.String()
}

func glyph(p nchess.Piece) string {
	if p == nchess.NoPiece {
		return "."
	}
	var s string
	switch p.Type() {
	case nchess.King:
		s = "K"
	case nchess.Queen:
		s = "Q"
	case nchess.Rook:
		s = "R"
	case nchess.Bishop:
		s = "B"
	case nchess.Knight:
		s = "N"
	case nchess.Pawn:
		s = "P"
	default:
		return "?"
	}
	if p.Color() == nchess.Black {
		return strings.ToLower(s)
	}
	return s
}
