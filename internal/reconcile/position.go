package reconcile

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/elbionredenica/simchess/pkg/simdto"
)

// StartFEN is used when the authority omits the initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// OffBoard is the drop target reported when a piece leaves the board.
const OffBoard = "offboard"

func parseSquare(s string) (nchess.Square, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return nchess.NoSquare, false
	}
	f, r := s[0], s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return nchess.NoSquare, false
	}
	return nchess.NewSquare(nchess.File(f-'a'), nchess.Rank(r-'1')), true
}

func loadPosition(fen string) (*nchess.Position, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, err
	}
	return nchess.NewGame(opt).Position(), nil
}

// ValidFEN reports whether fen is a position the board can display.
func ValidFEN(fen string) bool {
	if strings.TrimSpace(fen) == "" {
		return false
	}
	_, err := loadPosition(fen)
	return err == nil
}

func libColor(c simdto.Color) nchess.Color {
	if c == simdto.Black {
		return nchess.Black
	}
	return nchess.White
}

func promotionType(s string) nchess.PieceType {
	switch s {
	case "n":
		return nchess.Knight
	case "r":
		return nchess.Rook
	case "b":
		return nchess.Bishop
	default:
		return nchess.Queen
	}
}

func isPawn(p nchess.Piece) bool { return p.Type() == nchess.Pawn }

// ownPiece returns the piece on square if it belongs to c.
func ownPiece(fen, square string, c simdto.Color) (nchess.Piece, error) {
	pos, err := loadPosition(fen)
	if err != nil {
		return nchess.NoPiece, fmt.Errorf("load position: %w", err)
	}
	sq, ok := parseSquare(square)
	if !ok {
		return nchess.NoPiece, ErrInvalidSquare
	}
	piece := pos.Board().Piece(sq)
	if piece == nchess.NoPiece || piece.Color() != libColor(c) {
		return nchess.NoPiece, ErrNotYourPiece
	}
	return piece, nil
}

// optimisticFEN moves the piece from in.From to in.To without any legality
// check. Only the placement field changes.
func optimisticFEN(fen string, in Intent) (string, error) {
	pos, err := loadPosition(fen)
	if err != nil {
		return "", fmt.Errorf("load position: %w", err)
	}
	from, ok1 := parseSquare(in.From)
	to, ok2 := parseSquare(in.To)
	if !ok1 || !ok2 {
		return "", ErrInvalidSquare
	}
	squares := pos.Board().SquareMap()
	piece, ok := squares[from]
	if !ok || piece == nchess.NoPiece {
		return "", ErrNotYourPiece
	}
	delete(squares, from)
	if in.Promotion != "" && piece.Type() == nchess.Pawn {
		piece = nchess.NewPiece(promotionType(in.Promotion), piece.Color())
	}
	squares[to] = piece

	fields := strings.Fields(fen)
	fields[0] = nchess.NewBoard(squares).String()
	return strings.Join(fields, " "), nil
}

// intendedSAN renders a submitted UCI move in SAN against the pre-turn
// position with c to move. Returns "" when the move cannot be decoded.
func intendedSAN(fen string, c simdto.Color, uci string) string {
	uci = strings.ToLower(strings.TrimSpace(uci))
	if uci == "" {
		return ""
	}
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return ""
	}
	side := "w"
	if c == simdto.Black {
		side = "b"
	}
	if fields[1] != side {
		fields[1] = side
		fields[3] = "-"
	}
	pos, err := loadPosition(strings.Join(fields, " "))
	if err != nil {
		return ""
	}
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return ""
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv)
}
