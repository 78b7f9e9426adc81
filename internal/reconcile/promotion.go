package reconcile

import (
	"strings"

	"github.com/elbionredenica/simchess/pkg/simdto"
)

// PromotionPolicy picks the promotion suffix for a pawn landing on its far
// rank. An empty suffix sends the move without one and leaves the choice to
// the authority.
type PromotionPolicy interface {
	Promotion(c simdto.Color, from, to string) string
}

// PromotionFunc adapts a function to PromotionPolicy.
type PromotionFunc func(c simdto.Color, from, to string) string

func (f PromotionFunc) Promotion(c simdto.Color, from, to string) string { return f(c, from, to) }

// FixedPromotion always promotes to piece ("q", "n", "r" or "b").
func FixedPromotion(piece string) PromotionPolicy {
	p := strings.ToLower(strings.TrimSpace(piece))
	return PromotionFunc(func(simdto.Color, string, string) string { return p })
}

// AutoQueen is the default policy.
var AutoQueen = FixedPromotion("q")

// NoPromotion never appends a suffix.
var NoPromotion = FixedPromotion("")

// PolicyByName maps the configured policy name to a PromotionPolicy.
func PolicyByName(name string) (PromotionPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "queen":
		return AutoQueen, true
	case "knight":
		return FixedPromotion("n"), true
	case "rook":
		return FixedPromotion("r"), true
	case "bishop":
		return FixedPromotion("b"), true
	case "none":
		return NoPromotion, true
	default:
		return nil, false
	}
}

// farRank reports whether square is the promotion rank for c.
func farRank(c simdto.Color, square string) bool {
	if len(square) != 2 {
		return false
	}
	if c == simdto.Black {
		return square[1] == '1'
	}
	return square[1] == '8'
}
