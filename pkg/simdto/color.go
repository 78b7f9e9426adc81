package simdto

import "strings"

// Color identifies a side of the board.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Colors lists both sides in board order.
var Colors = [2]Color{White, Black}

func (c Color) Valid() bool { return c == White || c == Black }

// Opponent returns the other side. Unknown colors map to themselves.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return c
	}
}

// Title capitalises the color for display ("White").
func (c Color) Title() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseColor accepts "white"/"black" and the one-letter forms.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return "", false
	}
}
