package reconcile

import (
	"testing"

	"github.com/elbionredenica/simchess/pkg/simdto"
)

func TestPolicyByName(t *testing.T) {
	cases := map[string]string{
		"":       "q",
		"queen":  "q",
		"Knight": "n",
		"rook":   "r",
		"bishop": "b",
		"none":   "",
	}
	for name, want := range cases {
		p, ok := PolicyByName(name)
		if !ok {
			t.Fatalf("PolicyByName(%q) rejected", name)
		}
		if got := p.Promotion(simdto.White, "a7", "a8"); got != want {
			t.Fatalf("PolicyByName(%q) = %q, want %q", name, got, want)
		}
	}
	if _, ok := PolicyByName("king"); ok {
		t.Fatalf("unknown policy accepted")
	}
}

func TestFarRank(t *testing.T) {
	if !farRank(simdto.White, "a8") || farRank(simdto.White, "a1") {
		t.Fatalf("white far rank is 8")
	}
	if !farRank(simdto.Black, "h1") || farRank(simdto.Black, "h8") {
		t.Fatalf("black far rank is 1")
	}
	if farRank(simdto.White, "offboard") {
		t.Fatalf("non-square must not match")
	}
}

func TestValidFEN(t *testing.T) {
	if !ValidFEN(StartFEN) {
		t.Fatalf("start position rejected")
	}
	for _, bad := range []string{"", "   ", "not a fen"} {
		if ValidFEN(bad) {
			t.Fatalf("ValidFEN(%q) = true", bad)
		}
	}
}
