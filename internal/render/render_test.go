package render

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/elbionredenica/simchess/internal/archive"
	"github.com/elbionredenica/simchess/pkg/simdto"
)

const loneKing = "8/8/8/8/8/8/8/K7 w - - 0 1"

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRenderPNGDimensions(t *testing.T) {
	data, err := RenderPNG(context.Background(), loneKing, Options{Header: "Game g1", Footer: "10:00  10:00"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 8*defaultSquareSize+2*sideMargin || b.Dy() != 8*defaultSquareSize+topMargin+bottomMargin {
		t.Fatalf("bounds = %v", b)
	}
}

func TestOrientation(t *testing.T) {
	size := 40
	white, err := Render(context.Background(), loneKing, Options{SquareSize: size})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// a point inside the disc but clear of the letter
	at := func(col, row int) color.RGBA {
		x := sideMargin + col*size + size/2 + size/4
		y := topMargin + row*size + size/2
		return rgba(white.At(x, y))
	}
	if at(0, 7) != whiteDiscFill {
		t.Fatalf("a1 should hold the king disc from white's side, got %v", at(0, 7))
	}
	if at(7, 0) != darkSquare {
		t.Fatalf("h8 should be an empty dark square, got %v", at(7, 0))
	}

	black, err := Render(context.Background(), loneKing, Options{SquareSize: size, Orientation: simdto.Black})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	x := sideMargin + 7*size + size/2 + size/4
	y := topMargin + size/2
	if got := rgba(black.At(x, y)); got != whiteDiscFill {
		t.Fatalf("a1 should be top right from black's side, got %v", got)
	}
}

func TestHighlightTintsSquares(t *testing.T) {
	size := 40
	img, err := Render(context.Background(), loneKing, Options{SquareSize: size, Highlight: &Highlight{From: "e2", To: "e4"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// e4 is column 4, row 4 from the top
	got := rgba(img.At(sideMargin+4*size+2, topMargin+4*size+2))
	if got == lightSquare || got == darkSquare {
		t.Fatalf("e4 not highlighted: %v", got)
	}
}

func TestRenderRejectsBadFEN(t *testing.T) {
	for _, fen := range []string{"", "garbage"} {
		if _, err := RenderPNG(context.Background(), fen, Options{}); !errors.Is(err, ErrBadFEN) {
			t.Fatalf("fen %q: err = %v", fen, err)
		}
	}
}

func TestRenderHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderPNG(ctx, loneKing, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestSnapshotArchiver(t *testing.T) {
	dir := t.TempDir()
	a := SnapshotArchiver{Dir: filepath.Join(dir, "snaps")}
	g := archive.Game{GameID: "ab/cd", Color: simdto.Black, Result: "draw", FinalFEN: loneKing}
	if err := a.Archive(context.Background(), g); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	path := SnapshotPath(a.Dir, g.GameID)
	if filepath.Base(path) != "ab_cd.png" {
		t.Fatalf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}

	if err := (SnapshotArchiver{}).Archive(context.Background(), g); err != nil {
		t.Fatalf("empty dir should be a no-op: %v", err)
	}
}
