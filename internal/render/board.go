package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/elbionredenica/simchess/pkg/simdto"
)

const (
	defaultSquareSize = 64
	sideMargin        = 28
	topMargin         = 56
	bottomMargin      = 44
	panelRadius       = 8
)

var ErrBadFEN = errors.New("render: invalid fen")

var (
	lightSquare    = color.RGBA{233, 207, 163, 255}
	darkSquare     = color.RGBA{187, 136, 96, 255}
	intentOverlay  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	backgroundFill = color.RGBA{22, 24, 34, 255}
	hudPanelColor  = color.NRGBA{R: 38, G: 42, B: 60, A: 255}
	hudTextColor   = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// Highlight marks the from and to squares of a move, in algebraic notation.
type Highlight struct {
	From string
	To   string
}

type Options struct {
	// Orientation is the side drawn at the bottom. Empty means white.
	Orientation simdto.Color
	Header      string
	Footer      string
	Highlight   *Highlight
	SquareSize  int
}

// RenderPNG draws the placement of fen as a PNG.
func RenderPNG(ctx context.Context, fen string, opts Options) ([]byte, error) {
	img, err := Render(ctx, fen, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws fen into an RGBA image.
func Render(ctx context.Context, fen string, opts Options) (*image.RGBA, error) {
	board, err := boardFromFEN(fen)
	if err != nil {
		return nil, err
	}
	size := opts.SquareSize
	if size <= 0 {
		size = defaultSquareSize
	}
	flip := opts.Orientation == simdto.Black

	boardSize := size * 8
	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundFill), image.Point{}, imagedraw.Src)
	origin := image.Point{X: sideMargin, Y: topMargin}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	drawSquares(img, size, origin, flip)
	if h := opts.Highlight; h != nil {
		for _, name := range []string{h.From, h.To} {
			if sq, ok := parseSquare(name); ok {
				imagedraw.Draw(img, squareRect(sq, size, origin, flip), image.NewUniform(intentOverlay), image.Point{}, imagedraw.Over)
			}
		}
	}
	if err := drawPieces(img, drawer, board, size, origin, flip); err != nil {
		return nil, err
	}
	drawCoordinates(drawer, size, origin, flip)
	drawPanel(img, drawer, image.Rect(origin.X, 12, origin.X+boardSize, topMargin-12), opts.Header)
	bottom := origin.Y + boardSize
	drawPanel(img, drawer, image.Rect(origin.X, bottom+18, origin.X+boardSize, bottom+bottomMargin-4), opts.Footer)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return img, nil
}

func boardFromFEN(fen string) (*nchess.Board, error) {
	if strings.TrimSpace(fen) == "" {
		return nil, ErrBadFEN
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFEN, err)
	}
	return nchess.NewGame(opt).Position().Board(), nil
}

func parseSquare(name string) (nchess.Square, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return nchess.NoSquare, false
	}
	return nchess.NewSquare(nchess.File(name[0]-'a'), nchess.Rank(name[1]-'1')), true
}

// squareRect maps a square to pixels; flip puts rank 8 at the bottom.
func squareRect(sq nchess.Square, size int, origin image.Point, flip bool) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	if flip {
		col = 7 - col
		row = 7 - row
	}
	x := origin.X + col*size
	y := origin.Y + row*size
	return image.Rect(x, y, x+size, y+size)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func eachSquare(fn func(sq nchess.Square)) {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			fn(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
		}
	}
}

func drawSquares(dst imagedraw.Image, size int, origin image.Point, flip bool) {
	eachSquare(func(sq nchess.Square) {
		imagedraw.Draw(dst, squareRect(sq, size, origin, flip), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	})
}

func drawPieces(dst *image.RGBA, drawer *font.Drawer, board *nchess.Board, size int, origin image.Point, flip bool) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		disc, err := renderDisc(piece.Color(), size)
		if err != nil {
			return err
		}
		rect := squareRect(sq, size, origin, flip)
		imagedraw.Draw(dst, rect, disc, image.Point{}, imagedraw.Over)

		drawer.Src = image.NewUniform(letterColor(piece))
		ascent := drawer.Face.Metrics().Ascent.Ceil()
		drawCenteredText(drawer, pieceLetter(piece), rect.Min.X+size/2, rect.Min.Y+(size+ascent)/2-1)
	}
	return nil
}

func drawCoordinates(drawer *font.Drawer, size int, origin image.Point, flip bool) {
	drawer.Src = image.NewUniform(coordColor)
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		file, rank := i, 7-i
		if flip {
			file, rank = 7-i, i
		}
		fileLabel := string(rune('a' + file))
		rankLabel := string(rune('1' + rank))
		drawCenteredText(drawer, fileLabel, origin.X+i*size+size/2, origin.Y+8*size+ascent+2)
		drawCenteredText(drawer, rankLabel, origin.X-sideMargin/2, origin.Y+i*size+(size+ascent)/2)
	}
}

func drawPanel(img *image.RGBA, drawer *font.Drawer, rect image.Rectangle, text string) {
	text = strings.TrimSpace(text)
	if text == "" || rect.Empty() {
		return
	}
	drawRoundedPanel(img, rect, panelRadius, hudPanelColor)
	text = truncateWithEllipsis(drawer.Face, text, rect.Dx()-16)
	drawer.Src = image.NewUniform(hudTextColor)
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	drawCenteredText(drawer, text, rect.Min.X+rect.Dx()/2, rect.Min.Y+(rect.Dy()+ascent)/2-1)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	if maxWidth <= 0 || face == nil {
		return text
	}
	d := font.Drawer{Face: face}
	if d.MeasureString(text).Round() <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if d.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return "..."
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	fill := image.NewUniform(clr)
	if r := rect.Dy() / 2; radius > r {
		radius = r
	}
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	for _, c := range []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	} {
		m := &circle{c: c, r: radius}
		imagedraw.DrawMask(img, m.Bounds(), fill, image.Point{}, m, m.Bounds().Min, imagedraw.Over)
	}
}

// circle is an alpha mask for a filled disc.
type circle struct {
	c image.Point
	r int
}

func (m *circle) ColorModel() color.Model { return color.AlphaModel }

func (m *circle) Bounds() image.Rectangle {
	return image.Rect(m.c.X-m.r, m.c.Y-m.r, m.c.X+m.r+1, m.c.Y+m.r+1)
}

func (m *circle) At(x, y int) color.Color {
	dx, dy := x-m.c.X, y-m.c.Y
	if dx*dx+dy*dy <= m.r*m.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
