package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const discSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">` +
	`<circle cx="50" cy="50" r="38" fill="%s" stroke="%s" stroke-width="5"/></svg>`

var (
	whiteDiscFill   = color.RGBA{248, 248, 248, 255}
	blackDiscFill   = color.RGBA{34, 34, 34, 255}
	whiteDiscLetter = color.RGBA{34, 34, 34, 255}
	blackDiscLetter = color.RGBA{240, 240, 240, 255}
)

type discKey struct {
	color nchess.Color
	size  int
}

var (
	discCache   = map[discKey]image.Image{}
	discCacheMu sync.RWMutex
)

// renderDisc rasterises the piece background for one side.
func renderDisc(c nchess.Color, size int) (image.Image, error) {
	key := discKey{color: c, size: size}
	discCacheMu.RLock()
	if img, ok := discCache[key]; ok {
		discCacheMu.RUnlock()
		return img, nil
	}
	discCacheMu.RUnlock()

	fill, stroke := "#f8f8f8", "#222222"
	if c == nchess.Black {
		fill, stroke = "#222222", "#f0f0f0"
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader([]byte(fmt.Sprintf(discSVG, fill, stroke))))
	if err != nil {
		return nil, fmt.Errorf("parse disc svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	discCacheMu.Lock()
	discCache[key] = img
	discCacheMu.Unlock()
	return img, nil
}

func pieceLetter(p nchess.Piece) string {
	switch p.Type() {
	case nchess.King:
		return "K"
	case nchess.Queen:
		return "Q"
	case nchess.Rook:
		return "R"
	case nchess.Bishop:
		return "B"
	case nchess.Knight:
		return "N"
	case nchess.Pawn:
		return "P"
	}
	return "?"
}

func letterColor(p nchess.Piece) color.Color {
	if p.Color() == nchess.Black {
		return blackDiscLetter
	}
	return whiteDiscLetter
}
