// Package render draws boards and piece sprites from SVG outlines.
package render

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/hailam/chessbot/internal/board"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Piece outlines on a 45x45 canvas. Each is a fragment of SVG elements
// drawn with the owner's fill and stroke.
var outlines = [board.NumKinds]string{
	board.Pawn: `<circle cx="22.5" cy="14" r="5"/>
<path d="M 17 23 C 17 19 28 19 28 23 L 30 34 L 15 34 Z"/>
<rect x="11" y="34" width="23" height="5" rx="1"/>`,

	board.Knight: `<path d="M 14 39 L 31 39 L 31 35 C 31 27 33 20 29 13 C 27 9 22 7 18 8 L 16 5 L 14 9 C 11 11 9 15 9 20 L 12 23 L 15 21 C 17 22 20 21 21 19 C 19 25 14 29 14 35 Z"/>
<circle cx="17" cy="13" r="1.2"/>`,

	board.Bishop: `<circle cx="22.5" cy="8" r="2.5"/>
<path d="M 22.5 10 C 15 15 14 23 17 28 L 28 28 C 31 23 30 15 22.5 10 Z"/>
<path d="M 15 28 L 30 28 L 31 33 L 14 33 Z"/>
<rect x="10" y="34" width="25" height="5" rx="1"/>`,

	board.Rook: `<path d="M 11 9 L 15 9 L 15 12 L 20 12 L 20 9 L 25 9 L 25 12 L 30 12 L 30 9 L 34 9 L 34 15 L 11 15 Z"/>
<rect x="14" y="15" width="17" height="17"/>
<rect x="11" y="32" width="23" height="3"/>
<rect x="9" y="35" width="27" height="4" rx="1"/>`,

	board.Queen: `<path d="M 9 14 L 14 27 L 16 12 L 20 26 L 22.5 10 L 25 26 L 29 12 L 31 27 L 36 14 L 33 32 L 12 32 Z"/>
<circle cx="9" cy="12" r="2"/>
<circle cx="16" cy="10" r="2"/>
<circle cx="22.5" cy="8" r="2"/>
<circle cx="29" cy="10" r="2"/>
<circle cx="36" cy="12" r="2"/>
<rect x="10" y="33" width="25" height="6" rx="1"/>`,

	board.King: `<path d="M 21 4 L 24 4 L 24 7 L 27 7 L 27 10 L 24 10 L 24 14 L 21 14 L 21 10 L 18 10 L 18 7 L 21 7 Z"/>
<path d="M 22.5 14 C 28 14 36 16 35 23 C 34 28 30 31 30 31 L 15 31 C 15 31 11 28 10 23 C 9 16 17 14 22.5 14 Z"/>
<rect x="11" y="32" width="23" height="7" rx="1"/>`,
}

// Palette is the fill and stroke of one side's pieces.
type Palette struct {
	Fill   string
	Stroke string
}

// Palettes for the two sides. The human plays the light pieces.
var (
	BotPalette   = Palette{Fill: "#2b2b2b", Stroke: "#f0f0f0"}
	HumanPalette = Palette{Fill: "#fafafa", Stroke: "#1e1e1e"}
)

// PaletteOf returns the palette used for owner's pieces.
func PaletteOf(o board.Owner) Palette {
	if o == board.Bot {
		return BotPalette
	}
	return HumanPalette
}

// PieceSVG returns a standalone SVG document for a piece.
func PieceSVG(k board.Kind, p Palette) string {
	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	fmt.Fprintf(&sb, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`, p.Fill, p.Stroke)
	sb.WriteString(outlines[k])
	sb.WriteString(`</g></svg>`)
	return sb.String()
}

type spriteKey struct {
	owner board.Owner
	kind  board.Kind
	size  int
}

var spriteCache sync.Map // spriteKey -> *image.RGBA

// Sprite returns the piece rasterised to a size x size image.
// Sprites are cached and must not be modified.
func Sprite(o board.Owner, k board.Kind, size int) (*image.RGBA, error) {
	if o == board.NoOwner || k >= board.NoKind || size <= 0 {
		return nil, fmt.Errorf("render: no sprite for %s %s at %d px", o, k, size)
	}
	key := spriteKey{o, k, size}
	if img, ok := spriteCache.Load(key); ok {
		return img.(*image.RGBA), nil
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(PieceSVG(k, PaletteOf(o))))
	if err != nil {
		return nil, fmt.Errorf("render: parse %s %s: %w", o, k, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	img, _ := spriteCache.LoadOrStore(key, rgba)
	return img.(*image.RGBA), nil
}
