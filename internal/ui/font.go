// Package ui implements the desktop client using Ebitengine.
package ui

import (
	"bytes"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	// Font sources, sized per call so text follows UIScale
	regularSource *text.GoTextFaceSource
	boldSource    *text.GoTextFaceSource
)

const (
	defaultFontSize = 14.0
	titleFontSize   = 16.0
)

func init() {
	initFonts()
}

func initFonts() {
	var err error
	regularSource, err = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("[ui] failed to load regular font: %v", err)
		return
	}
	boldSource, err = text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		log.Printf("[ui] failed to load bold font: %v", err)
	}
}

// GetRegularFace returns the regular face at the current scale.
func GetRegularFace() *text.GoTextFace {
	return GetFaceWithSize(defaultFontSize)
}

// GetBoldFace returns the title face at the current scale.
func GetBoldFace() *text.GoTextFace {
	if boldSource == nil {
		return GetFaceWithSize(titleFontSize)
	}
	return &text.GoTextFace{Source: boldSource, Size: titleFontSize * UIScale}
}

// GetFaceWithSize returns a regular face of a logical size.
func GetFaceWithSize(size float64) *text.GoTextFace {
	if regularSource == nil {
		return nil
	}
	return &text.GoTextFace{Source: regularSource, Size: size * UIScale}
}

// MeasureText returns the logical width and height of s.
func MeasureText(s string, face *text.GoTextFace) (width, height float64) {
	if face == nil {
		return 0, 0
	}
	w, h := text.Measure(s, face, 0)
	return w / UIScale, h / UIScale
}

// drawText draws s with its top-left corner at logical (x, y).
func drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y float64, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x*UIScale, y*UIScale)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// drawTextCentered draws s centered on logical (cx, cy).
func drawTextCentered(screen *ebiten.Image, s string, face *text.GoTextFace, cx, cy float64, c color.Color) {
	w, h := MeasureText(s, face)
	drawText(screen, s, face, cx-w/2, cy-h/2, c)
}

// Logical to device coordinates.
func scaleF(v int) float32 {
	return float32(float64(v) * UIScale)
}

func scaleD(v int) float64 {
	return float64(v) * UIScale
}
