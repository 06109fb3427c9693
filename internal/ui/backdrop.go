package ui

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// blurShader is one pass of a 9-tap Gaussian blur along Dir.
var blurShader = []byte(`
//kage:unit pixels

package main

var Dir vec2

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
    var result vec4

    result += imageSrc0At(srcPos - 4*Dir) * 0.0162
    result += imageSrc0At(srcPos - 3*Dir) * 0.0540
    result += imageSrc0At(srcPos - 2*Dir) * 0.1218
    result += imageSrc0At(srcPos - Dir) * 0.1954
    result += imageSrc0At(srcPos) * 0.2252
    result += imageSrc0At(srcPos + Dir) * 0.1954
    result += imageSrc0At(srcPos + 2*Dir) * 0.1218
    result += imageSrc0At(srcPos + 3*Dir) * 0.0540
    result += imageSrc0At(srcPos + 4*Dir) * 0.0162

    return result
}
`)

// Backdrop blurs and dims the frame behind a modal dialog.
type Backdrop struct {
	shader *ebiten.Shader
	pass1  *ebiten.Image
	pass2  *ebiten.Image
	sigma  float32
}

// NewBackdrop compiles the blur shader. Without it the backdrop falls back
// to a plain dimming overlay.
func NewBackdrop() *Backdrop {
	b := &Backdrop{sigma: 3}
	shader, err := ebiten.NewShader(blurShader)
	if err != nil {
		log.Printf("[ui] blur shader unavailable: %v", err)
		return b
	}
	b.shader = shader
	return b
}

func (b *Backdrop) ensureImages(w, h int) {
	if b.pass1 == nil || b.pass1.Bounds().Dx() != w || b.pass1.Bounds().Dy() != h {
		b.pass1 = ebiten.NewImage(w, h)
		b.pass2 = ebiten.NewImage(w, h)
	}
}

// Draw replaces the whole screen with a blurred copy of itself and darkens
// it by dim, in [0, 1].
func (b *Backdrop) Draw(screen *ebiten.Image, dim float64) {
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if b.shader != nil && w > 0 && h > 0 {
		b.ensureImages(w, h)
		b.pass1.Clear()
		b.pass1.DrawImage(screen, nil)

		b.pass2.Clear()
		b.pass2.DrawRectShader(w, h, b.shader, &ebiten.DrawRectShaderOptions{
			Uniforms: map[string]any{"Dir": []float32{b.sigma, 0}},
			Images:   [4]*ebiten.Image{b.pass1},
		})
		b.pass1.Clear()
		b.pass1.DrawRectShader(w, h, b.shader, &ebiten.DrawRectShaderOptions{
			Uniforms: map[string]any{"Dir": []float32{0, b.sigma}},
			Images:   [4]*ebiten.Image{b.pass2},
		})
		screen.DrawImage(b.pass1, nil)
	}

	fillRect(screen, 0, 0, ScreenWidth, ScreenHeight, color.RGBA{0, 0, 0, uint8(255 * dim)})
}
