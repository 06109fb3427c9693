package ui

import (
	"log"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/render"
	"github.com/hajimehoshi/ebiten/v2"
)

// SpriteManager holds one GPU image per owner and kind.
type SpriteManager struct {
	pieces      [2][board.NumKinds]*ebiten.Image
	size        int     // Logical square size
	renderScale float64 // Rasterise larger than shown for sharp scaling
}

// NewSpriteManager rasterises all piece sprites for squares of the given size.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		size:        size,
		renderScale: 3.0,
	}
	sm.loadPieces()
	return sm
}

func (sm *SpriteManager) loadPieces() {
	renderSize := int(float64(sm.size) * sm.renderScale)

	for _, o := range []board.Owner{board.Bot, board.Human} {
		for k := board.Kind(0); int(k) < board.NumKinds; k++ {
			img, err := render.Sprite(o, k, renderSize)
			if err != nil {
				log.Printf("[ui] sprite %s %s: %v", o, k, err)
				continue
			}
			sm.pieces[o][k] = ebiten.NewImageFromImage(img)
		}
	}
}

// GetPiece returns the sprite of a piece, or nil.
func (sm *SpriteManager) GetPiece(pc board.Piece) *ebiten.Image {
	if pc.Owner > board.Human || int(pc.Kind) >= board.NumKinds {
		return nil
	}
	return sm.pieces[pc.Owner][pc.Kind]
}

// DrawPieceAt draws a piece with its top-left corner at logical (x, y).
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, pc board.Piece, x, y float64) {
	sprite := sm.GetPiece(pc)
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := UIScale / sm.renderScale
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x*UIScale, y*UIScale)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}
