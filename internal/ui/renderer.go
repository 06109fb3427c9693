package ui

import (
	"image/color"
	"math"
	"strconv"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Theme defines the color scheme of the client. Square colors are shared
// with the PNG renderer.
type Theme struct {
	render.Theme
	SelectedSquare color.RGBA
	TargetColor    color.RGBA
	LastMoveColor  color.RGBA
	HintColor      color.RGBA
	Background     color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		Theme:          render.DefaultTheme(),
		SelectedSquare: color.RGBA{247, 247, 105, 180},
		TargetColor:    color.RGBA{130, 151, 105, 200},
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		HintColor:      color.RGBA{80, 140, 220, 170},
		Background:     color.RGBA{40, 44, 52, 255},
	}
}

// Renderer draws the board and pieces in logical coordinates.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
}

// NewRenderer creates a new renderer.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
	}
}

// DrawBoard draws the squares and their coordinates.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	size := scaleF(r.squareSize)
	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		c := r.theme.LightSquare
		if (sq.File()+sq.Rank())%2 == 1 {
			c = r.theme.DarkSquare
		}
		x, y := r.SquareToScreen(sq)
		vector.DrawFilledRect(screen, scaleF(x), scaleF(y), size, size, c, false)
	}
	r.drawCoordinates(screen)
}

// drawCoordinates labels files along the bottom edge and ranks along the left edge.
func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	face := GetFaceWithSize(11)
	for i := 0; i < board.BoardSize; i++ {
		// Label in the color of the opposite square for contrast
		fileC, rankC := r.theme.DarkSquare, r.theme.DarkSquare
		if (i+board.BoardSize-1)%2 == 1 {
			fileC = r.theme.LightSquare
		}
		if i%2 == 1 {
			rankC = r.theme.LightSquare
		}
		label := strconv.Itoa(i)
		drawText(screen, label, face, float64((i+1)*r.squareSize-10), float64(r.boardSize-15), fileC)
		drawText(screen, label, face, 3, float64(i*r.squareSize+2), rankC)
	}
}

// DrawHighlights marks the last action, the selection and its targets.
func (r *Renderer) DrawHighlights(screen *ebiten.Image, pos *board.Position, selected board.Square, targets []board.Square, last board.Action) {
	if !last.IsNull() {
		r.highlightSquare(screen, last.From, r.theme.LastMoveColor)
		r.highlightSquare(screen, last.To, r.theme.LastMoveColor)
	}
	if selected != board.NoSquare {
		r.highlightSquare(screen, selected, r.theme.SelectedSquare)
	}
	for _, sq := range targets {
		r.drawTarget(screen, sq, !pos.IsEmpty(sq))
	}
}

// DrawHint draws an arrow for a suggested action.
func (r *Renderer) DrawHint(screen *ebiten.Image, a board.Action) {
	if a.IsNull() {
		return
	}
	fx, fy := r.squareCenter(a.From)
	tx, ty := r.squareCenter(a.To)
	width := scaleF(r.squareSize) * 0.12
	vector.StrokeLine(screen, fx, fy, tx, ty, width, r.theme.HintColor, true)

	// Arrow head
	angle := math.Atan2(float64(ty-fy), float64(tx-fx))
	headLen := float64(scaleF(r.squareSize)) * 0.3
	for _, side := range []float64{-0.5, 0.5} {
		hx := float64(tx) - headLen*math.Cos(angle+side)
		hy := float64(ty) - headLen*math.Sin(angle+side)
		vector.StrokeLine(screen, tx, ty, float32(hx), float32(hy), width, r.theme.HintColor, true)
	}
}

func (r *Renderer) squareCenter(sq board.Square) (float32, float32) {
	x, y := r.SquareToScreen(sq)
	half := r.squareSize / 2
	return scaleF(x + half), scaleF(y + half)
}

func (r *Renderer) highlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	if !sq.IsValid() {
		return
	}
	x, y := r.SquareToScreen(sq)
	vector.DrawFilledRect(screen, scaleF(x), scaleF(y), scaleF(r.squareSize), scaleF(r.squareSize), c, false)
}

// drawTarget draws a dot on an empty target and a ring on a capture.
func (r *Renderer) drawTarget(screen *ebiten.Image, sq board.Square, capture bool) {
	cx, cy := r.squareCenter(sq)
	size := scaleF(r.squareSize)
	if capture {
		vector.StrokeCircle(screen, cx, cy, size*0.45, size*0.07, r.theme.TargetColor, true)
		return
	}
	vector.DrawFilledCircle(screen, cx, cy, size*0.15, r.theme.TargetColor, true)
}

// DrawPieces draws all pieces except the one being dragged. Shake
// animations offset their square.
func (r *Renderer) DrawPieces(screen *ebiten.Image, pos *board.Position, dragSquare board.Square, anims *AnimationManager) {
	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		if sq == dragSquare {
			continue
		}
		h, ok := pos.PieceAt(sq)
		if !ok {
			continue
		}

		x, y := r.SquareToScreen(sq)
		var dx, dy float64
		if anims != nil {
			dx, dy = anims.GetShakeOffset(sq)
		}
		r.sprites.DrawPieceAt(screen, pos.Piece(h), float64(x)+dx, float64(y)+dy)
	}
}

// DrawDraggedPiece draws a piece centered on the logical mouse position.
func (r *Renderer) DrawDraggedPiece(screen *ebiten.Image, pc board.Piece, mouseX, mouseY int) {
	half := r.squareSize / 2
	r.sprites.DrawPieceAt(screen, pc, float64(mouseX-half), float64(mouseY-half))
}

// SquareToScreen converts a square to the logical coordinates of its
// top-left corner. Rank 0 is at the top, where the bot's pieces start.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	return sq.File() * r.squareSize, sq.Rank() * r.squareSize
}

// ScreenToSquare converts logical coordinates to a square.
func (r *Renderer) ScreenToSquare(x, y int) board.Square {
	if x < 0 || x >= r.boardSize || y < 0 || y >= r.boardSize {
		return board.NoSquare
	}
	return board.NewSquare(x/r.squareSize, y/r.squareSize)
}

// SquareSize returns the logical size of one square.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}
