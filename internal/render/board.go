package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/hailam/chessbot/internal/board"
	"golang.org/x/image/draw"
)

// Theme defines the board colors.
type Theme struct {
	LightSquare color.RGBA
	DarkSquare  color.RGBA
	LastMove    color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		LightSquare: color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:  color.RGBA{181, 136, 99, 255},  // Brown
		LastMove:    color.RGBA{205, 210, 106, 255},
	}
}

// Options control board rendering.
type Options struct {
	SquareSize  int
	Theme       Theme
	Highlight   []board.Square // Drawn in Theme.LastMove
	RenderScale int            // Sprites are rasterised this many times larger, then scaled down
}

// DefaultOptions returns 64 px squares in the default theme.
func DefaultOptions() Options {
	return Options{
		SquareSize:  64,
		Theme:       DefaultTheme(),
		RenderScale: 3,
	}
}

// SquareRect returns the pixel rectangle of sq. Rank 0 is drawn at the top,
// matching the text layout.
func SquareRect(sq board.Square, size int) image.Rectangle {
	x, y := sq.File()*size, sq.Rank()*size
	return image.Rect(x, y, x+size, y+size)
}

// Board draws pos into a new image.
func Board(pos *board.Position, opts Options) (*image.RGBA, error) {
	if opts.SquareSize <= 0 {
		opts.SquareSize = DefaultOptions().SquareSize
	}
	if opts.RenderScale < 1 {
		opts.RenderScale = 1
	}
	size := opts.SquareSize
	img := image.NewRGBA(image.Rect(0, 0, board.BoardSize*size, board.BoardSize*size))

	highlighted := make(map[board.Square]bool, len(opts.Highlight))
	for _, sq := range opts.Highlight {
		highlighted[sq] = true
	}

	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		c := opts.Theme.LightSquare
		if (sq.File()+sq.Rank())%2 == 1 {
			c = opts.Theme.DarkSquare
		}
		if highlighted[sq] {
			c = opts.Theme.LastMove
		}
		draw.Draw(img, SquareRect(sq, size), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		h, ok := pos.PieceAt(sq)
		if !ok {
			continue
		}
		pc := pos.Piece(h)
		sprite, err := Sprite(pc.Owner, pc.Kind, size*opts.RenderScale)
		if err != nil {
			return nil, err
		}
		draw.CatmullRom.Scale(img, SquareRect(sq, size), sprite, sprite.Bounds(), draw.Over, nil)
	}

	return img, nil
}

// WritePNG renders pos and encodes it as PNG.
func WritePNG(w io.Writer, pos *board.Position, opts Options) error {
	img, err := Board(pos, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
