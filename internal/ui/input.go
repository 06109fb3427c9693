package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// mouseState is the left button and wheel as sampled in one frame.
type mouseState struct {
	x, y     int // Logical coordinates
	wheel    float64
	down     bool
	pressed  bool
	released bool
}

// InputHandler samples mouse state once per frame so every widget sees the
// same snapshot. Keyboard queries go straight to inpututil.
type InputHandler struct {
	cur mouseState
}

// NewInputHandler creates a new input handler.
func NewInputHandler() *InputHandler {
	return &InputHandler{}
}

// Update samples the mouse. Call once at the start of each frame.
func (ih *InputHandler) Update() {
	x, y := ebiten.CursorPosition()
	s := max(UIScale, 1.0)
	_, wheel := ebiten.Wheel()
	ih.cur = mouseState{
		x:        int(float64(x) / s),
		y:        int(float64(y) / s),
		wheel:    wheel,
		down:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
}

// MousePosition returns the cursor in logical coordinates.
func (ih *InputHandler) MousePosition() (int, int) {
	return ih.cur.x, ih.cur.y
}

// WheelY returns the vertical scroll of this frame.
func (ih *InputHandler) WheelY() float64 {
	return ih.cur.wheel
}

func (ih *InputHandler) IsLeftJustPressed() bool  { return ih.cur.pressed }
func (ih *InputHandler) IsLeftJustReleased() bool { return ih.cur.released }
func (ih *InputHandler) IsLeftPressed() bool      { return ih.cur.down }

// IsInBounds reports whether the cursor lies in the logical rectangle.
func (ih *InputHandler) IsInBounds(x, y, w, h int) bool {
	mx, my := ih.cur.x, ih.cur.y
	return mx >= x && mx < x+w && my >= y && my < y+h
}

// IsKeyJustPressed reports whether key went down this frame.
func IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}
