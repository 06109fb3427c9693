package ui

import (
	"errors"
	"image/color"
	"math"
	"time"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/match"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastError
	ToastSuccess
)

// Toast represents a notification message.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager stacks short notifications over the board.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast notification.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

func toastColors(t ToastType, alpha float64) (bg, fg color.RGBA) {
	fg = color.RGBA{255, 255, 255, uint8(255 * alpha)}
	switch t {
	case ToastWarning:
		return color.RGBA{180, 140, 20, uint8(220 * alpha)}, color.RGBA{40, 30, 0, uint8(255 * alpha)}
	case ToastError:
		return color.RGBA{180, 50, 50, uint8(220 * alpha)}, fg
	case ToastSuccess:
		return color.RGBA{50, 150, 50, uint8(220 * alpha)}, fg
	default:
		return color.RGBA{50, 100, 150, uint8(220 * alpha)}, fg
	}
}

// Draw renders all active toasts centered on the board.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	face := GetRegularFace()
	if face == nil {
		return
	}

	y := 50.0
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()

		// Fade in/out
		alpha := 1.0
		fadeTime := 0.2
		if elapsed < fadeTime {
			alpha = elapsed / fadeTime
		} else if elapsed > duration-fadeTime {
			alpha = math.Max(0, (duration-elapsed)/fadeTime)
		}
		bg, fg := toastColors(t.Type, alpha)

		w, h := MeasureText(t.Message, face)
		padding := 12.0
		boxW := w + padding*2
		boxH := h + padding*2
		x := float64(BoardSize)/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x*UIScale), float32(y*UIScale),
			float32(boxW*UIScale), float32(boxH*UIScale), bg, false)
		drawText(screen, t.Message, face, x+padding, y+padding, fg)

		y += boxH + 8
	}
}

// ShakeAnimation wobbles the piece on a square.
type ShakeAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Intensity float64
}

// FlashAnimation fades a colored overlay on a square.
type FlashAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Color     color.RGBA
}

// AnimationManager manages square animations.
type AnimationManager struct {
	shakes  []*ShakeAnimation
	flashes []*FlashAnimation
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake begins a shake animation on a square.
func (am *AnimationManager) StartShake(sq board.Square) {
	am.shakes = append(am.shakes, &ShakeAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  300 * time.Millisecond,
		Intensity: 8.0,
	})
}

// StartFlash begins a flash animation on a square.
func (am *AnimationManager) StartFlash(sq board.Square, c color.RGBA) {
	am.flashes = append(am.flashes, &FlashAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  400 * time.Millisecond,
		Color:     c,
	})
}

// Update removes expired animations.
func (am *AnimationManager) Update() {
	now := time.Now()

	shakes := am.shakes[:0]
	for _, s := range am.shakes {
		if now.Sub(s.StartTime) < s.Duration {
			shakes = append(shakes, s)
		}
	}
	am.shakes = shakes

	flashes := am.flashes[:0]
	for _, f := range am.flashes {
		if now.Sub(f.StartTime) < f.Duration {
			flashes = append(flashes, f)
		}
	}
	am.flashes = flashes
}

// GetShakeOffset returns the current logical offset of a square's piece.
func (am *AnimationManager) GetShakeOffset(sq board.Square) (float64, float64) {
	for _, s := range am.shakes {
		if s.Square != sq {
			continue
		}
		progress := time.Since(s.StartTime).Seconds() / s.Duration.Seconds()
		if progress >= 1.0 {
			return 0, 0
		}
		// Damped sine
		amplitude := s.Intensity * math.Exp(-5*progress)
		return amplitude * math.Sin(40*progress), 0
	}
	return 0, 0
}

// DrawFlashes renders all active flash overlays.
func (am *AnimationManager) DrawFlashes(screen *ebiten.Image, r *Renderer) {
	for _, f := range am.flashes {
		progress := time.Since(f.StartTime).Seconds() / f.Duration.Seconds()
		if progress >= 1.0 {
			continue
		}
		c := f.Color
		c.A = uint8(float64(c.A) * (1.0 - progress))

		x, y := r.SquareToScreen(f.Square)
		size := scaleF(r.SquareSize())
		vector.DrawFilledRect(screen, scaleF(x), scaleF(y), size, size, c, false)
	}
}

// FeedbackManager turns game events into toasts, animations and sounds.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
	audio      *AudioManager
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
		audio:      NewAudioManager(),
	}
}

// Update updates all feedback systems.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders all feedback overlays.
func (fm *FeedbackManager) Draw(screen *ebiten.Image, r *Renderer) {
	fm.animations.DrawFlashes(screen, r)
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for renderer integration.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// Audio returns the audio manager for settings access.
func (fm *FeedbackManager) Audio() *AudioManager {
	return fm.audio
}

// invalidMessage explains a rejected human action.
func invalidMessage(err error) string {
	switch {
	case errors.Is(err, match.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, match.ErrOwnPiece):
		return "Square occupied by your piece"
	case errors.Is(err, board.ErrIllegalAction):
		return "Invalid move for this piece"
	case errors.Is(err, board.ErrGameOver):
		return "The game is over"
	default:
		return "Invalid move"
	}
}

// OnInvalidAction reports a rejected human action.
func (fm *FeedbackManager) OnInvalidAction(from, to board.Square, err error) {
	fm.toasts.Show(invalidMessage(err), ToastWarning, 2*time.Second)
	fm.animations.StartShake(from)
	if to.IsValid() {
		fm.animations.StartFlash(to, color.RGBA{255, 80, 80, 150})
	}
	fm.audio.Play(SoundInvalid)
}

// OnAction plays the sound of a played action.
func (fm *FeedbackManager) OnAction(e match.Entry) {
	if e.Capture != 0 {
		fm.audio.Play(SoundCapture)
		return
	}
	fm.audio.Play(SoundMove)
}

// OnGameEnd announces the outcome.
func (fm *FeedbackManager) OnGameEnd(o match.Outcome) {
	switch o {
	case match.HumanWon:
		fm.toasts.Show(o.String(), ToastSuccess, 5*time.Second)
		fm.audio.Play(SoundWin)
	case match.BotWon:
		fm.toasts.Show(o.String(), ToastError, 5*time.Second)
		fm.audio.Play(SoundLoss)
	default:
		fm.toasts.Show(o.String(), ToastInfo, 5*time.Second)
		fm.audio.Play(SoundLoss)
	}
}

// OnError reports a failed bot decision.
func (fm *FeedbackManager) OnError(msg string) {
	fm.toasts.Show(msg, ToastError, 3*time.Second)
}
