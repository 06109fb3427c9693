package ui

import (
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/storage"
	"github.com/hajimehoshi/ebiten/v2"
)

// Welcome screen dimensions
const (
	WelcomeWidth  = 400
	WelcomeHeight = 380
	WelcomePadX   = 32
)

// WelcomeScreen asks for a name and a difficulty on first launch.
type WelcomeScreen struct {
	visible bool
	x, y    int

	nameInput      *TextInput
	difficultyBtns *ButtonGroup
	startBtn       *Button

	onComplete func(name string, d storage.Difficulty)
}

// NewWelcomeScreen creates a hidden welcome screen.
func NewWelcomeScreen() *WelcomeScreen {
	ws := &WelcomeScreen{
		x: (ScreenWidth - WelcomeWidth) / 2,
		y: (ScreenHeight - WelcomeHeight) / 2,
	}
	contentX := ws.x + WelcomePadX
	contentW := WelcomeWidth - WelcomePadX*2

	ws.nameInput = NewTextInput(contentX, ws.y+150, contentW, 40, "Enter your name", 20)
	ws.difficultyBtns = NewButtonGroup(contentX, ws.y+230, difficultyLabels, int(storage.DifficultyMedium), contentW/3, 34)
	ws.startBtn = NewButton(contentX, ws.y+WelcomeHeight-64, contentW, 40, "Start Playing", true, ws.handleStart)
	return ws
}

// Show opens the screen. onComplete runs when the player starts.
func (ws *WelcomeScreen) Show(onComplete func(name string, d storage.Difficulty)) {
	ws.visible = true
	ws.onComplete = onComplete
	ws.nameInput.SetFocused(true)
}

// IsVisible returns true if the screen is visible.
func (ws *WelcomeScreen) IsVisible() bool {
	return ws.visible
}

func (ws *WelcomeScreen) handleStart() {
	name := ws.nameInput.Value
	if name == "" {
		name = storage.DefaultPreferences().Username
	}
	ws.visible = false
	if ws.onComplete != nil {
		ws.onComplete(name, storage.Difficulty(ws.difficultyBtns.Selected))
	}
}

// Update handles input. The screen consumes all input while visible.
func (ws *WelcomeScreen) Update(input *InputHandler) bool {
	if !ws.visible {
		return false
	}
	if IsKeyJustPressed(ebiten.KeyEnter) {
		ws.handleStart()
		return true
	}
	ws.nameInput.Update(input)
	ws.difficultyBtns.Update(input)
	ws.startBtn.Update(input)
	return true
}

// AnyButtonHovered returns true if any clickable element is hovered.
func (ws *WelcomeScreen) AnyButtonHovered() bool {
	return ws.visible && (ws.startBtn.IsHovered() || ws.difficultyBtns.Hovered())
}

// Draw renders the screen over a blurred backdrop.
func (ws *WelcomeScreen) Draw(screen *ebiten.Image, backdrop *Backdrop, sprites *SpriteManager) {
	if !ws.visible {
		return
	}
	backdrop.Draw(screen, 0.5)

	fillRect(screen, ws.x, ws.y, WelcomeWidth, WelcomeHeight, modalBg)
	strokeRect(screen, ws.x, ws.y, WelcomeWidth, WelcomeHeight, 2, modalBorder)

	// Bot king as the emblem
	king := board.Piece{Kind: board.King, Owner: board.Bot}
	sprites.DrawPieceAt(screen, king, float64(ws.x+WelcomeWidth/2-SquareSize/2), float64(ws.y+8))

	cx := float64(ws.x + WelcomeWidth/2)
	drawTextCentered(screen, "CHESSBOT", GetFaceWithSize(24), cx, float64(ws.y+100), textPrimary)
	drawTextCentered(screen, "Capture the bot's king to win.", GetRegularFace(), cx, float64(ws.y+124), textSecondary)

	contentX := float64(ws.x + WelcomePadX)
	drawText(screen, "Your Name", GetRegularFace(), contentX, float64(ws.nameInput.Y-20), textSecondary)
	drawText(screen, "Difficulty", GetRegularFace(), contentX, float64(ws.difficultyBtns.Y-20), textSecondary)

	ws.nameInput.Draw(screen)
	ws.difficultyBtns.Draw(screen)
	ws.startBtn.Draw(screen)
}
