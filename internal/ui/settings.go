package ui

import (
	"image/color"

	"github.com/hailam/chessbot/internal/storage"
	"github.com/hajimehoshi/ebiten/v2"
)

// Settings modal dimensions
const (
	SettingsWidth  = 380
	SettingsHeight = 440
	SettingsPadX   = 24
	SettingsPadY   = 20
)

// Modal colors
var (
	modalBg     = color.RGBA{38, 40, 45, 255}
	modalHeader = color.RGBA{48, 52, 58, 255}
	modalBorder = color.RGBA{58, 62, 68, 255}
)

var difficultyLabels = []string{"Easy", "Medium", "Hard"}

// SettingsModal edits the user preferences.
type SettingsModal struct {
	visible bool
	x, y    int

	usernameInput  *TextInput
	difficultyBtns *ButtonGroup
	pruningBox     *Checkbox
	hintsBox       *Checkbox
	soundBox       *Checkbox
	saveBtn        *Button
	cancelBtn      *Button

	onSave func(prefs *storage.UserPreferences)
	base   storage.UserPreferences // Fields the modal does not edit
}

// NewSettingsModal creates a hidden settings modal centered on the window.
func NewSettingsModal() *SettingsModal {
	sm := &SettingsModal{
		x: (ScreenWidth - SettingsWidth) / 2,
		y: (ScreenHeight - SettingsHeight) / 2,
	}
	sm.createWidgets()
	return sm
}

func (sm *SettingsModal) createWidgets() {
	contentX := sm.x + SettingsPadX
	contentW := SettingsWidth - SettingsPadX*2

	inputY := sm.y + 76
	sm.usernameInput = NewTextInput(contentX, inputY, contentW, 36, "Enter your name", 20)

	diffY := inputY + 36 + 40
	sm.difficultyBtns = NewButtonGroup(contentX, diffY, difficultyLabels, 1, contentW/3, 34)

	checkY := diffY + 34 + 40
	sm.pruningBox = NewCheckbox(contentX, checkY, "Alpha-beta pruning", true)
	sm.hintsBox = NewCheckbox(contentX, checkY+32, "Show hints on Easy", true)
	sm.soundBox = NewCheckbox(contentX, checkY+64, "Sound effects", true)

	btnW, btnH, spacing := 100, 38, 12
	btnY := sm.y + SettingsHeight - SettingsPadY - btnH
	sm.cancelBtn = NewButton(sm.x+SettingsWidth-SettingsPadX-btnW*2-spacing, btnY, btnW, btnH, "Cancel", false, sm.Hide)
	sm.saveBtn = NewButton(sm.x+SettingsWidth-SettingsPadX-btnW, btnY, btnW, btnH, "Save", true, sm.handleSave)
}

// Show opens the modal on a copy of prefs. onSave receives the edited copy.
func (sm *SettingsModal) Show(prefs *storage.UserPreferences, onSave func(*storage.UserPreferences)) {
	sm.visible = true
	sm.onSave = onSave
	sm.base = *prefs

	sm.usernameInput.Value = prefs.Username
	sm.difficultyBtns.Selected = int(prefs.Difficulty)
	sm.pruningBox.Checked = prefs.Pruning
	sm.hintsBox.Checked = prefs.ShowHints
	sm.soundBox.Checked = prefs.SoundEnabled
}

// Hide closes the modal without saving.
func (sm *SettingsModal) Hide() {
	sm.visible = false
	sm.usernameInput.SetFocused(false)
}

// IsVisible returns true if the modal is visible.
func (sm *SettingsModal) IsVisible() bool {
	return sm.visible
}

func (sm *SettingsModal) handleSave() {
	prefs := sm.base
	prefs.Username = sm.usernameInput.Value
	if prefs.Username == "" {
		prefs.Username = storage.DefaultPreferences().Username
	}
	prefs.Difficulty = storage.Difficulty(sm.difficultyBtns.Selected)
	prefs.Pruning = sm.pruningBox.Checked
	prefs.ShowHints = sm.hintsBox.Checked
	prefs.SoundEnabled = sm.soundBox.Checked

	if sm.onSave != nil {
		sm.onSave(&prefs)
	}
	sm.Hide()
}

// Update handles input. The modal consumes all input while visible.
func (sm *SettingsModal) Update(input *InputHandler) bool {
	if !sm.visible {
		return false
	}

	if IsKeyJustPressed(ebiten.KeyEscape) && !sm.usernameInput.IsFocused() {
		sm.Hide()
		return true
	}
	if IsKeyJustPressed(ebiten.KeyEnter) {
		sm.handleSave()
		return true
	}

	sm.usernameInput.Update(input)
	sm.difficultyBtns.Update(input)
	sm.pruningBox.Update(input)
	sm.hintsBox.Update(input)
	sm.soundBox.Update(input)
	sm.saveBtn.Update(input)
	sm.cancelBtn.Update(input)
	return true
}

// AnyButtonHovered returns true if any clickable element is hovered.
func (sm *SettingsModal) AnyButtonHovered() bool {
	if !sm.visible {
		return false
	}
	return sm.saveBtn.IsHovered() || sm.cancelBtn.IsHovered() || sm.difficultyBtns.Hovered() ||
		sm.pruningBox.hovered || sm.hintsBox.hovered || sm.soundBox.hovered
}

// Draw renders the modal over a blurred backdrop.
func (sm *SettingsModal) Draw(screen *ebiten.Image, backdrop *Backdrop) {
	if !sm.visible {
		return
	}
	backdrop.Draw(screen, 0.4)

	fillRect(screen, sm.x, sm.y, SettingsWidth, SettingsHeight, modalBg)
	strokeRect(screen, sm.x, sm.y, SettingsWidth, SettingsHeight, 2, modalBorder)
	fillRect(screen, sm.x, sm.y, SettingsWidth, 44, modalHeader)
	drawTextCentered(screen, "Settings", GetBoldFace(), float64(sm.x+SettingsWidth/2), float64(sm.y+22), textPrimary)

	contentX := float64(sm.x + SettingsPadX)
	label := GetRegularFace()
	drawText(screen, "Player Name", label, contentX, float64(sm.usernameInput.Y-22), textMuted)
	drawText(screen, "Difficulty", label, contentX, float64(sm.difficultyBtns.Y-22), textMuted)
	drawText(screen, "Engine and Display", label, contentX, float64(sm.pruningBox.Y-24), textMuted)

	sm.usernameInput.Draw(screen)
	sm.difficultyBtns.Draw(screen)
	sm.pruningBox.Draw(screen)
	sm.hintsBox.Draw(screen)
	sm.soundBox.Draw(screen)
	sm.saveBtn.Draw(screen)
	sm.cancelBtn.Draw(screen)
}
