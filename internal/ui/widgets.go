package ui

import (
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget colors (shares the palette in panel.go)
var (
	widgetBg          = color.RGBA{48, 52, 58, 255}
	widgetBorder      = color.RGBA{68, 72, 78, 255}
	widgetFocusBorder = color.RGBA{76, 175, 120, 255}
	widgetHoverBg     = color.RGBA{65, 70, 78, 255}
	checkboxCheck     = color.RGBA{76, 175, 120, 255}
	inputPlaceholder  = color.RGBA{120, 125, 135, 255}
)

// fillRect and strokeRect take logical coordinates.
func fillRect(screen *ebiten.Image, x, y, w, h int, c color.Color) {
	vector.DrawFilledRect(screen, scaleF(x), scaleF(y), scaleF(w), scaleF(h), c, false)
}

func strokeRect(screen *ebiten.Image, x, y, w, h int, width float32, c color.Color) {
	vector.StrokeRect(screen, scaleF(x), scaleF(y), scaleF(w), scaleF(h), width*float32(UIScale), c, false)
}

// TextInput is an editable single-line text field.
type TextInput struct {
	X, Y, W, H  int
	Value       string
	Placeholder string
	MaxLength   int
	focused     bool
	hovered     bool
	cursorBlink int
}

// NewTextInput creates a new text input widget.
func NewTextInput(x, y, w, h int, placeholder string, maxLen int) *TextInput {
	return &TextInput{
		X: x, Y: y, W: w, H: h,
		Placeholder: placeholder,
		MaxLength:   maxLen,
	}
}

// Update handles focus and typing. It returns true while focused.
func (ti *TextInput) Update(input *InputHandler) bool {
	ti.hovered = input.IsInBounds(ti.X, ti.Y, ti.W, ti.H)
	if input.IsLeftJustPressed() {
		ti.focused = ti.hovered
	}
	if !ti.focused {
		return false
	}

	ti.cursorBlink = (ti.cursorBlink + 1) % 60

	for _, c := range ebiten.AppendInputChars(nil) {
		if ti.MaxLength == 0 || utf8.RuneCountInString(ti.Value) < ti.MaxLength {
			ti.Value += string(c)
		}
	}
	if IsKeyJustPressed(ebiten.KeyBackspace) && ti.Value != "" {
		_, size := utf8.DecodeLastRuneInString(ti.Value)
		ti.Value = ti.Value[:len(ti.Value)-size]
	}
	if IsKeyJustPressed(ebiten.KeyEscape) {
		ti.focused = false
	}
	return true
}

// Draw renders the text input.
func (ti *TextInput) Draw(screen *ebiten.Image) {
	bg := widgetBg
	if ti.hovered && !ti.focused {
		bg = color.RGBA{52, 56, 62, 255}
	}
	fillRect(screen, ti.X, ti.Y, ti.W, ti.H, bg)

	border := widgetBorder
	if ti.focused {
		border = widgetFocusBorder
	} else if ti.hovered {
		border = accentColor
	}
	strokeRect(screen, ti.X, ti.Y, ti.W, ti.H, 2, border)

	face := GetRegularFace()
	if face == nil {
		return
	}
	textX := float64(ti.X + 10)
	midY := float64(ti.Y + ti.H/2)

	shown, c := ti.Value, color.Color(textPrimary)
	if shown == "" {
		shown, c = ti.Placeholder, inputPlaceholder
	}
	_, h := MeasureText(shown, face)
	drawText(screen, shown, face, textX, midY-h/2, c)

	if ti.focused && ti.cursorBlink < 30 {
		cursorX := ti.X + 10
		if ti.Value != "" {
			w, _ := MeasureText(ti.Value, face)
			cursorX += int(w) + 2
		}
		fillRect(screen, cursorX, ti.Y+8, 2, ti.H-16, textPrimary)
	}
}

// IsFocused returns true if the input is focused.
func (ti *TextInput) IsFocused() bool {
	return ti.focused
}

// SetFocused sets the focus state.
func (ti *TextInput) SetFocused(focused bool) {
	ti.focused = focused
}

// Checkbox is a toggleable checkbox with a label.
type Checkbox struct {
	X, Y    int
	Label   string
	Checked bool
	hovered bool
}

// NewCheckbox creates a new checkbox.
func NewCheckbox(x, y int, label string, checked bool) *Checkbox {
	return &Checkbox{X: x, Y: y, Label: label, Checked: checked}
}

// Update toggles the checkbox on click.
func (cb *Checkbox) Update(input *InputHandler) bool {
	cb.hovered = input.IsInBounds(cb.X, cb.Y, 200, 24)
	if input.IsLeftJustPressed() && cb.hovered {
		cb.Checked = !cb.Checked
		return true
	}
	return false
}

// Draw renders the checkbox.
func (cb *Checkbox) Draw(screen *ebiten.Image) {
	const box = 20

	bg := widgetBg
	if cb.hovered {
		bg = widgetHoverBg
	}
	fillRect(screen, cb.X, cb.Y, box, box, bg)

	border := widgetBorder
	if cb.hovered {
		border = accentColor
	} else if cb.Checked {
		border = checkboxCheck
	}
	strokeRect(screen, cb.X, cb.Y, box, box, 2, border)

	if cb.Checked {
		w := float32(2 * UIScale)
		vector.StrokeLine(screen, scaleF(cb.X+4), scaleF(cb.Y+10), scaleF(cb.X+8), scaleF(cb.Y+14), w, checkboxCheck, true)
		vector.StrokeLine(screen, scaleF(cb.X+8), scaleF(cb.Y+14), scaleF(cb.X+16), scaleF(cb.Y+6), w, checkboxCheck, true)
	}

	face := GetRegularFace()
	c := textSecondary
	if cb.Checked {
		c = textPrimary
	}
	_, h := MeasureText(cb.Label, face)
	drawText(screen, cb.Label, face, float64(cb.X+30), float64(cb.Y+10)-h/2, c)
}

// ButtonGroup is a horizontal group of mutually exclusive toggle buttons.
type ButtonGroup struct {
	X, Y     int
	Options  []string
	Selected int
	ButtonW  int
	ButtonH  int
	hovered  int
	pressed  int
}

// NewButtonGroup creates a new button group.
func NewButtonGroup(x, y int, options []string, selected int, buttonW, buttonH int) *ButtonGroup {
	return &ButtonGroup{
		X:        x,
		Y:        y,
		Options:  options,
		Selected: selected,
		ButtonW:  buttonW,
		ButtonH:  buttonH,
		hovered:  -1,
		pressed:  -1,
	}
}

// Update selects the clicked option. It returns true on a change.
func (bg *ButtonGroup) Update(input *InputHandler) bool {
	bg.hovered = -1
	bg.pressed = -1
	for i := range bg.Options {
		if !input.IsInBounds(bg.X+i*bg.ButtonW, bg.Y, bg.ButtonW, bg.ButtonH) {
			continue
		}
		bg.hovered = i
		if input.IsLeftPressed() {
			bg.pressed = i
		}
		if input.IsLeftJustPressed() && bg.Selected != i {
			bg.Selected = i
			return true
		}
	}
	return false
}

// Hovered returns true if any option is under the mouse.
func (bg *ButtonGroup) Hovered() bool {
	return bg.hovered >= 0
}

// Draw renders the button group.
func (bg *ButtonGroup) Draw(screen *ebiten.Image) {
	face := GetRegularFace()
	for i, label := range bg.Options {
		x := bg.X + i*bg.ButtonW
		selected := i == bg.Selected

		fill := tabInactiveBg
		switch {
		case selected:
			fill = tabActiveBg
		case i == bg.pressed:
			fill = buttonPressedBg
		case i == bg.hovered:
			fill = tabHoverBg
		}
		fillRect(screen, x, bg.Y, bg.ButtonW, bg.ButtonH, fill)

		border := buttonBorder
		if selected {
			border = tabActiveBg
		} else if i == bg.hovered {
			border = accentColor
		}
		strokeRect(screen, x, bg.Y, bg.ButtonW, bg.ButtonH, 1, border)

		c := textSecondary
		if selected {
			c = textPrimary
		}
		drawTextCentered(screen, label, face, float64(x)+float64(bg.ButtonW)/2, float64(bg.Y)+float64(bg.ButtonH)/2, c)
	}
}

// Button is a clickable labelled rectangle. Primary buttons use the accent color.
type Button struct {
	X, Y, W, H int
	Label      string
	Primary    bool
	OnClick    func()
	hovered    bool
	pressed    bool
}

// NewButton creates a new button.
func NewButton(x, y, w, h int, label string, primary bool, onClick func()) *Button {
	return &Button{
		X: x, Y: y, W: w, H: h,
		Label:   label,
		Primary: primary,
		OnClick: onClick,
	}
}

// IsHovered returns true if the button is hovered.
func (b *Button) IsHovered() bool {
	return b.hovered
}

// Update runs OnClick when the button is clicked.
func (b *Button) Update(input *InputHandler) bool {
	b.hovered = input.IsInBounds(b.X, b.Y, b.W, b.H)
	b.pressed = input.IsLeftPressed() && b.hovered
	if input.IsLeftJustPressed() && b.hovered && b.OnClick != nil {
		b.OnClick()
		return true
	}
	return false
}

// Draw renders the button.
func (b *Button) Draw(screen *ebiten.Image) {
	var fill, border color.RGBA
	label := textSecondary
	if b.Primary {
		fill, border, label = accentColor, accentPressed, textPrimary
		if b.pressed {
			fill = accentPressed
		} else if b.hovered {
			fill = accentHover
			border = color.RGBA{116, 215, 160, 255}
		}
	} else {
		fill, border = buttonBg, buttonBorder
		if b.pressed {
			fill = buttonPressedBg
		} else if b.hovered {
			fill = buttonHoverBg
			border = accentColor
		}
	}

	fillRect(screen, b.X, b.Y, b.W, b.H, fill)
	strokeRect(screen, b.X, b.Y, b.W, b.H, 1, border)
	drawTextCentered(screen, b.Label, GetRegularFace(), float64(b.X)+float64(b.W)/2, float64(b.Y)+float64(b.H)/2, label)
}
