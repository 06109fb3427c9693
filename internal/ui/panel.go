package ui

import (
	"fmt"
	"image/color"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/match"
	"github.com/hailam/chessbot/internal/storage"
	"github.com/hajimehoshi/ebiten/v2"
)

// Panel dimensions
const (
	PanelPadding    = 20
	SectionSpacing  = 28
	ButtonHeight    = 40
	TabHeight       = 34
	CollapsedWidth  = 20
	CollapseButtonW = 16
	CollapseButtonH = 48
	SectionLabelH   = 20
	StatusBarH      = 92
	rowHeight       = 22
)

// Panel colors
var (
	panelBg         = color.RGBA{38, 40, 45, 255}
	sectionBg       = color.RGBA{48, 52, 58, 255}
	tabActiveBg     = color.RGBA{76, 132, 96, 255}
	tabInactiveBg   = color.RGBA{50, 54, 60, 255}
	tabHoverBg      = color.RGBA{65, 70, 78, 255}
	buttonBg        = color.RGBA{50, 54, 60, 255}
	buttonHoverBg   = color.RGBA{65, 70, 78, 255}
	buttonPressedBg = color.RGBA{40, 44, 50, 255}
	buttonBorder    = color.RGBA{70, 75, 82, 255}
	accentColor     = color.RGBA{76, 175, 120, 255}
	accentHover     = color.RGBA{96, 195, 140, 255}
	accentPressed   = color.RGBA{56, 155, 100, 255}
	textPrimary     = color.RGBA{240, 240, 245, 255}
	textSecondary   = color.RGBA{160, 165, 175, 255}
	textMuted       = color.RGBA{120, 125, 135, 255}
	dividerColor    = color.RGBA{60, 65, 72, 255}
	moveRowAlt      = color.RGBA{44, 48, 54, 255}
	statusThinking  = color.RGBA{100, 180, 255, 255}
	statusGameOver  = color.RGBA{255, 200, 80, 255}
)

// Panel is the side panel with controls, action history and status.
type Panel struct {
	game      *Game
	collapsed bool

	collapseBtn *Button
	newGameBtn  *Button
	settingsBtn *Button
	diffTabs    *ButtonGroup

	// Action history scroll
	scrollY    int
	maxScrollY int
}

// NewPanel creates a new panel for the given game.
func NewPanel(g *Game) *Panel {
	p := &Panel{game: g}
	p.createButtons()
	return p
}

func (p *Panel) createButtons() {
	tabY := (ScreenHeight - CollapseButtonH) / 2
	collapseX := BoardSize
	if p.collapsed {
		collapseX = BoardSize + 2
	}
	p.collapseBtn = NewButton(collapseX, tabY, CollapseButtonW, CollapseButtonH, "", false, p.toggleCollapse)

	contentX := BoardSize + PanelPadding
	contentW := PanelWidth - PanelPadding*2

	newGameY := PanelPadding + 8
	p.newGameBtn = NewButton(contentX, newGameY, contentW, ButtonHeight, "New Game", true, p.game.NewGameAction)

	settingsY := newGameY + ButtonHeight + 8
	p.settingsBtn = NewButton(contentX, settingsY, contentW, ButtonHeight-6, "Settings", false, p.game.ShowSettings)

	diffTabY := settingsY + ButtonHeight - 6 + SectionSpacing - 8 + SectionLabelH
	selected := 1
	if p.diffTabs != nil {
		selected = p.diffTabs.Selected
	}
	p.diffTabs = NewButtonGroup(contentX, diffTabY, difficultyLabels, selected, contentW/3, TabHeight-2)
}

// HandleInput processes input for the panel. Returns true if input was handled.
func (p *Panel) HandleInput(input *InputHandler) bool {
	if p.collapseBtn.Update(input) {
		return true
	}
	if p.collapsed {
		return false
	}

	mx, my := input.MousePosition()
	if wheel := input.WheelY(); wheel != 0 && mx >= BoardSize && my >= p.historyStartY() && my < ScreenHeight-StatusBarH {
		p.scrollY -= int(wheel * 30)
		p.scrollY = max(0, min(p.scrollY, p.maxScrollY))
	}

	p.diffTabs.Selected = int(p.game.Difficulty())
	if p.diffTabs.Update(input) {
		p.game.SetDifficulty(storage.Difficulty(p.diffTabs.Selected))
		return true
	}
	if p.newGameBtn.Update(input) || p.settingsBtn.Update(input) {
		return true
	}
	return mx >= BoardSize && input.IsLeftJustPressed()
}

// AnyButtonHovered returns true if any button in the panel is hovered.
func (p *Panel) AnyButtonHovered() bool {
	if p.collapseBtn.IsHovered() {
		return true
	}
	if p.collapsed {
		return false
	}
	return p.newGameBtn.IsHovered() || p.settingsBtn.IsHovered() || p.diffTabs.Hovered()
}

// Draw renders the panel.
func (p *Panel) Draw(screen *ebiten.Image) {
	if p.collapsed {
		fillRect(screen, BoardSize, 0, CollapsedWidth, ScreenHeight, panelBg)
		p.drawCollapseButton(screen, "›")
		return
	}

	fillRect(screen, BoardSize, 0, PanelWidth, ScreenHeight, panelBg)
	p.drawCollapseButton(screen, "‹")

	p.newGameBtn.Draw(screen)
	p.settingsBtn.Draw(screen)

	p.drawSectionLabel(screen, "Difficulty", p.diffTabs.Y-SectionLabelH)
	p.diffTabs.Selected = int(p.game.Difficulty())
	p.diffTabs.Draw(screen)

	historyY := p.historyStartY()
	p.drawSectionLabel(screen, "Moves", historyY)
	p.drawHistory(screen, historyY+SectionLabelH+4)

	p.drawStatusBar(screen)
}

func (p *Panel) historyStartY() int {
	return p.diffTabs.Y + p.diffTabs.ButtonH + SectionSpacing - 4
}

func (p *Panel) drawCollapseButton(screen *ebiten.Image, arrow string) {
	btn := p.collapseBtn
	bg, fg := panelBg, textMuted
	if btn.IsHovered() {
		bg, fg = sectionBg, textPrimary
	}
	fillRect(screen, btn.X, btn.Y, btn.W, btn.H, bg)
	drawTextCentered(screen, arrow, GetRegularFace(), float64(btn.X)+float64(btn.W)/2, float64(btn.Y)+float64(btn.H)/2, fg)
}

func (p *Panel) drawSectionLabel(screen *ebiten.Image, label string, y int) {
	drawText(screen, label, GetRegularFace(), BoardSize+PanelPadding, float64(y), textMuted)
}

// kindLetters stand in for glyphs, which the UI font lacks.
var kindLetters = [board.NumKinds]string{"P", "N", "B", "R", "Q", "K"}

func historyText(e match.Entry) string {
	if e.Action.IsNull() {
		return "pass"
	}
	s := kindLetters[e.Piece.Kind] + " " + e.Action.String()
	if _, k, ok := board.ParseGlyph(e.Capture); ok && k < board.NoKind {
		s += " x" + kindLetters[k]
	}
	return s
}

// drawHistory lists the actions two per row: the human's, then the bot's reply.
func (p *Panel) drawHistory(screen *ebiten.Image, startY int) {
	face := GetRegularFace()
	entries := p.game.History()
	x := float64(BoardSize + PanelPadding)
	if len(entries) == 0 {
		drawText(screen, "No moves yet", face, x, float64(startY+5), textMuted)
		return
	}

	maxY := ScreenHeight - StatusBarH
	visibleHeight := maxY - startY
	totalRows := (len(entries) + 1) / 2
	contentHeight := totalRows * rowHeight
	p.maxScrollY = max(0, contentHeight-visibleHeight)
	p.scrollY = min(p.scrollY, p.maxScrollY)

	startRow := p.scrollY / rowHeight
	y := startY - p.scrollY%rowHeight
	for row := startRow; row < totalRows && y <= maxY-rowHeight; row++ {
		if y >= startY {
			if row%2 == 1 {
				fillRect(screen, BoardSize+PanelPadding-4, y-2, PanelWidth-PanelPadding*2+8, rowHeight, moveRowAlt)
			}
			drawText(screen, fmt.Sprintf("%d.", row+1), face, x, float64(y), textMuted)
			drawText(screen, historyText(entries[row*2]), face, x+30, float64(y), textPrimary)
			if i := row*2 + 1; i < len(entries) {
				drawText(screen, historyText(entries[i]), face, x+150, float64(y), textSecondary)
			}
		}
		y += rowHeight
	}

	if p.maxScrollY > 0 {
		scrollPct := float64(p.scrollY) / float64(p.maxScrollY)
		indicatorH := max(20, visibleHeight*visibleHeight/contentHeight)
		indicatorY := startY + int(scrollPct*float64(visibleHeight-indicatorH))
		fillRect(screen, BoardSize+PanelWidth-8, indicatorY, 4, indicatorH, textMuted)
	}
}

func (p *Panel) drawStatusBar(screen *ebiten.Image) {
	face := GetRegularFace()
	statusY := ScreenHeight - StatusBarH + 10
	x := float64(BoardSize + PanelPadding)

	fillRect(screen, BoardSize+PanelPadding, statusY-10, PanelWidth-PanelPadding*2, 1, dividerColor)

	username := p.game.Username()
	if len([]rune(username)) > 12 {
		username = string([]rune(username)[:12]) + "..."
	}
	drawText(screen, username, face, x, float64(statusY), textPrimary)
	if stats := p.game.Stats(); stats != nil {
		record := fmt.Sprintf("W%d L%d D%d", stats.Wins, stats.Losses, stats.Draws)
		drawText(screen, record, face, x+150, float64(statusY), textSecondary)
	}

	var status string
	var statusColor color.RGBA
	switch {
	case p.game.GameOver():
		status, statusColor = p.game.GameResult(), statusGameOver
	case p.game.IsAIThinking():
		status, statusColor = "Bot thinking...", statusThinking
		if info, ok := p.game.Progress(); ok {
			status = fmt.Sprintf("Bot thinking... %d/%d, %s nodes",
				info.RootDone, info.RootTotal, humanize.Comma(int64(info.Nodes)))
		}
	default:
		status, statusColor = "Your move", textPrimary
	}
	drawText(screen, status, face, x, float64(statusY+22), statusColor)

	if e, ok := p.game.LastDecision(); ok {
		line := fmt.Sprintf("Last: %s in %s, %s nodes", engine.ScoreToString(e.Value),
			e.Elapsed.Round(time.Millisecond), humanize.Comma(int64(e.Nodes)))
		drawText(screen, line, face, x, float64(statusY+44), textMuted)
	}
}

// Collapsed returns whether the panel is collapsed.
func (p *Panel) Collapsed() bool {
	return p.collapsed
}

// toggleCollapse toggles the panel and resizes the window to match.
func (p *Panel) toggleCollapse() {
	p.collapsed = !p.collapsed
	p.createButtons()
	if p.collapsed {
		ebiten.SetWindowSize(BoardSize+CollapsedWidth, ScreenHeight)
	} else {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	}
}
