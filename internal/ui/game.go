package ui

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/cache"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/match"
	"github.com/hailam/chessbot/internal/storage"
	"github.com/hajimehoshi/ebiten/v2"
)

// UI Constants
const (
	ScreenWidth  = 960
	ScreenHeight = 640
	BoardSize    = 640
	SquareSize   = BoardSize / board.BoardSize
	PanelWidth   = ScreenWidth - BoardSize
)

// Search settings of the desktop client
const (
	cacheSizeMB = 16
	hintLevel   = 2
	hintTimeout = 500 * time.Millisecond
)

// UIScale is the global HiDPI scale factor for all UI drawing.
// Set by Game.Layout() and used by widgets and modals.
var UIScale float64 = 1.0

// aiResult is a finished bot search. m identifies the match it was made
// for, so results of an abandoned match are dropped.
type aiResult struct {
	m   *match.Match
	pos board.Position
	rec engine.DecisionRecord
	err error
}

type hintResult struct {
	gen    int
	action board.Action
}

// Game implements ebiten.Game.
type Game struct {
	match *match.Match

	// Selection state
	selected   board.Square
	targets    []board.Square
	dragging   bool
	dragPiece  board.Piece
	dragSquare board.Square

	// Player settings
	username string
	prefs    *storage.UserPreferences
	stats    *storage.GameStats
	storage  *storage.Storage

	// Components
	renderer *Renderer
	input    *InputHandler
	panel    *Panel
	feedback *FeedbackManager
	backdrop *Backdrop

	// Modals
	settingsModal *SettingsModal
	welcomeScreen *WelcomeScreen

	// Bot
	engine     *engine.Engine
	cache      *cache.DecisionCache
	aiThinking bool
	aiCancel   context.CancelFunc
	aiMove     chan aiResult
	progress   atomic.Pointer[engine.SearchInfo]

	// Hints on Easy
	hint        board.Action
	hintGen     int // Bumped by clearHint; older results are stale
	hintRunning bool
	hintDone    bool
	hintCancel  context.CancelFunc
	hintCh      chan hintResult

	gameOver   bool
	gameResult string

	// HiDPI scaling
	scale float64
}

// NewGame creates the client with a fresh match.
func NewGame() *Game {
	g := &Game{
		selected:   board.NoSquare,
		dragSquare: board.NoSquare,
		renderer:   NewRenderer(BoardSize, SquareSize),
		input:      NewInputHandler(),
		engine:     engine.NewEngine(),
		aiMove:     make(chan aiResult, 4),
		hint:       board.NoAction,
		hintCh:     make(chan hintResult, 4),
	}
	g.engine.SetWorkers(runtime.NumCPU())

	var err error
	g.cache, err = cache.New(cacheSizeMB)
	if err != nil {
		log.Printf("[ui] decision cache disabled: %v", err)
	} else {
		g.engine.SetCache(g.cache)
	}

	g.storage, err = storage.NewStorage()
	if err != nil {
		log.Printf("[ui] warning: failed to initialize storage: %v", err)
	}
	g.loadPreferences()

	g.match = match.New(g.prefs.Difficulty)
	g.feedback = NewFeedbackManager()
	g.feedback.Audio().SetEnabled(g.prefs.SoundEnabled)
	g.panel = NewPanel(g)
	g.backdrop = NewBackdrop()
	g.settingsModal = NewSettingsModal()
	g.welcomeScreen = NewWelcomeScreen()

	g.checkFirstLaunch()
	return g
}

// loadPreferences loads preferences and statistics, falling back to defaults.
func (g *Game) loadPreferences() {
	g.prefs = storage.DefaultPreferences()
	g.stats = storage.NewGameStats()
	if g.storage == nil {
		g.username = g.prefs.Username
		return
	}

	if prefs, err := g.storage.LoadPreferences(); err != nil {
		log.Printf("[ui] warning: failed to load preferences: %v", err)
	} else {
		g.prefs = prefs
	}
	if stats, err := g.storage.LoadStats(); err != nil {
		log.Printf("[ui] warning: failed to load stats: %v", err)
	} else {
		g.stats = stats
	}
	g.username = g.prefs.Username
}

// savePreferences saves current preferences to storage.
func (g *Game) savePreferences() {
	if g.storage == nil {
		return
	}
	g.prefs.Username = g.username
	g.prefs.Difficulty = g.match.Difficulty()
	g.prefs.LastPlayed = time.Now()
	if err := g.storage.SavePreferences(g.prefs); err != nil {
		log.Printf("[ui] warning: failed to save preferences: %v", err)
	}
}

// checkFirstLaunch shows the welcome screen on first launch.
func (g *Game) checkFirstLaunch() {
	if g.storage == nil {
		return
	}
	isFirst, err := g.storage.IsFirstLaunch()
	if err != nil {
		log.Printf("[ui] warning: failed to check first launch: %v", err)
		return
	}
	if !isFirst {
		return
	}

	g.welcomeScreen.Show(func(name string, d storage.Difficulty) {
		g.username = name
		g.SetDifficulty(d)
		if err := g.storage.MarkFirstLaunchComplete(); err != nil {
			log.Printf("[ui] warning: failed to mark first launch complete: %v", err)
		}
	})
}

// Update handles game logic updates.
func (g *Game) Update() error {
	g.input.Update()
	g.feedback.Update()

	// Bot results arrive even while a modal is open
	g.checkAIMove()
	g.checkHint()

	switch {
	case g.welcomeScreen.IsVisible():
		g.welcomeScreen.Update(g.input)
	case g.settingsModal.IsVisible():
		g.settingsModal.Update(g.input)
	case g.panel.HandleInput(g.input):
	default:
		g.handleKeys()
		g.handleBoardInput()
		g.startHint()
	}

	g.updateCursor()
	return nil
}

// updateCursor sets the cursor shape based on what's being hovered.
func (g *Game) updateCursor() {
	var hovered bool
	switch {
	case g.welcomeScreen.IsVisible():
		hovered = g.welcomeScreen.AnyButtonHovered()
	case g.settingsModal.IsVisible():
		hovered = g.settingsModal.AnyButtonHovered()
	default:
		hovered = g.panel.AnyButtonHovered()
	}

	if hovered {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Draw renders the game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.renderer.Theme().Background)

	pos := g.match.Position()
	g.renderer.DrawBoard(screen)
	g.renderer.DrawHighlights(screen, &pos, g.selected, g.targets, g.match.LastAction())
	if g.hintsEnabled() {
		g.renderer.DrawHint(screen, g.hint)
	}

	dragSquare := board.NoSquare
	if g.dragging {
		dragSquare = g.dragSquare
	}
	g.renderer.DrawPieces(screen, &pos, dragSquare, g.feedback.Animations())
	if g.dragging {
		mx, my := g.input.MousePosition()
		g.renderer.DrawDraggedPiece(screen, g.dragPiece, mx, my)
	}

	g.feedback.Draw(screen, g.renderer)
	g.panel.Draw(screen)

	g.settingsModal.Draw(screen, g.backdrop)
	g.welcomeScreen.Draw(screen, g.backdrop, g.renderer.sprites)
}

// Layout returns the game's screen dimensions in device pixels.
// Width depends on whether the panel is collapsed.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scale = ebiten.Monitor().DeviceScaleFactor()
	if g.scale < 1.0 {
		g.scale = 1.0
	}
	UIScale = g.scale

	width := ScreenWidth
	if g.panel != nil && g.panel.Collapsed() {
		width = BoardSize + CollapsedWidth
	}
	return int(float64(width) * g.scale), int(float64(ScreenHeight) * g.scale)
}

// handleKeys processes keyboard shortcuts.
func (g *Game) handleKeys() {
	switch {
	case IsKeyJustPressed(ebiten.KeyEscape):
		g.clearSelection()
	case IsKeyJustPressed(ebiten.KeyN):
		g.NewGameAction()
	}
}

// handleBoardInput processes mouse interactions with the board.
func (g *Game) handleBoardInput() {
	mx, my := g.input.MousePosition()

	if g.dragging && g.input.IsLeftJustReleased() {
		g.handleDragRelease(mx, my)
		return
	}
	if !g.input.IsLeftJustPressed() || mx >= BoardSize || my >= BoardSize {
		return
	}

	sq := g.renderer.ScreenToSquare(mx, my)
	if sq == board.NoSquare || g.gameOver {
		return
	}
	pos := g.match.Position()

	if g.aiThinking {
		if pos.OwnerAt(sq) == board.Human {
			g.feedback.OnInvalidAction(sq, board.NoSquare, match.ErrNotYourTurn)
		}
		return
	}

	// Own piece: select it and start dragging
	if pos.OwnerAt(sq) == board.Human {
		g.selectSquare(sq)
		g.startDrag(sq, &pos)
		return
	}

	if g.selected != board.NoSquare {
		g.playHuman(g.selected, sq)
		return
	}
	g.clearSelection()
}

// selectSquare selects a square and lists the destinations of its piece.
func (g *Game) selectSquare(sq board.Square) {
	g.selected = sq
	g.targets = g.match.Targets(sq)
}

// clearSelection clears the current selection.
func (g *Game) clearSelection() {
	g.selected = board.NoSquare
	g.targets = nil
	g.dragging = false
	g.dragSquare = board.NoSquare
}

// startDrag begins dragging the piece on sq.
func (g *Game) startDrag(sq board.Square, pos *board.Position) {
	h, ok := pos.PieceAt(sq)
	if !ok {
		return
	}
	g.dragging = true
	g.dragPiece = pos.Piece(h)
	g.dragSquare = sq
}

// handleDragRelease plays the dragged piece onto the square under the mouse.
// Releasing on the origin keeps the piece selected for click-to-move.
func (g *Game) handleDragRelease(mx, my int) {
	from := g.dragSquare
	g.dragging = false
	g.dragSquare = board.NoSquare

	to := g.renderer.ScreenToSquare(mx, my)
	switch to {
	case from:
		return
	case board.NoSquare:
		g.clearSelection()
	default:
		g.playHuman(from, to)
	}
}

// playHuman plays a human action or explains why it was rejected.
func (g *Game) playHuman(from, to board.Square) {
	e, err := g.match.PlayHuman(from, to)
	if err != nil {
		g.feedback.OnInvalidAction(from, to, err)
		g.clearSelection()
		return
	}
	log.Printf("[ui] human: %s", e)
	g.afterAction(e)
}

// afterAction updates the client once an action has been played.
func (g *Game) afterAction(e match.Entry) {
	g.clearSelection()
	g.clearHint()
	g.feedback.OnAction(e)

	if g.match.PassIfStuck() {
		log.Printf("[ui] human has no action, game drawn")
	}
	g.checkGameEnd()

	if !g.gameOver && g.match.IsBotTurn() {
		g.startAIThinking()
	}
}

// checkGameEnd records the match once it has ended.
func (g *Game) checkGameEnd() {
	outcome := g.match.Outcome()
	if g.gameOver || outcome == match.Ongoing {
		return
	}
	g.gameOver = true
	g.gameResult = outcome.String()
	g.feedback.OnGameEnd(outcome)
	log.Printf("[ui] game over: %s", g.gameResult)

	if g.storage == nil {
		return
	}
	if err := g.storage.RecordGame(g.match.Result()); err != nil {
		log.Printf("[ui] warning: failed to record game: %v", err)
		return
	}
	if stats, err := g.storage.LoadStats(); err == nil {
		g.stats = stats
	}
}

// searchLimits returns the limits of a decision at the given level under
// the current preferences.
func (g *Game) searchLimits(level int) engine.SearchLimits {
	limits := g.engine.Limits(level)
	limits.Pruning = g.prefs.Pruning
	return limits
}

// startAIThinking starts the bot search in a goroutine.
func (g *Game) startAIThinking() {
	if !g.match.IsBotTurn() {
		log.Printf("[ui] error: startAIThinking called on the human turn")
		return
	}

	m := g.match
	pos := m.Position()
	limits := g.searchLimits(m.Level())
	limits.OnInfo = func(info engine.SearchInfo) {
		g.progress.Store(&info)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.aiCancel = cancel
	g.aiThinking = true
	g.progress.Store(nil)
	log.Printf("[ui] bot thinking at level %d", limits.Depth)

	go func() {
		defer cancel()
		rec, err := g.engine.DecideWithLimits(ctx, &pos, limits)
		g.aiMove <- aiResult{m: m, pos: pos, rec: rec, err: err}
	}()
}

// checkAIMove applies a finished bot decision.
func (g *Game) checkAIMove() {
	for {
		select {
		case res := <-g.aiMove:
			if res.m != g.match {
				continue // abandoned match
			}
			g.aiThinking = false
			g.applyAIResult(res)
		default:
			return
		}
	}
}

func (g *Game) applyAIResult(res aiResult) {
	if res.err != nil {
		if !errors.Is(res.err, context.Canceled) {
			log.Printf("[ui] bot decision failed: %v", res.err)
			g.feedback.OnError("Bot failed to decide")
		}
		return
	}

	e, err := g.match.ApplyDecision(res.rec)
	if err != nil {
		log.Printf("[ui] bot decision rejected: %v", err)
		g.feedback.OnError("Bot made an invalid move")
		return
	}
	log.Printf("[ui] bot: %s", e)

	if g.storage != nil {
		if err := g.storage.SaveDecision(storage.NewDecisionEntry(&res.pos, res.rec)); err != nil {
			log.Printf("[ui] warning: failed to save decision: %v", err)
		}
	}
	g.afterAction(e)
}

// hintsEnabled reports whether hints are shown for the current match.
func (g *Game) hintsEnabled() bool {
	return g.prefs.ShowHints && g.match.Difficulty() == storage.DifficultyEasy
}

// startHint searches the human's best action in the background.
// Only runs on Easy while waiting for the human.
func (g *Game) startHint() {
	if !g.hintsEnabled() || !g.match.IsHumanTurn() || g.aiThinking {
		return
	}
	if g.hintRunning || g.hintDone {
		return
	}

	gen := g.hintGen
	pos := g.match.Position()
	limits := g.searchLimits(hintLevel)
	limits.Timeout = hintTimeout

	ctx, cancel := context.WithCancel(context.Background())
	g.hintCancel = cancel
	g.hintRunning = true

	go func() {
		defer cancel()
		rec, err := g.engine.DecideWithLimits(ctx, &pos, limits)
		if err != nil {
			rec.Action = board.NoAction
		}
		g.hintCh <- hintResult{gen: gen, action: rec.Action}
	}()
}

// checkHint picks up a finished hint search.
func (g *Game) checkHint() {
	for {
		select {
		case res := <-g.hintCh:
			if res.gen != g.hintGen {
				continue
			}
			g.hintRunning = false
			g.hintDone = true
			g.hint = res.action
		default:
			return
		}
	}
}

// clearHint drops the current hint and cancels a running hint search.
func (g *Game) clearHint() {
	if g.hintCancel != nil {
		g.hintCancel()
	}
	g.hint = board.NoAction
	g.hintGen++
	g.hintRunning = false
	g.hintDone = false
}

// NewGameAction abandons the current match and starts a new one.
func (g *Game) NewGameAction() {
	if g.aiCancel != nil {
		g.aiCancel()
	}
	g.clearHint()
	g.match = match.New(g.match.Difficulty())
	g.clearSelection()
	g.aiThinking = false
	g.gameOver = false
	g.gameResult = ""
	g.progress.Store(nil)
}

// SetDifficulty sets the bot strength; it applies from the next decision.
func (g *Game) SetDifficulty(d storage.Difficulty) {
	g.match.SetDifficulty(d)
	g.clearHint()
	g.savePreferences()
}

// ShowSettings opens the settings modal.
func (g *Game) ShowSettings() {
	g.clearSelection()
	g.settingsModal.Show(g.prefs, func(prefs *storage.UserPreferences) {
		g.prefs = prefs
		g.username = prefs.Username
		g.feedback.Audio().SetEnabled(prefs.SoundEnabled)
		g.SetDifficulty(prefs.Difficulty)
	})
}

// Difficulty returns the bot strength of the current match.
func (g *Game) Difficulty() storage.Difficulty {
	return g.match.Difficulty()
}

// History returns the played actions.
func (g *Game) History() []match.Entry {
	return g.match.History()
}

// LastDecision returns the most recent bot action.
func (g *Game) LastDecision() (match.Entry, bool) {
	h := g.match.History()
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].By == board.Bot {
			return h[i], true
		}
	}
	return match.Entry{}, false
}

// Progress returns the latest search report of the running bot decision.
func (g *Game) Progress() (engine.SearchInfo, bool) {
	info := g.progress.Load()
	if info == nil {
		return engine.SearchInfo{}, false
	}
	return *info, true
}

// GameOver returns true if the game is over.
func (g *Game) GameOver() bool {
	return g.gameOver
}

// GameResult returns the game result string.
func (g *Game) GameResult() string {
	return g.gameResult
}

// IsAIThinking returns true if the bot is searching.
func (g *Game) IsAIThinking() bool {
	return g.aiThinking
}

// Username returns the current username.
func (g *Game) Username() string {
	return g.username
}

// Stats returns the stored game statistics.
func (g *Game) Stats() *storage.GameStats {
	return g.stats
}

// Close stops searches and releases storage and cache.
func (g *Game) Close() {
	if g.aiCancel != nil {
		g.aiCancel()
	}
	g.clearHint()
	if g.storage != nil {
		g.storage.Close()
	}
	if g.cache != nil {
		g.cache.Close()
	}
}
