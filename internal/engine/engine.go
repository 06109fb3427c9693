package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hailam/chessbot/internal/board"
)

// SearchInfo reports root progress during a decision.
type SearchInfo struct {
	Depth     int
	RootDone  int // Root actions searched so far
	RootTotal int
	Value     float64
	Nodes     uint64
}

// SearchLimits specifies how a decision is searched.
type SearchLimits struct {
	Depth   int           // Plies below the root, at least 1
	Pruning bool          // Alpha-beta cutoffs
	Workers int           // Root actions searched in parallel (<= 1 = sequential)
	Timeout time.Duration // 0 = no limit
	OnInfo  func(SearchInfo)
}

// Difficulty represents the bot strength offered by the desktop client.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// difficultyLevels maps difficulty to intelligence level.
var difficultyLevels = [...]int{
	Easy:   1,
	Medium: 2,
	Hard:   4,
}

// Level returns the intelligence level of d. Unknown values play as Medium.
func (d Difficulty) Level() int {
	if d < Easy || d > Hard {
		d = Medium
	}
	return difficultyLevels[d]
}

// String returns the lower-case name of d. Unknown values read as "medium".
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	default:
		return "medium"
	}
}

// Cache stores finished decisions by position and depth.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(pos *board.Position, depth int) (DecisionRecord, bool)
	Set(pos *board.Position, depth int, rec DecisionRecord)
}

// Engine is the bot. Configure it before sharing it between goroutines.
type Engine struct {
	pruning bool
	workers int
	timeout time.Duration
	cache   Cache

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with pruning on and sequential search.
func NewEngine() *Engine {
	return &Engine{
		pruning: true,
		workers: 1,
	}
}

// SetPruning enables or disables alpha-beta cutoffs.
func (e *Engine) SetPruning(on bool) {
	e.pruning = on
}

// SetWorkers sets how many root actions are searched in parallel.
func (e *Engine) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.workers = n
}

// SetTimeout bounds every decision. Zero disables the limit.
func (e *Engine) SetTimeout(d time.Duration) {
	e.timeout = d
}

// SetCache installs a decision cache. A nil cache disables caching.
func (e *Engine) SetCache(c Cache) {
	e.cache = c
}

// Limits returns the search limits used for the given intelligence level.
func (e *Engine) Limits(level int) SearchLimits {
	return SearchLimits{
		Depth:   level,
		Pruning: e.pruning,
		Workers: e.workers,
		Timeout: e.timeout,
		OnInfo:  e.OnInfo,
	}
}

// Decide picks the action for the side to move, looking level plies ahead.
func (e *Engine) Decide(ctx context.Context, pos *board.Position, level int) (DecisionRecord, error) {
	if level < 1 {
		return DecisionRecord{}, fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	return e.DecideWithLimits(ctx, pos, e.Limits(level))
}

// DecideWithLimits picks the action for the side to move under explicit limits.
// The receiver position is never modified.
func (e *Engine) DecideWithLimits(ctx context.Context, pos *board.Position, limits SearchLimits) (DecisionRecord, error) {
	if limits.Depth < 1 {
		return DecisionRecord{}, fmt.Errorf("%w: got %d", ErrInvalidLevel, limits.Depth)
	}
	if pos.IsTerminal() {
		return DecisionRecord{}, board.ErrGameOver
	}

	start := time.Now()
	if e.cache != nil {
		if rec, ok := e.cache.Get(pos, limits.Depth); ok && rebase(pos, &rec) {
			// Only the root was looked at.
			rec.Elapsed = time.Since(start)
			rec.Nodes = 1
			rec.Cached = true
			log.Printf("[engine] depth %d: cache hit, %s", limits.Depth, rec.Move())
			return rec, nil
		}
	}

	if limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.Timeout)
		defer cancel()
	}

	s := NewSearcher(ctx, limits)
	actions := pos.Actions()

	var (
		res rootResult
		err error
	)
	if limits.Workers > 1 {
		res, err = s.SearchRootParallel(pos, actions, limits.Workers)
	} else {
		res, err = s.SearchRoot(pos, actions)
	}
	if err != nil {
		return DecisionRecord{}, fmt.Errorf("search depth %d: %w", limits.Depth, err)
	}

	rec := DecisionRecord{
		Elapsed: time.Since(start),
		Value:   res.value,
		Action:  board.NoAction,
		Result:  res.child,
		Nodes:   s.Nodes(),
		Level:   limits.Depth,
	}
	if res.index >= 0 {
		rec.Action = actions[res.index]
		rec.Piece = pos.Piece(rec.Action.Piece)
	}

	log.Printf("[engine] depth %d: %s value %s after %s, %s nodes",
		limits.Depth, rec.Move(), ScoreToString(rec.Value),
		rec.Elapsed.Round(time.Millisecond), humanize.Comma(int64(rec.Nodes)))

	if e.cache != nil {
		e.cache.Set(pos, limits.Depth, rec)
	}
	return rec, nil
}

// rebase checks that a cached decision applies to pos and rebuilds its result
// from pos. Equal keys do not imply equal piece handles.
func rebase(pos *board.Position, rec *DecisionRecord) bool {
	if rec.Action.IsNull() {
		rec.Result = pos.ApplyNull()
		return true
	}
	next, err := pos.Apply(rec.Action)
	if err != nil || !next.Equal(&rec.Result) {
		return false
	}
	rec.Piece = pos.Piece(rec.Action.Piece)
	rec.Result = next
	return true
}

// Perft counts the leaf positions depth plies below pos.
// Finished games and depth <= 0 count as leaves.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth <= 0 || pos.IsTerminal() {
		return 1
	}

	var nodes uint64
	for _, a := range pos.Actions() {
		child := pos.MustApply(a)
		nodes += e.Perft(&child, depth-1)
	}
	return nodes
}
