package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hailam/chessbot/internal/board"
)

// mirror swaps the two sides: rows are reversed and every glyph changes owner.
func mirror(text string, botTurn bool) board.Position {
	rows := strings.Split(text, "\n")
	out := make([]string, len(rows))
	for i, row := range rows {
		var sb strings.Builder
		for _, r := range row {
			if o, k, ok := board.ParseGlyph(r); ok {
				r = board.Glyph(o.Other(), k)
			}
			sb.WriteRune(r)
		}
		out[len(rows)-1-i] = sb.String()
	}
	return board.ParseBoard(strings.Join(out, "\n"), botTurn)
}

// play makes n deterministic moves from pos.
func play(pos board.Position, n int) board.Position {
	for i := 0; i < n && !pos.IsTerminal(); i++ {
		actions := pos.Actions()
		pos = pos.MustApply(actions[(i*7)%len(actions)])
	}
	return pos
}

func quiet(e *Engine) *Engine {
	e.SetPruning(false)
	return e
}

func TestUtilityPanicsOnRunningGame(t *testing.T) {
	pos := board.NewPosition()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, board.ErrNotTerminal) {
			t.Fatalf("expected ErrNotTerminal panic, got %v", r)
		}
	}()
	Utility(&pos)
}

func TestEvaluatePanicsOnFinishedGame(t *testing.T) {
	pos := board.NewPosition()
	done := pos.ApplyNull()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrTerminalPosition) {
			t.Fatalf("expected ErrTerminalPosition panic, got %v", r)
		}
	}()
	Evaluate(&done)
}

func TestUtilityValues(t *testing.T) {
	pos := board.NewPosition()
	draw := pos.ApplyNull()
	if v := Utility(&draw); v != 0 {
		t.Errorf("draw utility = %v, want 0", v)
	}

	humanWon := board.ParseBoard("♔", false)
	if v := Utility(&humanWon); v != -UtilityScore {
		t.Errorf("human win utility = %v, want %v", v, -UtilityScore)
	}
	botWon := board.ParseBoard("♚", false)
	if v := Utility(&botWon); v != UtilityScore {
		t.Errorf("bot win utility = %v, want %v", v, UtilityScore)
	}
}

func TestEvaluateOpeningIsZero(t *testing.T) {
	pos := board.NewPosition()
	if v := Evaluate(&pos); v != 0 {
		t.Errorf("opening evaluation = %v, want 0", v)
	}
}

func TestEvaluateAntisymmetric(t *testing.T) {
	for n := 1; n <= 9; n += 2 {
		pos := play(board.NewPosition(), n)
		if pos.IsTerminal() {
			continue
		}
		flipped := mirror(pos.String(), !pos.IsBotTurn())
		a, b := Evaluate(&pos), Evaluate(&flipped)
		if math.Abs(a+b) > 1e-9 {
			t.Errorf("after %d plies: evaluate = %v, mirrored = %v", n, a, b)
		}
	}
}

func TestEvaluateWeights(t *testing.T) {
	// Bot has an extra queen; both sides keep a king.
	pos := board.ParseBoard("♚□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"♛□□□□□□♔", false)

	bot, human := pos.BotSide(), pos.HumanSide()
	want := QueenWeight + MobilityWeight*float64(bot.CountActions()-human.CountActions())
	if got := Evaluate(&pos); math.Abs(got-want) > 1e-9 {
		t.Errorf("evaluate = %v, want %v", got, want)
	}
}

func TestDepthOneMatchesBruteForce(t *testing.T) {
	positions := []board.Position{
		board.ParseBoard(board.OpeningBoard, true),
		play(board.ParseBoard(board.OpeningBoard, true), 4),
		play(board.NewPosition(), 5),
	}
	eng := quiet(NewEngine())

	for i, pos := range positions {
		if pos.IsTerminal() {
			continue
		}
		actions := pos.Actions()
		maximizing := pos.IsBotTurn()

		best := -1
		var bestVal float64
		for j, a := range actions {
			child := pos.MustApply(a)
			var v float64
			if child.IsTerminal() {
				v = Utility(&child)
			} else {
				v = Evaluate(&child)
			}
			if best < 0 || better(v, bestVal, maximizing) {
				best, bestVal = j, v
			}
		}

		rec, err := eng.Decide(context.Background(), &pos, 1)
		if err != nil {
			t.Fatalf("position %d: %v", i, err)
		}
		if rec.Action != actions[best] {
			t.Errorf("position %d: action = %s, want %s", i, rec.Action, actions[best])
		}
		if rec.Value != bestVal {
			t.Errorf("position %d: value = %v, want %v", i, rec.Value, bestVal)
		}
		want := pos.MustApply(actions[best])
		if !rec.Result.Equal(&want) {
			t.Errorf("position %d: result board differs", i)
		}
	}
}

func TestNodeCounts(t *testing.T) {
	pos := board.ParseBoard(board.OpeningBoard, true)
	eng := quiet(NewEngine())

	tests := []struct {
		level int
		nodes uint64
	}{
		{1, 1 + 20},
		{2, 1 + 20 + 400},
	}
	for _, tt := range tests {
		rec, err := eng.Decide(context.Background(), &pos, tt.level)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Nodes != tt.nodes {
			t.Errorf("level %d: nodes = %d, want %d", tt.level, rec.Nodes, tt.nodes)
		}
	}
}

func TestNodesNonDecreasing(t *testing.T) {
	pos := play(board.ParseBoard(board.OpeningBoard, true), 2)
	eng := quiet(NewEngine())

	var last uint64
	for level := 1; level <= 3; level++ {
		rec, err := eng.Decide(context.Background(), &pos, level)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Nodes < last {
			t.Errorf("level %d: nodes %d < %d at previous level", level, rec.Nodes, last)
		}
		last = rec.Nodes
	}
}

func TestSearchVariantsAgree(t *testing.T) {
	positions := []board.Position{
		board.ParseBoard(board.OpeningBoard, true),
		play(board.ParseBoard(board.OpeningBoard, true), 6),
		play(board.NewPosition(), 7),
	}

	plain := quiet(NewEngine())
	pruned := NewEngine()
	parallel := quiet(NewEngine())
	parallel.SetWorkers(4)
	both := NewEngine()
	both.SetWorkers(3)

	for i, pos := range positions {
		if pos.IsTerminal() {
			continue
		}
		for level := 1; level <= 3; level++ {
			want, err := plain.Decide(context.Background(), &pos, level)
			if err != nil {
				t.Fatal(err)
			}
			for name, eng := range map[string]*Engine{"pruned": pruned, "parallel": parallel, "both": both} {
				got, err := eng.Decide(context.Background(), &pos, level)
				if err != nil {
					t.Fatalf("%s: %v", name, err)
				}
				if got.Action != want.Action || got.Value != want.Value {
					t.Errorf("position %d level %d %s: %s %v, want %s %v",
						i, level, name, got.Action, got.Value, want.Action, want.Value)
				}
				if eng == parallel && got.Nodes != want.Nodes {
					t.Errorf("position %d level %d: parallel nodes = %d, want %d", i, level, got.Nodes, want.Nodes)
				}
			}
		}
	}
}

func TestPruningVisitsFewerNodes(t *testing.T) {
	pos := board.ParseBoard(board.OpeningBoard, true)
	full, err := quiet(NewEngine()).Decide(context.Background(), &pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	cut, err := NewEngine().Decide(context.Background(), &pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	if cut.Nodes >= full.Nodes {
		t.Errorf("pruned nodes = %d, full = %d", cut.Nodes, full.Nodes)
	}
}

func TestFindsKingCapture(t *testing.T) {
	pos := board.ParseBoard("♚□□□□□□♜\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□□\n"+
		"♙□□□□□□□\n"+
		"□□□□□□□♔", true)

	rec, err := NewEngine().Decide(context.Background(), &pos, 2)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Action.To != board.NewSquare(7, 7) {
		t.Errorf("action = %s, want capture on (7,7)", rec.Action)
	}
	if rec.Value != UtilityScore {
		t.Errorf("value = %v, want %v", rec.Value, UtilityScore)
	}
	if !rec.Result.IsTerminal() || rec.Result.Winner() != board.Bot {
		t.Error("result should be a bot win")
	}
}

func TestNoActions(t *testing.T) {
	// King-less board where the only bot pawn is blocked.
	pos := board.ParseBoard("□□□□□□□□\n"+
		"♟□□□□□□□\n"+
		"♙□□□□□□□", true)

	rec, err := NewEngine().Decide(context.Background(), &pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Action.IsNull() {
		t.Errorf("action = %s, want none", rec.Action)
	}
	if rec.Value != 0 || rec.Nodes != 1 {
		t.Errorf("value = %v nodes = %d, want 0 and 1", rec.Value, rec.Nodes)
	}
	if !rec.Result.IsDraw() {
		t.Error("result should be a draw")
	}
}

func TestDecideErrors(t *testing.T) {
	eng := NewEngine()
	pos := board.NewPosition()

	if _, err := eng.Decide(context.Background(), &pos, 0); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("level 0: expected ErrInvalidLevel, got %v", err)
	}

	done := pos.ApplyNull()
	if _, err := eng.Decide(context.Background(), &done, 2); !errors.Is(err, board.ErrGameOver) {
		t.Errorf("finished game: expected ErrGameOver, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quiet(NewEngine()).Decide(ctx, &pos, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: expected context.Canceled, got %v", err)
	}
}

func TestDecideDoesNotMutate(t *testing.T) {
	pos := board.ParseBoard(board.OpeningBoard, true)
	before := pos
	if _, err := NewEngine().Decide(context.Background(), &pos, 2); err != nil {
		t.Fatal(err)
	}
	if !pos.Equal(&before) {
		t.Error("Decide modified the position")
	}
}

func TestPerft(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine()
	for depth, want := range []uint64{1, 20, 400} {
		if got := eng.Perft(&pos, depth); got != want {
			t.Errorf("perft(%d) = %d, want %d", depth, got, want)
		}
	}
	if got := eng.Perft(&pos, -1); got != 1 {
		t.Errorf("perft(-1) = %d, want 1", got)
	}
}

type mapCache struct {
	mu   sync.Mutex
	m    map[uint64]DecisionRecord
	hits int
}

func (c *mapCache) Get(pos *board.Position, depth int) (DecisionRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.m[pos.Key()^uint64(depth)]
	if ok {
		c.hits++
	}
	return rec, ok
}

func (c *mapCache) Set(pos *board.Position, depth int, rec DecisionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[pos.Key()^uint64(depth)] = rec
}

func TestDecideUsesCache(t *testing.T) {
	cache := &mapCache{m: make(map[uint64]DecisionRecord)}
	eng := NewEngine()
	eng.SetCache(cache)

	pos := board.ParseBoard(board.OpeningBoard, true)
	first, err := eng.Decide(context.Background(), &pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Decide(context.Background(), &pos, 3)
	if err != nil {
		t.Fatal(err)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
	if second.Action != first.Action || second.Value != first.Value {
		t.Error("cached record differs")
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v, %v", first.Cached, second.Cached)
	}
	if second.Nodes != 1 {
		t.Errorf("cache hit nodes = %d, want 1", second.Nodes)
	}
	if second.Elapsed >= first.Elapsed {
		t.Errorf("cache hit elapsed %v should be below the search's %v", second.Elapsed, first.Elapsed)
	}
}

func TestParallelProgressCountsNodes(t *testing.T) {
	pos := board.ParseBoard(board.OpeningBoard, true)
	eng := quiet(NewEngine())

	var (
		mu    sync.Mutex
		infos []SearchInfo
	)
	limits := eng.Limits(3)
	limits.Workers = 4
	limits.OnInfo = func(info SearchInfo) {
		mu.Lock()
		infos = append(infos, info)
		mu.Unlock()
	}
	rec, err := eng.DecideWithLimits(context.Background(), &pos, limits)
	if err != nil {
		t.Fatal(err)
	}

	if len(infos) != 20 {
		t.Fatalf("reports = %d, want one per root action", len(infos))
	}
	for _, info := range infos {
		// Each report follows at least one finished root subtree.
		if info.Nodes <= 1+20 {
			t.Errorf("report %d/%d: nodes = %d", info.RootDone, info.RootTotal, info.Nodes)
		}
		if info.RootDone == info.RootTotal && info.Nodes != rec.Nodes {
			t.Errorf("final report nodes = %d, want %d", info.Nodes, rec.Nodes)
		}
	}
}

func TestCancelledSmallSearch(t *testing.T) {
	pos := board.NewPosition()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		eng := NewEngine()
		eng.SetWorkers(workers)
		if _, err := eng.Decide(ctx, &pos, 1); !errors.Is(err, context.Canceled) {
			t.Errorf("workers %d: expected context.Canceled, got %v", workers, err)
		}
	}
}

func TestSearchTimeout(t *testing.T) {
	pos := board.NewPosition()
	eng := quiet(NewEngine())
	limits := eng.Limits(6)
	limits.Timeout = time.Millisecond

	start := time.Now()
	_, err := eng.DecideWithLimits(context.Background(), &pos, limits)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("search ran %v past a 1ms timeout", elapsed)
	}
}

func TestStuckReplyIsDraw(t *testing.T) {
	// Whatever the bot plays, the human pawn on (7,4) stays blocked and
	// the human has no action one ply below the root.
	pos := board.ParseBoard("□□□□□□□□\n"+
		"♟□□□□□□□\n"+
		"□□□□□□□□\n"+
		"□□□□□□□♟\n"+
		"□□□□□□□♙", true)

	rec, err := quiet(NewEngine()).Decide(context.Background(), &pos, 2)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Value != 0 {
		t.Errorf("value = %v, want 0", rec.Value)
	}
	if rec.Nodes != 3 {
		t.Errorf("nodes = %d, want root + 2 children", rec.Nodes)
	}
	if rec.Action.From != board.NewSquare(0, 1) {
		t.Errorf("action = %s, want the free pawn", rec.Action)
	}
}

func TestOrderActions(t *testing.T) {
	pos := board.ParseBoard("♜♔□□□□□♚\n"+
		"♘□□□□□□□", true)
	actions := pos.Actions()
	orderActions(&pos, actions)

	if len(actions) < 3 {
		t.Fatalf("actions = %v", actions)
	}
	if actions[0].To != board.NewSquare(1, 0) {
		t.Errorf("first = %s, want the king capture", actions[0])
	}
	if actions[1].To != board.NewSquare(0, 1) {
		t.Errorf("second = %s, want the knight capture", actions[1])
	}

	var quietActions []board.Action
	for _, a := range pos.Actions() {
		if _, ok := pos.PieceAt(a.To); !ok {
			quietActions = append(quietActions, a)
		}
	}
	for i, a := range quietActions {
		if actions[2+i] != a {
			t.Errorf("quiet action %d = %s, want %s in generation order", i, actions[2+i], a)
		}
	}
}

func TestDecisionRecordJSON(t *testing.T) {
	pos := board.ParseBoard(board.OpeningBoard, true)
	rec, err := NewEngine().Decide(context.Background(), &pos, 1)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"timeTaken", "minimaxValue", "actionTaken", "resultBoard", "numNodesExpanded", "intelligence"} {
		if _, ok := out[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
	if out["resultBoard"] != rec.Result.String() {
		t.Errorf("resultBoard = %v", out["resultBoard"])
	}
	action := out["actionTaken"].(map[string]any)
	piece := action["piece"].(map[string]any)
	if piece["icon"] != rec.Piece.String() {
		t.Errorf("icon = %v, want %s", piece["icon"], rec.Piece)
	}
}

func TestScoreToString(t *testing.T) {
	tests := map[float64]string{
		UtilityScore:  "Bot wins",
		-UtilityScore: "Human wins",
		1.5:           "+1.50",
		-0.25:         "-0.25",
	}
	for score, want := range tests {
		if got := ScoreToString(score); got != want {
			t.Errorf("ScoreToString(%v) = %q, want %q", score, got, want)
		}
	}
}
