package engine

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/hailam/chessbot/internal/board"
	"golang.org/x/sync/errgroup"
)

// cancelCheckMask sets how often (in nodes) the search polls its context.
const cancelCheckMask = 1<<10 - 1

// Searcher performs one depth-bounded minimax search.
// It is not reused across decisions.
type Searcher struct {
	ctx     context.Context
	depth   int
	pruning bool
	nodes   *atomic.Uint64 // Shared with the root's helper searchers
	onInfo  func(SearchInfo)
}

// NewSearcher creates a searcher that cuts off at depth plies below the root.
func NewSearcher(ctx context.Context, limits SearchLimits) *Searcher {
	return &Searcher{
		ctx:     ctx,
		depth:   limits.Depth,
		pruning: limits.Pruning,
		nodes:   new(atomic.Uint64),
		onInfo:  limits.OnInfo,
	}
}

// Nodes returns the number of positions visited so far.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// visit counts a node and polls for cancellation.
func (s *Searcher) visit() error {
	if n := s.nodes.Add(1); n&cancelCheckMask == 0 {
		return s.ctx.Err()
	}
	return nil
}

// Minimax returns the value of pos searched from the given ply.
// The bot maximises and the human minimises. With pruning enabled the
// result is exact whenever it lies strictly inside (alpha, beta).
func (s *Searcher) Minimax(pos *board.Position, ply int, alpha, beta float64) (float64, error) {
	if err := s.visit(); err != nil {
		return 0, err
	}

	if pos.IsTerminal() {
		return Utility(pos), nil
	}
	if ply >= s.depth {
		return Evaluate(pos), nil
	}

	actions := pos.Actions()
	if len(actions) == 0 {
		// No continuation: treat as the forced draw of a null move.
		null := pos.ApplyNull()
		return Utility(&null), nil
	}
	if s.pruning {
		orderActions(pos, actions)
	}

	maximizing := pos.IsBotTurn()
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}

	for _, a := range actions {
		child, err := pos.Apply(a)
		if err != nil {
			return 0, err
		}
		v, err := s.Minimax(&child, ply+1, alpha, beta)
		if err != nil {
			return 0, err
		}

		if maximizing {
			if v > best {
				best = v
			}
			if s.pruning {
				alpha = math.Max(alpha, best)
				if alpha >= beta {
					break
				}
			}
		} else {
			if v < best {
				best = v
			}
			if s.pruning {
				beta = math.Min(beta, best)
				if alpha >= beta {
					break
				}
			}
		}
	}

	return best, nil
}

// rootResult is the outcome of searching the root position.
type rootResult struct {
	index int // Index into actions, -1 if there were none
	value float64
	child board.Position
}

// better reports whether v beats best for the side to move.
// Comparison is strict so the first action in generation order wins ties.
func better(v, best float64, maximizing bool) bool {
	if maximizing {
		return v > best
	}
	return v < best
}

// enterRoot counts the root and fails fast on a finished context, which
// the periodic poll in visit would miss on small trees.
func (s *Searcher) enterRoot() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return s.visit()
}

// SearchRoot searches every root action in order and returns the best one.
func (s *Searcher) SearchRoot(pos *board.Position, actions []board.Action) (rootResult, error) {
	if err := s.enterRoot(); err != nil {
		return rootResult{}, err
	}
	if len(actions) == 0 {
		return rootResult{index: -1, value: 0, child: pos.ApplyNull()}, nil
	}

	maximizing := pos.IsBotTurn()
	res := rootResult{index: -1}
	alpha, beta := math.Inf(-1), math.Inf(1)

	for i, a := range actions {
		child, err := pos.Apply(a)
		if err != nil {
			return rootResult{}, err
		}
		v, err := s.Minimax(&child, 1, alpha, beta)
		if err != nil {
			return rootResult{}, err
		}
		if res.index < 0 || better(v, res.value, maximizing) {
			res = rootResult{index: i, value: v, child: child}
			if s.pruning {
				if maximizing {
					alpha = v
				} else {
					beta = v
				}
			}
		}
		s.report(i+1, len(actions), res.value)
	}
	return res, nil
}

// SearchRootParallel searches root actions on up to workers goroutines.
// Values are combined by action index, so the chosen action does not depend
// on which goroutine finishes first.
func (s *Searcher) SearchRootParallel(pos *board.Position, actions []board.Action, workers int) (rootResult, error) {
	if err := s.enterRoot(); err != nil {
		return rootResult{}, err
	}
	if len(actions) == 0 {
		return rootResult{index: -1, value: 0, child: pos.ApplyNull()}, nil
	}

	children := make([]board.Position, len(actions))
	for i, a := range actions {
		child, err := pos.Apply(a)
		if err != nil {
			return rootResult{}, err
		}
		children[i] = child
	}

	values := make([]float64, len(actions))
	var done atomic.Int32

	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(workers)
	sub := &Searcher{ctx: ctx, depth: s.depth, pruning: s.pruning, nodes: s.nodes}
	for i := range children {
		i := i
		g.Go(func() error {
			v, err := sub.Minimax(&children[i], 1, math.Inf(-1), math.Inf(1))
			if err != nil {
				return err
			}
			values[i] = v
			s.report(int(done.Add(1)), len(actions), v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rootResult{}, err
	}

	maximizing := pos.IsBotTurn()
	best := 0
	for i := 1; i < len(values); i++ {
		if better(values[i], values[best], maximizing) {
			best = i
		}
	}
	return rootResult{index: best, value: values[best], child: children[best]}, nil
}

// report forwards root progress to the OnInfo callback, if any.
func (s *Searcher) report(done, total int, value float64) {
	if s.onInfo == nil {
		return
	}
	s.onInfo(SearchInfo{
		Depth:     s.depth,
		RootDone:  done,
		RootTotal: total,
		Value:     value,
		Nodes:     s.nodes.Load(),
	})
}
