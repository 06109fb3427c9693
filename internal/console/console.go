// Package console implements a line-based text protocol for playing against
// the bot from a terminal or driving it from scripts.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
)

// DefaultLevel is the intelligence level used by "go" without arguments.
const DefaultLevel = 3

// Console reads commands and writes replies, one per line.
type Console struct {
	engine   *engine.Engine
	position board.Position
	level    int

	outMu sync.Mutex
	out   io.Writer

	// Search state
	searchMu     sync.Mutex
	cancelSearch context.CancelFunc
	searchDone   chan struct{}
}

// New creates a console handler positioned at the opening.
func New(eng *engine.Engine, out io.Writer) *Console {
	return &Console{
		engine:   eng,
		position: board.NewPosition(),
		level:    DefaultLevel,
		out:      out,
	}
}

// println writes one reply line.
func (c *Console) println(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Run processes commands until "quit" or the end of input, then waits for
// any running search to finish.
func (c *Console) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	defer c.waitSearch()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		// Commands other than stop wait for a running search.
		if cmd != "stop" && cmd != "quit" {
			c.waitSearch()
		}

		switch cmd {
		case "isready":
			c.println("readyok")
		case "newgame":
			c.position = board.NewPosition()
		case "position":
			c.handlePosition(args)
		case "d":
			c.handleDisplay()
		case "actions":
			c.handleActions()
		case "move":
			c.handleMove(args)
		case "level":
			c.handleLevel(args)
		case "go":
			c.handleGo(args, false)
		case "play":
			c.handleGo(args, true)
		case "eval":
			c.handleEval()
		case "perft":
			c.handlePerft(args)
		case "stop":
			c.handleStop()
		case "quit":
			c.handleStop()
			return
		default:
			c.println("error unknown command %q", cmd)
		}
	}
}

// handlePosition sets up a position.
// Formats:
//   - position opening [bot]
//   - position board <row>/<row>/.../<row> [bot]
func (c *Console) handlePosition(args []string) {
	if len(args) == 0 {
		c.println("error usage: position opening|board <rows> [bot]")
		return
	}
	botTurn := len(args) > 1 && args[len(args)-1] == "bot"

	switch args[0] {
	case "opening":
		c.position = board.ParseBoard(board.OpeningBoard, botTurn)
	case "board":
		if len(args) < 2 {
			c.println("error missing board rows")
			return
		}
		text := strings.ReplaceAll(args[1], "/", "\n")
		pos, err := board.ParseBoardStrict(text, botTurn)
		if err != nil {
			c.println("error %v", err)
			return
		}
		c.position = pos
	default:
		c.println("error unknown position kind %q", args[0])
	}
}

func (c *Console) handleDisplay() {
	c.println("%s", c.position.String())
	switch {
	case !c.position.IsTerminal():
		c.println("turn %s", c.position.Turn())
	case c.position.IsDraw():
		c.println("result draw")
	default:
		c.println("result %s wins", c.position.Winner())
	}
}

func (c *Console) handleActions() {
	if c.position.IsTerminal() {
		c.println("actions 0")
		return
	}
	actions := c.position.Actions()
	c.println("actions %d", len(actions))
	for _, a := range actions {
		c.println("%s %s", c.position.Piece(a.Piece), a)
	}
}

// parseSquares reads "file rank file rank".
func parseSquares(args []string) (from, to board.Square, err error) {
	if len(args) != 4 {
		return board.NoSquare, board.NoSquare, fmt.Errorf("want 4 coordinates, got %d", len(args))
	}
	var v [4]int
	for i, s := range args {
		if v[i], err = strconv.Atoi(s); err != nil {
			return board.NoSquare, board.NoSquare, err
		}
	}
	return board.NewSquare(v[0], v[1]), board.NewSquare(v[2], v[3]), nil
}

func (c *Console) handleMove(args []string) {
	from, to, err := parseSquares(args)
	if err != nil {
		c.println("error %v", err)
		return
	}
	a, err := c.position.LegalAction(from, to)
	if err != nil {
		c.println("error %v", err)
		return
	}
	next, err := c.position.Apply(a)
	if err != nil {
		c.println("error %v", err)
		return
	}
	c.position = next
	c.println("ok %s", a)
}

func (c *Console) handleLevel(args []string) {
	if len(args) != 1 {
		c.println("level %d", c.level)
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		c.println("error invalid level %q", args[0])
		return
	}
	c.level = n
}

// parseGoOptions reads "[level N] [workers N] [nopruning] [movetime MS]".
func (c *Console) parseGoOptions(args []string) (engine.SearchLimits, error) {
	limits := c.engine.Limits(c.level)
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "nopruning":
			limits.Pruning = false
		case "level", "depth", "workers", "movetime":
			if i+1 >= len(args) {
				return limits, fmt.Errorf("%s needs a value", args[i])
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return limits, err
			}
			switch args[i] {
			case "level", "depth":
				limits.Depth = n
			case "workers":
				limits.Workers = n
			case "movetime":
				limits.Timeout = time.Duration(n) * time.Millisecond
			}
			i++
		default:
			return limits, fmt.Errorf("unknown option %q", args[i])
		}
	}
	return limits, nil
}

// handleGo searches in the background. With apply set the chosen action is
// played on the console position.
func (c *Console) handleGo(args []string, apply bool) {
	limits, err := c.parseGoOptions(args)
	if err != nil {
		c.println("error %v", err)
		return
	}
	limits.OnInfo = c.sendInfo

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.searchMu.Lock()
	c.cancelSearch = cancel
	c.searchDone = done
	c.searchMu.Unlock()

	pos := c.position

	go func() {
		defer close(done)
		defer cancel()

		rec, err := c.engine.DecideWithLimits(ctx, &pos, limits)
		if err != nil {
			c.println("error %v", err)
			return
		}
		c.println("bestaction %s value %s nodes %d time %d",
			rec.Move(), engine.ScoreToString(rec.Value), rec.Nodes, rec.Elapsed.Milliseconds())
		if apply {
			c.position = rec.Result
		}
	}()
}

func (c *Console) sendInfo(info engine.SearchInfo) {
	c.println("info depth %d root %d/%d value %.2f nodes %s",
		info.Depth, info.RootDone, info.RootTotal, info.Value, humanize.Comma(int64(info.Nodes)))
}

func (c *Console) handleStop() {
	c.searchMu.Lock()
	cancel := c.cancelSearch
	c.searchMu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.waitSearch()
}

// waitSearch blocks until the background search, if any, has finished.
func (c *Console) waitSearch() {
	c.searchMu.Lock()
	done := c.searchDone
	c.searchMu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Console) handleEval() {
	if c.position.IsTerminal() {
		c.println("utility %s", engine.ScoreToString(engine.Utility(&c.position)))
		return
	}
	c.println("eval %.2f", engine.Evaluate(&c.position))
}

func (c *Console) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			c.println("error perft depth must be a positive integer, got %q", args[0])
			return
		}
		depth = n
	}

	start := time.Now()
	nodes := c.engine.Perft(&c.position, depth)
	elapsed := time.Since(start)

	c.println("nodes %d", nodes)
	c.println("time %v", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		c.println("nps %s", humanize.Comma(int64(float64(nodes)/elapsed.Seconds())))
	}
}
