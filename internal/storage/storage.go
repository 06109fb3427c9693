package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
)

// Storage keys
const (
	keyPreferences    = "preferences"
	keyStats          = "stats"
	keyFirstLaunch    = "first_launch"
	keyDecisionPrefix = "decision/"
)

// Difficulty is the bot strength chosen in the desktop client. Its String
// form keys the per-difficulty stats.
type Difficulty = engine.Difficulty

const (
	DifficultyEasy   = engine.Easy
	DifficultyMedium = engine.Medium
	DifficultyHard   = engine.Hard
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username     string     `json:"username"`
	Difficulty   Difficulty `json:"difficulty"`
	Pruning      bool       `json:"pruning"`
	ShowHints    bool       `json:"show_hints"`
	SoundEnabled bool       `json:"sound_enabled"`
	LastPlayed   time.Time  `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:     "Player",
		Difficulty:   DifficultyMedium,
		Pruning:      true,
		ShowHints:    true,
		SoundEnabled: true,
		LastPlayed:   time.Now(),
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByDiff     map[string]int `json:"wins_by_difficulty"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	TotalMoves     int            `json:"total_moves"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByDiff: make(map[string]int),
	}
}

// GameResult is the outcome of a finished game, seen from the human.
type GameResult struct {
	Winner     board.Owner // NoOwner on a draw
	Difficulty Difficulty
	Moves      int
	Duration   time.Duration
}

// DecisionEntry is one stored bot decision.
type DecisionEntry struct {
	Time      time.Time          `json:"time"`
	Board     string             `json:"board"`
	Level     int                `json:"intelligence"`
	Value     float64            `json:"minimaxValue"`
	Action    *engine.ActionView `json:"actionTaken"`
	Result    string             `json:"resultBoard"`
	Nodes     uint64             `json:"numNodesExpanded"`
	ElapsedMs int64              `json:"timeTaken"`
}

// NewDecisionEntry builds the stored form of rec, made from the given board.
func NewDecisionEntry(pos *board.Position, rec engine.DecisionRecord) DecisionEntry {
	e := DecisionEntry{
		Time:      time.Now(),
		Board:     pos.String(),
		Level:     rec.Level,
		Value:     rec.Value,
		Result:    rec.Result.String(),
		Nodes:     rec.Nodes,
		ElapsedMs: rec.Elapsed.Milliseconds(),
	}
	if !rec.Action.IsNull() {
		v := engine.NewActionView(pos, rec.Action)
		e.Action = &v
	}
	return e
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	seq atomic.Uint32
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	log.Printf("[storage] database directory: %s", dir)
	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that is discarded on Close.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// putJSON stores v under key.
func (s *Storage) putJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// getJSON loads key into v and leaves v untouched if the key is missing.
func (s *Storage) getJSON(key []byte, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.putJSON([]byte(keyPreferences), prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.getJSON([]byte(keyPreferences), prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.putJSON([]byte(keyStats), stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.getJSON([]byte(keyStats), stats)
	if stats.WinsByDiff == nil {
		stats.WinsByDiff = make(map[string]int)
	}
	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration
	stats.TotalMoves += result.Moves

	switch result.Winner {
	case board.NoOwner:
		stats.Draws++
		stats.CurrentStreak = 0
	case board.Human:
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		stats.WinsByDiff[result.Difficulty.String()]++
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// decisionKey orders entries by time; the sequence separates entries
// written in the same nanosecond.
func (s *Storage) decisionKey(t time.Time) []byte {
	key := make([]byte, 0, len(keyDecisionPrefix)+12)
	key = append(key, keyDecisionPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(t.UnixNano()))
	key = binary.BigEndian.AppendUint32(key, s.seq.Add(1))
	return key
}

// SaveDecision appends a decision to the history.
func (s *Storage) SaveDecision(entry DecisionEntry) error {
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	return s.putJSON(s.decisionKey(entry.Time), entry)
}

// ListDecisions returns up to limit decisions, newest first.
// A limit of zero or less returns all of them.
func (s *Storage) ListDecisions(limit int) ([]DecisionEntry, error) {
	var out []DecisionEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyDecisionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(keyDecisionPrefix), 0xFF)
		for it.Seek(seek); it.Valid(); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var e DecisionEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})

	return out, err
}

// CountDecisions returns the number of stored decisions.
func (s *Storage) CountDecisions() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyDecisionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
