package storage

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/hailam/tulip/internal/board"
)

// Storage keys
const (
	keySettings = "settings"
	keyStats    = "stats"
	gamePrefix  = "game/"
)

// Settings stores engine defaults between runs.
type Settings struct {
	HashMB     int           `json:"hash_mb"`
	Depth      int           `json:"depth"`
	MoveTime   time.Duration `json:"move_time"`
	UseBook    bool          `json:"use_book"`
	LastPlayed time.Time     `json:"last_played"`
}

// DefaultSettings returns the settings used before any are saved.
func DefaultSettings() *Settings {
	return &Settings{
		HashMB:   16,
		Depth:    5,
		MoveTime: 5 * time.Second,
		UseBook:  true,
	}
}

// Stats counts saved finished games by result.
type Stats struct {
	Games   int            `json:"games"`
	Results map[string]int `json:"results"`
}

// NewStats returns empty statistics.
func NewStats() *Stats {
	return &Stats{Results: make(map[string]int)}
}

// GameRecord is a game as stored: where it started and every move played.
type GameRecord struct {
	ID       string    `json:"id"`
	StartFEN string    `json:"start_fen"`
	Moves    []string  `json:"moves"` // coordinate notation
	SAN      []string  `json:"san"`
	Status   string    `json:"status"`
	FinalFEN string    `json:"final_fen"`
	SavedAt  time.Time `json:"saved_at"`
}

// GameID derives a record ID from the start position and move list, so
// saving the same game twice overwrites one record.
func GameID(startFEN string, moves []string) string {
	return board.HashHex(xxhash.Sum64String(startFEN + "|" + strings.Join(moves, " ")))
}

// RecordFromGame captures g as a record.
func RecordFromGame(g *board.Game) GameRecord {
	moves := g.Moves()
	start, err := board.ParseFEN(g.StartFEN())
	if err != nil {
		// the game was built from this FEN
		panic(err)
	}

	rec := GameRecord{
		StartFEN: g.StartFEN(),
		Moves:    make([]string, len(moves)),
		SAN:      start.SANLine(moves),
		Status:   g.Status().String(),
		FinalFEN: g.Position().FEN(),
	}
	for i, m := range moves {
		rec.Moves[i] = m.Coordinate()
	}
	rec.ID = GameID(rec.StartFEN, rec.Moves)
	return rec
}

// Replay rebuilds the game a record describes.
func (r GameRecord) Replay() (*board.Game, error) {
	g, err := board.NewGame(r.StartFEN)
	if err != nil {
		return nil, err
	}
	for i, text := range r.Moves {
		if _, err := g.PushText(text); err != nil {
			return nil, errors.WithMessagef(err, "replay move %d of game %s", i+1, r.ID)
		}
	}
	return g, nil
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens or creates the database in dir. An empty dir keeps
// everything in memory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WithMessage(err, "open game store")
	}
	return &Storage{db: db}, nil
}

// NewStorage opens the database in the default data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// getJSON decodes the value at key into v. found is false when the key
// is absent, leaving v untouched.
func (s *Storage) getJSON(key string, v interface{}) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

func setJSON(txn *badger.Txn, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// SaveSettings saves engine settings.
func (s *Storage) SaveSettings(settings *Settings) error {
	settings.LastPlayed = time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, keySettings, settings)
	})
	return errors.WithMessage(err, "save settings")
}

// LoadSettings loads engine settings, returning defaults if none were saved.
func (s *Storage) LoadSettings() (*Settings, error) {
	settings := DefaultSettings()
	_, err := s.getJSON(keySettings, settings)
	return settings, errors.WithMessage(err, "load settings")
}

// LoadStats loads result statistics, returning empty stats if none exist.
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()
	_, err := s.getJSON(keyStats, stats)
	return stats, errors.WithMessage(err, "load stats")
}

// Save stores rec and returns its ID. The first save of a finished game
// is counted in the statistics.
func (s *Storage) Save(rec GameRecord) (string, error) {
	rec.ID = GameID(rec.StartFEN, rec.Moves)
	rec.SavedAt = time.Now()
	key := gamePrefix + rec.ID

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		isNew := err == badger.ErrKeyNotFound
		if err != nil && !isNew {
			return err
		}
		if err := setJSON(txn, key, rec); err != nil {
			return err
		}
		if !isNew || rec.Status == board.InProgress.String() {
			return nil
		}

		stats := NewStats()
		if item, err := txn.Get([]byte(keyStats)); err == nil {
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if stats.Results == nil {
			stats.Results = make(map[string]int)
		}
		stats.Games++
		stats.Results[rec.Status]++
		return setJSON(txn, keyStats, stats)
	})
	if err != nil {
		return "", errors.WithMessagef(err, "save game %s", rec.ID)
	}
	return rec.ID, nil
}

// SaveGame stores g and returns its ID.
func (s *Storage) SaveGame(g *board.Game) (string, error) {
	return s.Save(RecordFromGame(g))
}

// Load returns the record with the given ID. found is false when no such
// game exists.
func (s *Storage) Load(id string) (rec GameRecord, found bool, err error) {
	found, err = s.getJSON(gamePrefix+strings.ToUpper(id), &rec)
	return rec, found, errors.WithMessagef(err, "load game %s", id)
}

// List returns the IDs of all stored games in key order.
func (s *Storage) List() ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), gamePrefix))
		}
		return nil
	})
	return ids, errors.WithMessage(err, "list games")
}

// Delete removes a stored game. Deleting a missing game is not an error.
func (s *Storage) Delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(gamePrefix + strings.ToUpper(id)))
	})
	return errors.WithMessagef(err, "delete game %s", id)
}
