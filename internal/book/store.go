package book

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/hailam/tulip/internal/board"
)

const storePrefix = "book/"

// Store is a book kept in BadgerDB. Each position is keyed by its hash in
// 16-digit uppercase hex and holds a JSON list of move texts, which are
// matched against the legal moves at lookup time.
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates a book database in dir. An empty dir keeps
// the book in memory.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WithMessage(err, "open book store")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func storeKey(hash uint64) []byte {
	return []byte(storePrefix + board.HashHex(hash))
}

// Texts returns the raw move texts stored for hash.
func (s *Store) Texts(hash uint64) ([]string, error) {
	var texts []string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &texts)
		})
	})
	return texts, errors.WithMessagef(err, "read book entry %s", board.HashHex(hash))
}

// AddText appends move texts to the entry for hash, skipping texts
// already present.
func (s *Store) AddText(hash uint64, texts ...string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var existing []string
		item, err := txn.Get(storeKey(hash))
		switch {
		case err == badger.ErrKeyNotFound:
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return err
			}
		}

		seen := make(map[string]bool, len(existing))
		for _, t := range existing {
			seen[t] = true
		}
		for _, t := range texts {
			if !seen[t] {
				existing = append(existing, t)
				seen[t] = true
			}
		}

		data, err := json.Marshal(existing)
		if err != nil {
			return err
		}
		return txn.Set(storeKey(hash), data)
	})
	return errors.WithMessagef(err, "write book entry %s", board.HashHex(hash))
}

// Add records moves for pos in coordinate notation.
func (s *Store) Add(pos *board.Position, moves ...board.Move) error {
	texts := make([]string, len(moves))
	for i, m := range moves {
		texts[i] = m.Coordinate()
	}
	return s.AddText(pos.Hash, texts...)
}

// Lookup returns the stored moves that match a legal move in pos, in
// insertion order. Unrecognized or illegal texts are skipped.
func (s *Store) Lookup(pos *board.Position) ([]board.Move, error) {
	texts, err := s.Texts(pos.Hash)
	if err != nil {
		return nil, err
	}
	var moves []board.Move
	for _, t := range texts {
		if m, ok := pos.MatchMove(t); ok {
			moves = append(moves, m)
		}
	}
	return moves, nil
}

// Size counts the positions in the store.
func (s *Store) Size() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(storePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, errors.WithMessage(err, "count book entries")
}
