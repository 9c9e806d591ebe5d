// Package book provides opening book lookups keyed by position hash.
package book

import (
	"github.com/hailam/tulip/internal/board"
)

// Book looks up candidate moves for a position. An empty result is an
// ordinary miss; errors are reserved for failures of the backing store.
// Every returned move is legal in pos.
type Book interface {
	Lookup(pos *board.Position) ([]board.Move, error)
}

// Entry is a book move with its weight.
type Entry struct {
	Move   board.Move
	Weight uint16
}

// Empty is a book without moves.
type Empty struct{}

// Lookup always misses.
func (Empty) Lookup(*board.Position) ([]board.Move, error) {
	return nil, nil
}

// Chain consults each book in turn and returns the first hit.
type Chain []Book

// Lookup returns the moves of the first book that has any.
func (c Chain) Lookup(pos *board.Position) ([]board.Move, error) {
	for _, b := range c {
		moves, err := b.Lookup(pos)
		if err != nil {
			return nil, err
		}
		if len(moves) > 0 {
			return moves, nil
		}
	}
	return nil, nil
}

// resolve maps a from/to/promotion triple to the matching legal move.
func resolve(pos *board.Position, from, to board.Square, promo board.PieceType) (board.Move, bool) {
	for _, m := range pos.LegalMoves() {
		if m.From != from || m.To != to {
			continue
		}
		if m.IsPromotion() {
			if m.Promotion() == promo {
				return m, true
			}
			continue
		}
		if promo == board.NoPieceType {
			return m, true
		}
	}
	return board.NoMove, false
}
