package engine

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/tulip/internal/board"
)

// Perft counts the leaf nodes of the legal move tree to depth.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	var ml board.MoveList
	pos.GenerateLegal(&ml)
	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := pos.MakeMove(m)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// DivideEntry is the node count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// PerftDivide splits the root moves across workers, each on its own copy
// of pos, and returns per-move counts sorted by coordinate text. workers
// <= 0 uses GOMAXPROCS. pos itself is never mutated.
func PerftDivide(ctx context.Context, pos *board.Position, depth, workers int) ([]DivideEntry, error) {
	if depth < 1 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	moves := pos.LegalMoves()
	out := make([]DivideEntry, len(moves))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := pos.Copy()
			p.MakeMove(m)
			out[i] = DivideEntry{Move: m, Nodes: Perft(p, depth-1)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Move.Coordinate() < out[j].Move.Coordinate()
	})
	return out, nil
}

// DivideTotal sums the counts of a divide.
func DivideTotal(entries []DivideEntry) uint64 {
	var n uint64
	for _, e := range entries {
		n += e.Nodes
	}
	return n
}
