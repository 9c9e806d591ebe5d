package engine

import (
	"time"

	"github.com/hailam/tulip/internal/board"
)

// UCILimits contains the parameters of a UCI "go" command.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
	Depth     int              // maximum search depth
	Nodes     uint64           // maximum nodes to search
	Infinite  bool             // search until stopped
}

// Limits turns clock parameters into search limits for side us at game
// ply. Infinite, fixed move time, and searches without a clock pass
// through unchanged.
func (l UCILimits) Limits(us board.Color, ply int) Limits {
	out := Limits{Depth: l.Depth, Nodes: l.Nodes, MoveTime: l.MoveTime}
	if l.Infinite || l.MoveTime > 0 || l.Time[us] == 0 {
		return out
	}
	out.MoveTime = allocateTime(l.Time[us], l.Inc[us], l.MovesToGo, ply)
	return out
}

// allocateTime splits the remaining time over the expected number of moves
// and keeps a safety margin.
func allocateTime(left, inc time.Duration, movesToGo, ply int) time.Duration {
	mtg := movesToGo
	if mtg == 0 {
		// Sudden death: expect fewer moves as the game goes on
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
	}

	budget := left/time.Duration(mtg) + inc*9/10
	if ply < 8 {
		budget = budget * 85 / 100
	}

	if limit := left * 8 / 10; budget > limit {
		budget = limit
	}
	if budget < 10*time.Millisecond {
		budget = 10 * time.Millisecond
	}
	return budget
}
