package engine

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hailam/tulip/internal/board"
)

// Search constants
const (
	Infinity  = 32000
	MateScore = 10000
	MaxPly    = 128
	MaxDepth  = 64

	// Budgets other than the node count are polled this often.
	pollInterval = 2048
)

// IsMateScore reports whether score encodes a forced mate for either side.
func IsMateScore(score int) bool {
	return score > MateScore-MaxPly || score < -MateScore+MaxPly
}

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	n := pv.length[ply+1]
	copy(pv.moves[ply][ply+1:n], pv.moves[ply+1][ply+1:n])
	pv.length[ply] = n
}

// line returns the variation starting at the root move m.
func (pv *PVTable) line(m board.Move) []board.Move {
	n := pv.length[1]
	out := make([]board.Move, 0, n)
	out = append(out, m)
	if n > 1 {
		out = append(out, pv.moves[1][1:n]...)
	}
	return out
}

// RootMove is one root move with its score from the side to move's view.
type RootMove struct {
	Move  board.Move
	SAN   string
	Score int
	PV    []board.Move
}

// Searcher runs one negamax search over a position it owns for the
// duration of the call. Every move it applies is unmade before the
// call returns, on every path.
type Searcher struct {
	eval    *Evaluator
	tt      *TranspositionTable
	orderer *MoveOrderer
	stop    *atomic.Bool

	pos      *board.Position
	path     []uint64 // game history then search path, current position last
	rootLen  int      // len(path) at the root
	ctx      context.Context
	limits   Limits
	deadline time.Time
	nodes    uint64
	stopped  bool

	pv     PVTable
	lists  [MaxPly + 1]board.MoveList
	scores [MaxPly + 1][256]int
}

// NewSearcher creates a searcher. stop may be shared with an Engine so
// that Stop reaches a running search.
func NewSearcher(eval *Evaluator, tt *TranspositionTable, orderer *MoveOrderer, stop *atomic.Bool) *Searcher {
	if stop == nil {
		stop = new(atomic.Bool)
	}
	return &Searcher{eval: eval, tt: tt, orderer: orderer, stop: stop}
}

// Nodes returns the number of nodes visited so far.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// prepare binds the searcher to a position and its game history.
func (s *Searcher) prepare(ctx context.Context, pos *board.Position, history []uint64, limits Limits, start time.Time) {
	s.pos = pos
	s.ctx = ctx
	s.limits = limits
	s.nodes = 0
	s.stopped = false
	s.deadline = time.Time{}
	if limits.MoveTime > 0 {
		s.deadline = start.Add(limits.MoveTime)
	}

	s.path = append(s.path[:0], history...)
	if n := len(s.path); n == 0 || s.path[n-1] != pos.Hash {
		s.path = append(s.path, pos.Hash)
	}
	s.rootLen = len(s.path)
}

// checkStop polls every budget. The node budget is exact; time, context
// and the stop flag are polled every pollInterval nodes.
func (s *Searcher) checkStop() bool {
	if s.stopped {
		return true
	}
	if s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes {
		s.stopped = true
		return true
	}
	if s.nodes%pollInterval != 0 {
		return false
	}
	switch {
	case s.stop.Load():
		s.stopped = true
	case s.ctx != nil && s.ctx.Err() != nil:
		s.stopped = true
	case !s.deadline.IsZero() && !time.Now().Before(s.deadline):
		s.stopped = true
	}
	return s.stopped
}

func (s *Searcher) makeMove(m board.Move) {
	s.pos.Apply(m)
	s.path = append(s.path, s.pos.Hash)
}

func (s *Searcher) unmakeMove(m board.Move) {
	s.path = s.path[:len(s.path)-1]
	s.pos.Unmake(m)
}

// isRepetition reports a threefold repetition over the whole game, or any
// repeat of a position first reached inside the search, which the side to
// move could repeat again. Only positions since the last irreversible
// move are compared.
func (s *Searcher) isRepetition() bool {
	n := len(s.path)
	hash := s.path[n-1]
	oldest := n - 1 - s.pos.HalfMoveClock
	if oldest < 0 {
		oldest = 0
	}
	count := 1
	for i := n - 3; i >= oldest; i -= 2 {
		if s.path[i] != hash {
			continue
		}
		if i >= s.rootLen {
			return true
		}
		count++
		if count >= 3 {
			return true
		}
	}
	return false
}

// searchRoot scores every root move with a full window, so that each
// score is exact, and leaves root sorted best first. It returns false
// when the search was stopped part way; moves searched before the stop
// keep their new scores.
func (s *Searcher) searchRoot(depth int, root []RootMove) bool {
	complete := true
	for i := range root {
		m := root[i].Move
		s.pv.length[1] = 1
		s.makeMove(m)
		score := -s.negamax(depth-1, 1, -Infinity, Infinity)
		s.unmakeMove(m)
		if s.stopped {
			complete = false
			break
		}
		root[i].Score = score
		root[i].PV = s.pv.line(m)
	}
	sort.SliceStable(root, func(i, j int) bool {
		return root[i].Score > root[j].Score
	})
	if complete {
		s.tt.Store(s.pos.Hash, depth, root[0].Score, TTExact, root[0].Move)
	}
	return complete
}

// negamax returns the score of the current position from the side to
// move's point of view.
func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	s.pv.length[ply] = ply
	s.nodes++
	if s.checkStop() {
		return 0
	}

	pos := s.pos
	if pos.IsMaterialDraw() || s.isRepetition() {
		return 0
	}
	if ply >= MaxPly-1 {
		return s.eval.Relative(pos)
	}

	inCheck := pos.InCheck(pos.SideToMove)
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	ml := &s.lists[ply]
	ml.Clear()
	pos.GenerateLegal(ml)
	if ml.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}
	if pos.IsFiftyMoveDraw() {
		return 0
	}

	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		ttMove = entry.BestMove
	}
	scores := s.scores[ply][:ml.Len()]
	s.orderer.ScoreMoves(ml, scores, ply, ttMove)

	best := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	for i := 0; i < ml.Len(); i++ {
		PickMove(ml, scores, i)
		m := ml.Get(i)

		s.makeMove(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		s.unmakeMove(m)
		if s.stopped {
			return 0
		}

		if score <= best {
			continue
		}
		best = score
		bestMove = m
		if score <= alpha {
			continue
		}
		alpha = score
		flag = TTExact
		s.pv.update(ply, m)
		if alpha >= beta {
			flag = TTLowerBound
			if m.IsQuiet() {
				s.orderer.UpdateKillers(m, ply)
				s.orderer.UpdateHistory(m, depth)
			}
			break
		}
	}

	s.tt.Store(pos.Hash, depth, best, flag, bestMove)
	return best
}

// quiescence resolves captures and promotions until the position is quiet.
// In check every evasion is searched and no stand-pat is allowed.
func (s *Searcher) quiescence(ply, alpha, beta int) int {
	s.pv.length[ply] = ply
	s.nodes++
	if s.checkStop() {
		return 0
	}

	pos := s.pos
	if pos.IsMaterialDraw() {
		return 0
	}
	if ply >= MaxPly-1 {
		return s.eval.Relative(pos)
	}

	inCheck := pos.InCheck(pos.SideToMove)
	ml := &s.lists[ply]
	ml.Clear()

	best := -Infinity
	if inCheck {
		pos.GenerateLegal(ml)
		if ml.Len() == 0 {
			return -MateScore + ply
		}
	} else {
		best = s.eval.Relative(pos)
		if best >= beta {
			return best
		}
		if best > alpha {
			alpha = best
		}
		pos.GenerateCaptures(ml)
	}

	scores := s.scores[ply][:ml.Len()]
	s.orderer.ScoreMoves(ml, scores, MaxPly, board.NoMove)
	for i := 0; i < ml.Len(); i++ {
		PickMove(ml, scores, i)
		m := ml.Get(i)

		s.makeMove(m)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.unmakeMove(m)
		if s.stopped {
			return 0
		}

		if score > best {
			best = score
			if score > alpha {
				alpha = score
				if alpha >= beta {
					break
				}
			}
		}
	}
	return best
}
