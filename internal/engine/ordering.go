package engine

import (
	"github.com/hailam/tulip/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	GoodCaptureBase = 1000000  // Base score for captures
	PromotionScore  = 950000   // Quiet promotions
	KillerScore1    = 900000   // First killer move
	KillerScore2    = 800000   // Second killer move
	historyMax      = 700000   // History never outranks a killer
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MoveOrderer handles move ordering for one search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move

	// History heuristic (indexed by [piece][to])
	history [12][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	mo := &MoveOrderer{}
	mo.Clear()
	return mo
}

// Clear forgets killers and ages history.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves fills scores with an ordering score for every move in moves.
func (mo *MoveOrderer) ScoreMoves(moves *board.MoveList, scores []int, ply int, ttMove board.Move) {
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(moves.Get(i), ply, ttMove)
	}
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}

	if m.IsCapture() {
		score := GoodCaptureBase + mvvLva[m.Captured.Type()][m.Piece.Type()]*1000
		if m.IsPromotion() {
			score += board.PieceValue[m.Promotion()]
		}
		return score
	}

	if m.IsPromotion() {
		return PromotionScore + board.PieceValue[m.Promotion()]
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}
	return mo.history[m.Piece][m.To]
}

// UpdateKillers records a quiet move that caused a beta cutoff.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory rewards a quiet cutoff move by depth squared.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	h := &mo.history[m.Piece][m.To]
	*h += depth * depth
	if *h > historyMax {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}

// PickMove swaps the best-scored move from index start onward into start.
func PickMove(moves *board.MoveList, scores []int, start int) {
	best := start
	for i := start + 1; i < moves.Len(); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	if best != start {
		moves.Swap(start, best)
		scores[start], scores[best] = scores[best], scores[start]
	}
}
