// Package engine implements evaluation and alpha-beta search.
package engine

import (
	"github.com/hailam/tulip/internal/board"
)

// Phase is the stage of the game, picked from the number of pieces on the board.
type Phase uint8

const (
	Opening Phase = iota
	Middlegame
	Endgame
)

var phaseNames = [...]string{"opening", "middlegame", "endgame"}

func (ph Phase) String() string {
	if int(ph) < len(phaseNames) {
		return phaseNames[ph]
	}
	return "unknown"
}

// PhaseOf counts every piece on the board, kings and pawns included:
// more than 20 is the opening, more than 10 the middlegame.
func PhaseOf(pos *board.Position) Phase {
	n := pos.PieceCount()
	switch {
	case n > 20:
		return Opening
	case n > 10:
		return Middlegame
	default:
		return Endgame
	}
}

// EndgameKind classifies a few endings that need dedicated terms.
type EndgameKind uint8

const (
	Unclassified EndgameKind = iota
	BlackRookVsKing
	WhiteRookVsKing
)

// ClassifyEndgame reports a king and single rook against a bare king.
func ClassifyEndgame(pos *board.Position) EndgameKind {
	if pos.PieceCount() != 3 {
		return Unclassified
	}
	switch {
	case pos.Pieces(board.White, board.Rook) != 0:
		return WhiteRookVsKing
	case pos.Pieces(board.Black, board.Rook) != 0:
		return BlackRookVsKing
	}
	return Unclassified
}

// Terms
const (
	doubledPawnPenalty = -15
	heavyLineBonus     = 25 // rook sharing a file or rank with own rook or queen, endgame only
	edgeDriveWeight    = 10
	kingCloseWeight    = 4
)

// Passed pawn bonus by relative rank.
var passedPawnBonus = [8]int{0, 5, 10, 20, 35, 60, 100, 0}

// Mobility weight per destination square, by piece type.
var mobilityWeight = [6]int{0, 4, 5, 2, 1, 0}

// Piece-square tables below are laid out as seen from White, rank 8 first.

var pawnOpeningPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 5, 15, 15, 5, 0, 0,
	0, 0, 8, 20, 20, 8, 0, 0,
	0, 0, 5, 10, 10, 0, 0, 0,
	5, 5, 0, -10, -10, 5, 5, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightOpeningPST = [64]int{
	-40, -20, -20, -20, -20, -20, -20, -40,
	-20, 0, 0, 0, 0, 0, 0, -20,
	-20, 0, 10, 10, 10, 10, 0, -20,
	-20, 0, 10, 15, 15, 10, 0, -20,
	-20, 0, 10, 15, 15, 10, 0, -20,
	-15, 0, 10, 5, 5, 10, 0, -15,
	-20, -5, 0, 5, 5, 0, -5, -20,
	-40, -25, -20, -20, -20, -20, -25, -40,
}

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pawnEndgamePST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	80, 80, 80, 80, 80, 80, 80, 80,
	50, 50, 50, 50, 50, 50, 50, 50,
	30, 30, 30, 30, 30, 30, 30, 30,
	15, 15, 15, 15, 15, 15, 15, 15,
	5, 5, 5, 5, 5, 5, 5, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// Castled corners are safe while heavy pieces remain.
var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// The king belongs in the centre once the board empties.
var kingEndgamePST = [64]int{
	-100, -75, -65, -50, -50, -65, -75, -100,
	-75, -50, -30, -20, -20, -30, -50, -75,
	-65, -30, 10, 20, 20, 10, -30, -65,
	-50, -20, 20, 30, 30, 20, -20, -50,
	-50, -20, 20, 30, 30, 20, -20, -50,
	-65, -30, 10, 20, 20, 10, -30, -65,
	-75, -50, -30, -20, -20, -30, -50, -75,
	-100, -75, -65, -50, -50, -65, -75, -100,
}

// Evaluator scores positions statically. Its tables are filled once by
// NewEvaluator and never written again, so one Evaluator may be shared by
// any number of searches.
type Evaluator struct {
	pst [3][6][64]int
}

// NewEvaluator builds the phase tables.
func NewEvaluator() *Evaluator {
	e := &Evaluator{}
	e.pst[Opening] = [6][64]int{pawnOpeningPST, knightOpeningPST, bishopPST, rookPST, queenPST, kingMidgamePST}
	e.pst[Middlegame] = [6][64]int{pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST}
	e.pst[Endgame] = [6][64]int{pawnEndgamePST, knightPST, bishopPST, rookPST, queenPST, kingEndgamePST}
	return e
}

// pstIndex maps a square to the White-view table layout.
func pstIndex(sq board.Square, c board.Color) board.Square {
	if c == board.White {
		return sq.Mirror()
	}
	return sq
}

// Evaluate returns the static evaluation from White's perspective. Dead
// drawn material scores exactly 0.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	if pos.IsMaterialDraw() {
		return 0
	}

	phase := PhaseOf(pos)
	score := 0
	for c := board.White; c <= board.Black; c++ {
		side := e.material(pos, c, phase) + e.mobility(pos, c) + e.pawnStructure(pos, c)
		if phase == Endgame {
			side += e.heavyLines(pos, c)
		}
		if c == board.White {
			score += side
		} else {
			score -= side
		}
	}
	return score + e.endgameDrive(pos)
}

// Relative returns the evaluation from the side to move's perspective.
func (e *Evaluator) Relative(pos *board.Position) int {
	if pos.SideToMove == board.Black {
		return -e.Evaluate(pos)
	}
	return e.Evaluate(pos)
}

// material sums piece values and piece-square bonuses for side c.
func (e *Evaluator) material(pos *board.Position, c board.Color, phase Phase) int {
	score := 0
	for pt := board.Pawn; pt <= board.King; pt++ {
		table := &e.pst[phase][pt]
		for bb := pos.Pieces(c, pt); bb != 0; {
			sq := bb.PopLSB()
			score += board.PieceValue[pt] + table[pstIndex(sq, c)]
		}
	}
	return score
}

// mobility counts pseudo-legal destinations of c's knights, bishops, rooks
// and queens.
func (e *Evaluator) mobility(pos *board.Position, c board.Color) int {
	score := 0
	for pt := board.Knight; pt <= board.Queen; pt++ {
		for bb := pos.Pieces(c, pt); bb != 0; {
			score += mobilityWeight[pt] * pos.Reach(bb.PopLSB()).PopCount()
		}
	}
	return score
}

// pawnStructure scores doubled and passed pawns for side c.
func (e *Evaluator) pawnStructure(pos *board.Position, c board.Color) int {
	own := pos.Pieces(c, board.Pawn)
	enemy := pos.Pieces(c.Other(), board.Pawn)
	score := 0

	for f := 0; f < 8; f++ {
		if n := (own & board.FileMask[f]).PopCount(); n > 1 {
			score += doubledPawnPenalty * (n - 1)
		}
	}

	for bb := own; bb != 0; {
		sq := bb.PopLSB()
		if frontSpan(sq, c)&enemy == 0 {
			score += passedPawnBonus[sq.RelativeRank(c)]
		}
	}
	return score
}

// frontSpan is every square ahead of sq, from c's point of view, on its
// own file and both neighbouring files.
func frontSpan(sq board.Square, c board.Color) board.Bitboard {
	if c == board.White {
		span := board.SquareBB(sq).North()
		return (span | span.East() | span.West()).NorthFill()
	}
	span := board.SquareBB(sq).South()
	return (span | span.East() | span.West()).SouthFill()
}

// heavyLines rewards each rook that shares a file or rank with another of
// c's rooks or queens.
func (e *Evaluator) heavyLines(pos *board.Position, c board.Color) int {
	rooks := pos.Pieces(c, board.Rook)
	heavy := rooks | pos.Pieces(c, board.Queen)
	score := 0
	for bb := rooks; bb != 0; {
		sq := bb.PopLSB()
		others := heavy &^ board.SquareBB(sq)
		if others&(board.FileMask[sq.File()]|board.RankMask[sq.Rank()]) != 0 {
			score += heavyLineBonus
		}
	}
	return score
}

// endgameDrive pushes a bare king to the edge and brings the attacking
// king closer in rook-versus-king endings.
func (e *Evaluator) endgameDrive(pos *board.Position) int {
	var strong board.Color
	switch ClassifyEndgame(pos) {
	case WhiteRookVsKing:
		strong = board.White
	case BlackRookVsKing:
		strong = board.Black
	default:
		return 0
	}

	weakKing := pos.KingSquare[strong.Other()]
	strongKing := pos.KingSquare[strong]
	bonus := edgeDriveWeight*centerDistance(weakKing) +
		kingCloseWeight*(14-manhattan(weakKing, strongKing))
	if strong == board.Black {
		return -bonus
	}
	return bonus
}

func centerDistance(sq board.Square) int {
	f, r := sq.File(), sq.Rank()
	return maxInt(3-f, f-4) + maxInt(3-r, r-4)
}

func manhattan(a, b board.Square) int {
	return absInt(a.File()-b.File()) + absInt(a.Rank()-b.Rank())
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
