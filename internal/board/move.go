package board

// MoveKind distinguishes moves with side effects beyond relocating one piece.
type MoveKind uint8

const (
	Normal MoveKind = iota
	EnPassant
	PromoteQueen
	PromoteRook
	PromoteBishop
	PromoteKnight
	CastleKingside
	CastleQueenside
)

var promotionKinds = [4]MoveKind{PromoteQueen, PromoteRook, PromoteBishop, PromoteKnight}

// Move is an immutable description of one move. Captured is NoPiece for
// quiet moves; for en passant it is the pawn taken beside the destination.
type Move struct {
	From     Square
	To       Square
	Piece    Piece
	Captured Piece
	Kind     MoveKind
}

// NoMove represents the absence of a move.
var NoMove = Move{From: NoSquare, To: NoSquare, Piece: NoPiece, Captured: NoPiece}

// IsNull reports whether m is NoMove or the zero value.
func (m Move) IsNull() bool {
	return m.From == m.To
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Captured.IsPiece()
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Kind >= PromoteQueen && m.Kind <= PromoteKnight
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Kind == CastleKingside || m.Kind == CastleQueenside
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Kind == EnPassant
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsIrreversible reports whether the move resets the repetition window.
func (m Move) IsIrreversible() bool {
	return m.IsCapture() || m.Piece.Type() == Pawn
}

// Promotion returns the promotion piece type, or NoPieceType.
func (m Move) Promotion() PieceType {
	switch m.Kind {
	case PromoteQueen:
		return Queen
	case PromoteRook:
		return Rook
	case PromoteBishop:
		return Bishop
	case PromoteKnight:
		return Knight
	default:
		return NoPieceType
	}
}

// CapturedSquare returns the square the captured piece stood on.
func (m Move) CapturedSquare() Square {
	if m.Kind != EnPassant {
		return m.To
	}
	return NewSquare(m.To.File(), m.From.Rank())
}

// Coordinate returns the long coordinate form, e.g. "e2e4" or "e7e8=q".
func (m Move) Coordinate() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += "=" + string(m.Promotion().Letter()+'a'-'A')
	}
	return s
}

// UCI returns the move in UCI form, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion().Letter() + 'a' - 'A')
	}
	return s
}

// String returns the coordinate form of the move.
func (m Move) String() string {
	return m.Coordinate()
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
