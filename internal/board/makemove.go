package board

// UndoRecord holds what MakeMove overwrote, enough to invert one move.
type UndoRecord struct {
	Captured       Piece
	CapturedSquare Square // differs from the destination for en passant
	Castling       CastlingRights
	EPFile         int
	HalfMoveClock  int
	Hash           uint64
	KingSquare     [2]Square
}

// castleIndex maps a castling kind to its index in castlePaths and rookHome.
func castleIndex(kind MoveKind) int {
	if kind == CastleKingside {
		return 0
	}
	return 1
}

// MakeMove applies a pseudo-legal move for the side to move and returns the
// record UnmakeMove needs to reverse it. Calls must nest strictly LIFO.
func (p *Position) MakeMove(m Move) UndoRecord {
	undo := UndoRecord{
		Captured:       m.Captured,
		CapturedSquare: NoSquare,
		Castling:       p.Castling,
		EPFile:         p.EPFile,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		KingSquare:     p.KingSquare,
	}

	us := p.SideToMove
	rights := p.Castling &^ castleLoss[m.From]

	if m.IsCapture() {
		capSq := m.CapturedSquare()
		p.removePiece(capSq)
		undo.CapturedSquare = capSq
		rights &^= castleLoss[capSq]
	}

	p.removePiece(m.From)
	arriving := m.Piece
	if m.IsPromotion() {
		arriving = NewPiece(m.Promotion(), us)
	}
	p.setPiece(arriving, m.To)

	if m.IsCastling() {
		i := castleIndex(m.Kind)
		p.movePiece(rookHome[us][i], castlePaths[us][i].rookTo)
	}

	p.Hash ^= zobrist.castling[p.Castling] ^ zobrist.castling[rights]
	p.Castling = rights

	p.Hash ^= zobrist.epFile[p.EPFile]
	p.EPFile = NoFile
	if m.Piece.Type() == Pawn && (m.To-m.From == 16 || m.From-m.To == 16) {
		p.EPFile = m.From.File()
	}
	p.Hash ^= zobrist.epFile[p.EPFile]

	if m.Piece.Type() == Pawn || m.IsCapture() {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobrist.black

	return undo
}

// UnmakeMove reverses MakeMove. m and undo must be the pair from the most
// recent MakeMove that has not yet been reversed.
func (p *Position) UnmakeMove(m Move, undo UndoRecord) {
	us := p.SideToMove.Other()
	p.SideToMove = us

	if m.IsCastling() {
		i := castleIndex(m.Kind)
		p.movePiece(castlePaths[us][i].rookTo, rookHome[us][i])
	}

	p.removePiece(m.To)
	p.setPiece(m.Piece, m.From)

	if undo.CapturedSquare != NoSquare {
		p.setPiece(undo.Captured, undo.CapturedSquare)
	}

	if us == Black {
		p.FullMoveNumber--
	}

	p.Castling = undo.Castling
	p.EPFile = undo.EPFile
	p.HalfMoveClock = undo.HalfMoveClock
	p.KingSquare = undo.KingSquare
	p.Hash = undo.Hash
}
