package board

// Pre-computed attack tables for non-sliding pieces. Sliders walk the
// mailbox instead, see slides.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
)

func init() {
	initKnightAttacks()
	initKingAttacks()
	initPawnAttacks()
}

func initKnightAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		attacks := Empty

		attacks |= (bb << 17) & NotFileA  // NNE
		attacks |= (bb << 15) & NotFileH  // NNW
		attacks |= (bb >> 17) & NotFileH  // SSW
		attacks |= (bb >> 15) & NotFileA  // SSE
		attacks |= (bb << 10) & NotFileAB // ENE
		attacks |= (bb << 6) & NotFileGH  // WNW
		attacks |= (bb >> 10) & NotFileGH // WSW
		attacks |= (bb >> 6) & NotFileAB  // ESE

		knightAttacks[sq] = attacks
	}
}

func initKingAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		attacks := bb.North() | bb.South()
		attacks |= bb.East() | bb.West()
		attacks |= bb.NorthEast() | bb.NorthWest()
		attacks |= bb.SouthEast() | bb.SouthWest()
		kingAttacks[sq] = attacks
	}
}

func initPawnAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

// KnightAttacks returns knight attacks from a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns king attacks from a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns pawn attacks from a square for the given color.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// rayHits walks from sq along step until the first non-empty cell and
// returns what it found there (a piece or Offboard).
func (p *Position) rayHits(sq Square, step int) Piece {
	idx := mailboxOf[sq] + step
	for p.Board[idx] == NoPiece {
		idx += step
	}
	return p.Board[idx]
}

// slides returns the squares a slider on sq reaches along the given steps,
// including the first occupied square on each ray.
func (p *Position) slides(sq Square, steps []int) Bitboard {
	var bb Bitboard
	for _, step := range steps {
		idx := mailboxOf[sq] + step
		for {
			cell := p.Board[idx]
			if cell == Offboard {
				break
			}
			bb |= SquareBB(squareOf[idx])
			if cell != NoPiece {
				break
			}
			idx += step
		}
	}
	return bb
}

// IsAttacked returns true if any piece of color by attacks sq.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	if pawnAttacks[by.Other()][sq]&p.Pieces(by, Pawn) != 0 {
		return true
	}
	if knightAttacks[sq]&p.Pieces(by, Knight) != 0 {
		return true
	}
	if kingAttacks[sq]&p.Pieces(by, King) != 0 {
		return true
	}

	queen := NewPiece(Queen, by)
	rook := NewPiece(Rook, by)
	for _, step := range rookSteps {
		if hit := p.rayHits(sq, step); hit == rook || hit == queen {
			return true
		}
	}
	bishop := NewPiece(Bishop, by)
	for _, step := range bishopSteps {
		if hit := p.rayHits(sq, step); hit == bishop || hit == queen {
			return true
		}
	}
	return false
}

// InCheck returns true if the king of side c is attacked.
func (p *Position) InCheck(c Color) bool {
	return p.IsAttacked(p.KingSquare[c], c.Other())
}

// AttackedSquares returns the union of all squares attacked by side c.
func (p *Position) AttackedSquares(c Color) Bitboard {
	pawns := p.Pieces(c, Pawn)
	var attacked Bitboard
	if c == White {
		attacked = pawns.NorthEast() | pawns.NorthWest()
	} else {
		attacked = pawns.SouthEast() | pawns.SouthWest()
	}

	for bb := p.Pieces(c, Knight); bb != 0; {
		attacked |= knightAttacks[bb.PopLSB()]
	}
	for bb := p.Pieces(c, King); bb != 0; {
		attacked |= kingAttacks[bb.PopLSB()]
	}
	for bb := p.Pieces(c, Bishop) | p.Pieces(c, Queen); bb != 0; {
		attacked |= p.slides(bb.PopLSB(), bishopSteps[:])
	}
	for bb := p.Pieces(c, Rook) | p.Pieces(c, Queen); bb != 0; {
		attacked |= p.slides(bb.PopLSB(), rookSteps[:])
	}
	return attacked
}

// Reach returns the squares the non-pawn piece on sq could move to,
// ignoring pins: empty squares and enemy pieces it attacks. Pawns and
// empty squares give 0.
func (p *Position) Reach(sq Square) Bitboard {
	piece := p.PieceAt(sq)
	if !piece.IsPiece() {
		return 0
	}
	var bb Bitboard
	switch piece.Type() {
	case Knight:
		bb = knightAttacks[sq]
	case King:
		bb = kingAttacks[sq]
	case Bishop:
		bb = p.slides(sq, bishopSteps[:])
	case Rook:
		bb = p.slides(sq, rookSteps[:])
	case Queen:
		bb = p.slides(sq, rookSteps[:]) | p.slides(sq, bishopSteps[:])
	}
	return bb &^ p.Occupied[piece.Color()]
}
