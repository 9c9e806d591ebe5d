package board

// castlePath describes one castling move for one side.
type castlePath struct {
	kind    MoveKind
	kingTo  Square
	rookTo  Square
	between []Square // must be empty
	transit []Square // king's from, transit and destination squares, must be unattacked
}

var castlePaths = [2][2]castlePath{
	White: {
		{CastleKingside, G1, F1, []Square{F1, G1}, []Square{E1, F1, G1}},
		{CastleQueenside, C1, D1, []Square{B1, C1, D1}, []Square{E1, D1, C1}},
	},
	Black: {
		{CastleKingside, G8, F8, []Square{F8, G8}, []Square{E8, F8, G8}},
		{CastleQueenside, C8, D8, []Square{B8, C8, D8}, []Square{E8, D8, C8}},
	},
}

// GenerateLegal appends all legal moves to ml.
func (p *Position) GenerateLegal(ml *MoveList) {
	var pseudo MoveList
	p.GeneratePseudoLegal(&pseudo)
	p.filterLegal(&pseudo, ml)
}

// LegalMoves returns all legal moves as a fresh slice.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.GenerateLegal(&ml)
	moves := make([]Move, ml.Len())
	copy(moves, ml.Slice())
	return moves
}

// GenerateCaptures appends legal captures and promotions to ml.
func (p *Position) GenerateCaptures(ml *MoveList) {
	var pseudo, tactical MoveList
	p.GeneratePseudoLegal(&pseudo)
	for i := 0; i < pseudo.Len(); i++ {
		if m := pseudo.Get(i); !m.IsQuiet() {
			tactical.Add(m)
		}
	}
	p.filterLegal(&tactical, ml)
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	var pseudo MoveList
	p.GeneratePseudoLegal(&pseudo)
	us := p.SideToMove
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		undo := p.MakeMove(m)
		safe := !p.InCheck(us)
		p.UnmakeMove(m, undo)
		if safe {
			return true
		}
	}
	return false
}

// filterLegal copies the moves of in that do not leave the mover in check.
func (p *Position) filterLegal(in, out *MoveList) {
	us := p.SideToMove
	for i := 0; i < in.Len(); i++ {
		m := in.Get(i)
		undo := p.MakeMove(m)
		if !p.InCheck(us) {
			out.Add(m)
		}
		p.UnmakeMove(m, undo)
	}
}

// GeneratePseudoLegal appends every move that obeys piece movement and
// occupancy, ignoring whether the mover's king is left attacked.
func (p *Position) GeneratePseudoLegal(ml *MoveList) {
	us := p.SideToMove

	for bb := p.Pieces(us, Pawn); bb != 0; {
		p.generatePawnMoves(ml, bb.PopLSB(), us)
	}
	for bb := p.Pieces(us, Knight); bb != 0; {
		p.generateSteps(ml, bb.PopLSB(), knightSteps[:])
	}
	for bb := p.Pieces(us, Bishop); bb != 0; {
		p.generateSlides(ml, bb.PopLSB(), bishopSteps[:])
	}
	for bb := p.Pieces(us, Rook); bb != 0; {
		p.generateSlides(ml, bb.PopLSB(), rookSteps[:])
	}
	for bb := p.Pieces(us, Queen); bb != 0; {
		from := bb.PopLSB()
		p.generateSlides(ml, from, rookSteps[:])
		p.generateSlides(ml, from, bishopSteps[:])
	}
	p.generateSteps(ml, p.KingSquare[us], kingSteps[:])
	p.generateCastlingMoves(ml, us)
}

// generateSteps adds single-step moves for knights and kings.
func (p *Position) generateSteps(ml *MoveList, from Square, steps []int) {
	piece := p.PieceAt(from)
	us := piece.Color()
	base := mailboxOf[from]
	for _, step := range steps {
		idx := base + step
		cell := p.Board[idx]
		if cell == Offboard || (cell != NoPiece && cell.Color() == us) {
			continue
		}
		ml.Add(Move{From: from, To: squareOf[idx], Piece: piece, Captured: cell})
	}
}

// generateSlides walks each ray until blocked, including an enemy blocker.
func (p *Position) generateSlides(ml *MoveList, from Square, steps []int) {
	piece := p.PieceAt(from)
	us := piece.Color()
	base := mailboxOf[from]
	for _, step := range steps {
		for idx := base + step; ; idx += step {
			cell := p.Board[idx]
			if cell == Offboard {
				break
			}
			if cell == NoPiece {
				ml.Add(Move{From: from, To: squareOf[idx], Piece: piece, Captured: NoPiece})
				continue
			}
			if cell.Color() != us {
				ml.Add(Move{From: from, To: squareOf[idx], Piece: piece, Captured: cell})
			}
			break
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, from Square, us Color) {
	piece := NewPiece(Pawn, us)
	base := mailboxOf[from]
	push := pawnPush[us]

	if p.Board[base+push] == NoPiece {
		to := squareOf[base+push]
		if to.RelativeRank(us) == 7 {
			addPromotions(ml, from, to, piece, NoPiece)
		} else {
			ml.Add(Move{From: from, To: to, Piece: piece, Captured: NoPiece})
			if from.RelativeRank(us) == 1 && p.Board[base+2*push] == NoPiece {
				ml.Add(Move{From: from, To: squareOf[base+2*push], Piece: piece, Captured: NoPiece})
			}
		}
	}

	epSq := p.EPSquare()
	for _, step := range pawnCaptureLR[us] {
		idx := base + step
		cell := p.Board[idx]
		if cell == Offboard {
			continue
		}
		to := squareOf[idx]
		if cell.IsPiece() && cell.Color() != us {
			if to.RelativeRank(us) == 7 {
				addPromotions(ml, from, to, piece, cell)
			} else {
				ml.Add(Move{From: from, To: to, Piece: piece, Captured: cell})
			}
			continue
		}
		if to == epSq {
			victim := NewPiece(Pawn, us.Other())
			m := Move{From: from, To: to, Piece: piece, Captured: victim, Kind: EnPassant}
			if p.PieceAt(m.CapturedSquare()) == victim {
				ml.Add(m)
			}
		}
	}
}

// addPromotions expands one pawn arrival on the last rank into four moves.
func addPromotions(ml *MoveList, from, to Square, piece, captured Piece) {
	for _, kind := range promotionKinds {
		ml.Add(Move{From: from, To: to, Piece: piece, Captured: captured, Kind: kind})
	}
}

// generateCastlingMoves adds castling moves whose flag is set, whose king
// and rook still stand at home, whose path is clear, and whose king squares
// are not attacked.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	for side, path := range castlePaths[us] {
		kingSide := side == 0
		if !p.Castling.CanCastle(us, kingSide) || !p.CastlingAvailable(us, kingSide) {
			continue
		}
		if !p.allEmpty(path.between) || p.anyAttacked(path.transit, us.Other()) {
			continue
		}
		ml.Add(Move{From: kingHome[us], To: path.kingTo, Piece: NewPiece(King, us), Captured: NoPiece, Kind: path.kind})
	}
}

func (p *Position) allEmpty(squares []Square) bool {
	for _, sq := range squares {
		if !p.IsEmpty(sq) {
			return false
		}
	}
	return true
}

func (p *Position) anyAttacked(squares []Square, by Color) bool {
	for _, sq := range squares {
		if p.IsAttacked(sq, by) {
			return true
		}
	}
	return false
}
