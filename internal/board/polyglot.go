package board

// Polyglot-layout Zobrist keys. Book files are addressed by this key rather
// than Position.Hash: it ignores en passant unless a capture is possible,
// and its piece ordering follows the Polyglot book format.
var (
	polyglotPieces     [12][64]uint64 // [piece_kind][square]
	polyglotCastling   [4]uint64      // [KQkq]
	polyglotEnPassant  [8]uint64      // [file]
	polyglotSideToMove uint64
)

func init() {
	initPolyglotKeys()
}

// polyglotKind maps a Piece to the Polyglot piece index:
// bp, bN, bB, bR, bQ, bK, wp, wN, wB, wR, wQ, wK.
func polyglotKind(piece Piece) int {
	if piece.Color() == White {
		return 6 + int(piece.Type())
	}
	return int(piece.Type())
}

// PolyglotHash computes the key used to probe opening books.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	for piece := WhitePawn; piece < NoPiece; piece++ {
		for bb := p.Bitboards[piece]; bb != 0; {
			hash ^= polyglotPieces[polyglotKind(piece)][bb.PopLSB()]
		}
	}

	for i, right := range []CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle} {
		if p.Castling&right != 0 {
			hash ^= polyglotCastling[i]
		}
	}

	// En passant counts only when a pawn of the side to move can capture.
	if p.EPFile != NoFile {
		us := p.SideToMove
		target := p.EPSquare()
		if pawnAttacks[us.Other()][target]&p.Pieces(us, Pawn) != 0 {
			hash ^= polyglotEnPassant[p.EPFile]
		}
	}

	if p.SideToMove == White {
		hash ^= polyglotSideToMove
	}

	return hash
}

// TODO: load the published Random64 table so third-party .bin books match.
func initPolyglotKeys() {
	rng := newPRNG(0x37b4a4b3f0d1c0d0)

	for piece := 0; piece < 12; piece++ {
		for sq := 0; sq < 64; sq++ {
			polyglotPieces[piece][sq] = rng.next()
		}
	}
	for i := range polyglotCastling {
		polyglotCastling[i] = rng.next()
	}
	for i := range polyglotEnPassant {
		polyglotEnPassant[i] = rng.next()
	}
	polyglotSideToMove = rng.next()
}
