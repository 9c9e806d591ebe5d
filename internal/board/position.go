package board

import (
	"fmt"
	"strings"
)

// CastlingRights records which castling permissions have not yet been
// forfeited. A set flag is history only: whether the move is currently
// possible also depends on occupancy, see CastlingAvailable.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the flag for the given side and direction is still set.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// Home squares used by castling.
var (
	kingHome = [2]Square{E1, E8}
	rookHome = [2][2]Square{{H1, A1}, {H8, A8}} // [color][kingside=0, queenside=1]
)

// castleLoss holds the rights forfeited when a piece leaves the square, or
// when a capture lands on it.
var castleLoss = func() [64]CastlingRights {
	var m [64]CastlingRights
	m[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	m[H1] = WhiteKingSideCastle
	m[A1] = WhiteQueenSideCastle
	m[E8] = BlackKingSideCastle | BlackQueenSideCastle
	m[H8] = BlackKingSideCastle
	m[A8] = BlackQueenSideCastle
	return m
}()

// Position represents a complete chess position.
type Position struct {
	// Board is the sentinel-padded mailbox, see MailboxIndex.
	Board [mailboxSize]Piece

	// Bitboards holds one bitboard per Piece; EmptyBB holds the empty squares.
	Bitboards [12]Bitboard
	EmptyBB   Bitboard
	Occupied  [2]Bitboard

	SideToMove     Color
	Castling       CastlingRights
	EPFile         int // 0-7, or NoFile
	HalfMoveClock  int // Moves since last pawn move or capture (for 50-move rule)
	FullMoveNumber int // Full move counter, starts at 1

	KingSquare [2]Square
	Counts     [12]int

	Hash uint64

	// undo is the LIFO record stack used by Apply and Unmake.
	undo undoStack
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// newEmptyPosition returns a position with no pieces and default state.
func newEmptyPosition() *Position {
	p := &Position{
		Board:          emptyMailbox(),
		EmptyBB:        Universe,
		EPFile:         NoFile,
		FullMoveNumber: 1,
	}
	p.KingSquare[White] = NoSquare
	p.KingSquare[Black] = NoSquare
	return p
}

// Copy creates a deep copy of the position with an empty undo stack.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.undo = undoStack{}
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[mailboxOf[sq]]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.EmptyBB.IsSet(sq)
}

// Pieces returns the bitboard of the given piece type and color.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	return p.Bitboards[NewPiece(pt, c)]
}

// AllOccupied returns every occupied square.
func (p *Position) AllOccupied() Bitboard {
	return ^p.EmptyBB
}

// EPSquare returns the en-passant target square, or NoSquare.
// The rank follows from the side to move.
func (p *Position) EPSquare() Square {
	if p.EPFile == NoFile {
		return NoSquare
	}
	if p.SideToMove == White {
		return NewSquare(p.EPFile, 5)
	}
	return NewSquare(p.EPFile, 2)
}

// CastlingAvailable reports whether the king and the castling rook of side c
// stand on their home squares. It says nothing about the castling flag.
func (p *Position) CastlingAvailable(c Color, kingSide bool) bool {
	side := 1
	if kingSide {
		side = 0
	}
	return p.PieceAt(kingHome[c]) == NewPiece(King, c) &&
		p.PieceAt(rookHome[c][side]) == NewPiece(Rook, c)
}

// setPiece places a piece on an empty square, keeping the hash current.
func (p *Position) setPiece(piece Piece, sq Square) {
	bb := SquareBB(sq)
	c := piece.Color()

	p.Board[mailboxOf[sq]] = piece
	p.Bitboards[piece] |= bb
	p.Occupied[c] |= bb
	p.EmptyBB &^= bb
	p.Counts[piece]++
	p.Hash ^= zobrist.toggleSquare(sq, NoPiece, piece)

	if piece.Type() == King {
		p.KingSquare[c] = sq
	}
}

// removePiece empties a square and returns what stood on it.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.Board[mailboxOf[sq]]
	if !piece.IsPiece() {
		return NoPiece
	}

	bb := SquareBB(sq)
	p.Board[mailboxOf[sq]] = NoPiece
	p.Bitboards[piece] &^= bb
	p.Occupied[piece.Color()] &^= bb
	p.EmptyBB |= bb
	p.Counts[piece]--
	p.Hash ^= zobrist.toggleSquare(sq, piece, NoPiece)

	return piece
}

// movePiece moves a piece to an empty square.
func (p *Position) movePiece(from, to Square) {
	p.setPiece(p.removePiece(from), to)
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.Castling)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EPSquare())
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %s\n", HashHex(p.Hash))
	return sb.String()
}

// Material returns the material balance (positive favors white).
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.Counts[NewPiece(pt, White)] * PieceValue[pt]
		score -= p.Counts[NewPiece(pt, Black)] * PieceValue[pt]
	}
	return score
}

// PieceCount returns the number of pieces on the board, kings included.
func (p *Position) PieceCount() int {
	return 64 - p.EmptyBB.PopCount()
}

// HasNonPawnMaterial returns true if side c has a piece other than king and pawns.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	return p.Pieces(c, Knight)|p.Pieces(c, Bishop)|p.Pieces(c, Rook)|p.Pieces(c, Queen) != 0
}
