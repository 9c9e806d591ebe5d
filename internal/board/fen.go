package board

import (
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. Six fields are
// expected; four-field EPD style input gets the counters "0 1".
// On any error the result is nil.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 && len(parts) != 4 {
		return nil, formatErrorf(fen, "FEN", "need 6 fields, got %d", len(parts))
	}

	pos := newEmptyPosition()

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, formatErrorf(parts[1], "side to move", "want w or b")
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, ok := ParseSquare(parts[3])
		wantRank := 5
		if pos.SideToMove == Black {
			wantRank = 2
		}
		if !ok || sq.Rank() != wantRank {
			return nil, formatErrorf(parts[3], "en passant square", "not a target square for %s to move", pos.SideToMove)
		}
		pos.EPFile = sq.File()
	}

	if len(parts) == 6 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, formatErrorf(parts[4], "half-move clock", "want a non-negative integer")
		}
		pos.HalfMoveClock = hmc

		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, formatErrorf(parts[5], "full-move number", "want a positive integer")
		}
		pos.FullMoveNumber = fmn
	}

	for c := White; c <= Black; c++ {
		if n := pos.Counts[NewPiece(King, c)]; n != 1 {
			return nil, formatErrorf(parts[0], "piece placement", "%s has %d kings", c, n)
		}
	}
	// The side that just moved cannot have left its king attacked
	if them := pos.SideToMove.Other(); pos.InCheck(them) {
		return nil, formatErrorf(parts[0], "piece placement", "%s is in check with %s to move", them, pos.SideToMove)
	}

	pos.Hash = pos.ComputeHash()

	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return formatErrorf(placement, "piece placement", "need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if file > 7 {
				return formatErrorf(placement, "piece placement", "too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(c)
			if piece == NoPiece {
				return formatErrorf(placement, "piece placement", "invalid piece character %q", c)
			}
			if piece.Type() == Pawn && (rank == 0 || rank == 7) {
				return formatErrorf(placement, "piece placement", "pawn on rank %d", rank+1)
			}
			pos.setPiece(piece, NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return formatErrorf(placement, "piece placement", "rank %d has %d squares", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.Castling = NoCastling
		return nil
	}

	for _, c := range castling {
		var right CastlingRights
		switch c {
		case 'K':
			right = WhiteKingSideCastle
		case 'Q':
			right = WhiteQueenSideCastle
		case 'k':
			right = BlackKingSideCastle
		case 'q':
			right = BlackQueenSideCastle
		default:
			return formatErrorf(castling, "castling rights", "invalid character %q", c)
		}
		if pos.Castling&right != 0 {
			return formatErrorf(castling, "castling rights", "repeated %q", c)
		}
		pos.Castling |= right
	}

	return nil
}

// FEN returns the FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.Castling.String())

	sb.WriteByte(' ')
	sb.WriteString(p.EPSquare().String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
