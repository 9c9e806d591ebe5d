package board

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks every structural invariant of the position and reports
// all violations at once. A nil result means the mailbox, bitboards,
// counts, king cache and hash agree.
func (p *Position) Validate() error {
	var errs *multierror.Error

	var union Bitboard
	for piece := WhitePawn; piece < NoPiece; piece++ {
		bb := p.Bitboards[piece]
		if union&bb != 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s bitboard overlaps another piece", piece))
		}
		union |= bb
		if n := bb.PopCount(); n != p.Counts[piece] {
			errs = multierror.Append(errs, fmt.Errorf("%s count is %d, bitboard has %d", piece, p.Counts[piece], n))
		}
	}
	if union&p.EmptyBB != 0 || union|p.EmptyBB != Universe {
		errs = multierror.Append(errs, fmt.Errorf("piece and empty bitboards do not partition the board"))
	}

	for c := White; c <= Black; c++ {
		var side Bitboard
		for pt := Pawn; pt <= King; pt++ {
			side |= p.Pieces(c, pt)
		}
		if side != p.Occupied[c] {
			errs = multierror.Append(errs, fmt.Errorf("%s occupancy out of date", c))
		}

		kings := p.Pieces(c, King)
		if kings.PopCount() != 1 {
			errs = multierror.Append(errs, fmt.Errorf("%s has %d kings", c, kings.PopCount()))
		} else if kings.LSB() != p.KingSquare[c] {
			errs = multierror.Append(errs, fmt.Errorf("%s king cached on %s, found on %s", c, p.KingSquare[c], kings.LSB()))
		}
	}

	for idx, cell := range p.Board {
		sq := squareOf[idx]
		if sq == NoSquare {
			if cell != Offboard {
				errs = multierror.Append(errs, fmt.Errorf("padding cell %d holds %s", idx, cell))
			}
			continue
		}
		switch {
		case cell == NoPiece:
			if !p.EmptyBB.IsSet(sq) {
				errs = multierror.Append(errs, fmt.Errorf("%s empty in mailbox but not in bitboards", sq))
			}
		case cell.IsPiece():
			if !p.Bitboards[cell].IsSet(sq) {
				errs = multierror.Append(errs, fmt.Errorf("%s holds %s in mailbox but not in bitboards", sq, cell))
			}
		default:
			errs = multierror.Append(errs, fmt.Errorf("%s holds sentinel %d", sq, cell))
		}
	}

	if p.EPFile < 0 || p.EPFile > NoFile {
		errs = multierror.Append(errs, fmt.Errorf("en passant file %d out of range", p.EPFile))
	} else if h := p.ComputeHash(); h != p.Hash {
		errs = multierror.Append(errs, fmt.Errorf("hash %s, recomputed %s", HashHex(p.Hash), HashHex(h)))
	}

	if errs == nil {
		return nil
	}
	return &InvariantViolation{Errors: errs}
}
