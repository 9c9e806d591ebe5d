package book

import (
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/hailam/tulip/internal/board"
)

// polyglotEntrySize is the size of one record in a Polyglot .bin file.
const polyglotEntrySize = 16

type polyglotMove struct {
	from, to board.Square
	promo    board.PieceType
	weight   uint16
}

// PolyglotBook is a Polyglot format opening book held in memory.
type PolyglotBook struct {
	entries map[uint64][]polyglotMove
}

// NewPolyglot creates an empty book.
func NewPolyglot() *PolyglotBook {
	return &PolyglotBook{
		entries: make(map[uint64][]polyglotMove),
	}
}

// LoadPolyglot loads a Polyglot format opening book from a file.
func LoadPolyglot(filename string) (*PolyglotBook, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithMessage(err, "open polyglot book")
	}
	defer file.Close()

	return LoadPolyglotReader(file)
}

// LoadPolyglotReader loads a Polyglot format book from a reader.
func LoadPolyglotReader(r io.Reader) (*PolyglotBook, error) {
	book := NewPolyglot()

	// Polyglot entry format:
	// 8 bytes: position key (big-endian)
	// 2 bytes: move (big-endian)
	// 2 bytes: weight (big-endian)
	// 4 bytes: learn data (ignored)
	var entry [polyglotEntrySize]byte
	for {
		_, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithMessage(err, "read polyglot entry")
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		pm := decodePolyglotMove(binary.BigEndian.Uint16(entry[8:10]))
		pm.weight = binary.BigEndian.Uint16(entry[10:12])
		book.entries[key] = append(book.entries[key], pm)
	}

	return book, nil
}

// EncodePolyglotEntry writes one record for m in position pos, the
// inverse of the loader.
func EncodePolyglotEntry(w io.Writer, pos *board.Position, m board.Move, weight uint16) error {
	var entry [polyglotEntrySize]byte
	binary.BigEndian.PutUint64(entry[0:8], pos.PolyglotHash())
	binary.BigEndian.PutUint16(entry[8:10], encodePolyglotMove(m))
	binary.BigEndian.PutUint16(entry[10:12], weight)
	_, err := w.Write(entry[:])
	return errors.WithMessage(err, "write polyglot entry")
}

// Polyglot promotion codes: 1=knight, 2=bishop, 3=rook, 4=queen
var promoTypes = [5]board.PieceType{board.NoPieceType, board.Knight, board.Bishop, board.Rook, board.Queen}

// decodePolyglotMove unpacks the move bits:
// 0-5: to square
// 6-11: from square
// 12-14: promotion piece
func decodePolyglotMove(data uint16) polyglotMove {
	to := board.NewSquare(int(data&7), int((data>>3)&7))
	from := board.NewSquare(int((data>>6)&7), int((data>>9)&7))
	promo := board.NoPieceType
	if p := (data >> 12) & 7; p > 0 && int(p) < len(promoTypes) {
		promo = promoTypes[p]
	}

	// Polyglot encodes castling as king-captures-rook
	switch {
	case from == board.E1 && to == board.H1:
		to = board.G1
	case from == board.E1 && to == board.A1:
		to = board.C1
	case from == board.E8 && to == board.H8:
		to = board.G8
	case from == board.E8 && to == board.A8:
		to = board.C8
	}
	return polyglotMove{from: from, to: to, promo: promo}
}

func encodePolyglotMove(m board.Move) uint16 {
	to := m.To
	if m.IsCastling() {
		if to.File() == 6 {
			to = board.NewSquare(7, to.Rank())
		} else {
			to = board.NewSquare(0, to.Rank())
		}
	}
	data := uint16(to.File()) | uint16(to.Rank())<<3 |
		uint16(m.From.File())<<6 | uint16(m.From.Rank())<<9
	if m.IsPromotion() {
		for code, pt := range promoTypes {
			if code > 0 && pt == m.Promotion() {
				data |= uint16(code) << 12
			}
		}
	}
	return data
}

// Entries returns the legal book moves for pos, highest weight first.
// Records that do not match a legal move are skipped.
func (b *PolyglotBook) Entries(pos *board.Position) []Entry {
	if b == nil {
		return nil
	}
	raw := b.entries[pos.PolyglotHash()]
	out := make([]Entry, 0, len(raw))
	for _, pm := range raw {
		if m, ok := resolve(pos, pm.from, pm.to, pm.promo); ok {
			out = append(out, Entry{Move: m, Weight: pm.weight})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}

// Lookup returns the legal book moves for pos, highest weight first.
func (b *PolyglotBook) Lookup(pos *board.Position) ([]board.Move, error) {
	entries := b.Entries(pos)
	if len(entries) == 0 {
		return nil, nil
	}
	moves := make([]board.Move, len(entries))
	for i, e := range entries {
		moves[i] = e.Move
	}
	return moves, nil
}

// Pick chooses a book move by weighted random selection.
func (b *PolyglotBook) Pick(pos *board.Position, rng *rand.Rand) (board.Move, bool) {
	entries := b.Entries(pos)
	if len(entries) == 0 {
		return board.NoMove, false
	}

	total := 0
	for _, e := range entries {
		total += int(e.Weight)
	}
	if total == 0 {
		return entries[0].Move, true
	}

	r := rng.Intn(total)
	for _, e := range entries {
		r -= int(e.Weight)
		if r < 0 {
			return e.Move, true
		}
	}
	return entries[0].Move, true
}

// Size returns the number of unique positions in the book.
func (b *PolyglotBook) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
