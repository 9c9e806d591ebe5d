package board

// zobristKeys holds the hash constants. It is filled once when the package
// loads and only read afterwards.
type zobristKeys struct {
	square   [NoPiece + 1][64]uint64 // [piece or NoPiece][square]
	castling [16]uint64
	epFile   [NoFile + 1]uint64 // files a-h, then "none"
	black    uint64
}

var zobrist = newZobristKeys(0x98F107A2BEEF1234)

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func newZobristKeys(seed uint64) *zobristKeys {
	rng := newPRNG(seed)
	k := &zobristKeys{}

	for p := WhitePawn; p <= NoPiece; p++ {
		for sq := A1; sq <= H8; sq++ {
			k.square[p][sq] = rng.next()
		}
	}
	for i := range k.castling {
		k.castling[i] = rng.next()
	}
	for i := range k.epFile {
		k.epFile[i] = rng.next()
	}
	k.black = rng.next()

	return k
}

// toggleSquare returns the hash mask that swaps square sq's contribution
// from one occupant to another.
func (k *zobristKeys) toggleSquare(sq Square, from, to Piece) uint64 {
	return k.square[from][sq] ^ k.square[to][sq]
}

// ComputeHash computes the Zobrist hash for the position from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64

	for sq := A1; sq <= H8; sq++ {
		hash ^= zobrist.square[p.Board[mailboxOf[sq]]][sq]
	}

	hash ^= zobrist.castling[p.Castling]
	hash ^= zobrist.epFile[p.EPFile]

	if p.SideToMove == Black {
		hash ^= zobrist.black
	}

	return hash
}
