package board

// IsMaterialDraw reports combinations where neither side can mate:
// K v K, K+minor v K, and positions with only bishops where both sides
// have one and every bishop stands on the same square color.
func (p *Position) IsMaterialDraw() bool {
	heavy := p.Pieces(White, Pawn) | p.Pieces(Black, Pawn) |
		p.Pieces(White, Rook) | p.Pieces(Black, Rook) |
		p.Pieces(White, Queen) | p.Pieces(Black, Queen)
	if heavy != 0 {
		return false
	}

	knights := p.Pieces(White, Knight) | p.Pieces(Black, Knight)
	bishops := p.Pieces(White, Bishop) | p.Pieces(Black, Bishop)
	minors := (knights | bishops).PopCount()

	if minors <= 1 {
		return true
	}
	if knights != 0 {
		return false
	}
	if p.Pieces(White, Bishop) == 0 || p.Pieces(Black, Bishop) == 0 {
		return false
	}
	return bishops&LightSquares == 0 || bishops&DarkSquares == 0
}

// IsFiftyMoveDraw reports whether a hundred plies passed without a capture
// or pawn move.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.HalfMoveClock >= 100
}

// RepetitionCount counts how often hash occurs in the last window+1 entries
// of history. history runs oldest first and ends with the current position;
// window is the halfmove clock, so entries before the last irreversible
// move are never examined.
func RepetitionCount(history []uint64, hash uint64, window int) int {
	start := len(history) - 1 - window
	if start < 0 {
		start = 0
	}
	n := 0
	for _, h := range history[start:] {
		if h == hash {
			n++
		}
	}
	return n
}
