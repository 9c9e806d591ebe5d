package board

import (
	"strings"
)

// SAN converts a legal move to Standard Algebraic Notation, including the
// "+" or "#" suffix.
func (p *Position) SAN(m Move) string {
	if m.IsNull() {
		return "-"
	}

	var sb strings.Builder

	switch m.Kind {
	case CastleKingside:
		sb.WriteString("O-O")
	case CastleQueenside:
		sb.WriteString("O-O-O")
	default:
		pt := m.Piece.Type()
		if pt != Pawn {
			sb.WriteByte(pt.Letter())
			sb.WriteString(p.disambiguation(m))
		}

		if m.IsCapture() {
			if pt == Pawn {
				// Pawn captures include the file of origin
				sb.WriteByte('a' + byte(m.From.File()))
			}
			sb.WriteByte('x')
		}

		sb.WriteString(m.To.String())

		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(m.Promotion().Letter())
		}
	}

	undo := p.MakeMove(m)
	if p.InCheck(p.SideToMove) {
		if p.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	p.UnmakeMove(m, undo)

	return sb.String()
}

// disambiguation returns the origin qualifier needed when another piece of
// the same kind can also reach the destination: the file if that tells them
// apart, else the rank, else the full square.
func (p *Position) disambiguation(m Move) string {
	var legal MoveList
	p.GenerateLegal(&legal)

	ambiguous, sameFile, sameRank := false, false, false
	for i := 0; i < legal.Len(); i++ {
		other := legal.Get(i)
		if other.To != m.To || other.Piece != m.Piece || other.From == m.From {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// SANLine converts a sequence of moves, played from p, to SAN.
// p is left unchanged.
func (p *Position) SANLine(moves []Move) []string {
	result := make([]string, len(moves))
	pos := p.Copy()

	for i, m := range moves {
		result[i] = pos.SAN(m)
		pos.MakeMove(m)
	}

	return result
}

// MatchMove finds the legal move named by text. It accepts SAN with or
// without capture, check and annotation marks ("Nxf3+", "Nf3", "exf6 e.p.",
// "0-0", "e8=Q") and coordinate forms ("e2e4", "e2-e4", "e7e8q", "e7e8=Q").
// The second result is false when no single legal move matches.
func (p *Position) MatchMove(text string) (Move, bool) {
	s := normalizeMoveText(text)
	if s == "" {
		return NoMove, false
	}

	var legal MoveList
	p.GenerateLegal(&legal)

	if kind, ok := castleKindFromText(s); ok {
		return uniqueMatch(&legal, func(m Move) bool { return m.Kind == kind })
	}

	if m, ok := matchCoordinate(&legal, s); ok {
		return m, true
	}

	if m, ok := matchSAN(&legal, s, false); ok {
		return m, true
	}
	return matchSAN(&legal, s, true)
}

// normalizeMoveText removes decoration that never changes which move is meant.
func normalizeMoveText(text string) string {
	s := strings.Join(strings.Fields(text), "")
	lower := strings.ToLower(s)
	for _, suffix := range []string{"e.p.", "ep"} {
		if strings.HasSuffix(lower, suffix) && len(s) > len(suffix)+1 {
			s = s[:len(s)-len(suffix)]
			lower = lower[:len(lower)-len(suffix)]
		}
	}
	s = strings.TrimRight(s, "+#!?")
	return strings.NewReplacer("x", "", "X", "", ":", "", "-", "", "=", "").Replace(s)
}

func castleKindFromText(s string) (MoveKind, bool) {
	switch strings.ToUpper(strings.ReplaceAll(s, "0", "O")) {
	case "OO":
		return CastleKingside, true
	case "OOO":
		return CastleQueenside, true
	}
	return Normal, false
}

// matchCoordinate handles "e2e4" and "e7e8q" after normalization.
func matchCoordinate(legal *MoveList, s string) (Move, bool) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, false
	}
	from, ok1 := ParseSquare(strings.ToLower(s[0:2]))
	to, ok2 := ParseSquare(strings.ToLower(s[2:4]))
	if !ok1 || !ok2 {
		return NoMove, false
	}
	promo := NoPieceType
	if len(s) == 5 {
		promo = PieceTypeFromLetter(s[4])
		if promo == NoPieceType || promo == Pawn || promo == King {
			return NoMove, false
		}
	}
	return uniqueMatch(legal, func(m Move) bool {
		return m.From == from && m.To == to && m.Promotion() == promo
	})
}

// matchSAN handles piece moves and pawn moves. With lowerPieces set, a
// leading lowercase piece letter is read as a piece rather than a file.
func matchSAN(legal *MoveList, s string, lowerPieces bool) (Move, bool) {
	pt := Pawn
	if c := s[0]; strings.IndexByte("NBRQK", c) >= 0 || (lowerPieces && strings.IndexByte("nbrqk", c) >= 0) {
		pt = PieceTypeFromLetter(c)
		s = s[1:]
	} else if lowerPieces {
		return NoMove, false
	}

	promo := NoPieceType
	if n := len(s); n >= 3 && s[n-1] > '8' && s[n-2] >= '1' && s[n-2] <= '8' {
		promo = PieceTypeFromLetter(s[n-1])
		if promo == NoPieceType || promo == Pawn || promo == King {
			return NoMove, false
		}
		s = s[:n-1]
	}

	if len(s) < 2 || len(s) > 4 {
		return NoMove, false
	}
	to, ok := ParseSquare(strings.ToLower(s[len(s)-2:]))
	if !ok {
		return NoMove, false
	}

	fromFile, fromRank := -1, -1
	for _, c := range strings.ToLower(s[:len(s)-2]) {
		switch {
		case c >= 'a' && c <= 'h':
			fromFile = int(c - 'a')
		case c >= '1' && c <= '8':
			fromRank = int(c - '1')
		default:
			return NoMove, false
		}
	}

	return uniqueMatch(legal, func(m Move) bool {
		if m.To != to || m.Piece.Type() != pt || m.IsCastling() {
			return false
		}
		if fromFile >= 0 && m.From.File() != fromFile {
			return false
		}
		if fromRank >= 0 && m.From.Rank() != fromRank {
			return false
		}
		return m.Promotion() == promo
	})
}

// uniqueMatch returns the only move satisfying match.
func uniqueMatch(legal *MoveList, match func(Move) bool) (Move, bool) {
	found := NoMove
	count := 0
	for i := 0; i < legal.Len(); i++ {
		if m := legal.Get(i); match(m) {
			found = m
			count++
		}
	}
	if count != 1 {
		return NoMove, false
	}
	return found, true
}

// ParseMove resolves long coordinate text such as "e2e4" or "e7e8=q" to a
// legal move. Unlike MatchMove it rejects SAN and reports why.
func (p *Position) ParseMove(s string) (Move, error) {
	var legal MoveList
	p.GenerateLegal(&legal)
	norm := strings.NewReplacer("-", "", "=", "").Replace(strings.TrimSpace(s))
	if m, ok := matchCoordinate(&legal, norm); ok {
		return m, nil
	}
	return NoMove, formatErrorf(s, "move", "not a legal coordinate move")
}
