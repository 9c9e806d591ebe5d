package board

import "github.com/pkg/errors"

// Status classifies a position reached in a game.
type Status uint8

const (
	InProgress Status = iota
	WhiteCheckmated
	BlackCheckmated
	Stalemate
	MaterialDraw
	ThreefoldDraw
	FiftyMoveDraw
)

var statusNames = [...]string{"none", "whiteCheckmated", "blackCheckmated", "stalemate", "materialDraw", "threefoldDraw", "fiftyMoveDraw"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// IsOver reports whether the status ends the game.
func (s Status) IsOver() bool {
	return s != InProgress
}

// Game is a position plus the moves and hashes that led to it.
type Game struct {
	pos    *Position
	start  string
	moves  []Move
	hashes []uint64
}

// NewGame starts a game from a FEN string.
func NewGame(fen string) (*Game, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{
		pos:    pos,
		start:  pos.FEN(),
		hashes: []uint64{pos.Hash},
	}, nil
}

// Position returns the current position. Callers must not apply moves to it
// directly; use Push and Pop.
func (g *Game) Position() *Position {
	return g.pos
}

// StartFEN returns the FEN the game began from.
func (g *Game) StartFEN() string {
	return g.start
}

// Moves returns the moves played so far.
func (g *Game) Moves() []Move {
	return g.moves
}

// History returns the position hashes, oldest first, ending with the
// current position.
func (g *Game) History() []uint64 {
	return g.hashes
}

// Push plays a legal move.
func (g *Game) Push(m Move) {
	g.pos.Apply(m)
	g.moves = append(g.moves, m)
	g.hashes = append(g.hashes, g.pos.Hash)
}

// PushText plays the move named by text in SAN or coordinate form.
func (g *Game) PushText(text string) (Move, error) {
	m, ok := g.pos.MatchMove(text)
	if !ok {
		return NoMove, errors.WithStack(&FormatError{Input: text, Field: "move", Reason: "no legal move matches"})
	}
	g.Push(m)
	return m, nil
}

// Pop takes back the last move.
func (g *Game) Pop() (Move, bool) {
	if len(g.moves) == 0 {
		return NoMove, false
	}
	m := g.moves[len(g.moves)-1]
	g.pos.Unmake(m)
	g.moves = g.moves[:len(g.moves)-1]
	g.hashes = g.hashes[:len(g.hashes)-1]
	return m, true
}

// IsThreefold reports whether the current position has occurred three
// times since the last capture or pawn move.
func (g *Game) IsThreefold() bool {
	return RepetitionCount(g.hashes, g.pos.Hash, g.pos.HalfMoveClock) >= 3
}

// Status classifies the current position.
func (g *Game) Status() Status {
	p := g.pos
	switch {
	case p.IsMaterialDraw():
		return MaterialDraw
	case g.IsThreefold():
		return ThreefoldDraw
	}

	if !p.HasLegalMoves() {
		if !p.InCheck(p.SideToMove) {
			return Stalemate
		}
		if p.SideToMove == White {
			return WhiteCheckmated
		}
		return BlackCheckmated
	}

	if p.IsFiftyMoveDraw() {
		return FiftyMoveDraw
	}
	return InProgress
}

// PositionStatus classifies a position with no game history.
func PositionStatus(p *Position) Status {
	g := &Game{pos: p, hashes: []uint64{p.Hash}}
	return g.Status()
}
