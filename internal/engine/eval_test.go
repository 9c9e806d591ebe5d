package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/tulip/internal/board"
)

func mustFEN(t testing.TB, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err, fen)
	return pos
}

// mirrorFEN flips the board vertically and swaps colors.
func mirrorFEN(fen string) string {
	fields := strings.Fields(fen)
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}

	if fields[2] != "-" {
		swapped := swapCase(fields[2])
		castling := ""
		for _, c := range "KQkq" {
			if strings.ContainsRune(swapped, c) {
				castling += string(c)
			}
		}
		fields[2] = castling
	}

	if fields[3] != "-" {
		rank := fields[3][1]
		fields[3] = string(fields[3][0]) + string('1'+'8'-rank)
	}
	return strings.Join(fields, " ")
}

func swapCase(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

func TestEvaluateStartPosition(t *testing.T) {
	e := NewEvaluator()
	assert.Equal(t, 0, e.Evaluate(board.NewPosition()))
}

func TestEvaluateMaterialDelta(t *testing.T) {
	e := NewEvaluator()
	pos := mustFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	assert.InDelta(t, 900, e.Evaluate(pos), 10)

	pos = mustFEN(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNB1KBNR w KQkq - 0 1")
	assert.InDelta(t, -900, e.Evaluate(pos), 10)
}

func TestEvaluateColorSymmetry(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/R3K2R w - - 0 1",
		"8/8/8/4k3/8/8/8/R3K3 w - - 0 1",
		"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
	}
	e := NewEvaluator()
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos := mustFEN(t, fen)
			mirrored := mustFEN(t, mirrorFEN(fen))
			assert.Equal(t, e.Evaluate(pos), -e.Evaluate(mirrored))
			assert.Equal(t, e.Relative(pos), e.Relative(mirrored))
		})
	}
}

func TestEvaluateMaterialDrawIsZero(t *testing.T) {
	e := NewEvaluator()
	for _, fen := range []string{
		"8/8/4k3/8/8/4K3/8/8 w - - 0 1",
		"8/8/4k3/8/8/3BK3/8/8 w - - 0 1",
		"8/8/4k3/8/8/3NK3/8/8 b - - 0 1",
		"8/8/2b1k3/8/8/3BK3/8/8 w - - 0 1",
	} {
		assert.Equal(t, 0, e.Evaluate(mustFEN(t, fen)), fen)
	}
}

func TestRelativeFlipsForBlack(t *testing.T) {
	e := NewEvaluator()
	white := mustFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	black := mustFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	assert.Greater(t, e.Relative(white), 0)
	assert.Less(t, e.Relative(black), 0)
}

func TestPhaseOf(t *testing.T) {
	tests := []struct {
		fen  string
		want Phase
	}{
		{board.StartFEN, Opening},
		{"r3k3/pppppppp/8/8/8/8/PPPPPPPP/4K2R w - - 0 1", Middlegame},
		{"4k3/8/8/8/8/8/8/R3K2R w - - 0 1", Endgame},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhaseOf(mustFEN(t, tt.fen)), tt.fen)
	}
	assert.Equal(t, "middlegame", Middlegame.String())
}

func TestClassifyEndgame(t *testing.T) {
	assert.Equal(t, WhiteRookVsKing, ClassifyEndgame(mustFEN(t, "8/8/8/4k3/8/8/8/R3K3 w - - 0 1")))
	assert.Equal(t, BlackRookVsKing, ClassifyEndgame(mustFEN(t, "r7/8/8/4k3/8/8/8/4K3 w - - 0 1")))
	assert.Equal(t, Unclassified, ClassifyEndgame(board.NewPosition()))
	assert.Equal(t, Unclassified, ClassifyEndgame(mustFEN(t, "8/8/8/4k3/8/8/8/N3K3 w - - 0 1")))
}

func TestEndgameDrivePrefersEdge(t *testing.T) {
	e := NewEvaluator()
	center := mustFEN(t, "8/8/8/4k3/8/8/8/R3K3 w - - 0 1")
	corner := mustFEN(t, "7k/8/8/8/8/8/8/R3K3 w - - 0 1")
	assert.Greater(t, e.endgameDrive(corner), e.endgameDrive(center))
}

func TestHeavyLines(t *testing.T) {
	e := NewEvaluator()
	tests := []struct {
		fen  string
		want int
	}{
		{"4k3/8/8/8/8/8/8/R3K2R w - - 0 1", 2 * heavyLineBonus},
		{"4k3/8/8/8/8/8/R7/4K2R w - - 0 1", 0},
		{"4k3/8/8/8/8/8/7Q/4K2R w - - 0 1", heavyLineBonus},
		{"3qk3/8/8/8/8/8/8/3RK3 w - - 0 1", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.heavyLines(mustFEN(t, tt.fen), board.White), tt.fen)
	}
}

func TestPawnStructure(t *testing.T) {
	e := NewEvaluator()

	passed := mustFEN(t, "4k3/8/8/3P4/8/8/8/4K3 w - - 0 1")
	assert.Equal(t, passedPawnBonus[4], e.pawnStructure(passed, board.White))

	doubled := mustFEN(t, "4k3/4p3/8/8/8/3P4/3P4/4K3 w - - 0 1")
	assert.Equal(t, doubledPawnPenalty, e.pawnStructure(doubled, board.White))
	assert.Equal(t, 0, e.pawnStructure(doubled, board.Black))

	assert.Equal(t, 0, e.pawnStructure(board.NewPosition(), board.White))
}

func TestFrontSpan(t *testing.T) {
	sqs := func(names ...string) board.Bitboard {
		var b board.Bitboard
		for _, n := range names {
			b |= board.SquareBB(squareOf(t, n))
		}
		return b
	}

	tests := []struct {
		name  string
		sq    string
		color board.Color
		want  board.Bitboard
	}{
		{"white centre", "e6", board.White, sqs("d7", "e7", "f7", "d8", "e8", "f8")},
		{"white a-file", "a6", board.White, sqs("a7", "b7", "a8", "b8")},
		{"white h-file", "h6", board.White, sqs("g7", "h7", "g8", "h8")},
		{"white last rank", "e8", board.White, 0},
		{"black centre", "d3", board.Black, sqs("c2", "d2", "e2", "c1", "d1", "e1")},
		{"black h-file", "h2", board.Black, sqs("g1", "h1")},
		{"black first rank", "d1", board.Black, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, frontSpan(squareOf(t, tt.sq), tt.color))
		})
	}
}

func squareOf(t *testing.T, name string) board.Square {
	t.Helper()
	sq, ok := board.ParseSquare(name)
	require.True(t, ok, name)
	return sq
}

func TestMobilityCountsReach(t *testing.T) {
	e := NewEvaluator()
	pos := board.NewPosition()
	// Only the knights can move: two squares each
	assert.Equal(t, 2*2*mobilityWeight[board.Knight], e.mobility(pos, board.White))
	assert.Equal(t, e.mobility(pos, board.White), e.mobility(pos, board.Black))
}
