package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Status
	}{
		{"start", StartFEN, InProgress},
		{"back rank mate", "4R1k1/5ppp/8/8/8/8/8/4K3 b - - 0 1", BlackCheckmated},
		{"white mated", "7k/8/8/4r3/6b1/6n1/2PP1P2/4K3 w - - 0 1", WhiteCheckmated},
		{"stalemate", "4k3/4P3/4K3/8/8/8/8/8 b - - 0 1", Stalemate},
		{"king can take checker", "6Rk/8/8/8/8/8/8/K7 b - - 0 1", InProgress},
		{"check with escape", "6Rk/8/8/8/8/8/8/KR6 b - - 0 1", InProgress},
		{"bare kings", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", MaterialDraw},
		{"fifty moves", "4k3/8/8/8/8/8/8/R3K3 w - - 100 80", FiftyMoveDraw},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PositionStatus(mustFEN(t, tc.fen)))
		})
	}
}

func TestCheckmateVersusStalemate(t *testing.T) {
	mate := mustFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	assert.False(t, mate.HasLegalMoves())
	assert.True(t, mate.InCheck(Black))

	stale := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.False(t, stale.HasLegalMoves())
	assert.False(t, stale.InCheck(Black))
	assert.Equal(t, Stalemate, PositionStatus(stale))
}

func TestMaterialDraw(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"K v K", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", true},
		{"KB v K", "8/8/8/4k3/8/8/8/2B1K3 w - - 0 1", true},
		{"KN v K", "8/8/8/4k3/8/8/8/2N1K3 w - - 0 1", true},
		{"K v KN", "8/8/8/4k3/8/8/8/4K1n1 w - - 0 1", true},
		{"KNN v K", "8/8/8/4k3/8/8/8/1NN1K3 w - - 0 1", false},
		{"KB v KB same color", "5b2/8/8/4k3/8/8/8/2B1K3 w - - 0 1", true},
		{"KB v KB opposite color", "2b5/8/8/4k3/8/8/8/2B1K3 w - - 0 1", false},
		{"KB v KN", "5n2/8/8/4k3/8/8/8/2B1K3 w - - 0 1", false},
		{"KR v K", "8/8/8/4k3/8/8/8/R3K3 w - - 0 1", false},
		{"KP v K", "8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mustFEN(t, tc.fen).IsMaterialDraw())
		})
	}
}

func playAll(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, text := range moves {
		_, err := g.PushText(text)
		require.NoError(t, err, text)
	}
}

func TestThreefoldRepetition(t *testing.T) {
	g, err := NewGame("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	playAll(t, g, "Ra2", "Kd8", "Ra1", "Ke8")
	assert.Equal(t, InProgress, g.Status())
	assert.Equal(t, 2, RepetitionCount(g.History(), g.Position().Hash, g.Position().HalfMoveClock))

	playAll(t, g, "Ra2", "Kd8", "Ra1", "Ke8")
	assert.Equal(t, ThreefoldDraw, g.Status())

	_, ok := g.Pop()
	require.True(t, ok)
	assert.Equal(t, InProgress, g.Status())
}

func TestPawnMoveBreaksRepetition(t *testing.T) {
	g, err := NewGame("4k3/8/8/8/8/8/4P3/R3K3 w - - 0 1")
	require.NoError(t, err)

	playAll(t, g, "Ra2", "Kd8", "Ra1", "Ke8", "e3", "Kd8", "Ra2", "Ke8", "Ra1")
	assert.Equal(t, 4, g.Position().HalfMoveClock)
	assert.Equal(t, 2, RepetitionCount(g.History(), g.Position().Hash, g.Position().HalfMoveClock))
	assert.Equal(t, InProgress, g.Status())
}

func TestCaptureBreaksRepetition(t *testing.T) {
	g, err := NewGame("4k3/8/8/8/8/8/n7/R3K3 w - - 0 1")
	require.NoError(t, err)

	playAll(t, g, "Kd1", "Nc3+", "Ke1", "Na2", "Kd1", "Nc3+", "Ke1", "Na2")
	assert.Equal(t, ThreefoldDraw, g.Status())
	g.Pop()
	g.Pop()
	g.Pop()
	g.Pop()

	playAll(t, g, "Rxa2", "Kd8", "Ra1", "Ke8")
	assert.Equal(t, 1, RepetitionCount(g.History(), g.Position().Hash, 100))
	assert.Equal(t, InProgress, g.Status())
}

func TestRepetitionCountWindow(t *testing.T) {
	history := []uint64{1, 2, 1, 2, 1}
	assert.Equal(t, 3, RepetitionCount(history, 1, 10))
	assert.Equal(t, 2, RepetitionCount(history, 1, 2))
	assert.Equal(t, 1, RepetitionCount(history, 1, 0))
}

func TestGamePushTextRejectsIllegal(t *testing.T) {
	g, err := NewGame(StartFEN)
	require.NoError(t, err)
	_, err = g.PushText("e5")
	require.Error(t, err)
	assert.True(t, IsFormatError(err))
	assert.Empty(t, g.Moves())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "threefoldDraw", ThreefoldDraw.String())
	assert.Equal(t, "none", InProgress.String())
	assert.False(t, InProgress.IsOver())
	assert.True(t, Stalemate.IsOver())
}
