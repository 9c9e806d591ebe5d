package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmakeOutOfOrderPanics(t *testing.T) {
	pos := NewPosition()
	e4, err := pos.ParseMove("e2e4")
	require.NoError(t, err)
	pos.Apply(e4)
	e5, err := pos.ParseMove("e7e5")
	require.NoError(t, err)
	pos.Apply(e5)

	assert.Panics(t, func() { pos.Unmake(e4) })

	pos.Unmake(e5)
	pos.Unmake(e4)
	assert.Equal(t, StartFEN, pos.FEN())
	assert.Panics(t, func() { pos.Unmake(e4) })
}

func TestUndoLast(t *testing.T) {
	pos := NewPosition()
	_, ok := pos.UndoLast()
	assert.False(t, ok)

	m, err := pos.ParseMove("g1f3")
	require.NoError(t, err)
	pos.Apply(m)
	assert.Equal(t, 1, pos.Applied())

	undone, ok := pos.UndoLast()
	require.True(t, ok)
	assert.Equal(t, m, undone)
	assert.Equal(t, 0, pos.Applied())
	assert.Equal(t, StartFEN, pos.FEN())
}

func TestDebugValidationCatchesCorruption(t *testing.T) {
	Debug = true
	defer func() { Debug = false }()

	pos := NewPosition()
	m, err := pos.ParseMove("e2e4")
	require.NoError(t, err)
	assert.NotPanics(t, func() { pos.Apply(m) })
	assert.NotPanics(t, func() { pos.Unmake(m) })

	// Any drift between the piece counts and the bitboards is caught on the
	// next apply.
	pos.Counts[WhitePawn]++
	assert.Panics(t, func() { pos.Apply(m) })
}
