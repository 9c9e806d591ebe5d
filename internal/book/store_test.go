package book

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/tulip/internal/board"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	pos := board.NewPosition()

	moves, err := s.Lookup(pos)
	require.NoError(t, err)
	assert.Empty(t, moves, "an empty book is a miss, not an error")

	require.NoError(t, s.Add(pos, mustMove(t, pos, "e2e4"), mustMove(t, pos, "d2d4")))
	require.NoError(t, s.Add(pos, mustMove(t, pos, "e2e4")))

	moves, err = s.Lookup(pos)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "e2e4", moves[0].Coordinate())
	assert.Equal(t, "d2d4", moves[1].Coordinate())

	n, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreSkipsUnmatchedText(t *testing.T) {
	s := openTestStore(t)
	pos := board.NewPosition()

	require.NoError(t, s.AddText(pos.Hash, "Nf3", "e2e5", "garbage", "c4"))

	texts, err := s.Texts(pos.Hash)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nf3", "e2e5", "garbage", "c4"}, texts)

	moves, err := s.Lookup(pos)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "g1f3", moves[0].Coordinate())
	assert.Equal(t, "c2c4", moves[1].Coordinate())
}

func TestStoreKeyedByHash(t *testing.T) {
	s := openTestStore(t)
	pos := board.NewPosition()
	require.NoError(t, s.Add(pos, mustMove(t, pos, "e2e4")))

	after := pos.Copy()
	after.Apply(mustMove(t, after, "e2e4"))
	moves, err := s.Lookup(after)
	require.NoError(t, err)
	assert.Empty(t, moves)
}

type countingBook struct {
	calls int
	moves []board.Move
	err   error
}

func (b *countingBook) Lookup(*board.Position) ([]board.Move, error) {
	b.calls++
	return b.moves, b.err
}

func TestCachedLookup(t *testing.T) {
	pos := board.NewPosition()
	inner := &countingBook{moves: []board.Move{mustMove(t, pos, "e2e4")}}
	c, err := NewCached(inner, 16)
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 3; i++ {
		moves, err := c.Lookup(pos)
		require.NoError(t, err)
		require.Len(t, moves, 1)
	}
	assert.Equal(t, 1, inner.calls)

	c.Invalidate(pos)
	_, err = c.Lookup(pos)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedPassesErrors(t *testing.T) {
	inner := &countingBook{err: errors.New("disk on fire")}
	c, err := NewCached(inner, 16)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Lookup(board.NewPosition())
	assert.Error(t, err)
	_, err = c.Lookup(board.NewPosition())
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls, "errors are not cached")
}

func TestCachedOverStore(t *testing.T) {
	s := openTestStore(t)
	pos := board.NewPosition()
	require.NoError(t, s.Add(pos, mustMove(t, pos, "c2c4")))

	c, err := NewCached(s, 16)
	require.NoError(t, err)
	defer c.Close()

	moves, err := c.Lookup(pos)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "c2c4", moves[0].Coordinate())
}
