package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/tulip/internal/board"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func playGame(t *testing.T, moves ...string) *board.Game {
	t.Helper()
	g, err := board.NewGame(board.StartFEN)
	require.NoError(t, err)
	for _, text := range moves {
		_, err := g.PushText(text)
		require.NoError(t, err, text)
	}
	return g
}

func TestGameRoundTrip(t *testing.T) {
	s := openTestStorage(t)
	g := playGame(t, "f3", "e5", "g4", "Qh4#")

	id, err := s.SaveGame(g)
	require.NoError(t, err)
	assert.Len(t, id, 16)

	rec, found, err := s.Load(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"f2f3", "e7e5", "g2g4", "d8h4"}, rec.Moves)
	assert.Equal(t, []string{"f3", "e5", "g4", "Qh4#"}, rec.SAN)
	assert.Equal(t, "whiteCheckmated", rec.Status)
	assert.Equal(t, g.Position().FEN(), rec.FinalFEN)

	replayed, err := rec.Replay()
	require.NoError(t, err)
	assert.Equal(t, g.Position().Hash, replayed.Position().Hash)
	assert.Equal(t, board.WhiteCheckmated, replayed.Status())
}

func TestLoadMissing(t *testing.T) {
	s := openTestStorage(t)
	_, found, err := s.Load("0000000000000000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGameIDIsStable(t *testing.T) {
	a := GameID(board.StartFEN, []string{"e2e4", "e7e5"})
	assert.Equal(t, a, GameID(board.StartFEN, []string{"e2e4", "e7e5"}))
	assert.NotEqual(t, a, GameID(board.StartFEN, []string{"e2e4"}))
	assert.NotEqual(t, a, GameID(board.StartFEN, []string{"e2e4e7e5"}))
}

func TestStatsCountFinishedGamesOnce(t *testing.T) {
	s := openTestStorage(t)
	mate := playGame(t, "f3", "e5", "g4", "Qh4#")
	open := playGame(t, "e4")

	_, err := s.SaveGame(mate)
	require.NoError(t, err)
	_, err = s.SaveGame(mate)
	require.NoError(t, err)
	_, err = s.SaveGame(open)
	require.NoError(t, err)

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Games)
	assert.Equal(t, 1, stats.Results["whiteCheckmated"])

	ids, err := s.List()
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	require.NoError(t, s.Delete(ids[0]))
	ids, err = s.List()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestSettings(t *testing.T) {
	s := openTestStorage(t)

	settings, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().Depth, settings.Depth)

	settings.Depth = 9
	settings.MoveTime = time.Second
	require.NoError(t, s.SaveSettings(settings))

	loaded, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Depth)
	assert.Equal(t, time.Second, loaded.MoveTime)
	assert.False(t, loaded.LastPlayed.IsZero())
}

func TestReplayRejectsCorruptRecord(t *testing.T) {
	rec := GameRecord{ID: "X", StartFEN: board.StartFEN, Moves: []string{"e2e4", "e2e4"}}
	_, err := rec.Replay()
	assert.Error(t, err)
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := DataDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dataDir)
	_, err = os.Stat(dataDir)
	assert.NoError(t, err)

	dbDir, err := DatabaseDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "db"), dbDir)
}
