package uci

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/tulip/internal/board"
	"github.com/hailam/tulip/internal/book"
	"github.com/hailam/tulip/internal/engine"
)

// syncBuffer lets the search goroutine and the test share one output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestUCI(t *testing.T, bk book.Book) (*UCI, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	return New(engine.NewEngine(engine.Config{HashMB: 1}), bk, out), out
}

func bestMove(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "bestmove ") {
			return strings.TrimPrefix(line, "bestmove ")
		}
	}
	t.Fatalf("no bestmove in output:\n%s", output)
	return ""
}

func TestHandshake(t *testing.T) {
	u, out := newTestUCI(t, nil)
	err := u.Run(strings.NewReader("uci\nisready\nquit\n"))
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "id name Tulip")
	assert.Contains(t, got, "option name Hash type spin")
	assert.Contains(t, got, "uciok")
	assert.Contains(t, got, "readyok")
}

func TestPositionWithMoves(t *testing.T) {
	u, _ := newTestUCI(t, nil)
	u.Handle("position startpos moves e2e4 e7e5 g1f3")

	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", u.game.Position().FEN())
	assert.Len(t, u.game.History(), 4)
}

func TestPositionFEN(t *testing.T) {
	const fen = "6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1"
	u, _ := newTestUCI(t, nil)
	u.Handle("position fen " + fen)
	assert.Equal(t, fen, u.game.Position().FEN())

	u.Handle("position fen " + fen + " moves e1e8")
	assert.Equal(t, board.BlackCheckmated, u.game.Status())
}

func TestPositionRejectsBadInput(t *testing.T) {
	u, out := newTestUCI(t, nil)
	u.Handle("position startpos moves e2e4")
	before := u.game.Position().FEN()

	u.Handle("position fen not/a/fen w - - 0 1")
	assert.Equal(t, before, u.game.Position().FEN())
	assert.Contains(t, out.String(), "invalid fen")

	u.Handle("position startpos moves e2e4 e2e4")
	assert.Contains(t, out.String(), "invalid move e2e4")
	assert.Len(t, u.game.Moves(), 1)
}

func TestGoFindsMate(t *testing.T) {
	u, out := newTestUCI(t, nil)
	u.Handle("position fen 6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1")
	u.Handle("go depth 3")
	u.Wait()

	got := out.String()
	assert.Equal(t, "e1e8", bestMove(t, got))
	assert.Contains(t, got, "score mate 1")
	assert.Contains(t, got, "pv e1e8")
}

func TestGoWithClock(t *testing.T) {
	u, out := newTestUCI(t, nil)
	u.Handle("position startpos")
	u.Handle("go wtime 200 btime 200 winc 0 binc 0")
	u.Wait()

	mv := bestMove(t, out.String())
	_, err := board.NewPosition().ParseMove(mv)
	assert.NoError(t, err)
}

func TestStopInfinite(t *testing.T) {
	u, out := newTestUCI(t, nil)
	u.Handle("position startpos")
	u.Handle("go infinite")
	time.Sleep(20 * time.Millisecond)
	u.Handle("stop")

	mv := bestMove(t, out.String())
	_, err := board.NewPosition().ParseMove(mv)
	assert.NoError(t, err)
}

func TestGoWithoutLegalMoves(t *testing.T) {
	u, out := newTestUCI(t, nil)
	u.Handle("position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	u.Handle("go depth 2")
	u.Wait()
	assert.Equal(t, "0000", bestMove(t, out.String()))
}

func TestBookMovePlayedInstantly(t *testing.T) {
	pos := board.NewPosition()
	var buf bytes.Buffer
	m, err := pos.ParseMove("d2d4")
	require.NoError(t, err)
	require.NoError(t, book.EncodePolyglotEntry(&buf, pos, m, 10))
	pb, err := book.LoadPolyglotReader(&buf)
	require.NoError(t, err)

	u, out := newTestUCI(t, pb)
	u.Handle("position startpos")
	u.Handle("go depth 5")
	u.Wait()
	got := out.String()
	assert.Equal(t, "d2d4", bestMove(t, got))
	assert.Contains(t, got, "book move d4")

	u.Handle("setoption name OwnBook value false")
	u.Handle("position startpos moves e2e4")
	u.Handle("go depth 1")
	u.Wait()
	assert.NotContains(t, out.String(), "book move e")
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("wtime 1000 btime 2000 winc 10 binc 20 movestogo 7 depth 4 nodes 500"))
	assert.Equal(t, time.Second, opts.Time[board.White])
	assert.Equal(t, 2*time.Second, opts.Time[board.Black])
	assert.Equal(t, 10*time.Millisecond, opts.Inc[board.White])
	assert.Equal(t, 20*time.Millisecond, opts.Inc[board.Black])
	assert.Equal(t, 7, opts.MovesToGo)
	assert.Equal(t, 4, opts.Depth)
	assert.Equal(t, uint64(500), opts.Nodes)
	assert.False(t, opts.Infinite)

	assert.True(t, parseGoOptions([]string{"infinite"}).Infinite)
	assert.Equal(t, 50*time.Millisecond, parseGoOptions([]string{"movetime", "50"}).MoveTime)
}

func TestPerftCommand(t *testing.T) {
	u, out := newTestUCI(t, nil)
	u.Handle("position startpos")
	u.Handle("perft 2")

	got := out.String()
	assert.Contains(t, got, "e2e4: 20")
	assert.Contains(t, got, "Nodes searched: 400")
}

func TestSetOptionHash(t *testing.T) {
	u, out := newTestUCI(t, nil)
	old := u.engine
	u.Handle("setoption name Hash value 2")
	assert.NotSame(t, old, u.engine)

	u.Handle("setoption name Hash value zero")
	assert.Contains(t, out.String(), "invalid hash size")
}

func TestNewGameResetsPosition(t *testing.T) {
	u, _ := newTestUCI(t, nil)
	u.Handle("position startpos moves e2e4")
	u.Handle("ucinewgame")
	assert.Equal(t, board.StartFEN, u.game.Position().FEN())
}
