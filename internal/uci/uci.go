// Package uci implements the Universal Chess Interface protocol.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hailam/tulip/internal/board"
	"github.com/hailam/tulip/internal/book"
	"github.com/hailam/tulip/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	book   book.Book
	game   *board.Game

	ownBook bool

	out   io.Writer
	outMu sync.Mutex

	// Search state
	searchDone chan struct{}
	cancel     context.CancelFunc
}

// New creates a protocol handler writing to out. bk may be nil.
func New(eng *engine.Engine, bk book.Book, out io.Writer) *UCI {
	g, _ := board.NewGame(board.StartFEN)
	return &UCI{
		engine:  eng,
		book:    bk,
		game:    g,
		ownBook: bk != nil,
		out:     out,
	}
}

// Run reads commands from in until "quit" or end of input.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !u.Handle(scanner.Text()) {
			return nil
		}
	}
	u.handleStop()
	return scanner.Err()
}

// Handle executes one command line. It returns false after "quit".
func (u *UCI) Handle(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.handleNewGame()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	case "stop":
		u.handleStop()
	case "quit":
		u.handleStop()
		return false
	case "setoption":
		u.handleSetOption(args)
	// Debug commands
	case "d":
		u.println(u.game.Position().String())
		u.printf("Fen: %s\nKey: %s\n", u.game.Position().FEN(), board.HashHex(u.game.Position().Hash))
	case "eval":
		u.printf("info string eval %d\n", u.engine.Evaluate(u.game.Position()))
	case "perft":
		u.handlePerft(args)
	default:
		u.printf("info string unknown command %s\n", cmd)
	}
	return true
}

// Wait blocks until the running search, if any, has printed its bestmove.
func (u *UCI) Wait() {
	if u.searchDone != nil {
		<-u.searchDone
	}
}

func (u *UCI) printf(format string, args ...interface{}) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) {
	u.printf("%s\n", s)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name Tulip")
	u.println("id author Tulip developers")
	u.println("")
	u.printf("option name Hash type spin default %d min 1 max 4096\n", engine.DefaultHashMB)
	u.printf("option name OwnBook type check default %t\n", u.book != nil)
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.game, _ = board.NewGame(board.StartFEN)
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.handleStop()

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var fen string
	switch args[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		fen = strings.Join(args[1:movesAt], " ")
	default:
		return
	}

	g, err := board.NewGame(fen)
	if err != nil {
		u.printf("info string invalid fen: %v\n", err)
		return
	}
	if movesAt < len(args) {
		for _, text := range args[movesAt+1:] {
			if _, err := g.PushText(text); err != nil {
				u.printf("info string invalid move %s\n", text)
				break
			}
		}
	}
	u.game = g
}

// handleGo starts a search in the background.
func (u *UCI) handleGo(args []string) {
	u.handleStop()
	pos := u.game.Position()

	if u.ownBook && u.book != nil {
		moves, err := u.book.Lookup(pos)
		if err != nil {
			u.printf("info string book: %v\n", err)
		} else if len(moves) > 0 {
			u.printf("info string book move %s\n", pos.SAN(moves[0]))
			u.printf("bestmove %s\n", moves[0].UCI())
			return
		}
	}

	limits := parseGoOptions(args).Limits(pos.SideToMove, len(u.game.Moves()))
	history := append([]uint64(nil), u.game.History()...)
	searchPos := pos.Copy()

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchDone = make(chan struct{})
	u.engine.OnInfo = u.sendInfo

	go func() {
		defer close(u.searchDone)
		res := u.engine.Search(ctx, searchPos, history, limits)
		if res.Best.IsNull() {
			u.println("bestmove 0000")
			return
		}
		u.printf("bestmove %s\n", res.Best.UCI())
	}()
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) engine.UCILimits {
	var opts engine.UCILimits
	ms := func(s string) time.Duration {
		n, _ := strconv.Atoi(s)
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		next := ""
		if i+1 < len(args) {
			next = args[i+1]
		}
		switch args[i] {
		case "depth":
			opts.Depth, _ = strconv.Atoi(next)
			i++
		case "nodes":
			opts.Nodes, _ = strconv.ParseUint(next, 10, 64)
			i++
		case "movetime":
			opts.MoveTime = ms(next)
			i++
		case "wtime":
			opts.Time[board.White] = ms(next)
			i++
		case "btime":
			opts.Time[board.Black] = ms(next)
			i++
		case "winc":
			opts.Inc[board.White] = ms(next)
			i++
		case "binc":
			opts.Inc[board.Black] = ms(next)
			i++
		case "movestogo":
			opts.MovesToGo, _ = strconv.Atoi(next)
			i++
		case "infinite":
			opts.Infinite = true
		}
	}
	return opts
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	switch {
	case info.Score > engine.MateScore-engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate %d", (engine.MateScore-info.Score+1)/2))
	case info.Score < -engine.MateScore+engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate %d", -(engine.MateScore+info.Score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.UCI()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searchDone == nil {
		return
	}
	u.engine.Stop()
	u.cancel()
	<-u.searchDone
	u.searchDone = nil
	u.cancel = nil
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}

	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		mb, err := strconv.Atoi(strings.Join(value, ""))
		if err != nil || mb < 1 {
			u.printf("info string invalid hash size %q\n", strings.Join(value, " "))
			return
		}
		u.handleStop()
		onInfo := u.engine.OnInfo
		u.engine = engine.NewEngine(engine.Config{HashMB: mb})
		u.engine.OnInfo = onInfo
	case "ownbook":
		u.ownBook = strings.EqualFold(strings.Join(value, ""), "true")
	}
}

// handlePerft runs "perft <depth>" and prints a divide.
func (u *UCI) handlePerft(args []string) {
	depth := 1
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	entries, err := engine.PerftDivide(context.Background(), u.game.Position(), depth, 0)
	if err != nil {
		u.printf("info string perft: %v\n", err)
		return
	}
	for _, e := range entries {
		u.printf("%s: %d\n", e.Move.UCI(), e.Nodes)
	}
	total := engine.DivideTotal(entries)
	u.printf("\nNodes searched: %d\n", total)
	u.printf("info string %s nodes in %s\n", humanize.Comma(int64(total)), time.Since(start).Round(time.Millisecond))
}
