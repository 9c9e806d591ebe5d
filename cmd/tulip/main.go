// Command tulip exposes the chess core as subcommands and runs the UCI loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hailam/tulip/internal/board"
	"github.com/hailam/tulip/internal/book"
	"github.com/hailam/tulip/internal/engine"
	"github.com/hailam/tulip/internal/storage"
	"github.com/hailam/tulip/internal/uci"
)

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

var commands = []command{
	{"printstate", "print the board, FEN and hash", runPrintState},
	{"listmoves", "list legal moves in SAN and coordinate form", runListMoves},
	{"makemove", "apply a move and print the new FEN", runMakeMove},
	{"gamestatus", "classify the game result", runGameStatus},
	{"bestmove", "search for the best move", runBestMove},
	{"rankmoves", "score every legal move", runRankMoves},
	{"perft", "count leaf nodes, optionally divided by root move", runPerft},
	{"bookmoves", "list book moves for a position", runBookMoves},
	{"bookadd", "add moves to the book store", runBookAdd},
	{"games", "list, show or delete saved games", runGames},
	{"settings", "show or change saved engine settings", runSettings},
	{"uci", "run the UCI loop on stdin/stdout", runUCI},
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("tulip: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	for _, c := range commands {
		if c.name == os.Args[1] {
			if err := c.run(os.Args[2:]); err != nil {
				log.Fatal(err)
			}
			return
		}
	}
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tulip <command> [flags]")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-11s %s\n", c.name, c.usage)
	}
}

// gameFlags are shared by every command that starts from a position.
type gameFlags struct {
	fen   *string
	moves *string
}

func addGameFlags(fs *flag.FlagSet) gameFlags {
	return gameFlags{
		fen:   fs.String("fen", board.StartFEN, "starting position"),
		moves: fs.String("moves", "", "space separated moves played from -fen (SAN or coordinate)"),
	}
}

func (g gameFlags) game() (*board.Game, error) {
	game, err := board.NewGame(*g.fen)
	if err != nil {
		return nil, err
	}
	for _, text := range strings.Fields(*g.moves) {
		if _, err := game.PushText(text); err != nil {
			return nil, err
		}
	}
	return game, nil
}

// bookFlags select the opening books a command consults.
type bookFlags struct {
	polyglot *string
	store    *string
	noStore  *bool
}

func addBookFlags(fs *flag.FlagSet) bookFlags {
	return bookFlags{
		polyglot: fs.String("book", "", "Polyglot .bin book file"),
		store:    fs.String("store", "", "book store directory (default: data dir)"),
		noStore:  fs.Bool("nostore", false, "skip the book store"),
	}
}

// open returns the configured books chained behind a probe cache, and a
// close function. The result is nil when no book is configured.
func (b bookFlags) open() (book.Book, func(), error) {
	var chain book.Chain
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if *b.polyglot != "" {
		pb, err := book.LoadPolyglot(*b.polyglot)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, pb)
	}
	if !*b.noStore {
		s, err := openBookStore(*b.store)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { s.Close() })
		chain = append(chain, s)
	}
	if len(chain) == 0 {
		return nil, func() {}, nil
	}

	cached, err := book.NewCached(chain, 1<<12)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	closers = append(closers, cached.Close)
	return cached, closeAll, nil
}

func openBookStore(dir string) (*book.Store, error) {
	if dir == "" {
		var err error
		if dir, err = storage.BookDir(); err != nil {
			return nil, err
		}
	}
	return book.OpenStore(dir)
}

func runPrintState(args []string) error {
	fs := flag.NewFlagSet("printstate", flag.ExitOnError)
	gf := addGameFlags(fs)
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	pos := game.Position()
	fmt.Print(pos.String())
	fmt.Printf("FEN:  %s\n", pos.FEN())
	fmt.Printf("Hash: %s\n", board.HashHex(pos.Hash))
	fmt.Printf("Eval: %s\n", engine.ScoreToString(engine.NewEvaluator().Evaluate(pos)))
	return nil
}

func runListMoves(args []string) error {
	fs := flag.NewFlagSet("listmoves", flag.ExitOnError)
	gf := addGameFlags(fs)
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	pos := game.Position()
	moves := pos.LegalMoves()
	for _, m := range moves {
		fmt.Printf("%-8s %s\n", pos.SAN(m), m.Coordinate())
	}
	fmt.Printf("%d legal moves\n", len(moves))
	return nil
}

func runMakeMove(args []string) error {
	fs := flag.NewFlagSet("makemove", flag.ExitOnError)
	gf := addGameFlags(fs)
	move := fs.String("move", "", "move to apply (SAN or coordinate)")
	save := fs.Bool("save", false, "save the resulting game")
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	before := game.Position().Copy()
	m, err := game.PushText(*move)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", before.SAN(m), m.Coordinate())
	fmt.Println(game.Position().FEN())

	if *save {
		return withStorage(func(s *storage.Storage) error {
			id, err := s.SaveGame(game)
			if err == nil {
				fmt.Printf("saved game %s\n", id)
			}
			return err
		})
	}
	return nil
}

func runGameStatus(args []string) error {
	fs := flag.NewFlagSet("gamestatus", flag.ExitOnError)
	gf := addGameFlags(fs)
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	fmt.Println(game.Status())
	return nil
}

// searchFlags configure a search.
type searchFlags struct {
	depth    *int
	nodes    *uint64
	moveTime *time.Duration
	hash     *int
	verbose  *bool
}

func addSearchFlags(fs *flag.FlagSet, defaultDepth int) searchFlags {
	return searchFlags{
		depth:    fs.Int("depth", defaultDepth, "maximum depth (0 = unlimited)"),
		nodes:    fs.Uint64("nodes", 0, "node budget (0 = unlimited)"),
		moveTime: fs.Duration("movetime", 0, "time budget (0 = unlimited)"),
		hash:     fs.Int("hash", engine.DefaultHashMB, "transposition table size in MB"),
		verbose:  fs.Bool("v", false, "log every iteration"),
	}
}

func (f searchFlags) search(game *board.Game) engine.Result {
	cfg := engine.Config{HashMB: *f.hash}
	if *f.verbose {
		cfg.Logger = log.New(os.Stderr, "search: ", log.Lmicroseconds)
	}
	eng := engine.NewEngine(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	limits := engine.Limits{Depth: *f.depth, Nodes: *f.nodes, MoveTime: *f.moveTime}
	return eng.Search(ctx, game.Position().Copy(), game.History(), limits)
}

func runBestMove(args []string) error {
	fs := flag.NewFlagSet("bestmove", flag.ExitOnError)
	gf := addGameFlags(fs)
	sf := addSearchFlags(fs, 5)
	bf := addBookFlags(fs)
	useBook := fs.Bool("usebook", false, "play a book move when one exists")
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	pos := game.Position()

	if *useBook {
		bk, closeBooks, err := bf.open()
		if err != nil {
			return err
		}
		defer closeBooks()
		if bk != nil {
			moves, err := bk.Lookup(pos)
			if err != nil {
				return err
			}
			if len(moves) > 0 {
				fmt.Printf("%s (%s) book\n", pos.SAN(moves[0]), moves[0].Coordinate())
				return nil
			}
		}
	}

	res := sf.search(game)
	if res.Best.IsNull() {
		fmt.Printf("no legal moves: %s\n", game.Status())
		return nil
	}
	fmt.Printf("%s (%s) score %s depth %d nodes %s time %s\n",
		pos.SAN(res.Best), res.Best.Coordinate(), engine.ScoreToString(res.Score),
		res.Depth, humanize.Comma(int64(res.Nodes)), res.Time.Round(time.Millisecond))
	if len(res.PV) > 0 {
		fmt.Printf("pv %s\n", strings.Join(pos.SANLine(res.PV), " "))
	}
	return nil
}

func runRankMoves(args []string) error {
	fs := flag.NewFlagSet("rankmoves", flag.ExitOnError)
	gf := addGameFlags(fs)
	sf := addSearchFlags(fs, 3)
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	res := sf.search(game)
	for i, rm := range res.Ranked {
		fmt.Printf("%3d. %-8s %s\n", i+1, rm.SAN, engine.ScoreToString(rm.Score))
	}
	fmt.Printf("depth %d nodes %s\n", res.Depth, humanize.Comma(int64(res.Nodes)))
	return nil
}

func runPerft(args []string) error {
	fs := flag.NewFlagSet("perft", flag.ExitOnError)
	gf := addGameFlags(fs)
	depth := fs.Int("depth", 4, "perft depth")
	divide := fs.Bool("divide", false, "print counts per root move")
	workers := fs.Int("workers", 0, "parallel workers for -divide (0 = GOMAXPROCS)")
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	pos := game.Position()
	start := time.Now()

	var total uint64
	if *divide {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		entries, err := engine.PerftDivide(ctx, pos, *depth, *workers)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move.Coordinate(), e.Nodes)
		}
		total = engine.DivideTotal(entries)
	} else {
		total = engine.Perft(pos, *depth)
	}

	elapsed := time.Since(start)
	fmt.Printf("nodes %d (%s) in %s\n", total, humanize.Comma(int64(total)), elapsed.Round(time.Millisecond))
	return nil
}

func runBookMoves(args []string) error {
	fs := flag.NewFlagSet("bookmoves", flag.ExitOnError)
	gf := addGameFlags(fs)
	bf := addBookFlags(fs)
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	bk, closeBooks, err := bf.open()
	if err != nil {
		return err
	}
	defer closeBooks()
	if bk == nil {
		return fmt.Errorf("no book configured")
	}

	pos := game.Position()
	moves, err := bk.Lookup(pos)
	if err != nil {
		return err
	}
	for _, m := range moves {
		fmt.Printf("%-8s %s\n", pos.SAN(m), m.Coordinate())
	}
	if len(moves) == 0 {
		fmt.Println("no book moves")
	}
	return nil
}

func runBookAdd(args []string) error {
	fs := flag.NewFlagSet("bookadd", flag.ExitOnError)
	gf := addGameFlags(fs)
	dir := fs.String("store", "", "book store directory (default: data dir)")
	fs.Parse(args)

	game, err := gf.game()
	if err != nil {
		return err
	}
	pos := game.Position()

	var moves []board.Move
	for _, text := range fs.Args() {
		m, ok := pos.MatchMove(text)
		if !ok {
			return fmt.Errorf("illegal book move %q in %s", text, pos.FEN())
		}
		moves = append(moves, m)
	}
	if len(moves) == 0 {
		return fmt.Errorf("bookadd: no moves given")
	}

	s, err := openBookStore(*dir)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Add(pos, moves...); err != nil {
		return err
	}
	n, err := s.Size()
	if err != nil {
		return err
	}
	fmt.Printf("added %d moves, book holds %s positions\n", len(moves), humanize.Comma(int64(n)))
	return nil
}

func withStorage(fn func(*storage.Storage) error) error {
	s, err := storage.NewStorage()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func runGames(args []string) error {
	fs := flag.NewFlagSet("games", flag.ExitOnError)
	show := fs.String("show", "", "print the game with this ID")
	del := fs.String("delete", "", "delete the game with this ID")
	fs.Parse(args)

	return withStorage(func(s *storage.Storage) error {
		switch {
		case *show != "":
			rec, found, err := s.Load(*show)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no game %s", *show)
			}
			fmt.Printf("%s  %s  saved %s\n", rec.ID, rec.Status, humanize.Time(rec.SavedAt))
			fmt.Println(strings.Join(rec.SAN, " "))
			fmt.Println(rec.FinalFEN)
			return nil
		case *del != "":
			return s.Delete(*del)
		}

		ids, err := s.List()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		stats, err := s.LoadStats()
		if err != nil {
			return err
		}
		fmt.Printf("%d saved, %d finished\n", len(ids), stats.Games)
		for result, n := range stats.Results {
			fmt.Printf("  %-16s %d\n", result, n)
		}
		return nil
	})
}

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	depth := fs.Int("depth", 0, "set the default search depth")
	hash := fs.Int("hash", 0, "set the default hash size in MB")
	moveTime := fs.Duration("movetime", 0, "set the default move time")
	fs.Parse(args)

	return withStorage(func(s *storage.Storage) error {
		settings, err := s.LoadSettings()
		if err != nil {
			return err
		}
		changed := false
		fs.Visit(func(f *flag.Flag) {
			changed = true
			switch f.Name {
			case "depth":
				settings.Depth = *depth
			case "hash":
				settings.HashMB = *hash
			case "movetime":
				settings.MoveTime = *moveTime
			}
		})
		if changed {
			if err := s.SaveSettings(settings); err != nil {
				return err
			}
		}
		fmt.Printf("depth %d hash %dMB movetime %s book %t\n",
			settings.Depth, settings.HashMB, settings.MoveTime, settings.UseBook)
		return nil
	})
}

func runUCI(args []string) error {
	fs := flag.NewFlagSet("uci", flag.ExitOnError)
	hash := fs.Int("hash", engine.DefaultHashMB, "transposition table size in MB")
	bf := addBookFlags(fs)
	fs.Parse(args)

	bk, closeBooks, err := bf.open()
	if err != nil {
		return err
	}
	defer closeBooks()

	eng := engine.NewEngine(engine.Config{
		HashMB: *hash,
		Logger: log.New(os.Stderr, "engine: ", log.Lmicroseconds),
	})
	return uci.New(eng, bk, os.Stdout).Run(os.Stdin)
}
