package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hailam/tulip/internal/board"
)

// SearchInfo reports one completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// Limits bounds a search. Zero fields are unlimited; with no limit at all
// the search runs to MaxDepth unless stopped or cancelled.
type Limits struct {
	Depth    int           // Maximum depth (0 = MaxDepth)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Difficulty represents a preset strength.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]Limits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 4, MoveTime: 2 * time.Second},
	Hard:   {Depth: 6, MoveTime: 5 * time.Second},
}

// Result is the outcome of a search. Ranked holds every root move, best
// first, scored from the side to move's point of view.
type Result struct {
	Best   board.Move
	Score  int
	Depth  int
	Nodes  uint64
	Time   time.Duration
	PV     []board.Move
	Ranked []RootMove
}

// Config configures an Engine.
type Config struct {
	HashMB int         // transposition table size; 0 uses DefaultHashMB
	Logger *log.Logger // per-iteration log lines; nil is silent
}

// DefaultHashMB is the table size used when Config.HashMB is zero.
const DefaultHashMB = 16

// Engine owns the evaluator and the tables that outlive a single search.
// Searches on one Engine are serialized.
type Engine struct {
	mu       sync.Mutex
	eval     *Evaluator
	tt       *TranspositionTable
	orderer  *MoveOrderer
	stopFlag atomic.Bool
	logger   *log.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine.
func NewEngine(cfg Config) *Engine {
	if cfg.HashMB == 0 {
		cfg.HashMB = DefaultHashMB
	}
	return &Engine{
		eval:    NewEvaluator(),
		tt:      NewTranspositionTable(cfg.HashMB),
		orderer: NewMoveOrderer(),
		logger:  cfg.Logger,
	}
}

// Evaluator returns the evaluator the engine searches with.
func (e *Engine) Evaluator() *Evaluator {
	return e.eval
}

// Stop asks a running search to return. It is safe to call from any
// goroutine.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Clear clears the transposition table and move ordering state.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
	e.orderer = NewMoveOrderer()
}

// Search runs iterative deepening on pos. history lists the hashes of the
// game so far, oldest first; the current position may be included as the
// last entry. pos is mutated during the search and fully restored before
// Search returns. When a budget runs out the last completed iteration is
// returned, or the partial first iteration when none completed. A
// position without legal moves returns NoMove, scored as mate or 0.
func (e *Engine) Search(ctx context.Context, pos *board.Position, history []uint64, limits Limits) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.stopFlag.Store(false)
	e.tt.NewSearch()
	e.orderer.Clear()

	s := NewSearcher(e.eval, e.tt, e.orderer, &e.stopFlag)
	s.prepare(ctx, pos, history, limits, start)

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		res := Result{Best: board.NoMove, Time: time.Since(start)}
		if pos.InCheck(pos.SideToMove) {
			res.Score = -MateScore
		}
		return res
	}

	root := make([]RootMove, len(moves))
	for i, m := range moves {
		root[i] = RootMove{Move: m, SAN: pos.SAN(m), Score: -Infinity}
	}
	if entry, ok := e.tt.Probe(pos.Hash); ok {
		promote(root, entry.BestMove)
	}

	maxDepth := MaxDepth
	if limits.Depth > 0 && limits.Depth < MaxDepth {
		maxDepth = limits.Depth
	}

	var done []RootMove
	completed := 0
	for depth := 1; depth <= maxDepth; depth++ {
		work := append([]RootMove(nil), root...)
		if !s.searchRoot(depth, work) {
			if done == nil {
				done = work
			}
			break
		}
		done, root = work, work
		completed = depth

		elapsed := time.Since(start)
		info := SearchInfo{
			Depth:    depth,
			Score:    done[0].Score,
			Nodes:    s.Nodes(),
			Time:     elapsed,
			PV:       done[0].PV,
			HashFull: e.tt.HashFull(),
		}
		if e.OnInfo != nil {
			e.OnInfo(info)
		}
		if e.logger != nil {
			e.logger.Printf("depth %d score %s nodes %s tt %.0f%% pv %s", depth, ScoreToString(info.Score),
				humanize.Comma(int64(info.Nodes)), e.tt.HitRate(), pvString(info.PV))
		}

		// Without a depth limit a forced mate ends the search; with one,
		// every root move is still scored to that depth.
		if limits.Depth == 0 && IsMateScore(done[0].Score) && done[0].Score > 0 {
			break
		}
		// Don't start an iteration that can't finish in time
		if limits.MoveTime > 0 && limits.MoveTime-elapsed < elapsed {
			break
		}
	}

	if completed == 0 {
		scoreUnsearched(e.eval, pos, done)
	}
	best := done[0]
	return Result{
		Best:   best.Move,
		Score:  best.Score,
		Depth:  completed,
		Nodes:  s.Nodes(),
		Time:   time.Since(start),
		PV:     best.PV,
		Ranked: done,
	}
}

// Best is a convenience wrapper returning only the best move.
func (e *Engine) Best(pos *board.Position, d Difficulty) board.Move {
	return e.Search(context.Background(), pos, nil, DifficultySettings[d]).Best
}

// Evaluate returns the static evaluation of pos from White's perspective.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Evaluate(pos)
}

// scoreUnsearched gives root moves the first iteration never reached a
// one-ply score: mate or stalemate when the move ends the game, otherwise
// the static evaluation after the move. root is re-sorted best first.
func scoreUnsearched(eval *Evaluator, pos *board.Position, root []RootMove) {
	for i := range root {
		if root[i].Score != -Infinity {
			continue
		}
		m := root[i].Move
		pos.Apply(m)
		switch {
		case pos.HasLegalMoves():
			root[i].Score = -eval.Relative(pos)
		case pos.InCheck(pos.SideToMove):
			root[i].Score = MateScore - 1
		default:
			root[i].Score = 0
		}
		pos.Unmake(m)
		root[i].PV = []board.Move{m}
	}
	sort.SliceStable(root, func(i, j int) bool {
		return root[i].Score > root[j].Score
	})
}

// promote moves m to the front of root when present.
func promote(root []RootMove, m board.Move) {
	for i := range root {
		if root[i].Move == m {
			root[0], root[i] = root[i], root[0]
			return
		}
	}
}

func pvString(pv []board.Move) string {
	s := ""
	for i, m := range pv {
		if i > 0 {
			s += " "
		}
		s += m.UCI()
	}
	return s
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("Mate in %d", (MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("Mated in %d", (MateScore+score+1)/2)
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
