package board

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Debug enables a full Validate after every Apply and Unmake. A failure
// panics with the InvariantViolation.
var Debug = false

type undoFrame struct {
	move Move
	rec  UndoRecord
}

// undoStack keeps Apply/Unmake pairs in LIFO order.
type undoStack struct {
	frames []undoFrame
}

// Apply makes m and remembers how to reverse it.
func (p *Position) Apply(m Move) {
	rec := p.MakeMove(m)
	p.undo.frames = append(p.undo.frames, undoFrame{move: m, rec: rec})
	if Debug {
		p.mustValidate("apply " + m.Coordinate())
	}
}

// Unmake reverses the most recent Apply, which must have been m.
func (p *Position) Unmake(m Move) {
	n := len(p.undo.frames)
	if n == 0 {
		panic(violation("unmake %s with no applied move", m.Coordinate()))
	}
	top := p.undo.frames[n-1]
	if top.move != m {
		panic(violation("unmake %s but last applied move was %s", m.Coordinate(), top.move.Coordinate()))
	}
	p.undo.frames = p.undo.frames[:n-1]
	p.UnmakeMove(top.move, top.rec)
	if Debug {
		p.mustValidate("unmake " + m.Coordinate())
	}
}

// UndoLast reverses the most recent Apply and returns its move, or false
// when nothing has been applied.
func (p *Position) UndoLast() (Move, bool) {
	n := len(p.undo.frames)
	if n == 0 {
		return NoMove, false
	}
	m := p.undo.frames[n-1].move
	p.Unmake(m)
	return m, true
}

// Applied returns the number of moves applied and not yet unmade.
func (p *Position) Applied() int {
	return len(p.undo.frames)
}

func (p *Position) mustValidate(op string) {
	if err := p.Validate(); err != nil {
		panic(fmt.Errorf("%s: %w", op, err))
	}
}

func violation(format string, args ...interface{}) *InvariantViolation {
	return &InvariantViolation{Errors: multierror.Append(nil, fmt.Errorf(format, args...))}
}
