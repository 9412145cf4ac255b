package back

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"

	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	// UsageError is returned for blocks the allocator is not defined on:
	// ones containing control flow.
	UsageError struct {
		Block string
		Index int
		Op    tac.Op
	}

	// SpillRequired means no node of degree < K is left.
	// The block can be allocated only after some temps are spilled.
	SpillRequired struct {
		Block string
		K     int

		Stuck     []tac.Temp
		Candidate tac.Temp
		Pressure  int
	}

	// InternalError is a broken graph or coloring invariant.
	InternalError struct {
		Temp   tac.Temp
		Reason string
		PC     loc.PC
	}
)

var (
	ErrUsage         = errors.New("usage error")
	ErrSpillRequired = errors.New("spill required")
	ErrInternal      = errors.New("internal inconsistency")
)

func newInternal(t tac.Temp, f string, args ...any) *InternalError {
	return &InternalError{
		Temp:   t,
		Reason: fmt.Sprintf(f, args...),
		PC:     loc.Caller(1),
	}
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("block %v: instr %d: %v: control flow is not allowed in a basic block", e.Block, e.Index, e.Op)
}

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

func (e *SpillRequired) Error() string {
	return fmt.Sprintf("block %v: spill required: %d nodes left with degree >= %d (pressure %d, candidate t%d)",
		e.Block, len(e.Stuck), e.K, e.Pressure, int(e.Candidate))
}

func (e *SpillRequired) Is(target error) bool { return target == ErrSpillRequired }

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal inconsistency: temp %d: %s (at %v)", int(e.Temp), e.Reason, e.PC)
}

func (e *InternalError) Is(target error) bool { return target == ErrInternal }
