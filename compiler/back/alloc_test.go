package back

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/live"
	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	// forgetSpiller drops the candidate from every live-out set
	// as if it was kept in memory between its uses.
	forgetSpiller struct {
		calls int
	}

	stubbornSpiller struct {
		calls int
	}

	failingSpiller struct{}
)

func (s *forgetSpiller) Spill(ctx context.Context, b *tac.Block, sr *SpillRequired) (*tac.Block, error) {
	s.calls++

	nb := b.Clone()

	for i := range nb.Code {
		nb.Code[i].LiveOut.Clear(sr.Candidate)
	}

	return nb, nil
}

func (s *stubbornSpiller) Spill(ctx context.Context, b *tac.Block, sr *SpillRequired) (*tac.Block, error) {
	s.calls++

	return b, nil
}

func (failingSpiller) Spill(ctx context.Context, b *tac.Block, sr *SpillRequired) (*tac.Block, error) {
	return nil, errors.New("no stack slots")
}

// scenarioB keeps x, y and z live across the same point.
func scenarioB(t testing.TB) *tac.Block {
	b := tac.NewBlock("scenario_b")
	b.Append(tac.LOAD_IMM4, "x")
	b.Append(tac.LOAD_IMM4, "y")
	b.Append(tac.LOAD_IMM4, "z")
	b.Append(tac.PARM, "x")
	b.Append(tac.PARM, "y")
	b.Append(tac.PARM, "z")

	err := live.Backward{}.LiveOut(context.Background(), b)
	require.NoError(t, err)

	return b
}

func TestAllocateScenarioA(t *testing.T) {
	b := scenarioA()
	regs := tac.RegFile{"R0", "R1"}

	asg, err := Allocate(context.Background(), b, regs, b.Temp("fp"))
	require.NoError(t, err)

	a, bb, c := b.Temp("a"), b.Temp("b"), b.Temp("c")

	require.Len(t, asg, 3)
	assert.NotEqual(t, asg[a], asg[bb])
	assert.Contains(t, regs, asg[c])

	assert.Equal(t, Assignment{a: "R1", bb: "R0", c: "R0"}, asg)
}

func TestAllocateScenarioB(t *testing.T) {
	b := scenarioB(t)

	asg, err := Allocate(context.Background(), b, tac.RegFile{"R0", "R1"}, tac.NoTemp)
	require.Error(t, err)
	assert.Nil(t, asg)
	assert.True(t, errors.Is(err, ErrSpillRequired))
	assert.False(t, errors.Is(err, ErrInternal))

	var sr *SpillRequired
	require.True(t, errors.As(err, &sr))

	assert.Equal(t, "scenario_b", sr.Block)
	assert.Equal(t, 2, sr.K)
	assert.Equal(t, 3, sr.Pressure)
	assert.Len(t, sr.Stuck, 3)
	assert.Equal(t, b.Temp("x"), sr.Candidate)

	asg, err = Allocate(context.Background(), b, tac.RegFile{"R0", "R1", "R2"}, tac.NoTemp)
	require.NoError(t, err)
	assert.Len(t, asg, 3)
}

func TestAllocatorSpillerRetries(t *testing.T) {
	b := scenarioB(t)
	sp := &forgetSpiller{}

	a := Allocator{Regs: tac.RegFile{"R0", "R1"}, FP: tac.NoTemp, Spiller: sp}

	res, err := a.Allocate(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, 1, sp.calls)
	assert.Equal(t, 2, res.Rounds)
	assert.NotSame(t, b, res.Block)
	assert.Len(t, res.Assignment, 3)

	// input is left untouched
	assert.True(t, b.Code[2].LiveOut.IsSet(b.Temp("x")))
	assert.False(t, res.Block.Code[2].LiveOut.IsSet(b.Temp("x")))
}

func TestAllocatorBoundedRounds(t *testing.T) {
	b := scenarioB(t)
	sp := &stubbornSpiller{}

	a := Allocator{Regs: tac.RegFile{"R0", "R1"}, FP: tac.NoTemp, Spiller: sp, MaxRounds: 3}

	_, err := a.Allocate(context.Background(), b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSpillRequired))
	assert.Equal(t, 2, sp.calls)

	sp.calls = 0
	a.MaxRounds = 0

	_, err = a.Allocate(context.Background(), b)
	assert.True(t, errors.Is(err, ErrSpillRequired))
	assert.Equal(t, DefaultMaxRounds-1, sp.calls)
}

func TestAllocatorSpillerError(t *testing.T) {
	a := Allocator{Regs: tac.RegFile{"R0", "R1"}, FP: tac.NoTemp, Spiller: failingSpiller{}}

	_, err := a.Allocate(context.Background(), scenarioB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stack slots")
	assert.False(t, errors.Is(err, ErrSpillRequired))
}

func TestAllocateNoSpillerFailsFast(t *testing.T) {
	a := Allocator{Regs: tac.RegFile{"R0"}, FP: tac.NoTemp, MaxRounds: 100}

	_, err := a.Allocate(context.Background(), scenarioB(t))
	assert.True(t, errors.Is(err, ErrSpillRequired))
}

func TestAllocateEmpty(t *testing.T) {
	asg, err := Allocate(context.Background(), tac.NewBlock("empty"), tac.RegFile{"R0"}, tac.NoTemp)
	require.NoError(t, err)
	assert.Empty(t, asg)

	_, err = Allocate(context.Background(), tac.NewBlock("empty"), nil, tac.NoTemp)
	assert.Error(t, err)
}

func TestAllocateDoesNotMutateBlock(t *testing.T) {
	b := scenarioA()
	c := b.Clone()

	_, err := Allocate(context.Background(), b, tac.RegFile{"R0", "R1"}, b.Temp("fp"))
	require.NoError(t, err)

	assert.Equal(t, c.Names, b.Names)
	require.Len(t, b.Code, len(c.Code))

	for i := range b.Code {
		assert.Equal(t, c.Code[i].Op, b.Code[i].Op)
		assert.Equal(t, c.Code[i].Args, b.Code[i].Args)
		assert.True(t, c.Code[i].LiveOut.Equal(b.Code[i].LiveOut))
	}
}

func TestAllocatorConcurrent(t *testing.T) {
	ctx := context.Background()

	blocks := make([]*tac.Block, 16)
	fps := make([]tac.Temp, len(blocks))

	for i := range blocks {
		blocks[i] = randomBlock(int64(100+i), 30, 6)
		fps[i] = blocks[i].Temp("fp")
	}

	a := &Allocator{Regs: tac.NewRegFile("r", 4)}

	type result struct {
		asg Assignment
		err error
	}

	exp := make([]result, len(blocks))
	for i, b := range blocks {
		a := *a
		a.FP = fps[i]

		res, err := a.Allocate(ctx, b)
		if err == nil {
			exp[i].asg = res.Assignment
		}

		exp[i].err = err
	}

	got := make([]result, len(blocks))

	var wg sync.WaitGroup

	for i, b := range blocks {
		i, b := i, b

		wg.Add(1)

		go func() {
			defer wg.Done()

			a := *a
			a.FP = fps[i]

			res, err := a.Allocate(ctx, b)
			if err == nil {
				got[i].asg = res.Assignment
			}

			got[i].err = err
		}()
	}

	wg.Wait()

	for i := range blocks {
		assert.Equal(t, exp[i].asg, got[i].asg, "block %d", i)
		assert.Equal(t, exp[i].err == nil, got[i].err == nil, "block %d", i)
	}
}
