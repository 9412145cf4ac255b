package live

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/regcolor/compiler/tac"
)

func names(b *tac.Block, i int) (r []string) {
	b.Code[i].LiveOut.Range(func(t tac.Temp) bool {
		r = append(r, b.TempName(t))
		return true
	})

	return r
}

func TestBackward(t *testing.T) {
	ctx := context.Background()

	b := tac.NewBlock("main")
	b.Append(tac.LOAD_IMM4, "a")
	b.Append(tac.LOAD_IMM4, "b")
	b.Append(tac.ADD, "c", "a", "b")
	b.Append(tac.STORE, "c", "fp")

	err := Backward{}.LiveOut(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "fp"}, names(b, 0))
	assert.Equal(t, []string{"a", "b", "fp"}, names(b, 1))
	assert.Equal(t, []string{"c", "fp"}, names(b, 2))
	assert.Empty(t, names(b, 3))
}

func TestBackwardExit(t *testing.T) {
	ctx := context.Background()

	b := tac.NewBlock("main")
	b.Append(tac.LOAD_IMM4, "x")
	b.Append(tac.ASSIGN, "y", "x")
	b.Append(tac.PARM, "y")
	b.Append(tac.DIRECT_CALL, "r")

	x := b.Temp("x")

	err := Backward{Exit: []tac.Temp{b.Temp("r"), x}}.LiveOut(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, names(b, 0))
	assert.Equal(t, []string{"x", "y"}, names(b, 1))
	assert.Equal(t, []string{"x"}, names(b, 2))
	assert.Equal(t, []string{"x", "r"}, names(b, 3))
}

func TestBackwardBadExit(t *testing.T) {
	b := tac.NewBlock("main")
	b.Append(tac.LOAD_IMM4, "x")

	for _, exit := range []tac.Temp{tac.NoTemp, 5} {
		err := Backward{Exit: []tac.Temp{exit}}.LiveOut(context.Background(), b)
		assert.Error(t, err, "%v", exit)
	}

	assert.True(t, b.Code[0].LiveOut.Empty())
}

func TestBackwardRedefinition(t *testing.T) {
	ctx := context.Background()

	b := tac.NewBlock("main")
	b.Append(tac.LOAD_IMM4, "x")
	b.Append(tac.ADD, "x", "x", "x")
	b.Append(tac.PARM, "x")

	err := Backward{}.LiveOut(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, names(b, 0))
	assert.Equal(t, []string{"x"}, names(b, 1))
	assert.Empty(t, names(b, 2))
}

func TestBackwardRejectsControl(t *testing.T) {
	b := tac.NewBlock("main")
	b.Append(tac.LOAD_IMM4, "x")
	b.Append(tac.RETURN, "x")

	err := Backward{}.LiveOut(context.Background(), b)
	require.Error(t, err)
}

func TestGivenKeepsSets(t *testing.T) {
	b := tac.NewBlock("main")
	i := b.Append(tac.LOAD_IMM4, "x")
	b.SetLive(i, "x", "y")

	err := Given{}.LiveOut(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, names(b, 0))
}
