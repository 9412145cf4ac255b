package arm64

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/regcolor/compiler/tac"
)

func TestRegFile(t *testing.T) {
	rf, err := RegFile(3)
	require.NoError(t, err)
	assert.Equal(t, tac.RegFile{"X0", "X1", "X2"}, rf)

	rf, err = RegFile(len(Regs))
	require.NoError(t, err)
	assert.Equal(t, Regs, rf)

	for _, r := range Regs {
		assert.NotEqual(t, FP, r)
		assert.NotContains(t, []tac.Reg{"X16", "X17", "X18", "X30"}, r)
	}

	rf, err = RegFile(2)
	require.NoError(t, err)

	rf[0] = "zz"
	assert.Equal(t, tac.Reg("X0"), Regs[0])
}

func TestRegFileOutOfRange(t *testing.T) {
	for _, k := range []int{0, -1, 27, 100} {
		rf, err := RegFile(k)
		assert.Error(t, err, "k %d", k)
		assert.Nil(t, rf, "k %d", k)
	}
}
