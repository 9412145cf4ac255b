package arm64

import (
	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/tac"
)

// Regs are the general purpose registers free for allocation,
// caller-saved first.
//
// X16 and X17 are intra-procedure-call scratch, X18 is the platform
// register, X29 is the frame pointer and X30 is the link register.
var Regs = tac.RegFile{
	"X0", "X1", "X2", "X3", "X4", "X5", "X6", "X7",
	"X8", "X9", "X10", "X11", "X12", "X13", "X14", "X15",
	"X19", "X20", "X21", "X22", "X23", "X24", "X25", "X26", "X27", "X28",
}

// FP is the frame pointer register name.
const FP tac.Reg = "X29"

// RegFile returns the first k allocatable registers.
func RegFile(k int) (tac.RegFile, error) {
	if k <= 0 || k > len(Regs) {
		return nil, errors.New("k %d out of range [1, %d]", k, len(Regs))
	}

	return append(tac.RegFile{}, Regs[:k]...), nil
}
