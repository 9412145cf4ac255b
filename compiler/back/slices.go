package back

import (
	"github.com/slowlang/regcolor/compiler/set"
	"github.com/slowlang/regcolor/compiler/tac"
)

type BitsTemp = set.Bits[tac.Temp]

func sliceSet[S ~[]E, E any, I interface{ ~int }](s S, i I, x E) S {
	var z E

	for int(i) >= len(s) {
		s = append(s, z)
	}

	s[i] = x

	return s
}

func sliceGet[S ~[]E, E any, I interface{ ~int }](s S, i I) (x E) {
	if i < 0 || int(i) >= len(s) {
		return x
	}

	return s[i]
}
