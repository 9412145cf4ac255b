package tac

import (
	"fmt"
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/set"
)

type (
	// Temp is a virtual register, an index into Block.Names.
	Temp int

	Instr struct {
		Op    Op
		Args  [3]Temp
		Imm   int64
		Label string

		// LiveOut is the set of temps live right after the instruction.
		LiveOut set.Bits[Temp]
	}

	// Block is a branch-free instruction sequence.
	Block struct {
		Name  string
		Names []string
		Code  []Instr

		temps map[string]Temp
	}

	// Reg is a physical register.
	Reg string

	// RegFile is the ordered set of registers available for coloring.
	RegFile []Reg
)

const NoTemp Temp = -1

func NewBlock(name string) *Block {
	return &Block{Name: name}
}

// Temp returns the temp with the given name creating it if needed.
func (b *Block) Temp(name string) Temp {
	if t, ok := b.temps[name]; ok {
		return t
	}

	if b.temps == nil {
		b.temps = make(map[string]Temp, len(b.Names)+1)

		for i, n := range b.Names {
			b.temps[n] = Temp(i)
		}

		if t, ok := b.temps[name]; ok {
			return t
		}
	}

	t := Temp(len(b.Names))
	b.Names = append(b.Names, name)
	b.temps[name] = t

	return t
}

func (b *Block) Lookup(name string) (Temp, bool) {
	for i, n := range b.Names {
		if n == name {
			return Temp(i), true
		}
	}

	return NoTemp, false
}

func (b *Block) NumTemps() int { return len(b.Names) }

func (b *Block) TempName(t Temp) string {
	switch {
	case t == NoTemp:
		return "_"
	case t < 0 || int(t) >= len(b.Names):
		return fmt.Sprintf("t%d", int(t))
	default:
		return b.Names[t]
	}
}

// Append adds an instruction on named temps and returns its index.
// Empty name means no operand.
func (b *Block) Append(op Op, args ...string) int {
	if len(args) > 3 {
		panic(args)
	}

	in := Instr{Op: op, Args: [3]Temp{NoTemp, NoTemp, NoTemp}}

	for i, a := range args {
		if a == "" {
			continue
		}

		in.Args[i] = b.Temp(a)
	}

	b.Code = append(b.Code, in)

	return len(b.Code) - 1
}

// SetLive sets the live-out set of the i-th instruction.
func (b *Block) SetLive(i int, names ...string) {
	var s set.Bits[Temp]

	for _, n := range names {
		s.Set(b.Temp(n))
	}

	b.Code[i].LiveOut = s
}

func (b *Block) Clone() *Block {
	c := &Block{
		Name:  b.Name,
		Names: append([]string{}, b.Names...),
		Code:  make([]Instr, len(b.Code)),
	}

	for i, in := range b.Code {
		in.LiveOut = in.LiveOut.Copy()
		c.Code[i] = in
	}

	return c
}

// Check validates operand slots against the op table.
func (b *Block) Check() error {
	for i, in := range b.Code {
		if !in.Op.Valid() {
			return errors.New("instr %d: bad op %d", i, int(in.Op))
		}

		inf := Ops[in.Op]

		for s, r := range inf.Roles {
			t := in.Args[s]

			switch {
			case r == RoleNone && t != NoTemp:
				return errors.New("instr %d: %v: unexpected operand %d", i, in.Op, s)
			case r != RoleNone && !r.Optional() && t == NoTemp:
				return errors.New("instr %d: %v: operand %d missing", i, in.Op, s)
			case t < NoTemp || int(t) >= len(b.Names):
				return errors.New("instr %d: %v: operand %d: bad temp %d", i, in.Op, s, int(t))
			}
		}
	}

	return nil
}

// Def returns the temp the instruction defines or NoTemp.
func (in *Instr) Def() Temp {
	for s, r := range Ops[in.Op].Roles {
		if r.Defines() && in.Args[s] != NoTemp {
			return in.Args[s]
		}
	}

	return NoTemp
}

// Operands calls f for every present operand with its role.
func (in *Instr) Operands(f func(slot int, r Role, t Temp)) {
	for s, r := range Ops[in.Op].Roles {
		if r == RoleNone || in.Args[s] == NoTemp {
			continue
		}

		f(s, r, in.Args[s])
	}
}

func NewRegFile(prefix string, k int) RegFile {
	rf := make(RegFile, k)

	for i := range rf {
		rf[i] = Reg(fmt.Sprintf("%s%d", prefix, i))
	}

	return rf
}

// ParseRegFile parses comma separated register names.
func ParseRegFile(s string) (RegFile, error) {
	var rf RegFile

	for _, n := range strings.Split(s, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		if rf.Index(Reg(n)) >= 0 {
			return nil, errors.New("duplicate register %q", n)
		}

		rf = append(rf, Reg(n))
	}

	if len(rf) == 0 {
		return nil, errors.New("empty register file")
	}

	return rf, nil
}

func (rf RegFile) K() int { return len(rf) }

func (rf RegFile) Index(r Reg) int {
	for i, x := range rf {
		if x == r {
			return i
		}
	}

	return -1
}
