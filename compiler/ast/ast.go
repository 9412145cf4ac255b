package ast

type (
	Node interface {
	}

	// Base is a byte range in the parse state text.
	Base struct {
		Pos int
		End int
	}

	File struct {
		Base `tlog:",embed"`

		Blocks []Block
	}

	Block struct {
		Base `tlog:",embed"`

		Name  Ident
		Stmts []Node
	}

	// Instr is a `[dst =] op arg*` line.
	Instr struct {
		Base `tlog:",embed"`

		Dst  *Ident
		Op   Ident
		Args []Node
	}

	// Live sets the live-out set of the preceding instruction.
	Live struct {
		Base `tlog:",embed"`

		Temps []Ident
	}

	// Out lists temps live at block exit.
	Out struct {
		Base `tlog:",embed"`

		Temps []Ident
	}

	Ident struct {
		Base `tlog:",embed"`
	}

	Int struct {
		Base `tlog:",embed"`
	}

	String struct {
		Base `tlog:",embed"`
	}
)

func (b Base) Start() int { return b.Pos }
