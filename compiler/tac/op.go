package tac

import "fmt"

type (
	Op int

	// Role is what an instruction does with one operand slot.
	Role uint8

	// Extra is the kind of non-temp operand an op carries.
	Extra uint8

	OpInfo struct {
		Name  string
		Roles [3]Role
		Extra Extra

		// Control ops end a block. The allocator refuses them.
		Control bool
	}
)

const (
	ADD Op = iota
	SUB
	MUL
	DIV
	MOD
	LAND
	LOR
	GTR
	GEQ
	EQU
	NEQ
	LEQ
	LES

	NEG
	LNOT
	ASSIGN

	LOAD_VTBL
	LOAD_IMM4
	LOAD_STR_CONST

	DIRECT_CALL
	INDIRECT_CALL
	PARM

	LOAD
	STORE

	BRANCH
	BEQZ
	BNEZ
	RETURN

	numOps
)

const (
	RoleNone Role = iota
	RoleDef
	RoleOptDef // defined if present: call result of a non-void call
	RoleUse
	RoleOptUse // used if present: return value
	RoleAddr
)

const (
	ExtraNone Extra = iota
	ExtraImm
	ExtraLabel
	ExtraString
)

var (
	binary = [3]Role{RoleDef, RoleUse, RoleUse}
	unary  = [3]Role{RoleDef, RoleUse}
	def    = [3]Role{RoleDef}
)

// Ops is the one operand-role table. Node and edge construction,
// liveness and formatting all read it.
//
// STORE defines nothing, so it never adds interference edges,
// same as PARM. LOAD defines its destination.
var Ops = [numOps]OpInfo{
	ADD:  {Name: "add", Roles: binary},
	SUB:  {Name: "sub", Roles: binary},
	MUL:  {Name: "mul", Roles: binary},
	DIV:  {Name: "div", Roles: binary},
	MOD:  {Name: "mod", Roles: binary},
	LAND: {Name: "land", Roles: binary},
	LOR:  {Name: "lor", Roles: binary},
	GTR:  {Name: "gtr", Roles: binary},
	GEQ:  {Name: "geq", Roles: binary},
	EQU:  {Name: "equ", Roles: binary},
	NEQ:  {Name: "neq", Roles: binary},
	LEQ:  {Name: "leq", Roles: binary},
	LES:  {Name: "les", Roles: binary},

	NEG:    {Name: "neg", Roles: unary},
	LNOT:   {Name: "lnot", Roles: unary},
	ASSIGN: {Name: "assign", Roles: unary},

	LOAD_VTBL:      {Name: "vtbl", Roles: def, Extra: ExtraLabel},
	LOAD_IMM4:      {Name: "imm4", Roles: def, Extra: ExtraImm},
	LOAD_STR_CONST: {Name: "strconst", Roles: def, Extra: ExtraString},

	DIRECT_CALL:   {Name: "call", Roles: [3]Role{RoleOptDef}, Extra: ExtraLabel},
	INDIRECT_CALL: {Name: "icall", Roles: [3]Role{RoleOptDef, RoleAddr}},
	PARM:          {Name: "parm", Roles: [3]Role{RoleUse}},

	LOAD:  {Name: "load", Roles: [3]Role{RoleDef, RoleAddr}, Extra: ExtraImm},
	STORE: {Name: "store", Roles: [3]Role{RoleUse, RoleAddr}, Extra: ExtraImm},

	BRANCH: {Name: "branch", Control: true, Extra: ExtraLabel},
	BEQZ:   {Name: "beqz", Roles: [3]Role{RoleUse}, Control: true, Extra: ExtraLabel},
	BNEZ:   {Name: "bnez", Roles: [3]Role{RoleUse}, Control: true, Extra: ExtraLabel},
	RETURN: {Name: "ret", Roles: [3]Role{RoleOptUse}, Control: true},
}

var byName = func() map[string]Op {
	m := make(map[string]Op, numOps)

	for op, inf := range Ops {
		m[inf.Name] = Op(op)
	}

	return m
}()

func LookupOp(name string) (Op, bool) {
	op, ok := byName[name]
	return op, ok
}

func (op Op) Valid() bool { return op >= 0 && op < numOps }

func (op Op) Info() OpInfo {
	if !op.Valid() {
		panic(op)
	}

	return Ops[op]
}

func (op Op) Control() bool { return op.Valid() && Ops[op].Control }

func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Op(%d)", int(op))
	}

	return Ops[op].Name
}

// Defines reports whether the role makes the slot a defined value.
func (r Role) Defines() bool { return r == RoleDef || r == RoleOptDef }

// Reads reports whether the role makes the slot a read value.
func (r Role) Reads() bool { return r == RoleUse || r == RoleOptUse || r == RoleAddr }

// Optional reports whether the slot may hold NoTemp.
func (r Role) Optional() bool { return r == RoleOptDef || r == RoleOptUse }

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleDef:
		return "def"
	case RoleOptDef:
		return "optdef"
	case RoleUse:
		return "use"
	case RoleOptUse:
		return "optuse"
	case RoleAddr:
		return "addr"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}
