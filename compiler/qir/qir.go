package qir

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Node is the stable identity of an instruction in the Program arena.
	// It stays valid while the instruction is detached from a Block and
	// becomes invalid only on Erase.
	Node int

	Qubit  int
	Result int

	Op int

	// Site is a physical location on the device: a global row over the
	// shared column count.
	Site struct {
		Row, Col int
	}

	Instr struct {
		Op Op

		Qubits  []Qubit
		Results []Result

		// Theta is the rotation angle for parametrized ops.
		// Sym marks an angle not known at compile time.
		Theta float64
		Sym   bool

		// Move operands.
		Src, Dst Site
	}

	Func struct {
		Name string

		// Required counts carried by the entry point.
		Qubits  int
		Results int

		Blocks []*Block
	}

	Block struct {
		Code []Node
	}

	Program struct {
		Name string

		Funcs []*Func
		Entry int

		Nodes []Instr

		decls map[Op]struct{}
		dead  []bool
	}
)

const (
	Nop Op = iota

	// Abstract vocabulary.
	X
	Y
	Z
	H
	S
	Sadj
	T
	Tadj
	Rx
	Ry
	Rz
	Rxx
	Ryy
	Rzz
	CX
	CY
	CZ
	CCX
	Swap
	M
	Reset

	// Native additions.
	SX
	MResetZ

	// Scheduling and runtime.
	Move
	SectionBegin
	SectionEnd

	// Classical.
	Read
	Output

	// Terminators.
	Ret
	Br

	opsCount
)

const NoNode Node = -1

var opNames = [...]string{
	Nop: "nop",

	X:    "x",
	Y:    "y",
	Z:    "z",
	H:    "h",
	S:    "s",
	Sadj: "s_adj",
	T:    "t",
	Tadj: "t_adj",
	Rx:   "rx",
	Ry:   "ry",
	Rz:   "rz",
	Rxx:  "rxx",
	Ryy:  "ryy",
	Rzz:  "rzz",
	CX:   "cx",
	CY:   "cy",
	CZ:   "cz",
	CCX:  "ccx",
	Swap: "swap",
	M:    "m",

	Reset:   "reset",
	SX:      "sx",
	MResetZ: "mresetz",

	Move:         "move",
	SectionBegin: "section_begin",
	SectionEnd:   "section_end",

	Read:   "read_result",
	Output: "output",

	Ret: "ret",
	Br:  "br",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "op?"
	}

	return opNames[op]
}

// OpByName resolves a gate-kind name as it appears in listings.
func OpByName(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return Op(op), true
		}
	}

	return Nop, false
}

// Arity is the number of qubit operands the op takes.
func (op Op) Arity() int {
	switch op {
	case Rxx, Ryy, Rzz, CX, CY, CZ, Swap:
		return 2
	case CCX:
		return 3
	case Read, Output, Ret, Br, SectionBegin, SectionEnd, Nop:
		return 0
	default:
		return 1
	}
}

// HasAngle reports whether the op carries a rotation angle operand.
func (op Op) HasAngle() bool {
	switch op {
	case Rx, Ry, Rz, Rxx, Ryy, Rzz:
		return true
	}

	return false
}

// Unitary1q reports whether the op is a single-qubit unitary gate.
func (op Op) Unitary1q() bool {
	switch op {
	case X, Y, Z, H, S, Sadj, T, Tadj, Rx, Ry, Rz, SX:
		return true
	}

	return false
}

// Symmetric reports whether swapping the op's qubit operands leaves its
// action unchanged.
func (op Op) Symmetric() bool {
	switch op {
	case Rxx, Ryy, Rzz, CZ, Swap:
		return true
	}

	return false
}

// Terminator reports whether the op ends a block.
func (op Op) Terminator() bool {
	return op == Ret || op == Br
}

func New(name string) *Program {
	return &Program{
		Name:  name,
		decls: map[Op]struct{}{},
	}
}

// NewFunc adds a function and returns it with one empty block.
func (p *Program) NewFunc(name string, qubits, results int) *Func {
	f := &Func{
		Name:    name,
		Qubits:  qubits,
		Results: results,
		Blocks:  []*Block{{}},
	}

	p.Funcs = append(p.Funcs, f)

	return f
}

func (p *Program) EntryFunc() *Func {
	return p.Funcs[p.Entry]
}

func (p *Program) At(n Node) *Instr {
	return &p.Nodes[n]
}

// Alive reports whether the node has not been erased.
func (p *Program) Alive(n Node) bool {
	return n >= 0 && int(n) < len(p.Nodes) && !p.dead[n]
}

func (p *Program) alloc(in Instr) Node {
	p.Nodes = append(p.Nodes, in)
	p.dead = append(p.dead, false)

	p.Declare(in.Op)

	return Node(len(p.Nodes) - 1)
}

// NewNode allocates an instruction without attaching it to a block.
func (p *Program) NewNode(in Instr) Node {
	return p.alloc(in)
}

// Append allocates the instruction and places it at the end of the block.
func (p *Program) Append(b *Block, in Instr) Node {
	n := p.alloc(in)
	b.Code = append(b.Code, n)

	return n
}

// InsertBefore allocates the instruction and places it before node at.
func (p *Program) InsertBefore(b *Block, at Node, in Instr) (Node, error) {
	i := b.index(at)
	if i < 0 {
		return NoNode, errors.New("insert point not in block: node %d", at)
	}

	n := p.alloc(in)

	b.Code = append(b.Code, NoNode)
	copy(b.Code[i+1:], b.Code[i:])
	b.Code[i] = n

	return n, nil
}

// Reinsert places an already allocated, detached node before at.
func (p *Program) Reinsert(b *Block, at, n Node) error {
	i := b.index(at)
	if i < 0 {
		return errors.New("insert point not in block: node %d", at)
	}

	b.Code = append(b.Code, NoNode)
	copy(b.Code[i+1:], b.Code[i:])
	b.Code[i] = n

	return nil
}

// Remove detaches the node from the block. The instruction stays
// referenceable through its Node id.
func (p *Program) Remove(b *Block, n Node) {
	i := b.index(n)
	if i < 0 {
		return
	}

	b.Code = append(b.Code[:i], b.Code[i+1:]...)
}

// Erase detaches the node and destroys the instruction.
func (p *Program) Erase(b *Block, n Node) {
	p.Remove(b, n)

	p.Nodes[n] = Instr{Op: Nop}
	p.dead[n] = true
}

func (b *Block) index(n Node) int {
	for i, x := range b.Code {
		if x == n {
			return i
		}
	}

	return -1
}

// Terminator returns the block terminator node, or NoNode if the block is
// not yet terminated.
func (p *Program) Terminator(b *Block) Node {
	if len(b.Code) == 0 {
		return NoNode
	}

	n := b.Code[len(b.Code)-1]
	if !p.Nodes[n].Op.Terminator() {
		return NoNode
	}

	return n
}

// Declare records the gate kind in the declaration table. It is called on
// demand for every allocated instruction.
func (p *Program) Declare(op Op) {
	if p.decls == nil {
		p.decls = map[Op]struct{}{}
	}

	p.decls[op] = struct{}{}
}

func (p *Program) Declared(op Op) bool {
	_, ok := p.decls[op]
	return ok
}

// PruneDecls drops declarations of ops no instruction uses anymore.
func (p *Program) PruneDecls() {
	used := map[Op]struct{}{}

	for n, in := range p.Nodes {
		if p.dead[n] {
			continue
		}

		used[in.Op] = struct{}{}
	}

	for op := range p.decls {
		if _, ok := used[op]; !ok {
			delete(p.decls, op)
		}
	}
}

func (s Site) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyInt64(b, "row", int64(s.Row))
	b = e.AppendKeyInt64(b, "col", int64(s.Col))

	return b
}
