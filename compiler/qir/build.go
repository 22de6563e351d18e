package qir

// Emit helpers build instructions in program order, the way a front end
// emits calls while walking its input.

func (p *Program) Gate(b *Block, op Op, qs ...Qubit) Node {
	return p.Append(b, Instr{Op: op, Qubits: qs})
}

func (p *Program) Rotation(b *Block, op Op, theta float64, qs ...Qubit) Node {
	return p.Append(b, Instr{Op: op, Qubits: qs, Theta: theta})
}

// Measure emits op (M or MResetZ) storing into result r.
func (p *Program) Measure(b *Block, op Op, q Qubit, r Result) Node {
	return p.Append(b, Instr{Op: op, Qubits: []Qubit{q}, Results: []Result{r}})
}

func (p *Program) ReadResult(b *Block, r Result) Node {
	return p.Append(b, Instr{Op: Read, Results: []Result{r}})
}

// OutputRecord emits the output-recording marker for result r.
func (p *Program) OutputRecord(b *Block, r Result) Node {
	return p.Append(b, Instr{Op: Output, Results: []Result{r}})
}

func (p *Program) Return(b *Block) Node {
	return p.Append(b, Instr{Op: Ret})
}

// GateBefore and RotationBefore are the insert-before forms the rewriting
// passes use while replacing an instruction in place.

func (p *Program) GateBefore(b *Block, at Node, op Op, qs ...Qubit) Node {
	n, err := p.InsertBefore(b, at, Instr{Op: op, Qubits: qs})
	if err != nil {
		panic(err)
	}

	return n
}

func (p *Program) RotationBefore(b *Block, at Node, op Op, theta float64, qs ...Qubit) Node {
	n, err := p.InsertBefore(b, at, Instr{Op: op, Qubits: qs, Theta: theta})
	if err != nil {
		panic(err)
	}

	return n
}
