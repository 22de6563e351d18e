// Package schedule realizes a reordered block on zone-structured hardware.
// It batches two-qubit gates into interaction-zone rows and measurements
// into measurement-zone slots, transports qubits with parallelized move
// instructions, and brackets everything that may run concurrently in
// parallel sections.
package schedule

import (
	"context"
	"sort"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/microsoft/qdk-sub000/compiler/device"
	"github.com/microsoft/qdk-sub000/compiler/qir"
)

// ErrCapacity is returned when no zone row can take a batched operation
// even after a flush: the topology is too small for the program.
var ErrCapacity = errors.New("zone capacity exhausted")

type (
	// Config carries the move hardware limits. The observed hardware has
	// 4 simultaneous move channels and takes at most 36 moves per batch
	// cycle; both are tunable here.
	Config struct {
		MoveChannels int
		MoveBatchCap int
	}

	Scheduler struct {
		topo *device.Topology
		cfg  Config
	}

	batchKind int

	batch struct {
		kind batchKind

		code   []qir.Node
		qubits []qir.Qubit
		site   map[qir.Qubit]qir.Site

		results map[qir.Result]struct{}

		rowPairs map[int]int // interaction row -> used column pairs
		slots    int         // used measurement slots
	}

	blockState struct {
		s *Scheduler
		p *qir.Program
		b *qir.Block

		out []qir.Node

		pending map[qir.Qubit][]qir.Node
		cur     map[qir.Qubit]qir.Site

		batch *batch
	}
)

const (
	interaction batchKind = iota
	measurement
)

func DefaultConfig() Config {
	return Config{
		MoveChannels: 4,
		MoveBatchCap: 36,
	}
}

func New(topo *device.Topology, cfg Config) *Scheduler {
	if cfg.MoveChannels <= 0 || cfg.MoveBatchCap <= 0 {
		cfg = DefaultConfig()
	}

	return &Scheduler{topo: topo, cfg: cfg}
}

func (s *Scheduler) Apply(ctx context.Context, p *qir.Program) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "schedule", "capacity", s.topo.Capacity())
	defer tr.Finish("err", &err)

	f := p.EntryFunc()

	for i, b := range f.Blocks {
		err := s.applyBlock(ctx, p, b)
		if err != nil {
			return errors.Wrap(err, "block %d", i)
		}
	}

	return nil
}

func (s *Scheduler) applyBlock(ctx context.Context, p *qir.Program, b *qir.Block) error {
	st := &blockState{
		s:       s,
		p:       p,
		b:       b,
		pending: map[qir.Qubit][]qir.Node{},
		cur:     map[qir.Qubit]qir.Site{},
	}

	code := make([]qir.Node, len(b.Code))
	copy(code, b.Code)

	for _, n := range code {
		err := st.accumulate(n)
		if err != nil {
			return errors.Wrap(err, "node %d (%v)", n, p.At(n).Op)
		}
	}

	err := st.finishPayload()
	if err != nil {
		return err
	}

	b.Code = st.out

	return nil
}

// home returns the fixed idle site of q, which is also its current site
// between flushes.
func (st *blockState) home(q qir.Qubit) (qir.Site, error) {
	if s, ok := st.cur[q]; ok {
		return s, nil
	}

	s, err := st.s.topo.Home(q)
	if err != nil {
		return qir.Site{}, err
	}

	st.cur[q] = s

	return s, nil
}

func (st *blockState) accumulate(n qir.Node) error {
	in := st.p.At(n)

	switch {
	case in.Op.Unitary1q() || in.Op == qir.Reset:
		q := in.Qubits[0]

		if st.batch != nil && st.batch.claimed(q) {
			err := st.flush()
			if err != nil {
				return err
			}
		}

		st.pending[q] = append(st.pending[q], n)

		return nil

	case in.Op.Arity() == 2:
		return st.twoQubit(n)

	case in.Op == qir.M || in.Op == qir.MResetZ:
		return st.measure(n)

	case in.Op == qir.Read || in.Op == qir.Output:
		if st.batch != nil && st.batch.writes(in.Results) {
			err := st.flush()
			if err != nil {
				return err
			}
		}

		st.out = append(st.out, n)

		return nil

	case in.Op.Terminator():
		err := st.finishPayload()
		if err != nil {
			return err
		}

		st.out = append(st.out, n)

		return nil
	}

	return errors.New("cannot schedule op %v", in.Op)
}

func (st *blockState) twoQubit(n qir.Node) error {
	in := st.p.At(n)
	a, c := in.Qubits[0], in.Qubits[1]

	if st.batch != nil && (st.batch.kind != interaction || st.batch.claimed(a) || st.batch.claimed(c)) {
		err := st.flush()
		if err != nil {
			return err
		}
	}

	for retried := false; ; retried = true {
		if st.batch == nil {
			st.batch = newBatch(interaction)
		}

		row, pair, ok := st.interactionSlot()
		if ok {
			st.batch.rowPairs[row]++
			st.batch.claim(a, qir.Site{Row: row, Col: 2 * pair})
			st.batch.claim(c, qir.Site{Row: row, Col: 2*pair + 1})
			st.batch.code = append(st.batch.code, n)

			return nil
		}

		if retried {
			return errors.Wrap(ErrCapacity, "no interaction pair for q%d,q%d", a, c)
		}

		err := st.flush()
		if err != nil {
			return err
		}
	}
}

func (st *blockState) measure(n qir.Node) error {
	in := st.p.At(n)
	q := in.Qubits[0]

	if st.batch != nil && (st.batch.kind != measurement || st.batch.claimed(q) || st.batch.writes(in.Results)) {
		err := st.flush()
		if err != nil {
			return err
		}
	}

	rows := st.s.topo.RowsOf(device.Measurement)

	for retried := false; ; retried = true {
		if st.batch == nil {
			st.batch = newBatch(measurement)
		}

		if st.batch.slots < len(rows)*st.s.topo.Cols {
			slot := st.batch.slots
			st.batch.slots++

			site := qir.Site{Row: rows[slot/st.s.topo.Cols], Col: slot % st.s.topo.Cols}

			st.batch.claim(q, site)
			st.batch.code = append(st.batch.code, n)

			for _, r := range in.Results {
				st.batch.results[r] = struct{}{}
			}

			return nil
		}

		if retried {
			return errors.Wrap(ErrCapacity, "no measurement slot for q%d", q)
		}

		err := st.flush()
		if err != nil {
			return err
		}
	}
}

// interactionSlot finds the first interaction row with a spare column
// pair for the in-flight batch.
func (st *blockState) interactionSlot() (row, pair int, ok bool) {
	pairs := st.s.topo.Cols / 2

	for _, r := range st.s.topo.RowsOf(device.Interaction) {
		if st.batch.rowPairs[r] < pairs {
			return r, st.batch.rowPairs[r], true
		}
	}

	return 0, 0, false
}

// flush commits the in-flight batch: moves out, pending single-qubit work
// for the involved qubits, the payload section, mirrored moves back.
func (st *blockState) flush() error {
	bt := st.batch
	st.batch = nil

	if bt == nil || len(bt.qubits) == 0 {
		return nil
	}

	tlog.V("flush").Printw("flush", "kind", bt.kind, "qubits", len(bt.qubits), "payload", len(bt.code), "from", loc.Caller(1))

	moves := make([]Travel, 0, len(bt.qubits))

	for _, q := range bt.qubits {
		src, err := st.home(q)
		if err != nil {
			return err
		}

		moves = append(moves, Travel{Q: q, Src: src, Dst: bt.site[q]})
	}

	batches := Parallelize(moves, st.s.cfg.MoveBatchCap)

	st.emitMoves(batches, false)

	for _, q := range bt.qubits {
		st.cur[q] = bt.site[q]
	}

	st.emitPendingRounds(bt.qubits)

	st.section(bt.code...)

	st.emitMoves(batches, true)

	for _, q := range bt.qubits {
		home, err := st.s.topo.Home(q)
		if err != nil {
			return err
		}

		st.cur[q] = home
	}

	return nil
}

// emitMoves writes one parallel section per move-channel set. Channel
// identity is positional: the i-th move of a section runs on channel i,
// so the instruction itself carries no channel id. The back phase reuses
// the outward batches with endpoints swapped, never recomputing the
// grouping.
func (st *blockState) emitMoves(batches [][]Travel, back bool) {
	for _, bt := range batches {
		for i := 0; i < len(bt); i += st.s.cfg.MoveChannels {
			end := i + st.s.cfg.MoveChannels
			if end > len(bt) {
				end = len(bt)
			}

			var nodes []qir.Node

			for _, m := range bt[i:end] {
				src, dst := m.Src, m.Dst
				if back {
					src, dst = dst, src
				}

				nodes = append(nodes, st.p.NewNode(qir.Instr{
					Op:     qir.Move,
					Qubits: []qir.Qubit{m.Q},
					Src:    src,
					Dst:    dst,
				}))
			}

			st.section(nodes...)
		}
	}
}

// emitPendingRounds drains the pending single-qubit runs of the given
// qubits, round by round, grouping each round into same-kind concurrent
// sections.
func (st *blockState) emitPendingRounds(qs []qir.Qubit) {
	for {
		groups := map[groupKey][]qir.Node{}

		var keys []groupKey

		for _, q := range qs {
			run := st.pending[q]
			if len(run) == 0 {
				continue
			}

			n := run[0]
			st.pending[q] = run[1:]

			k := keyOf(st.p.At(n))

			if _, ok := groups[k]; !ok {
				keys = append(keys, k)
			}

			groups[k] = append(groups[k], n)
		}

		if len(keys) == 0 {
			return
		}

		sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

		for _, k := range keys {
			st.section(groups[k]...)
		}
	}
}

type groupKey struct {
	op    qir.Op
	theta float64
	sym   bool
}

func keyOf(in *qir.Instr) groupKey {
	return groupKey{op: in.Op, theta: in.Theta, sym: in.Sym}
}

func (a groupKey) less(b groupKey) bool {
	if a.op != b.op {
		return a.op < b.op
	}

	if a.theta != b.theta {
		return a.theta < b.theta
	}

	return !a.sym && b.sym
}

// finishPayload flushes the in-flight batch and the remaining
// single-qubit-only work.
func (st *blockState) finishPayload() error {
	err := st.flush()
	if err != nil {
		return err
	}

	return st.flushSingles()
}

// flushSingles moves qubits with leftover single-qubit work into the
// interaction zone row by row and emits their runs in grouped parallel
// batches.
func (st *blockState) flushSingles() error {
	var qs []qir.Qubit

	for q, run := range st.pending {
		if len(run) != 0 {
			qs = append(qs, q)
		}
	}

	if len(qs) == 0 {
		return nil
	}

	sort.Slice(qs, func(i, j int) bool { return qs[i] < qs[j] })

	rows := st.s.topo.RowsOf(device.Interaction)
	if len(rows) == 0 {
		return errors.Wrap(ErrCapacity, "no interaction zone for %d single-qubit runs", len(qs))
	}

	wave := len(rows) * st.s.topo.Cols

	for i := 0; i < len(qs); i += wave {
		end := i + wave
		if end > len(qs) {
			end = len(qs)
		}

		err := st.singleWave(qs[i:end], rows)
		if err != nil {
			return err
		}
	}

	return nil
}

func (st *blockState) singleWave(qs []qir.Qubit, rows []int) error {
	site := map[qir.Qubit]qir.Site{}
	moves := make([]Travel, 0, len(qs))

	for i, q := range qs {
		dst := qir.Site{Row: rows[i/st.s.topo.Cols], Col: i % st.s.topo.Cols}
		site[q] = dst

		src, err := st.home(q)
		if err != nil {
			return err
		}

		moves = append(moves, Travel{Q: q, Src: src, Dst: dst})
	}

	batches := Parallelize(moves, st.s.cfg.MoveBatchCap)

	st.emitMoves(batches, false)

	for _, q := range qs {
		st.cur[q] = site[q]
	}

	st.emitPendingRounds(qs)

	st.emitMoves(batches, true)

	for _, q := range qs {
		home, err := st.s.topo.Home(q)
		if err != nil {
			return err
		}

		st.cur[q] = home
	}

	return nil
}

// section wraps the nodes in one parallel section and appends them to the
// output order.
func (st *blockState) section(nodes ...qir.Node) {
	if len(nodes) == 0 {
		return
	}

	st.out = append(st.out, st.p.NewNode(qir.Instr{Op: qir.SectionBegin}))
	st.out = append(st.out, nodes...)
	st.out = append(st.out, st.p.NewNode(qir.Instr{Op: qir.SectionEnd}))
}

func newBatch(kind batchKind) *batch {
	return &batch{
		kind:     kind,
		site:     map[qir.Qubit]qir.Site{},
		results:  map[qir.Result]struct{}{},
		rowPairs: map[int]int{},
	}
}

func (bt *batch) claim(q qir.Qubit, s qir.Site) {
	bt.qubits = append(bt.qubits, q)
	bt.site[q] = s
}

func (bt *batch) claimed(q qir.Qubit) bool {
	_, ok := bt.site[q]
	return ok
}

func (bt *batch) writes(rs []qir.Result) bool {
	for _, r := range rs {
		if _, ok := bt.results[r]; ok {
			return true
		}
	}

	return false
}
