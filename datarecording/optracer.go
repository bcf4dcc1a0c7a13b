package datarecording

import (
	"github.com/vmslab/mmusim/sim"
	"github.com/vmslab/mmusim/vm"
)

// opEntry is one recorded operation row.
type opEntry struct {
	Instr  uint64
	Kind   string
	Opcode string
	Target int
	PID    int
	VPage  int
	Frame  int
}

// procStatsEntry is one per-process statistics row.
type procStatsEntry struct {
	PID     int
	Unmaps  uint64
	Maps    uint64
	Ins     uint64
	Outs    uint64
	Fins    uint64
	Fouts   uint64
	Zeros   uint64
	Segv    uint64
	Segprot uint64
}

// An OpRecorder is a tracer that writes every simulated operation into
// the mmu_ops table of a DataRecorder.
type OpRecorder struct {
	recorder DataRecorder
}

// NewOpRecorder creates an OpRecorder and its backing table.
func NewOpRecorder(recorder DataRecorder) *OpRecorder {
	recorder.CreateTable("mmu_ops", opEntry{})

	return &OpRecorder{recorder: recorder}
}

// TraceOp implements sim.Tracer.
func (r *OpRecorder) TraceOp(op sim.Op) {
	opcode := ""
	if op.Kind == sim.OpInstr {
		opcode = string(op.Opcode)
	}

	r.recorder.InsertData("mmu_ops", opEntry{
		Instr:  op.Instr,
		Kind:   op.Kind.String(),
		Opcode: opcode,
		Target: op.Target,
		PID:    op.PID,
		VPage:  op.VPage,
		Frame:  op.Frame,
	})
}

// RecordProcStats writes the final per-process counters into the
// mmu_proc_stats table.
func RecordProcStats(recorder DataRecorder, procs []*vm.Process) {
	recorder.CreateTable("mmu_proc_stats", procStatsEntry{})

	for _, proc := range procs {
		c := proc.Stats
		recorder.InsertData("mmu_proc_stats", procStatsEntry{
			PID:     proc.PID,
			Unmaps:  c.Unmaps,
			Maps:    c.Maps,
			Ins:     c.Ins,
			Outs:    c.Outs,
			Fins:    c.Fins,
			Fouts:   c.Fouts,
			Zeros:   c.Zeros,
			Segv:    c.Segv,
			Segprot: c.Segprot,
		})
	}

	recorder.Flush()
}
