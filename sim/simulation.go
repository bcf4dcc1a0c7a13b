// Package sim drives the MMU simulation: it drains the instruction
// trace, translates faulting pages through the fault handler, and keeps
// the cost and statistics accounting.
package sim

import (
	"fmt"

	"github.com/vmslab/mmusim/pager"
	"github.com/vmslab/mmusim/trace"
	"github.com/vmslab/mmusim/vm"
)

// A Simulation owns every piece of mutable state for one run: the
// process table, the frame table, the instruction queue, the pager, and
// all counters. It is strictly single-threaded; a run is reproducible
// from its inputs.
type Simulation struct {
	id string

	procs  []*vm.Process
	frames *vm.FrameTable
	instrs []trace.Instruction
	pager  pager.Pager

	current *vm.Process

	instCount   uint64
	curInstr    uint64
	ctxSwitches uint64
	procExits   uint64
	cost        uint64

	tracers        []Tracer
	postInstrHooks []func()
}

// ID returns the unique ID of this run.
func (s *Simulation) ID() string {
	return s.id
}

// Procs returns the process table.
func (s *Simulation) Procs() []*vm.Process {
	return s.procs
}

// Frames returns the frame table.
func (s *Simulation) Frames() *vm.FrameTable {
	return s.frames
}

// CurrentProcess returns the process selected by the last context
// switch, or nil before the first one.
func (s *Simulation) CurrentProcess() *vm.Process {
	return s.current
}

// InstructionCount returns the number of instructions dispatched so far.
// While an instruction is being handled, the count already includes it.
func (s *Simulation) InstructionCount() uint64 {
	return s.instCount
}

// ContextSwitches returns the number of 'c' instructions executed.
func (s *Simulation) ContextSwitches() uint64 {
	return s.ctxSwitches
}

// ProcessExits returns the number of 'e' instructions executed.
func (s *Simulation) ProcessExits() uint64 {
	return s.procExits
}

// Cost returns the accumulated simulated time.
func (s *Simulation) Cost() uint64 {
	return s.cost
}

// RegisterTracer attaches a tracer to the simulation. Tracers see
// operations in generation order.
func (s *Simulation) RegisterTracer(t Tracer) {
	s.tracers = append(s.tracers, t)
}

// RegisterPostInstructionHook registers a function invoked after each
// instruction completes. The debug dumps hang off this hook.
func (s *Simulation) RegisterPostInstructionHook(f func()) {
	s.postInstrHooks = append(s.postInstrHooks, f)
}

func (s *Simulation) traceOp(op Op) {
	op.Instr = s.curInstr
	for _, t := range s.tracers {
		t.TraceOp(op)
	}
}

// Run drains the instruction queue. The pre-dispatch trace event carries
// the instruction counter before it advances; the counter then advances
// before the handler runs, so handlers and pagers see a count that
// includes the current instruction. Any unknown opcode is fatal.
func (s *Simulation) Run() error {
	for _, inst := range s.instrs {
		s.curInstr = s.instCount
		s.traceOp(Op{
			Kind:   OpInstr,
			Opcode: inst.Op,
			Target: inst.Target,
		})
		s.instCount++

		switch inst.Op {
		case trace.OpContextSwitch:
			s.contextSwitch(inst.Target)
		case trace.OpExit:
			s.exitProcess(inst.Target)
		case trace.OpRead, trace.OpWrite:
			s.access(inst.Op, inst.Target)
		default:
			return fmt.Errorf("unknown opcode %q in instruction %d",
				string(inst.Op), s.instCount-1)
		}

		for _, f := range s.postInstrHooks {
			f()
		}
	}

	return nil
}
