// Package report renders the simulator's outputs: the verbose operation
// trace, page and frame tables, per-process statistics, and the global
// cost line.
package report

import (
	"fmt"
	"io"

	"github.com/vmslab/mmusim/sim"
)

// An OpPrinter is a tracer that renders the verbose operation trace.
// Instruction events print as "<n>: ==> <op> <target>"; sub-operations
// print on their own indented lines in generation order, except the
// process-exit line, which is not indented.
type OpPrinter struct {
	w io.Writer
}

// NewOpPrinter creates an OpPrinter writing to w.
func NewOpPrinter(w io.Writer) *OpPrinter {
	return &OpPrinter{w: w}
}

// TraceOp implements sim.Tracer.
func (p *OpPrinter) TraceOp(op sim.Op) {
	switch op.Kind {
	case sim.OpInstr:
		fmt.Fprintf(p.w, "%d: ==> %c %d\n", op.Instr, op.Opcode, op.Target)
	case sim.OpUnmap:
		fmt.Fprintf(p.w, " UNMAP %d:%d\n", op.PID, op.VPage)
	case sim.OpMap:
		fmt.Fprintf(p.w, " MAP %d\n", op.Frame)
	case sim.OpProcExit:
		fmt.Fprintf(p.w, "EXIT current process %d\n", op.PID)
	default:
		fmt.Fprintf(p.w, " %s\n", op.Kind)
	}
}
