package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/vmslab/mmusim/sim"
	"github.com/vmslab/mmusim/vm"
)

// PrintPageTable writes one process's page-table line. Present entries
// render as "<vpage>:<R><M><S>"; non-present entries render as '#' when
// the page has been swapped out and '*' otherwise.
func PrintPageTable(w io.Writer, proc *vm.Process) {
	var b strings.Builder
	fmt.Fprintf(&b, "PT[%d]:", proc.PID)

	for vpage := 0; vpage < vm.NumVPages; vpage++ {
		pte := proc.PageTable[vpage]

		if !pte.Present() {
			if pte.PagedOut() {
				b.WriteString(" #")
			} else {
				b.WriteString(" *")
			}
			continue
		}

		fmt.Fprintf(&b, " %d:%c%c%c", vpage,
			flag(pte.Referenced(), 'R'),
			flag(pte.Modified(), 'M'),
			flag(pte.PagedOut(), 'S'))
	}

	fmt.Fprintln(w, b.String())
}

// PrintPageTables writes the page-table lines of all processes.
func PrintPageTables(w io.Writer, procs []*vm.Process) {
	for _, proc := range procs {
		PrintPageTable(w, proc)
	}
}

// PrintFrameTable writes the frame-table line: "<pid>:<vpage>" for
// assigned frames, '*' for free ones.
func PrintFrameTable(w io.Writer, frames *vm.FrameTable) {
	var b strings.Builder
	b.WriteString("FT:")

	for i := 0; i < frames.NumFrames(); i++ {
		f := frames.Frame(i)
		if f.Assigned {
			fmt.Fprintf(&b, " %d:%d", f.PID, f.VPage)
		} else {
			b.WriteString(" *")
		}
	}

	fmt.Fprintln(w, b.String())
}

// PrintProcStats writes the per-process statistics lines.
func PrintProcStats(w io.Writer, procs []*vm.Process) {
	for _, proc := range procs {
		c := proc.Stats
		fmt.Fprintf(w,
			"PROC[%d]: U=%d M=%d I=%d O=%d FI=%d FO=%d Z=%d SV=%d SP=%d\n",
			proc.PID, c.Unmaps, c.Maps, c.Ins, c.Outs,
			c.Fins, c.Fouts, c.Zeros, c.Segv, c.Segprot)
	}
}

// PrintSummary writes the TOTALCOST line.
func PrintSummary(w io.Writer, s *sim.Simulation) {
	fmt.Fprintf(w, "TOTALCOST %d %d %d %d %d\n",
		s.InstructionCount(), s.ContextSwitches(), s.ProcessExits(),
		s.Cost(), vm.SizeOfPTE)
}

func flag(set bool, mark byte) byte {
	if set {
		return mark
	}

	return '-'
}
