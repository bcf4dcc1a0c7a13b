package vm

// Counters accumulates the per-process operation counts reported at the
// end of a simulation.
type Counters struct {
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

// A Process owns a list of VMAs, a fixed 64-entry page table, and its
// operation counters. The PID equals the process's creation order and
// never changes.
type Process struct {
	PID       int
	VMAs      []VMA
	PageTable [NumVPages]PTE
	Stats     Counters
}

// NewProcess creates a process with a zeroed page table.
func NewProcess(pid int, vmas []VMA) *Process {
	return &Process{PID: pid, VMAs: vmas}
}

// FindVMA returns the first VMA that covers the given virtual page.
func (p *Process) FindVMA(vpage int) (VMA, bool) {
	for _, vma := range p.VMAs {
		if vma.Contains(vpage) {
			return vma, true
		}
	}

	return VMA{}, false
}
