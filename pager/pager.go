// Package pager implements the page-replacement policies. Every policy is
// a small state machine over the shared frame table: it picks victims and
// maintains its own hand position; mutating the chosen frame is the fault
// handler's job.
package pager

import (
	"fmt"
	"io"

	"github.com/vmslab/mmusim/trace"
	"github.com/vmslab/mmusim/vm"
)

// A Pager selects victim frames and resets per-frame age on mapping.
// Policies differ in state, not interface.
type Pager interface {
	// SelectVictim returns the frame ID to evict. It is only called when
	// the free list is empty, so every frame is mapped.
	SelectVictim() int

	// ResetAge re-initializes the pager's age bookkeeping for a frame
	// that has just been mapped.
	ResetAge(frameID int)
}

// An InstrClock exposes the simulation's instruction counter to the
// policies that age by instruction count.
type InstrClock interface {
	InstructionCount() uint64
}

// Algorithm codes accepted on the command line.
const (
	AlgoFIFO       = 'f'
	AlgoRandom     = 'r'
	AlgoClock      = 'c'
	AlgoNRU        = 'e'
	AlgoAging      = 'a'
	AlgoWorkingSet = 'w'
)

// nruResetCycle is the instruction-count interval after which NRU clears
// all reference bits during its scan.
const nruResetCycle = 48

// workingSetTau is the working-set age threshold in instruction-counter
// units.
const workingSetTau = 49

// A Builder can build pagers wired to the simulation's shared state.
type Builder struct {
	frames *vm.FrameTable
	procs  []*vm.Process
	clock  InstrClock
	rand   *trace.RandStream
	diag   io.Writer
}

// MakeBuilder creates a pager builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithFrameTable sets the frame table the pager scans.
func (b Builder) WithFrameTable(t *vm.FrameTable) Builder {
	b.frames = t
	return b
}

// WithProcs sets the process table used for reverse PTE lookups.
func (b Builder) WithProcs(procs []*vm.Process) Builder {
	b.procs = procs
	return b
}

// WithClock sets the instruction clock used by NRU and Working-Set.
func (b Builder) WithClock(c InstrClock) Builder {
	b.clock = c
	return b
}

// WithRandStream sets the deterministic random stream used by the Random
// policy.
func (b Builder) WithRandStream(r *trace.RandStream) Builder {
	b.rand = r
	return b
}

// WithDiagWriter sets the destination for per-selection ASELECT
// diagnostic lines. A nil writer disables them.
func (b Builder) WithDiagWriter(w io.Writer) Builder {
	b.diag = w
	return b
}

// Build returns the pager for the given one-letter algorithm code.
func (b Builder) Build(algo byte) (Pager, error) {
	if b.frames == nil || b.procs == nil {
		panic("pager builder needs a frame table and a process table")
	}

	switch algo {
	case AlgoFIFO:
		return &fifoPager{frames: b.frames}, nil
	case AlgoRandom:
		if b.rand == nil {
			return nil, fmt.Errorf("the random pager needs a random file")
		}
		return &randomPager{frames: b.frames, rand: b.rand}, nil
	case AlgoClock:
		return &clockPager{frames: b.frames, procs: b.procs}, nil
	case AlgoNRU:
		b.clockMustBeSet()
		return &nruPager{
			frames: b.frames, procs: b.procs, clock: b.clock, diag: b.diag,
		}, nil
	case AlgoAging:
		return &agingPager{
			frames: b.frames, procs: b.procs, diag: b.diag,
		}, nil
	case AlgoWorkingSet:
		b.clockMustBeSet()
		return &workingSetPager{
			frames: b.frames, procs: b.procs, clock: b.clock, diag: b.diag,
		}, nil
	default:
		return nil, fmt.Errorf("unknown replacement algorithm %q", string(algo))
	}
}

func (b Builder) clockMustBeSet() {
	if b.clock == nil {
		panic("pager builder needs an instruction clock for this algorithm")
	}
}

// pteOf returns the page table entry currently mapped to the frame. Only
// legal for mapped frames.
func pteOf(procs []*vm.Process, f *vm.Frame) *vm.PTE {
	return &procs[f.PID].PageTable[f.VPage]
}
