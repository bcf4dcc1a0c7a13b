package sim

import (
	"io"

	"github.com/rs/xid"

	"github.com/vmslab/mmusim/pager"
	"github.com/vmslab/mmusim/trace"
	"github.com/vmslab/mmusim/vm"
)

// A Builder can build a Simulation.
type Builder struct {
	procs      []*vm.Process
	instrs     []trace.Instruction
	numFrames  int
	algo       byte
	rand       *trace.RandStream
	diagWriter io.Writer
	pager      pager.Pager
}

// MakeBuilder creates a simulation builder with the default FIFO pager.
func MakeBuilder() Builder {
	return Builder{
		numFrames: 16,
		algo:      pager.AlgoFIFO,
	}
}

// WithProcs sets the process table.
func (b Builder) WithProcs(procs []*vm.Process) Builder {
	b.procs = procs
	return b
}

// WithInstructions sets the instruction trace to drain.
func (b Builder) WithInstructions(instrs []trace.Instruction) Builder {
	b.instrs = instrs
	return b
}

// WithNumFrames sets the size of the physical frame pool.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithAlgo sets the replacement algorithm by its one-letter code.
func (b Builder) WithAlgo(algo byte) Builder {
	b.algo = algo
	return b
}

// WithRandStream sets the deterministic random stream consumed by the
// Random pager.
func (b Builder) WithRandStream(r *trace.RandStream) Builder {
	b.rand = r
	return b
}

// WithPagerDiagWriter routes the pager's ASELECT diagnostics to w.
func (b Builder) WithPagerDiagWriter(w io.Writer) Builder {
	b.diagWriter = w
	return b
}

// WithPager sets a pre-built pager, overriding the algorithm code.
func (b Builder) WithPager(p pager.Pager) Builder {
	b.pager = p
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.numFrames < 1 || b.numFrames > vm.MaxFrames {
		panic("frame count out of range")
	}
}

// Build builds the simulation and its pager.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:     xid.New().String(),
		procs:  b.procs,
		frames: vm.NewFrameTable(b.numFrames),
		instrs: b.instrs,
	}

	if b.pager != nil {
		s.pager = b.pager
		return s, nil
	}

	p, err := pager.MakeBuilder().
		WithFrameTable(s.frames).
		WithProcs(s.procs).
		WithClock(s).
		WithRandStream(b.rand).
		WithDiagWriter(b.diagWriter).
		Build(b.algo)
	if err != nil {
		return nil, err
	}
	s.pager = p

	return s, nil
}
