package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/vmslab/mmusim/trace"
	"github.com/vmslab/mmusim/vm"
)

func rwProc(pid int) *vm.Process {
	return vm.NewProcess(pid, []vm.VMA{{StartPage: 0, EndPage: 63}})
}

func newSimulation(
	procs []*vm.Process, instrs []trace.Instruction, numFrames int,
) (*Simulation, *captureTracer) {
	s, err := MakeBuilder().
		WithProcs(procs).
		WithInstructions(instrs).
		WithNumFrames(numFrames).
		Build()
	Expect(err).ToNot(HaveOccurred())

	tracer := &captureTracer{}
	s.RegisterTracer(tracer)

	return s, tracer
}

var _ = Describe("Simulation", func() {
	It("should have a unique ID", func() {
		s, _ := newSimulation([]*vm.Process{rwProc(0)}, nil, 4)

		Expect(s.ID()).ToNot(BeEmpty())
	})

	It("should report an access outside every VMA as a SEGV", func() {
		proc := vm.NewProcess(0, []vm.VMA{{StartPage: 0, EndPage: 0}})
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{{Op: 'c', Target: 0}, {Op: 'r', Target: 9}},
			4)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal(
			[]OpKind{OpInstr, OpInstr, OpSegv}))
		Expect(proc.Stats.Segv).To(Equal(uint64(1)))
		Expect(s.Cost()).To(Equal(uint64(571)))
		Expect(proc.PageTable[9].Present()).To(BeFalse())
	})

	It("should zero-fill and map the first touch of a page", func() {
		proc := rwProc(0)
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{{Op: 'c', Target: 0}, {Op: 'r', Target: 3}},
			4)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal(
			[]OpKind{OpInstr, OpInstr, OpZero, OpMap}))
		Expect(tracer.ops[3].Frame).To(Equal(0))
		Expect(tracer.ops[3].Instr).To(Equal(uint64(1)))

		Expect(proc.Stats.Zeros).To(Equal(uint64(1)))
		Expect(proc.Stats.Maps).To(Equal(uint64(1)))
		Expect(s.Cost()).To(Equal(uint64(631)))

		pte := proc.PageTable[3]
		Expect(pte.Present()).To(BeTrue())
		Expect(pte.Referenced()).To(BeTrue())
		Expect(pte.FrameNum()).To(Equal(0))

		f := s.Frames().Frame(0)
		Expect(f.Assigned).To(BeTrue())
		Expect(f.PID).To(Equal(0))
		Expect(f.VPage).To(Equal(3))
	})

	It("should block writes to a write-protected page", func() {
		proc := vm.NewProcess(0, []vm.VMA{
			{StartPage: 0, EndPage: 0, WriteProtected: true},
		})
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{{Op: 'c', Target: 0}, {Op: 'w', Target: 0}},
			4)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal(
			[]OpKind{OpInstr, OpInstr, OpZero, OpMap, OpSegprot}))
		Expect(proc.Stats.Segprot).To(Equal(uint64(1)))
		Expect(s.Cost()).To(Equal(uint64(1041)))

		// The page is still mapped and referenced, just not dirtied.
		pte := proc.PageTable[0]
		Expect(pte.Present()).To(BeTrue())
		Expect(pte.Referenced()).To(BeTrue())
		Expect(pte.Modified()).To(BeFalse())
	})

	It("should unmap the FIFO victim once the frame pool is full", func() {
		proc := rwProc(0)
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 0},
				{Op: 'r', Target: 1},
				{Op: 'r', Target: 2},
			},
			2)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal([]OpKind{
			OpInstr,
			OpInstr, OpZero, OpMap,
			OpInstr, OpZero, OpMap,
			OpInstr, OpUnmap, OpZero, OpMap,
		}))

		unmap := tracer.ops[8]
		Expect(unmap.PID).To(Equal(0))
		Expect(unmap.VPage).To(Equal(0))

		Expect(proc.Stats.Unmaps).To(Equal(uint64(1)))
		Expect(proc.Stats.Maps).To(Equal(uint64(3)))
		Expect(proc.Stats.Zeros).To(Equal(uint64(3)))
		Expect(s.Cost()).To(Equal(uint64(2043)))

		Expect(proc.PageTable[0].Present()).To(BeFalse())
		Expect(proc.PageTable[0].PagedOut()).To(BeFalse())
		Expect(proc.PageTable[2].FrameNum()).To(Equal(0))

		f := s.Frames().Frame(0)
		Expect(f.PID).To(Equal(0))
		Expect(f.VPage).To(Equal(2))
	})

	It("should report a SEGV on every repeated illegal access", func() {
		proc := vm.NewProcess(0, []vm.VMA{{StartPage: 0, EndPage: 0}})
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 9},
				{Op: 'r', Target: 9},
			},
			4)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal(
			[]OpKind{OpInstr, OpInstr, OpSegv, OpInstr, OpSegv}))
		Expect(proc.Stats.Segv).To(Equal(uint64(2)))
		Expect(proc.Stats.Maps).To(BeZero())
		Expect(s.Frames().NumFree()).To(Equal(4))
		Expect(s.Cost()).To(Equal(uint64(1012)))
	})

	It("should rotate mappings through the frame pool", func() {
		proc := vm.NewProcess(0, []vm.VMA{{StartPage: 0, EndPage: 3}})
		s, _ := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 0},
				{Op: 'r', Target: 1},
				{Op: 'r', Target: 2},
				{Op: 'r', Target: 0},
			},
			2)

		Expect(s.Run()).To(Succeed())

		f0 := s.Frames().Frame(0)
		Expect(f0.PID).To(Equal(0))
		Expect(f0.VPage).To(Equal(2))

		f1 := s.Frames().Frame(1)
		Expect(f1.PID).To(Equal(0))
		Expect(f1.VPage).To(Equal(0))

		// Page 0 was never dirtied, so its return trip is another ZERO,
		// not an IN.
		Expect(proc.Stats.Zeros).To(Equal(uint64(4)))
		Expect(proc.Stats.Ins).To(BeZero())
		Expect(proc.Stats.Maps).To(Equal(uint64(4)))
		Expect(proc.Stats.Unmaps).To(Equal(uint64(2)))
		Expect(s.Cost()).To(Equal(uint64(2954)))
	})

	It("should swap a dirty page out and back in", func() {
		proc := rwProc(0)
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'w', Target: 0},
				{Op: 'r', Target: 1},
				{Op: 'r', Target: 2},
				{Op: 'r', Target: 0},
			},
			2)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal([]OpKind{
			OpInstr,
			OpInstr, OpZero, OpMap,
			OpInstr, OpZero, OpMap,
			OpInstr, OpUnmap, OpOut, OpZero, OpMap,
			OpInstr, OpUnmap, OpIn, OpMap,
		}))

		Expect(proc.Stats.Outs).To(Equal(uint64(1)))
		Expect(proc.Stats.Ins).To(Equal(uint64(1)))
		Expect(proc.Stats.Zeros).To(Equal(uint64(3)))
		Expect(proc.Stats.Maps).To(Equal(uint64(4)))
		Expect(proc.Stats.Unmaps).To(Equal(uint64(2)))
		Expect(s.Cost()).To(Equal(uint64(8754)))

		pte := proc.PageTable[0]
		Expect(pte.Present()).To(BeTrue())
		Expect(pte.Referenced()).To(BeTrue())
		Expect(pte.Modified()).To(BeFalse())
		Expect(pte.PagedOut()).To(BeTrue())
	})

	It("should use file I/O for file-mapped pages", func() {
		proc := vm.NewProcess(0, []vm.VMA{
			{StartPage: 0, EndPage: 1, FileMapped: true},
		})
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'w', Target: 0},
				{Op: 'r', Target: 1},
				{Op: 'r', Target: 0},
			},
			1)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal([]OpKind{
			OpInstr,
			OpInstr, OpFin, OpMap,
			OpInstr, OpUnmap, OpFout, OpFin, OpMap,
			OpInstr, OpUnmap, OpFin, OpMap,
		}))

		Expect(proc.Stats.Fins).To(Equal(uint64(3)))
		Expect(proc.Stats.Fouts).To(Equal(uint64(1)))
		Expect(s.Cost()).To(Equal(uint64(11853)))

		// File-mapped pages never get the paged-out marker.
		Expect(proc.PageTable[0].PagedOut()).To(BeFalse())
	})

	It("should tear down an exiting process", func() {
		proc := rwProc(0)
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 0},
				{Op: 'w', Target: 1},
				{Op: 'e', Target: 0},
			},
			4)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.kinds()).To(Equal([]OpKind{
			OpInstr,
			OpInstr, OpZero, OpMap,
			OpInstr, OpZero, OpMap,
			OpInstr, OpProcExit, OpUnmap, OpUnmap,
		}))

		Expect(s.ProcessExits()).To(Equal(uint64(1)))
		Expect(proc.Stats.Unmaps).To(Equal(uint64(2)))
		// A dirty anonymous page of an exiting process is dropped, not
		// written back.
		Expect(proc.Stats.Outs).To(BeZero())
		Expect(s.Cost()).To(Equal(uint64(3182)))

		Expect(s.Frames().NumFree()).To(Equal(4))
		for vpage := 0; vpage < vm.NumVPages; vpage++ {
			Expect(proc.PageTable[vpage].Present()).To(BeFalse())
		}
	})

	It("should count instructions and context switches", func() {
		procs := []*vm.Process{rwProc(0), rwProc(1)}
		s, _ := newSimulation(procs,
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 0},
				{Op: 'c', Target: 1},
				{Op: 'r', Target: 0},
			},
			4)

		Expect(s.Run()).To(Succeed())

		Expect(s.InstructionCount()).To(Equal(uint64(4)))
		Expect(s.ContextSwitches()).To(Equal(uint64(2)))
		Expect(s.CurrentProcess()).To(BeIdenticalTo(procs[1]))
	})

	It("should stamp sub-operations with their instruction's counter", func() {
		proc := rwProc(0)
		s, tracer := newSimulation(
			[]*vm.Process{proc},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 0},
			},
			4)

		Expect(s.Run()).To(Succeed())

		Expect(tracer.ops[0].Instr).To(Equal(uint64(0)))
		Expect(tracer.ops[1].Instr).To(Equal(uint64(1)))
		Expect(tracer.ops[2].Instr).To(Equal(uint64(1)))
		Expect(tracer.ops[3].Instr).To(Equal(uint64(1)))
	})

	It("should fail on an unknown opcode", func() {
		s, _ := newSimulation(
			[]*vm.Process{rwProc(0)},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'x', Target: 0},
			},
			4)

		err := s.Run()

		Expect(err).To(MatchError(ContainSubstring("unknown opcode")))
	})

	It("should run registered hooks after every instruction", func() {
		s, _ := newSimulation(
			[]*vm.Process{rwProc(0)},
			[]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 0},
			},
			4)

		calls := 0
		s.RegisterPostInstructionHook(func() { calls++ })

		Expect(s.Run()).To(Succeed())
		Expect(calls).To(Equal(2))
	})
})

var _ = Describe("Simulation with a mock pager", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should only consult the pager once the free list is empty", func() {
		pager := NewMockPager(mockCtrl)
		proc := rwProc(0)

		s, err := MakeBuilder().
			WithProcs([]*vm.Process{proc}).
			WithInstructions([]trace.Instruction{
				{Op: 'c', Target: 0},
				{Op: 'r', Target: 0},
				{Op: 'r', Target: 1},
			}).
			WithNumFrames(1).
			WithPager(pager).
			Build()
		Expect(err).ToNot(HaveOccurred())

		pager.EXPECT().SelectVictim().Return(0)
		pager.EXPECT().ResetAge(0).Times(2)

		Expect(s.Run()).To(Succeed())

		Expect(s.Frames().Frame(0).VPage).To(Equal(1))
	})
})

var _ = Describe("Builder", func() {
	It("should reject a frame count out of range", func() {
		Expect(func() {
			MakeBuilder().
				WithProcs([]*vm.Process{rwProc(0)}).
				WithNumFrames(0).
				Build()
		}).To(Panic())

		Expect(func() {
			MakeBuilder().
				WithProcs([]*vm.Process{rwProc(0)}).
				WithNumFrames(vm.MaxFrames + 1).
				Build()
		}).To(Panic())
	})
})
