package sim

import (
	"github.com/vmslab/mmusim/trace"
	"github.com/vmslab/mmusim/vm"
)

func (s *Simulation) contextSwitch(target int) {
	s.current = s.procs[target]
	s.ctxSwitches++
	s.cost += CtxSwitchTime
}

// access handles one load or store. The ordering below is observable
// through the operation trace and must not change: VMA check, frame
// acquisition, unmap and write-back of the victim, fill, map, then the
// reference and modify bits.
func (s *Simulation) access(op byte, vpage int) {
	s.cost += LdStTime

	proc := s.current
	pte := &proc.PageTable[vpage]

	if !pte.Present() {
		if !s.pageIn(proc, vpage, pte) {
			return
		}
	}

	pte.SetReferenced(true)

	if op == trace.OpWrite {
		if pte.WriteProtected() {
			s.traceOp(Op{Kind: OpSegprot})
			proc.Stats.Segprot++
			s.cost += SegprotTime
		} else {
			pte.SetModified(true)
		}
	}
}

// pageIn resolves a fault on a non-present page. It returns false when
// the access is illegal (SEGV), in which case nothing was mapped.
func (s *Simulation) pageIn(proc *vm.Process, vpage int, pte *vm.PTE) bool {
	if !pte.AssignedToVMA() {
		vma, ok := proc.FindVMA(vpage)
		if !ok {
			s.traceOp(Op{Kind: OpSegv})
			proc.Stats.Segv++
			s.cost += SegvTime

			return false
		}

		pte.SetAssignedToVMA(true)
		pte.SetWriteProtected(vma.WriteProtected)
		pte.SetFileMapped(vma.FileMapped)
	}

	frame, ok := s.frames.PopFree()
	if !ok {
		frame = s.frames.Frame(s.pager.SelectVictim())
	}

	if frame.Victim {
		s.unmapVictim(frame)
	}

	switch {
	case pte.FileMapped():
		s.traceOp(Op{Kind: OpFin})
		proc.Stats.Fins++
		s.cost += FinsTime
	case pte.PagedOut():
		s.traceOp(Op{Kind: OpIn})
		proc.Stats.Ins++
		s.cost += InsTime
	default:
		s.traceOp(Op{Kind: OpZero})
		proc.Stats.Zeros++
		s.cost += ZerosTime
	}

	frame.Victim = true
	frame.PID = proc.PID
	frame.VPage = vpage
	frame.Assigned = true

	pte.SetPresent(true)
	pte.SetFrameNum(frame.ID)

	s.traceOp(Op{Kind: OpMap, Frame: frame.ID})
	proc.Stats.Maps++
	s.cost += MapsTime

	s.pager.ResetAge(frame.ID)

	return true
}

// unmapVictim tears down the victim frame's previous mapping, writing the
// page back when it was modified.
func (s *Simulation) unmapVictim(frame *vm.Frame) {
	owner := s.procs[frame.PID]
	old := &owner.PageTable[frame.VPage]

	s.traceOp(Op{Kind: OpUnmap, PID: frame.PID, VPage: frame.VPage})
	owner.Stats.Unmaps++
	s.cost += UnmapsTime

	if old.Modified() {
		if old.FileMapped() {
			s.traceOp(Op{Kind: OpFout})
			owner.Stats.Fouts++
			s.cost += FoutsTime
		} else {
			old.SetPagedOut(true)
			s.traceOp(Op{Kind: OpOut})
			owner.Stats.Outs++
			s.cost += OutsTime
		}
	}

	old.SetModified(false)
	old.SetPresent(false)
}

// exitProcess unmaps every present page of the exiting process and
// returns its frames to the free list. Modified file-mapped pages are
// written back; modified anonymous pages of an exiting process are not.
func (s *Simulation) exitProcess(target int) {
	s.traceOp(Op{Kind: OpProcExit, PID: target})
	s.procExits++
	s.cost += ProcExitTime

	proc := s.procs[target]
	for vpage := 0; vpage < vm.NumVPages; vpage++ {
		pte := &proc.PageTable[vpage]

		if pte.Present() {
			frame := s.frames.Frame(pte.FrameNum())

			s.traceOp(Op{Kind: OpUnmap, PID: proc.PID, VPage: vpage})
			proc.Stats.Unmaps++
			s.cost += UnmapsTime

			if pte.Modified() && pte.FileMapped() {
				s.traceOp(Op{Kind: OpFout})
				proc.Stats.Fouts++
				s.cost += FoutsTime
			}

			s.frames.Release(frame.ID)
		}

		pte.SetPresent(false)
		pte.SetReferenced(false)
		pte.SetPagedOut(false)
	}
}
