package pager

import (
	"fmt"
	"io"

	"github.com/vmslab/mmusim/vm"
)

// nruPager implements Not-Recently-Used. Frames fall into classes
// 2*R + M; the scan remembers the first frame of each class and evicts
// from the lowest non-empty one. Every nruResetCycle instructions the
// scan also clears reference bits, which disables the class-0
// short-circuit for that selection. The class recorded for each frame is
// the one observed before any clearing.
type nruPager struct {
	frames    *vm.FrameTable
	procs     []*vm.Process
	clock     InstrClock
	diag      io.Writer
	hand      int
	lastReset uint64
}

func (p *nruPager) SelectVictim() int {
	n := p.frames.NumFrames()
	now := p.clock.InstructionCount()
	reset := now >= p.lastReset+nruResetCycle

	classFrame := [4]int{-1, -1, -1, -1}
	victim := -1

	for i := 0; i < n; i++ {
		fid := (p.hand + i) % n
		pte := pteOf(p.procs, p.frames.Frame(fid))

		class := 0
		if pte.Referenced() {
			class += 2
		}
		if pte.Modified() {
			class++
		}

		if classFrame[class] < 0 {
			classFrame[class] = fid
		}

		if reset {
			pte.SetReferenced(false)
		}

		if class == 0 && !reset {
			victim = fid
			break
		}
	}

	if victim < 0 {
		for _, fid := range classFrame {
			if fid >= 0 {
				victim = fid
				break
			}
		}
	}

	if p.diag != nil {
		fmt.Fprintf(p.diag, "ASELECT hand=%d reset=%t | %d %d %d %d | %d\n",
			p.hand, reset,
			classFrame[0], classFrame[1], classFrame[2], classFrame[3], victim)
	}

	p.hand = (victim + 1) % n
	if reset {
		p.lastReset = now
	}

	return victim
}

func (p *nruPager) ResetAge(frameID int) {}
