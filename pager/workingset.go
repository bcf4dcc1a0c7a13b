package pager

import (
	"fmt"
	"io"
	"strings"

	"github.com/vmslab/mmusim/vm"
)

// workingSetPager stores, per frame, the instruction count at which the
// page was last known referenced. A frame whose page is unreferenced and
// older than workingSetTau leaves the working set and is evicted
// immediately; otherwise the scan falls back to the frame with the oldest
// last-reference time, first-seen winning ties.
type workingSetPager struct {
	frames *vm.FrameTable
	procs  []*vm.Process
	clock  InstrClock
	diag   io.Writer
	hand   int
}

func (p *workingSetPager) SelectVictim() int {
	n := p.frames.NumFrames()
	now := p.clock.InstructionCount()

	victim := -1
	oldest := -1
	var oldestAge uint64
	var scan strings.Builder

	for i := 0; i < n; i++ {
		fid := (p.hand + i) % n
		f := p.frames.Frame(fid)
		pte := pteOf(p.procs, f)

		if p.diag != nil {
			ref := 0
			if pte.Referenced() {
				ref = 1
			}
			fmt.Fprintf(&scan, "%d(%d %d) ", fid, ref, f.Age)
		}

		if !pte.Referenced() && now-f.Age > workingSetTau {
			victim = fid
			break
		}

		if pte.Referenced() {
			f.Age = now
			pte.SetReferenced(false)
		}

		if oldest < 0 || f.Age < oldestAge {
			oldest = fid
			oldestAge = f.Age
		}
	}

	if victim < 0 {
		victim = oldest
	}

	if p.diag != nil {
		fmt.Fprintf(p.diag, "ASELECT %d-%d | %s| %d\n",
			p.hand, (p.hand+n-1)%n, scan.String(), victim)
	}

	p.hand = (victim + 1) % n

	return victim
}

func (p *workingSetPager) ResetAge(frameID int) {
	p.frames.Frame(frameID).Age = p.clock.InstructionCount()
}
