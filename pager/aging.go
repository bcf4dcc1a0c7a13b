package pager

import (
	"fmt"
	"io"
	"strings"

	"github.com/vmslab/mmusim/vm"
)

// agingPager keeps a 32-bit age register per frame. Each selection shifts
// every register right by one and merges the reference bit into the top
// bit, then evicts the frame with the smallest register. Ties go to the
// frame seen first in scan order from the hand.
type agingPager struct {
	frames *vm.FrameTable
	procs  []*vm.Process
	diag   io.Writer
	hand   int
}

func (p *agingPager) SelectVictim() int {
	n := p.frames.NumFrames()

	victim := -1
	var minAge uint32
	var scan strings.Builder

	for i := 0; i < n; i++ {
		fid := (p.hand + i) % n
		f := p.frames.Frame(fid)
		pte := pteOf(p.procs, f)

		age := uint32(f.Age) >> 1
		if pte.Referenced() {
			age |= 0x80000000
			pte.SetReferenced(false)
		}
		f.Age = uint64(age)

		if p.diag != nil {
			fmt.Fprintf(&scan, "%d:%x ", fid, age)
		}

		if victim < 0 || age < minAge {
			victim = fid
			minAge = age
		}
	}

	if p.diag != nil {
		fmt.Fprintf(p.diag, "ASELECT %d-%d | %s| %d\n",
			p.hand, (p.hand+n-1)%n, scan.String(), victim)
	}

	p.hand = (victim + 1) % n

	return victim
}

func (p *agingPager) ResetAge(frameID int) {
	p.frames.Frame(frameID).Age = 0
}
