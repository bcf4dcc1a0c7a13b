package pager

import "github.com/vmslab/mmusim/vm"

// clockPager gives every referenced frame a second chance: the hand skips
// frames with a set reference bit, clearing the bit as it passes, and
// evicts the first frame found with the bit already clear.
type clockPager struct {
	frames *vm.FrameTable
	procs  []*vm.Process
	hand   int
}

func (p *clockPager) SelectVictim() int {
	for {
		f := p.frames.Frame(p.hand)
		pte := pteOf(p.procs, f)

		if !pte.Referenced() {
			victim := p.hand
			p.hand = (victim + 1) % p.frames.NumFrames()

			return victim
		}

		pte.SetReferenced(false)
		p.hand = (p.hand + 1) % p.frames.NumFrames()
	}
}

func (p *clockPager) ResetAge(frameID int) {}
