package pager

import "github.com/vmslab/mmusim/vm"

// fifoPager evicts frames round-robin by frame index: the hand simply
// advances one frame per selection, never inspecting reference bits.
type fifoPager struct {
	frames *vm.FrameTable
	hand   int
}

func (p *fifoPager) SelectVictim() int {
	victim := p.hand
	p.hand = (p.hand + 1) % p.frames.NumFrames()

	return victim
}

func (p *fifoPager) ResetAge(frameID int) {}
