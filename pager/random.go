package pager

import (
	"github.com/vmslab/mmusim/trace"
	"github.com/vmslab/mmusim/vm"
)

// randomPager picks victims from the deterministic random stream. Each
// selection draws one value reduced modulo the frame count.
type randomPager struct {
	frames *vm.FrameTable
	rand   *trace.RandStream
}

func (p *randomPager) SelectVictim() int {
	return p.rand.Next(p.frames.NumFrames())
}

func (p *randomPager) ResetAge(frameID int) {}
