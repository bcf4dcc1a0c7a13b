// Package vm defines the data model shared by the simulator: page table
// entries, virtual memory areas, processes, and the physical frame table.
package vm

// NumVPages is the number of virtual pages in each process's address space.
const NumVPages = 64

// MaxFrames is the largest physical frame pool the simulator supports.
const MaxFrames = 128

// SizeOfPTE is the byte size of a page table entry. A PTE packs its flags
// and the 7-bit frame number into one 32-bit word.
const SizeOfPTE = 4

const (
	ptePresent = 1 << iota
	pteReferenced
	pteModified
	pteWriteProtected
	ptePagedOut
	pteAssignedToVMA
	pteFileMapped
)

const (
	pteFrameShift = 16
	pteFrameMask  = 0x7f << pteFrameShift
)

// A PTE is a page table entry. The zero value is a fully cleared entry.
// The three VMA-cached bits (write-protected, file-mapped, and the
// assigned-to-VMA marker itself) are meaningful only after AssignedToVMA
// returns true.
type PTE uint32

// Present reports whether a physical frame currently backs this page.
func (p PTE) Present() bool { return p&ptePresent != 0 }

// Referenced reports whether the page has been accessed since the last
// reference-bit reset.
func (p PTE) Referenced() bool { return p&pteReferenced != 0 }

// Modified reports whether the page has been written since it was mapped.
func (p PTE) Modified() bool { return p&pteModified != 0 }

// WriteProtected reports the write-protect attribute cached from the VMA.
func (p PTE) WriteProtected() bool { return p&pteWriteProtected != 0 }

// PagedOut reports whether the page has ever been swapped out.
func (p PTE) PagedOut() bool { return p&ptePagedOut != 0 }

// AssignedToVMA reports whether the VMA lookup result has been cached.
func (p PTE) AssignedToVMA() bool { return p&pteAssignedToVMA != 0 }

// FileMapped reports the file-mapped attribute cached from the VMA.
func (p PTE) FileMapped() bool { return p&pteFileMapped != 0 }

// FrameNum returns the physical frame index. It is meaningful only while
// the entry is present.
func (p PTE) FrameNum() int { return int(p&pteFrameMask) >> pteFrameShift }

func (p *PTE) setBit(bit PTE, v bool) {
	if v {
		*p |= bit
	} else {
		*p &^= bit
	}
}

// SetPresent sets or clears the present bit.
func (p *PTE) SetPresent(v bool) { p.setBit(ptePresent, v) }

// SetReferenced sets or clears the referenced bit.
func (p *PTE) SetReferenced(v bool) { p.setBit(pteReferenced, v) }

// SetModified sets or clears the modified bit.
func (p *PTE) SetModified(v bool) { p.setBit(pteModified, v) }

// SetWriteProtected caches the write-protect attribute of the owning VMA.
func (p *PTE) SetWriteProtected(v bool) { p.setBit(pteWriteProtected, v) }

// SetPagedOut sets or clears the paged-out bit.
func (p *PTE) SetPagedOut(v bool) { p.setBit(ptePagedOut, v) }

// SetAssignedToVMA marks the VMA lookup result as cached.
func (p *PTE) SetAssignedToVMA(v bool) { p.setBit(pteAssignedToVMA, v) }

// SetFileMapped caches the file-mapped attribute of the owning VMA.
func (p *PTE) SetFileMapped(v bool) { p.setBit(pteFileMapped, v) }

// SetFrameNum stores the physical frame index.
func (p *PTE) SetFrameNum(frame int) {
	*p = (*p &^ pteFrameMask) | (PTE(frame) << pteFrameShift & pteFrameMask)
}
