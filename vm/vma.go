package vm

// A VMA is a virtual memory area: a contiguous range of virtual pages with
// uniform write-protect and file-mapped attributes. Areas of one process
// may overlap; lookups take the first match in declaration order.
type VMA struct {
	StartPage      int
	EndPage        int
	WriteProtected bool
	FileMapped     bool
}

// Contains reports whether the area covers the given virtual page.
func (v VMA) Contains(vpage int) bool {
	return v.StartPage <= vpage && vpage <= v.EndPage
}
