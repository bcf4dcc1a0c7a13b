package trace

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vmslab/mmusim/vm"
)

// lineReader walks a file line by line, skipping comment lines that start
// with '#' wherever they appear.
type lineReader struct {
	scanner *bufio.Scanner
	path    string
	lineNum int
}

func (r *lineReader) next() (string, bool) {
	for r.scanner.Scan() {
		r.lineNum++

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return line, true
	}

	return "", false
}

func (r *lineReader) errf(format string, args ...any) error {
	prefix := fmt.Sprintf("input file %s, line %d: ", r.path, r.lineNum)
	return fmt.Errorf(prefix+format, args...)
}

// LoadInputFile parses the process descriptions and the instruction trace.
// The grammar is: the number of processes; per process, the number of
// VMAs followed by that many "start end wprot fmapped" lines; then any
// number of "<opcode> <target>" instruction lines.
func LoadInputFile(path string) ([]*vm.Process, []Instruction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open input file %s", path)
	}
	defer file.Close()

	r := &lineReader{scanner: bufio.NewScanner(file), path: path}

	numProcs, err := r.readInt("process count")
	if err != nil {
		return nil, nil, err
	}

	procs := make([]*vm.Process, 0, numProcs)
	for pid := 0; pid < numProcs; pid++ {
		vmas, err := r.readVMAs()
		if err != nil {
			return nil, nil, err
		}

		procs = append(procs, vm.NewProcess(pid, vmas))
	}

	instrs, err := r.readInstructions()
	if err != nil {
		return nil, nil, err
	}

	return procs, instrs, nil
}

func (r *lineReader) readInt(what string) (int, error) {
	line, ok := r.next()
	if !ok {
		return 0, r.errf("missing %s", what)
	}

	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, r.errf("invalid %s %q", what, line)
	}

	return v, nil
}

func (r *lineReader) readVMAs() ([]vm.VMA, error) {
	numVMAs, err := r.readInt("VMA count")
	if err != nil {
		return nil, err
	}

	vmas := make([]vm.VMA, 0, numVMAs)
	for i := 0; i < numVMAs; i++ {
		line, ok := r.next()
		if !ok {
			return nil, r.errf("missing VMA specification")
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, r.errf("VMA needs 4 fields, got %q", line)
		}

		nums := make([]int, 4)
		for j, f := range fields {
			nums[j], err = strconv.Atoi(f)
			if err != nil {
				return nil, r.errf("invalid VMA field %q", f)
			}
		}

		if nums[0] < 0 || nums[1] >= vm.NumVPages || nums[0] > nums[1] {
			return nil, r.errf("VMA range [%d,%d] out of bounds", nums[0], nums[1])
		}

		vmas = append(vmas, vm.VMA{
			StartPage:      nums[0],
			EndPage:        nums[1],
			WriteProtected: nums[2] != 0,
			FileMapped:     nums[3] != 0,
		})
	}

	return vmas, nil
}

func (r *lineReader) readInstructions() ([]Instruction, error) {
	var instrs []Instruction

	for {
		line, ok := r.next()
		if !ok {
			return instrs, nil
		}

		fields := strings.Fields(line)
		if len(fields) != 2 || len(fields[0]) != 1 {
			return nil, r.errf("invalid instruction %q", line)
		}

		target, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, r.errf("invalid instruction target %q", fields[1])
		}

		instrs = append(instrs, Instruction{Op: fields[0][0], Target: target})
	}
}
