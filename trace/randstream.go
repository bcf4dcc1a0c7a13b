package trace

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// A RandStream yields values from a pre-loaded ordered sequence of
// integers. Next returns vals[ofs mod n] mod k and advances the offset,
// so a stream replays identically for identical inputs.
type RandStream struct {
	vals []int
	ofs  int
}

// NewRandStream creates a stream over the given values.
func NewRandStream(vals []int) *RandStream {
	if len(vals) == 0 {
		panic("random stream must hold at least one value")
	}

	return &RandStream{vals: vals}
}

// Next returns the next pseudo-random value in [0, k).
func (r *RandStream) Next(k int) int {
	v := r.vals[r.ofs%len(r.vals)] % k
	r.ofs++

	return v
}

// Offset returns the number of values consumed so far.
func (r *RandStream) Offset() int {
	return r.ofs
}

// LoadRandomFile reads a random-number file: a count on the first line,
// then one integer per line. A truncated or malformed stream is an error.
func LoadRandomFile(path string) (*RandStream, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open random file %s", path)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil, fmt.Errorf("random file %s is empty", path)
	}

	count, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("random file %s has an invalid count line", path)
	}

	vals := make([]int, 0, count)
	for len(vals) < count && scanner.Scan() {
		v, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return nil, fmt.Errorf(
				"random file %s: invalid value on line %d", path, len(vals)+2)
		}

		vals = append(vals, v)
	}

	if len(vals) < count {
		return nil, fmt.Errorf(
			"random file %s: expected %d values, found %d", path, count, len(vals))
	}

	return NewRandStream(vals), nil
}
