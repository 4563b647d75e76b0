package damage

import (
	"errors"
	"fmt"
	"github.com/vertgenlab/gonomics/numbers"
	"math/bits"
)

// ErrOverflow is returned when merging would wrap a 64-bit counter.
var ErrOverflow = errors.New("counter overflow")

// Counts holds the totals for one cell. C2T never exceeds C and G2A never exceeds G.
type Counts struct {
	C, C2T, G, G2A uint64
}

func (c *Counts) add(s Substitution, mismatch bool) {
	if s == C2T {
		c.C++
		if mismatch {
			c.C2T++
		}
		return
	}
	c.G++
	if mismatch {
		c.G2A++
	}
}

// Get returns the mismatch count and the total for substitution s.
func (c Counts) Get(s Substitution) (mm, n uint64) {
	if s == C2T {
		return c.C2T, c.C
	}
	return c.G2A, c.G
}

// Set stores the mismatch count and total for substitution s.
func (c *Counts) Set(s Substitution, mm, n uint64) {
	if s == C2T {
		c.C2T, c.C = mm, n
		return
	}
	c.G2A, c.G = mm, n
}

func (c *Counts) merge(o Counts) error {
	var err error
	if c.C, err = add64(c.C, o.C); err != nil {
		return err
	}
	if c.C2T, err = add64(c.C2T, o.C2T); err != nil {
		return err
	}
	if c.G, err = add64(c.G, o.G); err != nil {
		return err
	}
	c.G2A, err = add64(c.G2A, o.G2A)
	return err
}

func add64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return a, ErrOverflow
	}
	return sum, nil
}

// Cell is one offset of a positional table: unconditional counts plus one
// conditional copy per Category.
type Cell struct {
	Counts
	Cond [NumCategories]Counts
}

func (c *Cell) add(s Substitution, mismatch bool, flags TerminalFlags) {
	c.Counts.add(s, mismatch)
	for k := Category(0); k < NumCategories; k++ {
		if flags.Has(k) {
			c.Cond[k].add(s, mismatch)
		}
	}
}

func (c *Cell) merge(o Cell) error {
	if err := c.Counts.merge(o.Counts); err != nil {
		return err
	}
	for k := range c.Cond {
		if err := c.Cond[k].merge(o.Cond[k]); err != nil {
			return err
		}
	}
	return nil
}

// PositionCounts is indexed by 0-based distance from one read end.
type PositionCounts []Cell

// LengthBucket counts fragments of one length.
type LengthBucket struct {
	N    uint64
	Cond [NumCategories]uint64
}

// LengthHistogram is indexed by fragment length.
type LengthHistogram []LengthBucket

// Record counts one fragment. Lengths beyond the histogram capacity are dropped
// and reported as false.
func (h LengthHistogram) Record(length int, flags TerminalFlags) bool {
	if length < 0 || length >= len(h) {
		return false
	}
	h[length].N++
	for k := Category(0); k < NumCategories; k++ {
		if flags.Has(k) {
			h[length].Cond[k]++
		}
	}
	return true
}

// MaxLength returns the largest length with a nonzero count, or 0.
func (h LengthHistogram) MaxLength() int {
	for i := len(h) - 1; i > 0; i-- {
		if h[i].N > 0 {
			return i
		}
		for k := range h[i].Cond {
			if h[i].Cond[k] > 0 {
				return i
			}
		}
	}
	return 0
}

// Tables is the full set of accumulators for a run.
type Tables struct {
	Window  int
	Ends    [2]PositionCounts // indexed by End
	Lengths LengthHistogram
}

// NewTables allocates zeroed tables for the given window and histogram capacity.
func NewTables(window, capacity int) *Tables {
	return &Tables{
		Window:  window,
		Ends:    [2]PositionCounts{make(PositionCounts, window), make(PositionCounts, window)},
		Lengths: make(LengthHistogram, capacity),
	}
}

func (t *Tables) add(h Hit, flags TerminalFlags) {
	t.Ends[h.End][h.Offset].add(h.Sub, h.Mismatch, flags)
}

// Add sums o into t element-wise. The histogram of t grows to fit o if needed.
func (t *Tables) Add(o *Tables) error {
	if t.Window != o.Window {
		return fmt.Errorf("cannot merge tables with window %d into tables with window %d", o.Window, t.Window)
	}
	var err error
	for e := range t.Ends {
		for i := range t.Ends[e] {
			if err = t.Ends[e][i].merge(o.Ends[e][i]); err != nil {
				return fmt.Errorf("%s' offset %d: %w", End(e), i+1, err)
			}
		}
	}
	if len(o.Lengths) > len(t.Lengths) {
		grown := make(LengthHistogram, len(o.Lengths))
		copy(grown, t.Lengths)
		t.Lengths = grown
	}
	for i := range o.Lengths {
		if t.Lengths[i].N, err = add64(t.Lengths[i].N, o.Lengths[i].N); err != nil {
			return fmt.Errorf("length %d: %w", i, err)
		}
		for k := range o.Lengths[i].Cond {
			if t.Lengths[i].Cond[k], err = add64(t.Lengths[i].Cond[k], o.Lengths[i].Cond[k]); err != nil {
				return fmt.Errorf("length %d: %w", i, err)
			}
		}
	}
	return nil
}

// Merge returns new tables holding the element-wise sum of a and b.
// Neither input is modified.
func Merge(a, b *Tables) (*Tables, error) {
	ans := NewTables(a.Window, numbers.Max(len(a.Lengths), len(b.Lengths)))
	if err := ans.Add(a); err != nil {
		return nil, err
	}
	if err := ans.Add(b); err != nil {
		return nil, err
	}
	return ans, nil
}

// Limits on the configurable table sizes.
const (
	DefaultWindow     = 30
	MaxWindow         = 100
	DefaultMaxLength  = 1024
	MinLengthCapacity = 100
	MaxLengthCapacity = 1 << 20
)
