package damage

import (
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/sam"
)

// Aggregator accumulates damage tables one read at a time.
type Aggregator struct {
	Tables     *Tables
	Thresholds Thresholds
}

// NewAggregator returns an Aggregator with freshly allocated tables.
func NewAggregator(window, maxLen int, thresholds Thresholds) *Aggregator {
	return &Aggregator{
		Tables:     NewTables(window, maxLen),
		Thresholds: thresholds,
	}
}

// Add classifies r against ref, adds it to the positional tables and the length
// histogram, and reports whether r has a mismatch within the retention thresholds.
// Reads that cannot be walked against ref return ErrOutsideReference or
// ErrMalformedRecord and leave the tables untouched.
func (a *Aggregator) Add(r sam.Sam, ref []dna.Base) (retain bool, flags TerminalFlags, err error) {
	if err = checkRecord(r, len(ref)); err != nil {
		return false, 0, err
	}
	flags = Classify(r, ref)
	retain = a.accumulate(r, ref, flags)
	a.Tables.Lengths.Record(FragmentLength(r), flags)
	return retain, flags, nil
}

func (a *Aggregator) accumulate(r sam.Sam, ref []dna.Base, flags TerminalFlags) (retain bool) {
	var j, z1, z2 int
	var h Hit
	var ok bool
	window := a.Tables.Window
	reverse := IsReverse(r)
	qLen := len(r.Seq)
	x := int(r.Pos) - 1 // offset in ref
	y := 0              // offset in query
	for _, c := range r.Cigar {
		switch c.Op {
		case 'M', '=', 'X':
			for j = 0; j < c.RunLength; j++ {
				z1 = y + j
				z2 = qLen - (z1 + 1)
				if z1 >= window && z2 >= window {
					j += z2 - window // resume at the first base inside the right window
					continue
				}
				if h, ok = Route(ref[x+j], r.Seq[z1], reverse, z1, z2, window); !ok {
					continue
				}
				a.Tables.add(h, flags)
				if !retain && a.Thresholds.Retains(h) {
					retain = true
				}
			}
			x += c.RunLength
			y += c.RunLength
		case 'I', 'S':
			y += c.RunLength
		case 'D', 'N':
			x += c.RunLength
		}
	}
	return retain
}
