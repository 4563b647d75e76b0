package damage

import (
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/sam"
)

// Category is one of the four terminal mismatch classes a read can be conditioned on.
type Category int

const (
	FiveC2T Category = iota
	ThreeC2T
	FiveG2A
	ThreeG2A
	NumCategories
)

// Categories lists every Category in report order.
var Categories = []Category{FiveC2T, ThreeC2T, FiveG2A, ThreeG2A}

var categoryNames = [NumCategories]string{"5C2T", "3C2T", "5G2A", "3G2A"}

func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, bool) {
	for i := range categoryNames {
		if categoryNames[i] == s {
			return Category(i), true
		}
	}
	return -1, false
}

// TerminalFlags is a bit set over Category.
type TerminalFlags uint8

func (f TerminalFlags) Has(c Category) bool {
	return f&(1<<c) != 0
}

func (f TerminalFlags) Set(c Category) TerminalFlags {
	return f | 1<<c
}

func (f TerminalFlags) String() string {
	if f == 0 {
		return "none"
	}
	var s string
	for _, c := range Categories {
		if f.Has(c) {
			if s != "" {
				s += ","
			}
			s += c.String()
		}
	}
	return s
}

// Classify looks only at the leftmost and rightmost aligned bases of r and reports
// the deamination-like mismatches found there, expressed in the orientation of the
// original fragment. Ends that begin or finish with a clip or indel contribute nothing.
func Classify(r sam.Sam, ref []dna.Base) TerminalFlags {
	var flags TerminalFlags
	if len(r.Cigar) == 0 || len(r.Seq) == 0 || r.Pos < 1 {
		return flags
	}
	reverse := IsReverse(r)
	start := int(r.Pos) - 1
	end := AlignmentEnd(r)
	if end > len(ref) || end <= start {
		return flags
	}

	if alignsBases(r.Cigar[0].Op) {
		readBase, refBase := r.Seq[0], ref[start]
		switch {
		case refBase == dna.C && readBase == dna.T:
			if reverse {
				flags = flags.Set(ThreeG2A)
			} else {
				flags = flags.Set(FiveC2T)
			}
		case refBase == dna.G && readBase == dna.A:
			if reverse {
				flags = flags.Set(ThreeC2T)
			} else {
				flags = flags.Set(FiveG2A)
			}
		}
	}

	if alignsBases(r.Cigar[len(r.Cigar)-1].Op) {
		readBase, refBase := r.Seq[len(r.Seq)-1], ref[end-1]
		switch {
		case refBase == dna.G && readBase == dna.A:
			if reverse {
				flags = flags.Set(FiveC2T)
			} else {
				flags = flags.Set(ThreeG2A)
			}
		case refBase == dna.C && readBase == dna.T:
			if reverse {
				flags = flags.Set(FiveG2A)
			} else {
				flags = flags.Set(ThreeC2T)
			}
		}
	}
	return flags
}
