package damage

import (
	"github.com/vertgenlab/gonomics/dna"
)

// End selects one of the two positional tables.
type End int

const (
	FivePrime End = iota
	ThreePrime
)

func (e End) String() string {
	if e == ThreePrime {
		return "3"
	}
	return "5"
}

// Substitution is the deamination signal a base is tallied under, always in the
// orientation of the original fragment.
type Substitution int

const (
	C2T Substitution = iota
	G2A
)

func (s Substitution) String() string {
	if s == G2A {
		return "G2A"
	}
	return "C2T"
}

// Hit is the table cell a single aligned base is counted in.
type Hit struct {
	End      End
	Offset   int // 0-based distance from End
	Sub      Substitution
	Mismatch bool
}

// Route decides where an aligned base is tallied. z1 and z2 are the 0-based distances
// of the base from the leftmost and rightmost query positions. Reverse strand reads
// carry the reverse complement of the fragment, so their left end is the fragment's
// 3' end and reference C/G swap roles. When both windows contain the base the z1
// window wins. ok is false for bases outside both windows or not on a reference C/G.
func Route(refBase, readBase dna.Base, reverse bool, z1, z2, window int) (h Hit, ok bool) {
	if z1 >= window && z2 >= window {
		return h, false
	}

	switch refBase {
	case dna.C:
		h.Mismatch = readBase == dna.T
		if reverse {
			h.Sub = G2A
		} else {
			h.Sub = C2T
		}
	case dna.G:
		h.Mismatch = readBase == dna.A
		if reverse {
			h.Sub = C2T
		} else {
			h.Sub = G2A
		}
	default:
		return h, false
	}

	switch {
	case z1 < window && !reverse:
		h.End, h.Offset = FivePrime, z1
	case z1 < window && reverse:
		h.End, h.Offset = ThreePrime, z1
	case !reverse:
		h.End, h.Offset = ThreePrime, z2
	default:
		h.End, h.Offset = FivePrime, z2
	}
	return h, true
}
