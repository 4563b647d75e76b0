package damage

import (
	"errors"
	"fmt"
	"github.com/vertgenlab/gonomics/cigar"
	"github.com/vertgenlab/gonomics/sam"
)

// bit 0x10 of the SAM flag field
const reverseStrand uint16 = 0x10

var (
	// ErrOutsideReference is returned for reads whose alignment runs past the end
	// of their contig, usually a sign the BAM was aligned to another reference build.
	ErrOutsideReference = errors.New("read mapped outside the reference sequence: bam/ref mismatch?")

	// ErrMalformedRecord is returned for mapped reads without a usable cigar or sequence.
	ErrMalformedRecord = errors.New("malformed alignment record")
)

// IsReverse reports whether r is aligned to the reverse strand.
func IsReverse(r sam.Sam) bool {
	return r.Flag&reverseStrand != 0
}

func alignsBases(op rune) bool {
	return op == 'M' || op == '=' || op == 'X'
}

// AlignmentEnd returns the 0-based exclusive end of r on the reference.
func AlignmentEnd(r sam.Sam) int {
	end := int(r.Pos) - 1
	for _, c := range r.Cigar {
		switch c.Op {
		case 'M', '=', 'X', 'D', 'N':
			end += c.RunLength
		}
	}
	return end
}

func queryLength(c []cigar.Cigar) int {
	var ans int
	for i := range c {
		switch c[i].Op {
		case 'M', '=', 'X', 'I', 'S':
			ans += c[i].RunLength
		}
	}
	return ans
}

func hardClipped(c []cigar.Cigar) int {
	var ans int
	for i := range c {
		if c[i].Op == 'H' {
			ans += c[i].RunLength
		}
	}
	return ans
}

// FragmentLength is the read length including soft and hard clipped bases.
func FragmentLength(r sam.Sam) int {
	return len(r.Seq) + hardClipped(r.Cigar)
}

// checkRecord verifies r can be walked against a contig of length refLen.
func checkRecord(r sam.Sam, refLen int) error {
	switch {
	case len(r.Cigar) == 0 || r.Cigar[0].Op == '*':
		return fmt.Errorf("%s: no cigar: %w", r.QName, ErrMalformedRecord)
	case len(r.Seq) == 0:
		return fmt.Errorf("%s: no sequence: %w", r.QName, ErrMalformedRecord)
	case r.Pos < 1:
		return fmt.Errorf("%s: mapped without a position: %w", r.QName, ErrMalformedRecord)
	case queryLength(r.Cigar) != len(r.Seq):
		return fmt.Errorf("%s: cigar %s does not match sequence length %d: %w",
			r.QName, cigar.ToString(r.Cigar), len(r.Seq), ErrMalformedRecord)
	case AlignmentEnd(r) > refLen:
		return fmt.Errorf("%s: %w", r.QName, ErrOutsideReference)
	}
	return nil
}
