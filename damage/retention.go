package damage

import "fmt"

// Thresholds are the bases-from-terminus cutoffs that mark a read for export.
// A mismatch at 0-based offset z triggers retention when z is strictly below
// the threshold for its substitution and end. Zero disables a check.
type Thresholds struct {
	C5, C3, G5, G3 int
}

// Enabled reports whether any threshold is nonzero.
func (t Thresholds) Enabled() bool {
	return t.C5 > 0 || t.C3 > 0 || t.G5 > 0 || t.G3 > 0
}

// Validate checks every threshold is within [0, window].
func (t Thresholds) Validate(window int) error {
	vals := []struct {
		name string
		val  int
	}{{"c5", t.C5}, {"c3", t.C3}, {"g5", t.G5}, {"g3", t.G3}}
	for _, v := range vals {
		if v.val < 0 || v.val > window {
			return fmt.Errorf("threshold %s=%d must be between 0 and the window size (%d)", v.name, v.val, window)
		}
	}
	return nil
}

func (t Thresholds) limit(sub Substitution, end End) int {
	switch {
	case sub == C2T && end == FivePrime:
		return t.C5
	case sub == C2T:
		return t.C3
	case end == FivePrime:
		return t.G5
	default:
		return t.G3
	}
}

// Retains reports whether h is a mismatch close enough to its terminus.
func (t Thresholds) Retains(h Hit) bool {
	return h.Mismatch && h.Offset < t.limit(h.Sub, h.End)
}
