package strand

import (
	"errors"
)

// Selection restricts which alignment strands are counted.
type Selection int

const (
	Both Selection = iota
	ForwardOnly
	ReverseOnly
)

// ErrBothStrands is returned when both forward-only and reverse-only are requested.
var ErrBothStrands = errors.New("forward-only and reverse-only are mutually incompatible")

// FromFlags converts the forward-only and reverse-only options to a Selection.
func FromFlags(forwardOnly, reverseOnly bool) (Selection, error) {
	switch {
	case forwardOnly && reverseOnly:
		return Both, ErrBothStrands
	case forwardOnly:
		return ForwardOnly, nil
	case reverseOnly:
		return ReverseOnly, nil
	default:
		return Both, nil
	}
}

// Keep reports whether a read on the given strand passes the selection.
func (s Selection) Keep(reverse bool) bool {
	switch s {
	case ForwardOnly:
		return !reverse
	case ReverseOnly:
		return reverse
	default:
		return true
	}
}

func (s Selection) String() string {
	switch s {
	case ForwardOnly:
		return "forward"
	case ReverseOnly:
		return "reverse"
	default:
		return "both"
	}
}
