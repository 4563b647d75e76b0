package damage

import (
	"gonum.org/v1/gonum/stat"
)

// LengthSummary describes the fragment length distribution of one histogram column.
type LengthSummary struct {
	Fragments uint64
	Mean      float64
	StdDev    float64
	Median    float64
}

// Summarize computes weighted statistics over the histogram column picked by count.
// Pass Unconditional for all fragments or Conditional(c) for one category.
func (h LengthHistogram) Summarize(count func(LengthBucket) uint64) LengthSummary {
	var ans LengthSummary
	x := make([]float64, 0, len(h))
	weights := make([]float64, 0, len(h))
	for length := range h {
		n := count(h[length])
		if n == 0 {
			continue
		}
		ans.Fragments += n
		x = append(x, float64(length))
		weights = append(weights, float64(n))
	}
	if len(x) == 0 {
		return ans
	}
	ans.Mean, ans.StdDev = stat.MeanStdDev(x, weights)
	if ans.Fragments < 2 {
		ans.StdDev = 0
	}
	ans.Median = stat.Quantile(0.5, stat.Empirical, x, weights)
	return ans
}

// Unconditional selects the all-fragments column of a LengthBucket.
func Unconditional(b LengthBucket) uint64 {
	return b.N
}

// Conditional selects the column of a LengthBucket for category c.
func Conditional(c Category) func(LengthBucket) uint64 {
	return func(b LengthBucket) uint64 {
		return b.Cond[c]
	}
}
