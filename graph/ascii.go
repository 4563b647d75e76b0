package graph

import (
	"fmt"
	"github.com/dasnellings/condamage/damage"
	"github.com/guptarohit/asciigraph"
	"strings"
)

// Preview renders terminal plots of the 5' C>T and 3' G>A curves and, when any
// fragments were recorded, of the length distribution.
func Preview(t *damage.Tables) string {
	s := new(strings.Builder)
	series := [][]float64{
		frequencySeries(t, damage.FivePrime, c2t),
		frequencySeries(t, damage.ThreePrime, g2a),
	}
	if len(series[0]) > 1 {
		s.WriteString(asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Precision(3),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
			asciigraph.Caption("C>T from the 5' end (red), G>A from the 3' end (blue, 3' end on the right)")))
		s.WriteByte('\n')
	}

	if lengths := lengthSeries(t.Lengths); len(lengths) > 1 {
		s.WriteString(asciigraph.Plot(lengths,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Precision(0),
			asciigraph.Caption(fmt.Sprintf("fragment length, 1-%d", len(lengths)))))
		s.WriteByte('\n')
	}
	return s.String()
}

// frequencySeries returns one value per offset, ordered so the read end of the
// 3' table is on the right.
func frequencySeries(t *damage.Tables, end damage.End, tr Trace) []float64 {
	ans := make([]float64, t.Window)
	var mm, n uint64
	for i, cell := range t.Ends[end] {
		mm, n = cell.Get(tr.Sub)
		if n == 0 {
			continue
		}
		ans[i] = float64(mm) / float64(n)
	}
	if end == damage.ThreePrime {
		for i, j := 0, len(ans)-1; i < j; i, j = i+1, j-1 {
			ans[i], ans[j] = ans[j], ans[i]
		}
	}
	return ans
}

func lengthSeries(h damage.LengthHistogram) []float64 {
	maxLen := h.MaxLength()
	if maxLen == 0 {
		return nil
	}
	ans := make([]float64, maxLen)
	for i := range ans {
		ans[i] = float64(h[i+1].N)
	}
	return ans
}
