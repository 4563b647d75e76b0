// Package report renders damage tables as tab separated text and parses them back.
package report

import (
	"bufio"
	"fmt"
	"github.com/dasnellings/condamage/damage"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"io"
)

var (
	// DoubleStranded are the conditional tables relevant to double-stranded libraries.
	DoubleStranded = []damage.Category{damage.FiveC2T, damage.ThreeG2A}

	// SingleStranded are the conditional tables relevant to single-stranded libraries.
	SingleStranded = []damage.Category{damage.FiveC2T, damage.ThreeC2T}
)

// Projection returns the conditional categories reported for a named mode:
// "all", "ds" or "ss". Counting always uses every category.
func Projection(mode string) ([]damage.Category, error) {
	switch mode {
	case "all", "":
		return damage.Categories, nil
	case "ds":
		return DoubleStranded, nil
	case "ss":
		return SingleStranded, nil
	default:
		return nil, fmt.Errorf("unknown conditional mode %q (expected all, ds or ss)", mode)
	}
}

// Label is the row label of a positional table, e.g. C2T5.
func Label(sub damage.Substitution, end damage.End) string {
	return sub.String() + end.String()
}

// CondLabel is the row label of a conditional positional table, e.g. C2T5|3G2A.
func CondLabel(sub damage.Substitution, end damage.End, c damage.Category) string {
	return Label(sub, end) + "|" + c.String()
}

var subs = [...]damage.Substitution{damage.C2T, damage.G2A}

var ends = [...]damage.End{damage.FivePrime, damage.ThreePrime}

func refBase(sub damage.Substitution) string {
	if sub == damage.C2T {
		return "C"
	}
	return "G"
}

// Write renders t. Unconditional tables come first (C2T5, C2T3, G2A5, G2A3), then
// the conditional tables for each window and category, then the length histogram
// when it has any fragment longer than 0.
func Write(w io.Writer, t *damage.Tables, cats []damage.Category) error {
	bw := bufio.NewWriter(w)
	var i int
	var mm, n uint64

	for _, sub := range subs {
		for _, end := range ends {
			label := Label(sub, end)
			fmt.Fprintf(bw, "#%s\ti\tmm\tn\n", label)
			fmt.Fprintf(bw, "# %s  %c to %c mismatches towards the %s' end\n", label, sub.String()[0], sub.String()[2], end)
			fmt.Fprintf(bw, "# i     distance from %s' end\n", end)
			fmt.Fprintf(bw, "# mm    number of mismatches\n")
			fmt.Fprintf(bw, "# n     matches+mismatches (ref has %s)\n\n", refBase(sub))
			for i = range t.Ends[end] {
				mm, n = t.Ends[end][i].Get(sub)
				fmt.Fprintf(bw, "%s\t%d\t%d\t%d\n", label, i+1, mm, n)
			}
			fmt.Fprintln(bw)
		}
	}

	for _, end := range ends {
		for _, c := range cats {
			str := c.String()
			for _, sub := range subs {
				label := CondLabel(sub, end, c)
				fmt.Fprintf(bw, "#%s\ti\tmm\tn\n", label)
				fmt.Fprintf(bw, "# %s  %c to %c mismatches towards the %s' end,\n", label, sub.String()[0], sub.String()[2], end)
				fmt.Fprintf(bw, "#            conditional on a %c to %c mismatch at the most %c' position\n", str[1], str[3], str[0])
				for i = range t.Ends[end] {
					mm, n = t.Ends[end][i].Cond[c].Get(sub)
					fmt.Fprintf(bw, "%s\t%d\t%d\t%d\n", label, i+1, mm, n)
				}
				fmt.Fprintln(bw)
			}
		}
	}

	if maxLen := t.Lengths.MaxLength(); maxLen > 0 {
		fmt.Fprintf(bw, "#LEN\tlen\tn\t5C2T\t3C2T\t5G2A\t3G2A\n")
		fmt.Fprintf(bw, "# LEN   fragment length distribution\n")
		fmt.Fprintf(bw, "# len   fragment length, including clipped bases\n")
		fmt.Fprintf(bw, "# n     number of fragments\n")
		fmt.Fprintf(bw, "# 5C2T  number of fragments with a C to T mismatch at the most 5' position (likewise 3C2T, 5G2A, 3G2A)\n\n")
		for i = 1; i <= maxLen; i++ {
			b := t.Lengths[i]
			fmt.Fprintf(bw, "LEN\t%d\t%d\t%d\t%d\t%d\t%d\n", i, b.N,
				b.Cond[damage.FiveC2T], b.Cond[damage.ThreeC2T], b.Cond[damage.FiveG2A], b.Cond[damage.ThreeG2A])
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// WriteFile renders t to filename, which may be "stdout".
func WriteFile(filename string, t *damage.Tables, cats []damage.Category) error {
	out := fileio.EasyCreate(filename)
	err := Write(out, t, cats)
	exception.PanicOnErr(out.Close())
	return err
}
