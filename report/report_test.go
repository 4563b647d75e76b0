package report

import (
	"github.com/dasnellings/condamage/damage"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const golden = "" +
	"#C2T5\ti\tmm\tn\n" +
	"# C2T5  C to T mismatches towards the 5' end\n" +
	"# i     distance from 5' end\n" +
	"# mm    number of mismatches\n" +
	"# n     matches+mismatches (ref has C)\n" +
	"\n" +
	"C2T5\t1\t1\t3\n" +
	"C2T5\t2\t0\t1\n" +
	"\n" +
	"#C2T3\ti\tmm\tn\n" +
	"# C2T3  C to T mismatches towards the 3' end\n" +
	"# i     distance from 3' end\n" +
	"# mm    number of mismatches\n" +
	"# n     matches+mismatches (ref has C)\n" +
	"\n" +
	"C2T3\t1\t0\t0\n" +
	"C2T3\t2\t0\t0\n" +
	"\n" +
	"#G2A5\ti\tmm\tn\n" +
	"# G2A5  G to A mismatches towards the 5' end\n" +
	"# i     distance from 5' end\n" +
	"# mm    number of mismatches\n" +
	"# n     matches+mismatches (ref has G)\n" +
	"\n" +
	"G2A5\t1\t0\t2\n" +
	"G2A5\t2\t0\t0\n" +
	"\n" +
	"#G2A3\ti\tmm\tn\n" +
	"# G2A3  G to A mismatches towards the 3' end\n" +
	"# i     distance from 3' end\n" +
	"# mm    number of mismatches\n" +
	"# n     matches+mismatches (ref has G)\n" +
	"\n" +
	"G2A3\t1\t2\t4\n" +
	"G2A3\t2\t0\t1\n" +
	"\n" +
	"#C2T5|5C2T\ti\tmm\tn\n" +
	"# C2T5|5C2T  C to T mismatches towards the 5' end,\n" +
	"#            conditional on a C to T mismatch at the most 5' position\n" +
	"C2T5|5C2T\t1\t1\t1\n" +
	"C2T5|5C2T\t2\t0\t0\n" +
	"\n" +
	"#G2A5|5C2T\ti\tmm\tn\n" +
	"# G2A5|5C2T  G to A mismatches towards the 5' end,\n" +
	"#            conditional on a C to T mismatch at the most 5' position\n" +
	"G2A5|5C2T\t1\t0\t0\n" +
	"G2A5|5C2T\t2\t0\t0\n" +
	"\n" +
	"#C2T5|3G2A\ti\tmm\tn\n" +
	"# C2T5|3G2A  C to T mismatches towards the 5' end,\n" +
	"#            conditional on a G to A mismatch at the most 3' position\n" +
	"C2T5|3G2A\t1\t0\t0\n" +
	"C2T5|3G2A\t2\t0\t0\n" +
	"\n" +
	"#G2A5|3G2A\ti\tmm\tn\n" +
	"# G2A5|3G2A  G to A mismatches towards the 5' end,\n" +
	"#            conditional on a G to A mismatch at the most 3' position\n" +
	"G2A5|3G2A\t1\t0\t0\n" +
	"G2A5|3G2A\t2\t0\t0\n" +
	"\n" +
	"#C2T3|5C2T\ti\tmm\tn\n" +
	"# C2T3|5C2T  C to T mismatches towards the 3' end,\n" +
	"#            conditional on a C to T mismatch at the most 5' position\n" +
	"C2T3|5C2T\t1\t0\t0\n" +
	"C2T3|5C2T\t2\t0\t0\n" +
	"\n" +
	"#G2A3|5C2T\ti\tmm\tn\n" +
	"# G2A3|5C2T  G to A mismatches towards the 3' end,\n" +
	"#            conditional on a C to T mismatch at the most 5' position\n" +
	"G2A3|5C2T\t1\t0\t0\n" +
	"G2A3|5C2T\t2\t0\t0\n" +
	"\n" +
	"#C2T3|3G2A\ti\tmm\tn\n" +
	"# C2T3|3G2A  C to T mismatches towards the 3' end,\n" +
	"#            conditional on a G to A mismatch at the most 3' position\n" +
	"C2T3|3G2A\t1\t0\t0\n" +
	"C2T3|3G2A\t2\t0\t0\n" +
	"\n" +
	"#G2A3|3G2A\ti\tmm\tn\n" +
	"# G2A3|3G2A  G to A mismatches towards the 3' end,\n" +
	"#            conditional on a G to A mismatch at the most 3' position\n" +
	"G2A3|3G2A\t1\t0\t0\n" +
	"G2A3|3G2A\t2\t0\t0\n" +
	"\n" +
	"#LEN\tlen\tn\t5C2T\t3C2T\t5G2A\t3G2A\n" +
	"# LEN   fragment length distribution\n" +
	"# len   fragment length, including clipped bases\n" +
	"# n     number of fragments\n" +
	"# 5C2T  number of fragments with a C to T mismatch at the most 5' position (likewise 3C2T, 5G2A, 3G2A)\n" +
	"\n" +
	"LEN\t1\t0\t0\t0\t0\t0\n" +
	"LEN\t2\t0\t0\t0\t0\t0\n" +
	"LEN\t3\t1\t1\t0\t0\t0\n" +
	"\n"

func smallTables() *damage.Tables {
	t := damage.NewTables(2, 100)
	t.Ends[damage.FivePrime][0].Counts = damage.Counts{C: 3, C2T: 1, G: 2}
	t.Ends[damage.FivePrime][1].Counts = damage.Counts{C: 1}
	t.Ends[damage.ThreePrime][0].Counts = damage.Counts{G: 4, G2A: 2}
	t.Ends[damage.ThreePrime][1].Counts = damage.Counts{G: 1}
	t.Ends[damage.FivePrime][0].Cond[damage.FiveC2T] = damage.Counts{C: 1, C2T: 1}
	t.Lengths[3].N = 1
	t.Lengths[3].Cond[damage.FiveC2T] = 1
	return t
}

func TestWrite(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, smallTables(), DoubleStranded); err != nil {
		t.Fatal(err)
	}
	if sb.String() != golden {
		t.Errorf("unexpected report:\n%s", sb.String())
	}
}

func TestWriteWithoutLengths(t *testing.T) {
	var sb strings.Builder
	tables := damage.NewTables(3, 100)
	tables.Lengths[0].N = 5
	if err := Write(&sb, tables, damage.Categories); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sb.String(), "LEN") {
		t.Error("length block should be omitted when only bucket 0 is filled")
	}
	// 4 unconditional + 2 windows * 4 categories * 2 substitutions
	if got := strings.Count(sb.String(), "\ti\tmm\tn\n"); got != 20 {
		t.Errorf("expected 20 tables, found %d", got)
	}
}

// The report always carries all four conditional categories; the two-category
// layouts are projections of the same counts, not a different tally.
func TestProjection(t *testing.T) {
	tests := []struct {
		mode string
		want []damage.Category
	}{
		{"all", damage.Categories},
		{"", damage.Categories},
		{"ds", []damage.Category{damage.FiveC2T, damage.ThreeG2A}},
		{"ss", []damage.Category{damage.FiveC2T, damage.ThreeC2T}},
	}
	for _, test := range tests {
		got, err := Projection(test.mode)
		if err != nil || !reflect.DeepEqual(got, test.want) {
			t.Errorf("Projection(%q): got %v %v", test.mode, got, err)
		}
	}
	if _, err := Projection("both"); err == nil {
		t.Error("expected an error for an unknown mode")
	}

	full := smallTables()
	var all, ds strings.Builder
	Write(&all, full, damage.Categories)
	Write(&ds, full, DoubleStranded)
	for _, line := range strings.Split(ds.String(), "\n") {
		if !strings.Contains(all.String(), line) {
			t.Errorf("projected line %q missing from the full report", line)
		}
	}
	if strings.Contains(ds.String(), "|3C2T") || strings.Contains(ds.String(), "|5G2A") {
		t.Error("ds projection should only report 5C2T and 3G2A")
	}
}

func TestRead(t *testing.T) {
	tables, cats, err := Read(strings.NewReader(golden))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cats, DoubleStranded) {
		t.Errorf("categories: got %v", cats)
	}
	want := smallTables()
	want.Lengths = want.Lengths[:4]
	if !reflect.DeepEqual(tables, want) {
		t.Errorf("got %+v, want %+v", tables, want)
	}

	var sb strings.Builder
	if err = Write(&sb, tables, cats); err != nil {
		t.Fatal(err)
	}
	if sb.String() != golden {
		t.Error("rewriting a parsed report should reproduce it")
	}
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"empty":           "# nothing here\n\n",
		"whitespace only": " \t\n\t\n",
		"unknown label":   "C2X5\t1\t0\t0\n",
		"bad condition":   "C2T5|9C2T\t1\t0\t0\n",
		"mm exceeds n":    "C2T5\t1\t3\t2\n",
		"skipped offset":  "C2T5\t1\t0\t0\nC2T5\t3\t0\t0\n",
		"columns":         "C2T5\t1\t0\n",
		"negative":        "C2T5\t1\t-1\t0\n",
		"missing table":   "C2T5\t1\t0\t0\nC2T3\t1\t0\t0\nG2A5\t1\t0\t0\n",
		"ragged window":   "C2T5\t1\t0\t0\nC2T3\t1\t0\t0\nC2T3\t2\t0\t0\nG2A5\t1\t0\t0\nG2A3\t1\t0\t0\n",
		"length columns":  "LEN\t1\t2\n",
		"duplicate len":   "LEN\t1\t0\t0\t0\t0\t0\nLEN\t1\t0\t0\t0\t0\t0\n",
		"half conditions": "C2T5\t1\t0\t0\nC2T3\t1\t0\t0\nG2A5\t1\t0\t0\nG2A3\t1\t0\t0\nC2T5|5C2T\t1\t0\t0\n",
	}
	for name, input := range tests {
		if _, _, err := Read(strings.NewReader(input)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestReadWhitespaceLines(t *testing.T) {
	padded := strings.Replace(golden, "\n\n", "\n \t\n\t\n", -1)
	want, _, err := Read(strings.NewReader(golden))
	if err != nil {
		t.Fatal(err)
	}
	tables, cats, err := Read(strings.NewReader(padded))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tables, want) || !reflect.DeepEqual(cats, DoubleStranded) {
		t.Error("whitespace-only lines should be ignored")
	}

	name := filepath.Join(t.TempDir(), "padded.txt")
	if err = os.WriteFile(name, []byte(padded), 0644); err != nil {
		t.Fatal(err)
	}
	if tables, _, err = ReadFile(name); err != nil || !reflect.DeepEqual(tables, want) {
		t.Errorf("ReadFile: whitespace-only lines should be ignored (%v)", err)
	}
}

func TestFiles(t *testing.T) {
	name := filepath.Join(t.TempDir(), "report.txt")
	if err := WriteFile(name, smallTables(), DoubleStranded); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != golden {
		t.Error("file contents differ from Write")
	}
	tables, cats, err := ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if tables.Window != 2 || len(cats) != 2 || tables.Lengths[3].N != 1 {
		t.Errorf("got window %d categories %v", tables.Window, cats)
	}
}
