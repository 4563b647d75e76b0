package main

import (
	"github.com/dasnellings/condamage/damage"
	"github.com/dasnellings/condamage/report"
	"path/filepath"
	"reflect"
	"testing"
)

func writeReport(t *testing.T, name string, tables *damage.Tables, cats []damage.Category) string {
	filename := filepath.Join(t.TempDir(), name)
	if err := report.WriteFile(filename, tables, cats); err != nil {
		t.Fatal(err)
	}
	return filename
}

func shard(window, c2t int) *damage.Tables {
	tables := damage.NewTables(window, 200)
	tables.Ends[damage.FivePrime][0].Counts = damage.Counts{C: 10, C2T: uint64(c2t), G: 8, G2A: 1}
	tables.Ends[damage.FivePrime][0].Cond[damage.FiveC2T] = damage.Counts{C: uint64(c2t), C2T: uint64(c2t)}
	tables.Lengths[50].N = 3
	tables.Lengths[50].Cond[damage.FiveC2T] = 1
	return tables
}

func TestMergeReports(t *testing.T) {
	a := writeReport(t, "a.txt", shard(5, 2), report.DoubleStranded)
	b := writeReport(t, "b.txt", shard(5, 3), report.DoubleStranded)

	merged, cats, err := mergeReports([]string{a, b}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cats, report.DoubleStranded) {
		t.Errorf("categories: got %v", cats)
	}
	want := damage.Counts{C: 20, C2T: 5, G: 16, G2A: 2}
	if got := merged.Ends[damage.FivePrime][0].Counts; got != want {
		t.Errorf("5' offset 1: got %+v, want %+v", got, want)
	}
	if got := merged.Ends[damage.FivePrime][0].Cond[damage.FiveC2T]; got.C2T != 5 {
		t.Errorf("5' offset 1 | 5C2T: got %+v", got)
	}
	if merged.Lengths[50].N != 6 || merged.Lengths[50].Cond[damage.FiveC2T] != 2 {
		t.Errorf("length 50: got %+v", merged.Lengths[50])
	}
}

func TestMergeReportsMismatch(t *testing.T) {
	a := writeReport(t, "a.txt", shard(5, 2), report.DoubleStranded)
	b := writeReport(t, "b.txt", shard(6, 2), report.DoubleStranded)
	c := writeReport(t, "c.txt", shard(5, 2), report.SingleStranded)

	if _, _, err := mergeReports([]string{a, b}, 0); err == nil {
		t.Error("expected an error merging different window sizes")
	}
	if _, _, err := mergeReports([]string{a, c}, 0); err == nil {
		t.Error("expected an error merging different conditional tables")
	}
}
