package reference

import (
	"errors"
	"github.com/vertgenlab/gonomics/dna"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type countingStore struct {
	Sequences
	fetches []string
}

func (s *countingStore) Fetch(name string, length int) ([]dna.Base, error) {
	s.fetches = append(s.fetches, name)
	return s.Sequences.Fetch(name, length)
}

func TestCache(t *testing.T) {
	store := &countingStore{Sequences: Sequences{
		"chr1": dna.StringToBases("ACGTacgt"),
		"chr2": dna.StringToBases("GGCC"),
	}}
	c := NewCache(store)
	for _, name := range []string{"chr1", "chr1", "chr2", "chr2", "chr1"} {
		if _, err := c.Get(name); err != nil {
			t.Fatal(err)
		}
	}
	if !reflect.DeepEqual(store.fetches, []string{"chr1", "chr2", "chr1"}) {
		t.Errorf("fetches: got %v", store.fetches)
	}
	if c.Loads() != 3 {
		t.Errorf("loads: got %d", c.Loads())
	}

	seq, _ := c.Get("chr1")
	if dna.BasesToString(seq) != "ACGTACGT" {
		t.Errorf("sequence should be upper case, got %s", dna.BasesToString(seq))
	}
	if dna.BasesToString(store.Sequences["chr1"]) != "ACGTacgt" {
		t.Error("cache modified the store's sequence")
	}
}

func TestCacheMissing(t *testing.T) {
	c := NewCache(Sequences{"chr1": dna.StringToBases("ACGT")})
	if _, err := c.Get("chr1"); err != nil {
		t.Fatal(err)
	}
	_, err := c.Get("chrUn")
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) || lookupErr.Contig != "chrUn" || !errors.Is(err, ErrMissingContig) {
		t.Errorf("expected a LookupError for chrUn, got %v", err)
	}
	if _, err = c.Get("chr1"); err != nil {
		t.Errorf("cache should recover after a failed lookup: %v", err)
	}
}

func TestMissingContigs(t *testing.T) {
	store := Sequences{"chr1": nil, "chr2": nil}
	got := MissingContigs(store, []string{"chr1", "chrX", "chr2", "chrY"})
	if !reflect.DeepEqual(got, []string{"chrX", "chrY"}) {
		t.Errorf("got %v", got)
	}
}

func TestFasta(t *testing.T) {
	dir := t.TempDir()
	fa := filepath.Join(dir, "ref.fa")
	if err := os.WriteFile(fa, []byte(">chr1\nACGTacgtNN\n>chr2\nGGGG\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fa+".fai", []byte("chr1\t10\t6\t10\t11\nchr2\t4\t23\t4\t5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := OpenFasta(fa)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if Describe(f.Index()) != "chr1, chr2" {
		t.Errorf("Describe: got %s", Describe(f.Index()))
	}

	c := NewCache(f)
	seq, err := c.Get("chr1")
	if err != nil {
		t.Fatal(err)
	}
	if dna.BasesToString(seq) != "ACGTACGTNN" {
		t.Errorf("chr1: got %s", dna.BasesToString(seq))
	}
	seq, err = c.Get("chr2")
	if err != nil || dna.BasesToString(seq) != "GGGG" {
		t.Errorf("chr2: got %s (%v)", dna.BasesToString(seq), err)
	}
	if _, err = c.Get("chr3"); !errors.Is(err, ErrMissingContig) {
		t.Errorf("chr3: expected missing contig, got %v", err)
	}

	if _, err = OpenFasta(filepath.Join(dir, "absent.fa")); err == nil {
		t.Error("expected an error for a missing fasta")
	}
	unindexed := filepath.Join(dir, "unindexed.fa")
	if err = os.WriteFile(unindexed, []byte(">chr1\nACGT\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err = OpenFasta(unindexed); err == nil {
		t.Error("expected an error for a fasta without an index")
	}
}
