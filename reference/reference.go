// Package reference supplies contig sequences to the counting pipeline.
package reference

import (
	"errors"
	"fmt"
	"github.com/dasnellings/condamage/fai"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
	"os"
	"strings"
)

// ErrMissingContig is wrapped by a LookupError when the store has no such contig.
var ErrMissingContig = errors.New("not in fasta file")

// LookupError reports a contig that could not be retrieved. It is fatal for a run.
type LookupError struct {
	Contig string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("bam has region `%s', which could not be loaded from the reference: %v", e.Contig, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Store is a source of whole contig sequences.
type Store interface {
	Len(name string) (int, bool)
	Fetch(name string, length int) ([]dna.Base, error)
}

// Fasta is a Store backed by an indexed fasta file.
type Fasta struct {
	seeker *fasta.Seeker
	index  fai.Index
}

// OpenFasta opens filename, which must have a samtools index at filename.fai.
func OpenFasta(filename string) (*Fasta, error) {
	for _, name := range []string{filename, filename + ".fai"} {
		if _, err := os.Stat(name); err != nil {
			return nil, err
		}
	}
	index, err := fai.ReadIndex(filename + ".fai")
	if err != nil {
		return nil, err
	}
	return &Fasta{seeker: fasta.NewSeeker(filename, ""), index: index}, nil
}

func (f *Fasta) Len(name string) (int, bool) {
	return f.index.Len(name)
}

func (f *Fasta) Fetch(name string, length int) ([]dna.Base, error) {
	return fasta.SeekByName(f.seeker, name, 0, length)
}

// Index returns the fai index of the fasta file.
func (f *Fasta) Index() fai.Index {
	return f.index
}

func (f *Fasta) Close() error {
	return f.seeker.Close()
}

// Sequences is an in-memory Store keyed by contig name.
type Sequences map[string][]dna.Base

func (s Sequences) Len(name string) (int, bool) {
	seq, found := s[name]
	return len(seq), found
}

func (s Sequences) Fetch(name string, length int) ([]dna.Base, error) {
	seq, found := s[name]
	if !found {
		return nil, ErrMissingContig
	}
	if length > len(seq) {
		return nil, fmt.Errorf("requested %d bases from %s of length %d", length, name, len(seq))
	}
	ans := make([]dna.Base, length)
	copy(ans, seq)
	return ans, nil
}

// Cache holds the most recently requested contig. Requesting a different contig
// releases the previous sequence before loading the next.
type Cache struct {
	store Store
	name  string
	seq   []dna.Base
	loads int
}

// NewCache returns an empty Cache reading from store.
func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Get returns the upper-cased sequence of contig name.
func (c *Cache) Get(name string) ([]dna.Base, error) {
	if c.seq != nil && c.name == name {
		return c.seq, nil
	}
	c.name, c.seq = "", nil

	length, found := c.store.Len(name)
	if !found {
		return nil, &LookupError{Contig: name, Err: ErrMissingContig}
	}
	seq, err := c.store.Fetch(name, length)
	if err != nil {
		return nil, &LookupError{Contig: name, Err: err}
	}
	if len(seq) != length {
		return nil, &LookupError{Contig: name, Err: fmt.Errorf("expected %d bases, got %d", length, len(seq))}
	}
	dna.AllToUpper(seq)
	c.name, c.seq = name, seq
	c.loads++
	return seq, nil
}

// Loads returns the number of contigs fetched from the store so far.
func (c *Cache) Loads() int {
	return c.loads
}

// MissingContigs returns the names from want that store does not hold.
func MissingContigs(store Store, want []string) []string {
	var ans []string
	for _, name := range want {
		if _, found := store.Len(name); !found {
			ans = append(ans, name)
		}
	}
	return ans
}

// Describe lists the contigs in an index for error messages.
func Describe(idx fai.Index) string {
	names := idx.Names()
	if len(names) > 10 {
		names = append(names[:10], "...")
	}
	return strings.Join(names, ", ")
}
