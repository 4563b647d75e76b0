package fai

import (
	"fmt"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"strconv"
	"strings"
)

// Index holds one entry per reference sequence of a samtools fasta index.
type Index struct {
	contigs []Contig       // in file order
	nameMap map[string]int // maps contig name to index in contigs
}

// Contig is one line of a fai file.
type Contig struct {
	Name         string // Name of this reference sequence
	Len          int    // Total length of this reference sequence, in bases
	Offset       int    // Offset within the FASTA file of this sequence's first base
	BasesPerLine int    // The number of bases on each line
	BytesPerLine int    // The number of bytes in each line, including the newline
}

// String method for Contig enables easy writing with the fmt package.
func (c Contig) String() string {
	return fmt.Sprintf("%s\t%d\t%d\t%d\t%d", c.Name, c.Len, c.Offset, c.BasesPerLine, c.BytesPerLine)
}

// String method for Index enables easy writing with the fmt package.
func (idx Index) String() string {
	answer := new(strings.Builder)
	for i := range idx.contigs {
		answer.WriteString(idx.contigs[i].String())
		answer.WriteByte('\n')
	}
	return answer.String()
}

// Len returns the length of the named contig and whether it is present in the index.
func (idx Index) Len(name string) (int, bool) {
	i, found := idx.nameMap[name]
	if !found {
		return 0, false
	}
	return idx.contigs[i].Len, true
}

// Names returns the contig names in sorted order.
func (idx Index) Names() []string {
	names := maps.Keys(idx.nameMap)
	slices.Sort(names)
	return names
}

// Contigs returns the index entries in file order.
func (idx Index) Contigs() []Contig {
	return idx.contigs
}

// ReadIndex reads a fai index file.
func ReadIndex(filename string) (Index, error) {
	file := fileio.EasyOpen(filename)
	var answer Index
	var line string
	var done bool
	var err error
	for line, done = fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		curr, parseErr := parseLine(line)
		if parseErr != nil {
			err = fmt.Errorf("malformed index file %s: %w", filename, parseErr)
			break
		}
		answer.contigs = append(answer.contigs, curr)
	}

	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return Index{}, err
	}

	answer.nameMap = make(map[string]int, len(answer.contigs))
	for i := range answer.contigs {
		if _, dup := answer.nameMap[answer.contigs[i].Name]; dup {
			return Index{}, fmt.Errorf("malformed index file %s: duplicate contig %s", filename, answer.contigs[i].Name)
		}
		answer.nameMap[answer.contigs[i].Name] = i
	}
	return answer, nil
}

func parseLine(line string) (Contig, error) {
	var curr Contig
	var err error
	col := strings.Split(line, "\t")
	if len(col) != 5 {
		return curr, fmt.Errorf("expected 5 columns on line: %s", line)
	}
	curr.Name = col[0]
	fields := []*int{&curr.Len, &curr.Offset, &curr.BasesPerLine, &curr.BytesPerLine}
	for i := range fields {
		if *fields[i], err = strconv.Atoi(col[i+1]); err != nil {
			return curr, err
		}
	}
	return curr, nil
}
