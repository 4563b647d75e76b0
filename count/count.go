// Package count runs the single-pass damage counting pipeline over one
// alignment file and one indexed reference.
package count

import (
	"errors"
	"fmt"
	"github.com/dasnellings/condamage/damage"
	"github.com/dasnellings/condamage/filter"
	"github.com/dasnellings/condamage/graph"
	"github.com/dasnellings/condamage/reference"
	"github.com/dasnellings/condamage/report"
	"github.com/dasnellings/condamage/strand"
	"github.com/vertgenlab/gonomics/chromInfo"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"github.com/vertgenlab/gonomics/sam"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Settings for one counting run.
type Settings struct {
	Input         string
	Reference     string
	Output        string
	Window        int
	Strand        strand.Selection
	ExcludePaired bool
	Thresholds    damage.Thresholds
	Export        string
	MaxLen        int
	Targets       string
	Exclude       []string
	Conditional   string
	Graph         bool
	PDF           string
	CommandLine   string
	Verbose       int
}

// DefaultSettings holds the defaults used by the command line.
var DefaultSettings = Settings{
	Output:      "stdout",
	Window:      damage.DefaultWindow,
	MaxLen:      damage.DefaultMaxLength,
	Conditional: "all",
}

// Validate checks the settings before any file is opened.
func (s Settings) Validate() error {
	switch {
	case s.Input == "":
		return errors.New("an input alignment file is required")
	case s.Reference == "":
		return errors.New("an indexed reference fasta is required")
	case s.Window < 1 || s.Window > damage.MaxWindow:
		return fmt.Errorf("window size must be between 1 and %d, got %d", damage.MaxWindow, s.Window)
	case s.MaxLen < damage.MinLengthCapacity || s.MaxLen > damage.MaxLengthCapacity:
		return fmt.Errorf("maximum length must be between %d and %d, got %d", damage.MinLengthCapacity, damage.MaxLengthCapacity, s.MaxLen)
	}
	if err := s.Thresholds.Validate(s.Window); err != nil {
		return err
	}
	if s.Thresholds.Enabled() && s.Export == "" {
		return errors.New("an export file is required when retention thresholds are set")
	}
	if !s.Thresholds.Enabled() && s.Export != "" {
		return errors.New("an export file was given but all retention thresholds are 0")
	}
	if _, err := report.Projection(s.Conditional); err != nil {
		return err
	}
	return nil
}

// Summary describes a finished run.
type Summary struct {
	Filter    filter.Counter
	Counted   int
	Skipped   int
	Retained  int
	Truncated int // eligible reads longer than the histogram capacity
	Contigs   int
}

// Log writes the summary with log.Printf.
func (s Summary) Log(t *damage.Tables) {
	log.Printf("Reads seen: %d\n", s.Filter.Total())
	for i := range s.Filter {
		if r := filter.Reason(i); r != filter.Pass && s.Filter.Get(r) > 0 {
			log.Printf("Reads excluded (%s): %d\n", r, s.Filter.Get(r))
		}
	}
	log.Printf("Reads counted: %d\n", s.Counted)
	if s.Skipped > 0 {
		log.Printf("Reads skipped (inconsistent with reference): %d\n", s.Skipped)
	}
	if s.Truncated > 0 {
		log.Printf("Reads longer than the length histogram: %d\n", s.Truncated)
	}
	if s.Retained > 0 {
		log.Printf("Reads exported: %d\n", s.Retained)
	}
	log.Printf("Contigs loaded: %d\n", s.Contigs)

	ls := t.Lengths.Summarize(damage.Unconditional)
	log.Printf("Fragment length: n=%d mean=%.2f sd=%.2f median=%.0f\n", ls.Fragments, ls.Mean, ls.StdDev, ls.Median)
	for _, c := range damage.Categories {
		ls = t.Lengths.Summarize(damage.Conditional(c))
		if ls.Fragments == 0 {
			continue
		}
		log.Printf("Fragment length | %s: n=%d mean=%.2f sd=%.2f median=%.0f\n", c, ls.Fragments, ls.Mean, ls.StdDev, ls.Median)
	}
}

// Count runs the pipeline described by s and writes the report.
func Count(s Settings) (*damage.Tables, Summary, error) {
	var sum Summary
	if err := s.Validate(); err != nil {
		return nil, sum, err
	}
	cats, _ := report.Projection(s.Conditional)

	fa, err := reference.OpenFasta(s.Reference)
	if err != nil {
		return nil, sum, err
	}
	defer cleanup(fa)

	fs := filter.Settings{
		ExcludePaired: s.ExcludePaired,
		Strand:        s.Strand,
		Exclude:       filter.ReadRegions(s.Exclude...),
	}
	if s.Targets != "" {
		fs.Targets = filter.ReadRegions(s.Targets)
	}

	if s.Verbose > 0 {
		var total int
		for _, c := range fa.Index().Contigs() {
			total += c.Len
		}
		log.Printf("Reference %s: %d contigs, %d bases\n", s.Reference, len(fa.Index().Contigs()), total)
	}

	reads, header := sam.GoReadToChan(s.Input)
	if missing := reference.MissingContigs(fa, contigNames(header.Chroms)); len(missing) > 0 {
		log.Printf("WARNING: %d contigs in the alignment header are not in %s (first: %s). Reads on them will stop the run.\n",
			len(missing), s.Reference, missing[0])
	}

	var export func(sam.Sam)
	var out *fileio.EasyWriter
	var bw *sam.BamWriter
	if s.Export != "" {
		out = fileio.EasyCreate(s.Export)
		header.Text = append(header.Text, programLine(s.CommandLine))
		bw = sam.NewBamWriter(out, header)
		export = func(r sam.Sam) {
			sam.WriteToBamFileHandle(bw, r, 0)
		}
	}

	agg := damage.NewAggregator(s.Window, s.MaxLen, s.Thresholds)
	sum, err = process(reads, reference.NewCache(fa), fs, agg, export, s.Verbose)
	if bw != nil {
		exception.PanicOnErr(bw.Close())
		cleanup(out)
	}
	if err != nil {
		if s.Export != "" {
			discard(s.Export)
		}
		return nil, sum, fmt.Errorf("%w (reference contigs: %s)", err, reference.Describe(fa.Index()))
	}

	if err = report.WriteFile(s.Output, agg.Tables, cats); err != nil {
		return nil, sum, err
	}
	if s.Graph {
		fmt.Fprint(os.Stderr, graph.Preview(agg.Tables))
	}
	if s.PDF != "" {
		opt := graph.DefaultOptions
		opt.Title = filepath.Base(s.Input)
		if err = graph.WritePDF(s.PDF, agg.Tables, opt); err != nil {
			return nil, sum, err
		}
	}
	return agg.Tables, sum, nil
}

// process consumes reads until the channel closes. Reads inconsistent with the
// reference are skipped with a warning. A read on a contig the reference cannot
// supply stops the run.
func process(reads <-chan sam.Sam, cache *reference.Cache, fs filter.Settings, agg *damage.Aggregator, export func(sam.Sam), verbose int) (Summary, error) {
	var sum Summary
	var reason filter.Reason
	var ref []dna.Base
	var retain bool
	var err error
	for r := range reads {
		reason = fs.Check(r)
		sum.Filter.Add(reason)
		if reason != filter.Pass {
			continue
		}

		ref, err = cache.Get(r.RName)
		if err != nil {
			return sum, err
		}

		retain, _, err = agg.Add(r, ref)
		switch {
		case errors.Is(err, damage.ErrOutsideReference), errors.Is(err, damage.ErrMalformedRecord):
			log.Printf("WARNING: skipping read. %s\n", err)
			sum.Skipped++
			continue
		case err != nil:
			return sum, err
		}

		sum.Counted++
		if damage.FragmentLength(r) >= len(agg.Tables.Lengths) {
			sum.Truncated++
		}
		if retain && export != nil {
			export(r)
			sum.Retained++
		}
		if verbose > 0 && sum.Counted%1000000 == 0 {
			log.Printf("Reads counted: %d\n", sum.Counted)
		}
	}
	sum.Contigs = cache.Loads()
	return sum, nil
}

func contigNames(chroms []chromInfo.ChromInfo) []string {
	names := make([]string, len(chroms))
	for i := range chroms {
		names[i] = chroms[i].Name
	}
	return names
}

func programLine(cmdLine string) string {
	line := "@PG\tID:condamage\tPN:condamage"
	if cmdLine != "" {
		line += "\tCL:" + cmdLine
	}
	return line
}

// discard removes a partially written output. Reads still queued by the
// alignment reader are left unread since the run is ending.
func discard(filename string) {
	if err := os.Remove(filename); err != nil {
		log.Printf("WARNING: could not remove incomplete output %s: %s\n", filename, err)
	}
}

func cleanup(c io.Closer) {
	exception.PanicOnErr(c.Close())
}
