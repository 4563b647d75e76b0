package main

import (
	"flag"
	"fmt"
	"github.com/dasnellings/condamage/count"
	"github.com/dasnellings/condamage/damage"
	"github.com/dasnellings/condamage/strand"
	"github.com/pkg/profile"
	"github.com/vertgenlab/gonomics/exception"
	"os"
	"strings"
)

func countUsage(countFlags *flag.FlagSet) {
	fmt.Print(
		"count - tabulate C>T and G>A mismatches by distance from each read end, overall and\n" +
			"\tconditioned on a damage-like mismatch at the first or last aligned base\n\n" +
			"Usage:\n" +
			"  condamage count [options] -i input.bam -r reference.fasta > report.txt\n\n" +
			"Options:\n")
	countFlags.PrintDefaults()
}

// inputFiles is a custom type that gets filled by flag.Parse()
type inputFiles []string

// String to satisfy flag.Value interface
func (i *inputFiles) String() string {
	return strings.Join(*i, " ")
}

// Set to satisfy flag.Value interface
func (i *inputFiles) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func runCount(args []string) {
	var err error
	countFlags := flag.NewFlagSet("count", flag.ExitOnError)
	s := count.DefaultSettings

	var exclude inputFiles
	cpuprofile := countFlags.Bool("cpuprofile", false, "write cpu profile")
	memprofile := countFlags.Bool("memprofile", false, "write memory profile")
	countFlags.StringVar(&s.Input, "i", "", "Input bam or sam file.")
	countFlags.StringVar(&s.Reference, "r", "", "Fasta file with the reference genome used to align the input. Must be indexed (.fai).")
	countFlags.StringVar(&s.Output, "o", s.Output, "Output report file.")
	countFlags.IntVar(&s.Window, "w", s.Window, fmt.Sprintf("Number of bases from each read end to tabulate (1-%d).", damage.MaxWindow))
	forwardOnly := countFlags.Bool("f", false, "Only count reads aligned to the forward strand.")
	reverseOnly := countFlags.Bool("rev", false, "Only count reads aligned to the reverse strand.")
	countFlags.BoolVar(&s.ExcludePaired, "excludePaired", false, "Skip reads flagged as paired. Use for libraries where merged reads are unpaired and unmerged pairs should not be counted.")
	countFlags.IntVar(&s.Thresholds.C5, "c5", 0, "Export reads with a C>T mismatch within # bases of the 5' end. Requires -export.")
	countFlags.IntVar(&s.Thresholds.C3, "c3", 0, "Export reads with a C>T mismatch within # bases of the 3' end. Requires -export.")
	countFlags.IntVar(&s.Thresholds.G5, "g5", 0, "Export reads with a G>A mismatch within # bases of the 5' end. Requires -export.")
	countFlags.IntVar(&s.Thresholds.G3, "g3", 0, "Export reads with a G>A mismatch within # bases of the 3' end. Requires -export.")
	countFlags.StringVar(&s.Export, "export", "", "Output bam file for reads passing any of -c5, -c3, -g5, -g3.")
	countFlags.IntVar(&s.MaxLen, "maxLen", s.MaxLen, fmt.Sprintf("Longest fragment length tabulated in the length histogram (%d-%d).", damage.MinLengthCapacity, damage.MaxLengthCapacity))
	countFlags.StringVar(&s.Targets, "targets", "", "Bed file. Only reads overlapping these regions are counted.")
	countFlags.Var(&exclude, "exclude", "Bed file(s) with regions to exclude. May be declared more than once. Any read OVERLAPPING an excluded region is skipped.")
	countFlags.StringVar(&s.Conditional, "conditional", s.Conditional, "Conditional tables to report: all, ds (5C2T and 3G2A), or ss (5C2T and 3C2T).")
	countFlags.BoolVar(&s.Graph, "graph", false, "Print terminal plots of the damage profile and length distribution to stderr.")
	countFlags.StringVar(&s.PDF, "pdf", "", "Draw the damage profile to a pdf file.")
	countFlags.IntVar(&s.Verbose, "verbose", 0, "Level of verbosity in log.")

	err = countFlags.Parse(args)
	exception.PanicOnErr(err)
	countFlags.Usage = func() { countUsage(countFlags) }

	if *memprofile && *cpuprofile {
		countFlags.Usage()
		errExit("\nERROR: -memprofile and -cpuprofile are mutually exclusive.")
	}
	if *memprofile {
		defer profile.Start(profile.MemProfile).Stop()
	}
	if *cpuprofile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	s.Strand, err = strand.FromFlags(*forwardOnly, *reverseOnly)
	if err != nil {
		countFlags.Usage()
		errExit("\nERROR: -f and -rev: " + err.Error())
	}
	s.Exclude = exclude
	s.CommandLine = strings.Join(os.Args, " ")

	if err = s.Validate(); err != nil {
		countFlags.Usage()
		errExit("\nERROR: " + err.Error())
	}

	tables, summary, err := count.Count(s)
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
	summary.Log(tables)
}
