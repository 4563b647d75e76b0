package main

import (
	"flag"
	"fmt"
	"github.com/dasnellings/condamage/damage"
	"github.com/dasnellings/condamage/report"
	"github.com/vertgenlab/gonomics/exception"
	"golang.org/x/exp/slices"
	"log"
)

func mergeUsage(mergeFlags *flag.FlagSet) {
	fmt.Print(
		"merge - sum reports generated with the same window size from independent inputs\n\n" +
			"Usage:\n" +
			"  condamage merge [options] a.txt b.txt ... > merged.txt\n\n" +
			"Options:\n")
	mergeFlags.PrintDefaults()
}

func runMerge(args []string) {
	var err error
	mergeFlags := flag.NewFlagSet("merge", flag.ExitOnError)
	output := mergeFlags.String("o", "stdout", "Output report file.")
	verbose := mergeFlags.Int("verbose", 0, "Level of verbosity in log.")

	err = mergeFlags.Parse(args)
	exception.PanicOnErr(err)
	mergeFlags.Usage = func() { mergeUsage(mergeFlags) }

	if mergeFlags.NArg() == 0 {
		mergeFlags.Usage()
		errExit("\nERROR: must specify at least one report")
	}

	merged, cats, err := mergeReports(mergeFlags.Args(), *verbose)
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
	if err = report.WriteFile(*output, merged, cats); err != nil {
		errExit("ERROR: " + err.Error())
	}
}

// mergeReports sums the tables of every report. All reports must share the
// window size and the set of conditional categories.
func mergeReports(files []string, verbose int) (*damage.Tables, []damage.Category, error) {
	var merged *damage.Tables
	var cats []damage.Category
	for _, file := range files {
		t, c, err := report.ReadFile(file)
		if err != nil {
			return nil, nil, err
		}
		if verbose > 0 {
			log.Printf("Read %s (window %d)\n", file, t.Window)
		}
		if merged == nil {
			merged, cats = t, c
			continue
		}
		if !slices.Equal(cats, c) {
			return nil, nil, fmt.Errorf("%s reports conditional tables %v, expected %v", file, c, cats)
		}
		if merged, err = damage.Merge(merged, t); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", file, err)
		}
	}
	return merged, cats, nil
}
