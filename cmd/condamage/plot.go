package main

import (
	"flag"
	"fmt"
	"github.com/dasnellings/condamage/damage"
	"github.com/dasnellings/condamage/graph"
	"github.com/dasnellings/condamage/report"
	"github.com/vertgenlab/gonomics/exception"
	"os"
	"path/filepath"
)

func plotUsage(plotFlags *flag.FlagSet) {
	fmt.Print(
		"plot - draw mismatch frequency by distance from the 5' and 3' ends from a report\n\n" +
			"Usage:\n" +
			"  condamage plot [options] -i report.txt -o damage.pdf\n\n" +
			"Options:\n")
	plotFlags.PrintDefaults()
}

func runPlot(args []string) {
	var err error
	plotFlags := flag.NewFlagSet("plot", flag.ExitOnError)
	opt := graph.DefaultOptions

	input := plotFlags.String("i", "", "Input report from 'condamage count' or 'condamage merge'.")
	output := plotFlags.String("o", "", "Output pdf file.")
	plotFlags.StringVar(&opt.Title, "t", "", "Plot title. Defaults to the file name of the report.")
	plotFlags.StringVar(&opt.Mode, "mode", opt.Mode, "Conditional curves to draw: ds, ss, or all.")
	plotFlags.Float64Var(&opt.Scale, "scale", opt.Scale, "Scale factor for the figure size.")
	plotFlags.BoolVar(&opt.Wide, "wide", opt.Wide, "Use a 16:9 figure.")
	ascii := plotFlags.Bool("graph", false, "Also print terminal plots to stderr.")

	err = plotFlags.Parse(args)
	exception.PanicOnErr(err)
	plotFlags.Usage = func() { plotUsage(plotFlags) }

	if *input == "" || *output == "" {
		plotFlags.Usage()
		errExit("\nERROR: must specify a report (-i) and a pdf (-o)")
	}

	t, err := plotReport(*input, *output, opt)
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
	if *ascii {
		fmt.Fprint(os.Stderr, graph.Preview(t))
	}
}

// plotReport draws the report in input to the pdf output. The title defaults to
// the name of the report file.
func plotReport(input, output string, opt graph.Options) (*damage.Tables, error) {
	t, cats, err := report.ReadFile(input)
	if err != nil {
		return nil, err
	}
	if err = graph.Require(opt.Mode, cats); err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return t, graph.WritePDF(output, t, withDefaultTitle(opt, input))
}

func withDefaultTitle(opt graph.Options, input string) graph.Options {
	if opt.Title == "" {
		opt.Title = filepath.Base(input)
	}
	return opt
}
