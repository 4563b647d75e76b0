// Package graph draws damage profiles as PDF figures and terminal previews.
package graph

import (
	"fmt"
	"github.com/dasnellings/condamage/damage"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/slices"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

// Trace is one mismatch frequency curve. Cond is -1 for unconditional curves.
type Trace struct {
	Sub  damage.Substitution
	Cond damage.Category
}

func (tr Trace) String() string {
	s := fmt.Sprintf("%c>%c", tr.Sub.String()[0], tr.Sub.String()[2])
	if tr.Cond >= 0 {
		c := tr.Cond.String()
		s += fmt.Sprintf(" | %c' %c>%c", c[0], c[1], c[3])
	}
	return s
}

var (
	c2t = Trace{damage.C2T, -1}
	g2a = Trace{damage.G2A, -1}
)

// Traces returns the curves drawn in the 5' and 3' panels for a plotting mode.
// "ds" conditions on the opposite end of a double-stranded library, "ss" on C>T at
// either end, and "all" draws every conditional curve.
func Traces(mode string) (five, three []Trace, err error) {
	switch mode {
	case "ds", "":
		five = []Trace{c2t, g2a, {damage.C2T, damage.ThreeG2A}}
		three = []Trace{c2t, g2a, {damage.G2A, damage.FiveC2T}}
	case "ss":
		five = []Trace{c2t, g2a, {damage.C2T, damage.ThreeC2T}}
		three = []Trace{c2t, g2a, {damage.C2T, damage.FiveC2T}}
	case "all":
		five = []Trace{c2t, g2a}
		for _, c := range damage.Categories {
			five = append(five, Trace{damage.C2T, c}, Trace{damage.G2A, c})
		}
		three = five
	default:
		return nil, nil, fmt.Errorf("unknown plot mode %q (expected ds, ss or all)", mode)
	}
	return five, three, nil
}

// Require returns an error if a conditional curve of mode needs a category
// missing from cats, the categories present in a report.
func Require(mode string, cats []damage.Category) error {
	five, three, err := Traces(mode)
	if err != nil {
		return err
	}
	for _, tr := range append(five, three...) {
		if tr.Cond >= 0 && !slices.Contains(cats, tr.Cond) {
			return fmt.Errorf("plot mode %s needs conditional tables for %s, which the report does not have", mode, tr.Cond)
		}
	}
	return nil
}

// Frequencies returns mismatch frequencies of one trace by offset, skipping offsets
// with no observations. Offsets are negated for the 3' end.
func Frequencies(t *damage.Tables, end damage.End, tr Trace) plotter.XYs {
	var mm, n uint64
	xys := make(plotter.XYs, 0, t.Window)
	for i, cell := range t.Ends[end] {
		if tr.Cond < 0 {
			mm, n = cell.Get(tr.Sub)
		} else {
			mm, n = cell.Cond[tr.Cond].Get(tr.Sub)
		}
		if n == 0 {
			continue
		}
		x := float64(i + 1)
		if end == damage.ThreePrime {
			x = -x
		}
		xys = append(xys, plotter.XY{X: x, Y: float64(mm) / float64(n)})
	}
	return xys
}

// Options control the figure.
type Options struct {
	Mode  string
	Title string
	Scale float64
	Wide  bool
}

// DefaultOptions draws the double-stranded traces on a wide figure.
var DefaultOptions = Options{Mode: "ds", Scale: 1.5, Wide: true}

// WritePDF draws the 5' and 3' damage panels side by side to filename.
func WritePDF(filename string, t *damage.Tables, opt Options) error {
	five, three, err := Traces(opt.Mode)
	if err != nil {
		return err
	}
	p5, ymax5, err := panel(t, damage.FivePrime, five)
	if err != nil {
		return err
	}
	p3, ymax3, err := panel(t, damage.ThreePrime, three)
	if err != nil {
		return err
	}

	ymax := ymax5
	if ymax3 > ymax {
		ymax = ymax3
	}
	if ymax == 0 {
		ymax = 1
	}
	for _, p := range []*plot.Plot{p5, p3} {
		p.Y.Min = 0
		p.Y.Max = ymax * 1.1
	}
	p5.Title.Text = opt.Title
	p5.X.Label.Text = "Mismatches towards 5' end"
	p5.Y.Label.Text = "Frequency"
	p3.X.Label.Text = "Mismatches towards 3' end"
	p3.Legend.Left = true

	scale := opt.Scale
	if scale <= 0 {
		scale = DefaultOptions.Scale
	}
	width, height := 6.4*vg.Inch, 4.8*vg.Inch
	if opt.Wide {
		width = height * 16 / 9
	}
	c := vgpdf.New(vg.Length(scale)*width, vg.Length(scale)*height)
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Centimeter,
		PadTop:    vg.Centimeter / 2,
		PadBottom: vg.Centimeter / 2,
		PadLeft:   vg.Centimeter / 2,
		PadRight:  vg.Centimeter / 2,
	}
	plots := [][]*plot.Plot{{p5, p3}}
	canvases := plot.Align(plots, tiles, dc)
	p5.Draw(canvases[0][0])
	p3.Draw(canvases[0][1])

	out := fileio.EasyCreate(filename)
	_, err = c.WriteTo(out)
	exception.PanicOnErr(out.Close())
	return err
}

// panel builds one side of the figure and returns the largest frequency below 1.
func panel(t *damage.Tables, end damage.End, traces []Trace) (*plot.Plot, float64, error) {
	p := plot.New()
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	var ymax float64
	for i, tr := range traces {
		xys := Frequencies(t, end, tr)
		if len(xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, 0, err
		}
		line.Color = plotutil.Color(i)
		if tr.Cond >= 0 {
			line.Dashes = plotutil.Dashes(1)
		}
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(tr.String(), line, points)
		for _, xy := range xys {
			if xy.Y != 1 && xy.Y > ymax {
				ymax = xy.Y
			}
		}
	}
	return p, ymax, nil
}
