// Package filter decides which alignment records are eligible for damage counting.
package filter

import (
	"github.com/dasnellings/condamage/damage"
	"github.com/dasnellings/condamage/strand"
	"github.com/vertgenlab/gonomics/bed"
	"github.com/vertgenlab/gonomics/interval"
	"github.com/vertgenlab/gonomics/sam"
)

// SAM flag bits
const (
	Paired        uint16 = 0x1
	Unmapped      uint16 = 0x4
	Reverse       uint16 = 0x10
	Secondary     uint16 = 0x100
	QCFail        uint16 = 0x200
	Duplicate     uint16 = 0x400
	Supplementary uint16 = 0x800
)

// excluded regardless of settings
const alwaysExcluded = Unmapped | Secondary | QCFail | Duplicate | Supplementary

// Reason is the outcome of Check.
type Reason int

const (
	Pass Reason = iota
	FlagExcluded
	PairExcluded
	StrandExcluded
	OffTarget
	InExcludedRegion
	numReasons
)

var reasonNames = [numReasons]string{"eligible", "unmapped/secondary/supplementary/duplicate/qcfail", "paired", "strand", "off target", "excluded region"}

func (r Reason) String() string {
	if r < 0 || r >= numReasons {
		return "unknown"
	}
	return reasonNames[r]
}

// Settings configures read eligibility. Nil region trees disable region checks.
type Settings struct {
	ExcludePaired bool
	Strand        strand.Selection
	Targets       map[string]*interval.IntervalNode
	Exclude       map[string]*interval.IntervalNode
}

// Check returns Pass for eligible reads, or the first reason r was rejected.
func (s Settings) Check(r sam.Sam) Reason {
	switch {
	case r.Flag&alwaysExcluded != 0:
		return FlagExcluded
	case s.ExcludePaired && r.Flag&Paired != 0:
		return PairExcluded
	case !s.Strand.Keep(r.Flag&Reverse != 0):
		return StrandExcluded
	}

	if s.Targets == nil && s.Exclude == nil {
		return Pass
	}
	q := bed.Bed{Chrom: r.RName, ChromStart: int(r.Pos) - 1, ChromEnd: damage.AlignmentEnd(r), FieldsInitialized: 3}
	if s.Targets != nil && !overlaps(s.Targets, q) {
		return OffTarget
	}
	if s.Exclude != nil && overlaps(s.Exclude, q) {
		return InExcludedRegion
	}
	return Pass
}

func overlaps(tree map[string]*interval.IntervalNode, q bed.Bed) bool {
	if _, found := tree[q.Chrom]; !found {
		return false
	}
	return len(interval.Query(tree, q, "any")) > 0
}

// ReadRegions builds a region tree from one or more bed files.
// It returns nil when no files are given.
func ReadRegions(files ...string) map[string]*interval.IntervalNode {
	if len(files) == 0 {
		return nil
	}
	var regions []interval.Interval
	for _, f := range files {
		for _, b := range bed.Read(f) {
			regions = append(regions, b)
		}
	}
	return RegionTree(regions)
}

// RegionTree builds a region tree from intervals.
func RegionTree(regions []interval.Interval) map[string]*interval.IntervalNode {
	if len(regions) == 0 {
		return make(map[string]*interval.IntervalNode)
	}
	return interval.BuildTree(regions)
}

// Counter tallies Check outcomes.
type Counter [numReasons]int

// Add records one outcome.
func (c *Counter) Add(r Reason) {
	c[r]++
}

// Get returns the number of reads with outcome r.
func (c Counter) Get(r Reason) int {
	return c[r]
}

// Total returns the number of reads checked.
func (c Counter) Total() int {
	var ans int
	for i := range c {
		ans += c[i]
	}
	return ans
}
