package report

import (
	"bufio"
	"fmt"
	"github.com/dasnellings/condamage/damage"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/slices"
	"io"
	"strconv"
	"strings"
)

// tableKey identifies one positional table; cat is -1 for unconditional tables.
type tableKey struct {
	end damage.End
	sub damage.Substitution
	cat damage.Category
}

type row struct {
	mm, n uint64
}

type parser struct {
	tables  map[tableKey][]row
	order   []tableKey
	lengths map[int]damage.LengthBucket
	maxLen  int
	lineNum int
}

func newParser() *parser {
	return &parser{
		tables:  make(map[tableKey][]row),
		lengths: make(map[int]damage.LengthBucket),
	}
}

// Read parses a report produced by Write. It returns the tables and the conditional
// categories present in the report.
func Read(r io.Reader) (*damage.Tables, []damage.Category, error) {
	p := newParser()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := p.line(scanner.Text()); err != nil {
			return nil, nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return p.finish()
}

// ReadFile parses the report in filename, which may be gzipped.
func ReadFile(filename string) (*damage.Tables, []damage.Category, error) {
	p := newParser()
	file := fileio.EasyOpen(filename)
	defer func() { exception.PanicOnErr(file.Close()) }()
	var line string
	var done bool
	for line, done = fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		if err := p.line(line); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return p.finish()
}

func (p *parser) line(line string) error {
	p.lineNum++
	line = strings.TrimRight(line, "\r\n")
	if line == "" || line[0] == '#' {
		return nil
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	if fields[0] == "LEN" {
		return p.lengthRow(fields)
	}
	if len(fields) != 4 {
		return p.errorf("expected 4 columns, found %d", len(fields))
	}
	key, err := parseLabel(fields[0])
	if err != nil {
		return p.errorf("%v", err)
	}
	vals, err := parseUints(fields[1:])
	if err != nil {
		return p.errorf("%v", err)
	}
	offset, mm, n := vals[0], vals[1], vals[2]
	if mm > n {
		return p.errorf("%s: %d mismatches exceed %d total", fields[0], mm, n)
	}
	rows, seen := p.tables[key]
	if !seen {
		p.order = append(p.order, key)
	}
	if offset != uint64(len(rows)+1) {
		return p.errorf("%s: expected offset %d, found %d", fields[0], len(rows)+1, offset)
	}
	p.tables[key] = append(rows, row{mm: mm, n: n})
	return nil
}

func (p *parser) lengthRow(fields []string) error {
	if len(fields) != 2+int(damage.NumCategories)+1 {
		return p.errorf("expected %d columns in length row, found %d", 2+int(damage.NumCategories)+1, len(fields))
	}
	vals, err := parseUints(fields[1:])
	if err != nil {
		return p.errorf("%v", err)
	}
	if vals[0] >= damage.MaxLengthCapacity {
		return p.errorf("length %d exceeds the largest histogram capacity", vals[0])
	}
	length := int(vals[0])
	if _, dup := p.lengths[length]; dup {
		return p.errorf("length %d appears twice", length)
	}
	b := damage.LengthBucket{N: vals[1]}
	for k := range b.Cond {
		b.Cond[k] = vals[2+k]
	}
	p.lengths[length] = b
	if length > p.maxLen {
		p.maxLen = length
	}
	return nil
}

func (p *parser) finish() (*damage.Tables, []damage.Category, error) {
	window := -1
	var cats []damage.Category
	for _, key := range p.order {
		if window == -1 {
			window = len(p.tables[key])
		}
		if len(p.tables[key]) != window {
			return nil, nil, fmt.Errorf("table %s has %d rows, expected %d", keyLabel(key), len(p.tables[key]), window)
		}
		if key.cat >= 0 && !slices.Contains(cats, key.cat) {
			cats = append(cats, key.cat)
		}
	}
	if window <= 0 {
		return nil, nil, fmt.Errorf("no damage tables found")
	}
	for _, sub := range subs {
		for _, end := range ends {
			if _, found := p.tables[tableKey{end, sub, -1}]; !found {
				return nil, nil, fmt.Errorf("table %s missing", Label(sub, end))
			}
		}
	}
	slices.Sort(cats)
	for _, c := range cats {
		for _, sub := range subs {
			for _, end := range ends {
				if _, found := p.tables[tableKey{end, sub, c}]; !found {
					return nil, nil, fmt.Errorf("table %s missing", CondLabel(sub, end, c))
				}
			}
		}
	}

	t := damage.NewTables(window, p.maxLen+1)
	for key, rows := range p.tables {
		for i := range rows {
			if key.cat < 0 {
				t.Ends[key.end][i].Counts.Set(key.sub, rows[i].mm, rows[i].n)
			} else {
				t.Ends[key.end][i].Cond[key.cat].Set(key.sub, rows[i].mm, rows[i].n)
			}
		}
	}
	for length, b := range p.lengths {
		t.Lengths[length] = b
	}
	return t, cats, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", p.lineNum, fmt.Sprintf(format, args...))
}

func keyLabel(key tableKey) string {
	if key.cat < 0 {
		return Label(key.sub, key.end)
	}
	return CondLabel(key.sub, key.end, key.cat)
}

// parseLabel splits labels such as C2T5 or G2A3|5C2T.
func parseLabel(label string) (tableKey, error) {
	key := tableKey{cat: -1}
	base, cond, hasCond := strings.Cut(label, "|")
	if len(base) != 4 {
		return key, fmt.Errorf("unknown table %q", label)
	}
	switch base[:3] {
	case "C2T":
		key.sub = damage.C2T
	case "G2A":
		key.sub = damage.G2A
	default:
		return key, fmt.Errorf("unknown table %q", label)
	}
	switch base[3] {
	case '5':
		key.end = damage.FivePrime
	case '3':
		key.end = damage.ThreePrime
	default:
		return key, fmt.Errorf("unknown table %q", label)
	}
	if hasCond {
		c, ok := damage.ParseCategory(cond)
		if !ok {
			return key, fmt.Errorf("unknown condition in %q", label)
		}
		key.cat = c
	}
	return key, nil
}

func parseUints(fields []string) ([]uint64, error) {
	ans := make([]uint64, len(fields))
	var err error
	for i := range fields {
		if ans[i], err = strconv.ParseUint(fields[i], 10, 64); err != nil {
			return nil, err
		}
	}
	return ans, nil
}
