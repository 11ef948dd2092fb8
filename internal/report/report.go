// Package report builds the exploratory summary of a table and exposes the
// hypothesis tests that operate on its columns.
package report

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/JonMunkholm/rreport/internal/dataset"
	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoTable is returned by operations on a report that was not generated
// from a table.
var ErrNoTable = errors.New("report has no table")

// Options controls report generation.
type Options struct {
	// SampleRows is the number of leading rows shown as examples.
	SampleRows int
	// TopValues is the number of most frequent values listed per
	// categorical column.
	TopValues int
	// MissingWarnRatio flags columns whose missing share reaches it.
	MissingWarnRatio float64
	// Correlations enables the Pearson matrix among numeric columns.
	Correlations bool
}

// DefaultOptions returns the options used by the console.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		TopValues:        5,
		MissingWarnRatio: 0.5,
		Correlations:     true,
	}
}

// Report is the exploratory analysis of one table.
type Report struct {
	Name     string
	Rows     int
	Cols     int
	Columns  []ColumnSummary
	Corr     *CorrMatrix
	Header   []string
	Samples  [][]string
	Warnings []string

	DuplicateRows int

	table *dataset.Table
	opt   Options
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Name    string
	Kind    dataset.Kind
	NonNull int
	Missing int
	Unique  int

	Numeric   *NumericSummary
	TopValues []ValueCount
}

// MissingRatio returns the share of missing cells.
func (c ColumnSummary) MissingRatio() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) / float64(total)
}

// NumericSummary holds descriptive statistics of a numeric column.
type NumericSummary struct {
	Min      float64
	Max      float64
	Mean     float64
	Median   float64
	Std      float64
	Q25      float64
	Q75      float64
	Skewness float64
}

// ValueCount is a value and its frequency.
type ValueCount struct {
	Value string
	Count int
}

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Generate analyses t. The returned report keeps a reference to t, which
// is how a session verifies that a report belongs to its table.
func Generate(t *dataset.Table, opt Options) (*Report, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	if opt.SampleRows < 0 || opt.TopValues < 0 {
		return nil, fmt.Errorf("report options: negative sample or top-value count")
	}

	r := &Report{
		Name:   t.Name(),
		Rows:   t.NumRows(),
		Cols:   t.NumCols(),
		Header: t.ColumnNames(),
		table:  t,
		opt:    opt,
	}

	for _, col := range t.Columns() {
		cs := summarizeColumn(col, opt.TopValues)
		r.Columns = append(r.Columns, cs)

		switch {
		case cs.NonNull == 0 && cs.Missing > 0:
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s has only missing values", col.Name()))
		case cs.Unique == 1:
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s has a constant value", col.Name()))
		}
		if opt.MissingWarnRatio > 0 && cs.NonNull > 0 && cs.MissingRatio() >= opt.MissingWarnRatio {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s has %.1f%% missing values", col.Name(), 100*cs.MissingRatio()))
		}
	}

	r.DuplicateRows = countDuplicateRows(t)
	if r.DuplicateRows > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("dataset has %d duplicate rows", r.DuplicateRows))
	}

	if opt.Correlations {
		r.Corr = correlations(t)
	}

	if n := min(opt.SampleRows, t.NumRows()); n > 0 {
		r.Samples = t.Rows(0, n)
	}
	return r, nil
}

// Table returns the table the report was generated from.
func (r *Report) Table() *dataset.Table {
	return r.table
}

func summarizeColumn(col *dataset.Column, top int) ColumnSummary {
	cs := ColumnSummary{
		Name:    col.Name(),
		Kind:    col.Kind(),
		Missing: col.MissingCount(),
	}
	cs.NonNull = col.Len() - cs.Missing

	counts := make(map[string]int)
	var order []string
	for _, v := range col.Present() {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	cs.Unique = len(order)

	if col.Kind().IsNumeric() {
		cs.Numeric = summarizeNumeric(present(col.Floats()))
	}

	if col.Kind() == dataset.KindCategorical || col.Kind() == dataset.KindBoolean {
		vc := make([]ValueCount, len(order))
		for i, v := range order {
			vc[i] = ValueCount{Value: v, Count: counts[v]}
		}
		sort.SliceStable(vc, func(i, j int) bool { return vc[i].Count > vc[j].Count })
		if len(vc) > top {
			vc = vc[:top]
		}
		cs.TopValues = vc
	}
	return cs
}

func summarizeNumeric(x []float64) *NumericSummary {
	if len(x) == 0 {
		return nil
	}
	ns := &NumericSummary{}
	ns.Min, _ = mstats.Min(x)
	ns.Max, _ = mstats.Max(x)
	ns.Mean, _ = mstats.Mean(x)
	ns.Median, _ = mstats.Median(x)
	ns.Q25, _ = mstats.Percentile(x, 25)
	ns.Q75, _ = mstats.Percentile(x, 75)
	if len(x) > 1 {
		ns.Std, _ = mstats.StandardDeviationSample(x)
	} else {
		ns.Std = math.NaN()
	}
	if len(x) > 2 && ns.Std > 0 {
		ns.Skewness = stat.Skew(x, nil)
	} else {
		ns.Skewness = math.NaN()
	}
	return ns
}

// correlations computes pairwise Pearson coefficients over rows where both
// values are present.
func correlations(t *dataset.Table) *CorrMatrix {
	names := t.NumericColumns()
	if len(names) < 2 {
		return nil
	}

	values := make([][]float64, len(names))
	for i, n := range names {
		col, _ := t.Column(n)
		values[i] = col.Floats()
	}

	m := &CorrMatrix{Columns: names, Values: make([][]float64, len(names))}
	for i := range names {
		m.Values[i] = make([]float64, len(names))
	}
	for i := range names {
		m.Values[i][i] = 1
		for j := i + 1; j < len(names); j++ {
			x, y := pairwise(values[i], values[j])
			c := math.NaN()
			if len(x) > 1 {
				c = stat.Correlation(x, y, nil)
			}
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

func pairwise(a, b []float64) ([]float64, []float64) {
	var x, y []float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}

func present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func countDuplicateRows(t *dataset.Table) int {
	seen := make(map[string]bool, t.NumRows())
	dups := 0
	for i := 0; i < t.NumRows(); i++ {
		key := strings.Join(t.Row(i), "\x1f")
		if seen[key] {
			dups++
			continue
		}
		seen[key] = true
	}
	return dups
}
