// Package dataset holds the in-memory table model, the file loaders that
// produce it, and the pagination arithmetic used by the viewer.
//
// A Table is immutable once built. Loaders never mutate a table after
// returning it, and accessors hand out copies, so a *Table can be shared
// between the loader cache, a session and any number of readers.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// missingTokens are cell values treated as absent, matching the NA set most
// spreadsheet and dataframe tools recognise by default.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
}

// IsMissing reports whether a raw cell value counts as missing.
func IsMissing(cell string) bool {
	return missingTokens[strings.TrimSpace(cell)]
}

// Column is a named, typed sequence of cells.
type Column struct {
	name  string
	kind  Kind
	cells []string
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the inferred semantic type.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.cells) }

// Cell returns the raw text of cell i.
func (c *Column) Cell(i int) string { return c.cells[i] }

// IsMissing reports whether cell i is missing.
func (c *Column) IsMissing(i int) bool { return IsMissing(c.cells[i]) }

// Cells returns a copy of the raw cells.
func (c *Column) Cells() []string {
	out := make([]string, len(c.cells))
	copy(out, c.cells)
	return out
}

// Labels returns the cells with missing values normalised to "".
func (c *Column) Labels() []string {
	out := make([]string, len(c.cells))
	for i, v := range c.cells {
		if !IsMissing(v) {
			out[i] = strings.TrimSpace(v)
		}
	}
	return out
}

// Floats returns the cells parsed as float64. Missing or unparseable cells
// become NaN so positions stay aligned with other columns.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.cells))
	for i, v := range c.cells {
		out[i] = parseFloat(v)
	}
	return out
}

// Present returns the non-missing cells in order.
func (c *Column) Present() []string {
	out := make([]string, 0, len(c.cells))
	for _, v := range c.cells {
		if !IsMissing(v) {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

// Distinct returns the distinct non-missing values in order of first
// appearance.
func (c *Column) Distinct() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range c.cells {
		if IsMissing(v) {
			continue
		}
		v = strings.TrimSpace(v)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.cells {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// Table is an ordered set of equal-length columns.
type Table struct {
	name    string
	format  Format
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from a header and row-major records. Header names are
// normalised (blank names become "Unnamed: i", duplicates get a ".n" suffix),
// short records are padded with missing cells, and each column's kind is
// inferred from its values. Records longer than the header are rejected.
func New(name string, format Format, header []string, records [][]string) (*Table, error) {
	names := normalizeHeader(header)
	cols := make([][]string, len(names))
	for j := range cols {
		cols[j] = make([]string, len(records))
	}

	for i, rec := range records {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+1, len(names), len(rec))
		}
		for j := range names {
			if j < len(rec) {
				cols[j][i] = rec[j]
			}
		}
	}

	t := &Table{
		name:    name,
		format:  format,
		columns: make([]*Column, len(names)),
		index:   make(map[string]int, len(names)),
		rows:    len(records),
	}
	for j, n := range names {
		t.columns[j] = &Column{name: n, kind: InferKind(cols[j]), cells: cols[j]}
		t.index[n] = j
	}
	return t, nil
}

// Name returns the declared file name the table was loaded from.
func (t *Table) Name() string { return t.name }

// Format returns the source format.
func (t *Table) Format() Format { return t.format }

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.columns) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.name
	}
	return out
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// NumericColumns returns the names of integer and float columns.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.columns {
		if c.kind.IsNumeric() {
			out = append(out, c.name)
		}
	}
	return out
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.cells[i]
	}
	return row
}

// Rows returns copies of rows [start, end).
func (t *Table) Rows(start, end int) [][]string {
	if start < 0 {
		start = 0
	}
	if end > t.rows {
		end = t.rows
	}
	if start >= end {
		return [][]string{}
	}
	out := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, t.Row(i))
	}
	return out
}

// WriteCSV serialises the table as comma-separated text with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := writeRecord(cw, bw, t.ColumnNames()); err != nil {
		return err
	}
	for i := 0; i < t.rows; i++ {
		if err := writeRecord(cw, bw, t.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// writeRecord writes rec through cw. encoding/csv emits a lone empty field
// as a blank line, which readers skip, so that record is written quoted.
func writeRecord(cw *csv.Writer, bw *bufio.Writer, rec []string) error {
	if len(rec) != 1 || rec[0] != "" {
		return cw.Write(rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := bw.WriteString("\"\"\n")
	return err
}

// normalizeHeader trims names, names blank columns after their position and
// disambiguates duplicates.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			suffix[h]++
			name = h + "." + strconv.Itoa(suffix[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func parseFloat(v string) float64 {
	if IsMissing(v) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
