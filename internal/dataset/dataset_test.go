package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"data.csv", FormatCSV, false},
		{"book.xlsx", FormatExcel, false},
		{"legacy.xls", FormatExcel, false},
		{"rows.json", FormatJSON, false},
		{"notes.txt", "", true},
		{"DATA.CSV", "", true},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("DetectFormat(%q) error = %v, want ErrUnsupportedFormat", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat(%q) unexpected error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	data := "\xEF\xBB\xBFid,score,group,note\n1,2.5,a,x\n2,,b,y\n3,4.0,a\n"
	tbl, err := Parse([]byte(data), "scores.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if tbl.NumRows() != 3 || tbl.NumCols() != 4 {
		t.Fatalf("shape = %dx%d, want 3x4", tbl.NumRows(), tbl.NumCols())
	}
	if got := strings.Join(tbl.ColumnNames(), ","); got != "id,score,group,note" {
		t.Errorf("columns = %q", got)
	}

	id, _ := tbl.Column("id")
	if id.Kind() != KindInteger {
		t.Errorf("id kind = %s, want integer", id.Kind())
	}
	score, _ := tbl.Column("score")
	if score.Kind() != KindFloat {
		t.Errorf("score kind = %s, want float", score.Kind())
	}
	if score.MissingCount() != 1 {
		t.Errorf("score missing = %d, want 1", score.MissingCount())
	}
	note, _ := tbl.Column("note")
	if !note.IsMissing(2) {
		t.Errorf("short row should be padded with a missing cell")
	}

	if got := strings.Join(tbl.NumericColumns(), ","); got != "id,score" {
		t.Errorf("NumericColumns = %q, want id,score", got)
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "no columns to parse from file"},
		{"too many fields", "a,b\n1,2\n3,4,5\n", "expected 2 fields in line 3, saw 3"},
		{"bad quote", "a,b\n1,\"x\"y\n", "extraneous"},
		{"invalid utf8", "a,b\n1,\xff\n", "invalid UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "f.csv")
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Format != FormatCSV {
				t.Errorf("Format = %q, want csv", pe.Format)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestHeaderNormalisation(t *testing.T) {
	tbl, err := Parse([]byte("a,,a,a\n1,2,3,4\n"), "h.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := "a,Unnamed: 1,a.1,a.2"
	if got := strings.Join(tbl.ColumnNames(), ","); got != want {
		t.Errorf("columns = %q, want %q", got, want)
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  Kind
	}{
		{"ints", []string{"1", "2", "-3"}, KindInteger},
		{"floats", []string{"1", "2.5", "NA"}, KindFloat},
		{"bools", []string{"true", "False", "TRUE"}, KindBoolean},
		{"categories", []string{"x", "y", "x", "y", "x"}, KindCategorical},
		{"text", []string{"alpha", "beta", "gamma"}, KindText},
		{"all missing", []string{"", "NA", "null"}, KindText},
		{"empty", nil, KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferKind(tt.cells); got != tt.want {
				t.Errorf("InferKind(%v) = %s, want %s", tt.cells, got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		columns string
		rows    int
	}{
		{"records", `[{"b":1,"a":"x"},{"a":"y","c":true}]`, "b,a,c", 2},
		{"columns of objects", `{"x":{"0":1,"1":2},"y":{"0":"a","1":"b"}}`, "x,y", 2},
		{"columns of arrays", `{"x":[1,2,3],"y":[4,5,6]}`, "x,y", 3},
		{"scalars", `[1,2,3]`, "0", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Parse([]byte(tt.data), "d.json")
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := strings.Join(tbl.ColumnNames(), ","); got != tt.columns {
				t.Errorf("columns = %q, want %q", got, tt.columns)
			}
			if tbl.NumRows() != tt.rows {
				t.Errorf("rows = %d, want %d", tbl.NumRows(), tt.rows)
			}
		})
	}
}

func TestParseJSONRecordsMissingKey(t *testing.T) {
	tbl, err := Parse([]byte(`[{"a":1,"b":null},{"a":2}]`), "d.json")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b, _ := tbl.Column("b")
	if b.MissingCount() != 2 {
		t.Errorf("b missing = %d, want 2", b.MissingCount())
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"a": [1, 2`},
		{"scalar object", `{"a": 1, "b": 2}`},
		{"bare scalar", `42`},
		{"empty array", `[]`},
		{"mixed", `[1, {"a": 2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "bad.json")
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Name != "bad.json" {
				t.Errorf("Name = %q", pe.Name)
			}
		})
	}
}

func TestParseExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"name", "value"},
		{"a", 1},
		{"b", 2.5},
		{"c", 3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	tbl, err := Parse(buf.Bytes(), "book.xlsx")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if tbl.NumRows() != 3 {
		t.Errorf("rows = %d, want 3", tbl.NumRows())
	}
	value, ok := tbl.Column("value")
	if !ok {
		t.Fatal("missing value column")
	}
	if value.Kind() != KindFloat {
		t.Errorf("value kind = %s, want float", value.Kind())
	}
}

func TestParseExcelGarbage(t *testing.T) {
	_, err := Parse([]byte("not a workbook"), "book.xls")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Format != FormatExcel {
		t.Errorf("Format = %q, want excel", pe.Format)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
		// want is the exact output when it differs from src; "-" skips the
		// text comparison and checks only the reparsed table.
		want string
	}{
		{"quoted comma", "a,b\n1,\"x,y\"\n2,z\n", ""},
		{"single column empty cell", "a\n1\n\"\"\n2\n", ""},
		{"single column all empty", "a\n\"\"\n\"\"\n", ""},
		{"quoted empty field", "a,b\n\"\",x\n", "a,b\n,x\n"},
		{"duplicate and blank headers", "x,x,\n1,2,3\n", "x,x.1,Unnamed: 2\n1,2,3\n"},
		{"byte order mark", "\xEF\xBB\xBFa,b\n1,2\n", "a,b\n1,2\n"},
		{"embedded newline", "a\n\"line1\nline2\"\n", ""},
		{"short row", "a,b\n1\n", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := Parse([]byte(tt.src), "r.csv")
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := first.WriteCSV(&buf); err != nil {
				t.Fatalf("WriteCSV failed: %v", err)
			}

			want := tt.want
			if want == "" {
				want = tt.src
			}
			if want != "-" && buf.String() != want {
				t.Errorf("WriteCSV = %q, want %q", buf.String(), want)
			}

			second, err := Parse(buf.Bytes(), "r.csv")
			if err != nil {
				t.Fatalf("reparse %q: %v", buf.String(), err)
			}
			if second.NumRows() != first.NumRows() || second.NumCols() != first.NumCols() {
				t.Fatalf("reparsed %dx%d, want %dx%d", second.NumRows(), second.NumCols(), first.NumRows(), first.NumCols())
			}
			if got, want := strings.Join(second.ColumnNames(), "|"), strings.Join(first.ColumnNames(), "|"); got != want {
				t.Errorf("columns = %q, want %q", got, want)
			}
			for i := 0; i < first.NumRows(); i++ {
				if got, want := strings.Join(second.Row(i), "|"), strings.Join(first.Row(i), "|"); got != want {
					t.Errorf("row %d = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestLoaderMemoizes(t *testing.T) {
	l := NewLoader()
	data := []byte("a\n1\n2\n")

	first, err := l.Load(data, "x.csv")
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load(data, "x.csv")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the same *Table for identical input")
	}

	other, err := l.Load(data, "y.csv")
	if err != nil {
		t.Fatal(err)
	}
	if other == first {
		t.Error("different names must not share a cache entry")
	}
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	l := NewLoader()
	if _, err := l.Load([]byte("{"), "x.json"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := l.Load([]byte("a"), "x.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0", l.Len())
	}
}

func TestLoaderConcurrent(t *testing.T) {
	l := NewLoader()
	data := []byte("a,b\n1,2\n")

	var wg sync.WaitGroup
	results := make([]*Table, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := l.Load(data, "c.csv")
			if err != nil {
				t.Errorf("Load failed: %v", err)
				return
			}
			results[i] = tbl
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Errorf("result %d differs from result 0", i)
		}
	}
}

func makeTable(t *testing.T, rows int) *Table {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "%d\n", i)
	}
	tbl, err := Parse([]byte(sb.String()), "n.csv")
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestPaginate(t *testing.T) {
	tbl := makeTable(t, 23)

	tests := []struct {
		name      string
		size      int
		page      int
		wantPage  int
		wantStart int
		wantEnd   int
	}{
		{"first", 10, 1, 1, 0, 10},
		{"last partial", 10, 3, 3, 20, 23},
		{"beyond last", 10, 9, 3, 20, 23},
		{"below first", 10, 0, 1, 0, 10},
		{"negative", 10, -4, 1, 0, 10},
		{"max size", 100, 1, 1, 0, 23},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Paginate(tbl, tt.size, tt.page)
			if err != nil {
				t.Fatalf("Paginate failed: %v", err)
			}
			if p.PageNumber != tt.wantPage {
				t.Errorf("PageNumber = %d, want %d", p.PageNumber, tt.wantPage)
			}
			if p.StartIndex != tt.wantStart || p.EndIndex != tt.wantEnd {
				t.Errorf("bounds = [%d,%d), want [%d,%d)", p.StartIndex, p.EndIndex, tt.wantStart, tt.wantEnd)
			}
			if len(p.Rows) != tt.wantEnd-tt.wantStart {
				t.Errorf("len(Rows) = %d", len(p.Rows))
			}
		})
	}
}

func TestPaginateInvalidSize(t *testing.T) {
	tbl := makeTable(t, 3)
	for _, size := range []int{0, 4, 101, -1} {
		if _, err := Paginate(tbl, size, 1); !errors.Is(err, ErrInvalidPageSize) {
			t.Errorf("size %d: error = %v, want ErrInvalidPageSize", size, err)
		}
	}
}

func TestPaginateCoversAllRows(t *testing.T) {
	for _, rows := range []int{0, 1, 5, 23, 100, 101} {
		tbl := makeTable(t, rows)
		for size := MinPageSize; size <= MaxPageSize; size++ {
			total := TotalPages(rows, size)
			if total < 1 {
				t.Fatalf("TotalPages(%d, %d) = %d", rows, size, total)
			}
			next := 0
			for page := 1; page <= total; page++ {
				p, err := Paginate(tbl, size, page)
				if err != nil {
					t.Fatal(err)
				}
				if p.StartIndex != next {
					t.Fatalf("rows=%d size=%d page=%d starts at %d, want %d", rows, size, page, p.StartIndex, next)
				}
				next = p.EndIndex
			}
			if next != rows {
				t.Fatalf("rows=%d size=%d covered %d rows", rows, size, next)
			}
		}
	}
}

func TestPageDisplayBounds(t *testing.T) {
	empty := makeTable(t, 0)
	p, err := Paginate(empty, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalPages != 1 || p.Start() != 0 || p.End() != 0 {
		t.Errorf("empty page = pages %d, %d-%d", p.TotalPages, p.Start(), p.End())
	}

	p, err = Paginate(makeTable(t, 23), 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.Start() != 11 || p.End() != 20 {
		t.Errorf("page 2 shows %d-%d, want 11-20", p.Start(), p.End())
	}
	if !p.HasPrev() || !p.HasNext() {
		t.Error("page 2 of 3 should have prev and next")
	}
}

func TestRowsClampsBounds(t *testing.T) {
	tbl := makeTable(t, 3)
	if got := len(tbl.Rows(-5, 50)); got != 3 {
		t.Errorf("Rows(-5, 50) = %d rows, want 3", got)
	}
	if got := len(tbl.Rows(2, 1)); got != 0 {
		t.Errorf("Rows(2, 1) = %d rows, want 0", got)
	}
}
