package report

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/stats"
)

const sampleCSV = `id,age,score,group,city,flag
1,23,1.5,A,Paris,true
2,35,2.5,B,Lyon,false
3,31,3.0,A,Paris,true
4,,4.5,B,Nice,true
5,44,5.0,A,Lyon,false
6,52,6.5,B,Paris,true
`

func loadTable(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.Parse([]byte(csv), "sample.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tbl
}

func generate(t *testing.T, csv string) *Report {
	t.Helper()
	r, err := Generate(loadTable(t, csv), DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return r
}

func summary(t *testing.T, r *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range r.Columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no summary for %q", name)
	return ColumnSummary{}
}

func TestGenerate(t *testing.T) {
	tbl := loadTable(t, sampleCSV)
	r, err := Generate(tbl, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if r.Table() != tbl {
		t.Error("Table() must return the source table")
	}
	if r.Rows != 6 || r.Cols != 6 {
		t.Errorf("shape = %dx%d, want 6x6", r.Rows, r.Cols)
	}
	if len(r.Samples) != 5 {
		t.Errorf("samples = %d, want 5", len(r.Samples))
	}

	age := summary(t, r, "age")
	if age.Missing != 1 || age.NonNull != 5 {
		t.Errorf("age missing/non-null = %d/%d, want 1/5", age.Missing, age.NonNull)
	}
	if age.Numeric == nil {
		t.Fatal("age should have numeric stats")
	}
	if age.Numeric.Min != 23 || age.Numeric.Max != 52 {
		t.Errorf("age range = [%v, %v]", age.Numeric.Min, age.Numeric.Max)
	}
	if math.Abs(age.Numeric.Mean-37) > 1e-9 {
		t.Errorf("age mean = %v, want 37", age.Numeric.Mean)
	}

	group := summary(t, r, "group")
	if group.Kind != dataset.KindCategorical {
		t.Errorf("group kind = %s, want categorical", group.Kind)
	}
	if len(group.TopValues) != 2 || group.TopValues[0].Count != 3 {
		t.Errorf("group top values = %+v", group.TopValues)
	}

	if r.Corr == nil || len(r.Corr.Columns) != 3 {
		t.Fatalf("expected a 3x3 correlation matrix, got %+v", r.Corr)
	}
	if r.Corr.Values[0][0] != 1 {
		t.Errorf("diagonal = %v, want 1", r.Corr.Values[0][0])
	}
	if r.Corr.Values[0][2] != r.Corr.Values[2][0] {
		t.Error("correlation matrix should be symmetric")
	}
}

func TestGenerateWarnings(t *testing.T) {
	r := generate(t, "a,b,c\n1,x,\n1,y,\n1,x,\n1,x,\n1,y,5\n")

	want := []string{
		"a has a constant value",
		"c has 80.0% missing values",
		"dataset has 2 duplicate rows",
	}
	got := strings.Join(r.Warnings, "\n")
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("warnings %q missing %q", got, w)
		}
	}
}

func TestGenerateNilTable(t *testing.T) {
	if _, err := Generate(nil, DefaultOptions()); !errors.Is(err, ErrNoTable) {
		t.Errorf("error = %v, want ErrNoTable", err)
	}
}

func TestMarkdownAndHTML(t *testing.T) {
	r := generate(t, "name,note\nx|y,<b>bold</b>\n")

	md := r.Markdown()
	if !strings.Contains(md, `x\|y`) {
		t.Errorf("pipe not escaped in markdown:\n%s", md)
	}

	page, err := r.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.HasPrefix(page, "<!DOCTYPE html>") {
		t.Error("HTML should be a standalone document")
	}
	if !strings.Contains(page, "<table>") {
		t.Error("HTML should contain rendered tables")
	}
	if strings.Contains(page, "<b>bold</b>") {
		t.Error("cell markup must be escaped")
	}
}

func TestHTMLRendersCellsLiterally(t *testing.T) {
	r := generate(t, "frac,link,dash,power,amp,money,em\n"+
		"1/2,[x](javascript:alert(1)),a -- b,2^10,AT&T,$5 and $6,*em*\n")

	page, err := r.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	for _, want := range []string{"1/2", "[x](javascript:alert(1))", "a -- b", "2^10", "AT&amp;T", "$5 and $6", "*em*"} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML missing literal %q", want)
		}
	}
	for _, bad := range []string{"&frac12;", "&frasl;", "&ndash;", "<sup>", "<em>", `href="javascript`, "<span class=\"math"} {
		if strings.Contains(page, bad) {
			t.Errorf("HTML contains rewritten markup %q", bad)
		}
	}
}

func TestTextRendering(t *testing.T) {
	r := generate(t, sampleCSV)
	text := r.Text()
	for _, want := range []string{"[DATASET SUMMARY]", "File: sample.csv", "Rows: 6", "[SCHEMA]", "- age: integer"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
	if r.String() != text {
		t.Error("String() should equal Text()")
	}
}

func TestReportTests(t *testing.T) {
	r := generate(t, sampleCSV)

	tests := []struct {
		name     string
		run      func() (*stats.Result, error)
		wantTest stats.Test
		wantErr  error
	}{
		{"chi2", func() (*stats.Result, error) { return r.ChiSquare("group", "city") }, stats.TestChiSquare, nil},
		{"chi2 same var", func() (*stats.Result, error) { return r.ChiSquare("group", "group") }, "", stats.ErrPrecondition},
		{"chi2 unknown", func() (*stats.Result, error) { return r.ChiSquare("group", "nope") }, "", ErrColumnNotFound},
		{"ks", func() (*stats.Result, error) { return r.KolmogorovSmirnov("score", "norm") }, stats.TestKS, nil},
		{"ks text column", func() (*stats.Result, error) { return r.KolmogorovSmirnov("city", "norm") }, "", stats.ErrPrecondition},
		{"mann-whitney", func() (*stats.Result, error) { return r.MannWhitneyU("score", "group") }, stats.TestMannWhitney, nil},
		{"mann-whitney three groups", func() (*stats.Result, error) { return r.MannWhitneyU("score", "city") }, "", stats.ErrPrecondition},
		{"shapiro", func() (*stats.Result, error) { return r.Normality("age", "shapiro") }, stats.TestShapiroWilk, nil},
		{"unknown normality test", func() (*stats.Result, error) { return r.Normality("age", "anderson") }, "", stats.ErrPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Test != tt.wantTest {
				t.Errorf("Test = %q, want %q", res.Test, tt.wantTest)
			}
			if p := res.PValue(); p < 0 || p > 1 {
				t.Errorf("p-value %v out of range", p)
			}
		})
	}
}

type textOnly struct{}

func (textOnly) String() string { return "plain" }

type brokenHTML struct{}

func (brokenHTML) HTML() (string, error) { return "", errors.New("boom") }
func (brokenHTML) String() string        { return "fallback" }

func TestRender(t *testing.T) {
	r := generate(t, sampleCSV)

	out, err := Render(r)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out.Format != FormatHTML || out.Warning != "" {
		t.Errorf("Render(report) = %s (warning %q), want html", out.Format, out.Warning)
	}

	out, err = Render(textOnly{})
	if err != nil || out.Format != FormatText || out.Content != "plain" {
		t.Errorf("Render(textOnly) = %+v, %v", out, err)
	}

	out, err = Render(brokenHTML{})
	if err != nil {
		t.Fatalf("Render(brokenHTML) failed: %v", err)
	}
	if out.Content != "fallback" || !strings.Contains(out.Warning, "boom") {
		t.Errorf("Render(brokenHTML) = %+v", out)
	}

	_, err = Render(42)
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("Render(42) error = %v, want *RenderError", err)
	}
	if re.Type != "int" {
		t.Errorf("RenderError.Type = %q, want int", re.Type)
	}
}
