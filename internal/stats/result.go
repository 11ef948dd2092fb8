// Package stats implements the hypothesis tests offered by the console:
// Pearson's chi-square test of independence, the one-sample
// Kolmogorov-Smirnov test against a fitted normal, the Mann-Whitney U test
// and the Shapiro-Wilk normality test.
//
// Each test returns a Result whose fields keep a stable order so the same
// value can be rendered as a table, exported as CSV or serialised.
package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Test names a statistical test.
type Test string

const (
	TestChiSquare   Test = "chi2"
	TestKS          Test = "ks"
	TestMannWhitney Test = "mann-whitney"
	TestShapiroWilk Test = "shapiro"
)

// Title returns a human readable name.
func (t Test) Title() string {
	switch t {
	case TestChiSquare:
		return "Chi-square test of independence"
	case TestKS:
		return "Kolmogorov-Smirnov test"
	case TestMannWhitney:
		return "Mann-Whitney U test"
	case TestShapiroWilk:
		return "Shapiro-Wilk normality test"
	default:
		return string(t)
	}
}

// ErrPrecondition is wrapped by every PreconditionError.
var ErrPrecondition = errors.New("test precondition not met")

// PreconditionError reports input the test cannot be computed on, such as
// too few observations or a constant sample.
type PreconditionError struct {
	Test   Test
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Test.Title(), e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

func precondition(t Test, format string, args ...any) error {
	return &PreconditionError{Test: t, Reason: fmt.Sprintf(format, args...)}
}

// Field is one labelled output of a test.
type Field struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// Result is the ordered output of a test run.
type Result struct {
	Test      Test     `json:"test" yaml:"test"`
	Variables []string `json:"variables" yaml:"variables"`
	Fields    []Field  `json:"fields" yaml:"fields"`
}

// Get returns the value stored under label.
func (r *Result) Get(label string) (any, bool) {
	for _, f := range r.Fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return nil, false
}

// Float returns a numeric field as float64.
func (r *Result) Float(label string) (float64, bool) {
	v, ok := r.Get(label)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// PValue returns the p_value field.
func (r *Result) PValue() float64 {
	p, _ := r.Float("p_value")
	return p
}

// FormatValue renders a field value the way exports show it.
func FormatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case int:
		return strconv.Itoa(n)
	case string:
		return n
	default:
		return fmt.Sprint(n)
	}
}

// WriteCSV writes the result as a two-column label/value table.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"", "Value"}); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if err := cw.Write([]string{f.Label, FormatValue(f.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportName returns the conventional download file name for the result.
func (r *Result) ExportName() string {
	v := r.Variables
	switch {
	case r.Test == TestChiSquare && len(v) == 2:
		return fmt.Sprintf("chi2_%s_vs_%s.csv", v[0], v[1])
	case r.Test == TestKS && len(v) == 1:
		return fmt.Sprintf("ks_test_%s.csv", v[0])
	case r.Test == TestMannWhitney && len(v) == 2:
		return fmt.Sprintf("mann_whitney_%s_by_%s.csv", v[0], v[1])
	case r.Test == TestShapiroWilk && len(v) == 1:
		return fmt.Sprintf("shapiro_test_%s.csv", v[0])
	default:
		return string(r.Test) + ".csv"
	}
}
