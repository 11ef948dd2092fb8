package report

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/stats"
)

// ErrColumnNotFound is returned when a test names a column the table lacks.
var ErrColumnNotFound = errors.New("column not found")

// ChiSquare runs the chi-square test of independence between two columns.
func (r *Report) ChiSquare(var1, var2 string) (*stats.Result, error) {
	if var1 == var2 {
		return nil, &stats.PreconditionError{Test: stats.TestChiSquare, Reason: "choose two different variables"}
	}
	a, err := r.column(var1)
	if err != nil {
		return nil, err
	}
	b, err := r.column(var2)
	if err != nil {
		return nil, err
	}
	return stats.ChiSquare([2]string{var1, var2}, a.Labels(), b.Labels())
}

// KolmogorovSmirnov tests a numeric column against the named reference
// distribution.
func (r *Report) KolmogorovSmirnov(col, dist string) (*stats.Result, error) {
	c, err := r.numericColumn(stats.TestKS, col)
	if err != nil {
		return nil, err
	}
	return stats.KolmogorovSmirnov(col, c.Floats(), dist)
}

// MannWhitneyU compares a numeric column between the two groups of
// groupCol.
func (r *Report) MannWhitneyU(col, groupCol string) (*stats.Result, error) {
	if col == groupCol {
		return nil, &stats.PreconditionError{Test: stats.TestMannWhitney, Reason: "the value and group columns must differ"}
	}
	c, err := r.numericColumn(stats.TestMannWhitney, col)
	if err != nil {
		return nil, err
	}
	g, err := r.column(groupCol)
	if err != nil {
		return nil, err
	}
	return stats.MannWhitneyU(col, groupCol, c.Floats(), g.Labels())
}

// Normality runs the named normality test on a numeric column. Only
// "shapiro" is available.
func (r *Report) Normality(col, test string) (*stats.Result, error) {
	if test != "shapiro" {
		return nil, &stats.PreconditionError{Test: stats.TestShapiroWilk, Reason: fmt.Sprintf("unsupported normality test %q", test)}
	}
	c, err := r.numericColumn(stats.TestShapiroWilk, col)
	if err != nil {
		return nil, err
	}
	return stats.ShapiroWilk(col, c.Floats())
}

func (r *Report) column(name string) (*dataset.Column, error) {
	if r.table == nil {
		return nil, ErrNoTable
	}
	c, ok := r.table.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return c, nil
}

func (r *Report) numericColumn(test stats.Test, name string) (*dataset.Column, error) {
	c, err := r.column(name)
	if err != nil {
		return nil, err
	}
	if !c.Kind().IsNumeric() {
		return nil, &stats.PreconditionError{Test: test, Reason: fmt.Sprintf("column %q is %s, not numeric", name, c.Kind())}
	}
	return c, nil
}
