package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare tests independence of two categorical samples given as aligned
// label slices. Pairs where either label is empty are skipped. For 2x2
// tables the statistic uses Yates' continuity correction; Cramér's V is
// always computed from the uncorrected statistic.
func ChiSquare(names [2]string, x, y []string) (*Result, error) {
	if len(x) != len(y) {
		return nil, precondition(TestChiSquare, "samples have different lengths (%d and %d)", len(x), len(y))
	}

	rowIdx := make(map[string]int)
	colIdx := make(map[string]int)
	type pair struct{ r, c int }
	var pairs []pair
	for i := range x {
		if x[i] == "" || y[i] == "" {
			continue
		}
		r, ok := rowIdx[x[i]]
		if !ok {
			r = len(rowIdx)
			rowIdx[x[i]] = r
		}
		c, ok := colIdx[y[i]]
		if !ok {
			c = len(colIdx)
			colIdx[y[i]] = c
		}
		pairs = append(pairs, pair{r, c})
	}

	nr, nc := len(rowIdx), len(colIdx)
	if nr < 2 || nc < 2 {
		return nil, precondition(TestChiSquare, "each variable needs at least two categories (got %d and %d)", nr, nc)
	}

	observed := make([][]float64, nr)
	for i := range observed {
		observed[i] = make([]float64, nc)
	}
	for _, p := range pairs {
		observed[p.r][p.c]++
	}

	n := float64(len(pairs))
	rowSum := make([]float64, nr)
	colSum := make([]float64, nc)
	for i := range observed {
		for j, o := range observed[i] {
			rowSum[i] += o
			colSum[j] += o
		}
	}

	dof := (nr - 1) * (nc - 1)
	var chi2, raw float64
	for i := range observed {
		for j, o := range observed[i] {
			e := rowSum[i] * colSum[j] / n
			d := math.Abs(o - e)
			raw += d * d / e
			if dof == 1 {
				d = math.Max(0, d-0.5)
			}
			chi2 += d * d / e
		}
	}

	p := distuv.ChiSquared{K: float64(dof)}.Survival(chi2)
	k := math.Min(float64(nr), float64(nc))
	cramersV := math.Sqrt(raw / (n * (k - 1)))

	return &Result{
		Test:      TestChiSquare,
		Variables: []string{names[0], names[1]},
		Fields: []Field{
			{Label: "chi2", Value: chi2},
			{Label: "p_value", Value: p},
			{Label: "dof", Value: dof},
			{Label: "n", Value: len(pairs)},
			{Label: "cramers_v", Value: cramersV},
		},
	}, nil
}
