package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// KolmogorovSmirnov compares the sample against a normal distribution whose
// parameters are estimated from the sample itself (mean and n-1 standard
// deviation). Only "norm" is supported as the reference distribution.
// NaN values are ignored.
func KolmogorovSmirnov(name string, values []float64, dist string) (*Result, error) {
	if dist != "norm" {
		return nil, precondition(TestKS, "unsupported reference distribution %q", dist)
	}

	x := finite(values)
	n := len(x)
	if n < 2 {
		return nil, precondition(TestKS, "need at least 2 observations, got %d", n)
	}

	mean, _ := mstats.Mean(x)
	std, _ := mstats.StandardDeviationSample(x)
	if std == 0 || math.IsNaN(std) {
		return nil, precondition(TestKS, "sample is constant")
	}

	sort.Float64s(x)
	ref := distuv.Normal{Mu: mean, Sigma: std}
	fn := float64(n)
	var d float64
	for i, v := range x {
		cdf := ref.CDF(v)
		d = math.Max(d, float64(i+1)/fn-cdf)
		d = math.Max(d, cdf-float64(i)/fn)
	}

	sqrtN := math.Sqrt(fn)
	p := kolmogorovQ((sqrtN + 0.12 + 0.11/sqrtN) * d)

	return &Result{
		Test:      TestKS,
		Variables: []string{name},
		Fields: []Field{
			{Label: "statistic", Value: d},
			{Label: "p_value", Value: p},
			{Label: "n", Value: n},
			{Label: "mean", Value: mean},
			{Label: "std", Value: std},
		},
	}, nil
}

// kolmogorovQ is the complementary Kolmogorov distribution
// Q(λ) = 2 Σ (-1)^(j-1) exp(-2 j² λ²).
func kolmogorovQ(lambda float64) float64 {
	if lambda < 1e-3 {
		return 1
	}
	a2 := -2 * lambda * lambda
	fac := 2.0
	var sum, prev float64
	for j := 1; j <= 100; j++ {
		term := fac * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= 1e-3*prev || math.Abs(term) <= 1e-8*sum {
			return clamp01(sum)
		}
		fac = -fac
		prev = math.Abs(term)
	}
	// Series failed to converge; only happens for λ near 0.
	return 1
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
