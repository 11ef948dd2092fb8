package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Shapiro-Wilk sample size limits. Above the upper bound the p-value
// approximation is no longer reliable.
const (
	ShapiroMinN = 3
	ShapiroMaxN = 5000
)

// Royston (1995) polynomial coefficients.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk tests the sample for normality using Royston's algorithm
// AS R94. NaN values are ignored.
func ShapiroWilk(name string, values []float64) (*Result, error) {
	x := finite(values)
	n := len(x)
	if n < ShapiroMinN {
		return nil, precondition(TestShapiroWilk, "need at least %d observations, got %d", ShapiroMinN, n)
	}
	if n > ShapiroMaxN {
		return nil, precondition(TestShapiroWilk, "at most %d observations are supported, got %d", ShapiroMaxN, n)
	}
	sort.Float64s(x)
	if x[n-1]-x[0] < 1e-19 {
		return nil, precondition(TestShapiroWilk, "sample is constant")
	}

	w := swStatistic(x, swCoefficients(n))
	p := swPValue(w, n)

	return &Result{
		Test:      TestShapiroWilk,
		Variables: []string{name},
		Fields: []Field{
			{Label: "statistic", Value: w},
			{Label: "p_value", Value: p},
			{Label: "n", Value: n},
		},
	}, nil
}

// swCoefficients returns the n antisymmetric weights, negative for the
// lower half of the ordered sample.
func swCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)

	if n == 3 {
		a[0] = math.Sqrt(0.5)
	} else {
		fn := float64(n)
		m := make([]float64, half)
		var summ2 float64
		for i := range m {
			m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
			summ2 += m[i] * m[i]
		}
		summ2 *= 2
		ssumm2 := math.Sqrt(summ2)
		rsn := 1 / math.Sqrt(fn)
		a1 := poly(swC1, rsn) - m[0]/ssumm2

		first := 1
		var fac float64
		if n > 5 {
			first = 2
			a2 := -m[1]/ssumm2 + poly(swC2, rsn)
			fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
			a[1] = a2
		} else {
			fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
		}
		a[0] = a1
		for i := first; i < half; i++ {
			a[i] = -m[i] / fac
		}
	}

	coef := make([]float64, n)
	for i, v := range a {
		coef[i] = -v
		coef[n-1-i] = v
	}
	return coef
}

// swStatistic is the squared correlation between the ordered sample and
// the weights.
func swStatistic(x, coef []float64) float64 {
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	var num, ssc, ssx float64
	for i, v := range x {
		num += coef[i] * v
		ssc += coef[i] * coef[i]
		ssx += (v - mean) * (v - mean)
	}
	w := num * num / (ssc * ssx)
	return math.Min(w, 1)
}

func swPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return clamp01(p)
	}

	fn := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, fn)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, fn)
		sigma = math.Exp(poly(swC4, fn))
	} else {
		ln := math.Log(fn)
		mu = poly(swC5, ln)
		sigma = math.Exp(poly(swC6, ln))
	}
	return clamp01(distuv.UnitNormal.Survival((y - mu) / sigma))
}

// poly evaluates c[0] + c[1]x + c[2]x² + ...
func poly(c []float64, x float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
