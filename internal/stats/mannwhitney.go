package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// MannWhitneyU compares the distribution of values between the two groups
// named in groups. groups must hold exactly two distinct non-empty labels;
// observations with an empty label or a NaN value are dropped. The p-value
// is two-sided, from the normal approximation with tie and continuity
// corrections.
func MannWhitneyU(valueName, groupName string, values []float64, groups []string) (*Result, error) {
	if len(values) != len(groups) {
		return nil, precondition(TestMannWhitney, "samples have different lengths (%d and %d)", len(values), len(groups))
	}

	var labels []string
	seen := make(map[string]bool)
	for _, g := range groups {
		if g != "" && !seen[g] {
			seen[g] = true
			labels = append(labels, g)
		}
	}
	if len(labels) != 2 {
		return nil, precondition(TestMannWhitney, "grouping variable %q must have exactly 2 groups, found %d", groupName, len(labels))
	}

	var a, b []float64
	for i, v := range values {
		if math.IsNaN(v) || groups[i] == "" {
			continue
		}
		if groups[i] == labels[0] {
			a = append(a, v)
		} else {
			b = append(b, v)
		}
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, precondition(TestMannWhitney, "each group needs at least one numeric observation")
	}

	n1, n2 := float64(len(a)), float64(len(b))
	ranks, tieTerm := rankWithTies(append(append([]float64{}, a...), b...))
	var r1 float64
	for _, r := range ranks[:len(a)] {
		r1 += r
	}

	u1 := r1 - n1*(n1+1)/2
	u2 := n1*n2 - u1
	mu := n1 * n2 / 2
	n := n1 + n2
	sigma := math.Sqrt(n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1))))

	z, p := 0.0, 1.0
	if sigma > 0 {
		u := math.Max(u1, u2)
		z = (u - mu - 0.5) / sigma
		p = math.Min(1, 2*distuv.UnitNormal.Survival(z))
	}

	return &Result{
		Test:      TestMannWhitney,
		Variables: []string{valueName, groupName},
		Fields: []Field{
			{Label: "u_statistic", Value: u1},
			{Label: "p_value", Value: p},
			{Label: "group_1", Value: labels[0]},
			{Label: "group_2", Value: labels[1]},
			{Label: "n_1", Value: len(a)},
			{Label: "n_2", Value: len(b)},
			{Label: "z", Value: z},
		},
	}, nil
}

// rankWithTies returns 1-based average ranks in input order and the tie
// correction sum Σ(t³ - t) over groups of tied values.
func rankWithTies(x []float64) ([]float64, float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })

	ranks := make([]float64, len(x))
	var ties float64
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && x[idx[j]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		t := float64(j - i)
		ties += t*t*t - t
		i = j
	}
	return ranks, ties
}
