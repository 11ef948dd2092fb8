package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/rreport/internal/stats"
)

// TestRequest names a test and its inputs. Which fields are read depends
// on the test:
//
//	chi2          Var1, Var2
//	ks            Column, Dist (default "norm")
//	mann-whitney  Column, Group
//	shapiro       Column, Method (default "shapiro")
type TestRequest struct {
	Test   stats.Test
	Var1   string
	Var2   string
	Column string
	Group  string
	Dist   string
	Method string
}

// Tests lists the offered tests in display order.
var Tests = []stats.Test{
	stats.TestChiSquare,
	stats.TestKS,
	stats.TestMannWhitney,
	stats.TestShapiroWilk,
}

// ParseTest resolves a test name as used in URLs and CLI arguments.
func ParseTest(name string) (stats.Test, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chi2", "chi-square", "chisquare":
		return stats.TestChiSquare, nil
	case "ks", "kolmogorov-smirnov":
		return stats.TestKS, nil
	case "mann-whitney", "mannwhitney", "mwu":
		return stats.TestMannWhitney, nil
	case "shapiro", "normality", "shapiro-wilk":
		return stats.TestShapiroWilk, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTest, name)
	}
}

// Validate checks that the fields the test needs are set and fills in
// defaults.
func (r *TestRequest) Validate() error {
	need := func(field, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s requires %s", ErrInvalidRequest, r.Test, field)
		}
		return nil
	}

	switch r.Test {
	case stats.TestChiSquare:
		if err := need("var1", r.Var1); err != nil {
			return err
		}
		return need("var2", r.Var2)
	case stats.TestKS:
		if r.Dist == "" {
			r.Dist = "norm"
		}
		return need("column", r.Column)
	case stats.TestMannWhitney:
		if err := need("column", r.Column); err != nil {
			return err
		}
		return need("group", r.Group)
	case stats.TestShapiroWilk:
		if r.Method == "" {
			r.Method = "shapiro"
		}
		return need("column", r.Column)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTest, r.Test)
	}
}
