package dataset

import (
	"strconv"
	"strings"
)

// Kind is the semantic type inferred for a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindCategorical
)

// Categorical promotion limits: a text column becomes categorical when it has
// at most CategoricalMaxUnique distinct values and those make up no more than
// half of its non-missing cells.
const (
	CategoricalMaxUnique = 20
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindCategorical:
		return "categorical"
	default:
		return "text"
	}
}

// MarshalText encodes the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsNumeric reports whether values of this kind can be used as numbers.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// InferKind infers the kind of a column from its raw cells. Missing cells
// are ignored; a column with no values at all is text.
func InferKind(cells []string) Kind {
	allInt, allFloat, allBool := true, true, true
	distinct := make(map[string]struct{})
	present := 0

	for _, raw := range cells {
		if IsMissing(raw) {
			continue
		}
		v := strings.TrimSpace(raw)
		present++
		if len(distinct) <= CategoricalMaxUnique {
			distinct[v] = struct{}{}
		}

		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if !isBool(v) {
				allBool = false
			}
		}
	}

	switch {
	case present == 0:
		return KindText
	case allInt:
		return KindInteger
	case allFloat:
		return KindFloat
	case allBool:
		return KindBoolean
	case len(distinct) <= CategoricalMaxUnique && 2*len(distinct) <= present:
		return KindCategorical
	default:
		return KindText
	}
}

func isBool(v string) bool {
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "false")
}
