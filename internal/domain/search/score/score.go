// Package score describes filter-scoped scoring functions applied to search hits.
package score

import (
	"strconv"

	"github.com/kailas-cloud/feedex/internal/domain/search/filter"
)

// Modifier transforms a field value before it becomes a score factor.
type Modifier string

const (
	// ModifierNone uses the field value as-is.
	ModifierNone Modifier = "none"
	// ModifierReciprocal uses 1/(1+v), so smaller values score higher and zero stays finite.
	ModifierReciprocal Modifier = "reciprocal"
)

type kind int

const (
	kindFieldValue kind = iota
	kindBoost
)

// Function is a scoring function that contributes a factor only to documents matching its filter.
type Function struct {
	kind     kind
	filter   filter.Expression
	field    string
	modifier Modifier
	boost    float64
}

// FieldValueFactor scores matching documents by a numeric field.
func FieldValueFactor(field string, m Modifier, f filter.Expression) Function {
	return Function{kind: kindFieldValue, field: field, modifier: m, filter: f}
}

// BoostFactor multiplies the score of matching documents by a constant.
func BoostFactor(value float64, f filter.Expression) Function {
	return Function{kind: kindBoost, boost: value, filter: f}
}

// Filter returns the function's scope.
func (fn Function) Filter() filter.Expression { return fn.filter }

// Field returns the scored field, empty for boosts.
func (fn Function) Field() string { return fn.field }

// Modifier returns the field modifier.
func (fn Function) Modifier() Modifier { return fn.modifier }

// Boost returns the boost value, zero for field functions.
func (fn Function) Boost() float64 { return fn.boost }

// IsBoost reports whether this is a constant boost.
func (fn Function) IsBoost() bool { return fn.kind == kindBoost }

// Apply returns the factor for doc and whether doc is in scope.
// A missing or non-numeric field counts as zero.
func (fn Function) Apply(doc map[string]string) (float64, bool) {
	if !fn.filter.Matches(doc) {
		return 0, false
	}
	if fn.kind == kindBoost {
		return fn.boost, true
	}

	v, err := strconv.ParseFloat(doc[fn.field], 64)
	if err != nil {
		v = 0
	}
	switch fn.modifier {
	case ModifierReciprocal:
		return 1 / (1 + v), true
	default:
		return v, true
	}
}

// Combine multiplies the factors of every function in scope. Out-of-scope documents score 1.
func Combine(fns []Function, doc map[string]string) float64 {
	total := 1.0
	for _, fn := range fns {
		if v, ok := fn.Apply(doc); ok {
			total *= v
		}
	}
	return total
}
