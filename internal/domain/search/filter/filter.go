package filter

import (
	"strings"
	"unicode"
)

// Kind discriminates filter conditions.
type Kind int

const (
	// KindTerm is an exact single-value match.
	KindTerm Kind = iota
	// KindTerms matches any of several values.
	KindTerms
	// KindPrefix matches values starting with a prefix.
	KindPrefix
	// KindPhrase is a full-text phrase match with slop.
	KindPhrase
	// KindGroup nests a boolean expression.
	KindGroup
)

// Expression is a structured filter with must/should/must_not boolean semantics.
// A non-empty should group requires at least one of its conditions to match.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// Bool creates an Expression from must, should and must-not conditions.
func Bool(must, should, mustNot []Condition) Expression {
	return Expression{must: must, should: should, mustNot: mustNot}
}

// All is a shorthand for an expression of must conditions only.
func All(conds ...Condition) Expression {
	return Expression{must: conds}
}

// Any is a shorthand for an expression of should conditions only.
func Any(conds ...Condition) Expression {
	return Expression{should: conds}
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Matches evaluates the expression against a flat document.
// Multi-valued fields are comma separated.
func (e Expression) Matches(doc map[string]string) bool {
	for _, c := range e.must {
		if !c.Matches(doc) {
			return false
		}
	}
	if len(e.should) > 0 {
		matched := false
		for _, c := range e.should {
			if c.Matches(doc) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, c := range e.mustNot {
		if c.Matches(doc) {
			return false
		}
	}
	return true
}

// Condition is a single filter clause.
type Condition struct {
	kind   Kind
	key    string
	values []string
	slop   int
	group  *Expression
}

// Term creates an exact match condition.
func Term(key, value string) Condition {
	return Condition{kind: KindTerm, key: key, values: []string{value}}
}

// Terms creates a condition matching any of values.
func Terms(key string, values ...string) Condition {
	return Condition{kind: KindTerms, key: key, values: values}
}

// Prefix creates a prefix match condition.
func Prefix(key, prefix string) Condition {
	return Condition{kind: KindPrefix, key: key, values: []string{prefix}}
}

// Phrase creates a phrase match condition tolerating slop intervening words.
func Phrase(key, text string, slop int) Condition {
	return Condition{kind: KindPhrase, key: key, values: []string{text}, slop: slop}
}

// Group nests an expression as a single condition.
func Group(e Expression) Condition {
	return Condition{kind: KindGroup, group: &e}
}

// Kind returns the condition kind.
func (c Condition) Kind() Kind { return c.kind }

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the first value.
func (c Condition) Value() string {
	if len(c.values) == 0 {
		return ""
	}
	return c.values[0]
}

// Values returns all values.
func (c Condition) Values() []string { return c.values }

// Slop returns the phrase slop.
func (c Condition) Slop() int { return c.slop }

// Expression returns the nested expression of a group.
func (c Condition) Expression() Expression {
	if c.group == nil {
		return Expression{}
	}
	return *c.group
}

// Matches evaluates the condition against a flat document.
func (c Condition) Matches(doc map[string]string) bool {
	if c.kind == KindGroup {
		return c.Expression().Matches(doc)
	}

	raw, ok := doc[c.key]
	if !ok {
		return false
	}
	tokens := strings.Split(raw, ",")

	switch c.kind {
	case KindTerm, KindTerms:
		for _, tok := range tokens {
			for _, v := range c.values {
				if tok == v {
					return true
				}
			}
		}
	case KindPrefix:
		for _, tok := range tokens {
			if strings.HasPrefix(tok, c.Value()) {
				return true
			}
		}
	case KindPhrase:
		return phraseMatches(raw, c.Value(), c.slop)
	}
	return false
}

// phraseMatches reports whether all words of phrase occur in order in text,
// with at most slop extra words between neighbours.
func phraseMatches(text, phrase string, slop int) bool {
	words := Tokenize(strings.ToLower(phrase))
	if len(words) == 0 {
		return false
	}
	haystack := Tokenize(strings.ToLower(text))

	for start := range haystack {
		if haystack[start] != words[0] {
			continue
		}
		pos, gaps, ok := start, 0, true
		for _, w := range words[1:] {
			found := false
			for j := pos + 1; j < len(haystack) && gaps+(j-pos-1) <= slop; j++ {
				if haystack[j] == w {
					gaps += j - pos - 1
					pos = j
					found = true
					break
				}
			}
			if !found {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// textSeparators are the punctuation runes the full-text tokenizer splits on,
// in addition to whitespace.
const textSeparators = ",.<>{}[]\"':;!@#$%^&*()-+=~|/\\?`"

// Tokenize splits text into the terms a full-text field is indexed as.
// Hyphenated slugs become separate words.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(textSeparators, r)
	})
}
