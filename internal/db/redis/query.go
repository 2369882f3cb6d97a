package redis

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/feedex/internal/domain/search/filter"
)

// buildQuery renders a filter expression as an FT.SEARCH query; empty matches all.
func buildQuery(expr filter.Expression) string {
	if q := buildFilter(expr); q != "" {
		return q
	}
	return "*"
}

// buildFilter translates filter.Expression into FT.SEARCH query syntax:
// must parts are intersected, should parts form one union group, must_not parts are negated.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	var parts []string

	for _, cond := range expr.Must() {
		if c := buildCondition(cond); c != "" {
			parts = append(parts, c)
		}
	}

	if shouldParts := buildShouldGroup(expr.Should()); shouldParts != "" {
		parts = append(parts, shouldParts)
	}

	for _, cond := range expr.MustNot() {
		if c := buildCondition(cond); c != "" {
			parts = append(parts, "-"+c)
		}
	}

	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	switch cond.Kind() {
	case filter.KindTerm:
		return buildTagFilter(cond.Key(), cond.Values())
	case filter.KindTerms:
		return buildTagFilter(cond.Key(), cond.Values())
	case filter.KindPrefix:
		return buildPrefixFilter(cond.Key(), cond.Value())
	case filter.KindPhrase:
		return buildPhraseFilter(cond.Key(), cond.Value(), cond.Slop())
	case filter.KindGroup:
		inner := buildFilter(cond.Expression())
		if inner == "" {
			return ""
		}
		return "(" + inner + ")"
	}
	return ""
}

func buildShouldGroup(conditions []filter.Condition) string {
	parts := make([]string, 0, len(conditions))
	for _, cond := range conditions {
		if c := buildCondition(cond); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			escaped = append(escaped, tagEscaper.Replace(v))
		}
	}
	if len(escaped) == 0 {
		return ""
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildPrefixFilter(key, prefix string) string {
	if prefix == "" {
		return ""
	}
	return fmt.Sprintf("@%s:{%s*}", key, tagEscaper.Replace(prefix))
}

// buildPhraseFilter splits text the way the field was tokenized, so
// separators such as hyphens join words instead of being escaped into one term.
func buildPhraseFilter(key, text string, slop int) string {
	words := filter.Tokenize(text)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		words[i] = escapeQuery(w)
	}
	return fmt.Sprintf("(@%s:(%s) => { $slop: %d; $inorder: true; })", key, strings.Join(words, " "), slop)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)
