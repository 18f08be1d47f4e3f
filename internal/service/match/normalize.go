// internal/service/match/normalize.go

package match

import (
	"strings"
)

// suffixWords are generic place-type words stripped during normalization so
// that "JFK Airport" and "JFK" compare equal.
var suffixWords = map[string]bool{
	"airport":       true,
	"international": true,
	"intl":          true,
	"hotel":         true,
	"resort":        true,
}

// stopWords are generic tokens ignored by the fuzzy word-overlap check.
var stopWords = map[string]bool{
	"the":           true,
	"a":             true,
	"an":            true,
	"of":            true,
	"at":            true,
	"in":            true,
	"and":           true,
	"de":            true,
	"la":            true,
	"le":            true,
	"hotel":         true,
	"resort":        true,
	"airport":       true,
	"international": true,
	"intl":          true,
	"station":       true,
	"terminal":      true,
}

// normalizeName lowercases a location name, strips punctuation, collapses
// whitespace and drops generic suffix words. Returns "" when nothing
// usable remains.
func normalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return ""
	}

	// Replace punctuation with spaces so "st.-germain" splits cleanly
	var b strings.Builder
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var kept []string
	for _, tok := range strings.Fields(b.String()) {
		if suffixWords[tok] {
			continue
		}
		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}

// significantTokens splits a normalized name into tokens with stop words
// removed.
func significantTokens(normalized string) []string {
	var tokens []string
	for _, tok := range strings.Fields(normalized) {
		if stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// tokensSimilar reports whether two tokens refer to the same word, allowing
// for typos and partial forms. Words longer than five characters tolerate
// an edit distance of two, shorter words one.
func tokensSimilar(a, b string) bool {
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	tolerance := 1
	if len(a) > 5 && len(b) > 5 {
		tolerance = 2
	}

	return levenshtein(a, b) <= tolerance
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
