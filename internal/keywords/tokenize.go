// Package keywords scores resume text against job text by keyword overlap.
// Everything here is pure and safe for concurrent use.
package keywords

import (
	"sort"
	"strings"
	"unicode"
)

var stopWords = toSet(
	"a", "an", "and", "are", "as", "at", "be", "been", "by", "for", "from",
	"has", "he", "in", "is", "it", "its", "of", "on", "that", "the", "to",
	"was", "will", "with", "we", "you", "your", "have", "had", "this", "or",
	"but", "not", "can", "could", "should", "would", "may", "might", "must",
	"our", "their", "his", "her", "they", "them", "these", "those", "who",
	"which", "what", "where", "when", "why", "how", "all", "each", "every",
	"both", "few", "more", "most", "other", "some", "such", "no", "nor",
	"too", "very", "into", "through", "about", "between", "during", "before",
	"after", "above", "below", "up", "down", "out", "off", "over", "under",
	"again", "further", "then", "once", "here", "there", "also", "any", "same",
)

// Tokenize lowercases text and splits it into runs of letters, numbers and
// underscores. Numbers include superscripts and roman numerals.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})
}

// IsStopWord reports whether the token is ignored during scoring.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// FilterStopWords drops stop words and keeps the order of the rest.
func FilterStopWords(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if IsStopWord(token) {
			continue
		}
		filtered = append(filtered, token)
	}

	return filtered
}

func TokenizeAndFilter(text string) []string {
	return FilterStopWords(Tokenize(text))
}

// skillSet runs the full pipeline and returns the distinct canonical skills.
func skillSet(text string) map[string]struct{} {
	return toSet(NormalizeTokens(TokenizeAndFilter(text))...)
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
