package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateForLog folds s onto one line and shortens it to limit runes,
// appending an ellipsis when truncated. Prompts and model replies span many
// lines, so every whitespace run becomes a single space.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return TruncateRunes(s, limit) + "..."
}

// TruncateRunes keeps at most limit runes of s. A non-positive limit keeps
// nothing.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
