// Package report renders scoring results for people and spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/resume-matcher/internal/scoring"
)

const (
	FormatJSON  = "json"
	FormatTable = "table"

	missingValue = "-"
)

// WriteJSON writes data as indented JSON.
func WriteJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Write renders results in the given format. A single result is written as
// an object in JSON format.
func Write(w io.Writer, format string, results []*scoring.Result) error {
	switch format {
	case FormatJSON, "":
		if len(results) == 1 {
			return WriteJSON(w, results[0])
		}
		return WriteJSON(w, results)
	case FormatTable:
		return WriteTable(w, results)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

var columns = []string{"Candidate", "Keyword", "AI", "Grade", "Exact", "Fuzzy", "Missing"}

// row flattens a result into the shared column layout.
func row(r *scoring.Result) []string {
	aiScore, grade := missingValue, missingValue
	if r.AIScore != nil {
		aiScore = strconv.FormatFloat(*r.AIScore, 'f', -1, 64)
	}
	if r.AIGrade != nil {
		grade = *r.AIGrade
	}

	return []string{
		candidateLabel(r),
		strconv.Itoa(r.KeywordScore),
		aiScore,
		grade,
		strings.Join(r.ExactMatches, ", "),
		fuzzyLabel(r),
		strings.Join(r.MissingKeywords, ", "),
	}
}

func candidateLabel(r *scoring.Result) string {
	if r.Candidate != "" {
		return r.Candidate
	}
	return r.ID
}

// fuzzyLabel renders fuzzy matches as "job~resume(0.95)" in job skill order.
func fuzzyLabel(r *scoring.Result) string {
	skills := make([]string, 0, len(r.FuzzyMatches))
	for skill := range r.FuzzyMatches {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	parts := make([]string, 0, len(skills))
	for _, skill := range skills {
		match := r.FuzzyMatches[skill]
		parts = append(parts, fmt.Sprintf("%s~%s(%.2f)", skill, match.MatchedTo, match.Similarity))
	}
	return strings.Join(parts, ", ")
}
