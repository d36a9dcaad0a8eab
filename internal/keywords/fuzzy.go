package keywords

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultFuzzyThreshold is the minimum similarity for partial credit.
const DefaultFuzzyThreshold = 0.85

type FuzzyMatch struct {
	MatchedTo  string  `json:"matched_to"`
	Similarity float64 `json:"similarity"`
}

type FuzzyDetails struct {
	TotalKeywords int     `json:"total_keywords"`
	ExactMatches  int     `json:"exact_matches"`
	FuzzyMatches  int     `json:"fuzzy_matches"`
	MissingCount  int     `json:"missing_count"`
	TotalWeight   int     `json:"total_weight"`
	MatchedWeight float64 `json:"matched_weight"`
	WeightedScore int     `json:"weighted_score"`
}

// FuzzyResult is the keyword side of a scoring run.
type FuzzyResult struct {
	Score   int                   `json:"score"`
	Exact   []string              `json:"exact_matches"`
	Missing []string              `json:"missing_keywords"`
	Fuzzy   map[string]FuzzyMatch `json:"fuzzy_matches"`
	Details FuzzyDetails          `json:"scoring_details"`
}

// Similarity returns the Ratcliff/Obershelp ratio of two strings compared
// rune by rune. The ratio is symmetric for the short tokens we compare.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// FindFuzzyMatches pairs every missing job skill with the most similar resume
// skill whose similarity reaches threshold. Skills present in resume are
// skipped. Candidates are visited in sorted order and only a strictly better
// ratio replaces the current best, so ties resolve to the first candidate.
func FindFuzzyMatches(missing []string, resume map[string]struct{}, threshold float64) map[string]FuzzyMatch {
	matches := make(map[string]FuzzyMatch)
	candidates := sortedKeys(resume)

	for _, skill := range missing {
		if _, ok := resume[skill]; ok {
			continue
		}

		best, bestRatio := "", 0.0
		for _, candidate := range candidates {
			ratio := Similarity(skill, candidate)
			if ratio >= threshold && ratio > bestRatio {
				best, bestRatio = candidate, ratio
			}
		}

		if best != "" {
			matches[skill] = FuzzyMatch{MatchedTo: best, Similarity: round2(bestRatio)}
		}
	}

	return matches
}

// FuzzyScore is WeightedScore with partial credit: a fuzzy match contributes
// its tier weight multiplied by the rounded similarity. A threshold outside
// (0,1] falls back to DefaultFuzzyThreshold.
func FuzzyScore(resume, job string, threshold float64) FuzzyResult {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}

	jobSkills := skillSet(job)
	resumeSkills := skillSet(resume)

	exact := make(map[string]struct{})
	missing := make(map[string]struct{})
	for skill := range jobSkills {
		if _, ok := resumeSkills[skill]; ok {
			exact[skill] = struct{}{}
		} else {
			missing[skill] = struct{}{}
		}
	}

	fuzzy := FindFuzzyMatches(sortedKeys(missing), resumeSkills, threshold)

	// Sorted iteration keeps the float sum reproducible.
	total, got := 0, 0.0
	for _, skill := range sortedKeys(jobSkills) {
		weight := Weight(skill)
		total += weight

		if _, ok := exact[skill]; ok {
			got += float64(weight)
		} else if match, ok := fuzzy[skill]; ok {
			got += float64(weight) * match.Similarity
		}
	}

	for skill := range fuzzy {
		delete(missing, skill)
	}

	score := percent(got, float64(total))

	return FuzzyResult{
		Score:   score,
		Exact:   sortedKeys(exact),
		Missing: sortedKeys(missing),
		Fuzzy:   fuzzy,
		Details: FuzzyDetails{
			TotalKeywords: len(jobSkills),
			ExactMatches:  len(exact),
			FuzzyMatches:  len(fuzzy),
			MissingCount:  len(missing),
			TotalWeight:   total,
			MatchedWeight: round2(got),
			WeightedScore: score,
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
