package keywords

// WeightedDetails is the audit trail of a weighted exact match.
type WeightedDetails struct {
	TotalKeywords int `json:"total_keywords"`
	MatchedCount  int `json:"matched_count"`
	MissingCount  int `json:"missing_count"`
	TotalWeight   int `json:"total_weight"`
	MatchedWeight int `json:"matched_weight"`
	WeightedScore int `json:"weighted_score"`
}

type MatchResult struct {
	Score   int             `json:"score"`
	Matched []string        `json:"matched"`
	Missing []string        `json:"missing"`
	Details WeightedDetails `json:"details"`
}

// WeightedScore compares the canonical skills of both texts and weighs every
// job skill by its tier. The score is truncated to an integer in [0,100]. An
// empty job skill set scores 0 with empty lists.
func WeightedScore(resume, job string) MatchResult {
	jobSkills := skillSet(job)
	resumeSkills := skillSet(resume)

	if len(jobSkills) == 0 {
		return MatchResult{Matched: []string{}, Missing: []string{}}
	}

	matched := make(map[string]struct{})
	missing := make(map[string]struct{})
	total, got := 0, 0

	for skill := range jobSkills {
		weight := Weight(skill)
		total += weight

		if _, ok := resumeSkills[skill]; ok {
			matched[skill] = struct{}{}
			got += weight
			continue
		}
		missing[skill] = struct{}{}
	}

	score := percent(float64(got), float64(total))

	return MatchResult{
		Score:   score,
		Matched: sortedKeys(matched),
		Missing: sortedKeys(missing),
		Details: WeightedDetails{
			TotalKeywords: len(jobSkills),
			MatchedCount:  len(matched),
			MissingCount:  len(missing),
			TotalWeight:   total,
			MatchedWeight: got,
			WeightedScore: score,
		},
	}
}

// BasicScore is the unweighted variant: every canonical job skill counts once.
func BasicScore(resume, job string) MatchResult {
	return countScore(skillSet(resume), skillSet(job))
}

// LegacyScore counts raw lowercase tokens without stop-word filtering or
// normalization. It exists for callers that still read the old fields.
func LegacyScore(resume, job string) MatchResult {
	return countScore(toSet(Tokenize(resume)...), toSet(Tokenize(job)...))
}

func countScore(resumeSet, jobSet map[string]struct{}) MatchResult {
	if len(jobSet) == 0 {
		return MatchResult{Matched: []string{}, Missing: []string{}}
	}

	matched := make(map[string]struct{})
	missing := make(map[string]struct{})
	for token := range jobSet {
		if _, ok := resumeSet[token]; ok {
			matched[token] = struct{}{}
		} else {
			missing[token] = struct{}{}
		}
	}

	score := percent(float64(len(matched)), float64(len(jobSet)))

	return MatchResult{
		Score:   score,
		Matched: sortedKeys(matched),
		Missing: sortedKeys(missing),
		Details: WeightedDetails{
			TotalKeywords: len(jobSet),
			MatchedCount:  len(matched),
			MissingCount:  len(missing),
			TotalWeight:   len(jobSet),
			MatchedWeight: len(matched),
			WeightedScore: score,
		},
	}
}

// percent truncates toward zero and never leaves [0,100].
func percent(part, total float64) int {
	if total <= 0 {
		return 0
	}

	score := int(100 * part / total)
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
