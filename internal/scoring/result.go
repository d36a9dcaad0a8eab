package scoring

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/keywords"
)

const (
	fallbackJobText   = "General candidate evaluation"
	legacyListLimit   = 50
	legacyListJoinSep = ", "
)

// Request is a single resume scored against a single job.
type Request struct {
	ResumeText     string   `json:"resume"`
	JobDescription string   `json:"job_description"`
	RequiredSkills []string `json:"skills,omitempty"`
	Candidate      string   `json:"candidate,omitempty"`
	UseAI          bool     `json:"use_ai"`
	// ParseProfile asks the model for structured resume fields. It needs a
	// profile parser and, like UseAI, is skipped without one.
	ParseProfile bool `json:"parse_profile,omitempty"`
	// FuzzyThreshold overrides the scorer default when positive.
	FuzzyThreshold float64 `json:"fuzzy_threshold,omitempty"`
}

// Legacy carries the unweighted score in its older string-list form.
type Legacy struct {
	Score           int    `json:"score"`
	MatchedKeywords string `json:"matched_keywords"`
	MissingKeywords string `json:"missing_keywords"`
}

// Result combines the keyword score and the optional AI assessment. AI fields
// are null when no assessment was attempted.
type Result struct {
	ID              string                         `json:"id"`
	Candidate       string                         `json:"candidate,omitempty"`
	KeywordScore    int                            `json:"keyword_score"`
	BasicScore      int                            `json:"basic_score"`
	ExactMatches    []string                       `json:"exact_matches"`
	MissingKeywords []string                       `json:"missing_keywords"`
	FuzzyMatches    map[string]keywords.FuzzyMatch `json:"fuzzy_matches"`
	ScoringDetails  keywords.FuzzyDetails          `json:"scoring_details"`
	AIScore         *float64                       `json:"ai_score"`
	AIGrade         *string                        `json:"ai_grade"`
	AIAnalysis      *ai.Assessment                 `json:"ai_analysis"`
	AIReasoning     string                         `json:"ai_reasoning,omitempty"`
	Profile         *ai.Profile                    `json:"parsed"`
	ProfileScore    *float64                       `json:"profile_score"`
	Legacy          Legacy                         `json:"legacy"`
}

// AIAttempted reports whether an assessment, successful or not, is attached.
func (r *Result) AIAttempted() bool {
	return r != nil && r.AIAnalysis != nil
}

// AIFailed reports whether the attached assessment is a fallback.
func (r *Result) AIFailed() bool {
	return r.AIAttempted() && r.AIAnalysis.Error != ""
}

// BuildJobText appends the structured skill list to the description. Blank
// input becomes a generic placeholder.
func BuildJobText(description string, skills []string) string {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			cleaned = append(cleaned, skill)
		}
	}

	text := description
	if len(cleaned) > 0 {
		text = fmt.Sprintf("%s\n\nRequired Skills: %s", text, strings.Join(cleaned, " "))
	}

	if strings.TrimSpace(text) == "" {
		return fallbackJobText
	}
	return text
}

func newLegacy(m keywords.MatchResult) Legacy {
	return Legacy{
		Score:           m.Score,
		MatchedKeywords: joinLimited(m.Matched),
		MissingKeywords: joinLimited(m.Missing),
	}
}

func joinLimited(items []string) string {
	if len(items) > legacyListLimit {
		items = items[:legacyListLimit]
	}
	return strings.Join(items, legacyListJoinSep)
}
