package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	GradeUnknown = "N/A"

	RecommendationRecommend    = "Recommend"
	RecommendationConsider     = "Consider"
	RecommendationNotRecommend = "Not Recommended"
	RecommendationManualReview = "Manual review required"

	ReasoningIncomplete = "Analysis incomplete"

	maxErrorLength = 100
	summaryItems   = 3
)

// Assessment is a model-generated evaluation of candidate and job fit.
type Assessment struct {
	TechnicalSkillsScore float64  `json:"technical_skills_score" mapstructure:"technical_skills_score"`
	ExperienceLevelScore float64  `json:"experience_level_score" mapstructure:"experience_level_score"`
	OverallScore         float64  `json:"overall_score" mapstructure:"overall_score"`
	Grade                string   `json:"grade" mapstructure:"grade"`
	Reasoning            string   `json:"reasoning" mapstructure:"reasoning"`
	Strengths            []string `json:"strengths" mapstructure:"strengths"`
	Concerns             []string `json:"concerns" mapstructure:"concerns"`
	Recommendation       string   `json:"recommendation" mapstructure:"recommendation"`
	// Error is set only when the assessment is a fallback.
	Error string `json:"error,omitempty" mapstructure:"-"`
}

// Input is what the assessor sends to the model.
type Input struct {
	ResumeText string
	JobText    string
	Candidate  string
}

// Assessor produces a semantic assessment in a single attempt. Implementations
// never return an error: failures are reported through Outcome.Failure.
type Assessor interface {
	Assess(ctx context.Context, in Input) Outcome
}

type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport"
	FailureParse     FailureKind = "parse"
)

type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Err.Error())
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure tags err with kind. A transport error that looks like an
// expired deadline is reported as a timeout.
func NewFailure(kind FailureKind, err error) *Failure {
	if kind == FailureTransport && isTimeout(err) {
		kind = FailureTimeout
	}
	return &Failure{Kind: kind, Err: err}
}

// Outcome carries either a populated assessment or the reason there is none.
type Outcome struct {
	Assessment *Assessment
	Failure    *Failure
}

func Succeeded(a *Assessment) Outcome {
	return Outcome{Assessment: a}
}

func Failed(kind FailureKind, err error) Outcome {
	return Outcome{Failure: NewFailure(kind, err)}
}

func (o Outcome) OK() bool {
	return o.Failure == nil && o.Assessment != nil
}

// Resolve always yields an assessment, substituting Fallback on failure.
func (o Outcome) Resolve() *Assessment {
	if o.OK() {
		return o.Assessment
	}

	failure := o.Failure
	if failure == nil {
		failure = &Failure{Kind: FailureParse, Err: errors.New("empty assessment")}
	}
	return Fallback(failure)
}

// Fallback is the default-filled assessment returned when the model could
// not be consulted.
func Fallback(failure *Failure) *Assessment {
	reasoning := "AI analysis unavailable. Using keyword scoring only."
	switch failure.Kind {
	case FailureTimeout:
		reasoning = "AI analysis timed out (server busy). Keyword scoring still available."
	case FailureTransport:
		reasoning = "AI service unavailable. Please check API key configuration."
	}

	msg := ""
	if failure.Err != nil {
		msg = failure.Err.Error()
	}
	if runes := []rune(msg); len(runes) > maxErrorLength {
		msg = string(runes[:maxErrorLength])
	}

	return &Assessment{
		Grade:          GradeUnknown,
		Reasoning:      reasoning,
		Strengths:      []string{},
		Concerns:       []string{"AI analysis unavailable - manual review recommended"},
		Recommendation: RecommendationManualReview,
		Error:          fmt.Sprintf("%s: %s", failure.Kind, msg),
	}
}

// Normalize clamps scores to [0,100] and maps grade and recommendation onto
// their closed sets.
func (a *Assessment) Normalize() {
	a.TechnicalSkillsScore = clampScore(a.TechnicalSkillsScore)
	a.ExperienceLevelScore = clampScore(a.ExperienceLevelScore)
	a.OverallScore = clampScore(a.OverallScore)
	a.Grade = normalizeGrade(a.Grade)
	a.Recommendation = normalizeRecommendation(a.Recommendation)

	if strings.TrimSpace(a.Reasoning) == "" {
		a.Reasoning = ReasoningIncomplete
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Concerns == nil {
		a.Concerns = []string{}
	}
}

// Summary renders the assessment as a single line:
// "reasoning | Strengths: ... | Concerns: ... | Recommendation: ...".
func (a *Assessment) Summary() string {
	if a == nil {
		return ""
	}

	parts := make([]string, 0, 4)
	if r := strings.TrimSpace(a.Reasoning); r != "" {
		parts = append(parts, r)
	}
	if len(a.Strengths) > 0 {
		parts = append(parts, "Strengths: "+strings.Join(head(a.Strengths, summaryItems), ", "))
	}
	if len(a.Concerns) > 0 {
		parts = append(parts, "Concerns: "+strings.Join(head(a.Concerns, summaryItems), ", "))
	}
	if r := strings.TrimSpace(a.Recommendation); r != "" {
		parts = append(parts, "Recommendation: "+r)
	}

	return strings.Join(parts, " | ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func normalizeGrade(grade string) string {
	g := strings.ToUpper(strings.TrimSpace(grade))
	switch g {
	case "A", "B", "C", "D", "F":
		return g
	}

	// Models sometimes answer "A-" or "B+".
	if len(g) > 1 && strings.ContainsAny(g[:1], "ABCDF") && strings.Trim(g[1:], "+- ") == "" {
		return g[:1]
	}
	return GradeUnknown
}

func normalizeRecommendation(rec string) string {
	switch strings.ToLower(strings.TrimSpace(rec)) {
	case "recommend", "recommended":
		return RecommendationRecommend
	case "consider":
		return RecommendationConsider
	case "not recommended", "not recommend":
		return RecommendationNotRecommend
	default:
		return RecommendationManualReview
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}
