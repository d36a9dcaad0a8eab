package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	scenarioJob    = "Python Django REST API"
	scenarioResume = "Experienced Python engineer, built REST APIs, used Flask"
)

type stubAssessor struct {
	mu       sync.Mutex
	outcome  ai.Outcome
	inputs   []ai.Input
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (s *stubAssessor) Assess(_ context.Context, in ai.Input) ai.Outcome {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if current <= seen || s.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	return s.outcome
}

func (s *stubAssessor) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

func goodAssessment() *ai.Assessment {
	return &ai.Assessment{
		TechnicalSkillsScore: 80,
		ExperienceLevelScore: 70,
		OverallScore:         75,
		Grade:                "B",
		Reasoning:            "Good overlap.",
		Strengths:            []string{"Python", "REST"},
		Concerns:             []string{"No Django"},
		Recommendation:       ai.RecommendationConsider,
	}
}

func TestScoreKeywordOnly(t *testing.T) {
	t.Parallel()

	scorer := New(Config{}, nil, zap.NewNop())

	res, err := scorer.Score(context.Background(), Request{
		ResumeText:     scenarioResume,
		JobDescription: scenarioJob,
		UseAI:          true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 70, res.KeywordScore)
	assert.Equal(t, []string{"api", "python", "rest"}, res.ExactMatches)
	assert.Equal(t, []string{"django"}, res.MissingKeywords)
	assert.Empty(t, res.FuzzyMatches)
	assert.Equal(t, 10, res.ScoringDetails.TotalWeight)
	assert.Equal(t, 75, res.BasicScore)
	assert.Nil(t, res.Profile)
	assert.Nil(t, res.ProfileScore)
	assert.Nil(t, res.AIScore)
	assert.Nil(t, res.AIGrade)
	assert.Nil(t, res.AIAnalysis)
	assert.False(t, res.AIAttempted())

	payload, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	for _, key := range []string{"ai_score", "ai_grade", "ai_analysis"} {
		value, ok := decoded[key]
		assert.True(t, ok, "expected %s to be present", key)
		assert.Nil(t, value, "expected %s to be null", key)
	}
}

func TestScoreSkipsAIWhenNotRequested(t *testing.T) {
	t.Parallel()

	assessor := &stubAssessor{outcome: ai.Succeeded(goodAssessment())}
	scorer := New(Config{}, assessor, zap.NewNop())

	res, err := scorer.Score(context.Background(), Request{ResumeText: scenarioResume, JobDescription: scenarioJob})
	require.NoError(t, err)

	assert.Nil(t, res.AIAnalysis)
	assert.Equal(t, 0, assessor.calls())
	assert.True(t, scorer.AIAvailable())
}

func TestScoreWithAI(t *testing.T) {
	t.Parallel()

	assessor := &stubAssessor{outcome: ai.Succeeded(goodAssessment())}
	scorer := New(Config{}, assessor, zap.NewNop())

	res, err := scorer.Score(context.Background(), Request{
		ResumeText:     scenarioResume,
		JobDescription: "Backend role",
		RequiredSkills: []string{"Python", " ", "Django"},
		Candidate:      "Jane Roe",
		UseAI:          true,
	})
	require.NoError(t, err)

	require.NotNil(t, res.AIScore)
	require.NotNil(t, res.AIGrade)
	assert.Equal(t, 75.0, *res.AIScore)
	assert.Equal(t, "B", *res.AIGrade)
	assert.False(t, res.AIFailed())
	assert.Equal(t, "Good overlap. | Strengths: Python, REST | Concerns: No Django | Recommendation: Consider", res.AIReasoning)

	require.Equal(t, 1, assessor.calls())
	in := assessor.inputs[0]
	assert.Equal(t, "Jane Roe", in.Candidate)
	assert.Equal(t, "Backend role\n\nRequired Skills: Python Django", in.JobText)
}

func TestScoreAIFailureKeepsKeywordResult(t *testing.T) {
	t.Parallel()

	req := Request{ResumeText: scenarioResume, JobDescription: scenarioJob, UseAI: true}

	baseline, err := New(Config{}, nil, zap.NewNop()).Score(context.Background(), req)
	require.NoError(t, err)

	assessor := &stubAssessor{outcome: ai.Failed(ai.FailureTimeout, context.DeadlineExceeded)}
	core, observed := observer.New(zapcore.WarnLevel)
	scorer := New(Config{}, assessor, zap.New(core))

	res, err := scorer.Score(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, baseline.KeywordScore, res.KeywordScore)
	assert.Equal(t, baseline.ExactMatches, res.ExactMatches)
	assert.Equal(t, baseline.MissingKeywords, res.MissingKeywords)
	assert.Equal(t, baseline.Legacy, res.Legacy)

	require.NotNil(t, res.AIAnalysis)
	assert.True(t, res.AIFailed())
	assert.Equal(t, 0.0, *res.AIScore)
	assert.Equal(t, ai.GradeUnknown, *res.AIGrade)
	assert.NotEmpty(t, res.AIAnalysis.Concerns)
	assert.Contains(t, res.AIAnalysis.Reasoning, "timed out")
	assert.Empty(t, res.AIReasoning)

	assert.Equal(t, 1, observed.FilterMessage("ai assessment unavailable, keyword score kept").Len())
}

func TestScoreLegacyFields(t *testing.T) {
	t.Parallel()

	words := make([]string, 0, 60)
	for i := range 60 {
		words = append(words, fmt.Sprintf("skill%02d", i))
	}

	res, err := New(Config{}, nil, nil).Score(context.Background(), Request{
		ResumeText:     "JavaScript developer",
		JobDescription: "JS developer " + strings.Join(words, " "),
	})
	require.NoError(t, err)

	assert.Equal(t, "developer", res.Legacy.MatchedKeywords)
	assert.Len(t, strings.Split(res.Legacy.MissingKeywords, ", "), legacyListLimit)
	assert.Less(t, res.Legacy.Score, res.KeywordScore)
}

func TestScoreFuzzyThresholdOverride(t *testing.T) {
	t.Parallel()

	scorer := New(Config{FuzzyThreshold: 0.99}, nil, zap.NewNop())
	req := Request{ResumeText: "experienced engineer", JobDescription: "experience"}

	strict, err := scorer.Score(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, strict.FuzzyMatches)

	req.FuzzyThreshold = 0.9
	relaxed, err := scorer.Score(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, relaxed.FuzzyMatches, "experience")
	assert.Equal(t, 95, relaxed.KeywordScore)
}

func TestScoreCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}, nil, zap.NewNop()).Score(ctx, Request{ResumeText: "go", JobDescription: "go"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScoreManyKeepsOrderAndLimit(t *testing.T) {
	t.Parallel()

	assessor := &stubAssessor{outcome: ai.Succeeded(goodAssessment()), delay: 10 * time.Millisecond}
	scorer := New(Config{Concurrency: 2}, assessor, zap.NewNop())

	reqs := make([]Request, 0, 6)
	for i := range 6 {
		reqs = append(reqs, Request{
			ResumeText:     scenarioResume,
			JobDescription: scenarioJob,
			Candidate:      fmt.Sprintf("candidate-%d", i),
			UseAI:          true,
		})
	}

	results, err := scorer.ScoreMany(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))

	ids := make(map[string]struct{})
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("candidate-%d", i), res.Candidate)
		assert.Equal(t, 70, res.KeywordScore)
		ids[res.ID] = struct{}{}
	}
	assert.Len(t, ids, len(reqs))
	assert.Equal(t, len(reqs), assessor.calls())
	assert.LessOrEqual(t, assessor.maxSeen.Load(), int32(2))
}

func TestScoreManyRateLimitRespectsContext(t *testing.T) {
	t.Parallel()

	assessor := &stubAssessor{outcome: ai.Succeeded(goodAssessment())}
	// One call per hour: the second request cannot get a token before the deadline.
	scorer := New(Config{Concurrency: 1, RatePerMinute: 1.0 / 60}, assessor, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	first, err := scorer.Score(ctx, Request{ResumeText: "go", JobDescription: "go", UseAI: true})
	require.NoError(t, err)
	assert.False(t, first.AIFailed())

	second, err := scorer.Score(ctx, Request{ResumeText: "go", JobDescription: "go", UseAI: true})
	require.NoError(t, err)
	assert.True(t, second.AIFailed())
	assert.Equal(t, 100, second.KeywordScore)
	assert.Equal(t, 1, assessor.calls())
}

func TestBuildJobText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		skills      []string
		want        string
	}{
		{name: "description only", description: "Go developer", want: "Go developer"},
		{name: "with skills", description: "Go developer", skills: []string{"Go", "Kubernetes"}, want: "Go developer\n\nRequired Skills: Go Kubernetes"},
		{name: "skills only", skills: []string{"Go"}, want: "\n\nRequired Skills: Go"},
		{name: "blank skills ignored", description: "Go", skills: []string{" ", ""}, want: "Go"},
		{name: "empty", description: "  ", want: fallbackJobText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildJobText(tt.description, tt.skills))
		})
	}
}
