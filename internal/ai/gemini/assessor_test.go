package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spigell/resume-matcher/internal/ai"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// blockingGenerator waits for the call context to expire.
type blockingGenerator struct{}

func (blockingGenerator) GenerateContent(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

const fullResponse = `{
  "technical_skills_score": 82,
  "experience_level_score": "70",
  "overall_score": 78.5,
  "grade": "B",
  "reasoning": "Solid Python and REST background.",
  "strengths": ["Python", "REST APIs"],
  "concerns": ["No Django"],
  "recommendation": "Consider"
}`

func TestAssessorAssess(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + fullResponse + "\n```"}
	assessor := NewAssessor(stub, time.Second, 0, zap.NewNop())

	outcome := assessor.Assess(context.Background(), ai.Input{
		ResumeText: "Experienced Python engineer",
		JobText:    "Python Django REST API",
		Candidate:  "Jane Roe",
	})

	if !outcome.OK() {
		t.Fatalf("expected successful outcome, got failure %v", outcome.Failure)
	}

	got := outcome.Assessment
	if got.TechnicalSkillsScore != 82 || got.ExperienceLevelScore != 70 || got.OverallScore != 78.5 {
		t.Fatalf("unexpected scores: %+v", got)
	}
	if got.Grade != "B" || got.Recommendation != ai.RecommendationConsider {
		t.Fatalf("unexpected grade or recommendation: %+v", got)
	}
	if len(got.Strengths) != 2 || got.Concerns[0] != "No Django" {
		t.Fatalf("unexpected lists: %+v", got)
	}
	if got.Error != "" {
		t.Fatalf("expected no error field, got %q", got.Error)
	}

	if stub.calls != 1 {
		t.Fatalf("expected a single call, got %d", stub.calls)
	}
	for _, want := range []string{"Experienced Python engineer", "Python Django REST API", "Jane Roe"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("expected all placeholders to be replaced")
	}
}

func TestAssessorFillsMissingFields(t *testing.T) {
	stub := &stubGenerator{response: `{"overall_score": 64, "strengths": "Go", "grade": null}`}
	assessor := NewAssessor(stub, time.Second, 0, zap.NewNop())

	outcome := assessor.Assess(context.Background(), ai.Input{ResumeText: "go", JobText: "go"})
	if !outcome.OK() {
		t.Fatalf("expected successful outcome, got failure %v", outcome.Failure)
	}

	got := outcome.Assessment
	if got.OverallScore != 64 || got.TechnicalSkillsScore != 0 {
		t.Fatalf("unexpected scores: %+v", got)
	}
	if got.Grade != ai.GradeUnknown {
		t.Fatalf("expected default grade, got %q", got.Grade)
	}
	if got.Reasoning != ai.ReasoningIncomplete {
		t.Fatalf("expected default reasoning, got %q", got.Reasoning)
	}
	if got.Recommendation != ai.RecommendationManualReview {
		t.Fatalf("expected default recommendation, got %q", got.Recommendation)
	}
	if len(got.Strengths) != 1 || got.Strengths[0] != "Go" {
		t.Fatalf("expected single strength, got %v", got.Strengths)
	}
	if got.Concerns == nil || len(got.Concerns) != 0 {
		t.Fatalf("expected empty concerns, got %v", got.Concerns)
	}
}

func TestAssessorFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		generator contentGenerator
		kind      ai.FailureKind
	}{
		{name: "transport", generator: &stubGenerator{err: errors.New("permission denied: API key not valid")}, kind: ai.FailureTransport},
		{name: "timeout text", generator: &stubGenerator{err: errors.New("Client.Timeout exceeded while awaiting headers")}, kind: ai.FailureTimeout},
		{name: "deadline", generator: blockingGenerator{}, kind: ai.FailureTimeout},
		{name: "malformed", generator: &stubGenerator{response: "I think the candidate is great"}, kind: ai.FailureParse},
		{name: "not an object", generator: &stubGenerator{response: `["A"]`}, kind: ai.FailureParse},
		{name: "empty fence", generator: &stubGenerator{response: "```json\n```"}, kind: ai.FailureParse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assessor := NewAssessor(tc.generator, 20*time.Millisecond, 0, zap.NewNop())
			outcome := assessor.Assess(context.Background(), ai.Input{ResumeText: "r", JobText: "j"})

			if outcome.OK() {
				t.Fatalf("expected failure")
			}
			if outcome.Failure.Kind != tc.kind {
				t.Fatalf("expected %s failure, got %s (%v)", tc.kind, outcome.Failure.Kind, outcome.Failure.Err)
			}

			resolved := outcome.Resolve()
			if resolved.Grade != ai.GradeUnknown || resolved.OverallScore != 0 || len(resolved.Concerns) == 0 {
				t.Fatalf("unexpected fallback: %+v", resolved)
			}
			if !strings.HasPrefix(resolved.Error, string(tc.kind)+": ") {
				t.Fatalf("unexpected error field: %q", resolved.Error)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		resume   string
		job      string
		contains []string
		absent   []string
	}{
		{
			name:     "placeholders for empty input",
			contains: []string{noResumeText, noJobText},
		},
		{
			name:     "truncates resume",
			resume:   strings.Repeat("r", maxResumeRunes) + "TAIL",
			job:      "job",
			contains: []string{strings.Repeat("r", maxResumeRunes)},
			absent:   []string{"TAIL"},
		},
		{
			name:     "truncates job",
			resume:   "resume",
			job:      strings.Repeat("j", maxJobRunes) + "TAIL",
			contains: []string{strings.Repeat("j", maxJobRunes)},
			absent:   []string{"TAIL"},
		},
		{
			name:     "input text is not expanded",
			resume:   "I wrote {{CANDIDATE}} templates",
			job:      "job",
			contains: []string{"I wrote {{CANDIDATE}} templates"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			prompt := buildPrompt(tc.resume, tc.job, "Candidate")
			for _, want := range tc.contains {
				if !strings.Contains(prompt, want) {
					t.Fatalf("expected prompt to contain %q", want)
				}
			}
			for _, unwanted := range tc.absent {
				if strings.Contains(prompt, unwanted) {
					t.Fatalf("expected prompt not to contain %q", unwanted)
				}
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare", input: ` {"a": 1} `, want: `{"a": 1}`},
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "plain fence", input: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "text around fence", input: "Here you go:\n```json\n{\"a\": 1}\n```\nThanks", want: `{"a": 1}`},
		{name: "unterminated fence", input: "```json\n{\"a\": 1}", want: `{"a": 1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := extractJSON(tc.input); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

// liveContextGenerator fails when the call context is already done.
type liveContextGenerator struct{}

func (liveContextGenerator) GenerateContent(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fullResponse, nil
}

func TestAssessorIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := NewAssessor(liveContextGenerator{}, time.Second, 0, zap.NewNop()).
		Assess(ctx, ai.Input{ResumeText: "r", JobText: "j"})

	if !outcome.OK() {
		t.Fatalf("expected the call to run until its own timeout, got %v", outcome.Failure)
	}
}
