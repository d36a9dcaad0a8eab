package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/utils"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single assessment call.
	DefaultTimeout = 40 * time.Second

	maxResumeRunes = 8000
	maxJobRunes    = 4000

	defaultMaxLogLength = 200
	defaultCandidate    = "Candidate"
	noResumeText        = "No resume text available"
	noJobText           = "No job description"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assessor asks Gemini for a semantic assessment. It makes exactly one call
// per Assess and never retries.
type Assessor struct {
	generator contentGenerator
	timeout   time.Duration
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

func NewAssessor(generator contentGenerator, timeout time.Duration, maxLogLength int, log *zap.Logger) *Assessor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Assessor{
		generator: generator,
		timeout:   timeout,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (a *Assessor) Assess(ctx context.Context, in ai.Input) ai.Outcome {
	candidate := utils.FirstNonEmpty(in.Candidate, defaultCandidate)
	log := a.logger.With(zap.String(logger.FieldCandidate, candidate))

	prompt := buildPrompt(in.ResumeText, in.JobText, candidate)

	log.Debug("gemini assessment request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
		zap.Duration("timeout", a.timeout),
	)

	// Only the timeout ends the call, a cancelled caller does not.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	started := time.Now()
	raw, err := a.generator.GenerateContent(callCtx, prompt)
	if err != nil {
		kind := ai.FailureTransport
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			kind = ai.FailureTimeout
		}
		outcome := ai.Failed(kind, err)
		log.Warn("gemini assessment failed",
			zap.String("kind", string(outcome.Failure.Kind)),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return outcome
	}

	log.Debug("gemini assessment response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
		zap.Duration("elapsed", time.Since(started)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		log.Warn("gemini assessment could not be parsed", zap.Error(err))
		return ai.Failed(ai.FailureParse, err)
	}

	return ai.Succeeded(assessment)
}

func buildPrompt(resume, job, candidate string) string {
	resume = utils.TruncateRunes(resume, maxResumeRunes)
	if strings.TrimSpace(resume) == "" {
		resume = noResumeText
	}

	job = utils.TruncateRunes(job, maxJobRunes)
	if strings.TrimSpace(job) == "" {
		job = noJobText
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB_DESCRIPTION}}\n\nResume of {{CANDIDATE}}:\n{{RESUME}}\n\nJSON Response:"
	}

	// Candidate first: resume and job text may contain placeholder-like text.
	prompt := strings.ReplaceAll(template, "{{CANDIDATE}}", candidate)
	return strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", job,
		"{{RESUME}}", resume,
	).Replace(prompt)
}

var fieldDefaults = map[string]func() any{
	"technical_skills_score": func() any { return 0 },
	"experience_level_score": func() any { return 0 },
	"overall_score":          func() any { return 0 },
	"grade":                  func() any { return ai.GradeUnknown },
	"reasoning":              func() any { return ai.ReasoningIncomplete },
	"strengths":              func() any { return []string{} },
	"concerns":               func() any { return []string{} },
	"recommendation":         func() any { return ai.RecommendationManualReview },
}

func parseResponse(raw string) (*ai.Assessment, error) {
	var assessment ai.Assessment
	if err := decodeWithDefaults(raw, fieldDefaults, &assessment); err != nil {
		return nil, err
	}

	assessment.Error = ""
	assessment.Normalize()

	return &assessment, nil
}

// decodeWithDefaults unwraps a fenced JSON object, fills absent or null keys
// from defaults and decodes the result into target with weak typing.
func decodeWithDefaults(raw string, defaults map[string]func() any, target any) error {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return errors.New("empty gemini response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return fmt.Errorf("parse gemini response: %w", err)
	}
	if data == nil {
		data = make(map[string]any, len(defaults))
	}

	for field, value := range defaults {
		if v, ok := data[field]; !ok || v == nil {
			data[field] = value()
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("create response decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}

	return nil
}

// extractJSON unwraps a payload fenced as ```json or plain ```. Anything
// else is returned trimmed.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if _, rest, ok := strings.Cut(raw, "```json"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return strings.TrimSpace(body)
	}

	if _, rest, ok := strings.Cut(raw, "```"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return strings.TrimSpace(body)
	}

	return raw
}
