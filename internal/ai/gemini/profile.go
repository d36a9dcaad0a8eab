package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	_ "embed"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/utils"
	"go.uber.org/zap"
)

const (
	// DefaultProfileTimeout bounds a single profile extraction call.
	DefaultProfileTimeout = 25 * time.Second

	maxProfileRunes = 16000
)

//go:embed profile_prompt.md
var profilePromptTemplate string

var profileDefaults = map[string]func() any{
	"email":      func() any { return nil },
	"phone":      func() any { return nil },
	"skills":     func() any { return []string{} },
	"experience": func() any { return 0 },
	"education":  func() any { return "" },
}

// ProfileParser extracts contact details, skills, experience and education
// from resume text with one Gemini call.
type ProfileParser struct {
	generator contentGenerator
	timeout   time.Duration
	logger    *zap.Logger
	maxLogLen int
}

func NewProfileParser(generator contentGenerator, timeout time.Duration, maxLogLength int, log *zap.Logger) *ProfileParser {
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ProfileParser{
		generator: generator,
		timeout:   timeout,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// ParseProfile never calls the model for blank text.
func (p *ProfileParser) ParseProfile(ctx context.Context, resumeText string) *ai.Profile {
	if strings.TrimSpace(resumeText) == "" {
		return ai.EmptyProfile()
	}

	prompt := strings.ReplaceAll(profilePromptTemplate, "{{RESUME}}", utils.TruncateRunes(resumeText, maxProfileRunes))

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	started := time.Now()
	raw, err := p.generator.GenerateContent(callCtx, prompt)
	if err != nil {
		kind := ai.FailureTransport
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			kind = ai.FailureTimeout
		}
		failure := ai.NewFailure(kind, err)
		p.logger.Warn("gemini profile extraction failed",
			zap.String("kind", string(failure.Kind)),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return ai.ProfileFallback(failure)
	}

	p.logger.Debug("gemini profile response",
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
		zap.Duration("elapsed", time.Since(started)),
	)

	profile, err := parseProfile(raw)
	if err != nil {
		p.logger.Warn("gemini profile could not be parsed", zap.Error(err))
		return ai.ProfileFallback(ai.NewFailure(ai.FailureParse, err))
	}

	return profile
}

func parseProfile(raw string) (*ai.Profile, error) {
	var profile ai.Profile
	if err := decodeWithDefaults(raw, profileDefaults, &profile); err != nil {
		return nil, err
	}

	profile.Error = ""
	profile.Normalize()

	return &profile, nil
}
