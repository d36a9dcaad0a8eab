// Package scoring fuses the keyword pipeline and the optional AI assessment
// into a single result.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/keywords"
	"github.com/spigell/resume-matcher/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultConcurrency = 4

type Config struct {
	FuzzyThreshold float64
	// Concurrency caps parallel requests in ScoreMany.
	Concurrency int
	// RatePerMinute paces AI calls across all requests. Zero disables pacing.
	RatePerMinute float64
}

// Scorer is safe for concurrent use. It keeps no state between calls apart
// from the shared rate limiter.
type Scorer struct {
	assessor    ai.Assessor
	profiles    ai.ProfileParser
	limiter     *rate.Limiter
	threshold   float64
	concurrency int
	logger      *zap.Logger
}

// New creates a Scorer. A nil assessor disables AI assessment regardless of
// Request.UseAI.
func New(cfg Config, assessor ai.Assessor, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}

	threshold := cfg.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = keywords.DefaultFuzzyThreshold
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerMinute/60), 1)
	}

	return &Scorer{
		assessor:    assessor,
		limiter:     limiter,
		threshold:   threshold,
		concurrency: concurrency,
		logger:      log,
	}
}

// WithProfileParser enables Request.ParseProfile. Call it before the scorer
// is shared.
func (s *Scorer) WithProfileParser(parser ai.ProfileParser) *Scorer {
	s.profiles = parser
	return s
}

// AIAvailable reports whether an assessor is configured.
func (s *Scorer) AIAvailable() bool {
	return s.assessor != nil
}

// Score always computes the keyword result. The AI assessment runs next to it
// only when requested and configured, and its failure never affects the
// keyword fields. The only error is a context that is already done.
func (s *Scorer) Score(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("score resume: %w", err)
	}

	id := uuid.NewString()
	log := logger.WithRequest(s.logger, id, req.Candidate)

	jobText := BuildJobText(req.JobDescription, req.RequiredSkills)
	threshold := s.threshold
	if req.FuzzyThreshold > 0 && req.FuzzyThreshold <= 1 {
		threshold = req.FuzzyThreshold
	}

	var (
		g          errgroup.Group
		match      keywords.FuzzyResult
		legacy     keywords.MatchResult
		basic      keywords.MatchResult
		profile    *ai.Profile
		assessment *ai.Assessment
		assessed   bool
	)

	g.Go(func() error {
		match = keywords.FuzzyScore(req.ResumeText, jobText, threshold)
		legacy = keywords.LegacyScore(req.ResumeText, jobText)
		basic = keywords.BasicScore(req.ResumeText, jobText)
		return nil
	})

	if req.ParseProfile && s.profiles != nil {
		g.Go(func() error {
			profile = s.parseProfile(ctx, req.ResumeText)
			return nil
		})
	}

	useAI := req.UseAI && s.assessor != nil
	if req.UseAI && s.assessor == nil {
		log.Debug("ai assessment requested but no assessor is configured")
	}

	if useAI {
		g.Go(func() error {
			outcome := s.assess(ctx, req, jobText)
			assessment = outcome.Resolve()
			assessed = outcome.OK()
			return nil
		})
	}

	// Branches report through their captured variables and never fail.
	_ = g.Wait()

	result := &Result{
		ID:              id,
		Candidate:       req.Candidate,
		KeywordScore:    match.Score,
		BasicScore:      basic.Score,
		ExactMatches:    match.Exact,
		MissingKeywords: match.Missing,
		FuzzyMatches:    match.Fuzzy,
		ScoringDetails:  match.Details,
		Legacy:          newLegacy(legacy),
	}

	if assessment != nil {
		score := assessment.OverallScore
		grade := assessment.Grade
		result.AIScore = &score
		result.AIGrade = &grade
		result.AIAnalysis = assessment
		if assessed {
			result.AIReasoning = assessment.Summary()
		}
	}

	if profile != nil {
		result.Profile = profile
		// A fallback profile is empty, scoring it would only reward the
		// missing skill list.
		if profile.Error == "" {
			score := ProfileScore(profile, req.RequiredSkills)
			result.ProfileScore = &score
		} else {
			log.Warn("profile extraction unavailable", zap.String("profile_error", profile.Error))
		}
	}

	fields := []zap.Field{
		zap.Int("keyword_score", result.KeywordScore),
		zap.Int("exact_matches", len(result.ExactMatches)),
		zap.Int("fuzzy_matches", len(result.FuzzyMatches)),
		zap.Int("missing_keywords", len(result.MissingKeywords)),
		zap.Int("basic_score", result.BasicScore),
		zap.Int("legacy_score", result.Legacy.Score),
	}
	if result.ProfileScore != nil {
		fields = append(fields, zap.Float64("profile_score", *result.ProfileScore))
	}
	if result.AIAttempted() {
		fields = append(fields, zap.Float64("ai_score", *result.AIScore), zap.String("ai_grade", *result.AIGrade))
	}
	if result.AIFailed() {
		log.Warn("ai assessment unavailable, keyword score kept", zap.String("ai_error", result.AIAnalysis.Error))
	}
	log.Info("resume scored", fields...)

	return result, nil
}

func (s *Scorer) parseProfile(ctx context.Context, resumeText string) *ai.Profile {
	if err := s.wait(ctx); err != nil {
		return ai.ProfileFallback(ai.NewFailure(ai.FailureTransport, err))
	}
	return s.profiles.ParseProfile(ctx, resumeText)
}

// wait takes a token from the shared limiter, if any.
func (s *Scorer) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}

	waitStarted := time.Now()
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}
	s.logger.Debug("rate limiter released", zap.Duration("waited", time.Since(waitStarted)))
	return nil
}

func (s *Scorer) assess(ctx context.Context, req Request, jobText string) ai.Outcome {
	if err := s.wait(ctx); err != nil {
		return ai.Failed(ai.FailureTransport, err)
	}

	return s.assessor.Assess(ctx, ai.Input{
		ResumeText: req.ResumeText,
		JobText:    jobText,
		Candidate:  req.Candidate,
	})
}

// ScoreMany scores every request with at most Config.Concurrency in flight.
// Results keep the order of reqs.
func (s *Scorer) ScoreMany(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Score(gctx, req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("batch scored", zap.Int("count", len(results)))

	return results, nil
}
