// Package server exposes the scorer as an MCP tool.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spigell/resume-matcher/internal/scoring"
	"go.uber.org/zap"
)

const (
	Name     = "resume-matcher"
	ToolName = "score_resume"
)

// ScoreInput is the argument object of the score_resume tool.
type ScoreInput struct {
	Resume         string   `json:"resume" jsonschema:"Plain resume text" validate:"required"`
	JobDescription string   `json:"job_description,omitempty" jsonschema:"Job description text. Blank means a generic evaluation"`
	Skills         []string `json:"skills,omitempty" jsonschema:"Required skills appended to the job description"`
	Candidate      string   `json:"candidate,omitempty" jsonschema:"Candidate name used in logs and reports"`
	UseAI          bool     `json:"use_ai,omitempty" jsonschema:"Ask the language model for a semantic assessment"`
	FuzzyThreshold float64  `json:"fuzzy_threshold,omitempty" jsonschema:"Similarity needed for a fuzzy match, between 0 and 1 (default 0.85)" validate:"gte=0,lte=1"`
	ParseProfile   bool     `json:"parse_profile,omitempty" jsonschema:"Extract email, phone, skills, years of experience and education with the language model"`
}

func (in ScoreInput) request() scoring.Request {
	return scoring.Request{
		ResumeText:     in.Resume,
		JobDescription: in.JobDescription,
		RequiredSkills: in.Skills,
		Candidate:      in.Candidate,
		UseAI:          in.UseAI,
		FuzzyThreshold: in.FuzzyThreshold,
		ParseProfile:   in.ParseProfile,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New creates an MCP server with the scoring tool registered.
func New(version string, scorer *scoring.Scorer, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: version,
	}, nil)

	Register(server, scorer, logger)

	return server
}

// Register adds the score_resume tool to server.
func Register(server *mcp.Server, scorer *scoring.Scorer, logger *zap.Logger) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Score a resume against a job description. Returns a weighted keyword score with exact, fuzzy and missing keywords, and an optional AI assessment that falls back to keyword-only results when the model is unavailable.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, scoreHandler(scorer, logger))
}

func scoreHandler(scorer *scoring.Scorer, logger *zap.Logger) mcp.ToolHandlerFor[ScoreInput, *scoring.Result] {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScoreInput) (*mcp.CallToolResult, *scoring.Result, error) {
		input.Resume = strings.TrimSpace(input.Resume)
		if err := validateInput(input); err != nil {
			logger.Debug("rejected tool input", zap.String("tool", ToolName), zap.Error(err))
			return nil, nil, err
		}

		result, err := scorer.Score(ctx, input.request())
		if err != nil {
			return nil, nil, err
		}

		return nil, result, nil
	}
}

func validateInput(input ScoreInput) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", jsonName(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", jsonName(fe.Field()), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func jsonName(field string) string {
	switch field {
	case "Resume":
		return "resume"
	case "FuzzyThreshold":
		return "fuzzy_threshold"
	default:
		return strings.ToLower(field)
	}
}
