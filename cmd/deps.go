package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/headhunter"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/scoring"
	"github.com/spigell/resume-matcher/internal/secrets"
	"go.uber.org/zap"
)

const stdinPath = "-"

// jobSource is the text a resume is scored against.
type jobSource struct {
	Title       string
	Description string
	Skills      []string
}

// setup builds the logger and the validated config. Both are required by
// every command that scores, so failures are fatal.
func setup() (*Config, *zap.Logger) {
	logger, err := logger.New(loggerOptions(viper.GetViper()))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since the config was just decoded
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config, logger
}

func loggerOptions(v *viper.Viper) logger.Options {
	return logger.Options{
		JSON:  v.GetBool("json"),
		Debug: v.GetBool("debug"),
		File:  v.GetString("log-file"),
	}
}

// newScorer wires the Gemini assessor and profile parser when AI is wanted
// and a key can be found. A missing key leaves the scorer keyword-only.
func newScorer(ctx context.Context, config *Config, wantAI bool, base *zap.Logger) (*scoring.Scorer, error) {
	scoringConfig := scoring.Config{
		FuzzyThreshold: config.FuzzyThreshold,
		Concurrency:    config.Concurrency,
		RatePerMinute:  config.AI.RatePerMinute,
	}

	if !wantAI || !config.AI.Enabled {
		return scoring.New(scoringConfig, nil, base), nil
	}

	generator, err := newGenerator(ctx, config.AI, base)
	if err != nil {
		if errors.Is(err, errNoAPIKey) {
			base.Warn("continuing without ai assessment",
				zap.Error(err),
				zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.api-key-file"),
			)
			return scoring.New(scoringConfig, nil, base), nil
		}
		return nil, err
	}

	aiLogger := logger.WithCommonFields(base, "gemini", generator.Model())
	assessor := gemini.NewAssessor(generator, config.AI.Timeout, config.AI.MaxLogLength, aiLogger)
	profiles := gemini.NewProfileParser(generator, config.AI.ProfileTimeout, config.AI.MaxLogLength, aiLogger)

	return scoring.New(scoringConfig, assessor, base).WithProfileParser(profiles), nil
}

var errNoAPIKey = errors.New("gemini api key is not available")

func newGenerator(ctx context.Context, config *AIConfig, base *zap.Logger) (*gemini.Generator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
		Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoAPIKey, err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Model, base)
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}

	return generator, nil
}

// loadJob reads the job from a file or from an HH vacancy. Skills from the
// flag are appended to the ones the vacancy carries.
func loadJob(ctx context.Context, cmd *cobra.Command, config *Config, logger *zap.Logger) (*jobSource, error) {
	jobFile, _ := cmd.Flags().GetString("job")
	vacancyID, _ := cmd.Flags().GetString("vacancy")
	skills, _ := cmd.Flags().GetStringSlice("skills")

	if jobFile != "" && vacancyID != "" {
		return nil, errors.New("--job and --vacancy are mutually exclusive")
	}

	result := &jobSource{Skills: skills}

	switch {
	case vacancyID != "":
		client, err := newHeadhunter(config, logger, false)
		if err != nil {
			return nil, err
		}

		vacancy, err := client.GetVacancy(ctx, vacancyID)
		if err != nil {
			return nil, err
		}

		description, vacancySkills, err := vacancy.JobText()
		if err != nil {
			return nil, err
		}

		result.Title = vacancy.Title()
		result.Description = description
		result.Skills = append(vacancySkills, skills...)

		logger.Info("loaded vacancy",
			zap.String("vacancy_id", vacancy.ID),
			zap.String("vacancy_name", vacancy.Name),
			zap.Int("skills", len(result.Skills)),
		)
	case jobFile != "":
		text, err := readText(jobFile, cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading job description: %w", err)
		}
		result.Title = jobFile
		result.Description = text
	}

	return result, nil
}

// newHeadhunter creates an HH client. The token is loaded when available
// and is an error only when required is set.
func newHeadhunter(config *Config, logger *zap.Logger, required bool) (*headhunter.Client, error) {
	token := ""
	if tokenFile := strings.TrimSpace(config.Headhunter.TokenFile); tokenFile != "" || required {
		loaded, err := secrets.Load(secrets.Source{
			Name: "headhunter token",
			File: tokenFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set HH_TOKEN_FILE or headhunter.token-file)", err)
		}
		token = loaded
	}

	client := headhunter.New(logger, token)
	if config.Headhunter.UserAgent != "" {
		client.UserAgent = config.Headhunter.UserAgent
	}

	return client, nil
}

// readText reads a whole file, or stdin for "-".
func readText(path string, stdin io.Reader) (string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
