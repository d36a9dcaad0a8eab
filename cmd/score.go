package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/scoring"
	"go.uber.org/zap"
)

const (
	PromptYes         = "Yes"
	PromptKeywordOnly = "No, keyword score only"
)

var aiPrompt = promptui.Select{
	Label: "Run AI assessment?",
	Items: []string{PromptYes, PromptKeywordOnly},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single resume against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "resume text file, - for stdin")
	scoreCmd.Flags().String("hh-resume", "", "hh.ru resume id to score instead of a file (requires a token)")
	scoreCmd.Flags().String("job", "", "job description file, - for stdin")
	scoreCmd.Flags().String("vacancy", "", "hh.ru vacancy id to use as the job description")
	scoreCmd.Flags().StringSlice("skills", nil, "required skills appended to the job description")
	scoreCmd.Flags().String("candidate", "", "candidate name for logs and reports")
	scoreCmd.Flags().Bool("no-ai", false, "skip the AI assessment")
	scoreCmd.Flags().Bool("parse-profile", false, "extract contact details, skills, experience and education with the model")
	scoreCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before the AI assessment")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()

	config, logger := setup()

	logger.Info("starting the resume-matcher", zap.String("version", version))

	resumeText, candidate, err := loadResume(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	job, err := loadJob(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("loading job", zap.Error(err))
	}

	noAI, _ := cmd.Flags().GetBool("no-ai")
	scorer, err := newScorer(ctx, config, !noAI, logger)
	if err != nil {
		logger.Fatal("preparing scorer", zap.Error(err))
	}

	useAI := scorer.AIAvailable()
	if useAI && cmd.Flag("auto-approve").Value.String() == "false" {
		_, answer, err := aiPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		useAI = answer == PromptYes
	}

	parseProfile, _ := cmd.Flags().GetBool("parse-profile")

	result, err := scorer.Score(ctx, scoring.Request{
		ResumeText:     resumeText,
		JobDescription: job.Description,
		RequiredSkills: job.Skills,
		Candidate:      candidate,
		UseAI:          useAI,
		// Declining the prompt keeps the run free of model calls.
		ParseProfile: useAI && parseProfile,
	})
	if err != nil {
		logger.Fatal("scoring resume", zap.Error(err))
	}

	if err := report.Write(cmd.OutOrStdout(), viper.GetString("output"), []*scoring.Result{result}); err != nil {
		logger.Fatal("writing result", zap.Error(err))
	}
}

// loadResume returns the resume text and the candidate name, either from a
// file or from an hh.ru resume.
func loadResume(ctx context.Context, cmd *cobra.Command, config *Config, logger *zap.Logger) (string, string, error) {
	path, _ := cmd.Flags().GetString("resume")
	hhID, _ := cmd.Flags().GetString("hh-resume")
	candidate, _ := cmd.Flags().GetString("candidate")

	switch {
	case path != "" && hhID != "":
		return "", "", errors.New("--resume and --hh-resume are mutually exclusive")
	case hhID != "":
		client, err := newHeadhunter(config, logger, true)
		if err != nil {
			return "", "", err
		}

		resume, err := client.GetResume(ctx, hhID)
		if err != nil {
			return "", "", err
		}

		if candidate == "" {
			candidate = resume.CandidateName()
		}
		return resume.Text(), candidate, nil
	case path != "":
		text, err := readText(path, cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading resume: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			logger.Warn("resume is empty, the keyword score will be 0", zap.String("resume", path))
		}
		return text, candidate, nil
	default:
		return "", "", errors.New("either --resume or --hh-resume is required")
	}
}
