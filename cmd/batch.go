package cmd

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/scoring"
	"go.uber.org/zap"
)

var batchCmd = &cobra.Command{
	Use:   "batch RESUME_FILE...",
	Short: "Score several resume files against one job description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		batch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("job", "", "job description file, - for stdin")
	batchCmd.Flags().String("vacancy", "", "hh.ru vacancy id to use as the job description")
	batchCmd.Flags().StringSlice("skills", nil, "required skills appended to the job description")
	batchCmd.Flags().Bool("no-ai", false, "skip the AI assessment")
	batchCmd.Flags().Bool("parse-profile", false, "extract contact details, skills, experience and education with the model")
	batchCmd.Flags().String("xlsx", "", "also save results to this spreadsheet")
}

func batch(cmd *cobra.Command, files []string) {
	ctx := context.Background()

	config, logger := setup()

	if jobFile, _ := cmd.Flags().GetString("job"); jobFile == stdinPath {
		for _, file := range files {
			if file == stdinPath {
				logger.Fatal("reading resumes", zap.Error(errors.New("stdin cannot carry both the job and a resume")))
			}
		}
	}

	job, err := loadJob(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("loading job", zap.Error(err))
	}

	parseProfile, _ := cmd.Flags().GetBool("parse-profile")
	reqs, err := batchRequests(files, job, cmd.InOrStdin(), parseProfile)
	if err != nil {
		logger.Fatal("reading resumes", zap.Error(err))
	}

	noAI, _ := cmd.Flags().GetBool("no-ai")
	scorer, err := newScorer(ctx, config, !noAI, logger)
	if err != nil {
		logger.Fatal("preparing scorer", zap.Error(err))
	}

	logger.Info("scoring resumes",
		zap.Int("count", len(reqs)),
		zap.String("job", job.Title),
		zap.Bool("ai", scorer.AIAvailable()),
	)

	results, err := scorer.ScoreMany(ctx, reqs)
	if err != nil {
		logger.Fatal("scoring resumes", zap.Error(err))
	}

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		saved, err := report.WriteXLSX(path, results)
		if err != nil {
			logger.Fatal("saving spreadsheet", zap.Error(err))
		}
		logger.Info("results saved", zap.String("filename", saved))
	}

	if err := report.Write(cmd.OutOrStdout(), viper.GetString("output"), results); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}

const stdinCandidate = "stdin"

// batchRequests reads every resume file, "-" at most once from stdin. The
// file name without extension becomes the candidate name.
func batchRequests(files []string, target *jobSource, stdin io.Reader, parseProfile bool) ([]scoring.Request, error) {
	reqs := make([]scoring.Request, 0, len(files))
	stdinUsed := false

	for _, file := range files {
		candidate := stdinCandidate
		if file == stdinPath {
			if stdinUsed {
				return nil, errors.New("stdin can be given only once")
			}
			if stdin == nil {
				return nil, errors.New("stdin is not available")
			}
			stdinUsed = true
		} else {
			base := filepath.Base(file)
			candidate = strings.TrimSuffix(base, filepath.Ext(base))
		}

		text, err := readText(file, stdin)
		if err != nil {
			return nil, err
		}

		reqs = append(reqs, scoring.Request{
			ResumeText:     text,
			JobDescription: target.Description,
			RequiredSkills: target.Skills,
			Candidate:      candidate,
			UseAI:          true,
			ParseProfile:   parseProfile,
		})
	}
	return reqs, nil
}
