package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spigell/resume-matcher/internal/server"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the score_resume tool over MCP stdio",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, logger := setup()

	scorer, err := newScorer(ctx, config, true, logger)
	if err != nil {
		logger.Fatal("preparing scorer", zap.Error(err))
	}

	logger.Info("starting mcp server",
		zap.String("version", version),
		zap.String("transport", "stdio"),
		zap.Bool("ai", scorer.AIAvailable()),
	)

	srv := server.New(version, scorer, logger)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Fatal("mcp server failed", zap.Error(err))
	}

	logger.Info("mcp server stopped")
}
