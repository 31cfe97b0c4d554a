package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmatch/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	Long:  "Serves POST /search_jobs/ plus /healthz and /metrics; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger.Info("config loaded",
		"sources", len(cfg.EnabledSources()),
		"workers", cfg.Workers,
		"ranking", cfg.Ranking.Mode,
		"embedder", cfg.Ranking.Embedder.Type,
		"threshold", cfg.Ranking.Threshold,
	)

	svc, err := buildService(cfg, buildRanker(cfg, logger), "api", logger)
	if err != nil {
		logger.Error("failed to build search pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg.Server.Addr, svc, logger).ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
