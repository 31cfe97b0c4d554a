package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmatch/internal/aggregate"
	"github.com/amishk599/jobmatch/internal/config"
	"github.com/amishk599/jobmatch/internal/export"
	"github.com/amishk599/jobmatch/internal/model"
	"github.com/amishk599/jobmatch/internal/scheduler"
)

var batchFlags struct {
	keywords string
	location string
	output   string
	rank     bool
	notify   bool
	every    time.Duration
	gap      time.Duration
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the configured searches and write a CSV",
	Long: "Runs every search_queries entry (or the one given by --keywords/--location), " +
		"keeps records matching the keyword filters, and writes them to a CSV file.",
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.keywords, "keywords", "k", "", "search a single query instead of search_queries")
	f.StringVarP(&batchFlags.location, "location", "l", "", "location for --keywords")
	f.StringVarP(&batchFlags.output, "output", "o", "", "CSV path (overrides output.csv_path)")
	f.BoolVar(&batchFlags.rank, "rank", false, "also apply the configured relevance ranker")
	f.BoolVar(&batchFlags.notify, "notify", false, "send the results through the configured notifier")
	f.DurationVar(&batchFlags.every, "every", 0, "repeat the batch on this interval until interrupted (0 runs once)")
	f.DurationVar(&batchFlags.gap, "gap", time.Second, "pause between queries within a batch")
	rootCmd.AddCommand(batchCmd)
}

// batchQueries returns the flag query when given, else the configured ones.
func batchQueries(cfg *config.Config, keywords, location string) []model.SearchQuery {
	if keywords != "" {
		return []model.SearchQuery{{Position: keywords, Location: location}}
	}
	queries := make([]model.SearchQuery, 0, len(cfg.SearchQueries))
	for _, q := range cfg.SearchQueries {
		queries = append(queries, model.SearchQuery{Position: q.Keywords, Location: q.Location})
	}
	return queries
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	queries := batchQueries(cfg, batchFlags.keywords, batchFlags.location)
	if len(queries) == 0 {
		logger.Error("no search queries: set search_queries in config or pass --keywords")
		os.Exit(1)
	}

	var ranker model.Ranker
	if batchFlags.rank {
		ranker = buildRanker(cfg, logger)
	}
	svc, err := buildService(cfg, ranker, "batch", logger, aggregate.WithFilter(keywordFilter(cfg)))
	if err != nil {
		logger.Error("failed to build search pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := cfg.Output.CSVPath
	if batchFlags.output != "" {
		path = batchFlags.output
	}
	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)

	var (
		records  []model.JobRecord
		listings []model.JobListing
	)
	tasks := make([]scheduler.Task, 0, len(queries))
	for _, q := range queries {
		tasks = append(tasks, scheduler.Task{
			Name: q.Position,
			Run: func(ctx context.Context) error {
				res := svc.Run(ctx, q)
				for _, s := range res.Ranked {
					records = append(records, s.JobRecord)
				}
				listings = append(listings, res.Listings...)
				return nil
			},
		})
	}

	var cycleErr error
	sched := scheduler.NewScheduler(tasks, batchFlags.every, batchFlags.gap, logger)
	sched.SetAfterCycle(func(ctx context.Context) {
		defer func() { records, listings = nil, nil }()

		if err := export.WriteCSVFile(path, records); err != nil {
			logger.Error("failed to write csv", "path", path, "error", err)
			cycleErr = err
			return
		}
		logger.Info("batch complete", "queries", len(queries), "jobs", len(records), "csv", path)

		if batchFlags.notify && len(listings) > 0 {
			if err := n.Notify(listings); err != nil {
				logger.Error("notification failed", "error", err)
				cycleErr = err
			}
		}
	})

	if batchFlags.every <= 0 {
		sched.RunOnce(ctx)
		if cycleErr != nil {
			os.Exit(1)
		}
		return nil
	}

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
	logger.Info("goodbye")
	return nil
}
