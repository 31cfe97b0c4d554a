package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmatch/internal/model"
)

var searchFlags struct {
	position   string
	location   string
	experience string
	salary     string
	jobNature  string
	skills     []string
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the ranked listings as JSON",
	Long:  "One-shot search: scrapes every enabled source, ranks the results, prints them to stdout. Logs go to stderr.",
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.position, "position", "p", "", "job title to search for (required)")
	f.StringVarP(&searchFlags.location, "location", "l", "", "location to search in (required)")
	f.StringVar(&searchFlags.experience, "experience", "", "desired experience level")
	f.StringVar(&searchFlags.salary, "salary", "", "desired salary")
	f.StringVar(&searchFlags.jobNature, "job-nature", "", "onsite, remote or hybrid")
	f.StringSliceVar(&searchFlags.skills, "skills", nil, "comma-separated skills")
	rootCmd.AddCommand(searchCmd)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLoggerTo(os.Stderr, debug)

	q := model.SearchQuery{
		Position:   searchFlags.position,
		Location:   searchFlags.location,
		Experience: optional(searchFlags.experience),
		Salary:     optional(searchFlags.salary),
		JobNature:  optional(searchFlags.jobNature),
		Skills:     searchFlags.skills,
	}
	if err := q.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	svc, err := buildService(cfg, buildRanker(cfg, logger), "cli", logger)
	if err != nil {
		logger.Error("failed to build search pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listings := svc.Search(ctx, q)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(listings)
}
