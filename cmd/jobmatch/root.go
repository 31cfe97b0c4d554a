package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmatch/internal/adapter"
	"github.com/amishk599/jobmatch/internal/aggregate"
	"github.com/amishk599/jobmatch/internal/config"
	"github.com/amishk599/jobmatch/internal/embed"
	"github.com/amishk599/jobmatch/internal/fetch"
	"github.com/amishk599/jobmatch/internal/filter"
	"github.com/amishk599/jobmatch/internal/metrics"
	"github.com/amishk599/jobmatch/internal/model"
	"github.com/amishk599/jobmatch/internal/notifier"
	"github.com/amishk599/jobmatch/internal/rank"
	"github.com/amishk599/jobmatch/internal/ratelimit"
	"github.com/amishk599/jobmatch/internal/retry"
	"github.com/amishk599/jobmatch/internal/search"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobmatch",
	Short: "Job search across listing sites, ranked by relevance",
	Long:  "JobMatch scrapes LinkedIn and Indeed for a position and location, then keeps the listings closest in meaning to what you asked for.",
	// Default to `serve` so that `jobmatch` with no args runs the API.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBMATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig loads .env, resolves the config path and parses it.
// Priority: explicit path arg > JOBMATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnv(".env"); err != nil {
		return nil, err
	}
	if path == "" {
		if env := os.Getenv("JOBMATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	return setupLoggerTo(os.Stdout, dbg)
}

func setupLoggerTo(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func keywordFilter(cfg *config.Config) *filter.KeywordFilter {
	return filter.NewKeywordFilter(
		cfg.Filters.TitleInclude,
		cfg.Filters.TitleExclude,
		cfg.Filters.Locations,
		cfg.Filters.ExcludeLocations,
	)
}

// createSource builds the adapter for one configured site. Every source
// shares fetcher; Indeed goes through the relay on top of it.
func createSource(sc config.SourceConfig, fetcher fetch.DocumentFetcher, logger *slog.Logger) (model.Source, error) {
	var pause *ratelimit.Pause
	if sc.PauseMax > 0 {
		pause = ratelimit.NewPause(sc.PauseMin, sc.PauseMax)
	}

	var src model.Source
	switch sc.Type {
	case "linkedin":
		a := adapter.NewLinkedInAdapter(fetcher, sc.BaseURL, sc.Pages, logger)
		if pause != nil {
			a.SetPause(pause.Wait)
		}
		src = a
	case "indeed":
		relay := fetch.NewRelay(sc.Relay.Endpoint, sc.Relay.APIKey, fetcher)
		a, err := adapter.NewIndeedAdapter(relay, sc.BaseURL, sc.MaxCards, logger)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sc.Name, err)
		}
		if pause != nil {
			a.SetPause(pause.Wait)
		}
		src = a
	default:
		return nil, fmt.Errorf("source %s: unsupported type %q", sc.Name, sc.Type)
	}

	if sc.MinDelay > 0 {
		src = ratelimit.NewRateLimitedSource(src, ratelimit.NewSourceLimiter(sc.MinDelay))
	}
	return src, nil
}

func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) ([]model.Source, error) {
	policy := retry.NewPolicy(cfg.Fetch.MaxRetries, cfg.Fetch.RetryDelay, logger)
	fetcher := fetch.NewFetcher(httpClient, cfg.Fetch.Timeout, policy, logger)

	var sources []model.Source
	for _, sc := range cfg.EnabledSources() {
		src, err := createSource(sc, fetcher, logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
		logger.Debug("registered source", "name", sc.Name, "type", sc.Type)
	}
	return sources, nil
}

func buildEmbedder(cfg *config.Config) model.Embedder {
	ec := cfg.Ranking.Embedder

	var e model.Embedder
	switch ec.Type {
	case "openai":
		e = embed.NewOpenAIEmbedder(ec.BaseURL, ec.APIKey, ec.Model, ec.Dimensions, &http.Client{Timeout: ec.Timeout})
	default:
		e = embed.NewHashingEmbedder(ec.Dimensions)
	}

	if ec.RateLimit > 0 {
		e = embed.WithRateLimit(e, ec.RateLimit)
	}
	return e
}

func buildRanker(cfg *config.Config, logger *slog.Logger) model.Ranker {
	if cfg.Ranking.Mode == "keyword" {
		logger.Debug("using keyword ranker")
		return rank.NewKeywordRanker(keywordFilter(cfg))
	}
	logger.Debug("using embedding ranker", "embedder", cfg.Ranking.Embedder.Type, "threshold", cfg.Ranking.Threshold)
	return rank.NewEmbeddingRanker(buildEmbedder(cfg), cfg.Ranking.Threshold, cfg.Ranking.Workers, logger)
}

// buildService wires sources → collector → ranker. A nil ranker passes
// every titled record through; extra collector options are appended.
func buildService(cfg *config.Config, ranker model.Ranker, mode string, logger *slog.Logger, opts ...aggregate.Option) (*search.Service, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	sources, err := buildSources(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}

	opts = append([]aggregate.Option{
		aggregate.WithWorkers(cfg.Workers),
		aggregate.WithObserver(func(source string, count int, took time.Duration) {
			metrics.ObserveSource(source, count, took.Seconds())
		}),
	}, opts...)

	collector := aggregate.NewCollector(sources, logger, opts...)
	return search.NewService(collector, ranker, mode, logger), nil
}
