package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobmatch.
type Config struct {
	Server        ServerConfig
	Fetch         FetchConfig
	Workers       int // sources queried concurrently
	Sources       []SourceConfig
	Ranking       RankingConfig
	Filters       FilterConfig
	SearchQueries []QueryConfig
	Output        OutputConfig
	Notification  NotificationConfig
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string
}

// FetchConfig controls per-request timeouts and retries.
type FetchConfig struct {
	Timeout    time.Duration // per attempt
	MaxRetries int           // total attempts
	RetryDelay time.Duration
}

// SourceConfig describes one listing site.
type SourceConfig struct {
	Name     string
	Type     string // "linkedin" or "indeed"
	Enabled  bool
	BaseURL  string
	Pages    int // result pages per query (linkedin)
	MaxCards int // cards read per query (indeed)
	MinDelay time.Duration
	PauseMin time.Duration
	PauseMax time.Duration
	Relay    RelayConfig
}

// RelayConfig points a source at a fetch-relay service.
type RelayConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// RankingConfig selects and tunes the relevance stage.
type RankingConfig struct {
	Mode      string // "embedding" or "keyword"
	Threshold float64
	Workers   int
	Embedder  EmbedderConfig
}

// EmbedderConfig selects the embedding backend.
type EmbedderConfig struct {
	Type       string // "openai" or "hashing"
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	RateLimit  int // requests per second, 0 = unlimited
	Timeout    time.Duration
}

// FilterConfig holds the keyword lists used by the keyword fallback and batch mode.
type FilterConfig struct {
	TitleInclude     []string `yaml:"title_include"`
	TitleExclude     []string `yaml:"title_exclude"`
	Locations        []string `yaml:"locations"`
	ExcludeLocations []string `yaml:"exclude_locations"`
}

// QueryConfig is one batch-mode search.
type QueryConfig struct {
	Keywords string `yaml:"keywords"`
	Location string `yaml:"location"`
}

// OutputConfig controls batch-mode output.
type OutputConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultAddr          = ":8000"
	defaultFetchTimeout  = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryDelay    = 1 * time.Second
	defaultWorkers       = 2
	defaultThreshold     = 0.7
	defaultEmbedTimeout  = 30 * time.Second
	defaultCSVPath       = "jobs.csv"
	defaultIndeedMaxCard = 5
)

// Feature-hashed vectors only align on shared words, so on-topic records
// score well below what a learned model gives them.
const defaultHashingThreshold = 0.25

// DefaultThreshold is the ranking cutoff used when ranking.threshold is unset.
func DefaultThreshold(embedderType string) float64 {
	if embedderType == "hashing" {
		return defaultHashingThreshold
	}
	return defaultThreshold
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server        rawServerConfig    `yaml:"server"`
	Fetch         rawFetchConfig     `yaml:"fetch"`
	Workers       int                `yaml:"workers"`
	Sources       []rawSourceConfig  `yaml:"sources"`
	Ranking       rawRankingConfig   `yaml:"ranking"`
	Filters       FilterConfig       `yaml:"filters"`
	SearchQueries []QueryConfig      `yaml:"search_queries"`
	Output        OutputConfig       `yaml:"output"`
	Notification  NotificationConfig `yaml:"notification"`
}

type rawServerConfig struct {
	Addr string `yaml:"addr"`
}

type rawFetchConfig struct {
	Timeout    string `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`
	RetryDelay string `yaml:"retry_delay"`
}

type rawSourceConfig struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Enabled  *bool       `yaml:"enabled"`
	BaseURL  string      `yaml:"base_url"`
	Pages    int         `yaml:"pages"`
	MaxCards int         `yaml:"max_cards"`
	MinDelay string      `yaml:"min_delay"`
	PauseMin string      `yaml:"pause_min"`
	PauseMax string      `yaml:"pause_max"`
	Relay    RelayConfig `yaml:"relay"`
}

type rawRankingConfig struct {
	Mode      string            `yaml:"mode"`
	Threshold *float64          `yaml:"threshold"`
	Workers   int               `yaml:"workers"`
	Embedder  rawEmbedderConfig `yaml:"embedder"`
}

type rawEmbedderConfig struct {
	Type       string `yaml:"type"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	RateLimit  int    `yaml:"rate_limit"`
	Timeout    string `yaml:"timeout"`
}

// LoadEnv loads KEY=value pairs from the given dotenv files into the
// process environment. Missing files are skipped; existing variables win.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes. ${VAR} references are expanded
// from the environment first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fetchTimeout, err := parseDuration("fetch.timeout", raw.Fetch.Timeout, defaultFetchTimeout)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("fetch.retry_delay", raw.Fetch.RetryDelay, defaultRetryDelay)
	if err != nil {
		return nil, err
	}
	maxRetries := raw.Fetch.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	var sources []SourceConfig
	for i, rs := range raw.Sources {
		sc, err := buildSource(i, rs)
		if err != nil {
			return nil, err
		}
		sources = append(sources, sc)
	}

	embedderType := orString(strings.ToLower(raw.Ranking.Embedder.Type), "hashing")
	threshold := DefaultThreshold(embedderType)
	if raw.Ranking.Threshold != nil {
		threshold = *raw.Ranking.Threshold
	}
	embedTimeout, err := parseDuration("ranking.embedder.timeout", raw.Ranking.Embedder.Timeout, defaultEmbedTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{Addr: orString(raw.Server.Addr, defaultAddr)},
		Fetch: FetchConfig{
			Timeout:    fetchTimeout,
			MaxRetries: maxRetries,
			RetryDelay: retryDelay,
		},
		Workers: orInt(raw.Workers, defaultWorkers),
		Sources: sources,
		Ranking: RankingConfig{
			Mode:      orString(strings.ToLower(raw.Ranking.Mode), "embedding"),
			Threshold: threshold,
			Workers:   raw.Ranking.Workers,
			Embedder: EmbedderConfig{
				Type:       embedderType,
				BaseURL:    raw.Ranking.Embedder.BaseURL,
				APIKey:     raw.Ranking.Embedder.APIKey,
				Model:      raw.Ranking.Embedder.Model,
				Dimensions: raw.Ranking.Embedder.Dimensions,
				RateLimit:  raw.Ranking.Embedder.RateLimit,
				Timeout:    embedTimeout,
			},
		},
		Filters:       raw.Filters,
		SearchQueries: raw.SearchQueries,
		Output:        OutputConfig{CSVPath: orString(raw.Output.CSVPath, defaultCSVPath)},
		Notification:  raw.Notification,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnabledSources returns the sources switched on, in configured order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func buildSource(i int, rs rawSourceConfig) (SourceConfig, error) {
	field := func(name string) string {
		return fmt.Sprintf("sources[%d].%s", i, name)
	}

	typ := strings.ToLower(orString(rs.Type, rs.Name))
	sc := SourceConfig{
		Name:     orString(rs.Name, typ),
		Type:     typ,
		Enabled:  rs.Enabled == nil || *rs.Enabled,
		BaseURL:  rs.BaseURL,
		Pages:    orInt(rs.Pages, 1),
		MaxCards: rs.MaxCards,
		Relay:    rs.Relay,
	}
	if typ == "indeed" && sc.MaxCards == 0 {
		sc.MaxCards = defaultIndeedMaxCard
	}

	// Indeed is paced 2-4s after each fetch unless configured otherwise.
	pauseMin, pauseMax := time.Duration(0), time.Duration(0)
	if typ == "indeed" {
		pauseMin, pauseMax = 2*time.Second, 4*time.Second
	}

	var err error
	if sc.MinDelay, err = parseDuration(field("min_delay"), rs.MinDelay, 0); err != nil {
		return sc, err
	}
	if sc.PauseMin, err = parseDuration(field("pause_min"), rs.PauseMin, pauseMin); err != nil {
		return sc, err
	}
	if sc.PauseMax, err = parseDuration(field("pause_max"), rs.PauseMax, pauseMax); err != nil {
		return sc, err
	}
	return sc, nil
}

func validate(cfg *Config) error {
	enabled := 0
	for i, s := range cfg.Sources {
		switch s.Type {
		case "linkedin", "indeed":
		default:
			return fmt.Errorf("sources[%d]: unsupported type %q (want linkedin or indeed)", i, s.Type)
		}
		if !s.Enabled {
			continue
		}
		enabled++
		if s.Type == "indeed" && s.Relay.APIKey == "" {
			return fmt.Errorf("sources[%d].relay.api_key is required for indeed", i)
		}
		if s.PauseMax < s.PauseMin {
			return fmt.Errorf("sources[%d]: pause_max %v is below pause_min %v", i, s.PauseMax, s.PauseMin)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxRetries < 1 {
		return fmt.Errorf("fetch.max_retries must be at least 1, got %d", cfg.Fetch.MaxRetries)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}

	switch cfg.Ranking.Mode {
	case "embedding":
		if cfg.Ranking.Threshold < -1 || cfg.Ranking.Threshold >= 1 {
			return fmt.Errorf("ranking.threshold must be in [-1, 1), got %v", cfg.Ranking.Threshold)
		}
		switch cfg.Ranking.Embedder.Type {
		case "hashing":
		case "openai":
			if cfg.Ranking.Embedder.APIKey == "" {
				return fmt.Errorf("ranking.embedder.api_key is required when type is \"openai\"")
			}
		default:
			return fmt.Errorf("ranking.embedder.type %q is not supported (want openai or hashing)", cfg.Ranking.Embedder.Type)
		}
	case "keyword":
	default:
		return fmt.Errorf("ranking.mode %q is not supported (want embedding or keyword)", cfg.Ranking.Mode)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	for i, q := range cfg.SearchQueries {
		if strings.TrimSpace(q.Keywords) == "" {
			return fmt.Errorf("search_queries[%d].keywords is required", i)
		}
	}
	return nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
