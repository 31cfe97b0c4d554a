package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobmatch/internal/model"
	"github.com/amishk599/jobmatch/internal/retry"
)

// DefaultTimeout bounds a single attempt, including reading the body.
const DefaultTimeout = 5 * time.Second

// DefaultIdentities is the pool of browser signatures presented to sites.
var DefaultIdentities = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
}

// DocumentFetcher retrieves a URL and parses it as HTML.
type DocumentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Ensure Fetcher implements DocumentFetcher.
var _ DocumentFetcher = (*Fetcher)(nil)

// Fetcher performs GETs with a rotated identity, a per-attempt timeout and a
// retry policy, returning a parsed document or a definitive error.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	policy     retry.Policy
	identities []string
	pick       func(n int) int
	logger     *slog.Logger
}

// NewFetcher returns a Fetcher using DefaultIdentities with a uniform random pick.
func NewFetcher(client *http.Client, timeout time.Duration, policy retry.Policy, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:     client,
		timeout:    timeout,
		policy:     policy,
		identities: DefaultIdentities,
		pick:       rand.IntN,
		logger:     logger,
	}
}

// SetIdentityPicker replaces the random identity choice, for tests.
func (f *Fetcher) SetIdentityPicker(pick func(n int) int) {
	f.pick = pick
}

// Fetch retrieves rawURL. One identity is chosen per call and reused across retries.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	identity := f.identities[f.pick(len(f.identities))]
	target := redact(rawURL)

	var doc *goquery.Document
	err := f.policy.Do(ctx, func(ctx context.Context) error {
		d, err := f.attempt(ctx, rawURL, identity)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		f.logger.Debug("fetch failed", "target", target, "kind", model.ErrorKind(err), "error", err)
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	f.logger.Debug("fetched document", "target", target)
	return doc, nil
}

func (f *Fetcher) attempt(ctx context.Context, rawURL, identity string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", identity)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redact(urlErr.URL)
		}
		return nil, fmt.Errorf("%w: %w", model.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status from %s", req.URL.Host),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrParse, err)
	}
	return doc, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// redact drops the query string so relay keys never reach the logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	return u.Scheme + "://" + u.Host + u.Path
}
