package adapter

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobmatch/internal/fetch"
	"github.com/amishk599/jobmatch/internal/model"
)

const (
	defaultIndeedBaseURL = "https://pk.indeed.com"
	// DefaultIndeedMaxCards caps how many cards are read per query.
	DefaultIndeedMaxCards = 5
)

// Ensure IndeedAdapter implements model.Source.
var _ model.Source = (*IndeedAdapter)(nil)

// IndeedAdapter scrapes an Indeed country site. The fetcher is expected to be
// a fetch.Relay since Indeed rejects direct scraping.
type IndeedAdapter struct {
	fetcher  fetch.DocumentFetcher
	base     *url.URL
	maxCards int
	pause    func(ctx context.Context) error
	logger   *slog.Logger
}

// NewIndeedAdapter returns an adapter for the Indeed site at baseURL
// (defaults to https://pk.indeed.com) reading at most maxCards cards.
func NewIndeedAdapter(fetcher fetch.DocumentFetcher, baseURL string, maxCards int, logger *slog.Logger) (*IndeedAdapter, error) {
	if baseURL == "" {
		baseURL = defaultIndeedBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if maxCards <= 0 {
		maxCards = DefaultIndeedMaxCards
	}
	return &IndeedAdapter{
		fetcher:  fetcher,
		base:     base,
		maxCards: maxCards,
		logger:   logger,
	}, nil
}

// SetPause installs the politeness pause run after a successful fetch.
func (a *IndeedAdapter) SetPause(pause func(ctx context.Context) error) {
	a.pause = pause
}

func (a *IndeedAdapter) Name() string { return "indeed" }

// ListJobs fetches one results page and returns at most maxCards records.
func (a *IndeedAdapter) ListJobs(ctx context.Context, q model.SearchQuery) []model.JobRecord {
	doc, err := a.fetcher.Fetch(ctx, a.searchURL(q))
	if err != nil {
		a.logger.Warn("indeed fetch failed", "kind", model.ErrorKind(err), "error", err)
		return nil
	}

	jobs := parseIndeedCards(doc, a.base, a.maxCards)
	a.logger.Debug("indeed cards parsed", "count", len(jobs))

	if a.pause != nil {
		// Pacing only; a cancelled pause does not discard the page.
		_ = a.pause(ctx)
	}
	return jobs
}

func (a *IndeedAdapter) searchURL(q model.SearchQuery) string {
	u := *a.base
	u.Path = "/jobs"
	v := url.Values{}
	v.Set("q", q.Position)
	v.Set("l", q.Location)
	u.RawQuery = v.Encode()
	return u.String()
}

// parseIndeedCards extracts up to limit records from a results page.
func parseIndeedCards(doc *goquery.Document, base *url.URL, limit int) []model.JobRecord {
	var jobs []model.JobRecord
	doc.Find("div.job_seen_beacon").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(jobs) >= limit {
			return false
		}
		r := model.JobRecord{Source: "indeed", ApplyLink: model.NoLink}
		r.Title = titleOf(card, "h2")
		r.Company, _ = textOf(card, `span[data-testid="company-name"]`)
		r.Location, _ = textOf(card, `div[data-testid="text-location"]`)
		r.Salary, _ = firstText(card,
			"div.salary-snippet-container",
			`div[data-testid="attribute_snippet_testid"]`,
		)
		r.Summary, _ = textOf(card, "div.job-snippet")
		r.PostedAt, _ = textOf(card, "span.date")
		if href, ok := attrOf(card, "a[href]", "href"); ok {
			if link, ok := absoluteURL(base, href); ok {
				r.ApplyLink = link
			}
		}
		jobs = append(jobs, r.WithDefaults())
		return true
	})
	return jobs
}
