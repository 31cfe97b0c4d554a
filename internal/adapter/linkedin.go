package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobmatch/internal/fetch"
	"github.com/amishk599/jobmatch/internal/model"
)

const (
	linkedInSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedInPageSize  = 25
)

// Ensure LinkedInAdapter implements model.Source.
var _ model.Source = (*LinkedInAdapter)(nil)

// LinkedInAdapter scrapes the public guest job search endpoint.
type LinkedInAdapter struct {
	fetcher fetch.DocumentFetcher
	baseURL string
	pages   int
	pause   func(ctx context.Context) error
	logger  *slog.Logger
}

// NewLinkedInAdapter returns an adapter that fetches up to pages result
// pages per query. An empty baseURL selects the public endpoint.
func NewLinkedInAdapter(fetcher fetch.DocumentFetcher, baseURL string, pages int, logger *slog.Logger) *LinkedInAdapter {
	if baseURL == "" {
		baseURL = linkedInSearchURL
	}
	if pages <= 0 {
		pages = 1
	}
	return &LinkedInAdapter{
		fetcher: fetcher,
		baseURL: baseURL,
		pages:   pages,
		logger:  logger,
	}
}

// SetPause installs a politeness pause run after each successful page fetch.
func (a *LinkedInAdapter) SetPause(pause func(ctx context.Context) error) {
	a.pause = pause
}

func (a *LinkedInAdapter) Name() string { return "linkedin" }

// ListJobs fetches result pages in order and stops at the first page that
// fails or comes back empty.
func (a *LinkedInAdapter) ListJobs(ctx context.Context, q model.SearchQuery) []model.JobRecord {
	var jobs []model.JobRecord
	for page := 0; page < a.pages; page++ {
		doc, err := a.fetcher.Fetch(ctx, a.pageURL(q, page))
		if err != nil {
			a.logger.Warn("linkedin fetch failed",
				"page", page,
				"kind", model.ErrorKind(err),
				"error", err,
			)
			break
		}

		cards := parseLinkedInCards(doc)
		jobs = append(jobs, cards...)
		if len(cards) == 0 {
			break
		}

		if a.pause != nil && page < a.pages-1 {
			if err := a.pause(ctx); err != nil {
				break
			}
		}
	}
	return jobs
}

func (a *LinkedInAdapter) pageURL(q model.SearchQuery, page int) string {
	v := url.Values{}
	v.Set("keywords", q.Position)
	v.Set("location", q.Location)
	if page > 0 {
		v.Set("start", fmt.Sprint(page*linkedInPageSize))
	}
	return a.baseURL + "?" + v.Encode()
}

var linkedInBase = &url.URL{Scheme: "https", Host: "www.linkedin.com"}

// parseLinkedInCards extracts one record per search card. A card without a
// title element still yields a record with the placeholder title.
func parseLinkedInCards(doc *goquery.Document) []model.JobRecord {
	var jobs []model.JobRecord
	doc.Find("div.base-search-card__info").Each(func(_ int, card *goquery.Selection) {
		r := model.JobRecord{Source: "linkedin"}
		r.Title = titleOf(card, "h3")
		r.Company, _ = firstText(card, "a.hidden-nested-link", "h4")
		r.Location, _ = textOf(card, "span.job-search-card__location")
		r.Experience, _ = textOf(card, "span.job-search-card__experience")
		r.Salary, _ = textOf(card, "span.job-search-card__salary-info")
		r.PostedAt, _ = attrOf(card, "time.job-search-card__listdate", "datetime")
		r.ApplyLink = linkedInApplyLink(card)
		jobs = append(jobs, r.WithDefaults())
	})
	return jobs
}

// linkedInApplyLink prefers the posting id in the parent's entity URN
// ("urn:li:jobPosting:123") and falls back to the card's own link.
func linkedInApplyLink(card *goquery.Selection) string {
	parent := card.Parent()
	if urn, ok := parent.Attr("data-entity-urn"); ok {
		if id := strings.TrimSpace(urn[strings.LastIndex(urn, ":")+1:]); id != "" {
			return "https://www.linkedin.com/jobs/view/" + url.PathEscape(id) + "/"
		}
	}
	if href, ok := attrOf(parent, "a.base-card__full-link", "href"); ok {
		if link, ok := absoluteURL(linkedInBase, href); ok {
			return link
		}
	}
	return model.NoLink
}
