package adapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobmatch/internal/fetch"
	"github.com/amishk599/jobmatch/internal/model"
	"github.com/amishk599/jobmatch/internal/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// pageFetcher serves canned HTML pages in call order and records URLs.
type pageFetcher struct {
	pages []string
	err   error
	urls  []string
}

func (p *pageFetcher) Fetch(_ context.Context, rawURL string) (*goquery.Document, error) {
	p.urls = append(p.urls, rawURL)
	if p.err != nil {
		return nil, p.err
	}
	i := len(p.urls) - 1
	body := ""
	if i < len(p.pages) {
		body = p.pages[i]
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

const linkedInPage = `
<ul>
  <li>
    <div class="base-card" data-entity-urn="urn:li:jobPosting:3901">
      <a class="base-card__full-link" href="https://pk.linkedin.com/jobs/view/go-developer-3901"></a>
      <div class="base-search-card__info">
        <h3 class="base-search-card__title">
          Go Developer
        </h3>
        <h4 class="base-search-card__subtitle"><a class="hidden-nested-link">Acme</a></h4>
        <span class="job-search-card__location">Lahore, Punjab, Pakistan</span>
        <span class="job-search-card__salary-info">PKR 400,000/month</span>
        <time class="job-search-card__listdate" datetime="2026-10-15">4 days ago</time>
      </div>
    </div>
  </li>
  <li>
    <div class="base-card">
      <a class="base-card__full-link" href="/jobs/view/backend-3902"></a>
      <div class="base-search-card__info">
        <h4 class="base-search-card__subtitle">Globex</h4>
      </div>
    </div>
  </li>
  <li>
    <div class="base-card">
      <a class="base-card__full-link" href="https://evil.example.com/phish"></a>
      <div class="base-search-card__info">
        <h3>   </h3>
      </div>
    </div>
  </li>
</ul>`

func TestParseLinkedInCards(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(linkedInPage))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	jobs := parseLinkedInCards(doc)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Go Developer" {
		t.Errorf("expected title Go Developer, got %q", j.Title)
	}
	if j.Company != "Acme" {
		t.Errorf("expected company Acme, got %q", j.Company)
	}
	if j.Location != "Lahore, Punjab, Pakistan" {
		t.Errorf("unexpected location %q", j.Location)
	}
	if j.Salary != "PKR 400,000/month" {
		t.Errorf("unexpected salary %q", j.Salary)
	}
	if j.Experience != model.ExperienceNotSpecified {
		t.Errorf("expected experience default, got %q", j.Experience)
	}
	if j.PostedAt != "2026-10-15" {
		t.Errorf("expected posted 2026-10-15, got %q", j.PostedAt)
	}
	if j.ApplyLink != "https://www.linkedin.com/jobs/view/3901/" {
		t.Errorf("expected URN apply link, got %q", j.ApplyLink)
	}
	if j.Source != "linkedin" {
		t.Errorf("expected source linkedin, got %q", j.Source)
	}

	// Missing title element: placeholder, card kept. Company falls back to h4.
	j = jobs[1]
	if j.Title != model.NoTitle {
		t.Errorf("expected placeholder title, got %q", j.Title)
	}
	if j.Company != "Globex" {
		t.Errorf("expected company Globex, got %q", j.Company)
	}
	if j.Location != model.UnknownLocation {
		t.Errorf("expected location default, got %q", j.Location)
	}
	if j.ApplyLink != "https://www.linkedin.com/jobs/view/backend-3902" {
		t.Errorf("expected resolved relative link, got %q", j.ApplyLink)
	}

	// Blank title is kept blank for the pipeline to drop; foreign link refused.
	j = jobs[2]
	if j.HasTitle() {
		t.Errorf("expected blank title, got %q", j.Title)
	}
	if j.ApplyLink != model.NoLink {
		t.Errorf("expected foreign host rejected, got %q", j.ApplyLink)
	}
}

func TestLinkedIn_Paginates(t *testing.T) {
	pf := &pageFetcher{pages: []string{linkedInPage, linkedInPage, ""}}
	a := NewLinkedInAdapter(pf, "", 3, discardLogger())

	pauses := 0
	a.SetPause(func(context.Context) error { pauses++; return nil })

	jobs := a.ListJobs(context.Background(), model.SearchQuery{Position: "Go Developer", Location: "Lahore"})
	if len(jobs) != 6 {
		t.Fatalf("expected 6 jobs over two pages, got %d", len(jobs))
	}
	if len(pf.urls) != 3 {
		t.Fatalf("expected 3 page requests, got %d", len(pf.urls))
	}
	if pauses != 2 {
		t.Errorf("expected 2 pauses, got %d", pauses)
	}

	u0, _ := url.Parse(pf.urls[0])
	if got := u0.Query().Get("keywords"); got != "Go Developer" {
		t.Errorf("expected keywords Go Developer, got %q", got)
	}
	if u0.Query().Has("start") {
		t.Errorf("expected first page without start, got %s", pf.urls[0])
	}
	u2, _ := url.Parse(pf.urls[2])
	if got := u2.Query().Get("start"); got != "50" {
		t.Errorf("expected start=50 on third page, got %q", got)
	}
}

func TestLinkedIn_FetchFailureYieldsEmpty(t *testing.T) {
	pf := &pageFetcher{err: &model.HTTPError{StatusCode: 429}}
	a := NewLinkedInAdapter(pf, "", 2, discardLogger())

	jobs := a.ListJobs(context.Background(), model.SearchQuery{Position: "x", Location: "y"})
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
	if len(pf.urls) != 1 {
		t.Errorf("expected to stop after first failed page, got %d requests", len(pf.urls))
	}
}

func TestLinkedIn_ThroughFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs-guest/jobs/api/seeMoreJobPostings/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(linkedInPage))
	}))
	defer srv.Close()

	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
	f := fetch.NewFetcher(client, time.Second, retry.NewPolicy(3, 0, discardLogger()), discardLogger())
	a := NewLinkedInAdapter(f, "", 1, discardLogger())

	jobs := a.ListJobs(context.Background(), model.SearchQuery{Position: "Software Engineer", Location: "Islamabad"})
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
}

func TestAbsoluteURL(t *testing.T) {
	base, _ := url.Parse("https://pk.indeed.com")
	tests := []struct {
		href   string
		want   string
		wantOK bool
	}{
		{"/rc/clk?jk=abc", "https://pk.indeed.com/rc/clk?jk=abc", true},
		{"https://www.indeed.com/viewjob?jk=1", "https://www.indeed.com/viewjob?jk=1", true},
		{"https://evil.com/x", "", false},
		{"javascript:alert(1)", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := absoluteURL(base, tt.href)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("absoluteURL(%q): expected (%q, %v), got (%q, %v)", tt.href, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestAbsoluteURL_MultiLabelSuffix(t *testing.T) {
	base, _ := url.Parse("https://www.indeed.co.uk")
	tests := []struct {
		href   string
		want   string
		wantOK bool
	}{
		{"/rc/clk?jk=1", "https://www.indeed.co.uk/rc/clk?jk=1", true},
		{"https://uk.indeed.co.uk/viewjob?jk=2", "https://uk.indeed.co.uk/viewjob?jk=2", true},
		{"https://evil.co.uk/phish", "", false},
		{"https://co.uk/x", "", false},
		{"https://indeed.com.au/x", "", false},
	}
	for _, tt := range tests {
		got, ok := absoluteURL(base, tt.href)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("absoluteURL(%q): expected (%q, %v), got (%q, %v)", tt.href, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestAbsoluteURL_IPBaseRequiresExactHost(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:8080")
	tests := []struct {
		href   string
		want   string
		wantOK bool
	}{
		{"/jobs/view/1", "http://127.0.0.1:8080/jobs/view/1", true},
		{"http://127.0.0.2/jobs/view/1", "", false},
	}
	for _, tt := range tests {
		got, ok := absoluteURL(base, tt.href)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("absoluteURL(%q): expected (%q, %v), got (%q, %v)", tt.href, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestExtractText(t *testing.T) {
	got := extractText("  <b>Senior</b>&nbsp;Go\n  Engineer &amp; SRE ")
	if got != "Senior Go Engineer & SRE" {
		t.Errorf("unexpected text %q", got)
	}
}

var errBoom = errors.New("boom")
