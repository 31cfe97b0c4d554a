package model

import (
	"context"
	"fmt"
	"strings"
)

// Placeholders substituted when a listing omits a field.
const (
	NoTitle                = "No title"
	UnknownCompany         = "Unknown"
	UnknownLocation        = "Unknown"
	ExperienceNotSpecified = "Not specified"
	SalaryNotMentioned     = "Not mentioned"
	NoLink                 = "No link"
)

// OrDefault returns value trimmed, or def when value is blank.
func OrDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

// SearchQuery is what the caller is looking for.
type SearchQuery struct {
	Position   string   `json:"position"`
	Location   string   `json:"location"`
	Experience *string  `json:"experience,omitempty"`
	Salary     *string  `json:"salary,omitempty"`
	JobNature  *string  `json:"jobNature,omitempty"`
	Skills     []string `json:"skills,omitempty"`
}

// Validate reports a missing position or location.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Position) == "" {
		return fmt.Errorf("%w: position is required", ErrInvalidQuery)
	}
	if strings.TrimSpace(q.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidQuery)
	}
	return nil
}

// RelevanceText is the text jobs are compared against when ranking.
func (q SearchQuery) RelevanceText() string {
	return strings.TrimSpace(q.Position)
}

// JobRecord is one listing as extracted by a source adapter.
type JobRecord struct {
	Title      string
	Company    string
	Location   string
	Experience string
	Salary     string
	ApplyLink  string // absolute URL on the source's domain, or NoLink
	Source     string // adapter name
	PostedAt   string // raw date string as shown by the site, may be empty
	Summary    string // card snippet, may be empty
}

// HasTitle reports whether the record carries a non-blank title.
func (r JobRecord) HasTitle() bool {
	return strings.TrimSpace(r.Title) != ""
}

// WithDefaults returns a copy with every blank optional field replaced by its
// placeholder. The title is left alone: a blank title marks a record for
// dropping, while a missing title element is the adapter's call.
func (r JobRecord) WithDefaults() JobRecord {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = OrDefault(r.Company, UnknownCompany)
	r.Location = OrDefault(r.Location, UnknownLocation)
	r.Experience = OrDefault(r.Experience, ExperienceNotSpecified)
	r.Salary = OrDefault(r.Salary, SalaryNotMentioned)
	r.ApplyLink = OrDefault(r.ApplyLink, NoLink)
	return r
}

// Description is the text a record is embedded as.
func (r JobRecord) Description() string {
	return fmt.Sprintf("%s at %s in %s", r.Title, r.Company, r.Location)
}

// ScoredJob is a record that passed the relevance threshold.
type ScoredJob struct {
	JobRecord
	Score float64
}

// JobListing is the external result shape.
type JobListing struct {
	JobTitle   string `json:"job_title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Experience string `json:"experience"`
	Salary     string `json:"salary"`
	ApplyLink  string `json:"apply_link"`
}

// Source produces raw records for a query. Failures are absorbed: an
// unreachable site yields an empty slice.
type Source interface {
	Name() string
	ListJobs(ctx context.Context, q SearchQuery) []JobRecord
}

// JobFilter decides whether a record matches the configured keywords.
type JobFilter interface {
	Match(job JobRecord) bool
}

// Ranker keeps the records relevant to queryText.
type Ranker interface {
	Filter(ctx context.Context, records []JobRecord, queryText string) []ScoredJob
}

// Embedder turns text into token-level vectors, one row per token.
type Embedder interface {
	Embed(ctx context.Context, text string) ([][]float32, error)
}

// Notifier sends result listings somewhere.
type Notifier interface {
	Notify(jobs []JobListing) error
}
