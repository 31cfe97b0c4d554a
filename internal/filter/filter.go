package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/jobmatch/internal/model"
)

// Ensure KeywordFilter implements model.JobFilter.
var _ model.JobFilter = (*KeywordFilter)(nil)

// KeywordFilter matches records whose title contains any include keyword and
// none of the exclude keywords, with the same rule applied to the location.
// Matching is case- and accent-insensitive. Empty include lists match all.
type KeywordFilter struct {
	titleInclude     []string
	titleExclude     []string
	locations        []string
	excludeLocations []string
}

// NewKeywordFilter returns a filter over titles and locations.
func NewKeywordFilter(titleInclude, titleExclude, locations, excludeLocations []string) *KeywordFilter {
	return &KeywordFilter{
		titleInclude:     normalizeAll(titleInclude),
		titleExclude:     normalizeAll(titleExclude),
		locations:        normalizeAll(locations),
		excludeLocations: normalizeAll(excludeLocations),
	}
}

// Match reports whether job passes every configured keyword list.
func (f *KeywordFilter) Match(job model.JobRecord) bool {
	title := Normalize(job.Title)
	location := Normalize(job.Location)

	if len(f.titleInclude) > 0 && !containsAny(title, f.titleInclude) {
		return false
	}
	if containsAny(title, f.titleExclude) {
		return false
	}
	if len(f.locations) > 0 && !containsAny(location, f.locations) {
		return false
	}
	if containsAny(location, f.excludeLocations) {
		return false
	}
	return true
}

// Apply returns the matching records in input order.
func Apply(f model.JobFilter, jobs []model.JobRecord) []model.JobRecord {
	var matched []model.JobRecord
	for _, j := range jobs {
		if f.Match(j) {
			matched = append(matched, j)
		}
	}
	return matched
}

// Normalize lowercases s and strips combining marks, so "Développeur"
// and "developpeur" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(Normalize(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
