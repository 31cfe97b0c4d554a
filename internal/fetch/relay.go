package fetch

import (
	"context"
	"errors"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// DefaultRelayEndpoint is the ScraperAPI entry point.
const DefaultRelayEndpoint = "http://api.scraperapi.com/"

// Ensure Relay implements DocumentFetcher.
var _ DocumentFetcher = (*Relay)(nil)

// Relay reaches a site through a paid fetch-relay service that takes the
// target URL and an access key as query parameters.
type Relay struct {
	endpoint string
	apiKey   string
	inner    DocumentFetcher
}

// NewRelay wraps inner so every fetch goes through endpoint.
func NewRelay(endpoint, apiKey string, inner DocumentFetcher) *Relay {
	if endpoint == "" {
		endpoint = DefaultRelayEndpoint
	}
	return &Relay{endpoint: endpoint, apiKey: apiKey, inner: inner}
}

// Fetch retrieves target through the relay.
func (r *Relay) Fetch(ctx context.Context, target string) (*goquery.Document, error) {
	relayURL, err := r.URL(target)
	if err != nil {
		return nil, err
	}
	return r.inner.Fetch(ctx, relayURL)
}

// URL builds the relay request URL for target with the target fully escaped.
func (r *Relay) URL(target string) (string, error) {
	if r.apiKey == "" {
		return "", errors.New("relay api key is not configured")
	}
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api_key", r.apiKey)
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
