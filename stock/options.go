package stock

import (
	"net/http"
	"time"
)

type clientSettings struct {
	httpClient HTTPClient
	userAgent  string
	lang       string
	region     string
}

func newClientSettings(options []Option) clientSettings {
	s := clientSettings{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, option := range options {
		option(&s)
	}
	return s
}

// Option configures a SearchResolver or HTTPFetcher.
type Option func(*clientSettings)

// WithHTTPClient sets the HTTP client used for outbound requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(s *clientSettings) {
		s.httpClient = httpClient
	}
}

// WithUserAgent overrides the browser-like User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(s *clientSettings) {
		s.userAgent = userAgent
	}
}

// WithRegion sets the lang and region search parameters.
func WithRegion(lang, region string) Option {
	return func(s *clientSettings) {
		s.lang = lang
		s.region = region
	}
}
