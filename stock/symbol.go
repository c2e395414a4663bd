package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stocktracker/cache"
	"stocktracker/utils"
)

// SearchQuote is one entry of the search service's "quotes" list.
type SearchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
}

type searchResponse struct {
	Quotes []SearchQuote `json:"quotes"`
}

// SearchResolver resolves company names through the finance search API.
type SearchResolver struct {
	baseURL string
	clientSettings
}

func NewSearchResolver(baseURL string, options ...Option) *SearchResolver {
	return &SearchResolver{
		baseURL:        baseURL,
		clientSettings: newClientSettings(options),
	}
}

func (r *SearchResolver) buildSearchURL(name string) (string, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search URL: %w", err)
	}
	params := u.Query()
	params.Set("q", name)
	params.Set("newsCount", "0")
	if r.lang != "" {
		params.Set("lang", r.lang)
	}
	if r.region != "" {
		params.Set("region", r.region)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// Search returns every quote the service lists for name.
func (r *SearchResolver) Search(ctx context.Context, name string) ([]SearchQuote, error) {
	searchURL, err := r.buildSearchURL(name)
	if err != nil {
		return nil, &LookupError{Name: name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, http.NoBody)
	if err != nil {
		return nil, &LookupError{Name: name, Err: fmt.Errorf("creating request: %w", err)}
	}
	utils.SetJSONHeaders(req, r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{Name: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LookupError{Name: name, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := utils.DecodeBody(resp)
	if err != nil {
		return nil, &LookupError{Name: name, StatusCode: resp.StatusCode, Err: err}
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &LookupError{Name: name, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return data.Quotes, nil
}

// Resolve returns the symbol of the first listed quote.
func (r *SearchResolver) Resolve(ctx context.Context, name string) (string, error) {
	quotes, err := r.Search(ctx, name)
	if err != nil {
		return "", err
	}
	if len(quotes) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSymbolNotFound, name)
	}
	symbol := strings.TrimSpace(quotes[0].Symbol)
	if symbol == "" {
		return "", fmt.Errorf("%w: %q", ErrSymbolNotFound, name)
	}
	return symbol, nil
}

// CachedResolver memoizes successful lookups. Misses and errors always go
// to the wrapped resolver.
type CachedResolver struct {
	Resolver SymbolResolver
	Store    cache.Store
	TTL      time.Duration
}

func (c *CachedResolver) Resolve(ctx context.Context, name string) (string, error) {
	cacheKey := fmt.Sprintf("symbol:%s", strings.ToLower(name))

	return cache.Memoize(ctx, c.Store, cacheKey, c.TTL, func() (string, error) {
		return c.Resolver.Resolve(ctx, name)
	})
}
