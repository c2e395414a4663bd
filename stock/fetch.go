package stock

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stocktracker/utils"
)

// HTTPFetcher downloads quote pages with a plain GET.
type HTTPFetcher struct {
	baseURL string
	clientSettings
}

func NewHTTPFetcher(baseURL string, options ...Option) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL:        baseURL,
		clientSettings: newClientSettings(options),
	}
}

// QuoteURL builds the page address for symbol.
func QuoteURL(baseURL, symbol string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(symbol) + "/"
}

func (f *HTTPFetcher) Fetch(ctx context.Context, symbol string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, QuoteURL(f.baseURL, symbol), http.NoBody)
	if err != nil {
		return "", &FetchError{Symbol: symbol, Err: fmt.Errorf("creating request: %w", err)}
	}
	utils.SetBrowserHeaders(req, f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{Symbol: symbol, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{Symbol: symbol, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := utils.DecodeBody(resp)
	if err != nil {
		return "", &FetchError{Symbol: symbol, StatusCode: resp.StatusCode, Err: err}
	}
	return string(body), nil
}

// Renderer loads a page in a real browser. *browser.Pool implements it.
type Renderer interface {
	FetchHTML(ctx context.Context, url, waitSelector string) (string, error)
}

// BrowserFetcher renders quote pages whose fields are filled in by script.
type BrowserFetcher struct {
	BaseURL  string
	Renderer Renderer
	// Timeout bounds one render, including the wait for a free tab.
	Timeout time.Duration
}

func (f *BrowserFetcher) Fetch(ctx context.Context, symbol string) (string, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	html, err := f.Renderer.FetchHTML(ctx, QuoteURL(f.BaseURL, symbol), fieldSelector(FieldPrice))
	if err != nil {
		return "", &FetchError{Symbol: symbol, Err: err}
	}
	return html, nil
}
