package stock

import (
	"context"
	"net/http"
)

//go:generate mockgen -package=stock_test -destination=mock_interfaces_test.go -source=interfaces.go

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SymbolResolver maps a company name to its ticker symbol.
type SymbolResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// PageFetcher returns the raw markup of a ticker's quote page.
type PageFetcher interface {
	Fetch(ctx context.Context, symbol string) (string, error)
}

// Extractor reads price, change and volume out of quote page markup.
type Extractor interface {
	Extract(html, symbol string) (Fields, error)
}
