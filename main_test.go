package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktracker/config"
	"stocktracker/stock"
)

var envKeys = []string{
	"PORT", "SEARCH_URL", "QUOTE_URL", "REGION", "USER_AGENT",
	"FETCH_TIMEOUT_SEC", "FETCH_ATTEMPTS", "FETCH_BROWSER", "PARENTHESES_NEGATIVE",
	"PIPELINE_WORKERS", "REDIS_ADDR", "REDIS_PASSWORD", "CACHE_TTL_SEC", "CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

// upstream fakes the search API and the quote pages.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/finance/search", func(w http.ResponseWriter, r *http.Request) {
		symbols := map[string]string{"Apple": "AAPL", "Microsoft": "MSFT"}
		w.Header().Set("Content-Type", "application/json")
		if s, ok := symbols[r.URL.Query().Get("q")]; ok {
			fmt.Fprintf(w, `{"quotes":[{"symbol":%q}]}`, s)
			return
		}
		io.WriteString(w, `{"quotes":[]}`)
	})
	mux.HandleFunc("/quote/{symbol}/", func(w http.ResponseWriter, r *http.Request) {
		fields := map[string][3]string{
			"AAPL": {"189.99", "+1.01", "52,164,721"},
			"MSFT": {"415.50", "(3.20)", "19,321,000"},
		}
		f, ok := fields[r.PathValue("symbol")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><body>
<fin-streamer data-field="regularMarketPrice">%s</fin-streamer>
<fin-streamer data-field="regularMarketChange">%s</fin-streamer>
<fin-streamer data-field="regularMarketVolume">%s</fin-streamer>
</body></html>`, f[0], f[1], f[2])
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestQuoteCommand_JSON(t *testing.T) {
	clearEnv(t)
	srv := upstream(t)
	path := writeConfig(t, fmt.Sprintf(`
endpoints:
  search_url: %s/v1/finance/search
  quote_url: %s/quote
extract:
  parentheses_negative: true
`, srv.URL, srv.URL))

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "quote", "Apple, NoSuchCompany123, Microsoft", "--json"})
	require.NoError(t, cmd.Execute())

	var result stock.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result.Quotes, 2)
	assert.Equal(t, "AAPL", result.Quotes[0].Symbol)
	assert.Equal(t, "5.22 Cr", result.Quotes[0].Volume)
	assert.Equal(t, "MSFT", result.Quotes[1].Symbol)
	assert.True(t, decimal.RequireFromString("-3.2").Equal(result.Quotes[1].Change))
	assert.Equal(t, "1.93 Cr", result.Quotes[1].Volume)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "NoSuchCompany123", result.Failures[0].Name)
	assert.Equal(t, stock.KindSymbolNotFound, result.Failures[0].Kind)
}

func TestQuoteCommand_Table(t *testing.T) {
	clearEnv(t)
	srv := upstream(t)
	t.Setenv("SEARCH_URL", srv.URL+"/v1/finance/search")
	t.Setenv("QUOTE_URL", srv.URL+"/quote")
	t.Setenv("PIPELINE_WORKERS", "4")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "quote", "Microsoft", "Apple"})
	require.NoError(t, cmd.Execute())

	got := out.String()
	require.NotContains(t, got, "\x1b[", "plain writers get no escape codes")
	for _, cell := range []string{"SYMBOL", "PRICE", "CHANGE", "VOLUME", "MSFT", "415.50", "3.20", "1.93 Cr", "AAPL", "189.99", "1.01", "5.22 Cr"} {
		require.Contains(t, got, cell)
	}
	require.Less(t, strings.Index(got, "SYMBOL"), strings.Index(got, "MSFT"))
	require.Less(t, strings.Index(got, "MSFT"), strings.Index(got, "AAPL"))
}

func TestPrintResult_Failures(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, printResult(&out, stock.Result{
		Failures: []stock.Failure{
			{Name: "Gone", Symbol: "GONE", Kind: stock.KindFetchFailed, Message: "Failed to retrieve data for GONE"},
			{Name: "Nope", Kind: stock.KindSymbolNotFound, Message: "Could not find stock symbol for Nope"},
		},
	}))

	// warnings come before data failures, as on the dashboard
	want := "SYMBOL_NOT_FOUND: Could not find stock symbol for Nope\n" +
		"FETCH_FAILED: Failed to retrieve data for GONE\n"
	require.Equal(t, want, out.String())
}

func TestPrintResult_NegativeChange(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, printResult(&out, stock.Result{
		Quotes: []stock.Quote{
			{Symbol: "MSFT", Price: decimal.RequireFromString("415.5"), Change: decimal.RequireFromString("-3.2"), Volume: "1.93 Cr"},
		},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5, "top border, header, separator, one row, bottom border")
	require.Contains(t, lines[3], "MSFT")
	require.Contains(t, lines[3], "-3.20")
	require.Contains(t, lines[3], "415.50")
}

func TestNewApp_Wiring(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Fetch.Attempts = 3
	cfg.Pipeline.Workers = 5
	cfg.Cache.TTLSec = 60

	a := newApp(t.Context(), cfg)
	t.Cleanup(a.Close)

	require.IsType(t, &stock.CachedResolver{}, a.tracker.Resolver)
	require.IsType(t, &stock.HTTPFetcher{}, a.tracker.Fetcher)
	require.Equal(t, 3, a.tracker.Attempts)
	require.Equal(t, 5, a.tracker.Workers)
	require.Equal(t, 20, a.tracker.MaxCompanies)

	cfg.Cache.TTLSec = 0
	cfg.Fetch.Browser = true
	b := newApp(t.Context(), cfg)
	t.Cleanup(b.Close)

	require.IsType(t, &stock.SearchResolver{}, b.tracker.Resolver)
	require.IsType(t, &stock.BrowserFetcher{}, b.tracker.Fetcher)
	require.Len(t, b.closers, 1)
}
