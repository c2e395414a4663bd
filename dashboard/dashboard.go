// Package dashboard serves the quote page and the JSON API over one tracker.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"stocktracker/stock"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const maxBodyBytes = 1 << 20

// Runner is the pipeline the handlers delegate to. *stock.Tracker implements it.
type Runner interface {
	Run(ctx context.Context, raw string) stock.Result
}

type quotesRequest struct {
	Companies string `json:"companies"`
}

type page struct {
	Notice   string
	Result   stock.Result
	Warnings []stock.Failure
	Errors   []stock.Failure
	Chart    *Chart
}

type server struct {
	runner Runner
}

// NewRouter registers the page, API and health routes.
func NewRouter(runner Runner) *mux.Router {
	s := &server{runner: runner}

	router := mux.NewRouter()
	router.HandleFunc("/", s.IndexHandler).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/healthz", HealthHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/quotes", s.QuotesHandler).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	api.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	))

	return router
}

// NewHandler wraps the router with panic recovery, response compression and,
// when accessLog is non-nil, combined-format access logging. Recovery sits
// inside compression so the 500 is written before the encoder flushes.
func NewHandler(runner Runner, accessLog io.Writer) http.Handler {
	var h http.Handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter(runner))
	h = handlers.CompressHandler(h)
	if accessLog != nil {
		h = handlers.CombinedLoggingHandler(accessLog, h)
	}
	return h
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// IndexHandler renders the form, and on submit the quote table and chart.
func (s *server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	var p page
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		raw := r.PostForm.Get("companies")
		if len(stock.SplitCompanies(raw)) == 0 {
			p.Notice = "Please enter at least one company name."
		} else {
			p.Result = s.runner.Run(r.Context(), raw)
			p.Warnings, p.Errors = SplitFailures(p.Result.Failures)
			p.Chart = newChart(p.Result.Quotes)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, p); err != nil {
		log.Printf("render dashboard: %v", err)
	}
}

// QuotesHandler runs the pipeline for ?companies= or a JSON body and
// returns the Result.
func (s *server) QuotesHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("companies")
	if r.Method == http.MethodPost {
		var req quotesRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Error decoding request body", http.StatusBadRequest)
			return
		}
		if req.Companies != "" {
			raw = req.Companies
		}
	}

	if strings.TrimSpace(strings.ReplaceAll(raw, ",", "")) == "" {
		http.Error(w, "companies parameter is required", http.StatusBadRequest)
		return
	}

	result := s.runner.Run(r.Context(), raw)

	jsonData, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		http.Error(w, "Error marshaling to JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonData)
}

// SplitFailures separates name-level problems (shown as warnings) from
// failures on a resolved symbol.
func SplitFailures(failures []stock.Failure) (warnings, errs []stock.Failure) {
	for _, f := range failures {
		switch f.Kind {
		case stock.KindFetchFailed, stock.KindFieldNotFound, stock.KindParseFailed:
			errs = append(errs, f)
		default:
			warnings = append(warnings, f)
		}
	}
	return warnings, errs
}
