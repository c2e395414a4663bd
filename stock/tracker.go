package stock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Tracker runs the resolve → fetch → extract → format pipeline for a list of
// company names.
type Tracker struct {
	Resolver  SymbolResolver
	Fetcher   PageFetcher
	Extractor Extractor

	// Workers > 1 processes names concurrently. Output is the same as a
	// sequential run.
	Workers int
	// MaxCompanies caps the names taken from one input; zero means no cap.
	MaxCompanies int
	// Attempts per remote call; transient failures are retried after RetryDelay.
	Attempts   int
	RetryDelay time.Duration

	Logger *log.Logger
}

func NewTracker(resolver SymbolResolver, fetcher PageFetcher, extractor Extractor) *Tracker {
	return &Tracker{
		Resolver:  resolver,
		Fetcher:   fetcher,
		Extractor: extractor,
		Workers:   1,
		Attempts:  1,
		Logger:    log.Default(),
	}
}

// SplitCompanies splits comma-separated input into trimmed, non-empty names.
func SplitCompanies(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type outcome struct {
	quote   *Quote
	failure *Failure
}

// Run processes every name in raw. One name failing never stops the others.
func (t *Tracker) Run(ctx context.Context, raw string) Result {
	result := Result{
		RunID:    uuid.New().String(),
		Quotes:   []Quote{},
		Failures: []Failure{},
	}

	names := SplitCompanies(raw)
	var skipped []string
	if t.MaxCompanies > 0 && len(names) > t.MaxCompanies {
		skipped = names[t.MaxCompanies:]
		names = names[:t.MaxCompanies]
	}

	outcomes := make([]outcome, len(names))
	if t.Workers <= 1 {
		for i, name := range names {
			outcomes[i] = t.track(ctx, name)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(t.Workers)
		for i, name := range names {
			g.Go(func() error {
				outcomes[i] = t.track(ctx, name)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, o := range outcomes {
		if o.quote != nil {
			result.Quotes = append(result.Quotes, *o.quote)
			continue
		}
		result.Failures = append(result.Failures, *o.failure)
	}
	for _, name := range skipped {
		result.Failures = append(result.Failures, Failure{
			Name:    name,
			Kind:    KindSkipped,
			Message: fmt.Sprintf("Skipped %s: at most %d companies per request", name, t.MaxCompanies),
		})
	}

	for _, f := range result.Failures {
		t.logf("run=%s name=%q symbol=%q kind=%s err=%s", result.RunID, f.Name, f.Symbol, f.Kind, f.Detail)
	}
	t.logf("run=%s companies=%d quotes=%d failures=%d", result.RunID, len(names)+len(skipped), len(result.Quotes), len(result.Failures))
	return result
}

func (t *Tracker) track(ctx context.Context, name string) outcome {
	if err := ctx.Err(); err != nil {
		return failed(ctx, name, "", err)
	}

	symbol, err := retry(ctx, t.Attempts, t.RetryDelay, func() (string, error) {
		return t.Resolver.Resolve(ctx, name)
	})
	if err != nil {
		return failed(ctx, name, "", err)
	}

	html, err := retry(ctx, t.Attempts, t.RetryDelay, func() (string, error) {
		return t.Fetcher.Fetch(ctx, symbol)
	})
	if err != nil {
		return failed(ctx, name, symbol, err)
	}

	fields, err := t.Extractor.Extract(html, symbol)
	if err != nil {
		return failed(ctx, name, symbol, err)
	}

	return outcome{quote: &Quote{
		Symbol: symbol,
		Price:  fields.Price,
		Change: fields.Change,
		Volume: FormatVolume(fields.Volume),
	}}
}

func failed(ctx context.Context, name, symbol string, err error) outcome {
	kind := Classify(err)
	if ctx.Err() != nil {
		kind = KindCanceled
	}
	return outcome{failure: &Failure{
		Name:    name,
		Symbol:  symbol,
		Kind:    kind,
		Message: message(kind, name, symbol),
		Detail:  err.Error(),
	}}
}

// Classify maps a pipeline error to the kind reported to users. A timeout
// inside a resolver or fetcher stays a lookup or fetch failure; only the
// caller's own cancellation is reported as canceled.
func Classify(err error) FailureKind {
	var (
		lookupErr *LookupError
		fetchErr  *FetchError
		fieldErr  *FieldNotFoundError
		parseErr  *ParseError
	)
	switch {
	case errors.Is(err, ErrSymbolNotFound):
		return KindSymbolNotFound
	case errors.As(err, &lookupErr):
		return KindLookupFailed
	case errors.As(err, &fetchErr):
		return KindFetchFailed
	case errors.As(err, &fieldErr):
		return KindFieldNotFound
	case errors.As(err, &parseErr):
		return KindParseFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindFetchFailed
	}
}

func message(kind FailureKind, name, symbol string) string {
	switch kind {
	case KindSymbolNotFound:
		return fmt.Sprintf("Could not find stock symbol for %s", name)
	case KindLookupFailed:
		return fmt.Sprintf("Could not look up stock symbol for %s", name)
	case KindFieldNotFound, KindParseFailed:
		return fmt.Sprintf("Failed to find the stock data for %s", symbol)
	case KindCanceled:
		return fmt.Sprintf("Request canceled before %s was processed", name)
	default:
		return fmt.Sprintf("Failed to retrieve data for %s", symbol)
	}
}

func (t *Tracker) logf(format string, args ...any) {
	if t.Logger != nil {
		t.Logger.Printf(format, args...)
	}
}

type temporary interface {
	Temporary() bool
}

// retry calls fn up to attempts times, stopping early on success, on a
// non-transient error, or when ctx is done.
func retry[T any](ctx context.Context, attempts int, delay time.Duration, fn func() (T, error)) (T, error) {
	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil || attempt >= attempts || ctx.Err() != nil {
			return result, err
		}
		var tmp temporary
		if !errors.As(err, &tmp) || !tmp.Temporary() {
			return result, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, err
		case <-timer.C:
		}
	}
}
