package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"stocktracker/browser"
	"stocktracker/cache"
	"stocktracker/config"
	"stocktracker/stock"
)

// app owns the tracker and whatever it holds open (Redis, Chrome).
type app struct {
	cfg     config.Config
	tracker *stock.Tracker
	closers []func()
}

func newApp(ctx context.Context, cfg config.Config) *app {
	a := &app{cfg: cfg}

	region := cfg.Region()
	options := []stock.Option{
		stock.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		stock.WithUserAgent(cfg.Fetch.UserAgent),
		stock.WithRegion(region.Lang, region.Region),
	}

	var resolver stock.SymbolResolver = stock.NewSearchResolver(cfg.Endpoints.SearchURL, options...)
	if ttl := cfg.CacheTTL(); ttl > 0 {
		resolver = &stock.CachedResolver{
			Resolver: resolver,
			Store:    a.cacheStore(ctx),
			TTL:      ttl,
		}
	}

	var fetcher stock.PageFetcher
	if cfg.Fetch.Browser {
		pool := browser.New(cfg.Fetch.BrowserPool, cfg.Fetch.UserAgent)
		a.closers = append(a.closers, pool.Shutdown)
		fetcher = &stock.BrowserFetcher{
			BaseURL:  cfg.Endpoints.QuoteURL,
			Renderer: pool,
			Timeout:  cfg.Timeout(),
		}
	} else {
		fetcher = stock.NewHTTPFetcher(cfg.Endpoints.QuoteURL, options...)
	}

	tracker := stock.NewTracker(resolver, fetcher, stock.FinStreamerExtractor{
		ParenthesesNegative: cfg.Extract.ParenthesesNegative,
	})
	tracker.Workers = cfg.Pipeline.Workers
	tracker.MaxCompanies = cfg.Pipeline.MaxCompanies
	tracker.Attempts = cfg.Fetch.Attempts
	tracker.RetryDelay = cfg.RetryDelay()
	a.tracker = tracker

	return a
}

// cacheStore prefers Redis and falls back to process memory when no address
// is set or the server does not answer.
func (a *app) cacheStore(ctx context.Context) cache.Store {
	if a.cfg.Cache.RedisAddr == "" {
		return cache.NewMemoryStore()
	}

	store := cache.NewRedisStore(a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPassword, a.cfg.Cache.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Printf("warning: redis at %s unavailable, caching symbols in memory: %v", a.cfg.Cache.RedisAddr, err)
		_ = store.Close()
		return cache.NewMemoryStore()
	}

	a.closers = append(a.closers, func() { _ = store.Close() })
	log.Printf("caching symbol lookups in redis at %s for %s", a.cfg.Cache.RedisAddr, a.cfg.CacheTTL())
	return store
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
