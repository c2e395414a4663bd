// Package browser provides headless Chrome rendering for script-populated pages
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ErrClosed is returned by Acquire after Shutdown.
var ErrClosed = errors.New("browser pool is shut down")

// Pool manages a fixed number of browser tabs for reuse
type Pool struct {
	size      int
	userAgent string

	contexts    chan context.Context
	cancelFuncs map[context.Context]context.CancelFunc
	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	initialized bool
	closed      bool
}

// New creates a pool of size tabs. Chrome is not started until the first
// Acquire.
func New(size int, userAgent string) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		size:        size,
		userAgent:   userAgent,
		contexts:    make(chan context.Context, size),
		cancelFuncs: make(map[context.Context]context.CancelFunc),
	}
}

func (pool *Pool) initialize() error {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.closed {
		return ErrClosed
	}
	if pool.initialized {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1280, 900),
	)
	if pool.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(pool.userAgent))
	}

	pool.allocCtx, pool.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

	for i := 0; i < pool.size; i++ {
		ctx, cancel := chromedp.NewContext(pool.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
			log.Printf("browser: failed to start tab: %v", err)
			cancel()
			continue
		}
		pool.contexts <- ctx
		pool.cancelFuncs[ctx] = cancel
	}

	if len(pool.cancelFuncs) == 0 {
		pool.allocCancel()
		return errors.New("browser: no tab could be started")
	}

	pool.initialized = true
	log.Printf("browser: pool initialized with %d tabs", len(pool.cancelFuncs))
	return nil
}

// Acquire waits for a free tab. The returned release func must be called
// once the caller is done with the tab.
func (pool *Pool) Acquire(ctx context.Context) (context.Context, func(), error) {
	if err := pool.initialize(); err != nil {
		return nil, nil, err
	}

	select {
	case tab := <-pool.contexts:
		release := func() {
			resetCtx, cancel := context.WithTimeout(tab, 3*time.Second)
			defer cancel()
			_ = chromedp.Run(resetCtx,
				network.ClearBrowserCookies(),
				chromedp.Navigate("about:blank"),
			)

			pool.mu.Lock()
			defer pool.mu.Unlock()
			if pool.closed {
				return
			}
			pool.contexts <- tab
		}
		return tab, release, nil
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("waiting for browser tab: %w", ctx.Err())
	}
}

// FetchHTML navigates to url, waits for waitSelector to be present when it
// is non-empty, and returns the outer HTML of the document.
func (pool *Pool) FetchHTML(ctx context.Context, url, waitSelector string) (string, error) {
	tab, release, err := pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	runCtx, cancel := context.WithCancel(tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitReady(waitSelector, chromedp.ByQuery))
	}
	var htmlContent string
	actions = append(actions, chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("failed to render %s: %w", url, ctx.Err())
		}
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}
	return htmlContent, nil
}

// Shutdown closes all tabs and the browser process
func (pool *Pool) Shutdown() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	pool.closed = true
	if !pool.initialized {
		return
	}

	for ctx, cancel := range pool.cancelFuncs {
		cancel()
		delete(pool.cancelFuncs, ctx)
	}
	if pool.allocCancel != nil {
		pool.allocCancel()
	}
	for len(pool.contexts) > 0 {
		<-pool.contexts
	}

	pool.initialized = false
	log.Println("browser: pool shut down")
}
