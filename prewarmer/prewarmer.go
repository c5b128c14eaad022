// Package prewarmer proactively populates a Middleware's cache by
// driving synthetic requests through it before real traffic arrives.
// Adapted from the teacher's wrapper/prewarmer, which drove requests
// through an http.Client configured with the RoundTripper-based
// Transport; this module's middleware wraps http.Handler instead, so
// prewarming drives requests directly through the handler via
// httptest's recorder rather than over a real client connection.
// Sitemap discovery still needs a real network fetch, so that part
// keeps the teacher's http.Client-based approach.
package prewarmer

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Prewarmer drives GET requests through a target http.Handler,
// typically a *respcache.Middleware[K], to populate its cache.
type Prewarmer struct {
	handler   http.Handler
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// Config holds configuration for the Prewarmer.
type Config struct {
	// Handler is the target to drive synthetic requests through.
	// Required.
	Handler http.Handler

	// SitemapClient is used only to fetch sitemap XML documents over
	// the network in PrewarmFromSitemap. Optional - defaults to
	// http.DefaultClient.
	SitemapClient *http.Client

	// UserAgent is the User-Agent string set on synthetic requests.
	// Optional - defaults to "respcache-prewarmer/1.0".
	UserAgent string

	// Timeout bounds each individual request. Optional - defaults to
	// 30 seconds.
	Timeout time.Duration
}

// Result is the outcome of prewarming a single path.
type Result struct {
	// Path is the request path that was prewarmed.
	Path string
	// Success indicates the handler returned a non-error status.
	Success bool
	// StatusCode is the status the handler returned.
	StatusCode int
	// Duration is how long the synthetic request took.
	Duration time.Duration
	// Size is the response body size in bytes.
	Size int64
	// Error is set if the request failed.
	Error error
}

// Stats aggregates the outcome of a prewarm run.
type Stats struct {
	Total         int
	Successful    int
	Failed        int
	TotalDuration time.Duration
	TotalBytes    int64
	Errors        []error
}

// ProgressCallback is invoked after each path is processed.
type ProgressCallback func(result *Result, completed, total int)

// New creates a Prewarmer from config.
func New(config Config) (*Prewarmer, error) {
	if config.Handler == nil {
		return nil, errors.New("prewarmer: handler is required")
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "respcache-prewarmer/1.0"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := config.SitemapClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Prewarmer{
		handler:   config.Handler,
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
	}, nil
}

// Prewarm drives GET requests for each path sequentially.
func (p *Prewarmer) Prewarm(ctx context.Context, paths []string) (*Stats, error) {
	return p.PrewarmWithCallback(ctx, paths, nil)
}

// PrewarmWithCallback drives requests sequentially, invoking callback
// after each.
func (p *Prewarmer) PrewarmWithCallback(ctx context.Context, paths []string, callback ProgressCallback) (*Stats, error) {
	stats := &Stats{Total: len(paths)}
	start := time.Now()

	for i, path := range paths {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		result := p.fetchPath(ctx, path)
		accumulate(stats, result)
		if callback != nil {
			callback(result, i+1, len(paths))
		}
	}

	stats.TotalDuration = time.Since(start)
	return stats, nil
}

// PrewarmConcurrent drives requests with up to workers goroutines in
// flight at once.
func (p *Prewarmer) PrewarmConcurrent(ctx context.Context, paths []string, workers int) (*Stats, error) {
	return p.PrewarmConcurrentWithCallback(ctx, paths, workers, nil)
}

// PrewarmConcurrentWithCallback drives requests concurrently, invoking
// callback (from multiple goroutines; it must be safe for concurrent
// use) after each completes.
func (p *Prewarmer) PrewarmConcurrentWithCallback(ctx context.Context, paths []string, workers int, callback ProgressCallback) (*Stats, error) {
	if workers <= 0 {
		workers = 1
	}

	stats := &Stats{Total: len(paths)}
	start := time.Now()

	pathChan := make(chan string, len(paths))
	for _, path := range paths {
		pathChan <- path
	}
	close(pathChan)

	resultChan := make(chan *Result, len(paths))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				resultChan <- p.fetchPath(ctx, path)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var mu sync.Mutex
	var completed int32
	for result := range resultChan {
		mu.Lock()
		accumulate(stats, result)
		mu.Unlock()

		n := atomic.AddInt32(&completed, 1)
		if callback != nil {
			callback(result, int(n), len(paths))
		}
	}

	stats.TotalDuration = time.Since(start)
	return stats, nil
}

// PrewarmFromSitemap fetches an XML sitemap over the network and
// prewarms every path it lists, sequentially.
func (p *Prewarmer) PrewarmFromSitemap(ctx context.Context, sitemapURL string) (*Stats, error) {
	return p.PrewarmFromSitemapWithCallback(ctx, sitemapURL, 1, nil)
}

// PrewarmFromSitemapWithCallback fetches an XML sitemap and prewarms
// every path it lists, with the given worker concurrency.
func (p *Prewarmer) PrewarmFromSitemapWithCallback(ctx context.Context, sitemapURL string, workers int, callback ProgressCallback) (*Stats, error) {
	paths, err := p.parseSitemap(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("prewarmer: failed to parse sitemap: %w", err)
	}
	if workers <= 1 {
		return p.PrewarmWithCallback(ctx, paths, callback)
	}
	return p.PrewarmConcurrentWithCallback(ctx, paths, workers, callback)
}

func accumulate(stats *Stats, result *Result) {
	if result.Success {
		stats.Successful++
		stats.TotalBytes += result.Size
	} else {
		stats.Failed++
		if result.Error != nil {
			stats.Errors = append(stats.Errors, result.Error)
		}
	}
}

// fetchPath drives a single synthetic GET request through the target
// handler. Whether the response came from cache is not observable
// here: XX-Cache is an egress control header the middleware strips
// from every emitted response before it reaches any caller (§6, §8
// invariants), so FromCache tracking from the teacher's client-side
// prewarmer has no equivalent at this layer.
func (p *Prewarmer) fetchPath(ctx context.Context, path string) *Result {
	result := &Result{Path: path}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
	req.Header.Set("User-Agent", p.userAgent)

	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)

	result.Duration = time.Since(start)
	result.StatusCode = rec.Code
	result.Size = int64(rec.Body.Len())
	result.Success = rec.Code >= 200 && rec.Code < 400
	if !result.Success {
		result.Error = fmt.Errorf("HTTP %d", rec.Code)
	}
	return result
}

// Sitemap is a minimal XML sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapURL is a single <url> entry.
type SitemapURL struct {
	Loc string `xml:"loc"`
}

// SitemapIndex is a minimal XML sitemap index document.
type SitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	Sitemaps []SitemapLocation `xml:"sitemap"`
}

// SitemapLocation is a single <sitemap> entry in a sitemap index.
type SitemapLocation struct {
	Loc string `xml:"loc"`
}

// parseSitemap fetches sitemapURL over the network and extracts every
// path (the URL's RequestURI, since paths are what the target handler
// is driven with). Sitemap indexes are expanded recursively.
func (p *Prewarmer) parseSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var index SitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		var all []string
		for _, sm := range index.Sitemaps {
			nested, err := p.parseSitemap(ctx, sm.Loc)
			if err != nil {
				continue
			}
			all = append(all, nested...)
		}
		return all, nil
	}

	var sitemap Sitemap
	if err := xml.Unmarshal(body, &sitemap); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap XML: %w", err)
	}

	paths := make([]string, 0, len(sitemap.URLs))
	for _, u := range sitemap.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		paths = append(paths, toPath(loc))
	}
	return paths, nil
}

// toPath reduces an absolute sitemap location to a request path, since
// the target handler is driven directly rather than through a real
// network connection.
func toPath(loc string) string {
	if idx := strings.Index(loc, "://"); idx != -1 {
		rest := loc[idx+3:]
		if slash := strings.Index(rest, "/"); slash != -1 {
			return rest[slash:]
		}
		return "/"
	}
	return loc
}
