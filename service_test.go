package respcache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func countingUpstream(body string) (http.Handler, *int32) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Cache-Control", "max-age=60")
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, body)
	})
	return handler, &calls
}

func newTestMiddleware(t *testing.T, upstream http.Handler, cache Cache[*CommonCacheKey], opts ...Option[*CommonCacheKey]) *Middleware[*CommonCacheKey] {
	t.Helper()
	mw, err := New[*CommonCacheKey](upstream, cache, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mw.codecs = stubCodecSet{}
	return mw
}

func TestServeHTTPMissThenHit(t *testing.T) {
	upstream, calls := countingUpstream("hello world")
	cache := NewMemoryCache[*CommonCacheKey]()
	mw := newTestMiddleware(t, upstream, cache)

	rec1 := httptest.NewRecorder()
	mw.ServeHTTP(rec1, httptest.NewRequest(http.MethodGet, "/resource", nil))
	if rec1.Code != http.StatusOK || rec1.Body.String() != "hello world" {
		t.Fatalf("first request: status=%d body=%q", rec1.Code, rec1.Body.String())
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", *calls)
	}

	rec2 := httptest.NewRecorder()
	mw.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/resource", nil))
	if rec2.Code != http.StatusOK || rec2.Body.String() != "hello world" {
		t.Fatalf("second request: status=%d body=%q", rec2.Code, rec2.Body.String())
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected the second request to be served from cache, upstream called %d times", *calls)
	}
}

func TestServeHTTPPassThroughOnNonIdempotentMethod(t *testing.T) {
	upstream, calls := countingUpstream("written")
	cache := NewMemoryCache[*CommonCacheKey]()
	mw := newTestMiddleware(t, upstream, cache)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/resource", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "written" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if cache.Len() != 0 {
		t.Error("expected a POST response not to be cached")
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", *calls)
	}
}

func TestServeHTTPPassThroughWhenCacheDisabled(t *testing.T) {
	upstream, calls := countingUpstream("hello")
	cache := NewMemoryCache[*CommonCacheKey]()
	mw := newTestMiddleware(t, upstream, cache, WithCacheDisabled[*CommonCacheKey](true))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resource", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if atomic.LoadInt32(calls) != 2 {
		t.Errorf("expected every request to reach upstream, got %d calls", *calls)
	}
	if cache.Len() != 0 {
		t.Error("expected nothing to be cached")
	}
}

func TestServeHTTPUpstreamErrorStatusIsNotCached(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	cache := NewMemoryCache[*CommonCacheKey]()
	mw := newTestMiddleware(t, handler, cache)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if cache.Len() != 0 {
		t.Error("expected a 500 response not to be cached")
	}
}

func TestServeHTTPRevalidatesOnMatchingETag(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		w.Header().Set("ETag", `"v1"`)
		fmt.Fprint(w, "payload")
	})
	cache := NewMemoryCache[*CommonCacheKey]()
	mw := newTestMiddleware(t, handler, cache)

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/resource", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("priming request status = %d", first.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("If-None-Match", `"v1"`)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected an empty body for a 304, got %q", rec.Body.String())
	}
}

func TestServeHTTPCacheableHookVeto(t *testing.T) {
	upstream, calls := countingUpstream("hello")
	cache := NewMemoryCache[*CommonCacheKey]()
	hooks := &Hooks{CacheableByRequest: func(CacheableHookContext) bool { return false }}
	mw := newTestMiddleware(t, upstream, cache, WithHooks[*CommonCacheKey](hooks))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resource", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if cache.Len() != 0 {
		t.Error("expected the veto to prevent caching")
	}
	if atomic.LoadInt32(calls) != 2 {
		t.Errorf("expected every request to bypass the cache, got %d upstream calls", *calls)
	}
}

func TestServeHTTPCacheBackendGetErrorFallsBackToMiss(t *testing.T) {
	upstream, calls := countingUpstream("hello")
	mw := newTestMiddleware(t, upstream, &erroringCache{mockCache: *newMockCache()})

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resource", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected upstream to still be called on a backend error, got %d calls", *calls)
	}
}

func TestServeHTTPTooLargeBodyStreamsFullResponseWithoutCaching(t *testing.T) {
	full := "this response body is deliberately longer than the configured cap"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		fmt.Fprint(w, full)
	})
	cache := NewMemoryCache[*CommonCacheKey]()
	cachingCfg := DefaultCachingConfiguration()
	cachingCfg.MaxBodySize = 5
	mw := newTestMiddleware(t, handler, cache, WithCachingConfiguration[*CommonCacheKey](cachingCfg))

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/big", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != full {
		t.Fatalf("body = %q, want the full upstream body, not just the prefix read before the cap tripped", rec.Body.String())
	}
	if cache.Len() != 0 {
		t.Error("expected an oversized response not to be cached")
	}
}

func TestServeHTTPDistinctPathsGetDistinctCacheEntries(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		fmt.Fprint(w, "body for "+r.URL.Path)
	})
	cache := NewMemoryCache[*CommonCacheKey]()
	mw := newTestMiddleware(t, handler, cache)

	recA := httptest.NewRecorder()
	mw.ServeHTTP(recA, httptest.NewRequest(http.MethodGet, "/a", nil))
	recB := httptest.NewRecorder()
	mw.ServeHTTP(recB, httptest.NewRequest(http.MethodGet, "/b", nil))

	if recA.Body.String() == recB.Body.String() {
		t.Error("expected distinct paths to receive distinct responses")
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 distinct cache entries, got %d", cache.Len())
	}
}
