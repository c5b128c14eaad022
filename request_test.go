package respcache

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestShouldSkipCacheDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if !RequestShouldSkipCache(req, false, nil) {
		t.Error("expected skip when caching is disabled")
	}
}

func TestRequestShouldSkipCacheNonIdempotentMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if !RequestShouldSkipCache(req, true, nil) {
		t.Error("expected skip for a POST request")
	}
}

func TestRequestShouldSkipCacheIdempotentMethods(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		req := httptest.NewRequest(method, "/", nil)
		if RequestShouldSkipCache(req, true, nil) {
			t.Errorf("expected %s to be cacheable by default", method)
		}
	}
}

func TestRequestShouldSkipCacheHookVeto(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	hooks := &Hooks{CacheableByRequest: func(CacheableHookContext) bool { return false }}
	if !RequestShouldSkipCache(req, true, hooks) {
		t.Error("expected the cacheable_by_request hook veto to skip the cache")
	}
}

func TestSelectRequestEncodingNegotiatesAndAppliesHook(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br")
	cfg := EncodingConfiguration{EnabledEncodings: []Encoding{Brotli, Gzip}}

	if got := SelectRequestEncoding(req, cfg, nil); got != Brotli {
		t.Errorf("got %v, want Brotli", got)
	}

	hooks := &Hooks{EncodableByRequest: func(EncodableHookContext) bool { return false }}
	if got := SelectRequestEncoding(req, cfg, hooks); got != Identity {
		t.Errorf("expected hook veto to downgrade to Identity, got %v", got)
	}
}

func TestRequestCacheKeyAppliesHook(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/path?b=2&a=1", nil)

	key := RequestCacheKey(req, nil)
	if key.Method != http.MethodGet || key.Path != "/path" {
		t.Errorf("unexpected default key: %+v", key)
	}

	hooks := &Hooks{CacheKey: func(_ CacheKeyHookContext, key *CommonCacheKey) {
		key.Extensions = map[string]string{"variant": "mobile"}
	}}
	key = RequestCacheKey(req, hooks)
	if key.Extensions["variant"] != "mobile" {
		t.Error("expected the cache_key hook to mutate the extracted key")
	}
}
