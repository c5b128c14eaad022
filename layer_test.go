package respcache

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func noopUpstream() http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

func TestNewAppliesDefaults(t *testing.T) {
	cache := NewMemoryCache[*CommonCacheKey]()
	mw, err := New[*CommonCacheKey](noopUpstream(), cache)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !mw.cacheEnabled {
		t.Error("expected caching enabled by default")
	}
	if mw.encodingCfg.EncodableByDefault != true || len(mw.encodingCfg.EnabledEncodings) != 0 {
		t.Errorf("unexpected default encoding configuration: %+v", mw.encodingCfg)
	}
}

func TestNewPropagatesOptionError(t *testing.T) {
	cache := NewMemoryCache[*CommonCacheKey]()
	boom := errors.New("boom")
	failing := func(*Middleware[*CommonCacheKey]) error { return boom }

	_, err := New[*CommonCacheKey](noopUpstream(), cache, Option[*CommonCacheKey](failing))
	if !errors.Is(err, boom) {
		t.Fatalf("expected the option's error to propagate, got %v", err)
	}
}

func TestWithCacheDisabled(t *testing.T) {
	cache := NewMemoryCache[*CommonCacheKey]()
	mw, err := New[*CommonCacheKey](noopUpstream(), cache, WithCacheDisabled[*CommonCacheKey](true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if mw.cacheEnabled {
		t.Error("expected caching to be disabled")
	}
}

func TestWithKeyFuncOverridesDefaultKeyDerivation(t *testing.T) {
	cache := NewMemoryCache[*CommonCacheKey]()
	called := false
	keyFunc := func(r *http.Request) *CommonCacheKey {
		called = true
		return RequestCacheKey(r, nil)
	}
	mw, err := New[*CommonCacheKey](noopUpstream(), cache, WithKeyFunc[*CommonCacheKey](keyFunc))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mw.keyFunc(httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("expected the custom key function to be invoked")
	}
}

func TestIdentityOnlyCodecsResolvesNothing(t *testing.T) {
	var codecs identityOnlyCodecs
	if _, ok := codecs.Codec(Gzip); ok {
		t.Error("expected identityOnlyCodecs to resolve no codec")
	}
}

func TestWithUpstreamCaller(t *testing.T) {
	cache := NewMemoryCache[*CommonCacheKey]()
	called := false
	caller := func(next http.Handler, req *http.Request) (int, http.Header, []byte) {
		called = true
		return recordUpstream(next, req)
	}
	mw, err := New[*CommonCacheKey](noopUpstream(), cache, WithUpstreamCaller[*CommonCacheKey](caller))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mw.callUpstream(httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("expected the custom upstream caller to be invoked")
	}
}
