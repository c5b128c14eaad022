package respcache

import (
	"fmt"
	"net/http"
)

// Option configures a Middleware at construction time, the same
// functional-options shape as the teacher's TransportOption.
type Option[K CacheKey] func(*Middleware[K]) error

// New builds a Middleware wrapping next. cache is the shared handle
// used for every get/put/invalidate; it is never copied.
//
// The default EncodingConfiguration has an empty EnabledEncodings list
// (§4.7 select_encoding: an absent/empty list always yields Identity),
// so a Middleware built with no options serves identity-only
// responses. Package codec cannot be imported here without an import
// cycle (it depends on the Encoding/Codec types defined in this
// package): callers that want compression must call both
// WithCodecs(codec.NewSet()) and WithEncodingConfiguration with a
// non-empty EnabledEncodings list, e.g. DefaultEncodingConfiguration().
func New[K CacheKey](next http.Handler, cache Cache[K], opts ...Option[K]) (*Middleware[K], error) {
	m := &Middleware[K]{
		next:         next,
		cache:        cache,
		cacheEnabled: true,
		cachingCfg:   DefaultCachingConfiguration(),
		encodingCfg: EncodingConfiguration{
			EncodableByDefault:   true,
			KeepIdentityEncoding: true,
		},
		codecs:   identityOnlyCodecs{},
		upstream: recordUpstream,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.keyFunc == nil {
		hooks := m.hooks
		defaultKeyFunc := func(r *http.Request) *CommonCacheKey { return RequestCacheKey(r, hooks) }
		keyFunc, ok := any(defaultKeyFunc).(func(*http.Request) K)
		if !ok {
			return nil, fmt.Errorf("respcache: key type %T has no default key function, use WithKeyFunc", *new(K))
		}
		m.keyFunc = keyFunc
	}
	return m, nil
}

// WithKeyFunc overrides how the cache key is derived from each request
// (§4.7 cache_key_with_hook). It is required when K is not
// *CommonCacheKey, the only type New can default to on its own; for a
// custom CacheKey implementation, build it directly from the request
// here (the cache_key hook, which only mutates a *CommonCacheKey, does
// not apply).
func WithKeyFunc[K CacheKey](fn func(*http.Request) K) Option[K] {
	return func(m *Middleware[K]) error {
		m.keyFunc = fn
		return nil
	}
}

// WithCodecs sets the Codec resolver used for every encode/decode
// operation. Pass codec.NewSet() for the concrete gzip/deflate/brotli/
// zstd implementations.
func WithCodecs[K CacheKey](codecs CodecSet) Option[K] {
	return func(m *Middleware[K]) error {
		m.codecs = codecs
		return nil
	}
}

// WithCachingConfiguration overrides the default CachingConfiguration.
func WithCachingConfiguration[K CacheKey](cfg CachingConfiguration) Option[K] {
	return func(m *Middleware[K]) error {
		m.cachingCfg = cfg
		return nil
	}
}

// WithEncodingConfiguration overrides the default EncodingConfiguration.
func WithEncodingConfiguration[K CacheKey](cfg EncodingConfiguration) Option[K] {
	return func(m *Middleware[K]) error {
		m.encodingCfg = cfg
		return nil
	}
}

// WithHooks installs the six optional extension hooks (§4.6).
func WithHooks[K CacheKey](hooks *Hooks) Option[K] {
	return func(m *Middleware[K]) error {
		m.hooks = hooks
		return nil
	}
}

// WithCacheDisabled disables caching entirely: every request takes the
// skip-cache pass-through path of §4.9 step 1.
func WithCacheDisabled[K CacheKey](disabled bool) Option[K] {
	return func(m *Middleware[K]) error {
		m.cacheEnabled = !disabled
		return nil
	}
}

// WithMetrics installs a MetricsRecorder fed on every cache operation
// and response emission.
func WithMetrics[K CacheKey](recorder MetricsRecorder) Option[K] {
	return func(m *Middleware[K]) error {
		m.metrics = recorder
		return nil
	}
}

// WithUpstreamCaller overrides how the inner handler is invoked,
// letting callers wrap it with retry/circuit-breaker resilience (see
// package resilience) without the core depending on failsafe-go
// directly.
func WithUpstreamCaller[K CacheKey](caller func(next http.Handler, req *http.Request) (statusCode int, header http.Header, body []byte)) Option[K] {
	return func(m *Middleware[K]) error {
		m.upstream = caller
		return nil
	}
}

// identityOnlyCodecs is the zero-dependency default CodecSet: it
// resolves no non-identity codec, so every encode/decode request for
// Gzip/Deflate/Brotli/Zstd fails with ErrCodec.
type identityOnlyCodecs struct{}

func (identityOnlyCodecs) Codec(Encoding) (Codec, bool) {
	return nil, false
}
