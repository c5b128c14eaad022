package respcache

import (
	"net/http"
	"net/url"
	"time"
)

// CachingConfiguration holds the size thresholds and defaults that
// govern whether a response is cacheable (§3 Configuration,
// grounded on original_source/src/cache/configuration.rs).
type CachingConfiguration struct {
	MinBodySize        int64
	MaxBodySize        int64
	CacheableByDefault bool
	CacheDuration      time.Duration
}

// EncodingConfiguration holds the size threshold, default and the
// server's encoding preference order (§3 Configuration).
type EncodingConfiguration struct {
	MinBodySize          int64
	EncodableByDefault   bool
	KeepIdentityEncoding bool
	EnabledEncodings     []Encoding
}

// DefaultCachingConfiguration mirrors the 1MiB max_body_size and
// cacheable_by_default=true defaults from
// original_source/src/cache/middleware/configuration.rs.
func DefaultCachingConfiguration() CachingConfiguration {
	return CachingConfiguration{
		MinBodySize:        0,
		MaxBodySize:        1 << 20,
		CacheableByDefault: true,
	}
}

// DefaultEncodingConfiguration mirrors encodable_by_default=true,
// keep_identity_encoding=true, and the Brotli/Gzip/Deflate/Zstd
// preference order from the same source.
func DefaultEncodingConfiguration() EncodingConfiguration {
	return EncodingConfiguration{
		MinBodySize:          0,
		EncodableByDefault:   true,
		KeepIdentityEncoding: true,
		EnabledEncodings:     append([]Encoding(nil), defaultEncodingsByPreference...),
	}
}

// CacheKeyHookContext is passed to the cache_key hook (§4.6, §9).
type CacheKeyHookContext struct {
	Request *http.Request
}

// CacheableHookContext is passed to cacheable_by_request and
// cacheable_by_response hooks.
type CacheableHookContext struct {
	URI    *url.URL
	Header http.Header
}

// EncodableHookContext is passed to encodable_by_request and
// encodable_by_response hooks.
type EncodableHookContext struct {
	Encoding Encoding
	URI      *url.URL
	Header   http.Header
}

// CacheDurationHookContext is passed to the cache_duration hook.
type CacheDurationHookContext struct {
	URI    *url.URL
	Header http.Header
}

// Hooks is the structured set of six optional, effect-free
// extension points (§4.6, §9). A hook must not retain references
// beyond the call and must not re-enter the middleware.
type Hooks struct {
	// CacheKey mutates the default-extracted cache key.
	CacheKey func(ctx CacheKeyHookContext, key *CommonCacheKey)
	// CacheableByRequest vetoes caching before the upstream call.
	CacheableByRequest func(ctx CacheableHookContext) bool
	// CacheableByResponse vetoes caching after seeing the upstream
	// response.
	CacheableByResponse func(ctx CacheableHookContext) bool
	// EncodableByRequest vetoes the negotiated encoding before the
	// upstream call.
	EncodableByRequest func(ctx EncodableHookContext) bool
	// EncodableByResponse vetoes the negotiated encoding after seeing
	// the upstream response.
	EncodableByResponse func(ctx EncodableHookContext) bool
	// CacheDuration computes a TTL override; a nil return means no
	// override.
	CacheDuration func(ctx CacheDurationHookContext) *time.Duration
}
