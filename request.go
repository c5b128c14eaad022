package respcache

import (
	"net/http"
)

// idempotentMethods are the methods eligible for caching (§4.7:
// "skip if the method is non-idempotent"): GET, HEAD, OPTIONS and
// TRACE. PUT and DELETE are not in the set, so they skip the cache too.
var idempotentMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// RequestShouldSkipCache implements §4.7 should_skip_cache: skip if
// caching is disabled, if the method is non-idempotent, or if the
// cacheable_by_request hook returns false.
func RequestShouldSkipCache(req *http.Request, cacheEnabled bool, hooks *Hooks) bool {
	if !cacheEnabled {
		return true
	}
	if !idempotentMethods[req.Method] {
		return true
	}
	if hooks != nil && hooks.CacheableByRequest != nil {
		if !hooks.CacheableByRequest(CacheableHookContext{URI: req.URL, Header: req.Header}) {
			return true
		}
	}
	return false
}

// SelectRequestEncoding implements §4.7 select_encoding: negotiate
// against Accept-Encoding and the enabled preference order, then let
// encodable_by_request downgrade to Identity.
func SelectRequestEncoding(req *http.Request, cfg EncodingConfiguration, hooks *Hooks) Encoding {
	encoding := selectEncoding(req.Header.Get("Accept-Encoding"), cfg.EnabledEncodings)
	if encoding == Identity {
		return Identity
	}
	if hooks != nil && hooks.EncodableByRequest != nil {
		if !hooks.EncodableByRequest(EncodableHookContext{Encoding: encoding, URI: req.URL, Header: req.Header}) {
			return Identity
		}
	}
	return encoding
}

// RequestCacheKey implements §4.7 cache_key_with_hook: build the
// default CommonCacheKey, then optionally mutate it via the cache_key
// hook.
func RequestCacheKey(req *http.Request, hooks *Hooks) *CommonCacheKey {
	key := CacheKeyForRequest(req.Method, req.URL, req.Header)
	if hooks != nil && hooks.CacheKey != nil {
		hooks.CacheKey(CacheKeyHookContext{Request: req}, key)
	}
	return key
}
