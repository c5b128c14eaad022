package respcache

import (
	"net/http"
	"net/url"
	"strconv"
)

// UpstreamClassification is the result of classifying an upstream
// response for cacheability and encoding (§4.8).
type UpstreamClassification struct {
	SkipCache     bool
	ContentLength int64 // unknownContentLength if the header was absent
}

// UpstreamShouldSkipCache implements §4.8 should_skip_cache: skip if
// XX-Cache resolves to false, if status is not 2xx, if Content-Range
// is present, if a known Content-Length falls outside
// [MinBodySize, MaxBodySize], or if cacheable_by_response vetoes.
func UpstreamShouldSkipCache(header http.Header, statusCode int, uri *url.URL, cfg CachingConfiguration, hooks *Hooks) UpstreamClassification {
	contentLength := parseContentLength(header)

	if skip, ok := parseBoolHeader(header, HeaderCache); ok && !skip {
		return UpstreamClassification{SkipCache: true, ContentLength: contentLength}
	}
	if statusCode < 200 || statusCode >= 300 {
		return UpstreamClassification{SkipCache: true, ContentLength: contentLength}
	}
	if header.Get("Content-Range") != "" {
		return UpstreamClassification{SkipCache: true, ContentLength: contentLength}
	}
	if contentLength != unknownContentLength {
		if contentLength < cfg.MinBodySize || contentLength > cfg.MaxBodySize {
			return UpstreamClassification{SkipCache: true, ContentLength: contentLength}
		}
	}
	if hooks != nil && hooks.CacheableByResponse != nil {
		if !hooks.CacheableByResponse(CacheableHookContext{URI: uri, Header: header}) {
			return UpstreamClassification{SkipCache: true, ContentLength: contentLength}
		}
	}
	return UpstreamClassification{SkipCache: false, ContentLength: contentLength}
}

// ValidateEncoding implements §4.8 validate_encoding: Identity always
// passes through unchanged; otherwise a known content length below
// EncodingConfiguration.MinBodySize downgrades to Identity and signals
// skip_encoding, and so does a false result from encodable_by_response.
func ValidateEncoding(header http.Header, uri *url.URL, chosen Encoding, contentLength int64, cfg EncodingConfiguration, hooks *Hooks) (encoding Encoding, skipEncoding bool) {
	if chosen == Identity {
		return Identity, false
	}
	if contentLength != unknownContentLength && contentLength < cfg.MinBodySize {
		return Identity, true
	}
	if hooks != nil && hooks.EncodableByResponse != nil {
		if !hooks.EncodableByResponse(EncodableHookContext{Encoding: chosen, URI: uri, Header: header}) {
			return Identity, true
		}
	}
	return chosen, false
}

func parseContentLength(header http.Header) int64 {
	raw := header.Get("Content-Length")
	if raw == "" {
		return unknownContentLength
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return unknownContentLength
	}
	return n
}
