package respcache

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// CachedResponse is an immutable bundle of response parts, a cached
// body and an optional TTL override (§3, §4.4). Values are shared by
// reference among concurrent readers and are never mutated in place:
// a reencode produces a new value for the caller to put back.
type CachedResponse struct {
	StatusCode  int
	Header      http.Header
	Body        *CachedBody
	Duration    time.Duration
	HasDuration bool
}

// NewCachedResponse reads the upstream body (bounded by cachingCfg) and
// builds a CachedResponse per §4.4 new_for. uri and hooks.CacheDuration
// are used only to resolve the TTL when no XX-Cache-Duration header is
// present.
//
// On a size mismatch against declaredSize or cachingCfg bounds, the
// returned error is an *ErrorWithResponsePieces carrying whatever
// prefix was already read plus the still-open remainder, so the caller
// can reconstruct a pass-through stream without re-calling upstream.
func NewCachedResponse(
	uri *url.URL,
	statusCode int,
	header http.Header,
	body io.ReadCloser,
	declaredSize int64,
	preferredEncoding Encoding,
	skipEncoding bool,
	cachingCfg CachingConfiguration,
	encodingCfg EncodingConfiguration,
	hooks *Hooks,
	codecs CodecSet,
) (*CachedResponse, error) {
	data, err := readBoundedBody(body, declaredSize, cachingCfg)
	if err != nil {
		return nil, err
	}

	source, _ := ParseEncoding(header.Get("Content-Encoding"))

	if !skipEncoding && int64(len(data)) < encodingCfg.MinBodySize {
		skipEncoding = true
	}
	effectiveEncoding := preferredEncoding
	if skipEncoding {
		effectiveEncoding = Identity
	}

	cachedBody, err := NewCachedBody(data, source, effectiveEncoding, encodingCfg.KeepIdentityEncoding, codecs)
	if err != nil {
		return nil, err
	}

	out := header.Clone()

	duration, hasDuration := resolveCacheDuration(uri, out, cachingCfg, hooks)

	if out.Get("Last-Modified") == "" {
		out.Set("Last-Modified", nowFunc().UTC().Format(http.TimeFormat))
	}

	stripHeaders(out, storedControlHeaders)

	if skipEncoding {
		out.Set(HeaderEncode, "true")
	} else {
		out.Del(HeaderEncode)
	}

	return &CachedResponse{
		StatusCode:  statusCode,
		Header:      out,
		Body:        cachedBody,
		Duration:    duration,
		HasDuration: hasDuration,
	}, nil
}

// nowFunc is a seam for tests; production code always uses time.Now.
var nowFunc = time.Now

func resolveCacheDuration(uri *url.URL, header http.Header, cfg CachingConfiguration, hooks *Hooks) (time.Duration, bool) {
	if d, ok := parseDurationHeader(header, HeaderCacheDuration); ok {
		return d, true
	}
	if hooks != nil && hooks.CacheDuration != nil {
		if d := hooks.CacheDuration(CacheDurationHookContext{URI: uri, Header: header}); d != nil {
			return *d, true
		}
	}
	if cfg.CacheDuration > 0 {
		return cfg.CacheDuration, true
	}
	return 0, false
}

// ToResponse renders r for the requested encoding (§4.4 to_response,
// grounded on original_source's xx_encode(encodable_by_default)). If
// the stored XX-Encode header is present it wins outright; otherwise
// cfg.EncodableByDefault is the fallback. Either way, encoding is
// forced to Identity when the resolved value says not to encode.
func (r *CachedResponse) ToResponse(encoding Encoding, cfg EncodingConfiguration, codecs CodecSet) (header http.Header, statusCode int, data []byte, newSelf *CachedResponse, err error) {
	skip := !cfg.EncodableByDefault
	if stored, ok := parseBoolHeader(r.Header, HeaderEncode); ok {
		skip = stored
	}
	if skip {
		encoding = Identity
	}

	data, newBody, err := r.Body.Get(encoding, cfg.KeepIdentityEncoding, codecs)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	if newBody != nil {
		newSelf = &CachedResponse{
			StatusCode:  r.StatusCode,
			Header:      r.Header,
			Body:        newBody,
			Duration:    r.Duration,
			HasDuration: r.HasDuration,
		}
	}

	out := r.Header.Clone()
	out.Del(HeaderEncode)
	if encoding != Identity {
		out.Set("Content-Encoding", encoding.String())
	}
	out.Set("Content-Length", strconv.Itoa(len(data)))

	return out, r.StatusCode, data, newSelf, nil
}

// LastModified returns the stored Last-Modified header value, always
// present per the §3 CachedResponse invariant.
func (r *CachedResponse) LastModified() string {
	return r.Header.Get("Last-Modified")
}

// ETag returns the stored ETag header value, if any.
func (r *CachedResponse) ETag() string {
	return r.Header.Get("ETag")
}

// Weight estimates r's byte footprint for capacity accounting (§4.5):
// header name/value bytes plus the body's weight plus a fixed
// per-entry overhead.
func (r *CachedResponse) Weight() uint32 {
	var sum uint64
	for name, values := range r.Header {
		sum += uint64(len(name))
		for _, v := range values {
			sum += uint64(len(v))
		}
	}
	return addSaturating(sum, uint64(r.Body.Weight()), entryOverhead)
}

