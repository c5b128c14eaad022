package respcache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// MetricsRecorder is the subset of metrics.Collector's method set
// Middleware feeds on every cache operation and response emission.
// metrics.Collector (and its Prometheus implementation) satisfies this
// structurally without either package importing the other.
type MetricsRecorder interface {
	RecordCacheOperation(operation, backend, result string, duration time.Duration)
	RecordHTTPRequest(method, cacheStatus string, statusCode int, duration time.Duration)
}

// metricsBackendName is the backend label reported to MetricsRecorder;
// Middleware doesn't know its Cache[K]'s concrete backend, so it
// reports a fixed label and leaves per-backend attribution to a
// metrics-instrumented Cache[K] decorator (see metrics/prometheus).
const metricsBackendName = "middleware"

// Middleware is the layer described in §4.10: it holds configuration
// by value and the cache handle by shared reference, and on each call
// hands the request to the state machine in §4.9.
type Middleware[K CacheKey] struct {
	next         http.Handler
	cache        Cache[K]
	cacheEnabled bool
	cachingCfg   CachingConfiguration
	encodingCfg  EncodingConfiguration
	hooks        *Hooks
	codecs       CodecSet
	metrics      MetricsRecorder
	upstream     func(next http.Handler, req *http.Request) (statusCode int, header http.Header, body []byte)
	keyFunc      func(req *http.Request) K
}

// ServeHTTP implements the §4.9 core state machine.
func (m *Middleware[K]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := nowFunc()

	if RequestShouldSkipCache(r, m.cacheEnabled, m.hooks) {
		m.servePassThrough(w, r, start)
		return
	}

	key := m.keyFunc(r)

	getStart := nowFunc()
	entry, hit, err := m.cache.Get(r.Context(), key)
	result := "miss"
	if err != nil {
		GetLogger().Error("cache backend error on get, treating as miss", "error", err)
		hit = false
		result = "error"
	} else if hit {
		result = "hit"
	}
	m.recordCacheOp("get", result, nowFunc().Sub(getStart))

	if hit {
		m.serveHit(w, r, start, key, entry)
		return
	}

	m.serveMiss(w, r, start, key)
}

func (m *Middleware[K]) servePassThrough(w http.ResponseWriter, r *http.Request, start time.Time) {
	encoding := SelectRequestEncoding(r, m.encodingCfg, m.hooks)
	statusCode, header, body := m.callUpstream(r)
	if statusCode == 0 {
		writeErrorResponse(w, http.StatusBadGateway)
		return
	}

	contentLength := parseContentLength(header)
	validated, _ := ValidateEncoding(header, r.URL, encoding, contentLength, m.encodingCfg, m.hooks)

	if err := writeTranscodingResponse(w, statusCode, header, body, Identity, validated, m.codecs); err != nil {
		GetLogger().Error("codec error on pass-through response", "error", err)
	}
	m.recordRequest(r.Method, "bypass", statusCode, start)
}

func (m *Middleware[K]) serveHit(w http.ResponseWriter, r *http.Request, start time.Time, key K, entry *CachedResponse) {
	if requestMatchesCachedResponse(r, entry) {
		writeNotModified(w, entry)
		m.recordRequest(r.Method, "revalidated", http.StatusNotModified, start)
		return
	}

	encoding := SelectRequestEncoding(r, m.encodingCfg, m.hooks)
	header, statusCode, data, newEntry, err := entry.ToResponse(encoding, m.encodingCfg, m.codecs)
	if err != nil {
		GetLogger().Error("codec error rendering cached response", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError)
		return
	}

	if newEntry != nil {
		m.putBestEffort(key, newEntry)
	}

	writeBufferedResponse(w, statusCode, header, data)
	m.recordRequest(r.Method, "hit", statusCode, start)
}

func (m *Middleware[K]) serveMiss(w http.ResponseWriter, r *http.Request, start time.Time, key K) {
	encoding := SelectRequestEncoding(r, m.encodingCfg, m.hooks)
	statusCode, header, body := m.callUpstream(r)
	if statusCode == 0 {
		writeErrorResponse(w, http.StatusBadGateway)
		return
	}

	cls := UpstreamShouldSkipCache(header, statusCode, r.URL, m.cachingCfg, m.hooks)
	validated, skipEncoding := ValidateEncoding(header, r.URL, encoding, cls.ContentLength, m.encodingCfg, m.hooks)

	if cls.SkipCache {
		if err := writeTranscodingResponse(w, statusCode, header, body, Identity, validated, m.codecs); err != nil {
			GetLogger().Error("codec error on non-cached miss response", "error", err)
		}
		m.recordRequest(r.Method, "miss", statusCode, start)
		return
	}

	bodyReader := io.NopCloser(bytes.NewReader(body))
	entry, err := NewCachedResponse(r.URL, statusCode, header, bodyReader, cls.ContentLength, validated, skipEncoding, m.cachingCfg, m.encodingCfg, m.hooks, m.codecs)
	if err == nil {
		putStart := nowFunc()
		putErr := m.cache.Put(r.Context(), key, entry)
		if putErr != nil {
			GetLogger().Error("cache backend error on put", "error", putErr)
			m.recordCacheOp("put", "error", nowFunc().Sub(putStart))
		} else {
			m.recordCacheOp("put", "success", nowFunc().Sub(putStart))
		}
		outHeader, outStatus, outData, _, toErr := entry.ToResponse(validated, m.encodingCfg, m.codecs)
		if toErr != nil {
			GetLogger().Error("codec error rendering freshly cached response", "error", toErr)
			writeErrorResponse(w, http.StatusInternalServerError)
			return
		}
		writeBufferedResponse(w, outStatus, outHeader, outData)
		m.recordRequest(r.Method, "miss", outStatus, start)
		return
	}

	var withPieces *ErrorWithResponsePieces
	if errors.As(err, &withPieces) {
		GetLogger().Debug("upstream body size mismatch, reconstructing stream", "error", withPieces.Err)
		if writeErr := writeReconstructedResponse(w, statusCode, header, withPieces.Pieces.Prefix, withPieces.Pieces.Remainder); writeErr != nil {
			GetLogger().Error("error streaming reconstructed response", "error", writeErr)
		}
		m.recordRequest(r.Method, "miss", statusCode, start)
		return
	}

	GetLogger().Error("codec error building cached response", "error", err)
	writeErrorResponse(w, http.StatusInternalServerError)
}

// putBestEffort stores a lazily-reencoded entry without blocking the
// response path (§4.9 step 3.2: "best-effort, non-blocking"). It uses
// a background context since the request's context may already be
// cancelled by the time the response has been written.
func (m *Middleware[K]) putBestEffort(key K, entry *CachedResponse) {
	go func() {
		start := nowFunc()
		err := m.cache.Put(context.Background(), key, entry)
		if err != nil {
			GetLogger().Error("cache backend error on best-effort reencode put", "error", err)
			m.recordCacheOp("put", "error", nowFunc().Sub(start))
			return
		}
		m.recordCacheOp("put", "success", nowFunc().Sub(start))
	}()
}

func (m *Middleware[K]) callUpstream(r *http.Request) (statusCode int, header http.Header, body []byte) {
	return m.upstream(m.next, r)
}

func (m *Middleware[K]) recordCacheOp(operation, result string, duration time.Duration) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordCacheOperation(operation, metricsBackendName, result, duration)
}

func (m *Middleware[K]) recordRequest(method, cacheStatus string, statusCode int, start time.Time) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordHTTPRequest(method, cacheStatus, statusCode, nowFunc().Sub(start))
}

func requestMatchesCachedResponse(r *http.Request, entry *CachedResponse) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		if etag := entry.ETag(); etag != "" && inm == etag {
			return true
		}
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		if lastModified := entry.LastModified(); lastModified != "" && ims == lastModified {
			return true
		}
	}
	return false
}

func writeNotModified(w http.ResponseWriter, entry *CachedResponse) {
	h := w.Header()
	for name, values := range entry.Header {
		if http.CanonicalHeaderKey(name) == "Content-Encoding" {
			continue
		}
		for _, v := range values {
			h.Add(name, v)
		}
	}
	stripHeaders(h, egressControlHeaders)
	h.Del("Content-Length")
	h.Del("Content-Encoding")
	w.WriteHeader(http.StatusNotModified)
}

func writeBufferedResponse(w http.ResponseWriter, statusCode int, header http.Header, data []byte) {
	h := w.Header()
	for name, values := range header {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	stripHeaders(h, egressControlHeaders)
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}
