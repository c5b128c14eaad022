package respcache

import (
	"bytes"
	"net/http"
)

// responseRecorder captures an upstream http.Handler's status, headers
// and body so the state machine can classify the response before any
// bytes reach the real client, the same pattern
// caddyserver/caddy's httpcache module uses via
// caddyhttp.NewResponseRecorder around its inner handler call.
//
// Unlike a true streaming proxy, the body is buffered in full before
// classification runs; this mirrors the teacher's own buffering of
// response bodies for caching (setupCachingBody) rather than a
// byte-for-byte passthrough.
type responseRecorder struct {
	header     http.Header
	statusCode int
	wroteHeader bool
	body       bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), statusCode: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.statusCode = statusCode
	r.wroteHeader = true
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}

// recordUpstream invokes next for req and returns the captured status,
// headers and full body bytes.
func recordUpstream(next http.Handler, req *http.Request) (statusCode int, header http.Header, body []byte) {
	rec := newResponseRecorder()
	next.ServeHTTP(rec, req)
	return rec.statusCode, rec.header, rec.body.Bytes()
}
