package respcache

import (
	"net/http"
	"strings"
	"time"
)

// Control headers (§4.6, §6), stripped before any response reaches the
// downstream client and interpreted at the documented points of the
// state machine.
const (
	HeaderCache         = "XX-Cache"
	HeaderEncode        = "XX-Encode"
	HeaderCacheDuration = "XX-Cache-Duration"
)

// Headers stripped from a response before it is stored as a cache
// entry (§4.4 new_for, §8 invariants).
var storedControlHeaders = []string{
	HeaderCache,
	HeaderCacheDuration,
	"Content-Encoding",
	"Content-Length",
	"Content-Digest",
	"Accept-Ranges",
}

// egressControlHeaders are stripped from every emitted response,
// cached or not (§6, §8 invariants).
var egressControlHeaders = []string{
	HeaderCache,
	HeaderCacheDuration,
	HeaderEncode,
}

func stripHeaders(h http.Header, names []string) {
	for _, name := range names {
		h.Del(name)
	}
}

// parseBoolHeader reads a "true"/"false" control header value. The
// second return value is false if the header is absent or unparsable;
// the latter is a BadHeaderValue condition the caller should log and
// treat as "no override" (§7).
func parseBoolHeader(h http.Header, name string) (value, ok bool) {
	raw := strings.TrimSpace(h.Get(name))
	switch strings.ToLower(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	case "":
		return false, false
	default:
		GetLogger().Warn("invalid control header value", "header", name, "value", raw)
		return false, false
	}
}

// parseDurationHeader reads XX-Cache-Duration (§4.6: "human-readable
// duration string"). Go's time.ParseDuration accepts the same unit
// suffixes the spec's examples use ("1ms", "10s"), tolerating an
// internal space ("1 ms") as the spec's prose examples show.
func parseDurationHeader(h http.Header, name string) (time.Duration, bool) {
	raw := strings.TrimSpace(h.Get(name))
	if raw == "" {
		return 0, false
	}
	raw = strings.Join(strings.Fields(raw), "")
	d, err := time.ParseDuration(raw)
	if err != nil {
		GetLogger().Warn("invalid control header duration", "header", name, "value", raw, "error", err)
		return 0, false
	}
	return d, true
}
