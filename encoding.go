package respcache

import (
	"strings"

	"github.com/munnerz/goautoneg"
)

// Encoding is the closed set of content-encoding algorithms this package
// knows how to store and negotiate. It never grows at runtime.
type Encoding uint8

const (
	Identity Encoding = iota
	Gzip
	Deflate
	Brotli
	Zstd
)

// String renders the Content-Encoding wire value for e; Identity renders
// as "identity", matching the fact that an identity response carries no
// Content-Encoding header at all (callers that set the header must skip
// Identity explicitly).
func (e Encoding) String() string {
	switch e {
	case Gzip:
		return "gzip"
	case Deflate:
		return "deflate"
	case Brotli:
		return "br"
	case Zstd:
		return "zstd"
	default:
		return "identity"
	}
}

// ParseEncoding maps a Content-Encoding wire token to an Encoding. The
// second return value is false for tokens outside the closed set.
func ParseEncoding(s string) (Encoding, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "identity":
		return Identity, true
	case "gzip":
		return Gzip, true
	case "deflate":
		return Deflate, true
	case "br":
		return Brotli, true
	case "zstd":
		return Zstd, true
	default:
		return Identity, false
	}
}

// encodingsByDecodingCost orders the closed encoding set from cheapest
// to most expensive to decode, used as the CachedBody.get fallback
// chain (§4.3 decoding-cost order) and as a deterministic tie-break.
var encodingsByDecodingCost = []Encoding{Identity, Gzip, Deflate, Brotli, Zstd}

// defaultEncodingsByPreference is the server-side preference order used
// when negotiating with a client's Accept-Encoding header: brotli
// first, then gzip (which checksums its payload, unlike raw deflate),
// then deflate, then zstd.
var defaultEncodingsByPreference = []Encoding{Brotli, Gzip, Deflate, Zstd}

// Codec is the external encode/decode contract (§6 Codec contract). The
// core depends on this abstractly; concrete implementations live in
// package codec.
type Codec interface {
	Encode(identity []byte) ([]byte, error)
	Decode(encoded []byte) ([]byte, error)
}

// CodecSet resolves a Codec for a non-identity Encoding.
type CodecSet interface {
	Codec(e Encoding) (Codec, bool)
}

// selectEncoding picks the client's most-preferred entry from
// acceptEncoding intersected with enabled (the server's preference
// order), tie-breaking by enabled's order. An empty or absent enabled
// list always yields Identity (§4.7 select_encoding).
//
// goautoneg.ParseAccept expects media-range clauses ("type/subtype"); an
// Accept-Encoding token carries no subtype, so each clause is suffixed
// with a synthetic "/*" before parsing and stripped back off after.
func selectEncoding(acceptEncoding string, enabled []Encoding) Encoding {
	if len(enabled) == 0 {
		return Identity
	}
	if strings.TrimSpace(acceptEncoding) == "" {
		return Identity
	}

	rank := make(map[string]int, len(enabled)+1)
	rank[Identity.String()] = 0
	for i, e := range enabled {
		rank[e.String()] = i + 1
	}

	clauses := goautoneg.ParseAccept(asMediaRangeHeader(acceptEncoding))

	bestToken := ""
	bestQ := -1.0
	bestRank := len(rank) + 1
	for _, c := range clauses {
		if c.Q <= 0 {
			continue
		}
		if _, known := rank[c.Type]; !known {
			continue
		}
		r := rank[c.Type]
		if c.Q > bestQ || (c.Q == bestQ && r < bestRank) {
			bestToken, bestQ, bestRank = c.Type, c.Q, r
		}
	}
	if bestToken == "" {
		return Identity
	}
	for _, e := range enabled {
		if e.String() == bestToken {
			return e
		}
	}
	return Identity
}

// asMediaRangeHeader turns "gzip;q=0.8, br, identity;q=0.5" into
// "gzip/*;q=0.8, br/*, identity/*;q=0.5" so goautoneg.ParseAccept, which
// assumes Accept-style "type/subtype" clauses, parses each token's Type
// field correctly.
func asMediaRangeHeader(acceptEncoding string) string {
	parts := strings.Split(acceptEncoding, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		semi := strings.IndexByte(p, ';')
		if semi < 0 {
			parts[i] = p + "/*"
			continue
		}
		parts[i] = p[:semi] + "/*" + p[semi:]
	}
	return strings.Join(parts, ",")
}
