package respcache

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// CacheKey identifies a cacheable request variant. Implementations must
// be comparable (usable as a map key via String), displayable, and
// independent of the request body.
type CacheKey interface {
	fmt.Stringer
	CacheWeight
}

// CommonCacheKey is the default CacheKey: method, path, decoded+sorted
// query, plus scheme, host and port (filled only when the request URL
// is absolute) and reserved slots for content negotiation the default
// extraction leaves empty (media type, languages, extensions). Headers
// are intentionally ignored here; a cache_key hook is the place to fold
// header-derived variance back in.
type CommonCacheKey struct {
	Method     string
	Scheme     string
	Host       string
	Port       string
	Path       string
	Query      map[string][]string
	MediaType  string
	Languages  []string
	Extensions map[string]string
}

// CacheKeyForRequest extracts the default CommonCacheKey from method,
// URI and headers (§4.2 for_request). Headers are accepted for
// signature symmetry with the cache_key hook but are not consulted.
func CacheKeyForRequest(method string, u *url.URL, _ http.Header) *CommonCacheKey {
	k := &CommonCacheKey{
		Method: strings.ToUpper(method),
		Path:   u.Path,
	}
	if u.Scheme != "" {
		k.Scheme = u.Scheme
	}
	if u.Host != "" {
		k.Host = u.Hostname()
		k.Port = u.Port()
	}
	if raw := u.RawQuery; raw != "" {
		if values, err := url.ParseQuery(raw); err == nil {
			k.Query = values
		}
	}
	return k
}

// String renders k as a canonical pipe-delimited string, stable across
// equal keys regardless of original header or query order.
func (k *CommonCacheKey) String() string {
	var b strings.Builder
	b.WriteString(k.Method)
	b.WriteByte('|')
	b.WriteString(k.Scheme)
	b.WriteByte('|')
	b.WriteString(k.Host)
	b.WriteByte('|')
	b.WriteString(k.Port)
	b.WriteByte('|')
	b.WriteString(k.Path)
	b.WriteByte('|')
	b.WriteString(k.sortedQuery())
	b.WriteByte('|')
	b.WriteString(k.MediaType)
	b.WriteByte('|')
	b.WriteString(strings.Join(k.Languages, ","))
	b.WriteByte('|')
	b.WriteString(k.sortedExtensions())
	return b.String()
}

func (k *CommonCacheKey) sortedQuery() string {
	if len(k.Query) == 0 {
		return ""
	}
	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		values := append([]string(nil), k.Query[name]...)
		sort.Strings(values)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
	}
	return b.String()
}

func (k *CommonCacheKey) sortedExtensions() string {
	if len(k.Extensions) == 0 {
		return ""
	}
	names := make([]string, 0, len(k.Extensions))
	for name := range k.Extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(k.Extensions[name])
	}
	return b.String()
}

// Weight estimates k's byte footprint for capacity accounting (§4.5).
func (k *CommonCacheKey) Weight() uint32 {
	var sum uint64
	sum += uint64(len(k.Method) + len(k.Scheme) + len(k.Host) + len(k.Port) + len(k.Path) + len(k.MediaType))
	for _, lang := range k.Languages {
		sum += uint64(len(lang))
	}
	for name, values := range k.Query {
		sum += uint64(len(name))
		for _, v := range values {
			sum += uint64(len(v))
		}
	}
	for name, value := range k.Extensions {
		sum += uint64(len(name) + len(value))
	}
	return addSaturating(sum, entryOverhead)
}
