// Command basic demonstrates wrapping an http.Handler with
// respcache's in-process MemoryCache and the brotli/gzip/deflate/zstd
// codec set, adapted from the teacher's examples/basic.
package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/sandrolain/respcache"
	"github.com/sandrolain/respcache/codec"
)

func upstream() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=300")
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "hello from upstream at %s\n", time.Now().Format(time.RFC3339Nano))
	})
}

func main() {
	codecs, err := codec.NewSet()
	if err != nil {
		log.Fatalf("codec.NewSet: %v", err)
	}

	cache := respcache.NewMemoryCache[*respcache.CommonCacheKey]()

	mw, err := respcache.New[*respcache.CommonCacheKey](upstream(), cache,
		respcache.WithCodecs[*respcache.CommonCacheKey](codecs),
		respcache.WithEncodingConfiguration[*respcache.CommonCacheKey](respcache.DefaultEncodingConfiguration()),
	)
	if err != nil {
		log.Fatalf("respcache.New: %v", err)
	}

	fmt.Println("Example: in-process memory caching")
	fmt.Println("===================================")

	req1 := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	rec1 := httptest.NewRecorder()
	mw.ServeHTTP(rec1, req1)
	fmt.Printf("First request:  status=%d body=%q\n", rec1.Code, firstLine(rec1.Body.String()))

	req2 := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	rec2 := httptest.NewRecorder()
	mw.ServeHTTP(rec2, req2)
	fmt.Printf("Second request: status=%d body=%q\n", rec2.Code, firstLine(rec2.Body.String()))

	fmt.Printf("\nEntries currently stored: %d\n", cache.Len())
	if rec1.Body.String() == rec2.Body.String() {
		fmt.Println("Both responses carry the same timestamp: the second request was served from cache.")
	}
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
