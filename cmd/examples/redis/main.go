// Command redis demonstrates wrapping an http.Handler with a
// Redis-backed Cache[K], bridging rediscache.Store into
// respcache.Cache[K] via bytestore.Adapt.
package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/sandrolain/respcache"
	"github.com/sandrolain/respcache/bytestore"
	"github.com/sandrolain/respcache/rediscache"
)

func upstream() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=300")
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "hello from upstream at %s\n", time.Now().Format(time.RFC3339Nano))
	})
}

func main() {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		addr = "localhost:6379"
	}

	config := rediscache.DefaultConfig()
	config.Address = addr

	store, err := rediscache.New(config)
	if err != nil {
		log.Fatalf("rediscache.New: %v (is Redis running at %s?)", err, addr)
	}
	defer store.Close()

	cache := bytestore.NewAdapt[*respcache.CommonCacheKey](store)

	mw, err := respcache.New[*respcache.CommonCacheKey](upstream(), cache)
	if err != nil {
		log.Fatalf("respcache.New: %v", err)
	}

	fmt.Println("Example: Redis-backed caching")
	fmt.Println("==============================")

	req1 := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	rec1 := httptest.NewRecorder()
	mw.ServeHTTP(rec1, req1)
	fmt.Printf("First request:  status=%d body=%q\n", rec1.Code, rec1.Body.String())

	req2 := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	rec2 := httptest.NewRecorder()
	mw.ServeHTTP(rec2, req2)
	fmt.Printf("Second request: status=%d body=%q\n", rec2.Code, rec2.Body.String())

	if rec1.Body.String() == rec2.Body.String() {
		fmt.Println("\nBoth responses carry the same timestamp: the second request was served from Redis.")
	}

	fmt.Println("\nInvalidating the cached entry...")
	invalidate := respcache.InvalidateAllHandler[*respcache.CommonCacheKey](cache)
	invReq := httptest.NewRequest(http.MethodPost, "/invalidate", nil)
	invRec := httptest.NewRecorder()
	invalidate.ServeHTTP(invRec, invReq)
	fmt.Printf("Invalidate response: status=%d\n", invRec.Code)

	req3 := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	rec3 := httptest.NewRecorder()
	mw.ServeHTTP(rec3, req3)
	fmt.Printf("Third request:  status=%d body=%q\n", rec3.Code, rec3.Body.String())
	if rec3.Body.String() != rec1.Body.String() {
		fmt.Println("Third response carries a fresh timestamp: the invalidated entry was refetched from upstream.")
	}
}
