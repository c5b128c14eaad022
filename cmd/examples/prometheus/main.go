// Command prometheus demonstrates instrumenting a Middleware with
// Prometheus metrics, both at the cache-operation level
// (prometheus.InstrumentedCache) and the request level
// (respcache.WithMetrics), adapted from the teacher's
// examples/prometheus.
package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sandrolain/respcache"
	prommetrics "github.com/sandrolain/respcache/metrics/prometheus"
)

func upstream() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/error":
			w.WriteHeader(http.StatusInternalServerError)
			return
		case "/slow":
			time.Sleep(50 * time.Millisecond)
		}
		w.Header().Set("Cache-Control", "max-age=300")
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "hello from %s at %s\n", r.URL.Path, time.Now().Format(time.RFC3339Nano))
	})
}

func main() {
	fmt.Println("respcache Prometheus Metrics Example")
	fmt.Println("=====================================")

	collector := prommetrics.NewCollector()

	baseCache := respcache.NewMemoryCache[*respcache.CommonCacheKey]()
	instrumentedCache := prommetrics.NewInstrumentedCache[*respcache.CommonCacheKey](baseCache, "memory", collector)

	mw, err := respcache.New[*respcache.CommonCacheKey](upstream(), instrumentedCache,
		respcache.WithMetrics[*respcache.CommonCacheKey](collector),
	)
	if err != nil {
		log.Fatalf("respcache.New: %v", err)
	}

	fmt.Println("Starting metrics server on http://localhost:9090/metrics")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:         ":9090",
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		if err := server.ListenAndServe(); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	paths := []string{"/greeting", "/slow", "/error", "/greeting"}

	fmt.Println("\nDriving synthetic requests through the middleware...")
	fmt.Println("=====================================================")

	for i, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		start := time.Now()
		mw.ServeHTTP(rec, req)
		duration := time.Since(start)

		fmt.Printf("%d. %-10s status=%d duration=%v body_size=%d\n", i+1, path, rec.Code, duration, rec.Body.Len())
	}

	fmt.Println("\nGenerating additional traffic for metrics...")
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/greeting", nil)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
	}

	fmt.Println("\nMetrics are now available at: http://localhost:9090/metrics")
	fmt.Println("\nExample PromQL queries:")
	fmt.Println("=======================")
	fmt.Println("1. Cache hit rate:")
	fmt.Println("   rate(httpcache_cache_requests_total{result=\"hit\"}[5m]) /")
	fmt.Println("   rate(httpcache_cache_requests_total{operation=\"get\"}[5m]) * 100")
	fmt.Println("2. P95 request duration:")
	fmt.Println("   histogram_quantile(0.95, rate(httpcache_http_request_duration_seconds_bucket[5m]))")
	fmt.Println("3. Requests by cache status:")
	fmt.Println("   sum by (cache_status) (httpcache_http_requests_total)")

	fmt.Println("\nPress Ctrl+C to exit (server will keep running)")
	select {}
}
