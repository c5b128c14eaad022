package respcache

import "net/http"

// InvalidateAllHandler returns a handler that clears cache and
// responds 204 No Content with XX-Cache: false and XX-Encode: false
// (§6 Utility Endpoints), carried over from
// original_source/src/cache/axum/{headers,handlers}.rs.
func InvalidateAllHandler[K CacheKey](cache Cache[K]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := cache.InvalidateAll(r.Context()); err != nil {
			GetLogger().Error("cache backend error on invalidate all", "error", err)
			writeErrorResponse(w, http.StatusInternalServerError)
			return
		}
		w.Header().Set(HeaderCache, "false")
		w.Header().Set(HeaderEncode, "false")
		w.WriteHeader(http.StatusNoContent)
	})
}

// InvalidateHandler returns a handler that removes a single entry
// identified by keyFromRequest and responds 204 No Content.
func InvalidateHandler[K CacheKey](cache Cache[K], keyFromRequest func(*http.Request) K) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyFromRequest(r)
		if err := cache.Invalidate(r.Context(), key); err != nil {
			GetLogger().Error("cache backend error on invalidate", "error", err)
			writeErrorResponse(w, http.StatusInternalServerError)
			return
		}
		w.Header().Set(HeaderCache, "false")
		w.Header().Set(HeaderEncode, "false")
		w.WriteHeader(http.StatusNoContent)
	})
}
