package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const (
	PORT = 2425
)

func TimeoutMiddleware(timeout time.Duration) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.TimeoutHandler(h, timeout, "server timed out")
	}
}

// RateLimitingMiddleware admits at most maxConcurrentRequests handlers at a
// time. Requests waiting for a slot give up when their context is done.
func RateLimitingMiddleware(maxConcurrentRequests int) mux.MiddlewareFunc {
	bucket := make(chan struct{}, maxConcurrentRequests)
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case bucket <- struct{}{}:
				defer func() { <-bucket }()
				h.ServeHTTP(w, r)
			case <-r.Context().Done():
				http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			}
		})
	}
}
