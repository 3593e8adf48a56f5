package server

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/pkg/core/logging"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware takes the caller's request ID or assigns one and
// passes it to the service through the request context
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(service.WithRequestID(r.Context(), id)))
	})
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, metrics *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		if metrics != nil {
			metrics.HTTPResponses.WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(wrapper.statusCode)).Inc()
		}
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
			"request_id", service.RequestIDFrom(r.Context()),
		)
	})
}

// routeLabel keeps metric cardinality bounded
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/api/v1/history/") {
		return "/api/v1/history/{id}"
	}
	switch path {
	case "/api/v1/parse", "/api/v1/calculate", "/api/v1/evaluate", "/api/v1/lcd",
		"/api/v1/compare", "/api/v1/decimal", "/api/v1/todecimal", "/api/v1/history",
		"/api/v1/history/stats", "/api/v1/health", "/api/v1/ws", "/api/v1", "/metrics":
		return path
	}
	return "other"
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// corsMiddleware answers preflight requests and sets the CORS headers for
// allowed origins. An empty origin list allows every origin.
func corsMiddleware(cfg CORSConfig, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (len(allowed) == 0 || allowed[origin] || allowed["*"]) {
			if len(allowed) == 0 || allowed["*"] {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language, "+RequestIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware throttles the API with a token bucket shared by all
// clients. Health and metrics endpoints are never throttled.
func rateLimitMiddleware(limiter *rate.Limiter, metrics *Metrics, h *Handler, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" || r.URL.Path == "/api/v1/health" {
			next.ServeHTTP(w, r)
			return
		}
		if !limiter.Allow() {
			if metrics != nil {
				metrics.RateLimitedTotal.Inc()
			}
			w.Header().Set("Retry-After", "1")
			h.writeProblem(w, r, mdwerrors.RateLimited(r.URL.Path))
			return
		}
		next.ServeHTTP(w, r)
	})
}
