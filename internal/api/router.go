package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RouterOption configures the behaviour of NewRouter.
type RouterOption func(*routerConfig)

// WithLogging controls whether access logs are emitted.
func WithLogging(enabled bool) RouterOption {
	return func(cfg *routerConfig) {
		cfg.enableLogging = enabled
	}
}

// WithRateLimit sets the planning budget; rps 0 disables it.
func WithRateLimit(rps float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		if rps <= 0 {
			cfg.rateLimiter = nil
			return
		}
		cfg.rateLimiter = newPlanBudget(rps, burst)
		cfg.retryAfter = retryAfter(rps)
	}
}

// WithRateLimiter overrides the planning budget (primarily for tests).
func WithRateLimiter(limiter rateLimiter) RouterOption {
	return func(cfg *routerConfig) {
		cfg.rateLimiter = limiter
	}
}

type routerConfig struct {
	enableLogging bool
	logger        *zap.Logger
	rateLimiter   rateLimiter
	retryAfter    time.Duration
}

// route is one endpoint. Metered routes run the engine or parse uploads and
// draw from the planning budget; reads are never metered.
type route struct {
	pattern string
	handle  http.HandlerFunc
	metered bool
}

func (h *Handler) routes() []route {
	return []route{
		{"GET /api/health", h.handleHealth, false},
		{"GET /api/containers", h.handleContainers, false},
		{"POST /api/load", h.handleLoad, true},
		{"POST /api/compare", h.handleCompare, true},
		{"POST /api/report", h.handleReport, true},
		{"POST /api/import", h.handleImport, true},
		{"GET /api/reports/{run}", h.handleListReports, false},
		{"GET /api/reports/{run}/{name}", h.handleGetReport, false},
		{"GET /api/session/{id}", h.handleGetSession, false},
		{"PUT /api/session/{id}", h.handlePutSession, false},
		{"DELETE /api/session/{id}", h.handleDeleteSession, false},
	}
}

// NewRouter registers the API routes. Every request gets a request id, an
// access log line carrying the run id of planning calls, panic recovery and
// CORS headers.
func NewRouter(handler *Handler, logger *zap.Logger, opts ...RouterOption) http.Handler {
	cfg := routerConfig{
		enableLogging: true,
		logger:        logger,
		rateLimiter:   newPlanBudget(10, 20),
		retryAfter:    retryAfter(10),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()
	for _, rt := range handler.routes() {
		var h http.Handler = rt.handle
		if rt.metered && cfg.rateLimiter != nil {
			h = metered(cfg.rateLimiter, cfg.retryAfter, h)
		}
		mux.Handle(rt.pattern, h)
	}

	// Outermost first.
	chain := []func(http.Handler) http.Handler{requestIDMiddleware}
	if cfg.enableLogging {
		chain = append(chain, func(next http.Handler) http.Handler { return accessLog(cfg.logger, next) })
	}
	chain = append(chain,
		func(next http.Handler) http.Handler { return recoveryMiddleware(cfg.logger, next) },
		corsMiddleware,
	)

	var root http.Handler = mux
	for i := len(chain) - 1; i >= 0; i-- {
		root = chain[i](root)
	}
	return root
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Requested-With")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID,X-Run-ID,Retry-After,Content-Disposition")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// accessLog writes one line per request. Planning handlers report their run
// id in the X-Run-ID header, which links the line to the planner's summary.
func accessLog(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestIDFromContext(r.Context())),
		}
		if runID := rec.Header().Get(runIDHeader); runID != "" {
			fields = append(fields, zap.String("run_id", runID))
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case rec.status == http.StatusTooManyRequests:
			logger.Warn("request throttled", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	})
}

func recoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("request_id", requestIDFromContext(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "Internal error", "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := contextWithRequestID(r.Context(), requestID)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
