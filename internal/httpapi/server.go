package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelcore/internal/registry"
	"modelcore/internal/views"
	"modelcore/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Snapshot() registry.Snapshot
	AuditLog() []byte
	Load(name string, replace bool) (types.ModelSummary, error)
	Unload(name string) bool
	Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error)
	Ready() bool
}

type muxOptions struct {
	gatherer prometheus.Gatherer
}

// Option customizes NewMux.
type Option func(*muxOptions)

// WithGatherer serves /metrics from g instead of the default gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *muxOptions) { o.gatherer = g }
}

func NewMux(svc Service, opts ...Option) http.Handler {
	o := muxOptions{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if c := corsMiddleware(); c != nil {
		r.Use(c)
	}
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// Read-only introspection files. These never fail.
	rep := views.NewReporter(svc)
	r.Route("/proc/ai", func(r chi.Router) {
		r.Get("/model", textHandler(rep.Summary))
		r.Get("/models", textHandler(rep.Listing))
		r.Get("/memory", textHandler(rep.Aggregate))
		r.Get("/audit.log", textHandler(func() string { return string(svc.AuditLog()) }))
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		s := svc.Snapshot()
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: s.Models, TotalBytes: s.TotalBytes})
	})

	r.Post("/models", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoadRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		m, err := svc.Load(req.Name, req.Replace)
		if err != nil {
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			logOp(r, lvl, "load", req.Name, status, start, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
		logOp(r, lvl, "load", req.Name, http.StatusCreated, start, nil)
	})

	// Names may contain '/', so match the rest of the path.
	r.Delete("/models/*", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "*")
		start := time.Now()
		lvl := requestLogLevel(r)
		if !svc.Unload(name) {
			writeJSONError(w, http.StatusNotFound, "model not loaded: "+name)
			logOp(r, lvl, "unload", name, http.StatusNotFound, start, registry.ErrNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		logOp(r, lvl, "unload", name, http.StatusNoContent, start, nil)
	})

	r.Post("/infer", func(w http.ResponseWriter, r *http.Request) {
		var req types.InferRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if inferTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(inferTimeout)*time.Second)
			defer tcancel()
		}
		resp, err := svc.Infer(ctx, req)
		if err != nil {
			// Client went away; nobody is listening for the response.
			if cerr := r.Context().Err(); cerr != nil {
				logOp(r, lvl, "infer", req.Model, statusClientClosed, start, cerr)
				return
			}
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			logOp(r, lvl, "infer", req.Model, status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		logOp(r, lvl, "infer", req.Model, http.StatusOK, start, nil)
		if lvl >= LevelDebug {
			zlog.Debug().Str("model", req.Model).Str("output", resp.Output).Msg("infer output")
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	r.Get("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	return r
}

func textHandler(render func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(render()))
	}
}

// decodeJSON enforces the JSON content type and body limit, writing the
// error response itself when it returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies also land here; report 400 without leaking the limit.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
