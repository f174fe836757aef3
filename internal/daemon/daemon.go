// Package daemon wires the registry and its collaborators into a running
// process: HTTP surface, gRPC health, audit log, metrics and compute backend.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"modelcore/internal/audit"
	"modelcore/internal/config"
	"modelcore/internal/gateway"
	"modelcore/internal/healthgrpc"
	"modelcore/internal/httpapi"
	"modelcore/internal/logging"
	"modelcore/internal/registry"
	"modelcore/internal/telemetry"
	"modelcore/pkg/types"
)

// ShutdownTimeout bounds the graceful HTTP drain.
const ShutdownTimeout = 5 * time.Second

// Daemon owns one registry and everything observing it.
type Daemon struct {
	cfg config.Config
	log zerolog.Logger

	reg     *registry.Registry
	audit   *audit.Log
	metrics *telemetry.Metrics
	prom    *prometheus.Registry
	health  *healthgrpc.Server
	gw      *gateway.Gateway

	ready atomic.Bool
}

// New builds a daemon from cfg. Nothing listens until Serve or Run.
func New(cfg config.Config, log zerolog.Logger) (*Daemon, error) {
	cfg = cfg.WithDefaults()
	policy, err := audit.ParsePolicy(cfg.Audit.Policy)
	if err != nil {
		return nil, err
	}
	d := &Daemon{
		cfg:   cfg,
		log:   log,
		audit: audit.New(cfg.Audit.CapacityBytes, policy),
		prom:  prometheus.NewRegistry(),
	}
	d.reg = registry.NewWithConfig(registry.Config{
		StatArtifacts: cfg.StatArtifacts,
		Logger:        log.With().Str("component", "registry").Logger(),
	})
	d.metrics, err = telemetry.NewMetrics(d.prom, d.reg)
	if err != nil {
		return nil, err
	}
	if err := d.prom.Register(telemetry.NewAuditCollector(d.audit)); err != nil {
		return nil, err
	}
	d.health = healthgrpc.New(log.With().Str("component", "grpc").Logger())
	d.reg.SetPublisher(registry.Publishers(
		audit.NewPublisher(d.audit, log),
		d.metrics,
		d.health,
	))

	compute, err := computeFor(cfg.Compute)
	if err != nil {
		return nil, err
	}
	d.gw = gateway.New(d.reg,
		gateway.WithCompute(compute),
		gateway.WithObserver(d.metrics),
		gateway.WithLogger(log.With().Str("component", "gateway").Logger()),
	)
	return d, nil
}

func computeFor(c config.ComputeConfig) (gateway.Compute, error) {
	switch c.Backend {
	case "", "none":
		return gateway.Unimplemented{}, nil
	case "ollama":
		return gateway.NewOllamaCompute(c.OllamaURL, time.Duration(c.TimeoutSeconds)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown compute backend %q", c.Backend)
	}
}

// Registry exposes the owned registry.
func (d *Daemon) Registry() *registry.Registry { return d.reg }

// Gatherer returns the daemon's metrics joined with the default registry,
// which carries the go/process collectors and HTTP metrics.
func (d *Daemon) Gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{d.prom, prometheus.DefaultGatherer}
}

// Preload scans models_dir and loads the preload list, then marks the
// daemon ready. Individual failures are logged and joined.
func (d *Daemon) Preload() error {
	defer d.ready.Store(true)
	var errs []error
	if d.cfg.ModelsDir != "" {
		recs, err := d.reg.LoadDir(d.cfg.ModelsDir)
		if err != nil {
			errs = append(errs, err)
		}
		d.log.Info().Str("dir", d.cfg.ModelsDir).Int("models", len(recs)).
			Str("bytes", humanize.Bytes(d.reg.TotalBytes())).Msg("models dir scanned")
	}
	errs = append(errs, d.preloadList(d.cfg.Preload)...)
	return errors.Join(errs...)
}

func (d *Daemon) preloadList(names []string) []error {
	var errs []error
	for _, id := range names {
		_, err := d.reg.Load(d.resolvePreload(id))
		if err != nil && !registry.IsAlreadyLoaded(err) {
			d.log.Warn().Err(err).Str("model", id).Msg("preload failed")
			errs = append(errs, err)
		}
	}
	return errs
}

// resolvePreload keeps bare identifiers as-is; relative paths with a
// directory part are resolved against models_dir.
func (d *Daemon) resolvePreload(id string) string {
	if d.cfg.ModelsDir == "" || filepath.IsAbs(id) || filepath.Base(id) == id {
		return id
	}
	return filepath.Join(d.cfg.ModelsDir, id)
}

// ApplyConfig re-applies the reloadable settings: log levels and preload.
func (d *Daemon) ApplyConfig(cfg config.Config) {
	cfg = cfg.WithDefaults()
	if err := logging.ApplyLevel(cfg.Log.Level); err != nil {
		d.log.Warn().Err(err).Msg("ignoring log level")
	}
	if cfg.HTTP.RequestLog != "" {
		httpapi.SetDefaultRequestLogLevel(cfg.HTTP.RequestLog)
	}
	if errs := d.preloadList(cfg.Preload); len(errs) > 0 {
		d.log.Warn().Int("failed", len(errs)).Msg("preload after reload incomplete")
	}
	d.log.Info().Int("preload", len(cfg.Preload)).Msg("config applied")
}

// Snapshot implements httpapi.Service.
func (d *Daemon) Snapshot() registry.Snapshot { return d.reg.Snapshot() }

// AuditLog implements httpapi.Service.
func (d *Daemon) AuditLog() []byte { return d.audit.Bytes() }

// Ready implements httpapi.Service.
func (d *Daemon) Ready() bool { return d.ready.Load() && !d.reg.Closed() }

// Load implements httpapi.Service.
func (d *Daemon) Load(name string, replace bool) (types.ModelSummary, error) {
	var opts []registry.LoadOption
	if replace {
		opts = append(opts, registry.WithReplace())
	}
	rec, err := d.reg.Load(name, opts...)
	if err != nil {
		return types.ModelSummary{}, err
	}
	return rec.Summary(), nil
}

// Unload implements httpapi.Service.
func (d *Daemon) Unload(name string) bool { return d.reg.Unload(name) }

// Infer implements httpapi.Service.
func (d *Daemon) Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error) {
	out, err := d.gw.Infer(ctx, req.Model, req.Prompt)
	if err != nil {
		return types.InferResponse{}, err
	}
	return types.InferResponse{Model: out.Model, Output: out.Text, InferenceCount: out.InferenceCount}, nil
}

// Handler builds the HTTP surface and applies the http config section.
// compute.timeout_seconds also bounds each /infer request.
func (d *Daemon) Handler() http.Handler {
	httpapi.SetLogger(d.log.With().Str("component", "http").Logger())
	httpapi.SetMaxBodyBytes(d.cfg.HTTP.MaxBodyBytes)
	httpapi.SetInferTimeoutSeconds(int64(d.cfg.Compute.TimeoutSeconds))
	if d.cfg.HTTP.RequestLog != "" {
		httpapi.SetDefaultRequestLogLevel(d.cfg.HTTP.RequestLog)
	}
	c := d.cfg.HTTP.CORS
	httpapi.SetCORSOptions(c.Enabled, c.AllowedOrigins, c.AllowedMethods, c.AllowedHeaders)
	return httpapi.NewMux(d, httpapi.WithGatherer(d.Gatherer()))
}

// Run listens on the configured addresses and serves until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", d.cfg.Addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	grpcLis, err := net.Listen("tcp", d.cfg.GRPCAddr)
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("grpc listen: %w", err)
	}
	return d.Serve(ctx, httpLis, grpcLis)
}

// Serve runs both servers on the given listeners. When ctx is done it drains
// HTTP, stops gRPC and closes the registry. grpcLis may be nil.
func (d *Daemon) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	httpapi.SetBaseContext(ctx)
	srv := &http.Server{
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		d.log.Info().Str("addr", httpLis.Addr().String()).Msg("http listening")
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http serve: %w", err)
		}
	}()
	if grpcLis != nil {
		go func() {
			if err := d.health.Serve(grpcLis); err != nil {
				errc <- fmt.Errorf("grpc serve: %w", err)
			}
		}()
	}

	if err := d.Preload(); err != nil {
		d.log.Warn().Err(err).Msg("preload incomplete")
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		d.log.Warn().Err(err).Msg("graceful shutdown error")
	}
	d.health.Stop()
	_ = d.reg.Close()
	d.log.Info().Msg("daemon stopped")
	return runErr
}
