package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"modelcore/internal/registry"
)

// Resolver resolves a model and records a dispatch against it atomically.
type Resolver interface {
	RecordInference(name string) (registry.Record, error)
}

// Observer is notified once per Infer call with its outcome.
type Observer interface {
	ObserveInference(model, outcome string, dur time.Duration)
}

// Outcome labels passed to Observer.
const (
	OutcomeOK             = "ok"
	OutcomeNotFound       = "not_found"
	OutcomeInvalid        = "invalid"
	OutcomeNotImplemented = "not_implemented"
	OutcomeError          = "error"
)

// Output is the result of a successful inference.
type Output struct {
	Model          string
	Text           string
	InferenceCount uint64
	DispatchedAt   time.Time
}

// Gateway routes inference requests to the registry's models.
//
// Usage accounting contract: once a model resolves, its inference count and
// last inference time are updated before the compute step runs, whatever the
// compute step returns. The counter therefore measures dispatch attempts. A
// request for a missing model leaves every counter untouched.
type Gateway struct {
	reg      Resolver
	compute  Compute
	observer Observer
	log      zerolog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithCompute sets the compute step. The default is Unimplemented.
func WithCompute(c Compute) Option { return func(g *Gateway) { g.compute = c } }

// WithObserver installs an outcome observer.
func WithObserver(o Observer) Option { return func(g *Gateway) { g.observer = o } }

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option { return func(g *Gateway) { g.log = l } }

// New builds a Gateway over reg.
func New(reg Resolver, opts ...Option) *Gateway {
	g := &Gateway{reg: reg, compute: Unimplemented{}, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.compute == nil {
		g.compute = Unimplemented{}
	}
	return g
}

// Infer dispatches input to the named model.
func (g *Gateway) Infer(ctx context.Context, name, input string) (Output, error) {
	start := time.Now()
	if err := registry.ValidateName(name); err != nil {
		g.observe(name, OutcomeInvalid, start)
		return Output{}, err
	}
	rec, err := g.reg.RecordInference(name)
	if err != nil {
		g.observe(name, outcomeFor(err), start)
		return Output{}, err
	}
	text, err := g.compute.Compute(ctx, rec, input)
	if err != nil {
		g.observe(name, outcomeFor(err), start)
		g.log.Debug().Str("model", name).Uint64("inference_count", rec.InferenceCount).Err(err).Msg("infer failed")
		return Output{}, fmt.Errorf("infer %s: %w", name, err)
	}
	g.observe(name, OutcomeOK, start)
	g.log.Debug().Str("model", name).Uint64("inference_count", rec.InferenceCount).Dur("dur", time.Since(start)).Msg("infer done")
	return Output{Model: name, Text: text, InferenceCount: rec.InferenceCount, DispatchedAt: rec.LastInference}, nil
}

func (g *Gateway) observe(model, outcome string, start time.Time) {
	if g.observer != nil {
		g.observer.ObserveInference(model, outcome, time.Since(start))
	}
}

func outcomeFor(err error) string {
	switch {
	case registry.IsNotFound(err):
		return OutcomeNotFound
	case registry.IsInvalidIdentifier(err):
		return OutcomeInvalid
	case IsNotImplemented(err):
		return OutcomeNotImplemented
	default:
		return OutcomeError
	}
}
