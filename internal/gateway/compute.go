package gateway

import (
	"context"

	"modelcore/internal/registry"
)

// Compute performs the actual inference for a resolved model.
// Implementations must return when ctx is canceled.
type Compute interface {
	Compute(ctx context.Context, model registry.Record, input string) (string, error)
}

// ComputeFunc adapts a function to Compute.
type ComputeFunc func(ctx context.Context, model registry.Record, input string) (string, error)

func (f ComputeFunc) Compute(ctx context.Context, model registry.Record, input string) (string, error) {
	return f(ctx, model, input)
}

// Unimplemented is the reference compute step: every request is accepted
// and then refused with ErrNotImplemented.
type Unimplemented struct{}

func (Unimplemented) Compute(context.Context, registry.Record, string) (string, error) {
	return "", ErrNotImplemented
}
