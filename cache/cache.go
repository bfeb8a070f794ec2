package cache

import (
	"context"
	"errors"
)

// Sentinel errors for memoizer construction and use.
var (
	ErrNilFunc          = errors.New("cache: function is nil")
	ErrNilClock         = errors.New("cache: clock is nil")
	ErrInvalidConfig    = errors.New("cache: invalid config")
	ErrUnsupportedArg   = errors.New("cache: argument is not a scalar")
	ErrComputationPanic = errors.New("cache: computation panicked")
)

// Removal reasons reported to Hooks.
const (
	ReasonExpired   = "expired"
	ReasonEvicted   = "evicted"
	ReasonForgotten = "forgotten"
	ReasonCleared   = "cleared"
)

// Hooks receives memoizer activity, typically for telemetry.
// observe.Instrumentation is the standard implementation.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Hooks are never called while the memoizer's lock is held.
// - The func returned by ComputeStarted is called exactly once.
type Hooks interface {
	// CallObserved reports one Call, hit or miss.
	CallObserved(ctx context.Context, name string, hit bool)

	// ComputeStarted reports the start of one execution of the wrapped
	// function and returns the context to run it with.
	ComputeStarted(ctx context.Context, name string) (context.Context, func(err error))

	// EntriesRemoved reports n entries leaving the cache for reason.
	EntriesRemoved(ctx context.Context, name, reason string, n int)
}

type nopHooks struct{}

func (nopHooks) CallObserved(context.Context, string, bool) {}

func (nopHooks) ComputeStarted(ctx context.Context, _ string) (context.Context, func(error)) {
	return ctx, func(error) {}
}

func (nopHooks) EntriesRemoved(context.Context, string, string, int) {}
