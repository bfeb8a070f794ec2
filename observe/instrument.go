package observe

import (
	"context"
	"time"
)

// Instrumentation reports memoizer activity through tracing, metrics and logging.
// It satisfies the hook interface the cache package calls into.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Context: the context returned by ComputeStarted carries the computation span.
//   - Errors: computation errors are recorded, never altered.
type Instrumentation struct {
	namespace string
	version   string
	tracer    Tracer
	metrics   Metrics
	logger    Logger
}

// InstrumentationOption configures an Instrumentation.
type InstrumentationOption func(*Instrumentation)

// WithNamespace sets the namespace attached to every memoizer name.
func WithNamespace(ns string) InstrumentationOption {
	return func(i *Instrumentation) {
		i.namespace = ns
	}
}

// WithVersion sets the version attribute recorded on spans.
func WithVersion(v string) InstrumentationOption {
	return func(i *Instrumentation) {
		i.version = v
	}
}

// NewInstrumentation creates an Instrumentation. Nil components are replaced by no-ops.
func NewInstrumentation(tracer Tracer, metrics Metrics, logger Logger, opts ...InstrumentationOption) *Instrumentation {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}

	i := &Instrumentation{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InstrumentationFromObserver creates an Instrumentation from an Observer.
func InstrumentationFromObserver(obs Observer, opts ...InstrumentationOption) (*Instrumentation, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewInstrumentation(NewTracer(obs.Tracer()), metrics, obs.Logger(), opts...), nil
}

func (i *Instrumentation) meta(name string) FuncMeta {
	return FuncMeta{Namespace: i.namespace, Name: name, Version: i.version}
}

// CallObserved records a lookup against the memoizer called name.
func (i *Instrumentation) CallObserved(ctx context.Context, name string, hit bool) {
	i.metrics.RecordCall(ctx, i.meta(name), hit)
}

// ComputeStarted opens a span for one execution of the underlying function.
// The returned func must be called exactly once with the execution's error.
func (i *Instrumentation) ComputeStarted(ctx context.Context, name string) (context.Context, func(error)) {
	meta := i.meta(name)
	ctx, span := i.tracer.StartSpan(ctx, meta)
	start := time.Now()

	return ctx, func(err error) {
		duration := time.Since(start)
		i.tracer.EndSpan(span, err)
		i.metrics.RecordCompute(ctx, meta, duration, err)

		fields := []Field{
			{Key: "memo.id", Value: meta.ID()},
			{Key: "duration_ms", Value: float64(duration) / float64(time.Millisecond)},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err})
			i.logger.Error(ctx, "memoized computation failed", fields...)
			return
		}
		i.logger.Debug(ctx, "memoized computation completed", fields...)
	}
}

// EntriesRemoved records n entries leaving the memoizer called name.
func (i *Instrumentation) EntriesRemoved(ctx context.Context, name, reason string, n int) {
	i.metrics.RecordRemoval(ctx, i.meta(name), reason, n)
}
