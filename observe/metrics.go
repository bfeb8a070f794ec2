package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricCalls           = "memo.calls"
	MetricComputeTotal    = "memo.compute.total"
	MetricComputeErrors   = "memo.compute.errors"
	MetricComputeDuration = "memo.compute.duration_ms"
	MetricRemovals        = "memo.removals"
)

// Metrics records cache and computation metrics for memoized functions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one lookup, labelled hit or miss.
	RecordCall(ctx context.Context, meta FuncMeta, hit bool)

	// RecordCompute records one execution of the underlying function.
	RecordCompute(ctx context.Context, meta FuncMeta, duration time.Duration, err error)

	// RecordRemoval records n entries removed for the given reason.
	RecordRemoval(ctx context.Context, meta FuncMeta, reason string, n int)
}

type metricsImpl struct {
	calls        metric.Int64Counter
	computeCount metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	removals     metric.Int64Counter
}

// NewMetrics creates Metrics backed by instruments from the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	calls, err := meter.Int64Counter(MetricCalls,
		metric.WithDescription("Memoized calls by outcome (hit or miss)"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	computeCount, err := meter.Int64Counter(MetricComputeTotal,
		metric.WithDescription("Executions of the underlying function"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(MetricComputeErrors,
		metric.WithDescription("Executions of the underlying function that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(MetricComputeDuration,
		metric.WithDescription("Underlying function duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	removals, err := meter.Int64Counter(MetricRemovals,
		metric.WithDescription("Cache entries removed by reason"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		calls:        calls,
		computeCount: computeCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		removals:     removals,
	}, nil
}

func (m *metricsImpl) RecordCall(ctx context.Context, meta FuncMeta, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	attrs := append(meta.attributes(), attribute.String("memo.outcome", outcome))
	m.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordCompute(ctx context.Context, meta FuncMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.computeCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *metricsImpl) RecordRemoval(ctx context.Context, meta FuncMeta, reason string, n int) {
	if n <= 0 {
		return
	}
	attrs := append(meta.attributes(), attribute.String("memo.reason", reason))
	m.removals.Add(ctx, int64(n), metric.WithAttributes(attrs...))
}

type noopMetrics struct{}

func (noopMetrics) RecordCall(context.Context, FuncMeta, bool)                    {}
func (noopMetrics) RecordCompute(context.Context, FuncMeta, time.Duration, error) {}
func (noopMetrics) RecordRemoval(context.Context, FuncMeta, string, int)          {}

var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = noopMetrics{}
)
