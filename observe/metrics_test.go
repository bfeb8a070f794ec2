package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere adds the data points of an int64 counter whose attributes include key=value.
func sumWhere(t *testing.T, rm metricdata.ResourceMetrics, name, key, value string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return 0
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, found.Data)
	}

	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

// TestMetrics_CallsByOutcome verifies hits and misses are counted separately.
func TestMetrics_CallsByOutcome(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := FuncMeta{Namespace: "svc", Name: "lookup"}
	ctx := context.Background()

	m.RecordCall(ctx, meta, false)
	m.RecordCall(ctx, meta, true)
	m.RecordCall(ctx, meta, true)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, MetricCalls, "memo.outcome", "hit"); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
	if got := sumWhere(t, rm, MetricCalls, "memo.outcome", "miss"); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := sumWhere(t, rm, MetricCalls, "memo.id", "svc.lookup"); got != 3 {
		t.Errorf("calls for svc.lookup = %d, want 3", got)
	}
}

// TestMetrics_ComputeCounters verifies totals, errors and the duration histogram.
func TestMetrics_ComputeCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := FuncMeta{Name: "lookup"}
	ctx := context.Background()

	m.RecordCompute(ctx, meta, 20*time.Millisecond, nil)
	m.RecordCompute(ctx, meta, 40*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	if got := sumWhere(t, rm, MetricComputeTotal, "", ""); got != 2 {
		t.Errorf("compute total = %d, want 2", got)
	}
	if got := sumWhere(t, rm, MetricComputeErrors, "", ""); got != 1 {
		t.Errorf("compute errors = %d, want 1", got)
	}

	found := findMetric(rm, MetricComputeDuration)
	if found == nil {
		t.Fatalf("%s not found", MetricComputeDuration)
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("expected 1 histogram data point, got %d", len(hist.DataPoints))
	}
	dp := hist.DataPoints[0]
	if dp.Count != 2 {
		t.Errorf("histogram count = %d, want 2", dp.Count)
	}
	if dp.Sum != 60 {
		t.Errorf("histogram sum = %v, want 60", dp.Sum)
	}
}

// TestMetrics_RemovalsByReason verifies removals carry their reason.
func TestMetrics_RemovalsByReason(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := FuncMeta{Name: "lookup"}
	ctx := context.Background()

	m.RecordRemoval(ctx, meta, "evicted", 1)
	m.RecordRemoval(ctx, meta, "cleared", 5)
	m.RecordRemoval(ctx, meta, "cleared", 0)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, MetricRemovals, "memo.reason", "evicted"); got != 1 {
		t.Errorf("evicted = %d, want 1", got)
	}
	if got := sumWhere(t, rm, MetricRemovals, "memo.reason", "cleared"); got != 5 {
		t.Errorf("cleared = %d, want 5", got)
	}
}
