package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/five82/wreath/internal/memorial"
)

func collect(t *testing.T, reader interface {
	Collect(context.Context, *metricdata.ResourceMetrics) error
}) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestRecordResponse(t *testing.T) {
	mp, reader := NewProvider()
	m, err := New(mp)
	require.NoError(t, err)

	m.RecordResponse(memorial.ResponseInfo{Operation: memorial.OpListFlowers, Success: true, Code: 200, Duration: 20 * time.Millisecond})
	m.RecordResponse(memorial.ResponseInfo{Operation: memorial.OpListFlowers, Success: true, Code: 200, Duration: 10 * time.Millisecond})
	m.RecordResponse(memorial.ResponseInfo{Operation: memorial.OpCreateLeaf, Success: false, Code: 0})

	data := collect(t, reader)

	sum, ok := data["wreath.gateway.requests"].(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("operation"))
		counts[op.AsString()] += dp.Value
	}
	require.Equal(t, int64(2), counts[string(memorial.OpListFlowers)])
	require.Equal(t, int64(1), counts[string(memorial.OpCreateLeaf)])

	hist, ok := data["wreath.gateway.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	require.Equal(t, uint64(3), total)
}

func TestRecordPollOutcomes(t *testing.T) {
	mp, reader := NewProvider()
	m, err := New(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPoll(ctx, nil)
	m.RecordPoll(ctx, errors.New("boom"))
	m.RecordPoll(ctx, context.Canceled)
	m.RecordPoll(ctx, nil)

	sum, ok := collect(t, reader)["wreath.poll.cycles"].(metricdata.Sum[int64])
	require.True(t, ok)
	got := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("outcome"))
		got[v.AsString()] += dp.Value
	}
	require.Equal(t, map[string]int64{"ok": 2, "failed": 1, "cancelled": 1}, got)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordResponse(memorial.ResponseInfo{Operation: memorial.OpListLeaves})
	m.RecordPoll(context.Background(), nil)
}

func TestNewUsesGlobalProvider(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestSummarize(t *testing.T) {
	mp, reader := NewProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := New(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordResponse(memorial.ResponseInfo{Operation: memorial.OpListFlowers, Success: true, Code: 200, Duration: 10 * time.Millisecond})
	m.RecordResponse(memorial.ResponseInfo{Operation: memorial.OpListLeaves, Success: true, Code: 200, Duration: 30 * time.Millisecond})
	m.RecordResponse(memorial.ResponseInfo{Operation: memorial.OpCreateFlower, Success: false, Code: 500, Duration: 20 * time.Millisecond})
	m.RecordPoll(ctx, nil)
	m.RecordPoll(ctx, errors.New("refresh flowers: unreachable"))

	sum, err := Summarize(ctx, reader)
	require.NoError(t, err)
	require.Equal(t, int64(3), sum.Requests)
	require.Equal(t, int64(1), sum.FailedRequests)
	require.Equal(t, int64(2), sum.Polls)
	require.Equal(t, int64(1), sum.FailedPolls)
	require.InDelta(t, float64(20*time.Millisecond), float64(sum.MeanLatency), float64(time.Millisecond))
	require.Equal(t, "requests 3 (1 failed), avg 20ms, polls 2 (1 failed)", sum.String())
}

func TestSummarize_NilReader(t *testing.T) {
	sum, err := Summarize(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, sum)
}
