// Package telemetry records OpenTelemetry metrics for gateway calls and poll
// cycles.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/five82/wreath/internal/memorial"
)

const (
	meterName = "github.com/five82/wreath"

	requestsMetric = "wreath.gateway.requests"
	durationMetric = "wreath.gateway.duration"
	pollsMetric    = "wreath.poll.cycles"
)

// NewProvider returns a meter provider backed by a manual reader. wreath has
// no exporter; Summarize collects from the reader for the activity overlay
// and the headless stats command.
func NewProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

// Metrics holds the instruments wreath records.
type Metrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	polls    metric.Int64Counter
}

// New creates instruments from mp, or from the global provider when mp is nil.
func New(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(meterName)

	requests, err := m.Int64Counter(requestsMetric,
		metric.WithDescription("Gateway calls by operation and outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := m.Float64Histogram(durationMetric,
		metric.WithDescription("Gateway call latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	polls, err := m.Int64Counter(pollsMetric,
		metric.WithDescription("Poll cycles by outcome"))
	if err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, duration: duration, polls: polls}, nil
}

// RecordResponse is a memorial.Client OnResponse hook.
func (m *Metrics) RecordResponse(info memorial.ResponseInfo) {
	if m == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("operation", string(info.Operation)),
		attribute.Bool("success", info.Success),
		attribute.Int("code", info.Code),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, info.Duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", string(info.Operation)),
	))
}

// RecordPoll counts one poll cycle.
func (m *Metrics) RecordPoll(ctx context.Context, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, context.Canceled):
		outcome = "cancelled"
	case err != nil:
		outcome = "failed"
	}
	m.polls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Summary is a point-in-time rollup of the recorded instruments.
type Summary struct {
	Requests       int64
	FailedRequests int64
	MeanLatency    time.Duration
	Polls          int64
	FailedPolls    int64
}

func (s Summary) String() string {
	return fmt.Sprintf("requests %d (%d failed), avg %s, polls %d (%d failed)",
		s.Requests, s.FailedRequests, s.MeanLatency.Round(time.Millisecond), s.Polls, s.FailedPolls)
}

// Summarize collects from reader and rolls the wreath instruments up into a
// Summary.
func Summarize(ctx context.Context, reader *sdkmetric.ManualReader) (Summary, error) {
	var out Summary
	if reader == nil {
		return out, nil
	}
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return out, fmt.Errorf("collect metrics: %w", err)
	}

	var latencySum float64
	var latencyCount uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					switch m.Name {
					case requestsMetric:
						out.Requests += dp.Value
						if v, ok := dp.Attributes.Value("success"); ok && !v.AsBool() {
							out.FailedRequests += dp.Value
						}
					case pollsMetric:
						out.Polls += dp.Value
						if v, ok := dp.Attributes.Value("outcome"); ok && v.AsString() == "failed" {
							out.FailedPolls += dp.Value
						}
					}
				}
			case metricdata.Histogram[float64]:
				if m.Name != durationMetric {
					continue
				}
				for _, dp := range data.DataPoints {
					latencySum += dp.Sum
					latencyCount += dp.Count
				}
			}
		}
	}
	if latencyCount > 0 {
		out.MeanLatency = time.Duration(latencySum / float64(latencyCount) * float64(time.Second))
	}
	return out, nil
}
