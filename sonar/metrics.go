package sonar

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "shallows/sonar"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// pingMetrics records ping activity. Without an installed SDK provider the
// instruments are no-ops.
type pingMetrics struct {
	pings    metric.Int64Counter
	steps    metric.Int64Counter
	duration metric.Float64Histogram
	attrs    metric.MeasurementOption
}

func newPingMetrics(m metric.Meter, k Kind) (*pingMetrics, error) {
	var (
		pm  = &pingMetrics{attrs: metric.WithAttributes(attribute.String("scenario", k.String()))}
		err error
	)
	pm.pings, err = m.Int64Counter(
		"sonar.pings",
		metric.WithDescription("Pings completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ping counter: %w", err)
	}
	pm.steps, err = m.Int64Counter(
		"sonar.steps",
		metric.WithDescription("Field time steps simulated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating step counter: %w", err)
	}
	pm.duration, err = m.Float64Histogram(
		"sonar.ping.duration",
		metric.WithDescription("Wall time of a ping"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return pm, nil
}

func (pm *pingMetrics) record(steps int, elapsed time.Duration) {
	ctx := context.Background()
	pm.pings.Add(ctx, 1, pm.attrs)
	pm.steps.Add(ctx, int64(steps), pm.attrs)
	pm.duration.Record(ctx, elapsed.Seconds(), pm.attrs)
}
