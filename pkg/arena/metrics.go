package arena

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/omeyang/lockarena/pkg/arena"

	metricRoundsTotal  = "lockarena.rounds.total"
	metricRoundsFailed = "lockarena.rounds.failed"
)

// EnableMetrics 把轮次计数镜像到 OpenTelemetry 计数器，
// 并带上 strategy 属性。必须在任何 worker 启动之前调用。
// provider 为 nil 时不做任何事。
func (s *Stats) EnableMetrics(provider metric.MeterProvider, strategy string) error {
	if provider == nil {
		return nil
	}
	meter := provider.Meter(instrumentationName)

	rounds, err := meter.Int64Counter(
		metricRoundsTotal,
		metric.WithDescription("claim rounds attempted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("arena: create rounds counter: %w", err)
	}
	failed, err := meter.Int64Counter(
		metricRoundsFailed,
		metric.WithDescription("claim rounds that failed before acquiring the full lock set"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("arena: create failed counter: %w", err)
	}

	s.otelRounds = rounds
	s.otelFailed = failed
	s.otelOpts = []metric.AddOption{
		metric.WithAttributes(attribute.String("strategy", strategy)),
	}
	return nil
}
