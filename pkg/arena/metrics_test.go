package arena

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// counterSum extracts the total of an int64 sum metric by name,
// returning ok=false when the metric was never exported.
func counterSum(rm metricdata.ResourceMetrics, name string) (total int64, ok bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, isSum := m.Data.(metricdata.Sum[int64])
			if !isSum {
				continue
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			ok = true
		}
	}
	return total, ok
}

func TestStatsMirrorsToMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	s := NewStats()
	require.NoError(t, s.EnableMetrics(provider, "Matrix"))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Round(ctx)
	}
	s.Fail(ctx)
	s.Fail(ctx)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	rounds, ok := counterSum(rm, metricRoundsTotal)
	require.True(t, ok)
	assert.Equal(t, int64(5), rounds)

	failed, ok := counterSum(rm, metricRoundsFailed)
	require.True(t, ok)
	assert.Equal(t, int64(2), failed)
}

func TestStatsNilProviderIsNoop(t *testing.T) {
	s := NewStats()
	require.NoError(t, s.EnableMetrics(nil, "Matrix"))

	s.Round(context.Background())
	assert.Equal(t, uint64(1), s.Rounds())
}

func TestDriverRunExportsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	cfg := validConfig(KindTimed)
	cfg.Duration = 50 * time.Millisecond
	drv, err := NewDriver(cfg, WithMeterProvider(provider))
	require.NoError(t, err)

	report, err := drv.Run(context.Background())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	rounds, ok := counterSum(rm, metricRoundsTotal)
	require.True(t, ok)
	// The report snapshot is taken at the stop signal; the mirror keeps
	// counting until the last worker exits.
	assert.GreaterOrEqual(t, uint64(rounds), report.Rounds)
}
