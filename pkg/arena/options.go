package arena

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/lockarena/pkg/xlog"
)

// Option 配置 Driver 的可选项。
type Option func(*driverOptions)

type driverOptions struct {
	logger        xlog.Logger
	meterProvider metric.MeterProvider
}

func defaultOptions() *driverOptions {
	return &driverOptions{
		logger: xlog.Nop(),
	}
}

// WithLogger 设置日志记录器，默认丢弃所有日志。
func WithLogger(logger xlog.Logger) Option {
	return func(o *driverOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider，
// 轮次计数会镜像为 lockarena.rounds.* 计数器。默认不上报。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *driverOptions) {
		if provider != nil {
			o.meterProvider = provider
		}
	}
}
