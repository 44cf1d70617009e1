package xrun

import (
	"os"

	"github.com/omeyang/lockarena/pkg/xlog"
)

// Option 配置 Group 的选项函数。
type Option func(*groupOptions)

type groupOptions struct {
	logger  xlog.Logger
	name    string
	signals []os.Signal
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		logger: xlog.Nop(),
		name:   "xrun",
	}
}

// WithLogger 设置日志记录器，用于记录任务启动、退出等生命周期事件。
// 默认丢弃。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 Group 名称，用于日志中区分不同的 Group。默认 "xrun"。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 让 Group 自带信号监听任务：收到列表中的信号时，
// 以 [SignalError] 为原因取消整个 Group。空列表表示不监听（默认）。
func WithSignals(signals []os.Signal) Option {
	// 创建时拷贝，调用方后续修改切片不会造成配置漂移。
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}
