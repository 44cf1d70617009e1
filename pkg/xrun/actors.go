package xrun

import (
	"context"
	"os"
	"syscall"
	"time"
)

// DefaultSignals 返回默认监听的系统信号列表（SIGINT、SIGTERM）。
// 每次调用返回新的切片，调用者可安全修改。
func DefaultSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
	}
}

// Timer 返回延迟执行一次任务的任务函数。
//
// delay 不能为负数，否则任务返回 [ErrInvalidDelay]；delay 为 0 表示
// 立即执行。ctx 先被取消则返回 ctx.Err()。
//
//	g.Go(xrun.Timer(cfg.Duration, func(context.Context) error {
//	    return errRunComplete
//	}))
func Timer(delay time.Duration, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if delay < 0 {
			return ErrInvalidDelay
		}
		if fn == nil {
			return ErrNilFunc
		}
		if delay == 0 {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fn(ctx)
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			return fn(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitForDone 返回等待 context 取消的占位任务，
// 用于保持 Group 运行直到收到取消信号。
func WaitForDone() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
}
