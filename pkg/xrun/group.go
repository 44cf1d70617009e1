package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"
)

// Group 基于 errgroup + context 管理一组任务的并发运行和协调关闭。
//
// 任一任务返回错误、Cancel 被调用或父 context 被取消时，
// 所有任务都会通过派生 context 收到取消信号。
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group 并返回派生的 context。
// 配置了 [WithSignals] 时自动注册信号监听任务。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	// nil context 归一化，防止 context.WithCancelCause(nil) panic。
	if ctx == nil {
		ctx = context.Background()
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(options)
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)

	g := &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}

	if len(options.signals) > 0 {
		// 注册必须在 NewGroup 返回前同步完成：若推迟到任务 goroutine 里，
		// 先于注册到达的信号会被丢弃。
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, options.signals...)
		g.Go(func(ctx context.Context) error {
			return g.signalService(ctx, sigCh)
		})
	}

	return g, egCtx
}

// Go 启动一个任务。fn 应监听 ctx.Done() 以响应取消。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，但会在日志中记录任务名。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		g.opts.logger.Debug(g.ctx, "task starting",
			slog.String("group", g.opts.name),
			slog.String("task", name),
		)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "task exited with error",
				slog.String("group", g.opts.name),
				slog.String("task", name),
				slog.Any("error", err),
			)
		} else {
			g.opts.logger.Debug(g.ctx, "task stopped",
				slog.String("group", g.opts.name),
				slog.String("task", name),
			)
		}
		return err
	})
}

// Cancel 主动取消所有任务。cause 会作为取消原因由 Wait 返回；
// cause 不应包装 context.Canceled，否则会被 Wait 当作普通取消过滤。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的派生 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Wait 等待所有任务完成，返回第一个非 nil 错误。
//
// 普通的 context 取消（父 context 结束、Cancel(nil)）被过滤为 nil；
// Cancel(cause) 设置的显式原因（如 [SignalError]）即使所有任务
// 返回 nil 也会被返回，调用方始终能基于退出原因做分类。
func (g *Group) Wait() error {
	// CancelCauseFunc 幂等，确保 causeCtx 的资源被释放。
	defer g.cancel(nil)

	err := g.eg.Wait()

	g.opts.logger.Debug(g.causeCtx, "all tasks stopped",
		slog.String("group", g.opts.name),
	)

	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() != nil {
			// Group 被主动取消：返回显式 cause，普通取消过滤为 nil。
			if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
				return cause
			}
			return nil
		}
		// 取消来自任务内部，不过滤。
		return err
	}

	if err == nil && g.causeCtx.Err() != nil {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
	}

	return err
}

// signalService 监听已注册的信号 channel，收到后以 SignalError 为原因
// 取消 Group。注册发生在 NewGroup 里，这里只负责等待与注销。
func (g *Group) signalService(ctx context.Context, sigCh chan os.Signal) error {
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		g.opts.logger.Info(ctx, "received signal",
			slog.String("group", g.opts.name),
			slog.String("signal", sig.String()),
		)
		g.cancel(&SignalError{Signal: sig})
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
