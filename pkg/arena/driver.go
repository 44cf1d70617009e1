package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/lockarena/pkg/xrun"
)

// Config 是一次压测运行的全部参数。
type Config struct {
	// Strategy 选择获取策略。
	Strategy Kind `koanf:"strategy"`

	// Workers 是模拟客户端数量。
	Workers int `koanf:"workers"`

	// Locks 是锁池大小。
	Locks int `koanf:"locks"`

	// MaxClaims 是单轮申请锁数的上限：每轮实际申请 [0, MaxClaims) 把。
	MaxClaims int `koanf:"max_claims"`

	// MaxHold 是整组锁到手后的最长持有时长，实际持有 [0, MaxHold) 均匀随机。
	MaxHold time.Duration `koanf:"max_hold"`

	// Duration 是运行时长，到点后发出协作停止信号。
	Duration time.Duration `koanf:"duration"`

	// Timeout 是 timedlock 策略的单次等待上限，其余策略忽略。
	Timeout time.Duration `koanf:"timeout"`

	// StopGrace 是停止信号发出后等待 worker 退出的宽限期。
	// 超过宽限期仍未退出的 worker 会被硬停止解救，运行以
	// [ErrStalledWorkers] 收场。0 表示无限等待。
	StopGrace time.Duration `koanf:"stop_grace"`

	// Seed 是随机序列种子，0 表示按当前时间取。
	Seed uint64 `koanf:"seed"`
}

// Validate 校验配置。无效配置在任何 worker 启动之前就被拒绝。
func (c *Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Locks <= 0:
		return fmt.Errorf("%w: locks must be positive, got %d", ErrInvalidConfig, c.Locks)
	case c.MaxClaims <= 0:
		return fmt.Errorf("%w: max claims must be positive, got %d", ErrInvalidConfig, c.MaxClaims)
	case c.MaxHold < 0:
		return fmt.Errorf("%w: max hold must not be negative, got %s", ErrInvalidConfig, c.MaxHold)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidConfig, c.Duration)
	case c.StopGrace < 0:
		return fmt.Errorf("%w: stop grace must not be negative, got %s", ErrInvalidConfig, c.StopGrace)
	}
	if c.Strategy == KindTimed && c.Timeout <= 0 {
		return fmt.Errorf("%w: timedlock strategy requires a positive timeout", ErrInvalidConfig)
	}
	if _, err := ParseKind(c.Strategy.String()); err != nil {
		return err
	}
	return nil
}

// errRunComplete 是时长到点的内部停止原因，对调用方不可见。
var errRunComplete = errors.New("arena: run duration elapsed")

// Driver 组装锁池、等待图、策略与计数器，驱动一组 worker 跑完配置时长。
// 所有共享状态都由 Driver 持有并显式传入，不存在包级可变全局。
type Driver struct {
	cfg      Config
	opts     *driverOptions
	pool     *Pool
	graph    *WaitGraph
	strategy Strategy
	stats    *Stats
}

// NewDriver 构建一次运行。配置无效时返回错误。
func NewDriver(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	pool, err := NewPool(cfg.Locks)
	if err != nil {
		return nil, err
	}
	var graph *WaitGraph
	if cfg.Strategy == KindMatrix {
		graph = NewWaitGraph(cfg.Workers, cfg.Locks)
	}
	strategy, err := NewStrategy(cfg.Strategy, pool, graph, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	stats := NewStats()
	if err := stats.EnableMetrics(options.meterProvider, strategy.Name()); err != nil {
		return nil, err
	}

	return &Driver{
		cfg:      cfg,
		opts:     options,
		pool:     pool,
		graph:    graph,
		strategy: strategy,
		stats:    stats,
	}, nil
}

// Strategy 返回选定的策略实例。
func (d *Driver) Strategy() Strategy { return d.strategy }

// Run 启动所有 worker，运行配置的时长（或直到 ctx 被取消），
// 发出协作停止信号并等待 worker 退出，返回汇总报告。
//
// 报告在停止信号发出的瞬间取快照——即便 naive 策略已经把部分 worker
// 拖进真死锁，计数仍然可用。宽限期耗尽时对在途的阻塞获取做硬停止，
// 返回快照与 [ErrStalledWorkers]。
func (d *Driver) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	logger := d.opts.logger.With(slog.String("run_id", runID))
	seed := d.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	logger.Info(ctx, "starting run",
		slog.String("strategy", d.strategy.Name()),
		slog.Int("workers", d.cfg.Workers),
		slog.Int("locks", d.cfg.Locks),
		slog.Int("max_claims", d.cfg.MaxClaims),
		slog.Duration("max_hold", d.cfg.MaxHold),
		slog.Duration("duration", d.cfg.Duration),
		slog.Uint64("seed", seed),
	)

	// 硬停止上下文独立于运行上下文：协作停止从不打断在途的获取，
	// 只有宽限期耗尽后才动用硬停止。
	killCtx, kill := context.WithCancel(context.Background())
	defer kill()

	g, runCtx := xrun.NewGroup(ctx, xrun.WithName("arena"), xrun.WithLogger(logger))
	for i := 0; i < d.cfg.Workers; i++ {
		w := newWorker(i, d.strategy, d.stats, logger, seed, d.cfg.Locks, d.cfg.MaxClaims, d.cfg.MaxHold)
		g.Go(func(ctx context.Context) error {
			return w.run(ctx, killCtx)
		})
	}
	g.Go(xrun.Timer(d.cfg.Duration, func(context.Context) error {
		return errRunComplete
	}))

	waitCh := make(chan error, 1)
	go func() { waitCh <- g.Wait() }()

	<-runCtx.Done()
	// 先取快照再等 worker 收尾：naive 真死锁时 join 可能永远不回来。
	report := d.stats.snapshot(runID, d.strategy.Name())
	logger.Info(ctx, "stop signalled",
		slog.Uint64("rounds", report.Rounds),
		slog.Uint64("failed", report.Failed),
	)

	var graceCh <-chan time.Time
	if d.cfg.StopGrace > 0 {
		t := time.NewTimer(d.cfg.StopGrace)
		defer t.Stop()
		graceCh = t.C
	}

	select {
	case err := <-waitCh:
		logger.Info(ctx, "run complete")
		return report, filterRunErr(err)
	case <-graceCh:
		logger.Warn(ctx, "workers stalled, forcing stop", slog.Duration("grace", d.cfg.StopGrace))
		kill()
		<-waitCh
		return report, ErrStalledWorkers
	}
}

// filterRunErr 过滤掉正常收尾的内部原因。
func filterRunErr(err error) error {
	if err == nil || errors.Is(err, errRunComplete) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
