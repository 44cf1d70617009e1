// lockarena 是多锁获取策略的压测工具。
//
// 一组 worker goroutine 在共享锁池上随机申请多把互斥锁，
// 用于对比三种策略在随机争用下的表现：
//
//	naive       直接阻塞获取，无协调，可能真死锁
//	matrix      等待图成环预判，拒绝不安全的获取
//	timedlock   限时等待，超时视为疑似死锁
//
// 用法:
//
//	lockarena [选项]
//
// 选项:
//
//	-m, --method      naive | matrix | timedlock (默认: matrix)
//	-t, --workers     worker 数量 (默认: 100)
//	-l, --locks       锁池大小 (默认: 100)
//	-c, --claims      单轮申请锁数上限 (默认: 3)
//	-s, --hold        整组锁到手后的最长持有时长 (默认: 1ms)
//	-d, --duration    运行时长 (默认: 1s)
//	    --timeout     timedlock 单次等待上限 (默认: 1ms)
//	    --stop-grace  停止后等待 worker 退出的宽限期，0 表示无限 (默认: 10s)
//	    --seed        随机种子，0 表示按当前时间取
//	    --config      YAML/JSON 配置文件，命令行显式传入的选项优先
//	    --log-level   debug | info | warn | error (默认: info)
//	    --log-format  text | json (默认: text)
//	    --log-file    日志写入文件（带轮转），默认 stderr
//
// 退出码:
//
//	0: 运行完成（包括被信号提前打断）
//	1: worker 在宽限期内未能退出（疑似真死锁）或其他运行错误
//	2: 参数或配置错误
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/lockarena/pkg/arena"
	"github.com/omeyang/lockarena/pkg/xconf"
	"github.com/omeyang/lockarena/pkg/xrun"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "lockarena",
		Usage:   "多锁获取策略压测工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"m"},
				Usage:   "获取策略: naive | matrix | timedlock",
				Value:   "matrix",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"t"},
				Usage:   "worker 数量",
				Value:   defaultWorkers,
			},
			&cli.IntFlag{
				Name:    "locks",
				Aliases: []string{"l"},
				Usage:   "锁池大小",
				Value:   defaultLocks,
			},
			&cli.IntFlag{
				Name:    "claims",
				Aliases: []string{"c"},
				Usage:   "单轮申请锁数上限",
				Value:   defaultMaxClaims,
			},
			&cli.DurationFlag{
				Name:    "hold",
				Aliases: []string{"s"},
				Usage:   "整组锁到手后的最长持有时长",
				Value:   defaultMaxHold,
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "运行时长",
				Value:   defaultDuration,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "timedlock 策略的单次等待上限",
				Value: defaultTimeout,
			},
			&cli.DurationFlag{
				Name:  "stop-grace",
				Usage: "停止后等待 worker 退出的宽限期，0 表示无限等待",
				Value: defaultStopGrace,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "随机种子，0 表示按当前时间取",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML/JSON 配置文件路径",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别: debug | info | warn | error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式: text | json",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志写入文件（带轮转），默认 stderr",
			},
		},
		Action: runArena,
	}
}

func run(args []string) int {
	app := createApp()
	if err := app.Run(context.Background(), args); err != nil {
		if isConfigError(err) {
			fmt.Fprintf(os.Stderr, "配置错误: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// isConfigError 判断是否为参数/配置类错误（退出码 2）。
func isConfigError(err error) bool {
	return errors.Is(err, arena.ErrInvalidConfig) ||
		errors.Is(err, arena.ErrUnknownStrategy) ||
		errors.Is(err, xconf.ErrLoadFailed) ||
		errors.Is(err, xconf.ErrParseFailed) ||
		errors.Is(err, xconf.ErrUnmarshalFailed) ||
		errors.Is(err, xconf.ErrUnsupportedFormat)
}

// runArena 是根命令动作：解析配置、构建 driver、跑完一次压测并打印汇总。
func runArena(ctx context.Context, cmd *cli.Command) error {
	cfg, logCfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	drv, err := arena.NewDriver(cfg, arena.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Printf("Running %d workers, claiming up to %d locks (amongst %d) before sleeping up to %s, using method %s, repeating for %s...\n",
		cfg.Workers, cfg.MaxClaims, cfg.Locks, cfg.MaxHold, drv.Strategy().Name(), cfg.Duration)

	// 信号监听包在外层：^C 取消 driver 的运行上下文，报告照常产出。
	g, _ := xrun.NewGroup(ctx,
		xrun.WithName("lockarena"),
		xrun.WithLogger(logger),
		xrun.WithSignals(xrun.DefaultSignals()),
	)

	var report arena.Report
	var runErr error
	g.GoWithName("driver", func(ctx context.Context) error {
		report, runErr = drv.Run(ctx)
		// 运行结束，释放信号监听任务。
		g.Cancel(nil)
		return nil
	})
	waitErr := g.Wait()

	fmt.Println(report)

	switch {
	case errors.Is(runErr, arena.ErrStalledWorkers):
		fmt.Fprintln(os.Stderr, "workers stalled past stop grace; deadlock suspected")
		return runErr
	case errors.Is(runErr, xrun.ErrSignal):
		// 信号把取消原因透传进 driver：提前打断按正常完成处理，退出码 0。
		return nil
	case runErr != nil:
		return runErr
	case waitErr != nil && !errors.Is(waitErr, xrun.ErrSignal):
		return waitErr
	}
	return nil
}
