package main

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/lockarena/pkg/arena"
	"github.com/omeyang/lockarena/pkg/xconf"
	"github.com/omeyang/lockarena/pkg/xlog"
)

// 默认参数，沿用压测工具的惯用量级：上百 worker 抢上百把锁。
const (
	defaultWorkers   = 100
	defaultLocks     = 100
	defaultMaxClaims = 3
	defaultMaxHold   = time.Millisecond
	defaultDuration  = time.Second
	defaultTimeout   = time.Millisecond
	defaultStopGrace = 10 * time.Second
)

// logConfig 是日志相关配置。
type logConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// fileConfig 是配置文件的顶层结构，运行参数与 arena.Config 同构。
type fileConfig struct {
	Method    string        `koanf:"method"`
	Workers   int           `koanf:"workers"`
	Locks     int           `koanf:"locks"`
	MaxClaims int           `koanf:"max_claims"`
	MaxHold   time.Duration `koanf:"max_hold"`
	Duration  time.Duration `koanf:"duration"`
	Timeout   time.Duration `koanf:"timeout"`
	StopGrace time.Duration `koanf:"stop_grace"`
	Seed      uint64        `koanf:"seed"`
	Log       logConfig     `koanf:"log"`
}

// resolveConfig 合并三层配置：flag 默认值 ← 配置文件 ← 命令行显式传入。
// 命令行显式设置的选项优先于配置文件。
func resolveConfig(cmd *cli.Command) (arena.Config, logConfig, error) {
	fc := fileConfig{
		Method:    cmd.String("method"),
		Workers:   cmd.Int("workers"),
		Locks:     cmd.Int("locks"),
		MaxClaims: cmd.Int("claims"),
		MaxHold:   cmd.Duration("hold"),
		Duration:  cmd.Duration("duration"),
		Timeout:   cmd.Duration("timeout"),
		StopGrace: cmd.Duration("stop-grace"),
		Seed:      cmd.Uint64("seed"),
		Log: logConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
			File:   cmd.String("log-file"),
		},
	}

	if path := cmd.String("config"); path != "" {
		conf, err := xconf.New(path)
		if err != nil {
			return arena.Config{}, logConfig{}, err
		}
		var fromFile fileConfig
		if err := conf.Unmarshal("", &fromFile); err != nil {
			return arena.Config{}, logConfig{}, err
		}
		applyFile(&fc, &fromFile, cmd)
	}

	kind, err := arena.ParseKind(fc.Method)
	if err != nil {
		return arena.Config{}, logConfig{}, err
	}

	cfg := arena.Config{
		Strategy:  kind,
		Workers:   fc.Workers,
		Locks:     fc.Locks,
		MaxClaims: fc.MaxClaims,
		MaxHold:   fc.MaxHold,
		Duration:  fc.Duration,
		Timeout:   fc.Timeout,
		StopGrace: fc.StopGrace,
		Seed:      fc.Seed,
	}
	if err := cfg.Validate(); err != nil {
		return arena.Config{}, logConfig{}, err
	}
	return cfg, fc.Log, nil
}

// applyFile 把配置文件的值套到 fc 上，命令行显式设置的选项保持不变。
// 文件中缺省（零值）的字段同样保持 flag 默认值。
func applyFile(fc, fromFile *fileConfig, cmd *cli.Command) {
	if fromFile.Method != "" && !cmd.IsSet("method") {
		fc.Method = fromFile.Method
	}
	if fromFile.Workers != 0 && !cmd.IsSet("workers") {
		fc.Workers = fromFile.Workers
	}
	if fromFile.Locks != 0 && !cmd.IsSet("locks") {
		fc.Locks = fromFile.Locks
	}
	if fromFile.MaxClaims != 0 && !cmd.IsSet("claims") {
		fc.MaxClaims = fromFile.MaxClaims
	}
	if fromFile.MaxHold != 0 && !cmd.IsSet("hold") {
		fc.MaxHold = fromFile.MaxHold
	}
	if fromFile.Duration != 0 && !cmd.IsSet("duration") {
		fc.Duration = fromFile.Duration
	}
	if fromFile.Timeout != 0 && !cmd.IsSet("timeout") {
		fc.Timeout = fromFile.Timeout
	}
	if fromFile.StopGrace != 0 && !cmd.IsSet("stop-grace") {
		fc.StopGrace = fromFile.StopGrace
	}
	if fromFile.Seed != 0 && !cmd.IsSet("seed") {
		fc.Seed = fromFile.Seed
	}
	if fromFile.Log.Level != "" && !cmd.IsSet("log-level") {
		fc.Log.Level = fromFile.Log.Level
	}
	if fromFile.Log.Format != "" && !cmd.IsSet("log-format") {
		fc.Log.Format = fromFile.Log.Format
	}
	if fromFile.Log.File != "" && !cmd.IsSet("log-file") {
		fc.Log.File = fromFile.Log.File
	}
}

// buildLogger 按日志配置构建 Logger。
func buildLogger(lc logConfig) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetLevelString(lc.Level).
		SetFormat(lc.Format)
	if lc.File != "" {
		b.SetRotation(lc.File, 100, 3, 7)
	}
	return b.Build()
}
