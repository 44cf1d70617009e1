package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Builder 日志配置构建器。零值不可用，通过 [New] 创建。
// 所有 Set 方法返回 Builder 自身以便链式调用；配置错误
// 延迟到 Build 统一返回。
type Builder struct {
	output    io.Writer
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	rotator   *lumberjack.Logger
	err       error
}

// New 创建构建器，默认输出 os.Stderr、text 格式、Info 级别。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置输出目标。与 SetRotation 同时设置时，轮转输出优先。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别。
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别。
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json。空值视为默认 text。
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return b
}

// SetAddSource 设置是否记录源码位置。
func (b *Builder) SetAddSource(add bool) *Builder {
	b.addSource = add
	return b
}

// SetRotation 把输出切到带轮转的文件。
// maxSizeMB 单个文件上限（MB），maxBackups 保留的旧文件数，
// maxAgeDays 旧文件保留天数；三者 <= 0 时使用 lumberjack 默认值。
func (b *Builder) SetRotation(file string, maxSizeMB, maxBackups, maxAgeDays int) *Builder {
	if file == "" {
		b.err = fmt.Errorf("xlog: rotation file must not be empty")
		return b
	}
	b.rotator = &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return b
}

// Build 构建 Logger。cleanup 关闭轮转文件（无轮转时为空操作），
// 进程退出前应当调用。
func (b *Builder) Build() (Logger, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	output := b.output
	cleanup := func() error { return nil }
	if b.rotator != nil {
		output = b.rotator
		cleanup = b.rotator.Close
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &xlogger{handler: handler, levelVar: b.levelVar}, cleanup, nil
}
