// Package xlog 提供基于 log/slog 的结构化日志。
//
// 核心是 [Logger] 接口：所有方法都要求 context.Context，属性只接受
// slog.Attr，避免隐式 key-value 转换。通过 [Builder] 构建实例，
// 支持 text/json 两种格式、运行时可调的级别，以及基于 lumberjack
// 的文件轮转输出。
//
//	logger, cleanup, err := xlog.New().
//	    SetLevelString("debug").
//	    SetFormat("json").
//	    Build()
//	if err != nil { ... }
//	defer cleanup()
//	logger.Info(ctx, "starting", slog.Int("workers", 8))
//
// 测试或默认场景用 [Nop] 获取丢弃一切的实例。
package xlog
