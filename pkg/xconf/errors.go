package xconf

import "errors"

// 哨兵错误，调用方用 errors.Is 分类：路径与格式问题在构建实例时暴露，
// 加载、解析、反序列化失败发生在读取阶段。
var (
	// ErrEmptyPath 表示传入了空的配置文件路径。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 表示格式不是 YAML/JSON，
	// 或文件扩展名无法识别。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示配置文件读取失败（不存在、无权限等）。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 表示配置内容不是合法的 YAML/JSON。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 表示配置与目标结构体对不上。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")
)
