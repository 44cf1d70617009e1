package xlog

import "errors"

var (
	// ErrInvalidLevel 表示无法识别的日志级别字符串。
	ErrInvalidLevel = errors.New("xlog: invalid level")

	// ErrInvalidFormat 表示无法识别的输出格式（仅支持 text/json）。
	ErrInvalidFormat = errors.New("xlog: invalid format")
)
