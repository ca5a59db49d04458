package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	// defaultLogLevel 默认日志级别
	// 验证路径上的逐次调用日志为 debug 级别，默认不输出
	defaultLogLevel = "info"

	// defaultToConsole 默认输出到控制台
	defaultToConsole = true

	// defaultFilePath 默认不写文件（stderr）
	// 宿主进程的 stdout 可能被 CLI 用于输出验证结果
	defaultFilePath = "stderr"

	// === 日志轮转配置 ===

	defaultMaxSize    = 100 // MB
	defaultMaxBackups = 10
	defaultMaxAge     = 30 // days
	defaultCompress   = true

	// === 调试配置 ===

	defaultEnableCaller     = true
	defaultEnableStacktrace = false
)

// 默认的日志级别映射
var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}
