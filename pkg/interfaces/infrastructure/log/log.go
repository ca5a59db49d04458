// Package log 定义 zkhost 的日志接口
//
// 📋 **日志接口**
//
// 验证子系统、宿主函数层、WASM 运行时和工作区存储都只依赖这个接口，
// 具体实现位于 internal/core/infrastructure/log（基于 zap）。
// 各模块通过 With("module", "<name>") 打上模块标识。
package log

import "go.uber.org/zap"

// Logger 定义日志记录器接口
type Logger interface {
	// Debug 记录调试级别的日志
	Debug(msg string)

	// Debugf 使用格式化字符串记录调试级别的日志
	Debugf(format string, args ...interface{})

	// Info 记录信息级别的日志
	Info(msg string)

	// Infof 使用格式化字符串记录信息级别的日志
	Infof(format string, args ...interface{})

	Warn(msg string)
	Warnf(format string, args ...interface{})

	Error(msg string)
	Errorf(format string, args ...interface{})

	// Fatal 记录日志后退出进程，只允许在 cmd 层使用
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With 返回一个带有额外键值字段的Logger
	With(args ...interface{}) Logger

	// Sync 同步日志缓冲区到输出
	Sync() error

	// GetZapLogger 获取原始的zap日志记录器
	GetZapLogger() *zap.Logger
}
