// Package config provides configuration provider interfaces.
package config

import (
	logconfig "github.com/weisyn/zkhost/internal/config/log"
	metricsconfig "github.com/weisyn/zkhost/internal/config/metrics"
	temporaryconfig "github.com/weisyn/zkhost/internal/config/storage/temporary"
	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
)

// Provider 配置提供者接口
// 每次调用都基于用户配置和默认值构建完整选项
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetTemporary 获取验证工作区配置
	GetTemporary() *temporaryconfig.TempOptions

	// GetZKVerify 获取零知识证明验证配置
	GetZKVerify() *zkverifyconfig.ZKVerifyOptions

	// GetMetrics 获取指标端点配置
	GetMetrics() *metricsconfig.MetricsOptions
}
