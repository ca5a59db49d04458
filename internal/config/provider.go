package config

import (
	"github.com/weisyn/zkhost/internal/config/log"
	"github.com/weisyn/zkhost/internal/config/metrics"
	"github.com/weisyn/zkhost/internal/config/storage/temporary"
	"github.com/weisyn/zkhost/internal/config/zkverify"
	"github.com/weisyn/zkhost/pkg/interfaces/config"
	"github.com/weisyn/zkhost/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetTemporary 获取验证工作区配置
//
// zkverify.toolchain.workspace_root 优先于 storage.data_root
func (p *Provider) GetTemporary() *temporary.TempOptions {
	options := temporary.New(p.appConfig.Storage).GetOptions()

	zk := p.appConfig.ZKVerify
	if zk != nil && zk.Toolchain != nil && zk.Toolchain.WorkspaceRoot != nil && *zk.Toolchain.WorkspaceRoot != "" {
		options.TempPath = zkverify.New(zk).GetToolchain().WorkspaceRoot
	}
	return options
}

// GetZKVerify 获取零知识证明验证配置
func (p *Provider) GetZKVerify() *zkverify.ZKVerifyOptions {
	return zkverify.New(p.appConfig.ZKVerify).GetOptions()
}

// GetMetrics 获取指标端点配置
func (p *Provider) GetMetrics() *metrics.MetricsOptions {
	return metrics.New(p.appConfig.Metrics).GetOptions()
}
