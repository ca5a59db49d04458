// Package config 提供应用配置管理功能
package config

import (
	logconfig "github.com/weisyn/zkhost/internal/config/log"
	metricsconfig "github.com/weisyn/zkhost/internal/config/metrics"
	temporaryconfig "github.com/weisyn/zkhost/internal/config/storage/temporary"
	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
	"github.com/weisyn/zkhost/pkg/interfaces/config"
	"github.com/weisyn/zkhost/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *zkverifyconfig.Config {
				return zkverifyconfig.NewFromOptions(provider.GetZKVerify())
			},
			func(provider config.Provider) *temporaryconfig.Config {
				return temporaryconfig.NewFromOptions(provider.GetTemporary())
			},
			func(provider config.Provider) *logconfig.Config {
				return logconfig.New(provider.GetLog())
			},
			func(provider config.Provider) *metricsconfig.Config {
				return metricsconfig.NewFromOptions(provider.GetMetrics())
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	return ConfigOutput{
		Provider: NewProvider(appConfig),
	}, nil
}
