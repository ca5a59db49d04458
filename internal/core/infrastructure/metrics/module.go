package metrics

import (
	"context"

	"go.uber.org/fx"

	metricsconfig "github.com/weisyn/zkhost/internal/config/metrics"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
)

// ModuleParams 指标模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *metricsconfig.Config
	Logger    log.Logger `optional:"true"`
}

// Module 返回指标模块
//
// 未配置 metrics.listen_addr 时不提供端点（*Server 为 nil）。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideServer),
		// 端点无下游消费者，显式触发构造
		fx.Invoke(func(*Server) {}),
	)
}

// ProvideServer 创建指标端点，并挂接到应用生命周期
func ProvideServer(params ModuleParams) *Server {
	if params.Config == nil || !params.Config.IsEnabled() {
		return nil
	}

	var logger log.Logger
	if params.Logger != nil {
		logger = params.Logger.With("module", "metrics")
	}

	server := NewServer(logger,
		params.Config.GetListenAddr(),
		params.Config.GetPath(),
		params.Config.GetShutdownTimeout(),
		nil,
	)

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return server
}
