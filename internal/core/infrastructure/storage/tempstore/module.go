package temp

import (
	"context"

	temporaryconfig "github.com/weisyn/zkhost/internal/config/storage/temporary"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 工作区存储模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *temporaryconfig.Config
	Logger    log.Logger
}

// Module 返回工作区存储模块
func Module() fx.Option {
	return fx.Module("tempstore",
		fx.Provide(ProvideTempStore),
	)
}

// ProvideTempStore 创建工作区存储并在应用停止时关闭
func ProvideTempStore(params ModuleParams) (storage.TempStore, error) {
	store, err := New(params.Config, params.Logger.With("module", "workspace"))
	if err != nil {
		return nil, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}
