package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	config "github.com/weisyn/zkhost/internal/config"
	log "github.com/weisyn/zkhost/internal/core/infrastructure/log"
	"github.com/weisyn/zkhost/internal/core/infrastructure/metrics"
	temp "github.com/weisyn/zkhost/internal/core/infrastructure/storage/tempstore"
	"github.com/weisyn/zkhost/internal/core/ispc"
	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm"
	"github.com/weisyn/zkhost/internal/core/ispc/hostabi"
	configif "github.com/weisyn/zkhost/pkg/interfaces/config"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
)

// 启动与停止超时
const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App

	// 由 fx.Populate 填充
	dispatcher    ispcif.Dispatcher
	engine        *wasm.Engine
	hostFunctions *hostabi.HostFunctionProvider
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configif.AppOptions { return b.opts }),
		config.Module(),  // 1. 配置(不依赖其他)
		log.Module(),     // 2. 日志(依赖配置)
		temp.Module(),    // 3. 验证工作区(依赖配置和日志)
		metrics.Module(), // 4. 指标端点(依赖配置和日志，可选)
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		ispc.Module(), // 验证后端、分发器、宿主函数、WASM引擎
	}
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	if err := b.opts.resolve(); err != nil {
		return err
	}

	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupBusinessLayer()...)

	app := fx.New(
		fx.Options(modules...),
		// 禁用fx内部日志
		fx.NopLogger,
		fx.Populate(&b.dispatcher, &b.engine, &b.hostFunctions),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("装配模块失败: %w", err)
	}
	b.fxApp = app
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(opts ...Option) (App, error) {
	bootstrap := NewBootstrap(newOptions(opts...))

	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	return &internalApp{bootstrap: bootstrap}, nil
}
