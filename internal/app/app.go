// Package app 装配并启动零知识证明验证宿主
package app

import (
	"context"

	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm"
	"github.com/weisyn/zkhost/internal/core/ispc/hostabi"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
)

// App 应用对外接口
type App interface {
	// Dispatcher 验证分发器
	Dispatcher() ispcif.Dispatcher

	// Engine 已注册宿主函数的WASM执行引擎
	Engine() *wasm.Engine

	// HostFunctions 宿主函数提供者（含调用统计）
	HostFunctions() *hostabi.HostFunctionProvider

	// Stop 停止应用，关闭运行时并清理工作区
	Stop() error
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
}

func (a *internalApp) Dispatcher() ispcif.Dispatcher {
	return a.bootstrap.dispatcher
}

func (a *internalApp) Engine() *wasm.Engine {
	return a.bootstrap.engine
}

func (a *internalApp) HostFunctions() *hostabi.HostFunctionProvider {
	return a.bootstrap.hostFunctions
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Start 启动应用
func Start(opts ...Option) (App, error) {
	return BootstrapApp(opts...)
}
