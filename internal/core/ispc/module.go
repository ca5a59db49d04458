// Package ispc 组装零知识证明验证宿主函数子系统
//
// 📋 **模块组成**：
//   - 三个验证后端（pairing / toolchain / receipt），以值组 zkverify_backends 注入分发器
//   - 验证分发器（zkverify.Dispatcher）
//   - 宿主函数提供者（hostabi.HostFunctionProvider）
//   - wazero 运行时与执行引擎（engines/wasm）
//
// 🔧 **使用方式**：
//
//	app := fx.New(
//	    config.Module(),
//	    log.Module(),
//	    temp.Module(),
//	    ispc.Module(),
//	)
package ispc

import (
	"context"

	"go.uber.org/fx"

	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
	logimpl "github.com/weisyn/zkhost/internal/core/infrastructure/log"
	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm"
	wasminterfaces "github.com/weisyn/zkhost/internal/core/ispc/engines/wasm/interfaces"
	wasmruntime "github.com/weisyn/zkhost/internal/core/ispc/engines/wasm/runtime"
	"github.com/weisyn/zkhost/internal/core/ispc/hostabi"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/pairing"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/receipt"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/toolchain"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/storage"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
)

// ==================== 模块输入依赖 ====================

// BackendInput 后端构造依赖
type BackendInput struct {
	fx.In

	Logger    log.Logger             `optional:"true"`
	Config    *zkverifyconfig.Config `optional:"false"`
	TempStore storage.TempStore      `optional:"false"`
}

// BackendOutput 单个后端，加入值组 zkverify_backends
type BackendOutput struct {
	fx.Out

	Backend ispcif.BackendVerifier `group:"zkverify_backends"`
}

// DispatcherInput 分发器依赖
type DispatcherInput struct {
	fx.In

	Logger   log.Logger               `optional:"true"`
	Backends []ispcif.BackendVerifier `group:"zkverify_backends"`
}

// EngineInput 执行引擎依赖
type EngineInput struct {
	fx.In

	Lifecycle     fx.Lifecycle
	Logger        log.Logger `optional:"true"`
	HostFunctions *hostabi.HostFunctionProvider
}

// ==================== 模块构建器 ====================

// Module 构建并返回验证子系统的 fx 配置
//
// ⚠️ **依赖要求**：需要 config、log、tempstore 模块。
func Module() fx.Option {
	return fx.Module("ispc",
		fx.Provide(
			ProvidePairingBackend,
			ProvideToolchainBackend,
			ProvideReceiptBackend,

			// 同时提供具体类型与接口类型
			ProvideDispatcher,
			func(d *zkverify.Dispatcher) ispcif.Dispatcher { return d },

			ProvideHostFunctionProvider,
			ProvideEngine,
		),
		fx.Invoke(func(d ispcif.Dispatcher, logger log.Logger) {
			if logger != nil {
				logger.Infof("零知识证明验证后端已注册: %v", d.Backends())
			}
		}),
	)
}

// ProvidePairingBackend 配对验证后端
func ProvidePairingBackend(in BackendInput) BackendOutput {
	return BackendOutput{Backend: pairing.NewVerifier(logimpl.NewModuleLogger(in.Logger, "pairing"), in.Config)}
}

// ProvideToolchainBackend 外部工具链验证后端（子进程执行器）
func ProvideToolchainBackend(in BackendInput) BackendOutput {
	return BackendOutput{Backend: toolchain.NewVerifier(logimpl.NewModuleLogger(in.Logger, "toolchain"), in.Config, in.TempStore, nil)}
}

// ProvideReceiptBackend zkVM 收据验证后端（Groth16 收据验证器）
func ProvideReceiptBackend(in BackendInput) BackendOutput {
	return BackendOutput{Backend: receipt.NewVerifier(logimpl.NewModuleLogger(in.Logger, "receipt"), in.Config, nil)}
}

// ProvideDispatcher 验证分发器
func ProvideDispatcher(in DispatcherInput) (*zkverify.Dispatcher, error) {
	return zkverify.NewDispatcher(logimpl.NewModuleLogger(in.Logger, "zkverify"), in.Backends...)
}

// ProvideHostFunctionProvider 宿主函数提供者
func ProvideHostFunctionProvider(logger log.Logger, dispatcher ispcif.Dispatcher, cfg *zkverifyconfig.Config) *hostabi.HostFunctionProvider {
	return hostabi.NewHostFunctionProvider(logimpl.NewModuleLogger(logger, "hostabi"), dispatcher, cfg)
}

// ProvideEngine wazero 运行时与执行引擎，应用停止时关闭
func ProvideEngine(in EngineInput) (*wasm.Engine, wasminterfaces.WASMRuntime, error) {
	wasmLogger := logimpl.NewModuleLogger(in.Logger, "wasm")
	rt := wasmruntime.NewWazeroRuntime(wasmLogger, nil)
	engine, err := wasm.NewEngine(wasmLogger, rt, in.HostFunctions.BuildHostFunctions())
	if err != nil {
		_ = rt.Close()
		return nil, nil, err
	}
	in.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return engine.Close()
		},
	})
	return engine, rt, nil
}
