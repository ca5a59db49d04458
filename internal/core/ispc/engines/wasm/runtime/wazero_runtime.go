package runtime

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm/interfaces"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
)

// WazeroRuntime 基于wazero的WASM运行时
//
// 🎯 **核心职责**：编译合约、实例化并调用导出函数；验证宿主函数注册在 env 模块中。
//
// 📋 **设计特点**：
// - 线程安全：支持并发编译和执行
// - 编译缓存：进程内按字节码哈希缓存 CompiledModule
// - 资源隔离：每个实例独立的内存，模块名带递增序号避免冲突
type WazeroRuntime struct {
	logger log.Logger

	// wazero运行时实例
	runtime wazero.Runtime

	// 进程内编译模块缓存
	compiledCache sync.Map // map[string]wazero.CompiledModule

	// 实例序号
	instanceSeq atomic.Uint64

	// 宿主函数注册状态
	hostFunctionsRegistered bool
	hostMutex               sync.Mutex

	// 运行时配置
	config *WazeroConfig
}

// 确保WazeroRuntime实现interfaces.WASMRuntime接口
var _ interfaces.WASMRuntime = (*WazeroRuntime)(nil)

// WazeroConfig wazero运行时配置
type WazeroConfig struct {
	// 编译模式：true使用编译器模式（高性能），false使用解释器模式（兼容性）
	UseCompiler bool

	// 执行超时（秒），0表示不限制
	ExecutionTimeoutSeconds int

	// 最大内存页数（每页64KB）
	MaxMemoryPages int

	// 是否启用WASI支持
	EnableWASI bool
}

// DefaultWazeroConfig 默认运行时配置
func DefaultWazeroConfig() *WazeroConfig {
	return &WazeroConfig{
		UseCompiler:             true,
		ExecutionTimeoutSeconds: 30,
		MaxMemoryPages:          1024, // 64MB
		EnableWASI:              true,
	}
}

// NewWazeroRuntime 创建wazero运行时
//
// 📋 **参数说明**：
//   - logger: 日志服务
//   - config: 运行时配置（nil 使用默认配置）
func NewWazeroRuntime(logger log.Logger, config *WazeroConfig) *WazeroRuntime {
	if config == nil {
		config = DefaultWazeroConfig()
	}

	ctx := context.Background()
	runtimeConfig := wazero.NewRuntimeConfigInterpreter()
	if config.UseCompiler {
		runtimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(wazero.NewCompilationCache())
	}
	if config.MaxMemoryPages > 0 {
		runtimeConfig = runtimeConfig.WithMemoryLimitPages(uint32(config.MaxMemoryPages))
	}
	// 执行超时依赖上下文取消终止客户代码
	runtimeConfig = runtimeConfig.WithCloseOnContextDone(true)
	wasmRuntime := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)

	// WASI模块必须在合约模块实例化之前实例化（wasip1 编译的合约依赖它）
	if config.EnableWASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, wasmRuntime); err != nil {
			if logger != nil {
				logger.Errorf("WASI模块实例化失败: %v", err)
			}
		} else if logger != nil {
			logger.Debug("WASI模块实例化成功（wasi_snapshot_preview1）")
		}
	}

	return &WazeroRuntime{
		logger:  logger,
		runtime: wasmRuntime,
		config:  config,
	}
}

// CompileContract 编译WASM合约
//
// 🎯 **核心编译流程**：
//  1. 检查进程内编译缓存
//  2. 使用wazero编译WASM字节码
//  3. 打印导入清单，便于确认合约依赖的宿主函数
func (r *WazeroRuntime) CompileContract(ctx context.Context, wasmBytes []byte) (*interfaces.CompiledContract, error) {
	if len(wasmBytes) == 0 {
		return nil, fmt.Errorf("%w: 字节码为空", ErrCompileFailed)
	}
	hash := sha256.Sum256(wasmBytes)
	cacheKey := fmt.Sprintf("wasm_%x", hash)

	if v, ok := r.compiledCache.Load(cacheKey); ok {
		if cm, ok := v.(wazero.CompiledModule); ok {
			return &interfaces.CompiledContract{Hash: hash[:], Module: cm, CompiledAt: time.Now().Unix()}, nil
		}
		r.compiledCache.Delete(cacheKey)
	}

	compiled, err := r.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}

	if r.logger != nil {
		r.logger.Debug("==================== WASM 模块导入清单 ====================")
		importedFunctions := compiled.ImportedFunctions()
		if len(importedFunctions) == 0 {
			r.logger.Debug("  （无导入函数）")
		} else {
			for _, def := range importedFunctions {
				moduleName, funcName, _ := def.Import()
				r.logger.Debugf("  [%s] %s", moduleName, funcName)
			}
		}
		r.logger.Debugf("==================== 共 %d 个导入函数 ====================", len(importedFunctions))
	}

	r.compiledCache.Store(cacheKey, compiled)
	return &interfaces.CompiledContract{Hash: hash[:], Module: compiled, CompiledAt: time.Now().Unix()}, nil
}

// CreateInstance 创建合约实例
//
// 宿主函数必须在此之前注册，否则导入 env 的合约无法实例化。
func (r *WazeroRuntime) CreateInstance(ctx context.Context, compiled *interfaces.CompiledContract) (*interfaces.Instance, error) {
	if compiled == nil || compiled.Module == nil {
		return nil, fmt.Errorf("%w: 编译模块为空", ErrInstantiateFailed)
	}

	seq := r.instanceSeq.Add(1)
	name := fmt.Sprintf("contract_%x_%d", compiled.Hash[:8], seq)
	moduleConfig := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions()

	apiModule, err := r.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInstantiateFailed, err)
	}

	if r.logger != nil {
		r.logger.Debugf("WASM合约实例创建成功: %s", name)
	}
	return &interfaces.Instance{
		ID:        name,
		Hash:      compiled.Hash,
		Module:    apiModule,
		Memory:    apiModule.Memory(),
		CreatedAt: time.Now().Unix(),
		Status:    interfaces.InstanceStatusCreated,
	}, nil
}

// ExecuteFunction 执行合约函数
//
// 📋 **参数类型说明**：
// - i32/i64: 直接使用uint64传递
// - 字节串: 先写入实例内存，再传递指针+长度
func (r *WazeroRuntime) ExecuteFunction(ctx context.Context, instance *interfaces.Instance, functionName string, params []uint64) ([]uint64, error) {
	if instance == nil || instance.Module == nil {
		return nil, fmt.Errorf("%w: 实例无效", ErrInvalidParams)
	}
	exportedFunc := instance.Module.ExportedFunction(functionName)
	if exportedFunc == nil {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, functionName)
	}
	if got, want := len(params), len(exportedFunc.Definition().ParamTypes()); got != want {
		return nil, fmt.Errorf("%w: %s 需要 %d 个参数，实际 %d", ErrInvalidSignature, functionName, want, got)
	}

	executionCtx := ctx
	if r.config.ExecutionTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		executionCtx, cancel = context.WithTimeout(ctx, time.Duration(r.config.ExecutionTimeoutSeconds)*time.Second)
		defer cancel()
	}

	instance.Status = interfaces.InstanceStatusRunning
	results, err := exportedFunc.Call(executionCtx, params...)
	if err != nil {
		instance.Status = interfaces.InstanceStatusFailed
		return nil, fmt.Errorf("%w: %v", ErrExecuteFailed, err)
	}
	instance.Status = interfaces.InstanceStatusFinished
	return results, nil
}

// WriteMemory 把字节写入实例内存
func (r *WazeroRuntime) WriteMemory(instance *interfaces.Instance, offset uint32, data []byte) error {
	if instance == nil || instance.Memory == nil {
		return fmt.Errorf("%w: 实例未导出内存", ErrMemoryAccess)
	}
	if !instance.Memory.Write(offset, data) {
		return fmt.Errorf("%w: offset=%d len=%d", ErrMemoryAccess, offset, len(data))
	}
	return nil
}

// ReadMemory 从实例内存复制字节
func (r *WazeroRuntime) ReadMemory(instance *interfaces.Instance, offset, length uint32) ([]byte, error) {
	if instance == nil || instance.Memory == nil {
		return nil, fmt.Errorf("%w: 实例未导出内存", ErrMemoryAccess)
	}
	view, ok := instance.Memory.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("%w: offset=%d len=%d", ErrMemoryAccess, offset, length)
	}
	return append([]byte(nil), view...), nil
}

// DestroyInstance 销毁合约实例
func (r *WazeroRuntime) DestroyInstance(ctx context.Context, instance *interfaces.Instance) error {
	if instance == nil || instance.Module == nil {
		return nil
	}
	if err := instance.Module.Close(ctx); err != nil {
		return fmt.Errorf("销毁实例失败: %w", err)
	}
	instance.Module = nil
	instance.Memory = nil
	instance.Status = interfaces.InstanceStatusDestroyed
	return nil
}

// RegisterHostFunctions 注册宿主函数
//
// ⚠️ **关键设计**：env模块只能实例化一次，
// 第二次调用直接返回（wazero 不允许重复实例化同名模块）。
func (r *WazeroRuntime) RegisterHostFunctions(functions map[string]interface{}) error {
	r.hostMutex.Lock()
	defer r.hostMutex.Unlock()

	if r.hostFunctionsRegistered || len(functions) == 0 {
		return nil
	}

	builder := r.runtime.NewHostModuleBuilder("env")
	for name, fn := range functions {
		builder.NewFunctionBuilder().
			WithFunc(fn).
			Export(name)
		if r.logger != nil {
			r.logger.Debugf("注册宿主函数: %s", name)
		}
	}

	if _, err := builder.Instantiate(context.Background()); err != nil {
		return fmt.Errorf("宿主模块实例化失败: %w", err)
	}
	r.hostFunctionsRegistered = true

	if r.logger != nil {
		r.logger.Debugf("宿主函数注册成功（共%d个函数）", len(functions))
	}
	return nil
}

// Close 关闭运行时，释放所有相关资源
func (r *WazeroRuntime) Close() error {
	if r.runtime != nil {
		return r.runtime.Close(context.Background())
	}
	return nil
}
