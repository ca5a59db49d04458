// Package interfaces 定义 WASM 引擎内部接口与数据结构。
package interfaces

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// ============================================================================
//                           WASM 运行时数据结构
// ============================================================================

// CompiledContract 已编译的合约模块
type CompiledContract struct {
	// Hash 字节码 SHA-256
	Hash []byte
	// Module wazero 编译模块
	Module wazero.CompiledModule
	// CompiledAt 编译时间（Unix秒）
	CompiledAt int64
}

// InstanceStatus 实例状态
type InstanceStatus string

const (
	InstanceStatusCreated   InstanceStatus = "created"
	InstanceStatusRunning   InstanceStatus = "running"
	InstanceStatusFinished  InstanceStatus = "finished"
	InstanceStatusFailed    InstanceStatus = "failed"
	InstanceStatusDestroyed InstanceStatus = "destroyed"
)

// Instance 合约实例
type Instance struct {
	ID        string
	Hash      []byte
	Module    api.Module
	Memory    api.Memory
	CreatedAt int64
	Status    InstanceStatus
}

// ============================================================================
//                           纯内部接口定义
// ============================================================================

// WASMRuntime WASM运行时接口
//
// 📋 **对应实现**：internal/core/ispc/engines/wasm/runtime/
// 📋 **接口性质**：纯内部接口，无对应公共接口
type WASMRuntime interface {
	// CompileContract 编译WASM合约字节码
	CompileContract(ctx context.Context, wasmBytes []byte) (*CompiledContract, error)

	// CreateInstance 基于编译模块创建执行实例
	CreateInstance(ctx context.Context, compiled *CompiledContract) (*Instance, error)

	// ExecuteFunction 执行WASM实例中的指定函数
	ExecuteFunction(ctx context.Context, instance *Instance, functionName string, params []uint64) ([]uint64, error)

	// DestroyInstance 销毁WASM实例，释放相关资源
	DestroyInstance(ctx context.Context, instance *Instance) error

	// RegisterHostFunctions 注册宿主函数到 env 模块（只生效一次）
	RegisterHostFunctions(functions map[string]interface{}) error

	// Close 关闭运行时，释放所有相关资源
	Close() error
}
