// Package wasm 提供合约执行入口：编译、注册宿主函数、实例化、调用导出函数。
package wasm

import (
	"context"
	"fmt"
	"sort"

	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm/interfaces"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
)

// Call 一次合约调用
type Call struct {
	// Entry 导出函数名
	Entry string
	// Params 导出函数参数（wazero 原生 uint64 格式）
	Params []uint64
	// Memory 调用前写入实例内存的数据（偏移 → 字节）
	Memory map[uint32][]byte
}

// memoryWriter 运行时可选能力：写实例内存
type memoryWriter interface {
	WriteMemory(instance *interfaces.Instance, offset uint32, data []byte) error
}

// Engine WASM 执行引擎
//
// 宿主函数在构造时注册到运行时的 env 模块；每次调用创建独立实例，调用结束即销毁。
type Engine struct {
	logger  log.Logger
	runtime interfaces.WASMRuntime
}

// NewEngine 创建执行引擎并注册宿主函数
func NewEngine(logger log.Logger, runtime interfaces.WASMRuntime, hostFunctions map[string]interface{}) (*Engine, error) {
	if runtime == nil {
		return nil, fmt.Errorf("WASM运行时为空")
	}
	if err := runtime.RegisterHostFunctions(hostFunctions); err != nil {
		return nil, err
	}
	if logger != nil {
		names := make([]string, 0, len(hostFunctions))
		for name := range hostFunctions {
			names = append(names, name)
		}
		sort.Strings(names)
		logger.Infof("WASM引擎就绪，宿主函数: %v", names)
	}
	return &Engine{logger: logger, runtime: runtime}, nil
}

// Execute 编译并执行一次合约调用
func (e *Engine) Execute(ctx context.Context, wasmBytes []byte, call Call) ([]uint64, error) {
	compiled, err := e.runtime.CompileContract(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	instance, err := e.runtime.CreateInstance(ctx, compiled)
	if err != nil {
		return nil, err
	}
	defer func() {
		if dErr := e.runtime.DestroyInstance(context.Background(), instance); dErr != nil && e.logger != nil {
			e.logger.Warnf("销毁WASM实例失败: %v", dErr)
		}
	}()

	if len(call.Memory) > 0 {
		writer, ok := e.runtime.(memoryWriter)
		if !ok {
			return nil, fmt.Errorf("运行时不支持写入实例内存")
		}
		for offset, data := range call.Memory {
			if err := writer.WriteMemory(instance, offset, data); err != nil {
				return nil, err
			}
		}
	}

	results, err := e.runtime.ExecuteFunction(ctx, instance, call.Entry, call.Params)
	if err != nil {
		return nil, err
	}
	if e.logger != nil {
		e.logger.Debugf("合约调用完成: entry=%s, results=%v", call.Entry, results)
	}
	return results, nil
}

// Close 关闭底层运行时
func (e *Engine) Close() error {
	return e.runtime.Close()
}
