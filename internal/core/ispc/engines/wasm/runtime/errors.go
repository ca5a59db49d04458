// Package runtime provides the wazero-based WASM runtime that hosts contract calls.
package runtime

import (
	"errors"
)

// ==================== 运行时错误定义 ====================
//
// 调用方通过 errors.Is 判断类别；具体原因以 %v 附加在包装消息中。

var (
	// ErrCompileFailed 编译失败
	ErrCompileFailed = errors.New("WASM合约编译失败")

	// ErrInstantiateFailed 实例化失败
	ErrInstantiateFailed = errors.New("WASM合约实例化失败")

	// ErrExecuteFailed 执行失败（包括客户代码 trap 与超时）
	ErrExecuteFailed = errors.New("WASM合约执行失败")

	// ErrFunctionNotFound 导出函数未找到
	ErrFunctionNotFound = errors.New("WASM导出函数未找到")

	// ErrInvalidSignature 参数个数与导出函数签名不符
	ErrInvalidSignature = errors.New("WASM函数签名不匹配")

	// ErrMemoryAccess 内存访问越界或实例未导出内存
	ErrMemoryAccess = errors.New("WASM内存访问失败")

	// ErrInvalidParams 调用参数无效
	ErrInvalidParams = errors.New("WASM调用参数无效")
)
