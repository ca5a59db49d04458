// Package ispc provides zero-knowledge verification interfaces for host functions.
package ispc

import (
	"context"

	"github.com/weisyn/zkhost/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════════════════════════
// ZKVerifier - 零知识证明验证接口（公共接口）
// ════════════════════════════════════════════════════════════════════════════════════════════════
//
// 📋 **接口说明**：
//   - 由 internal/core/ispc/zkverify 及其后端子包实现
//   - 供宿主函数层（hostabi）调用，合约只能通过宿主函数间接使用
//
// 🔒 **结果约定**：
//   - 输入格式错误、缺失制品、工作区/进程故障 → 返回 error（调用中止）
//   - 结构合法但证明不成立 → ResultRejected + nil
//   - 证明成立 → ResultAccepted + nil
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

// BackendVerifier 单个证明后端
//
// 实现必须无副作用，且不得在调用之间缓存任何由输入派生的状态。
type BackendVerifier interface {
	// Backend 返回该实现负责的后端标识
	Backend() types.BackendTag

	// Verify 解码并验证后端专属的证明包
	Verify(ctx context.Context, payload []byte) (types.VerificationResult, error)
}

// Dispatcher 验证分发器
type Dispatcher interface {
	// Dispatch 解码通用信封 {version, backend, payload} 后分发
	Dispatch(ctx context.Context, envelope []byte) (types.VerificationResult, error)

	// DispatchBackend 按显式后端标识分发
	DispatchBackend(ctx context.Context, backend types.BackendTag, payload []byte) (types.VerificationResult, error)

	// Backends 返回已注册的后端（按标识升序）
	Backends() []types.BackendTag
}
