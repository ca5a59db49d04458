// Package hostabi provides error definitions for host ABI operations.
package hostabi

import (
	"errors"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
)

// ============================================================================
// Host ABI 状态码定义
// ============================================================================
//
// 🎯 **设计原则**：
//   - 宿主函数只能返回数值，0 表示结果字节已写入输出缓冲区
//   - 任何非零状态码都会让合约 SDK 回滚整个调用
//   - 状态码与验证结果（0/1）正交，证明不成立不是错误
//
// 📋 **状态码范围**：
//   - 1000-1999: 参数错误（合约可修复）
//   - 3000-3999: 证明验证中止
//   - 5000-5999: 系统错误（内部问题）

const (
	// StatusOK 调用完成，输出缓冲区持有合法结果字节
	StatusOK = 0

	// ==================== 参数错误 (1000-1999) ====================

	// ErrInvalidParameter 参数无效
	// 用途：out_len 不为 1、输入长度为 0
	ErrInvalidParameter = 1001

	// ErrBufferTooLarge 输入缓冲区超过宿主读取上限
	ErrBufferTooLarge = 1005

	// ==================== 验证中止 (3000-3999) ====================

	// ErrUnsupportedBackend 未注册的后端标识
	ErrUnsupportedBackend = 3001

	// ErrMalformedProof 证明材料格式错误
	ErrMalformedProof = 3002

	// ErrMissingArtifact 宿主侧电路制品缺失
	ErrMissingArtifact = 3003

	// ErrWorkspaceFailed 验证工作区 I/O 失败
	ErrWorkspaceFailed = 3004

	// ErrProcessSpawnFailed 外部验证进程无法启动
	ErrProcessSpawnFailed = 3005

	// ==================== 系统错误 (5000-5999) ====================

	// ErrInternalError 内部错误
	ErrInternalError = 5001

	// ErrMemoryAccessFailed 内存访问失败
	// 用途：指针越界、模块未导出内存
	ErrMemoryAccessFailed = 5004
)

// GetErrorMessage 获取状态码对应的错误消息
//
// 📋 **参数**：
//   - code: 状态码
//
// 🔧 **返回值**：
//   - string: 错误消息（中文，用于日志和调试）
func GetErrorMessage(code uint32) string {
	switch code {
	case StatusOK:
		return "成功"
	case ErrInvalidParameter:
		return "参数无效"
	case ErrBufferTooLarge:
		return "缓冲区过大"
	case ErrUnsupportedBackend:
		return "不支持的验证后端"
	case ErrMalformedProof:
		return "证明材料格式错误"
	case ErrMissingArtifact:
		return "电路制品缺失"
	case ErrWorkspaceFailed:
		return "验证工作区失败"
	case ErrProcessSpawnFailed:
		return "验证进程启动失败"
	case ErrInternalError:
		return "内部错误"
	case ErrMemoryAccessFailed:
		return "内存访问失败"
	default:
		return "未知错误"
	}
}

// IsCallerFault 状态码是否由调用方输入引起（参数、缓冲区、后端标识、证明材料）
func IsCallerFault(status uint32) bool {
	switch {
	case status >= 1000 && status < 2000:
		return true
	case status == ErrUnsupportedBackend, status == ErrMalformedProof:
		return true
	default:
		return false
	}
}

// StatusCode 把验证层的中止错误映射为宿主状态码
//
// nil 映射为 StatusOK；无法识别的错误按内部错误处理。
func StatusCode(err error) uint32 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, zkverify.ErrUnsupportedBackend):
		return ErrUnsupportedBackend
	case errors.Is(err, zkverify.ErrMalformedBundle):
		return ErrMalformedProof
	case errors.Is(err, zkverify.ErrMissingArtifact):
		return ErrMissingArtifact
	case errors.Is(err, zkverify.ErrWorkspace):
		return ErrWorkspaceFailed
	case errors.Is(err, zkverify.ErrProcessSpawn):
		return ErrProcessSpawnFailed
	default:
		return ErrInternalError
	}
}
