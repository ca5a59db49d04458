package zkverify

import (
	"errors"
	"fmt"

	"github.com/weisyn/zkhost/pkg/types"
)

// ============================================================================
//                            验证中止错误定义
// ============================================================================
//
// 以下错误均为“致命”错误：宿主函数据此返回非零状态码，合约调用回滚。
// 证明不成立不属于错误，而是 ResultRejected。

var (
	// ErrUnsupportedBackend 未知或未注册的证明后端
	ErrUnsupportedBackend = errors.New("unsupported proof backend")

	// ErrMalformedBundle 证明包、密钥或输入格式错误
	ErrMalformedBundle = errors.New("malformed proof material")

	// ErrMissingArtifact 宿主侧缺少验证所需的制品（电路目录、构建清单、验证密钥）
	ErrMissingArtifact = errors.New("missing verification artifact")

	// ErrWorkspace 临时工作区创建、写入或复制失败
	ErrWorkspace = errors.New("workspace i/o failure")

	// ErrProcessSpawn 外部验证进程无法启动
	ErrProcessSpawn = errors.New("verifier process spawn failure")

	// ErrInternal 内部不变量被破坏
	ErrInternal = errors.New("internal verification error")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapUnsupportedBackendError 包装未支持后端错误
func WrapUnsupportedBackendError(tag types.BackendTag) error {
	return fmt.Errorf("%w: backend=%s", ErrUnsupportedBackend, tag)
}

// WrapMalformedError 包装格式错误
func WrapMalformedError(what string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrMalformedBundle, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedBundle, what, cause)
}

// WrapMissingArtifactError 包装缺失制品错误
func WrapMissingArtifactError(artifact string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, artifact)
	}
	return fmt.Errorf("%w: %s: %v", ErrMissingArtifact, artifact, cause)
}

// WrapWorkspaceError 包装工作区 I/O 错误
func WrapWorkspaceError(op string, cause error) error {
	return fmt.Errorf("%w: op=%s, cause=%v", ErrWorkspace, op, cause)
}

// WrapProcessSpawnError 包装进程启动错误
func WrapProcessSpawnError(binary string, cause error) error {
	return fmt.Errorf("%w: binary=%s, cause=%v", ErrProcessSpawn, binary, cause)
}

// WrapInternalError 包装内部错误
func WrapInternalError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInternal, reason)
}

// IsFatal 判断错误是否属于已知的验证中止类别
func IsFatal(err error) bool {
	switch {
	case errors.Is(err, ErrUnsupportedBackend),
		errors.Is(err, ErrMalformedBundle),
		errors.Is(err, ErrMissingArtifact),
		errors.Is(err, ErrWorkspace),
		errors.Is(err, ErrProcessSpawn),
		errors.Is(err, ErrInternal):
		return true
	default:
		return false
	}
}
