// Package zkverify 实现多后端零知识证明验证的分发层。
//
// 🎯 **核心职责**：
//   - 解码通用信封，按后端标识把证明包路由到具体验证器
//   - 统一“中止 / 拒绝 / 接受”三态语义并记录指标
//
// 📋 **后端实现**：
//   - pairing：Groth16 配对验证（BN254 / BLS12-377 / BLS12-381）
//   - toolchain：外部工具链（Noir/nargo）进程验证
//   - receipt：zkVM 收据验证
//
// ⚠️ 分发器不缓存任何后端状态，每次调用都从原始字节重新解码。
package zkverify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/types"
)

// Dispatcher 验证分发器
type Dispatcher struct {
	logger log.Logger

	mu       sync.RWMutex
	backends map[types.BackendTag]ispcif.BackendVerifier
}

var _ ispcif.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher 创建分发器并注册给定后端
func NewDispatcher(logger log.Logger, verifiers ...ispcif.BackendVerifier) (*Dispatcher, error) {
	d := &Dispatcher{
		logger:   logger,
		backends: make(map[types.BackendTag]ispcif.BackendVerifier, len(verifiers)),
	}
	for _, v := range verifiers {
		if err := d.Register(v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Register 注册后端；同一标识只能注册一次
func (d *Dispatcher) Register(v ispcif.BackendVerifier) error {
	if v == nil {
		return fmt.Errorf("后端验证器为空")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	tag := v.Backend()
	if _, exists := d.backends[tag]; exists {
		return fmt.Errorf("后端已注册: %s", tag)
	}
	d.backends[tag] = v
	if d.logger != nil {
		d.logger.Debugf("注册验证后端: %s", tag)
	}
	return nil
}

// Backends 返回已注册的后端标识（升序）
func (d *Dispatcher) Backends() []types.BackendTag {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tags := make([]types.BackendTag, 0, len(d.backends))
	for tag := range d.backends {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Dispatch 解码通用信封后分发
func (d *Dispatcher) Dispatch(ctx context.Context, envelope []byte) (types.VerificationResult, error) {
	env, err := DecodeEnvelope(envelope)
	if err != nil {
		if d.logger != nil {
			d.logger.Debugf("通用信封解码失败: %v", err)
		}
		return types.ResultRejected, err
	}
	return d.DispatchBackend(ctx, types.BackendTag(env.Backend), env.Payload)
}

// DispatchBackend 按后端标识分发
//
// 返回 error 时结果值无意义，调用方必须中止。
func (d *Dispatcher) DispatchBackend(ctx context.Context, backend types.BackendTag, payload []byte) (result types.VerificationResult, err error) {
	start := time.Now()
	defer func() {
		observe(backend, result, err, time.Since(start))
	}()

	d.mu.RLock()
	verifier, ok := d.backends[backend]
	d.mu.RUnlock()
	if !ok {
		return types.ResultRejected, WrapUnsupportedBackendError(backend)
	}

	result, err = verifier.Verify(ctx, payload)
	if err != nil {
		if d.logger != nil {
			d.logger.Debugf("验证中止: backend=%s, payload=%d字节, err=%v", backend, len(payload), err)
		}
		return types.ResultRejected, err
	}
	if !result.Valid() {
		return types.ResultRejected, WrapInternalError(fmt.Sprintf("后端 %s 返回非法结果值 %d", backend, result))
	}

	if d.logger != nil {
		d.logger.Debugf("验证完成: backend=%s, result=%d, 耗时=%v", backend, result, time.Since(start))
	}
	return result, nil
}
