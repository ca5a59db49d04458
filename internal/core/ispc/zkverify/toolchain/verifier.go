// Package toolchain 实现外部工具链（Noir/nargo 风格）验证后端。
//
// 🎯 **流程**：
//  1. 严格解码证明包 {version, verifier_manifest, proof}
//  2. 检查宿主侧电路目录（Nargo.toml + src/）
//  3. 创建唯一命名的临时工作区并按固定布局填充
//  4. 通过 Runner 执行验证（默认启动外部进程）
//  5. 无论结果如何，defer 删除工作区
package toolchain

import (
	"context"

	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/zkhost/pkg/types"
)

// workspacePrefix 工作区目录名前缀
const workspacePrefix = "noir"

// Verifier 外部工具链验证后端
type Verifier struct {
	logger      log.Logger
	store       storage.TempStore
	runner      Runner
	circuitDir  string
	packageName string
}

var _ ispcif.BackendVerifier = (*Verifier)(nil)

// NewVerifier 创建工具链后端；runner 为空时按配置启动外部验证进程
func NewVerifier(logger log.Logger, cfg *zkverifyconfig.Config, store storage.TempStore, runner Runner) *Verifier {
	if cfg == nil {
		cfg = zkverifyconfig.New(nil)
	}
	opts := cfg.GetToolchain()
	if runner == nil {
		runner = NewProcessRunner(logger, opts.VerifierPath, opts.VerifierArgs)
	}
	return &Verifier{
		logger:      logger,
		store:       store,
		runner:      runner,
		circuitDir:  opts.CircuitDir,
		packageName: opts.PackageName,
	}
}

// Backend 实现 BackendVerifier
func (v *Verifier) Backend() types.BackendTag {
	return types.BackendToolchain
}

// Verify 解码工具链证明包并在临时工作区中验证
func (v *Verifier) Verify(ctx context.Context, payload []byte) (types.VerificationResult, error) {
	bundle, err := DecodeBundle(payload)
	if err != nil {
		return types.ResultRejected, err
	}
	if err := checkCircuitDir(v.circuitDir); err != nil {
		return types.ResultRejected, err
	}
	if v.store == nil {
		return types.ResultRejected, zkverify.WrapInternalError("工作区存储未配置")
	}

	dir, err := v.store.CreateTempDir(ctx, workspacePrefix)
	if err != nil {
		return types.ResultRejected, zkverify.WrapWorkspaceError("create", err)
	}
	defer func() {
		if rmErr := v.store.RemoveTempDir(context.Background(), dir.ID); rmErr != nil && v.logger != nil {
			v.logger.Warnf("删除验证工作区失败: path=%s, err=%v", dir.Path, rmErr)
		}
	}()

	ws := Workspace{Path: dir.Path, PackageName: v.packageName}
	if err := populate(ws, v.circuitDir, bundle); err != nil {
		return types.ResultRejected, err
	}

	result, err := v.runner.Verify(ctx, ws)
	if err != nil {
		return types.ResultRejected, err
	}
	if v.logger != nil {
		v.logger.Debugf("工具链验证完成: workspace=%s, result=%d", dir.ID, result)
	}
	return result, nil
}
