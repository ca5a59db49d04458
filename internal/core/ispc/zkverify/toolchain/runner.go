package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/types"
)

// Runner 在已填充的工作区上执行验证
//
// 返回 error 表示无法得出结论（调用中止）；证明不成立返回 ResultRejected。
type Runner interface {
	Verify(ctx context.Context, ws Workspace) (types.VerificationResult, error)
}

// ==================== 外部进程 ====================

// maxCapturedOutput 子进程 stderr 最多保留的字节数（仅用于调试日志）
const maxCapturedOutput = 4096

// ProcessRunner 以子进程方式调用外部验证器
//
// 子进程的工作目录通过 cmd.Dir 显式指定，不修改宿主进程的当前目录。
type ProcessRunner struct {
	Binary string
	Args   []string
	logger log.Logger
}

var _ Runner = (*ProcessRunner)(nil)

// NewProcessRunner 创建进程执行器
//
// 含路径分隔符的相对路径在此解析为绝对路径，否则 exec 会相对 cmd.Dir 查找。
func NewProcessRunner(logger log.Logger, binary string, args []string) *ProcessRunner {
	if strings.ContainsRune(binary, filepath.Separator) && !filepath.IsAbs(binary) {
		if abs, err := filepath.Abs(binary); err == nil {
			binary = abs
		}
	}
	return &ProcessRunner{Binary: binary, Args: append([]string(nil), args...), logger: logger}
}

// Verify 退出码 0 → 接受；非零退出 → 拒绝；无法启动或被取消 → 中止
func (p *ProcessRunner) Verify(ctx context.Context, ws Workspace) (types.VerificationResult, error) {
	cmd := exec.CommandContext(ctx, p.Binary, p.Args...)
	cmd.Dir = ws.Path
	cmd.Env = []string{"PATH=" + os.Getenv("PATH"), "HOME=" + os.Getenv("HOME")}
	stderr := &limitedBuffer{limit: maxCapturedOutput}
	cmd.Stderr = stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return types.ResultRejected, zkverify.WrapProcessSpawnError(p.Binary, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return types.ResultAccepted, nil
	case errors.As(err, &exitErr):
		if p.logger != nil {
			p.logger.Debugf("外部验证器拒绝证明: exit=%d, stderr=%s", exitErr.ExitCode(), stderr.String())
		}
		return types.ResultRejected, nil
	default:
		return types.ResultRejected, zkverify.WrapProcessSpawnError(p.Binary, err)
	}
}

// limitedBuffer 只保留前 limit 字节，其余丢弃
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if room := l.limit - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}

func (l *limitedBuffer) String() string {
	return l.buf.String()
}

// ==================== 进程内 ====================

// VerifyFunc 进程内验证函数，fsys 是工作区的只读视图
type VerifyFunc func(ctx context.Context, fsys fs.FS, packageName string) (bool, error)

// InProcessRunner 进程内执行器，用于确定性测试与模糊测试
type InProcessRunner struct {
	fn VerifyFunc
}

var _ Runner = (*InProcessRunner)(nil)

// NewInProcessRunner 创建进程内执行器
func NewInProcessRunner(fn VerifyFunc) *InProcessRunner {
	return &InProcessRunner{fn: fn}
}

// Verify 实现 Runner
func (r *InProcessRunner) Verify(ctx context.Context, ws Workspace) (types.VerificationResult, error) {
	if r.fn == nil {
		return types.ResultRejected, zkverify.WrapInternalError("进程内验证函数未设置")
	}
	ok, err := r.fn(ctx, os.DirFS(ws.Path), ws.PackageName)
	if err != nil {
		if zkverify.IsFatal(err) {
			return types.ResultRejected, err
		}
		return types.ResultRejected, zkverify.WrapInternalError(fmt.Sprintf("进程内验证失败: %v", err))
	}
	return types.ResultFromBool(ok), nil
}
