package toolchain

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
)

// ==================== 工作区布局 ====================
//
//   <workspace>/
//     Nargo.toml               构建清单（从电路目录复制）
//     src/**                   受信电路源码（递归复制）
//     Verifier.toml            调用方验证清单
//     proofs/<package>.proof   调用方证明

const (
	BuildManifestName    = "Nargo.toml"
	SourceDirName        = "src"
	VerifierManifestName = "Verifier.toml"
	ProofsDirName        = "proofs"
	ProofFileSuffix      = ".proof"

	workspaceDirPerm  os.FileMode = 0o700
	workspaceFilePerm os.FileMode = 0o600
)

// Workspace 一次验证调用独占的工作区
type Workspace struct {
	// Path 工作区根目录
	Path string
	// PackageName 电路包名，决定证明文件名
	PackageName string
}

// ProofPath 证明文件的相对路径
func (w Workspace) ProofPath() string {
	return filepath.Join(ProofsDirName, w.PackageName+ProofFileSuffix)
}

// checkCircuitDir 宿主侧电路目录必须包含构建清单与源码树
func checkCircuitDir(circuitDir string) error {
	manifest := filepath.Join(circuitDir, BuildManifestName)
	info, err := os.Stat(manifest)
	if err != nil {
		return zkverify.WrapMissingArtifactError(manifest, err)
	}
	if !info.Mode().IsRegular() {
		return zkverify.WrapMissingArtifactError(manifest, fmt.Errorf("不是普通文件"))
	}

	src := filepath.Join(circuitDir, SourceDirName)
	info, err = os.Stat(src)
	if err != nil {
		return zkverify.WrapMissingArtifactError(src, err)
	}
	if !info.IsDir() {
		return zkverify.WrapMissingArtifactError(src, fmt.Errorf("不是目录"))
	}
	return nil
}

// populate 按固定布局填充工作区
func populate(ws Workspace, circuitDir string, bundle *Bundle) error {
	if err := copyFile(filepath.Join(circuitDir, BuildManifestName), filepath.Join(ws.Path, BuildManifestName)); err != nil {
		return err
	}
	if err := copyTree(filepath.Join(circuitDir, SourceDirName), filepath.Join(ws.Path, SourceDirName)); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(ws.Path, VerifierManifestName), bundle.Manifest, workspaceFilePerm); err != nil {
		return zkverify.WrapWorkspaceError("write "+VerifierManifestName, err)
	}
	if err := os.Mkdir(filepath.Join(ws.Path, ProofsDirName), workspaceDirPerm); err != nil {
		return zkverify.WrapWorkspaceError("mkdir "+ProofsDirName, err)
	}
	if err := os.WriteFile(filepath.Join(ws.Path, ws.ProofPath()), bundle.Proof, workspaceFilePerm); err != nil {
		return zkverify.WrapWorkspaceError("write proof", err)
	}
	return nil
}

// copyTree 递归复制目录，只复制目录与普通文件
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return zkverify.WrapWorkspaceError("walk "+path, err)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zkverify.WrapWorkspaceError("rel "+path, err)
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, workspaceDirPerm); err != nil {
				return zkverify.WrapWorkspaceError("mkdir "+rel, err)
			}
			return nil
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return zkverify.WrapWorkspaceError("copy "+rel, fmt.Errorf("不支持的文件类型: %s", d.Type()))
		}
	})
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return zkverify.WrapWorkspaceError("read "+src, err)
	}
	if err := os.WriteFile(dst, data, workspaceFilePerm); err != nil {
		return zkverify.WrapWorkspaceError("write "+dst, err)
	}
	return nil
}
