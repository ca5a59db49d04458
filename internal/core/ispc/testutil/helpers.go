// Package testutil 提供 ISPC 验证模块测试的辅助工具
//
// ⚠️ **注意**：本文件不包含依赖具体组件的辅助函数，避免循环依赖。
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	temporaryconfig "github.com/weisyn/zkhost/internal/config/storage/temporary"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/storage"
)

var _ storage.TempStore = (*FailingTempStore)(nil)

// NewTestLogger 创建测试用的Logger
func NewTestLogger() log.Logger {
	return &MockLogger{}
}

// NewTestBehavioralLogger 创建行为Logger（记录调用）
func NewTestBehavioralLogger() *BehavioralMockLogger {
	return &BehavioralMockLogger{
		logs: make([]string, 0),
	}
}

// NewTestTempConfig 创建工作区根目录位于 t.TempDir() 的配置
func NewTestTempConfig(t testing.TB) *temporaryconfig.Config {
	t.Helper()
	opts := temporaryconfig.New(nil).GetOptions()
	opts.TempPath = filepath.Join(t.TempDir(), "workspaces")
	return temporaryconfig.NewFromOptions(opts)
}

// SnapshotDir 返回目录下所有条目的相对路径（排序后），用于断言无残留
func SnapshotDir(t testing.TB, root string) []string {
	t.Helper()
	var entries []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel != "." {
			entries = append(entries, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(entries)
	return entries
}

// WriteTree 按 相对路径->内容 写入文件树
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
