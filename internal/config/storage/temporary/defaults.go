// Package temporary provides default configuration values for verification workspaces.
package temporary

// 验证工作区默认值
const (
	// defaultDirName 默认工作区根目录名（位于系统临时目录下）
	defaultDirName = "zkhost-workspaces"

	// defaultDirPerm 工作区目录只允许当前用户访问
	defaultDirPerm = 0700

	// defaultFilePerm 工作区文件权限
	defaultFilePerm = 0600

	// defaultSweepOnStart 启动时清理上次进程崩溃遗留的工作区
	defaultSweepOnStart = true

	// defaultMaxActive 同时存在的工作区数量上限，0 表示不限制
	defaultMaxActive = 0
)
