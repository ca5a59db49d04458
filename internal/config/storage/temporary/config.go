package temporary

import (
	"os"
	"path/filepath"

	configtypes "github.com/weisyn/zkhost/pkg/types"
)

// TempOptions 验证工作区配置选项
type TempOptions struct {
	TempPath     string `json:"temp_path"`      // 工作区根目录
	DirPerm      int    `json:"dir_perm"`       // 目录权限
	FilePerm     int    `json:"file_perm"`      // 文件权限
	SweepOnStart bool   `json:"sweep_on_start"` // 启动时清理遗留工作区
	MaxActive    int    `json:"max_active"`     // 同时存在的工作区上限
}

// Config 验证工作区配置实现
type Config struct {
	options *TempOptions
}

// New 创建工作区配置
// userConfig 支持 *types.UserStorageConfig；为 nil 时使用默认值
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultTempOptions()

	if userConfig != nil {
		applyUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromOptions 从已构建的选项创建配置（测试和 Provider 使用）
func NewFromOptions(options *TempOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{
		options: options,
	}
}

func createDefaultTempOptions() *TempOptions {
	return &TempOptions{
		TempPath:     getDefaultPath(),
		DirPerm:      defaultDirPerm,
		FilePerm:     defaultFilePerm,
		SweepOnStart: defaultSweepOnStart,
		MaxActive:    defaultMaxActive,
	}
}

// getDefaultPath 默认位于系统临时目录
func getDefaultPath() string {
	return filepath.Join(os.TempDir(), defaultDirName)
}

// applyUserConfig 应用用户配置覆盖默认值
//
// 路径规则：配置了 storage.data_root 时使用 {data_root}/temp/
func applyUserConfig(options *TempOptions, userConfig interface{}) {
	if storageConfig, ok := userConfig.(*configtypes.UserStorageConfig); ok && storageConfig != nil {
		if storageConfig.DataRoot != nil && *storageConfig.DataRoot != "" {
			tempPath := filepath.Join(*storageConfig.DataRoot, "temp")
			if abs, err := filepath.Abs(tempPath); err == nil {
				tempPath = abs
			}
			options.TempPath = tempPath
		}
	}
}

// GetOptions 获取完整的配置选项
func (c *Config) GetOptions() *TempOptions {
	return c.options
}

// GetTempDir 获取工作区根目录
func (c *Config) GetTempDir() string {
	return c.options.TempPath
}

// GetDirectoryPermissions 获取目录权限设置
func (c *Config) GetDirectoryPermissions() os.FileMode {
	return os.FileMode(c.options.DirPerm)
}

// GetFilePermissions 获取文件权限设置
func (c *Config) GetFilePermissions() os.FileMode {
	return os.FileMode(c.options.FilePerm)
}

// IsSweepOnStartEnabled 启动时是否清理遗留工作区
func (c *Config) IsSweepOnStartEnabled() bool {
	return c.options.SweepOnStart
}

// GetMaxActive 同时存在的工作区上限，0 表示不限制
func (c *Config) GetMaxActive() int {
	return c.options.MaxActive
}
