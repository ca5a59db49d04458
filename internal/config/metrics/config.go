package metrics

import (
	"strings"
	"time"

	configtypes "github.com/weisyn/zkhost/pkg/types"
)

// MetricsOptions 指标端点配置选项
type MetricsOptions struct {
	ListenAddr             string `json:"listen_addr"`              // 监听地址，空表示关闭
	Path                   string `json:"path"`                     // 抓取路径
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds"` // 停止超时
}

// Config 指标配置实现
type Config struct {
	options *MetricsOptions
}

// New 创建指标配置，userConfig 为 nil 时使用默认值
func New(userConfig *configtypes.UserMetricsConfig) *Config {
	options := &MetricsOptions{
		ListenAddr:             defaultListenAddr,
		Path:                   defaultPath,
		ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
	}

	if userConfig != nil {
		if userConfig.ListenAddr != nil {
			options.ListenAddr = strings.TrimSpace(*userConfig.ListenAddr)
		}
		if userConfig.Path != nil && strings.HasPrefix(*userConfig.Path, "/") {
			options.Path = *userConfig.Path
		}
	}

	return &Config{options: options}
}

// NewFromOptions 从已构建的选项创建配置
func NewFromOptions(options *MetricsOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// GetOptions 获取完整的配置选项
func (c *Config) GetOptions() *MetricsOptions {
	return c.options
}

// IsEnabled 是否开启指标端点
func (c *Config) IsEnabled() bool {
	return c.options.ListenAddr != ""
}

// GetListenAddr 获取监听地址
func (c *Config) GetListenAddr() string {
	return c.options.ListenAddr
}

// GetPath 获取抓取路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// GetShutdownTimeout 获取停止超时
func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.options.ShutdownTimeoutSeconds) * time.Second
}
