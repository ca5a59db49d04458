package app

import (
	"fmt"

	config "github.com/weisyn/zkhost/internal/config"
	configif "github.com/weisyn/zkhost/pkg/interfaces/config"
	"github.com/weisyn/zkhost/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（优先级高于configFilePath）
	embeddedConfig []byte

	// 用户配置（优先级最高）
	appConfig *types.AppConfig
}

// 编译时校验options是否实现了config.AppOptions接口
var _ configif.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 设置嵌入的配置内容（优先级高于WithConfigFile）
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithAppConfig 直接使用已解析的配置，跳过文件加载
func WithAppConfig(appConfig *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = appConfig
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// resolve 按优先级确定最终配置：appConfig > embeddedConfig > configFilePath > 默认
// 并在启动前校验
func (o *options) resolve() error {
	if err := o.load(); err != nil {
		return err
	}
	return config.ValidateAppConfig(o.appConfig)
}

func (o *options) load() error {
	if o.appConfig != nil {
		return nil
	}

	switch {
	case len(o.embeddedConfig) > 0:
		appConfig, err := config.ParseAppConfig(o.embeddedConfig)
		if err != nil {
			return fmt.Errorf("解析嵌入配置失败: %w", err)
		}
		o.appConfig = appConfig
	case o.configFilePath != "":
		appConfig, err := config.LoadAppConfig(o.configFilePath)
		if err != nil {
			return err
		}
		o.appConfig = appConfig
	default:
		o.appConfig = &types.AppConfig{}
	}
	return nil
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
