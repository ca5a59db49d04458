package zkverify

import (
	"path/filepath"

	configtypes "github.com/weisyn/zkhost/pkg/types"
)

// ToolchainOptions 外部工具链验证选项
type ToolchainOptions struct {
	CircuitDir    string   `json:"circuit_dir"`
	VerifierPath  string   `json:"verifier_path"`
	VerifierArgs  []string `json:"verifier_args"`
	PackageName   string   `json:"package_name"`
	WorkspaceRoot string   `json:"workspace_root"` // 为空时使用 storage 的工作区根目录
}

// ReceiptOptions zkVM 收据验证选项
type ReceiptOptions struct {
	VerifyingKeyPath string `json:"verifying_key_path"` // 为空表示未配置，收据验证调用将中止
}

// ZKVerifyOptions 验证子系统配置选项
type ZKVerifyOptions struct {
	EnabledCurves   []configtypes.CurveTag `json:"enabled_curves"`
	MaxPublicInputs int                    `json:"max_public_inputs"`
	MaxBundleSize   uint32                 `json:"max_bundle_size"`
	CircuitSetDir   string                 `json:"circuit_set_dir"` // 配对后端见证重算使用的电路制品目录，为空表示不支持重算
	Toolchain       ToolchainOptions       `json:"toolchain"`
	Receipt         ReceiptOptions         `json:"receipt"`
}

// Config 验证配置实现
type Config struct {
	options *ZKVerifyOptions
}

// New 创建验证配置，userConfig 支持 *types.UserZKVerifyConfig
func New(userConfig interface{}) *Config {
	options := createDefaultOptions()
	if userConfig != nil {
		applyUserConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 从已构建的选项创建配置
func NewFromOptions(options *ZKVerifyOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

func createDefaultOptions() *ZKVerifyOptions {
	curves := make([]configtypes.CurveTag, 0, len(defaultEnabledCurves))
	for _, name := range defaultEnabledCurves {
		tag, _ := configtypes.ParseCurveTag(name)
		curves = append(curves, tag)
	}
	return &ZKVerifyOptions{
		EnabledCurves:   curves,
		MaxPublicInputs: defaultMaxPublicInputs,
		MaxBundleSize:   defaultMaxBundleSize,
		Toolchain: ToolchainOptions{
			CircuitDir:   defaultCircuitDir,
			VerifierPath: defaultVerifierPath,
			VerifierArgs: append([]string(nil), defaultVerifierArgs...),
			PackageName:  defaultPackageName,
		},
	}
}

// applyUserConfig 只处理 JSON 中实际出现的字段
// 未知曲线名称被忽略（由启动日志提示），不会导致启动失败
func applyUserConfig(options *ZKVerifyOptions, userConfig interface{}) {
	cfg, ok := userConfig.(*configtypes.UserZKVerifyConfig)
	if !ok || cfg == nil {
		return
	}

	if cfg.EnabledCurves != nil {
		curves := make([]configtypes.CurveTag, 0, len(cfg.EnabledCurves))
		for _, name := range cfg.EnabledCurves {
			if tag, ok := configtypes.ParseCurveTag(name); ok {
				curves = append(curves, tag)
			}
		}
		options.EnabledCurves = curves
	}
	if cfg.MaxPublicInputs != nil && *cfg.MaxPublicInputs > 0 {
		options.MaxPublicInputs = *cfg.MaxPublicInputs
	}
	if cfg.MaxBundleSize != nil && *cfg.MaxBundleSize > 0 {
		options.MaxBundleSize = *cfg.MaxBundleSize
	}

	if cfg.CircuitSetDir != nil {
		options.CircuitSetDir = *cfg.CircuitSetDir
	}

	if tc := cfg.Toolchain; tc != nil {
		if tc.CircuitDir != nil {
			options.Toolchain.CircuitDir = *tc.CircuitDir
		}
		if tc.VerifierPath != nil {
			options.Toolchain.VerifierPath = *tc.VerifierPath
		}
		if tc.VerifierArgs != nil {
			options.Toolchain.VerifierArgs = append([]string(nil), tc.VerifierArgs...)
		}
		if tc.PackageName != nil && *tc.PackageName != "" {
			options.Toolchain.PackageName = *tc.PackageName
		}
		if tc.WorkspaceRoot != nil {
			options.Toolchain.WorkspaceRoot = filepath.Clean(*tc.WorkspaceRoot)
		}
	}

	if rc := cfg.Receipt; rc != nil && rc.VerifyingKeyPath != nil {
		options.Receipt.VerifyingKeyPath = *rc.VerifyingKeyPath
	}
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *ZKVerifyOptions {
	return c.options
}

// IsCurveEnabled 曲线是否启用
func (c *Config) IsCurveEnabled(tag configtypes.CurveTag) bool {
	for _, t := range c.options.EnabledCurves {
		if t == tag {
			return true
		}
	}
	return false
}

// GetMaxPublicInputs 公开输入数量上限
func (c *Config) GetMaxPublicInputs() int {
	return c.options.MaxPublicInputs
}

// GetMaxBundleSize 宿主输入缓冲区上限
func (c *Config) GetMaxBundleSize() uint32 {
	return c.options.MaxBundleSize
}

// GetCircuitSetDir 配对电路制品目录
func (c *Config) GetCircuitSetDir() string {
	return c.options.CircuitSetDir
}

// GetToolchain 外部工具链配置
func (c *Config) GetToolchain() ToolchainOptions {
	return c.options.Toolchain
}

// GetReceipt 收据验证配置
func (c *Config) GetReceipt() ReceiptOptions {
	return c.options.Receipt
}
