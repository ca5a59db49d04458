// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用名称
	AppName *string `json:"app_name,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 零知识证明验证配置
	ZKVerify *UserZKVerifyConfig `json:"zkverify,omitempty"`

	// 存储配置（验证工作区所在的根目录）
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 指标端点配置
	Metrics *UserMetricsConfig `json:"metrics,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否同时输出到控制台
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录，工作区位于 {data_root}/temp
}

// UserMetricsConfig 用户指标端点配置
type UserMetricsConfig struct {
	ListenAddr *string `json:"listen_addr,omitempty"` // 例如 127.0.0.1:9464，未设置则不开启
	Path       *string `json:"path,omitempty"`        // 默认 /metrics
}

// UserZKVerifyConfig 用户零知识证明验证配置
type UserZKVerifyConfig struct {
	// EnabledCurves 启用的曲线名称（bn254 / bls12-377 / bls12-381）
	EnabledCurves []string `json:"enabled_curves,omitempty"`

	// MaxPublicInputs 单次验证允许的最大公开输入数量
	MaxPublicInputs *int `json:"max_public_inputs,omitempty"`

	// MaxBundleSize 单次宿主调用读取的输入合计最大字节数
	MaxBundleSize *uint32 `json:"max_bundle_size,omitempty"`

	// CircuitSetDir 运营方电路制品目录（<sha256>.r1cs 与 <sha256>.json）
	CircuitSetDir *string `json:"circuit_set_dir,omitempty"`

	// Toolchain 外部工具链验证配置
	Toolchain *UserToolchainConfig `json:"toolchain,omitempty"`

	// Receipt zkVM 收据验证配置
	Receipt *UserReceiptConfig `json:"receipt,omitempty"`
}

// UserToolchainConfig 外部工具链（nargo）配置
type UserToolchainConfig struct {
	CircuitDir    *string  `json:"circuit_dir,omitempty"`    // 受信任电路目录（包含 src/ 与 Nargo.toml）
	VerifierPath  *string  `json:"verifier_path,omitempty"`  // 验证器可执行文件路径
	VerifierArgs  []string `json:"verifier_args,omitempty"`  // 验证器参数
	PackageName   *string  `json:"package_name,omitempty"`   // 证明文件名 proofs/<package>.proof
	WorkspaceRoot *string  `json:"workspace_root,omitempty"` // 覆盖工作区根目录
}

// UserReceiptConfig zkVM 收据配置
type UserReceiptConfig struct {
	VerifyingKeyPath *string `json:"verifying_key_path,omitempty"` // 收据验证密钥文件（规范 CBOR）
}
