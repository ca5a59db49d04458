// Package zkverify 提供零知识证明验证子系统的配置
package zkverify

// 验证配置默认值
const (
	// defaultMaxPublicInputs 单次验证最多 256 个公开输入
	// 超过该值的 gamma_abc 会让一次宿主调用的配对计算量失控
	defaultMaxPublicInputs = 256

	// defaultMaxBundleSize 单次宿主调用读取的输入合计上限 4MB
	// 带完整电路字节码引用的证明包是最大的输入项
	defaultMaxBundleSize = 4 * 1024 * 1024

	// === 外部工具链 ===

	defaultCircuitDir   = "./circuits/rollup"
	defaultVerifierPath = "./binaries/nargo-linux"
	defaultPackageName  = "rollup"
)

// defaultVerifierArgs nargo 在工作区根目录执行验证
var defaultVerifierArgs = []string{"verify", "--workspace"}

// defaultEnabledCurves 默认启用全部已实现的曲线
var defaultEnabledCurves = []string{"bn254", "bls12-377", "bls12-381"}
