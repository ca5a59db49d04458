package types

import (
	"fmt"
	"math/big"
)

// ==================== 零知识证明验证类型 ====================
//
// 🎯 宿主函数层与各验证后端之间共享的数据模型。
// 所有取值都来自不可信的合约输入，解码时必须显式校验。

// BackendTag 证明后端标识
type BackendTag uint8

const (
	// BackendGroth16 配对型电路 SNARK（Groth16）
	BackendGroth16 BackendTag = 1
	// BackendToolchain 外部工具链（Noir/nargo）
	BackendToolchain BackendTag = 2
	// BackendReceipt zkVM 收据（RISC Zero 风格）
	BackendReceipt BackendTag = 3
)

// String 返回后端名称，用于日志和指标标签
func (b BackendTag) String() string {
	switch b {
	case BackendGroth16:
		return "groth16"
	case BackendToolchain:
		return "toolchain"
	case BackendReceipt:
		return "receipt"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(b))
	}
}

// CurveTag 配对友好曲线标识
type CurveTag uint8

const (
	CurveBN254     CurveTag = 1
	CurveBLS12_377 CurveTag = 2
	CurveBLS12_381 CurveTag = 3
)

// String 返回曲线名称（与配置文件中的写法一致）
func (c CurveTag) String() string {
	switch c {
	case CurveBN254:
		return "bn254"
	case CurveBLS12_377:
		return "bls12-377"
	case CurveBLS12_381:
		return "bls12-381"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCurveTag 按名称解析曲线标识
func ParseCurveTag(name string) (CurveTag, bool) {
	switch name {
	case "bn254":
		return CurveBN254, true
	case "bls12-377":
		return CurveBLS12_377, true
	case "bls12-381":
		return CurveBLS12_381, true
	default:
		return 0, false
	}
}

// BundleLayout 配对证明包的编码布局
//
// ⚠️ 布局只能由调用方显式标注，绝不根据内容推断。
type BundleLayout uint8

const (
	// LayoutKeyed 单一映射体（按整数键）
	LayoutKeyed BundleLayout = 1
	// LayoutPositional 四段独立缓冲区 [circuit, points, inputs, gamma_abc]
	LayoutPositional BundleLayout = 2
)

// VerificationResult 写回合约的单字节结果
type VerificationResult byte

const (
	ResultRejected VerificationResult = 0
	ResultAccepted VerificationResult = 1
)

// Valid 结果只允许 0 或 1
func (r VerificationResult) Valid() bool {
	return r == ResultRejected || r == ResultAccepted
}

// ResultFromBool 将布尔判定转换为结果字节
func ResultFromBool(ok bool) VerificationResult {
	if ok {
		return ResultAccepted
	}
	return ResultRejected
}

// NamedInput 命名的电路输入赋值（按声明顺序排列）
type NamedInput struct {
	Name  string
	Value *big.Int
}

// ProgramIDWords zkVM 程序标识的字数
const ProgramIDWords = 8

// ProgramID zkVM 客体程序的 8 字标识（image id）
type ProgramID [ProgramIDWords]uint32
