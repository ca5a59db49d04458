// Package testutil 提供 ISPC 验证模块测试的辅助工具
//
// 🧪 **测试数据Fixtures**
//
// 本文件用 gnark 在测试进程内生成真实的 Groth16 电路、密钥与证明。
// 只依赖 gnark，不依赖任何验证后端包，避免循环依赖。

package testutil

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/stretchr/testify/require"
)

// ==================== 测试电路 ====================

// SquareCircuit x*x == y，y 为公开输入
type SquareCircuit struct {
	X frontend.Variable
	Y frontend.Variable `gnark:",public"`
}

// Define 约束定义
func (c *SquareCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.X, c.X), c.Y)
	return nil
}

// SecretSquareCircuit x*x == 9，没有公开输入
type SecretSquareCircuit struct {
	X frontend.Variable
}

// Define 约束定义
func (c *SecretSquareCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.X, c.X), 9)
	return nil
}

// ClaimCircuitInputs 收据声明电路的公开输入数量：8 个程序字 + 日志摘要高低两半
const ClaimCircuitInputs = 10

// ClaimCircuit 收据声明电路：私有 Sum 等于全部公开输入之和
type ClaimCircuit struct {
	Claim [ClaimCircuitInputs]frontend.Variable `gnark:",public"`
	Sum   frontend.Variable
}

// Define 约束定义
func (c *ClaimCircuit) Define(api frontend.API) error {
	acc := frontend.Variable(0)
	for i := range c.Claim {
		acc = api.Add(acc, c.Claim[i])
	}
	api.AssertIsEqual(acc, c.Sum)
	return nil
}

// ==================== Groth16 制品 ====================

// Groth16Artifacts 一次可信设置的产物
type Groth16Artifacts struct {
	Curve ecc.ID
	CCS   constraint.ConstraintSystem
	PK    groth16.ProvingKey
	VK    groth16.VerifyingKey
}

// SetupGroth16 编译电路并执行可信设置
func SetupGroth16(t testing.TB, curve ecc.ID, circuit frontend.Circuit) *Groth16Artifacts {
	t.Helper()
	ccs, err := frontend.Compile(curve.ScalarField(), r1cs.NewBuilder, circuit)
	require.NoError(t, err)
	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)
	return &Groth16Artifacts{Curve: curve, CCS: ccs, PK: pk, VK: vk}
}

// Prove 为满足电路的赋值生成证明
func (a *Groth16Artifacts) Prove(t testing.TB, assignment frontend.Circuit) groth16.Proof {
	t.Helper()
	full, err := frontend.NewWitness(assignment, a.Curve.ScalarField())
	require.NoError(t, err)
	proof, err := groth16.Prove(a.CCS, a.PK, full)
	require.NoError(t, err)
	return proof
}

// Bytecode 序列化后的约束系统
func (a *Groth16Artifacts) Bytecode(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := a.CCS.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

// NbPublic 不含常量 1 导线的公开输入数量
func (a *Groth16Artifacts) NbPublic() int {
	return a.CCS.GetNbPublicVariables() - 1
}

// SquareProof x*x=y 电路的一组制品与证明
type SquareProof struct {
	*Groth16Artifacts
	Proof groth16.Proof
	X, Y  *big.Int
}

// NewSquareProof 在指定曲线上为 x*x=y 生成证明
func NewSquareProof(t testing.TB, curve ecc.ID, x int64) *SquareProof {
	t.Helper()
	artifacts := SetupGroth16(t, curve, &SquareCircuit{})
	xv := big.NewInt(x)
	yv := new(big.Int).Mul(xv, xv)
	proof := artifacts.Prove(t, &SquareCircuit{X: xv, Y: yv})
	return &SquareProof{Groth16Artifacts: artifacts, Proof: proof, X: xv, Y: yv}
}

// ==================== 随机数据 ====================

// RandomBytes 生成随机字节数组
func RandomBytes(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return b
}
