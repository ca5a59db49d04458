// Package pairing 实现 Groth16 配对验证后端。
//
// 🎯 **核心职责**：
//   - 严格解码配对信封（keyed / positional 两种显式布局）
//   - 按曲线标识选择 BN254 / BLS12-377 / BLS12-381 实现
//   - 可选地根据电路制品重算见证并导出公开输入
//
// ⚠️ 验证密钥每次调用都重新解码与预处理，不跨调用缓存。
package pairing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"sync"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/types"
)

var silenceGnark sync.Once

// Verifier Groth16 配对验证后端
type Verifier struct {
	logger          log.Logger
	curves          *Registry
	circuits        *CircuitSet
	maxPublicInputs int
}

var _ ispcif.BackendVerifier = (*Verifier)(nil)

// NewVerifier 创建配对验证后端
func NewVerifier(logger log.Logger, cfg *zkverifyconfig.Config) *Verifier {
	if cfg == nil {
		cfg = zkverifyconfig.New(nil)
	}

	// gnark 使用 zerolog 输出大量调试信息，全局关闭一次
	silenceGnark.Do(func() {
		gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
	})

	return &Verifier{
		logger:          logger,
		curves:          NewRegistry(cfg.GetOptions().EnabledCurves),
		circuits:        NewCircuitSet(cfg.GetCircuitSetDir()),
		maxPublicInputs: cfg.GetMaxPublicInputs(),
	}
}

// Backend 实现 BackendVerifier
func (v *Verifier) Backend() types.BackendTag {
	return types.BackendGroth16
}

// Curves 已启用曲线
func (v *Verifier) Curves() *Registry {
	return v.curves
}

// Verify 解码配对信封并验证
func (v *Verifier) Verify(ctx context.Context, payload []byte) (types.VerificationResult, error) {
	bundle, err := DecodeBundle(payload)
	if err != nil {
		return types.ResultRejected, err
	}
	return v.VerifyBundle(ctx, bundle)
}

// VerifyBundle 验证已解码的证明包
//
// 📋 **流程**：
//  1. 选择曲线，检查输入取值范围
//  2. 若带电路制品引用：从运营方目录解析制品，校验描述与命名赋值
//  3. 检查公开输入数量上限，校验 gamma_abc 长度 = 1 + 公开输入数量
//  4. 解码验证密钥与证明点
//  5. 若带电路制品：求解见证，不满足 → 0
//  6. 配对检查
func (v *Verifier) VerifyBundle(ctx context.Context, b *Bundle) (types.VerificationResult, error) {
	curve, ok := v.curves.Get(b.Curve)
	if !ok {
		return types.ResultRejected, zkverify.WrapMalformedError("groth16 curve", fmt.Errorf("未知或未启用的曲线: %s", b.Curve))
	}

	if err := checkFieldRange(curve.ScalarField(), b.Inputs); err != nil {
		return types.ResultRejected, err
	}

	var (
		desc     *CircuitDescription
		artifact *CircuitArtifact
	)
	nbPublic := len(b.Inputs)
	if b.Circuit != nil {
		var err error
		if artifact, err = v.circuits.Resolve(b.Circuit.Bytecode); err != nil {
			return types.ResultRejected, err
		}
		if !bytes.Equal(b.Circuit.Constraints, artifact.Constraints) {
			return types.ResultRejected, zkverify.WrapMalformedError("circuit constraints", fmt.Errorf("与运营方制品描述不一致"))
		}
		if desc, err = ParseCircuitDescription(artifact.Constraints); err != nil {
			return types.ResultRejected, err
		}
		if err := desc.CheckAssignment(b.Inputs); err != nil {
			return types.ResultRejected, err
		}
		nbPublic = len(desc.Public)
	}

	if nbPublic > v.maxPublicInputs {
		return types.ResultRejected, zkverify.WrapMalformedError("groth16 inputs",
			fmt.Errorf("公开输入数量超过上限: %d > %d", nbPublic, v.maxPublicInputs))
	}
	if len(b.Key.GammaABC) != nbPublic+1 {
		return types.ResultRejected, zkverify.WrapMalformedError("groth16 gamma_abc",
			fmt.Errorf("长度必须为公开输入数量+1: expected=%d, actual=%d", nbPublic+1, len(b.Key.GammaABC)))
	}

	vk, err := curve.PrepareKey(&b.Key)
	if err != nil {
		return types.ResultRejected, err
	}
	proof, err := curve.DecodeProof(&b.Proof)
	if err != nil {
		return types.ResultRejected, err
	}

	public := make([]*big.Int, len(b.Inputs))
	for i, in := range b.Inputs {
		public[i] = in.Value
	}
	if desc != nil {
		cs, err := loadConstraintSystem(curve, desc, artifact.Bytecode)
		if err != nil {
			return types.ResultRejected, err
		}
		var satisfied bool
		public, satisfied, err = recomputePublic(curve, desc, cs, b.Inputs)
		if err != nil {
			return types.ResultRejected, err
		}
		if !satisfied {
			if v.logger != nil {
				v.logger.Debugf("赋值不满足电路约束: curve=%s", curve.Tag())
			}
			return types.ResultRejected, nil
		}
	}

	valid, err := curve.Verify(vk, proof, public)
	if err != nil {
		return types.ResultRejected, err
	}
	if v.logger != nil {
		v.logger.Debugf("Groth16配对检查完成: curve=%s, layout=%d, public=%d, valid=%t",
			curve.Tag(), b.Layout, len(public), valid)
	}
	return types.ResultFromBool(valid), nil
}

func checkFieldRange(modulus *big.Int, inputs []types.NamedInput) error {
	for i, in := range inputs {
		if in.Value == nil || in.Value.Sign() < 0 || in.Value.Cmp(modulus) >= 0 {
			return zkverify.WrapMalformedError("groth16 inputs", fmt.Errorf("输入[%d]超出标量域", i))
		}
	}
	return nil
}
