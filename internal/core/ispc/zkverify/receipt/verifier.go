// Package receipt 实现 zkVM 收据验证后端（RISC Zero 风格）。
//
// 收据 seal 是 BN254 上的 Groth16 证明，证明的声明为：
// 8 个程序标识字 + sha256(journal) 的高低两个 128 位半部，共 10 个公开输入。
package receipt

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/pairing"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/types"
)

// ClaimInputs 声明公开输入数量
const ClaimInputs = types.ProgramIDWords + 2

// ErrReceiptRejected 收据与程序标识不匹配或 seal 不成立（非致命，结果为 0）
var ErrReceiptRejected = errors.New("receipt rejected")

// ReceiptVerifier 收据验证能力
//
// 返回 nil 表示收据成立；返回致命类别错误（zkverify.IsFatal）时调用中止；
// 其它错误表示收据不成立。
type ReceiptVerifier interface {
	Verify(ctx context.Context, receipt *Receipt, id types.ProgramID) error
}

// ClaimPublicInputs 计算声明的公开输入向量
func ClaimPublicInputs(id types.ProgramID, journal []byte) []*big.Int {
	digest := sha256.Sum256(journal)
	inputs := make([]*big.Int, 0, ClaimInputs)
	for _, w := range id {
		inputs = append(inputs, new(big.Int).SetUint64(uint64(w)))
	}
	inputs = append(inputs,
		new(big.Int).SetBytes(digest[:16]),
		new(big.Int).SetBytes(digest[16:]),
	)
	return inputs
}

// ==================== Groth16 收据验证 ====================

// Groth16ReceiptVerifier 用运营方配置的 BN254 验证密钥检查 seal
//
// 密钥文件每次调用重新读取与预处理。
type Groth16ReceiptVerifier struct {
	keyPath string
	curve   pairing.Curve
}

var _ ReceiptVerifier = (*Groth16ReceiptVerifier)(nil)

// NewGroth16ReceiptVerifier 创建收据验证器
func NewGroth16ReceiptVerifier(keyPath string) *Groth16ReceiptVerifier {
	curve, _ := pairing.NewRegistry([]types.CurveTag{types.CurveBN254}).Get(types.CurveBN254)
	return &Groth16ReceiptVerifier{keyPath: keyPath, curve: curve}
}

// Verify 实现 ReceiptVerifier
func (g *Groth16ReceiptVerifier) Verify(_ context.Context, receipt *Receipt, id types.ProgramID) error {
	rawKey, err := LoadVerifyingKey(g.keyPath)
	if err != nil {
		return err
	}

	rawProof, ok := pairing.SplitSeal(g.curve, receipt.Seal)
	if !ok {
		return zkverify.WrapMalformedError("receipt seal",
			fmt.Errorf("长度必须为 G1‖G2‖G1: actual=%d", len(receipt.Seal)))
	}
	proof, err := g.curve.DecodeProof(rawProof)
	if err != nil {
		return err
	}
	vk, err := g.curve.PrepareKey(rawKey)
	if err != nil {
		return zkverify.WrapMissingArtifactError("receipt verifying key", err)
	}

	valid, err := g.curve.Verify(vk, proof, ClaimPublicInputs(id, receipt.Journal))
	if err != nil {
		return err
	}
	if !valid {
		return ErrReceiptRejected
	}
	return nil
}

// ==================== 后端 ====================

// Verifier zkVM 收据验证后端
type Verifier struct {
	logger log.Logger
	inner  ReceiptVerifier
}

var _ ispcif.BackendVerifier = (*Verifier)(nil)

// NewVerifier 创建收据后端；inner 为空时使用配置中的 Groth16 验证密钥
func NewVerifier(logger log.Logger, cfg *zkverifyconfig.Config, inner ReceiptVerifier) *Verifier {
	if inner == nil {
		if cfg == nil {
			cfg = zkverifyconfig.New(nil)
		}
		inner = NewGroth16ReceiptVerifier(cfg.GetReceipt().VerifyingKeyPath)
	}
	return &Verifier{logger: logger, inner: inner}
}

// Backend 实现 BackendVerifier
func (v *Verifier) Backend() types.BackendTag {
	return types.BackendReceipt
}

// Verify 解码收据证明包并验证
func (v *Verifier) Verify(ctx context.Context, payload []byte) (types.VerificationResult, error) {
	bundle, err := DecodeBundle(payload)
	if err != nil {
		return types.ResultRejected, err
	}

	if err := v.inner.Verify(ctx, bundle.Receipt, bundle.ProgramID); err != nil {
		if zkverify.IsFatal(err) {
			return types.ResultRejected, err
		}
		if v.logger != nil {
			v.logger.Debugf("收据验证未通过: program_id=%08x, err=%v", bundle.ProgramID, err)
		}
		return types.ResultRejected, nil
	}
	return types.ResultAccepted, nil
}
