package pairing

import (
	"fmt"

	"github.com/consensys/gnark/backend/groth16"
	groth16_bls12377 "github.com/consensys/gnark/backend/groth16/bls12-377"
	groth16_bls12381 "github.com/consensys/gnark/backend/groth16/bls12-381"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"

	"github.com/weisyn/zkhost/pkg/types"
)

// ==================== gnark 对象导出 ====================
//
// 把 gnark 生成的验证密钥与证明转换为线上原始编码（非压缩点）。
// 供 CLI 打包工具与测试使用，验证路径本身不依赖这些函数。

// ExportKey 导出验证密钥
func ExportKey(vk groth16.VerifyingKey) (types.CurveTag, *RawKey, error) {
	switch k := vk.(type) {
	case *groth16_bn254.VerifyingKey:
		raw := &RawKey{Alpha: k.G1.Alpha.Marshal(), Beta: k.G2.Beta.Marshal(), Gamma: k.G2.Gamma.Marshal(), Delta: k.G2.Delta.Marshal()}
		for i := range k.G1.K {
			raw.GammaABC = append(raw.GammaABC, k.G1.K[i].Marshal())
		}
		return types.CurveBN254, raw, nil
	case *groth16_bls12377.VerifyingKey:
		raw := &RawKey{Alpha: k.G1.Alpha.Marshal(), Beta: k.G2.Beta.Marshal(), Gamma: k.G2.Gamma.Marshal(), Delta: k.G2.Delta.Marshal()}
		for i := range k.G1.K {
			raw.GammaABC = append(raw.GammaABC, k.G1.K[i].Marshal())
		}
		return types.CurveBLS12_377, raw, nil
	case *groth16_bls12381.VerifyingKey:
		raw := &RawKey{Alpha: k.G1.Alpha.Marshal(), Beta: k.G2.Beta.Marshal(), Gamma: k.G2.Gamma.Marshal(), Delta: k.G2.Delta.Marshal()}
		for i := range k.G1.K {
			raw.GammaABC = append(raw.GammaABC, k.G1.K[i].Marshal())
		}
		return types.CurveBLS12_381, raw, nil
	default:
		return 0, nil, fmt.Errorf("不支持的验证密钥类型: %T", vk)
	}
}

// ExportProof 导出证明点
func ExportProof(proof groth16.Proof) (*RawProof, error) {
	switch p := proof.(type) {
	case *groth16_bn254.Proof:
		return &RawProof{A: p.Ar.Marshal(), B: p.Bs.Marshal(), C: p.Krs.Marshal()}, nil
	case *groth16_bls12377.Proof:
		return &RawProof{A: p.Ar.Marshal(), B: p.Bs.Marshal(), C: p.Krs.Marshal()}, nil
	case *groth16_bls12381.Proof:
		return &RawProof{A: p.Ar.Marshal(), B: p.Bs.Marshal(), C: p.Krs.Marshal()}, nil
	default:
		return nil, fmt.Errorf("不支持的证明类型: %T", proof)
	}
}

// ExportSeal 导出 a‖b‖c 拼接形式（收据 seal 使用）
func ExportSeal(proof groth16.Proof) ([]byte, error) {
	raw, err := ExportProof(proof)
	if err != nil {
		return nil, err
	}
	seal := make([]byte, 0, len(raw.A)+len(raw.B)+len(raw.C))
	seal = append(seal, raw.A...)
	seal = append(seal, raw.B...)
	return append(seal, raw.C...), nil
}

// SplitSeal 按曲线点长度拆分 a‖b‖c；长度不符返回 false
func SplitSeal(curve Curve, seal []byte) (*RawProof, bool) {
	g1, g2 := curve.G1Size(), curve.G2Size()
	if len(seal) != g1+g2+g1 {
		return nil, false
	}
	return &RawProof{A: seal[:g1], B: seal[g1 : g1+g2], C: seal[g1+g2:]}, true
}
