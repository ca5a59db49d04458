package pairing

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	bls12377fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bls12377 "github.com/consensys/gnark/backend/groth16/bls12-377"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/pkg/types"
)

// bls12377Curve BLS12-377 上的 Groth16 验证
type bls12377Curve struct{}

var _ Curve = bls12377Curve{}

func (bls12377Curve) Tag() types.CurveTag   { return types.CurveBLS12_377 }
func (bls12377Curve) ID() ecc.ID            { return ecc.BLS12_377 }
func (bls12377Curve) ScalarField() *big.Int { return bls12377fr.Modulus() }
func (bls12377Curve) G1Size() int           { return bls12377.SizeOfG1AffineUncompressed }
func (bls12377Curve) G2Size() int           { return bls12377.SizeOfG2AffineUncompressed }

// PrepareKey 解码验证密钥并预计算 e(alpha, beta) 与 -gamma、-delta
func (c bls12377Curve) PrepareKey(raw *RawKey) (groth16.VerifyingKey, error) {
	vk := new(groth16_bls12377.VerifyingKey)
	if err := decodePoint(&vk.G1.Alpha, raw.Alpha, c.G1Size(), "alpha"); err != nil {
		return nil, err
	}
	if err := decodePoint(&vk.G2.Beta, raw.Beta, c.G2Size(), "beta"); err != nil {
		return nil, err
	}
	if err := decodePoint(&vk.G2.Gamma, raw.Gamma, c.G2Size(), "gamma"); err != nil {
		return nil, err
	}
	if err := decodePoint(&vk.G2.Delta, raw.Delta, c.G2Size(), "delta"); err != nil {
		return nil, err
	}
	k, err := decodePoints[bls12377.G1Affine](raw.GammaABC, c.G1Size(), "gamma_abc")
	if err != nil {
		return nil, err
	}
	vk.G1.K = k
	if err := vk.Precompute(); err != nil {
		return nil, zkverify.WrapMalformedError("verifying key", err)
	}
	return vk, nil
}

// DecodeProof 解码 a(G1)、b(G2)、c(G1)
func (c bls12377Curve) DecodeProof(raw *RawProof) (groth16.Proof, error) {
	proof := new(groth16_bls12377.Proof)
	if err := decodePoint(&proof.Ar, raw.A, c.G1Size(), "a"); err != nil {
		return nil, err
	}
	if err := decodePoint(&proof.Bs, raw.B, c.G2Size(), "b"); err != nil {
		return nil, err
	}
	if err := decodePoint(&proof.Krs, raw.C, c.G1Size(), "c"); err != nil {
		return nil, err
	}
	return proof, nil
}

// Verify 执行配对检查
func (c bls12377Curve) Verify(vk groth16.VerifyingKey, proof groth16.Proof, public []*big.Int) (bool, error) {
	typedVK, ok := vk.(*groth16_bls12377.VerifyingKey)
	if !ok {
		return false, keyTypeError(c.Tag(), "验证密钥", vk)
	}
	typedProof, ok := proof.(*groth16_bls12377.Proof)
	if !ok {
		return false, keyTypeError(c.Tag(), "证明", proof)
	}

	witness := make(bls12377fr.Vector, len(public))
	for i, v := range public {
		witness[i].SetBigInt(v)
	}
	if err := groth16_bls12377.Verify(typedProof, typedVK, witness); err != nil {
		return false, nil
	}
	return true, nil
}
