package pairing

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	bls12381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bls12381 "github.com/consensys/gnark/backend/groth16/bls12-381"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/pkg/types"
)

// bls12381Curve BLS12-381 上的 Groth16 验证
type bls12381Curve struct{}

var _ Curve = bls12381Curve{}

func (bls12381Curve) Tag() types.CurveTag   { return types.CurveBLS12_381 }
func (bls12381Curve) ID() ecc.ID            { return ecc.BLS12_381 }
func (bls12381Curve) ScalarField() *big.Int { return bls12381fr.Modulus() }
func (bls12381Curve) G1Size() int           { return bls12381.SizeOfG1AffineUncompressed }
func (bls12381Curve) G2Size() int           { return bls12381.SizeOfG2AffineUncompressed }

// PrepareKey 解码验证密钥并预计算 e(alpha, beta) 与 -gamma、-delta
func (c bls12381Curve) PrepareKey(raw *RawKey) (groth16.VerifyingKey, error) {
	vk := new(groth16_bls12381.VerifyingKey)
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
	k, err := decodePoints[bls12381.G1Affine](raw.GammaABC, c.G1Size(), "gamma_abc")
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
func (c bls12381Curve) DecodeProof(raw *RawProof) (groth16.Proof, error) {
	proof := new(groth16_bls12381.Proof)
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
func (c bls12381Curve) Verify(vk groth16.VerifyingKey, proof groth16.Proof, public []*big.Int) (bool, error) {
	typedVK, ok := vk.(*groth16_bls12381.VerifyingKey)
	if !ok {
		return false, keyTypeError(c.Tag(), "验证密钥", vk)
	}
	typedProof, ok := proof.(*groth16_bls12381.Proof)
	if !ok {
		return false, keyTypeError(c.Tag(), "证明", proof)
	}

	witness := make(bls12381fr.Vector, len(public))
	for i, v := range public {
		witness[i].SetBigInt(v)
	}
	if err := groth16_bls12381.Verify(typedProof, typedVK, witness); err != nil {
		return false, nil
	}
	return true, nil
}
