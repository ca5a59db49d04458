package receipt

import (
	"context"
	"errors"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkhost/internal/core/ispc/testutil"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/pairing"
	"github.com/weisyn/zkhost/pkg/types"
)

var testProgramID = types.ProgramID{0x01, 0x02, 0x03, 0x04, 0xdeadbeef, 0x06, 0x07, math.MaxUint32}

// receiptFixture 真实的收据 seal 与验证密钥文件
type receiptFixture struct {
	keyPath string
	receipt *Receipt
}

func newReceiptFixture(t *testing.T, id types.ProgramID, journal []byte) *receiptFixture {
	t.Helper()
	artifacts := testutil.SetupGroth16(t, ecc.BN254, &testutil.ClaimCircuit{})
	require.Equal(t, ClaimInputs, artifacts.NbPublic())

	claim := ClaimPublicInputs(id, journal)
	var assignment testutil.ClaimCircuit
	sum := new(big.Int)
	for i, v := range claim {
		assignment.Claim[i] = v
		sum.Add(sum, v)
	}
	assignment.Sum = frontend.Variable(sum)
	proof := artifacts.Prove(t, &assignment)

	seal, err := pairing.ExportSeal(proof)
	require.NoError(t, err)
	_, rawKey, err := pairing.ExportKey(artifacts.VK)
	require.NoError(t, err)
	keyBytes, err := EncodeVerifyingKey(rawKey)
	require.NoError(t, err)

	keyPath := filepath.Join(t.TempDir(), "receipt.vk")
	require.NoError(t, os.WriteFile(keyPath, keyBytes, 0o600))
	return &receiptFixture{keyPath: keyPath, receipt: &Receipt{Seal: seal, Journal: journal}}
}

func (f *receiptFixture) verifier() *Verifier {
	return NewVerifier(testutil.NewTestLogger(), nil, NewGroth16ReceiptVerifier(f.keyPath))
}

func encodeBundle(t *testing.T, r *Receipt, id types.ProgramID) []byte {
	t.Helper()
	data, err := EncodeBundle(r, id)
	require.NoError(t, err)
	return data
}

// TestVerify_MatchingProgramID 测试 8 字匹配的程序标识
func TestVerify_MatchingProgramID(t *testing.T) {
	f := newReceiptFixture(t, testProgramID, []byte("journal: balance=42"))
	v := f.verifier()

	result, err := v.Verify(context.Background(), encodeBundle(t, f.receipt, testProgramID))
	require.NoError(t, err)
	assert.Equal(t, types.ResultAccepted, result)

	// 任意一个字不同
	other := testProgramID
	other[4]++
	result, err = v.Verify(context.Background(), encodeBundle(t, f.receipt, other))
	require.NoError(t, err)
	assert.Equal(t, types.ResultRejected, result)

	// 篡改 journal
	tampered := &Receipt{Seal: f.receipt.Seal, Journal: []byte("journal: balance=43")}
	result, err = v.Verify(context.Background(), encodeBundle(t, tampered, testProgramID))
	require.NoError(t, err)
	assert.Equal(t, types.ResultRejected, result)
}

// TestDecodeBundle_ProgramIDWords 测试程序标识字数与取值范围
func TestDecodeBundle_ProgramIDWords(t *testing.T) {
	receiptBytes, err := EncodeReceipt(&Receipt{Seal: []byte{0x01}, Journal: nil})
	require.NoError(t, err)

	encode := func(words []uint64) []byte {
		data, err := zkverify.EncodeCanonical(&wireBundle{Version: zkverify.WireVersion, Receipt: receiptBytes, ProgramID: words})
		require.NoError(t, err)
		return data
	}

	_, err = DecodeBundle(encode([]uint64{1, 2, 3, 4, 5, 6, 7}))
	require.ErrorIs(t, err, zkverify.ErrMalformedBundle)

	_, err = DecodeBundle(encode([]uint64{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	require.ErrorIs(t, err, zkverify.ErrMalformedBundle)

	_, err = DecodeBundle(encode([]uint64{1, 2, 3, 4, 5, 6, 7, math.MaxUint32 + 1}))
	require.ErrorIs(t, err, zkverify.ErrMalformedBundle)

	bundle, err := DecodeBundle(encode([]uint64{1, 2, 3, 4, 5, 6, 7, math.MaxUint32}))
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), bundle.ProgramID[7])
}

// TestVerify_SevenWordsAborts 测试 7 字程序标识经后端调用中止
func TestVerify_SevenWordsAborts(t *testing.T) {
	f := newReceiptFixture(t, testProgramID, []byte("j"))
	receiptBytes, err := EncodeReceipt(f.receipt)
	require.NoError(t, err)
	data, err := zkverify.EncodeCanonical(&wireBundle{
		Version:   zkverify.WireVersion,
		Receipt:   receiptBytes,
		ProgramID: []uint64{1, 2, 3, 4, 0xdeadbeef, 6, 7},
	})
	require.NoError(t, err)

	_, err = f.verifier().Verify(context.Background(), data)
	require.ErrorIs(t, err, zkverify.ErrMalformedBundle)
}

// TestVerify_MalformedSeal 测试 seal 长度与编码错误中止
func TestVerify_MalformedSeal(t *testing.T) {
	f := newReceiptFixture(t, testProgramID, []byte("j"))
	v := f.verifier()

	truncated := &Receipt{Seal: f.receipt.Seal[:len(f.receipt.Seal)-1], Journal: f.receipt.Journal}
	_, err := v.Verify(context.Background(), encodeBundle(t, truncated, testProgramID))
	require.ErrorIs(t, err, zkverify.ErrMalformedBundle)

	corrupted := append([]byte(nil), f.receipt.Seal...)
	corrupted[63] ^= 0x01 // a 的 Y 坐标
	_, err = v.Verify(context.Background(), encodeBundle(t, &Receipt{Seal: corrupted, Journal: f.receipt.Journal}, testProgramID))
	require.ErrorIs(t, err, zkverify.ErrMalformedBundle)

	_, err = DecodeReceipt([]byte{0xa0})
	require.ErrorIs(t, err, zkverify.ErrMalformedBundle)
}

// TestVerify_MissingKey 测试验证密钥未配置或不可读
func TestVerify_MissingKey(t *testing.T) {
	f := newReceiptFixture(t, testProgramID, []byte("j"))
	bundle := encodeBundle(t, f.receipt, testProgramID)

	v := NewVerifier(testutil.NewTestLogger(), nil, nil)
	_, err := v.Verify(context.Background(), bundle)
	require.ErrorIs(t, err, zkverify.ErrMissingArtifact)

	v = NewVerifier(testutil.NewTestLogger(), nil, NewGroth16ReceiptVerifier(filepath.Join(t.TempDir(), "absent.vk")))
	_, err = v.Verify(context.Background(), bundle)
	require.ErrorIs(t, err, zkverify.ErrMissingArtifact)

	garbage := filepath.Join(t.TempDir(), "garbage.vk")
	require.NoError(t, os.WriteFile(garbage, []byte("not cbor"), 0o600))
	v = NewVerifier(testutil.NewTestLogger(), nil, NewGroth16ReceiptVerifier(garbage))
	_, err = v.Verify(context.Background(), bundle)
	require.ErrorIs(t, err, zkverify.ErrMissingArtifact)
}

// rejectingVerifier 非致命错误映射为 0
type rejectingVerifier struct{ err error }

func (r rejectingVerifier) Verify(context.Context, *Receipt, types.ProgramID) error { return r.err }

// TestVerify_InnerErrorMapping 测试内部验证器错误的分类
func TestVerify_InnerErrorMapping(t *testing.T) {
	bundle := encodeBundle(t, &Receipt{Seal: []byte{0x01}, Journal: []byte("j")}, testProgramID)

	result, err := NewVerifier(nil, nil, rejectingVerifier{err: errors.New("image mismatch")}).
		Verify(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, types.ResultRejected, result)

	_, err = NewVerifier(nil, nil, rejectingVerifier{err: zkverify.WrapInternalError("boom")}).
		Verify(context.Background(), bundle)
	require.ErrorIs(t, err, zkverify.ErrInternal)

	result, err = NewVerifier(nil, nil, rejectingVerifier{}).Verify(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, types.ResultAccepted, result)
}

// TestClaimPublicInputs 测试声明向量布局
func TestClaimPublicInputs(t *testing.T) {
	inputs := ClaimPublicInputs(testProgramID, []byte("abc"))
	require.Len(t, inputs, ClaimInputs)
	assert.Equal(t, uint64(0xdeadbeef), inputs[4].Uint64())
	// sha256("abc") = ba7816bf8f01cfea414140de5dae2223 b00361a396177a9cb410ff61f20015ad
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223", inputs[8].Text(16))
	assert.Equal(t, "b00361a396177a9cb410ff61f20015ad", inputs[9].Text(16))
}
