package hostabi

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm/interfaces"
	wasmruntime "github.com/weisyn/zkhost/internal/core/ispc/engines/wasm/runtime"
	"github.com/weisyn/zkhost/internal/core/ispc/testutil"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/pairing"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
	"github.com/weisyn/zkhost/pkg/types"
)

// ============================================================================
// 宿主函数端到端测试：合约内存 → 宿主函数 → 分发器 → 结果字节
// ============================================================================

const (
	outPtr     = 0
	untouched  = 0xAA
	bufferBase = 1024
)

type harness struct {
	rt       *wasmruntime.WazeroRuntime
	provider *HostFunctionProvider
}

func newHarness(t *testing.T, cfg *zkverifyconfig.Config, verifiers ...ispcif.BackendVerifier) *harness {
	t.Helper()
	dispatcher, err := zkverify.NewDispatcher(testutil.NewTestLogger(), verifiers...)
	require.NoError(t, err)

	rt := wasmruntime.NewWazeroRuntime(testutil.NewTestLogger(), nil)
	t.Cleanup(func() { _ = rt.Close() })

	provider := NewHostFunctionProvider(testutil.NewTestLogger(), dispatcher, cfg)
	require.NoError(t, rt.RegisterHostFunctions(provider.BuildHostFunctions()))
	return &harness{rt: rt, provider: provider}
}

// instance 实例化一个把参数转发给 hostFunc 的合约，并预置输出字节
func (h *harness) instance(t *testing.T, hostFunc string, nParams int) *interfaces.Instance {
	t.Helper()
	ctx := context.Background()
	compiled, err := h.rt.CompileContract(ctx, testutil.ForwarderModule(hostFunc, nParams))
	require.NoError(t, err)
	inst, err := h.rt.CreateInstance(ctx, compiled)
	require.NoError(t, err)
	require.NoError(t, h.rt.WriteMemory(inst, outPtr, []byte{untouched}))
	return inst
}

// place 把缓冲区依次写入内存，返回 (ptr, len) 参数
func (h *harness) place(t *testing.T, inst *interfaces.Instance, bufs ...[]byte) []uint64 {
	t.Helper()
	params := make([]uint64, 0, 2*len(bufs))
	offset := uint32(bufferBase)
	for _, b := range bufs {
		require.NoError(t, h.rt.WriteMemory(inst, offset, b))
		params = append(params, uint64(offset), uint64(len(b)))
		offset += uint32(len(b))
	}
	return params
}

func (h *harness) call(t *testing.T, inst *interfaces.Instance, params ...uint64) (uint32, byte) {
	t.Helper()
	results, err := h.rt.ExecuteFunction(context.Background(), inst, testutil.ForwarderExport, params)
	require.NoError(t, err)
	require.Len(t, results, 1)
	out, err := h.rt.ReadMemory(inst, outPtr, 1)
	require.NoError(t, err)
	return uint32(results[0]), out[0]
}

// verifyBundle 单缓冲区宿主函数的完整调用
func (h *harness) verifyBundle(t *testing.T, hostFunc string, bundle []byte) (uint32, byte) {
	t.Helper()
	inst := h.instance(t, hostFunc, 4)
	params := h.place(t, inst, bundle)
	return h.call(t, inst, append(params, outPtr, 1)...)
}

// stubBackend 返回固定结果的后端
type stubBackend struct {
	tag    types.BackendTag
	result types.VerificationResult
	err    error
	seen   []byte
}

func (s *stubBackend) Backend() types.BackendTag { return s.tag }

func (s *stubBackend) Verify(_ context.Context, payload []byte) (types.VerificationResult, error) {
	s.seen = payload
	for i := range payload {
		payload[i] ^= 0xFF
	}
	return s.result, s.err
}

func squareBundle(t *testing.T, y int64) *pairing.Bundle {
	t.Helper()
	sp := testutil.NewSquareProof(t, ecc.BN254, 3)
	tag, key, err := pairing.ExportKey(sp.VK)
	require.NoError(t, err)
	proof, err := pairing.ExportProof(sp.Proof)
	require.NoError(t, err)
	return &pairing.Bundle{
		Curve:  tag,
		Key:    *key,
		Proof:  *proof,
		Inputs: []types.NamedInput{{Name: "Y", Value: big.NewInt(y)}},
	}
}

// TestABIVersion 测试 ABI 版本查询
func TestABIVersion(t *testing.T) {
	h := newHarness(t, nil)
	inst := h.instance(t, FuncZKVerifierABIVersion, 0)
	status, _ := h.call(t, inst)
	assert.Equal(t, uint32(0x00010000), status)
	assert.Equal(t, ABIVersion(), status)
}

// TestZKVerifyGroth16_Square 测试 x*x=y：y=9 → 1，y=10 → 0，alpha 截断 → 中止
func TestZKVerifyGroth16_Square(t *testing.T) {
	h := newHarness(t, nil, pairing.NewVerifier(testutil.NewTestLogger(), zkverifyconfig.New(nil)))

	good := squareBundle(t, 9)
	payload, err := pairing.EncodeKeyed(good)
	require.NoError(t, err)
	status, out := h.verifyBundle(t, FuncZKVerifyGroth16, payload)
	assert.Equal(t, uint32(StatusOK), status)
	assert.Equal(t, byte(types.ResultAccepted), out)

	wrong := *good
	wrong.Inputs = []types.NamedInput{{Name: "Y", Value: big.NewInt(10)}}
	payload, err = pairing.EncodeKeyed(&wrong)
	require.NoError(t, err)
	status, out = h.verifyBundle(t, FuncZKVerifyGroth16, payload)
	assert.Equal(t, uint32(StatusOK), status)
	assert.Equal(t, byte(types.ResultRejected), out)

	truncated := *good
	truncated.Key.Alpha = good.Key.Alpha[:len(good.Key.Alpha)-1]
	payload, err = pairing.EncodeKeyed(&truncated)
	require.NoError(t, err)
	status, out = h.verifyBundle(t, FuncZKVerifyGroth16, payload)
	assert.Equal(t, uint32(ErrMalformedProof), status)
	assert.Equal(t, byte(untouched), out, "中止时输出缓冲区不应被写入")

	assert.Equal(t, uint64(3), h.provider.Stats().Calls(FuncZKVerifyGroth16))
	assert.Equal(t, uint64(1), h.provider.Stats().Failures(FuncZKVerifyGroth16, ErrMalformedProof))
}

// TestZKVerifyGroth16Split 测试四缓冲区入口
func TestZKVerifyGroth16Split(t *testing.T) {
	h := newHarness(t, nil, pairing.NewVerifier(testutil.NewTestLogger(), zkverifyconfig.New(nil)))
	good := squareBundle(t, 9)

	split := func(b *pairing.Bundle) (uint32, byte) {
		circuit, points, inputs, gammaABC, err := pairing.EncodeParts(b)
		require.NoError(t, err)
		inst := h.instance(t, FuncZKVerifyGroth16Split, 10)
		params := h.place(t, inst, circuit, points, inputs, gammaABC)
		return h.call(t, inst, append(params, outPtr, 1)...)
	}

	status, out := split(good)
	assert.Equal(t, uint32(StatusOK), status)
	assert.Equal(t, byte(types.ResultAccepted), out)

	wrong := *good
	wrong.Inputs = []types.NamedInput{{Name: "Y", Value: big.NewInt(10)}}
	status, out = split(&wrong)
	assert.Equal(t, uint32(StatusOK), status)
	assert.Equal(t, byte(types.ResultRejected), out)

	// 缓冲区内容必须是严格编码：把 points 换成 gamma_abc 的编码
	circuit, _, inputs, gammaABC, err := pairing.EncodeParts(good)
	require.NoError(t, err)
	inst := h.instance(t, FuncZKVerifyGroth16Split, 10)
	params := h.place(t, inst, circuit, gammaABC, inputs, gammaABC)
	status, out = h.call(t, inst, append(params, outPtr, 1)...)
	assert.Equal(t, uint32(ErrMalformedProof), status)
	assert.Equal(t, byte(untouched), out)
}

// TestZKVerify_Envelope 测试通用信封入口
func TestZKVerify_Envelope(t *testing.T) {
	h := newHarness(t, nil, pairing.NewVerifier(testutil.NewTestLogger(), zkverifyconfig.New(nil)))

	payload, err := pairing.EncodeKeyed(squareBundle(t, 9))
	require.NoError(t, err)
	envelope, err := zkverify.EncodeEnvelope(uint8(types.BackendGroth16), payload)
	require.NoError(t, err)
	status, out := h.verifyBundle(t, FuncZKVerify, envelope)
	assert.Equal(t, uint32(StatusOK), status)
	assert.Equal(t, byte(types.ResultAccepted), out)

	envelope, err = zkverify.EncodeEnvelope(9, payload)
	require.NoError(t, err)
	status, out = h.verifyBundle(t, FuncZKVerify, envelope)
	assert.Equal(t, uint32(ErrUnsupportedBackend), status)
	assert.Equal(t, byte(untouched), out)

	status, _ = h.verifyBundle(t, FuncZKVerify, envelope[:len(envelope)-1])
	assert.Equal(t, uint32(ErrMalformedProof), status)
}

// TestHostFunctions_StatusMapping 测试后端错误到状态码的映射
func TestHostFunctions_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status uint32
	}{
		{"缺失制品", zkverify.WrapMissingArtifactError("Nargo.toml", nil), ErrMissingArtifact},
		{"工作区", zkverify.WrapWorkspaceError("create", errors.New("disk full")), ErrWorkspaceFailed},
		{"进程启动", zkverify.WrapProcessSpawnError("nargo", errors.New("not found")), ErrProcessSpawnFailed},
		{"格式错误", zkverify.WrapMalformedError("receipt", nil), ErrMalformedProof},
		{"内部错误", zkverify.WrapInternalError("boom"), ErrInternalError},
		{"未知错误", errors.New("unclassified"), ErrInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, &stubBackend{tag: types.BackendToolchain, err: tt.err})
			status, out := h.verifyBundle(t, FuncZKVerifyNoir, []byte{0x01})
			assert.Equal(t, tt.status, status)
			assert.Equal(t, byte(untouched), out)
		})
	}

	h := newHarness(t, nil, &stubBackend{tag: types.BackendReceipt, result: types.ResultAccepted})
	status, out := h.verifyBundle(t, FuncZKVerifyRisc0, []byte{0x01})
	assert.Equal(t, uint32(StatusOK), status)
	assert.Equal(t, byte(types.ResultAccepted), out)

	// 后端返回非法结果值
	h = newHarness(t, nil, &stubBackend{tag: types.BackendReceipt, result: 7})
	status, out = h.verifyBundle(t, FuncZKVerifyRisc0, []byte{0x01})
	assert.Equal(t, uint32(ErrInternalError), status)
	assert.Equal(t, byte(untouched), out)
}

// TestHostFunctions_Boundary 测试内存边界与参数校验
func TestHostFunctions_LogsAbort(t *testing.T) {
	logger := testutil.NewTestBehavioralLogger()
	dispatcher, err := zkverify.NewDispatcher(testutil.NewTestLogger(),
		&stubBackend{tag: types.BackendToolchain, err: zkverify.WrapMissingArtifactError("src", nil)})
	require.NoError(t, err)

	rt := wasmruntime.NewWazeroRuntime(testutil.NewTestLogger(), nil)
	t.Cleanup(func() { _ = rt.Close() })
	provider := NewHostFunctionProvider(logger, dispatcher, nil)
	require.NoError(t, rt.RegisterHostFunctions(provider.BuildHostFunctions()))

	h := &harness{rt: rt, provider: provider}
	status, _ := h.verifyBundle(t, FuncZKVerifyNoir, []byte{0x01})
	require.Equal(t, uint32(ErrMissingArtifact), status)

	var warned bool
	for _, line := range logger.GetLogs() {
		if line == "WARN: zk_verify_noir: 调用中止 status=3003 ("+GetErrorMessage(ErrMissingArtifact)+")" {
			warned = true
		}
	}
	assert.True(t, warned, "中止调用应输出告警日志: %v", logger.GetLogs())

	logger.ClearLogs()
	assert.Empty(t, logger.GetLogs())
}

// TestHostFunctions_CallerFaultLogLevel 调用方错误只记录调试日志
func TestHostFunctions_CallerFaultLogLevel(t *testing.T) {
	logger := testutil.NewTestBehavioralLogger()
	dispatcher, err := zkverify.NewDispatcher(testutil.NewTestLogger(),
		&stubBackend{tag: types.BackendToolchain, err: zkverify.WrapMalformedError("bundle", nil)})
	require.NoError(t, err)

	rt := wasmruntime.NewWazeroRuntime(testutil.NewTestLogger(), nil)
	t.Cleanup(func() { _ = rt.Close() })
	provider := NewHostFunctionProvider(logger, dispatcher, nil)
	require.NoError(t, rt.RegisterHostFunctions(provider.BuildHostFunctions()))

	h := &harness{rt: rt, provider: provider}
	for i := 0; i < 3; i++ {
		status, _ := h.verifyBundle(t, FuncZKVerifyNoir, []byte{0x01})
		require.Equal(t, uint32(ErrMalformedProof), status)
	}

	var debugged int
	for _, line := range logger.GetLogs() {
		assert.False(t, strings.HasPrefix(line, "WARN:"), "调用方错误不应输出告警: %s", line)
		if line == "DEBUG: zk_verify_noir: 调用中止 status=3002 ("+GetErrorMessage(ErrMalformedProof)+")" {
			debugged++
		}
	}
	assert.Equal(t, 3, debugged)
}

func TestIsCallerFault(t *testing.T) {
	for _, status := range []uint32{ErrInvalidParameter, ErrBufferTooLarge, ErrUnsupportedBackend, ErrMalformedProof} {
		assert.True(t, IsCallerFault(status), status)
	}
	for _, status := range []uint32{StatusOK, ErrMissingArtifact, ErrWorkspaceFailed, ErrProcessSpawnFailed, ErrInternalError, ErrMemoryAccessFailed} {
		assert.False(t, IsCallerFault(status), status)
	}
}

func TestHostFunctions_Boundary(t *testing.T) {
	stub := &stubBackend{tag: types.BackendReceipt, result: types.ResultAccepted}
	cfg := zkverifyconfig.New(&types.UserZKVerifyConfig{MaxBundleSize: types.Uint32Ptr(16)})
	h := newHarness(t, cfg, stub)

	tests := []struct {
		name   string
		params []uint64
		status uint32
	}{
		{"out_len为0", []uint64{bufferBase, 4, outPtr, 0}, ErrInvalidParameter},
		{"out_len为2", []uint64{bufferBase, 4, outPtr, 2}, ErrInvalidParameter},
		{"out_ptr越界", []uint64{bufferBase, 4, 65536, 1}, ErrMemoryAccessFailed},
		{"输入为空", []uint64{bufferBase, 0, outPtr, 1}, ErrInvalidParameter},
		{"输入越界", []uint64{65530, 8, outPtr, 1}, ErrMemoryAccessFailed},
		{"指针回绕", []uint64{0xFFFFFFFF, 2, outPtr, 1}, ErrMemoryAccessFailed},
		{"超过读取上限", []uint64{bufferBase, 17, outPtr, 1}, ErrBufferTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := h.instance(t, FuncZKVerifyRisc0, 4)
			status, out := h.call(t, inst, tt.params...)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, byte(untouched), out)
		})
	}

	// 拆分入口按合计长度计算上限
	inst := h.instance(t, FuncZKVerifyGroth16Split, 10)
	status, _ := h.call(t, inst, bufferBase, 8, bufferBase, 8, bufferBase, 1, bufferBase, 1, outPtr, 1)
	assert.Equal(t, uint32(ErrBufferTooLarge), status)
}

// TestHostFunctions_InputCopied 测试后端拿到的是客户内存的副本
func TestHostFunctions_InputCopied(t *testing.T) {
	stub := &stubBackend{tag: types.BackendReceipt, result: types.ResultRejected}
	h := newHarness(t, nil, stub)

	inst := h.instance(t, FuncZKVerifyRisc0, 4)
	original := []byte("immutable-input")
	params := h.place(t, inst, original)
	status, out := h.call(t, inst, append(params, outPtr, 1)...)
	require.Equal(t, uint32(StatusOK), status)
	assert.Equal(t, byte(types.ResultRejected), out)

	// 后端对副本取反，客户内存保持原样
	assert.NotEqual(t, original, stub.seen)
	inMemory, err := h.rt.ReadMemory(inst, bufferBase, uint32(len(original)))
	require.NoError(t, err)
	assert.Equal(t, original, inMemory)
}

// TestStatusCode 测试错误分类
func TestStatusCode(t *testing.T) {
	assert.Equal(t, uint32(StatusOK), StatusCode(nil))
	assert.Equal(t, uint32(ErrUnsupportedBackend), StatusCode(zkverify.WrapUnsupportedBackendError(9)))
	assert.Equal(t, uint32(ErrMalformedProof), StatusCode(zkverify.WrapMalformedError("x", errors.New("y"))))
	assert.Equal(t, uint32(ErrInternalError), StatusCode(context.Canceled))
}

// TestGetErrorMessage 测试状态码消息
func TestGetErrorMessage(t *testing.T) {
	codes := []uint32{
		StatusOK, ErrInvalidParameter, ErrBufferTooLarge, ErrUnsupportedBackend, ErrMalformedProof,
		ErrMissingArtifact, ErrWorkspaceFailed, ErrProcessSpawnFailed, ErrInternalError, ErrMemoryAccessFailed,
	}
	seen := make(map[string]bool)
	for _, code := range codes {
		msg := GetErrorMessage(code)
		assert.NotEqual(t, "未知错误", msg, "code=%d", code)
		assert.False(t, seen[msg], "消息重复: %s", msg)
		seen[msg] = true
	}
	assert.Equal(t, "未知错误", GetErrorMessage(9999))
}
