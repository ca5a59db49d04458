package pairing

import (
	"fmt"
	"math/big"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/pkg/types"
)

// ==================== 线上格式 ====================
//
// 配对信封：{1: version, 2: layout, 3: body}
//
// keyed 布局 body：
//   {1: curve, 2: alpha, 3: beta, 4: gamma, 5: delta, 6: gamma_abc,
//    7: a, 8: b, 9: c, 10: circuit_bytecode?, 11: circuit_constraints?, 12: inputs}
//
// positional 布局 body：[circuit, points, inputs, gamma_abc]，每项是一个嵌套 CBOR 字节串
//   circuit   = [] | [bytecode, constraints]
//   points    = [curve, alpha, beta, gamma, delta, a, b, c]
//   inputs    = [[name, value], ...]
//   gamma_abc = [bstr, ...]
//
// 输入值为大端无符号整数字节串：无前导零，空串表示 0。

type wireEnvelope struct {
	Version uint64 `cbor:"1,keyasint"`
	Layout  uint8  `cbor:"2,keyasint"`
	Body    []byte `cbor:"3,keyasint"`
}

type wireInput struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Value []byte
}

type keyedBody struct {
	Curve              uint8       `cbor:"1,keyasint"`
	Alpha              []byte      `cbor:"2,keyasint"`
	Beta               []byte      `cbor:"3,keyasint"`
	Gamma              []byte      `cbor:"4,keyasint"`
	Delta              []byte      `cbor:"5,keyasint"`
	GammaABC           [][]byte    `cbor:"6,keyasint"`
	A                  []byte      `cbor:"7,keyasint"`
	B                  []byte      `cbor:"8,keyasint"`
	C                  []byte      `cbor:"9,keyasint"`
	CircuitBytecode    []byte      `cbor:"10,keyasint,omitempty"`
	CircuitConstraints []byte      `cbor:"11,keyasint,omitempty"`
	Inputs             []wireInput `cbor:"12,keyasint"`
}

type positionalBody struct {
	_        struct{} `cbor:",toarray"`
	Circuit  []byte
	Points   []byte
	Inputs   []byte
	GammaABC []byte
}

type positionalPoints struct {
	_     struct{} `cbor:",toarray"`
	Curve uint8
	Alpha []byte
	Beta  []byte
	Gamma []byte
	Delta []byte
	A     []byte
	B     []byte
	C     []byte
}

// ==================== 领域结构 ====================

// CircuitArtifact 编译后的约束系统及其 JSON 描述
type CircuitArtifact struct {
	Bytecode    []byte
	Constraints []byte
}

// Bundle 解码后的配对证明包（每次调用构造，不缓存）
type Bundle struct {
	Layout  types.BundleLayout
	Curve   types.CurveTag
	Key     RawKey
	Proof   RawProof
	Circuit *CircuitArtifact
	Inputs  []types.NamedInput
}

// DecodeBundle 严格解码配对信封
//
// 布局值只能是 keyed 或 positional，绝不根据 body 内容推断。
func DecodeBundle(data []byte) (*Bundle, error) {
	var env wireEnvelope
	if err := zkverify.DecodeCanonical("groth16 envelope", data, &env); err != nil {
		return nil, err
	}
	if err := zkverify.CheckVersion("groth16 envelope", env.Version); err != nil {
		return nil, err
	}

	switch types.BundleLayout(env.Layout) {
	case types.LayoutKeyed:
		return decodeKeyed(env.Body)
	case types.LayoutPositional:
		return decodePositional(env.Body)
	default:
		return nil, zkverify.WrapMalformedError("groth16 envelope", fmt.Errorf("未知布局: %d", env.Layout))
	}
}

func decodeKeyed(body []byte) (*Bundle, error) {
	var kb keyedBody
	if err := zkverify.DecodeCanonical("groth16 keyed body", body, &kb); err != nil {
		return nil, err
	}
	circuit, err := newCircuitArtifact(kb.CircuitBytecode, kb.CircuitConstraints)
	if err != nil {
		return nil, err
	}
	inputs, err := decodeInputs(kb.Inputs)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Layout: types.LayoutKeyed,
		Curve:  types.CurveTag(kb.Curve),
		Key: RawKey{
			Alpha:    kb.Alpha,
			Beta:     kb.Beta,
			Gamma:    kb.Gamma,
			Delta:    kb.Delta,
			GammaABC: kb.GammaABC,
		},
		Proof:   RawProof{A: kb.A, B: kb.B, C: kb.C},
		Circuit: circuit,
		Inputs:  inputs,
	}, nil
}

func decodePositional(body []byte) (*Bundle, error) {
	var pb positionalBody
	if err := zkverify.DecodeCanonical("groth16 positional body", body, &pb); err != nil {
		return nil, err
	}
	return decodeParts(pb.Circuit, pb.Points, pb.Inputs, pb.GammaABC)
}

// decodeParts 解码 positional 布局的四个部分
func decodeParts(circuitBuf, pointsBuf, inputsBuf, gammaABCBuf []byte) (*Bundle, error) {
	var circuitParts [][]byte
	if err := zkverify.DecodeCanonical("groth16 circuit", circuitBuf, &circuitParts); err != nil {
		return nil, err
	}
	var circuit *CircuitArtifact
	switch len(circuitParts) {
	case 0:
	case 2:
		var err error
		circuit, err = newCircuitArtifact(circuitParts[0], circuitParts[1])
		if err != nil {
			return nil, err
		}
		if circuit == nil {
			return nil, zkverify.WrapMalformedError("groth16 circuit", fmt.Errorf("电路制品为空"))
		}
	default:
		return nil, zkverify.WrapMalformedError("groth16 circuit", fmt.Errorf("元素个数必须为 0 或 2: %d", len(circuitParts)))
	}

	var points positionalPoints
	if err := zkverify.DecodeCanonical("groth16 points", pointsBuf, &points); err != nil {
		return nil, err
	}

	var wireInputs []wireInput
	if err := zkverify.DecodeCanonical("groth16 inputs", inputsBuf, &wireInputs); err != nil {
		return nil, err
	}
	inputs, err := decodeInputs(wireInputs)
	if err != nil {
		return nil, err
	}

	var gammaABC [][]byte
	if err := zkverify.DecodeCanonical("groth16 gamma_abc", gammaABCBuf, &gammaABC); err != nil {
		return nil, err
	}

	return &Bundle{
		Layout: types.LayoutPositional,
		Curve:  types.CurveTag(points.Curve),
		Key: RawKey{
			Alpha:    points.Alpha,
			Beta:     points.Beta,
			Gamma:    points.Gamma,
			Delta:    points.Delta,
			GammaABC: gammaABC,
		},
		Proof:   RawProof{A: points.A, B: points.B, C: points.C},
		Circuit: circuit,
		Inputs:  inputs,
	}, nil
}

// newCircuitArtifact 电路字节码与描述必须同时出现或同时缺失
func newCircuitArtifact(bytecode, constraints []byte) (*CircuitArtifact, error) {
	switch {
	case len(bytecode) == 0 && len(constraints) == 0:
		return nil, nil
	case len(bytecode) == 0 || len(constraints) == 0:
		return nil, zkverify.WrapMalformedError("groth16 circuit", fmt.Errorf("字节码与约束描述必须同时提供"))
	default:
		return &CircuitArtifact{Bytecode: bytecode, Constraints: constraints}, nil
	}
}

func decodeInputs(wire []wireInput) ([]types.NamedInput, error) {
	inputs := make([]types.NamedInput, len(wire))
	for i, in := range wire {
		if len(in.Value) > 0 && in.Value[0] == 0 {
			return nil, zkverify.WrapMalformedError("groth16 inputs", fmt.Errorf("输入[%d]含前导零", i))
		}
		inputs[i] = types.NamedInput{Name: in.Name, Value: new(big.Int).SetBytes(in.Value)}
	}
	return inputs, nil
}

// ==================== 编码（SDK / CLI / 测试） ====================

// EncodeKeyed 以 keyed 布局编码完整配对信封
func EncodeKeyed(b *Bundle) ([]byte, error) {
	kb := keyedBody{
		Curve:    uint8(b.Curve),
		Alpha:    b.Key.Alpha,
		Beta:     b.Key.Beta,
		Gamma:    b.Key.Gamma,
		Delta:    b.Key.Delta,
		GammaABC: b.Key.GammaABC,
		A:        b.Proof.A,
		B:        b.Proof.B,
		C:        b.Proof.C,
		Inputs:   encodeInputs(b.Inputs),
	}
	if b.Circuit != nil {
		kb.CircuitBytecode = b.Circuit.Bytecode
		kb.CircuitConstraints = b.Circuit.Constraints
	}
	body, err := zkverify.EncodeCanonical(&kb)
	if err != nil {
		return nil, err
	}
	return zkverify.EncodeCanonical(&wireEnvelope{Version: zkverify.WireVersion, Layout: uint8(types.LayoutKeyed), Body: body})
}

// EncodeParts 编码 positional 布局的四个部分（即拆分宿主调用的四个缓冲区）
func EncodeParts(b *Bundle) (circuit, points, inputs, gammaABC []byte, err error) {
	circuitParts := [][]byte{}
	if b.Circuit != nil {
		circuitParts = [][]byte{b.Circuit.Bytecode, b.Circuit.Constraints}
	}
	if circuit, err = zkverify.EncodeCanonical(circuitParts); err != nil {
		return nil, nil, nil, nil, err
	}
	if points, err = zkverify.EncodeCanonical(&positionalPoints{
		Curve: uint8(b.Curve),
		Alpha: b.Key.Alpha,
		Beta:  b.Key.Beta,
		Gamma: b.Key.Gamma,
		Delta: b.Key.Delta,
		A:     b.Proof.A,
		B:     b.Proof.B,
		C:     b.Proof.C,
	}); err != nil {
		return nil, nil, nil, nil, err
	}
	if inputs, err = zkverify.EncodeCanonical(encodeInputs(b.Inputs)); err != nil {
		return nil, nil, nil, nil, err
	}
	if gammaABC, err = zkverify.EncodeCanonical(b.Key.GammaABC); err != nil {
		return nil, nil, nil, nil, err
	}
	return circuit, points, inputs, gammaABC, nil
}

// EncodePositional 以 positional 布局编码完整配对信封
func EncodePositional(b *Bundle) ([]byte, error) {
	circuit, points, inputs, gammaABC, err := EncodeParts(b)
	if err != nil {
		return nil, err
	}
	return PositionalPayload(circuit, points, inputs, gammaABC)
}

// PositionalPayload 把四个独立缓冲区组装为 positional 配对信封
//
// 供拆分形式的宿主函数使用：入口本身即声明了布局，缓冲区内容仍需严格解码。
func PositionalPayload(circuit, points, inputs, gammaABC []byte) ([]byte, error) {
	body, err := zkverify.EncodeCanonical(&positionalBody{
		Circuit:  circuit,
		Points:   points,
		Inputs:   inputs,
		GammaABC: gammaABC,
	})
	if err != nil {
		return nil, err
	}
	return zkverify.EncodeCanonical(&wireEnvelope{Version: zkverify.WireVersion, Layout: uint8(types.LayoutPositional), Body: body})
}

func encodeInputs(inputs []types.NamedInput) []wireInput {
	wire := make([]wireInput, len(inputs))
	for i, in := range inputs {
		var value []byte
		if in.Value != nil {
			value = in.Value.Bytes()
		}
		wire[i] = wireInput{Name: in.Name, Value: value}
	}
	return wire
}
