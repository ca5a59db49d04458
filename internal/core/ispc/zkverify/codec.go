package zkverify

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ==================== 严格 CBOR 编解码 ====================
//
// 🎯 所有线上格式（通用信封、各后端证明包、收据）共用同一套规则：
//   - 确定性编码（Core Deterministic Encoding）
//   - 禁止重复键、不定长项、标签、未知字段
//   - 解码后重新编码必须与输入逐字节一致，否则视为非规范编码
//
// ⚠️ 缺失字段会在重新编码时被补成零值，从而与输入不一致，因此同样被拒绝。

const (
	maxNestedLevels  = 8
	maxArrayElements = 1 << 16
	maxMapPairs      = 64
)

var (
	strictDecMode cbor.DecMode
	canonEncMode  cbor.EncMode
)

func init() {
	var err error
	strictDecMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		TagsMd:            cbor.TagsForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		MaxNestedLevels:   maxNestedLevels,
		MaxArrayElements:  maxArrayElements,
		MaxMapPairs:       maxMapPairs,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("zkverify: 初始化CBOR解码模式失败: %v", err))
	}

	encOpts := cbor.CoreDetEncOptions()
	encOpts.NilContainers = cbor.NilContainerAsEmpty
	canonEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("zkverify: 初始化CBOR编码模式失败: %v", err))
	}
}

// DecodeCanonical 严格解码一个完整的 CBOR 数据项到 v（必须为指针）
//
// 任何失败都包装为 ErrMalformedBundle。
func DecodeCanonical(what string, data []byte, v any) error {
	if len(data) == 0 {
		return WrapMalformedError(what, fmt.Errorf("空输入"))
	}
	if err := strictDecMode.Unmarshal(data, v); err != nil {
		return WrapMalformedError(what, err)
	}
	reencoded, err := canonEncMode.Marshal(v)
	if err != nil {
		return WrapMalformedError(what, err)
	}
	if !bytes.Equal(reencoded, data) {
		return WrapMalformedError(what, fmt.Errorf("非规范编码"))
	}
	return nil
}

// EncodeCanonical 以确定性规则编码 v
func EncodeCanonical(v any) ([]byte, error) {
	data, err := canonEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("CBOR编码失败: %w", err)
	}
	return data, nil
}

// ==================== 通用信封 ====================

// WireVersion 所有信封与证明包的当前线上版本
const WireVersion uint64 = 1

// Envelope 通用验证信封 {1: version, 2: backend, 3: payload}
type Envelope struct {
	Version uint64 `cbor:"1,keyasint"`
	Backend uint8  `cbor:"2,keyasint"`
	Payload []byte `cbor:"3,keyasint"`
}

// DecodeEnvelope 严格解码通用信封并校验版本
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := DecodeCanonical("envelope", data, &env); err != nil {
		return nil, err
	}
	if err := CheckVersion("envelope", env.Version); err != nil {
		return nil, err
	}
	return &env, nil
}

// EncodeEnvelope 构造通用信封（供 SDK、CLI 与测试使用）
func EncodeEnvelope(backend uint8, payload []byte) ([]byte, error) {
	return EncodeCanonical(&Envelope{Version: WireVersion, Backend: backend, Payload: payload})
}

// CheckVersion 校验线上版本号
func CheckVersion(what string, version uint64) error {
	if version != WireVersion {
		return WrapMalformedError(what, fmt.Errorf("不支持的版本: %d", version))
	}
	return nil
}
