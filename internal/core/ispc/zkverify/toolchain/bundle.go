package toolchain

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
)

// ==================== 线上格式 ====================
//
// 工具链证明包：{1: version, 2: verifier_manifest, 3: proof}
// verifier_manifest 是 TOML 文本（写入 Verifier.toml），proof 是不透明字节（写入 proofs/<pkg>.proof）。

type wireBundle struct {
	Version  uint64 `cbor:"1,keyasint"`
	Manifest []byte `cbor:"2,keyasint"`
	Proof    []byte `cbor:"3,keyasint"`
}

// Bundle 解码后的工具链证明包
type Bundle struct {
	Manifest []byte
	Proof    []byte
}

// DecodeBundle 严格解码工具链证明包
func DecodeBundle(data []byte) (*Bundle, error) {
	var wb wireBundle
	if err := zkverify.DecodeCanonical("toolchain bundle", data, &wb); err != nil {
		return nil, err
	}
	if err := zkverify.CheckVersion("toolchain bundle", wb.Version); err != nil {
		return nil, err
	}
	if len(wb.Manifest) == 0 {
		return nil, zkverify.WrapMalformedError("verifier manifest", fmt.Errorf("为空"))
	}
	if err := ValidateManifest(wb.Manifest); err != nil {
		return nil, err
	}
	if len(wb.Proof) == 0 {
		return nil, zkverify.WrapMalformedError("toolchain proof", fmt.Errorf("为空"))
	}
	return &Bundle{Manifest: wb.Manifest, Proof: wb.Proof}, nil
}

// ValidateManifest 清单必须是合法 TOML 文档
func ValidateManifest(manifest []byte) error {
	var doc map[string]any
	if err := toml.Unmarshal(manifest, &doc); err != nil {
		return zkverify.WrapMalformedError("verifier manifest", err)
	}
	return nil
}

// EncodeBundle 编码工具链证明包
func EncodeBundle(manifest, proof []byte) ([]byte, error) {
	return zkverify.EncodeCanonical(&wireBundle{Version: zkverify.WireVersion, Manifest: manifest, Proof: proof})
}
