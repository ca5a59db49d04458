package receipt

import (
	"fmt"
	"os"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/pairing"
	"github.com/weisyn/zkhost/pkg/types"
)

// ==================== 收据验证密钥文件 ====================
//
// 运营方配置的验证密钥，规范 CBOR：
//   {1: version, 2: curve, 3: alpha, 4: beta, 5: gamma, 6: delta, 7: gamma_abc}
// 曲线固定为 BN254，gamma_abc 长度固定为 ClaimInputs+1。

type wireKey struct {
	Version  uint64   `cbor:"1,keyasint"`
	Curve    uint8    `cbor:"2,keyasint"`
	Alpha    []byte   `cbor:"3,keyasint"`
	Beta     []byte   `cbor:"4,keyasint"`
	Gamma    []byte   `cbor:"5,keyasint"`
	Delta    []byte   `cbor:"6,keyasint"`
	GammaABC [][]byte `cbor:"7,keyasint"`
}

// EncodeVerifyingKey 编码收据验证密钥文件内容
func EncodeVerifyingKey(raw *pairing.RawKey) ([]byte, error) {
	return zkverify.EncodeCanonical(&wireKey{
		Version:  zkverify.WireVersion,
		Curve:    uint8(types.CurveBN254),
		Alpha:    raw.Alpha,
		Beta:     raw.Beta,
		Gamma:    raw.Gamma,
		Delta:    raw.Delta,
		GammaABC: raw.GammaABC,
	})
}

// LoadVerifyingKey 读取并解码验证密钥文件
//
// 未配置、不可读或内容非法都属于缺失制品。
func LoadVerifyingKey(path string) (*pairing.RawKey, error) {
	if path == "" {
		return nil, zkverify.WrapMissingArtifactError("receipt verifying key", fmt.Errorf("未配置"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zkverify.WrapMissingArtifactError("receipt verifying key", err)
	}

	var wk wireKey
	if err := zkverify.DecodeCanonical("receipt verifying key", data, &wk); err != nil {
		return nil, zkverify.WrapMissingArtifactError("receipt verifying key", err)
	}
	if wk.Version != zkverify.WireVersion || types.CurveTag(wk.Curve) != types.CurveBN254 {
		return nil, zkverify.WrapMissingArtifactError("receipt verifying key",
			fmt.Errorf("不支持的版本或曲线: version=%d, curve=%s", wk.Version, types.CurveTag(wk.Curve)))
	}
	if len(wk.GammaABC) != ClaimInputs+1 {
		return nil, zkverify.WrapMissingArtifactError("receipt verifying key",
			fmt.Errorf("gamma_abc 长度必须为 %d: actual=%d", ClaimInputs+1, len(wk.GammaABC)))
	}
	return &pairing.RawKey{
		Alpha:    wk.Alpha,
		Beta:     wk.Beta,
		Gamma:    wk.Gamma,
		Delta:    wk.Delta,
		GammaABC: wk.GammaABC,
	}, nil
}
