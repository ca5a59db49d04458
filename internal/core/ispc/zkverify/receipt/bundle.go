package receipt

import (
	"fmt"
	"math"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/pkg/types"
)

// ==================== 线上格式 ====================
//
// 收据证明包：{1: version, 2: receipt, 3: program_id}
// 收据：      {1: version, 2: seal, 3: journal}
//
// program_id 必须恰好 8 个字，每个字都在 uint32 范围内。

type wireBundle struct {
	Version   uint64   `cbor:"1,keyasint"`
	Receipt   []byte   `cbor:"2,keyasint"`
	ProgramID []uint64 `cbor:"3,keyasint"`
}

type wireReceipt struct {
	Version uint64 `cbor:"1,keyasint"`
	Seal    []byte `cbor:"2,keyasint"`
	Journal []byte `cbor:"3,keyasint"`
}

// Receipt zkVM 执行收据
type Receipt struct {
	// Seal 证明封印（BN254 Groth16 的 a‖b‖c）
	Seal []byte
	// Journal 客体程序公开输出
	Journal []byte
}

// Bundle 解码后的收据证明包
type Bundle struct {
	Receipt   *Receipt
	ProgramID types.ProgramID
}

// DecodeBundle 严格解码收据证明包
func DecodeBundle(data []byte) (*Bundle, error) {
	var wb wireBundle
	if err := zkverify.DecodeCanonical("receipt bundle", data, &wb); err != nil {
		return nil, err
	}
	if err := zkverify.CheckVersion("receipt bundle", wb.Version); err != nil {
		return nil, err
	}

	id, err := decodeProgramID(wb.ProgramID)
	if err != nil {
		return nil, err
	}
	receipt, err := DecodeReceipt(wb.Receipt)
	if err != nil {
		return nil, err
	}
	return &Bundle{Receipt: receipt, ProgramID: id}, nil
}

// DecodeReceipt 严格解码收据
func DecodeReceipt(data []byte) (*Receipt, error) {
	var wr wireReceipt
	if err := zkverify.DecodeCanonical("receipt", data, &wr); err != nil {
		return nil, err
	}
	if err := zkverify.CheckVersion("receipt", wr.Version); err != nil {
		return nil, err
	}
	if len(wr.Seal) == 0 {
		return nil, zkverify.WrapMalformedError("receipt", fmt.Errorf("seal 为空"))
	}
	return &Receipt{Seal: wr.Seal, Journal: wr.Journal}, nil
}

func decodeProgramID(words []uint64) (types.ProgramID, error) {
	var id types.ProgramID
	if len(words) != types.ProgramIDWords {
		return id, zkverify.WrapMalformedError("program id",
			fmt.Errorf("字数必须为 %d: actual=%d", types.ProgramIDWords, len(words)))
	}
	for i, w := range words {
		if w > math.MaxUint32 {
			return id, zkverify.WrapMalformedError("program id", fmt.Errorf("字[%d]超出 uint32 范围", i))
		}
		id[i] = uint32(w)
	}
	return id, nil
}

// EncodeReceipt 编码收据
func EncodeReceipt(r *Receipt) ([]byte, error) {
	return zkverify.EncodeCanonical(&wireReceipt{Version: zkverify.WireVersion, Seal: r.Seal, Journal: r.Journal})
}

// EncodeBundle 编码收据证明包
func EncodeBundle(r *Receipt, id types.ProgramID) ([]byte, error) {
	receipt, err := EncodeReceipt(r)
	if err != nil {
		return nil, err
	}
	words := make([]uint64, len(id))
	for i, w := range id {
		words[i] = uint64(w)
	}
	return zkverify.EncodeCanonical(&wireBundle{Version: zkverify.WireVersion, Receipt: receipt, ProgramID: words})
}
