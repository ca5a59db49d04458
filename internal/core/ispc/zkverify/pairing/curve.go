package pairing

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/pkg/types"
)

// ==================== 曲线能力接口 ====================

// Curve 配对友好曲线上的 Groth16 验证能力
//
// 每条曲线负责自己的点解码、验证密钥预处理与配对检查，
// 验证器只通过曲线标识选择实现，不感知具体曲线类型。
type Curve interface {
	// Tag 线上曲线标识
	Tag() types.CurveTag

	// ID gnark 曲线标识
	ID() ecc.ID

	// ScalarField 标量域模数（公开输入必须严格小于它）
	ScalarField() *big.Int

	// G1Size / G2Size 非压缩点编码长度
	G1Size() int
	G2Size() int

	// PrepareKey 解码五个密钥元素并完成预处理
	PrepareKey(raw *RawKey) (groth16.VerifyingKey, error)

	// DecodeProof 解码证明点 a、b、c
	DecodeProof(raw *RawProof) (groth16.Proof, error)

	// Verify 配对检查；返回 false 表示证明不成立
	Verify(vk groth16.VerifyingKey, proof groth16.Proof, public []*big.Int) (bool, error)
}

// RawKey 验证密钥的原始编码
type RawKey struct {
	Alpha    []byte
	Beta     []byte
	Gamma    []byte
	Delta    []byte
	GammaABC [][]byte
}

// RawProof 证明点的原始编码
type RawProof struct {
	A []byte
	B []byte
	C []byte
}

// ==================== 曲线注册表 ====================

// Registry 按曲线标识索引的曲线集合（只读，构建后不再修改）
type Registry struct {
	curves map[types.CurveTag]Curve
}

// AllCurves 返回全部已实现的曲线
func AllCurves() []Curve {
	return []Curve{bn254Curve{}, bls12377Curve{}, bls12381Curve{}}
}

// NewRegistry 只注册 enabled 中列出的曲线
func NewRegistry(enabled []types.CurveTag) *Registry {
	r := &Registry{curves: make(map[types.CurveTag]Curve)}
	for _, c := range AllCurves() {
		for _, tag := range enabled {
			if c.Tag() == tag {
				r.curves[tag] = c
			}
		}
	}
	return r
}

// Get 按标识取曲线；未知或未启用返回 false
func (r *Registry) Get(tag types.CurveTag) (Curve, bool) {
	c, ok := r.curves[tag]
	return c, ok
}

// Tags 已启用的曲线标识（升序）
func (r *Registry) Tags() []types.CurveTag {
	tags := make([]types.CurveTag, 0, len(r.curves))
	for tag := range r.curves {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// ==================== 规范点解码 ====================

// canonicalPoint 由 gnark-crypto 仿射点类型满足
type canonicalPoint[T any] interface {
	*T
	SetBytes(buf []byte) (int, error)
	Marshal() []byte
}

// decodePoint 严格解码一个非压缩点
//
// 长度必须精确，SetBytes 会做曲线与子群检查，
// 重新序列化必须得到完全相同的字节。
func decodePoint[T any, P canonicalPoint[T]](dst P, buf []byte, size int, name string) error {
	if len(buf) != size {
		return zkverify.WrapMalformedError(name, fmt.Errorf("点编码长度错误: expected=%d, actual=%d", size, len(buf)))
	}
	n, err := dst.SetBytes(buf)
	if err != nil {
		return zkverify.WrapMalformedError(name, err)
	}
	if n != size {
		return zkverify.WrapMalformedError(name, fmt.Errorf("点编码必须为非压缩格式"))
	}
	if !bytes.Equal(dst.Marshal(), buf) {
		return zkverify.WrapMalformedError(name, fmt.Errorf("点编码非规范"))
	}
	return nil
}

// decodePoints 解码 gamma_abc 列表
func decodePoints[T any, P canonicalPoint[T]](raw [][]byte, size int, name string) ([]T, error) {
	out := make([]T, len(raw))
	for i := range raw {
		if err := decodePoint(P(&out[i]), raw[i], size, fmt.Sprintf("%s[%d]", name, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// keyTypeError 曲线实现收到其它曲线的对象，属于内部错误
func keyTypeError(curve types.CurveTag, what string, v any) error {
	return zkverify.WrapInternalError(fmt.Sprintf("曲线 %s 收到错误的%s类型 %T", curve, what, v))
}
