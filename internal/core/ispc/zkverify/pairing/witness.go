package pairing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/pkg/types"
)

// ==================== 见证重算 ====================
//
// 电路制品由运营方提供（见 CircuitSet）：
//   - bytecode：gnark 序列化的 R1CS（求解程序）
//   - constraints：JSON 描述，按声明顺序列出公开/私有输入名称
//
// 调用方的命名赋值必须与描述完全一致（同一集合、同一顺序：先公开后私有），
// 否则中止；赋值不满足电路时结果为 0。

// CircuitDescription 约束系统描述
type CircuitDescription struct {
	Curve         string   `json:"curve"`
	Public        []string `json:"public"`
	Secret        []string `json:"secret"`
	NbConstraints int      `json:"nb_constraints"`
}

// ParseCircuitDescription 严格解析 JSON 描述
func ParseCircuitDescription(data []byte) (*CircuitDescription, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var desc CircuitDescription
	if err := dec.Decode(&desc); err != nil {
		return nil, zkverify.WrapMalformedError("circuit constraints", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, zkverify.WrapMalformedError("circuit constraints", fmt.Errorf("描述之后存在多余数据"))
	}

	seen := make(map[string]struct{}, len(desc.Public)+len(desc.Secret))
	for _, name := range append(append([]string(nil), desc.Public...), desc.Secret...) {
		if name == "" {
			return nil, zkverify.WrapMalformedError("circuit constraints", fmt.Errorf("输入名称为空"))
		}
		if _, dup := seen[name]; dup {
			return nil, zkverify.WrapMalformedError("circuit constraints", fmt.Errorf("输入名称重复: %s", name))
		}
		seen[name] = struct{}{}
	}
	if desc.NbConstraints < 0 {
		return nil, zkverify.WrapMalformedError("circuit constraints", fmt.Errorf("约束数量为负"))
	}
	return &desc, nil
}

// CheckAssignment 校验命名赋值与描述一致：先公开后私有，名称与顺序完全相同
func (d *CircuitDescription) CheckAssignment(inputs []types.NamedInput) error {
	expected := len(d.Public) + len(d.Secret)
	if len(inputs) != expected {
		return zkverify.WrapMalformedError("circuit assignment",
			fmt.Errorf("赋值数量不匹配: expected=%d, actual=%d", expected, len(inputs)))
	}
	for i, in := range inputs {
		var want string
		if i < len(d.Public) {
			want = d.Public[i]
		} else {
			want = d.Secret[i-len(d.Public)]
		}
		if in.Name != want {
			return zkverify.WrapMalformedError("circuit assignment",
				fmt.Errorf("赋值[%d]名称不匹配: expected=%q, actual=%q", i, want, in.Name))
		}
	}
	return nil
}

// loadConstraintSystem 反序列化编译后的约束系统，并与描述交叉校验
func loadConstraintSystem(curve Curve, desc *CircuitDescription, bytecode []byte) (cs constraint.ConstraintSystem, err error) {
	if desc.Curve != curve.Tag().String() {
		return nil, zkverify.WrapMalformedError("circuit constraints",
			fmt.Errorf("描述曲线 %q 与证明包曲线 %s 不一致", desc.Curve, curve.Tag()))
	}

	if err := checkBytecodeHeader(bytecode); err != nil {
		return nil, zkverify.WrapMalformedError("circuit bytecode", err)
	}

	defer func() {
		if r := recover(); r != nil {
			cs = nil
			err = zkverify.WrapMalformedError("circuit bytecode", fmt.Errorf("反序列化异常: %v", r))
		}
	}()

	cs = groth16.NewCS(curve.ID())
	if _, err := cs.ReadFrom(bytes.NewReader(bytecode)); err != nil {
		return nil, zkverify.WrapMalformedError("circuit bytecode", err)
	}

	// GetNbPublicVariables 包含常量 1 导线
	if got := cs.GetNbPublicVariables() - 1; got != len(desc.Public) {
		return nil, zkverify.WrapMalformedError("circuit constraints",
			fmt.Errorf("公开输入数量不匹配: system=%d, description=%d", got, len(desc.Public)))
	}
	if got := cs.GetNbSecretVariables(); got != len(desc.Secret) {
		return nil, zkverify.WrapMalformedError("circuit constraints",
			fmt.Errorf("私有输入数量不匹配: system=%d, description=%d", got, len(desc.Secret)))
	}
	if got := cs.GetNbConstraints(); got != desc.NbConstraints {
		return nil, zkverify.WrapMalformedError("circuit constraints",
			fmt.Errorf("约束数量不匹配: system=%d, description=%d", got, desc.NbConstraints))
	}
	return cs, nil
}

// recomputePublic 构建完整见证并求解，返回声明顺序的公开输入向量
//
// 赋值不满足电路时 satisfied=false 且 err=nil。
func recomputePublic(curve Curve, desc *CircuitDescription, cs constraint.ConstraintSystem, inputs []types.NamedInput) (public []*big.Int, satisfied bool, err error) {
	full, err := witness.New(curve.ScalarField())
	if err != nil {
		return nil, false, zkverify.WrapInternalError(fmt.Sprintf("创建见证失败: %v", err))
	}

	values := make(chan any, len(inputs))
	for _, in := range inputs {
		values <- in.Value
	}
	close(values)
	if err := full.Fill(len(desc.Public), len(desc.Secret), values); err != nil {
		return nil, false, zkverify.WrapMalformedError("circuit assignment", err)
	}

	if solveErr := isSolved(cs, full); solveErr != nil {
		return nil, false, nil
	}

	public = make([]*big.Int, len(desc.Public))
	for i := range desc.Public {
		public[i] = new(big.Int).Set(inputs[i].Value)
	}
	return public, true, nil
}

// isSolved 求解器对异常输入可能 panic，统一视为不满足
func isSolved(cs constraint.ConstraintSystem, full witness.Witness) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("求解异常: %v", r)
		}
	}()
	return cs.IsSolved(full)
}
