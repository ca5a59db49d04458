package pairing

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
)

// ==================== 运营方电路制品 ====================
//
// 证明包中的 circuit_bytecode 只是制品引用：32 字节即 SHA-256 摘要，
// 否则视为完整字节码并取其摘要。宿主只反序列化运营方目录中的文件：
//   <dir>/<hex(sha256)>.r1cs  gnark 序列化的约束系统
//   <dir>/<hex(sha256)>.json  约束系统描述
// 调用方提供的 circuit_constraints 必须与运营方描述逐字节相同。

const (
	// DigestSize 制品引用摘要长度
	DigestSize = sha256.Size

	// bytecodeHeaderSize gnark 约束系统头部：总长度 + 主/次/修订版本号，各 8 字节小端
	bytecodeHeaderSize = 32

	// maxBytecodeSize 单个电路字节码上限 256MB
	maxBytecodeSize = 256 * 1024 * 1024
)

// CircuitSet 运营方配置的电路制品目录，每次调用从磁盘读取，不缓存
type CircuitSet struct {
	dir string
}

// NewCircuitSet 创建电路制品目录，dir 为空表示不支持见证重算
func NewCircuitSet(dir string) *CircuitSet {
	return &CircuitSet{dir: dir}
}

// Dir 目录路径
func (s *CircuitSet) Dir() string {
	return s.dir
}

// ArtifactDigest 计算调用方制品引用对应的摘要
func ArtifactDigest(ref []byte) [DigestSize]byte {
	if len(ref) == DigestSize {
		var d [DigestSize]byte
		copy(d[:], ref)
		return d
	}
	return sha256.Sum256(ref)
}

// ArtifactFileNames 摘要对应的字节码与描述文件名
func ArtifactFileNames(digest [DigestSize]byte) (bytecode, constraints string) {
	name := hex.EncodeToString(digest[:])
	return name + ".r1cs", name + ".json"
}

// Resolve 按引用读取运营方制品
//
// 目录未配置、文件缺失或字节码内容与文件名摘要不符，都属于缺失制品。
func (s *CircuitSet) Resolve(ref []byte) (*CircuitArtifact, error) {
	if s.dir == "" {
		return nil, zkverify.WrapMissingArtifactError("pairing circuit set", fmt.Errorf("未配置电路制品目录"))
	}
	digest := ArtifactDigest(ref)
	bytecodeName, constraintsName := ArtifactFileNames(digest)

	bytecode, err := readArtifact(filepath.Join(s.dir, bytecodeName))
	if err != nil {
		return nil, zkverify.WrapMissingArtifactError("circuit bytecode "+bytecodeName, err)
	}
	if sha256.Sum256(bytecode) != digest {
		return nil, zkverify.WrapMissingArtifactError("circuit bytecode "+bytecodeName, fmt.Errorf("内容摘要与文件名不符"))
	}
	constraints, err := readArtifact(filepath.Join(s.dir, constraintsName))
	if err != nil {
		return nil, zkverify.WrapMissingArtifactError("circuit constraints "+constraintsName, err)
	}
	return &CircuitArtifact{Bytecode: bytecode, Constraints: constraints}, nil
}

func readArtifact(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("不是普通文件")
	}
	if info.Size() > maxBytecodeSize {
		return nil, fmt.Errorf("文件超过上限: %d", info.Size())
	}
	return os.ReadFile(path)
}

// checkBytecodeHeader 反序列化前校验 gnark 头部声明的长度与实际长度一致
func checkBytecodeHeader(bytecode []byte) error {
	if len(bytecode) < bytecodeHeaderSize {
		return errors.New("字节码短于头部")
	}
	if len(bytecode) > maxBytecodeSize {
		return fmt.Errorf("字节码超过上限: %d", len(bytecode))
	}
	if declared := binary.LittleEndian.Uint64(bytecode[:8]); declared != uint64(len(bytecode)-bytecodeHeaderSize) {
		return fmt.Errorf("头部长度不符: declared=%d, actual=%d", declared, len(bytecode)-bytecodeHeaderSize)
	}
	if major := binary.LittleEndian.Uint64(bytecode[8:16]); major != 0 {
		return fmt.Errorf("不支持的字节码版本: major=%d", major)
	}
	return nil
}
