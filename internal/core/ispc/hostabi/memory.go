package hostabi

import (
	"github.com/tetratelabs/wazero/api"
)

// ==================== 客户内存访问 ====================
//
// ⚠️ 所有输入在验证前都复制出客户内存：wazero 返回的切片是线性内存的视图，
// 客户代码（或 memory.grow）可能在宿主持有期间改变它。

// guestBuffer 客户内存中的 (ptr, len) 引用
type guestBuffer struct {
	name string
	ptr  uint32
	len  uint32
}

// inBounds 检查 [ptr, ptr+n) 是否落在内存内，使用 64 位运算避免回绕
func inBounds(mem api.Memory, ptr, n uint32) bool {
	return uint64(ptr)+uint64(n) <= uint64(mem.Size())
}

// checkOutput 输出缓冲区必须恰好 1 字节且可写
func checkOutput(mem api.Memory, outPtr, outLen uint32) uint32 {
	if outLen != 1 {
		return ErrInvalidParameter
	}
	if !inBounds(mem, outPtr, outLen) {
		return ErrMemoryAccessFailed
	}
	return StatusOK
}

// readInputs 校验并复制所有输入缓冲区
//
// 单个缓冲区为空返回 ErrInvalidParameter；单个或合计超过 limit 返回 ErrBufferTooLarge。
func readInputs(mem api.Memory, limit uint32, bufs ...guestBuffer) ([][]byte, uint32) {
	var total uint64
	for _, b := range bufs {
		if b.len == 0 {
			return nil, ErrInvalidParameter
		}
		total += uint64(b.len)
		if total > uint64(limit) {
			return nil, ErrBufferTooLarge
		}
		if !inBounds(mem, b.ptr, b.len) {
			return nil, ErrMemoryAccessFailed
		}
	}

	out := make([][]byte, len(bufs))
	for i, b := range bufs {
		view, ok := mem.Read(b.ptr, b.len)
		if !ok {
			return nil, ErrMemoryAccessFailed
		}
		out[i] = append([]byte(nil), view...)
	}
	return out, StatusOK
}
