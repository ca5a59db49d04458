package testutil

// ==================== 最小 WASM 模块构建 ====================
//
// 测试需要的合约只做一件事：把导出函数的参数原样转发给 env 中的宿主函数，
// 因此直接手写二进制格式，不引入额外的编译工具链。

const (
	wasmSectionType     = 0x01
	wasmSectionImport   = 0x02
	wasmSectionFunction = 0x03
	wasmSectionMemory   = 0x05
	wasmSectionExport   = 0x07
	wasmSectionCode     = 0x0a

	wasmTypeFunc = 0x60
	wasmTypeI32  = 0x7f

	wasmExternFunc   = 0x00
	wasmExternMemory = 0x02

	wasmOpLocalGet = 0x20
	wasmOpCall     = 0x10
	wasmOpEnd      = 0x0b
)

// ForwarderExport 转发模块导出的函数名
const ForwarderExport = "call"

// ForwarderMemory 转发模块导出的内存名
const ForwarderMemory = "memory"

// ForwarderModule 构建转发模块
//
// 模块导入 env.<hostFunc>: (i32 × nParams) -> i32，
// 导出同签名的 "call" 以及 1 页（64KiB）内存 "memory"。
func ForwarderModule(hostFunc string, nParams int) []byte {
	funcType := []byte{wasmTypeFunc}
	funcType = append(funcType, uleb(uint32(nParams))...)
	for i := 0; i < nParams; i++ {
		funcType = append(funcType, wasmTypeI32)
	}
	funcType = append(funcType, 0x01, wasmTypeI32)

	imp := append(wasmName("env"), wasmName(hostFunc)...)
	imp = append(imp, wasmExternFunc, 0x00)

	exports := append(wasmName(ForwarderExport), wasmExternFunc, 0x01)
	exports = append(exports, wasmName(ForwarderMemory)...)
	exports = append(exports, wasmExternMemory, 0x00)

	body := []byte{0x00} // 无局部变量
	for i := 0; i < nParams; i++ {
		body = append(body, wasmOpLocalGet)
		body = append(body, uleb(uint32(i))...)
	}
	body = append(body, wasmOpCall, 0x00, wasmOpEnd)

	module := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	module = append(module, wasmSection(wasmSectionType, wasmVec(1, funcType))...)
	module = append(module, wasmSection(wasmSectionImport, wasmVec(1, imp))...)
	module = append(module, wasmSection(wasmSectionFunction, wasmVec(1, []byte{0x00}))...)
	module = append(module, wasmSection(wasmSectionMemory, wasmVec(1, []byte{0x00, 0x01}))...)
	module = append(module, wasmSection(wasmSectionExport, wasmVec(2, exports))...)
	module = append(module, wasmSection(wasmSectionCode, wasmVec(1, append(uleb(uint32(len(body))), body...)))...)
	return module
}

func wasmSection(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(content)))...)
	return append(out, content...)
}

func wasmVec(n uint32, items []byte) []byte {
	return append(uleb(n), items...)
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
