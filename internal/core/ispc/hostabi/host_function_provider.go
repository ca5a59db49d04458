package hostabi

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	zkverifyconfig "github.com/weisyn/zkhost/internal/config/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify"
	"github.com/weisyn/zkhost/internal/core/ispc/zkverify/pairing"
	ispcif "github.com/weisyn/zkhost/pkg/interfaces/ispc"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/types"
)

// ████████████████████████████████████████████████████████████████████████████████████████████
// HostFunctionProvider - 零知识证明验证宿主函数提供者
// ████████████████████████████████████████████████████████████████████████████████████████████
//
// 🎯 **设计目的**：
// 把验证分发器适配为 wazero `env` 模块中的宿主函数。
//
// 🏗️ **调用约定**：
//   - 参数为 (ptr, len) 对加上 1 字节输出缓冲区 (out_ptr, out_len)
//   - 返回 u32 状态码：0 表示结果字节已写入；非零表示宿主级失败，输出缓冲区保持不变
//   - 证明不成立时状态码为 0、结果字节为 0
//
// 🔒 **并发安全**：
// 提供者只持有不可变依赖；每次调用的输入都从客户内存复制后再验证。
//
// ████████████████████████████████████████████████████████████████████████████████████████████

// 宿主函数导出名称
const (
	FuncZKVerify             = "zk_verify"
	FuncZKVerifyGroth16      = "zk_verify_groth16"
	FuncZKVerifyGroth16Split = "zk_verify_groth16_split"
	FuncZKVerifyNoir         = "zk_verify_noir"
	FuncZKVerifyRisc0        = "zk_verify_risc0"
	FuncZKVerifierABIVersion = "zk_verifier_abi_version"
)

// 验证宿主 ABI 版本，编码为 (major<<16)|(minor<<8)|patch
const (
	ABIVersionMajor = 1
	ABIVersionMinor = 0
	ABIVersionPatch = 0
)

// ABIVersion 返回编码后的 ABI 版本号
func ABIVersion() uint32 {
	return uint32((ABIVersionMajor << 16) | (ABIVersionMinor << 8) | ABIVersionPatch)
}

// HostFunctionProvider 宿主函数提供者
type HostFunctionProvider struct {
	logger        log.Logger
	dispatcher    ispcif.Dispatcher
	maxBundleSize uint32
	stats         *CallStats
}

// NewHostFunctionProvider 创建宿主函数提供者
//
// 📋 **参数**：
//   - logger: 日志服务
//   - dispatcher: 验证分发器
//   - cfg: 验证配置（提供宿主读取上限）
//
// 🔧 **返回值**：
//   - *HostFunctionProvider: 提供者实例
func NewHostFunctionProvider(logger log.Logger, dispatcher ispcif.Dispatcher, cfg *zkverifyconfig.Config) *HostFunctionProvider {
	if cfg == nil {
		cfg = zkverifyconfig.New(nil)
	}
	return &HostFunctionProvider{
		logger:        logger,
		dispatcher:    dispatcher,
		maxBundleSize: cfg.GetMaxBundleSize(),
		stats:         NewCallStats(),
	}
}

// Stats 返回调用统计
func (p *HostFunctionProvider) Stats() *CallStats {
	return p.stats
}

// BuildHostFunctions 构建宿主函数映射（函数名 → Go 函数），由 wazero 运行时注册到 env 模块
//
// ⚠️ 函数签名需要与合约的 import 声明完全一致。
func (p *HostFunctionProvider) BuildHostFunctions() map[string]interface{} {
	return map[string]interface{}{
		// zk_verifier_abi_version - 签名: () -> (version: u32)
		FuncZKVerifierABIVersion: func() uint32 {
			version := ABIVersion()
			if p.logger != nil {
				p.logger.Debugf("%s: v%d.%d.%d (0x%08X)", FuncZKVerifierABIVersion, ABIVersionMajor, ABIVersionMinor, ABIVersionPatch, version)
			}
			return version
		},

		// zk_verify - 通用信封 {version, backend, payload}
		// 签名: (bundle_ptr, bundle_len, out_ptr, out_len: u32) -> (status: u32)
		FuncZKVerify: func(ctx context.Context, m api.Module, bundlePtr, bundleLen, outPtr, outLen uint32) uint32 {
			return p.invoke(ctx, FuncZKVerify, m, outPtr, outLen, func(in [][]byte) (types.VerificationResult, error) {
				return p.dispatcher.Dispatch(ctx, in[0])
			}, guestBuffer{"bundle", bundlePtr, bundleLen})
		},

		// zk_verify_groth16 - 配对信封（布局由信封显式标记）
		FuncZKVerifyGroth16: func(ctx context.Context, m api.Module, bundlePtr, bundleLen, outPtr, outLen uint32) uint32 {
			return p.invokeBackend(ctx, FuncZKVerifyGroth16, types.BackendGroth16, m, bundlePtr, bundleLen, outPtr, outLen)
		},

		// zk_verify_groth16_split - 四个独立缓冲区，入口即声明 positional 布局
		// 签名: (circuit_ptr, circuit_len, points_ptr, points_len, inputs_ptr, inputs_len,
		//        gamma_abc_ptr, gamma_abc_len, out_ptr, out_len: u32) -> (status: u32)
		FuncZKVerifyGroth16Split: func(
			ctx context.Context, m api.Module,
			circuitPtr, circuitLen, pointsPtr, pointsLen, inputsPtr, inputsLen, gammaABCPtr, gammaABCLen uint32,
			outPtr, outLen uint32,
		) uint32 {
			return p.invoke(ctx, FuncZKVerifyGroth16Split, m, outPtr, outLen, func(in [][]byte) (types.VerificationResult, error) {
				payload, err := pairing.PositionalPayload(in[0], in[1], in[2], in[3])
				if err != nil {
					return types.ResultRejected, zkverify.WrapInternalError(fmt.Sprintf("组装 positional 信封失败: %v", err))
				}
				return p.dispatcher.DispatchBackend(ctx, types.BackendGroth16, payload)
			},
				guestBuffer{"circuit", circuitPtr, circuitLen},
				guestBuffer{"points", pointsPtr, pointsLen},
				guestBuffer{"inputs", inputsPtr, inputsLen},
				guestBuffer{"gamma_abc", gammaABCPtr, gammaABCLen},
			)
		},

		// zk_verify_noir - 外部工具链证明包
		FuncZKVerifyNoir: func(ctx context.Context, m api.Module, bundlePtr, bundleLen, outPtr, outLen uint32) uint32 {
			return p.invokeBackend(ctx, FuncZKVerifyNoir, types.BackendToolchain, m, bundlePtr, bundleLen, outPtr, outLen)
		},

		// zk_verify_risc0 - zkVM 收据证明包
		FuncZKVerifyRisc0: func(ctx context.Context, m api.Module, bundlePtr, bundleLen, outPtr, outLen uint32) uint32 {
			return p.invokeBackend(ctx, FuncZKVerifyRisc0, types.BackendReceipt, m, bundlePtr, bundleLen, outPtr, outLen)
		},
	}
}

func (p *HostFunctionProvider) invokeBackend(
	ctx context.Context, name string, backend types.BackendTag, m api.Module,
	bundlePtr, bundleLen, outPtr, outLen uint32,
) uint32 {
	return p.invoke(ctx, name, m, outPtr, outLen, func(in [][]byte) (types.VerificationResult, error) {
		return p.dispatcher.DispatchBackend(ctx, backend, in[0])
	}, guestBuffer{"bundle", bundlePtr, bundleLen})
}

// invoke 宿主函数公共流程：校验输出 → 复制输入 → 验证 → 写结果字节
func (p *HostFunctionProvider) invoke(
	ctx context.Context,
	name string,
	m api.Module,
	outPtr, outLen uint32,
	verify func(inputs [][]byte) (types.VerificationResult, error),
	bufs ...guestBuffer,
) (status uint32) {
	defer func() {
		p.stats.RecordCall(name, status)
		if status == StatusOK || p.logger == nil {
			return
		}
		// 合约可以任意构造调用方错误，只在调试级别记录
		if IsCallerFault(status) {
			p.logger.Debugf("%s: 调用中止 status=%d (%s)", name, status, GetErrorMessage(status))
			return
		}
		p.logger.Warnf("%s: 调用中止 status=%d (%s)", name, status, GetErrorMessage(status))
	}()

	if m == nil || m.Memory() == nil {
		return ErrMemoryAccessFailed
	}
	mem := m.Memory()
	if status := checkOutput(mem, outPtr, outLen); status != StatusOK {
		return status
	}
	inputs, status := readInputs(mem, p.maxBundleSize, bufs...)
	if status != StatusOK {
		return status
	}
	if p.dispatcher == nil {
		return ErrInternalError
	}

	result, err := verify(inputs)
	if err != nil {
		if p.logger != nil {
			p.logger.Debugf("%s: 验证中止: %v", name, err)
		}
		return StatusCode(err)
	}
	if !mem.WriteByte(outPtr, byte(result)) {
		return ErrMemoryAccessFailed
	}
	if p.logger != nil {
		p.logger.Debugf("%s: result=%d", name, result)
	}
	return StatusOK
}
