package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkhost/internal/core/ispc/hostabi"
	"github.com/weisyn/zkhost/pkg/types"
)

// backendEnvelope 表示证明包是通用信封 {version, backend, payload}
const backendEnvelope = "envelope"

var verifyFlags struct {
	backend string
	bundle  string
}

// verifyCmd 直接验证证明包
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "验证证明包",
	Long: `读取证明包文件并交给指定后端验证。

--backend 取值: groth16 | toolchain | receipt | envelope
输出 result=1 表示证明成立，result=0 表示不成立；
格式错误、缺失制品等中止情况以退出码 2 结束。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(verifyFlags.bundle)
		if err != nil {
			return fmt.Errorf("读取证明包: %w", err)
		}

		a, err := startApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Stop() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var result types.VerificationResult
		if verifyFlags.backend == backendEnvelope {
			result, err = a.Dispatcher().Dispatch(ctx, payload)
		} else {
			tag, ok := parseBackend(verifyFlags.backend)
			if !ok {
				return fmt.Errorf("未知后端: %s", verifyFlags.backend)
			}
			result, err = a.Dispatcher().DispatchBackend(ctx, tag, payload)
		}
		if err != nil {
			status := hostabi.StatusCode(err)
			fmt.Fprintf(cmd.OutOrStdout(), "status=%d (%s)\n", status, hostabi.GetErrorMessage(status))
			return &abortError{status: status, err: err}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "status=%d result=%d\n", hostabi.StatusOK, result)
		return nil
	},
}

// parseBackend 按名称解析后端标识
func parseBackend(name string) (types.BackendTag, bool) {
	for _, tag := range []types.BackendTag{types.BackendGroth16, types.BackendToolchain, types.BackendReceipt} {
		if tag.String() == name {
			return tag, true
		}
	}
	return 0, false
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyFlags.backend, "backend", "b", backendEnvelope, "证明后端")
	verifyCmd.Flags().StringVar(&verifyFlags.bundle, "bundle", "", "证明包文件路径")
	_ = verifyCmd.MarkFlagRequired("bundle")
}
