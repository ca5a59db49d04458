package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkhost/configs"
	"github.com/weisyn/zkhost/internal/app"
)

// 进程退出码
const (
	exitOK      = 0
	exitFailure = 1
	// exitAbort 验证调用中止（非零状态码），区别于证明不成立
	exitAbort = 2
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile string // 配置文件路径
	Verbose    bool   // 详细模式
}

var globalFlags GlobalFlags

// abortError 携带宿主状态码的中止错误
type abortError struct {
	status uint32
	err    error
}

func (e *abortError) Error() string {
	return fmt.Sprintf("调用中止 (status=%d): %v", e.status, e.err)
}

func (e *abortError) Unwrap() error { return e.err }

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "zkhost",
	Short: "零知识证明验证宿主",
	Long: `zkhost - 面向合约的零知识证明验证宿主

支持三类证明后端:
- groth16   配对型电路 SNARK（BN254 / BLS12-377 / BLS12-381）
- toolchain 外部工具链（Noir/nargo）
- receipt   zkVM 收据（RISC Zero 风格）

可直接验证证明包，也可执行调用宿主函数的 WASM 合约。`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// startApp 按全局标志启动应用
func startApp() (app.App, error) {
	if globalFlags.ConfigFile != "" {
		return app.Start(app.WithConfigFile(globalFlags.ConfigFile))
	}
	return app.Start(app.WithEmbeddedConfig(configs.GetDefaultConfig()))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "配置文件路径 (JSON)，默认使用内置配置")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "详细输出")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		var abort *abortError
		if errors.As(err, &abort) {
			os.Exit(exitAbort)
		}
		os.Exit(exitFailure)
	}
	os.Exit(exitOK)
}
