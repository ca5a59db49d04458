package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm"
)

var runFlags struct {
	wasmPath string
	entry    string
	params   []string
	data     []string
}

// runCmd 执行调用宿主函数的 WASM 合约
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "执行WASM合约",
	Long: `编译并执行一次 WASM 合约调用，合约可通过 env 模块导入验证宿主函数。

--data offset:path  调用前把文件内容写入实例内存的 offset 处（可重复）
--param N           导出函数参数（可重复，按顺序）`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wasmBytes, err := os.ReadFile(runFlags.wasmPath)
		if err != nil {
			return fmt.Errorf("读取WASM文件: %w", err)
		}
		params, err := parseParams(runFlags.params)
		if err != nil {
			return err
		}
		memory, err := parseDataFlags(runFlags.data)
		if err != nil {
			return err
		}

		a, err := startApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Stop() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results, err := a.Engine().Execute(ctx, wasmBytes, wasm.Call{
			Entry:  runFlags.entry,
			Params: params,
			Memory: memory,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "results=%v\n", results)

		if globalFlags.Verbose {
			table, err := renderStats(a.HostFunctions().Stats().GetStats())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), table)
		}
		return nil
	},
}

// renderStats 以表格形式输出宿主函数调用统计
func renderStats(stats map[string]interface{}) (string, error) {
	calls, _ := stats["call_counts"].(map[string]uint64)
	statuses, _ := stats["status_counts"].(map[string]map[uint32]uint64)

	names := make([]string, 0, len(calls))
	for name := range calls {
		names = append(names, name)
	}
	sort.Strings(names)

	data := pterm.TableData{{"宿主函数", "调用次数", "状态分布"}}
	for _, name := range names {
		codes := make([]uint32, 0, len(statuses[name]))
		for code := range statuses[name] {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, fmt.Sprintf("%d×%d", code, statuses[name][code]))
		}
		data = append(data, []string{name, strconv.FormatUint(calls[name], 10), strings.Join(parts, " ")})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// parseParams 解析导出函数参数（支持 0x 前缀）
func parseParams(raw []string) ([]uint64, error) {
	params := make([]uint64, 0, len(raw))
	for _, p := range raw {
		v, err := strconv.ParseUint(p, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("无效的参数 %q: %w", p, err)
		}
		params = append(params, v)
	}
	return params, nil
}

// parseDataFlags 解析 offset:path 形式的内存预置项
func parseDataFlags(entries []string) (map[uint32][]byte, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	memory := make(map[uint32][]byte, len(entries))
	for _, entry := range entries {
		offsetStr, path, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("无效的 --data 参数 %q，应为 offset:path", entry)
		}
		offset, err := strconv.ParseUint(offsetStr, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("无效的内存偏移 %q: %w", offsetStr, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件: %w", err)
		}
		memory[uint32(offset)] = data
	}
	return memory, nil
}

func init() {
	runCmd.Flags().StringVar(&runFlags.wasmPath, "wasm", "", "WASM文件路径")
	runCmd.Flags().StringVar(&runFlags.entry, "entry", "call", "导出函数名")
	runCmd.Flags().StringArrayVar(&runFlags.params, "param", nil, "导出函数参数")
	runCmd.Flags().StringArrayVar(&runFlags.data, "data", nil, "内存预置 offset:path")
	_ = runCmd.MarkFlagRequired("wasm")
}
