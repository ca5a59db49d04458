package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkhost/internal/app/version"
	"github.com/weisyn/zkhost/internal/core/ispc/hostabi"
)

// versionCmd 版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion(hostabi.ABIVersion()))
	},
}
