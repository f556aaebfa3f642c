package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "membershipd",
	Short: "Run a standalone cluster-membership node",
	Long: `membershipd embeds the membership library in a runnable process:
it gossips with the peers listed in its config file, exposes its gRPC
ExchangeClusterViews endpoint for other membershipd nodes to dial, and
serves a read-only JSON/WebSocket status API for inspection.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
