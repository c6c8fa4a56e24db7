package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{Use: "ledgerctl", Short: "Key management and chain inspection for a ledger node"}
	rootCmd.AddCommand(keysCmd, chainCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
