package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var keysDir string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage Ed25519 signatory keypairs",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create <account> <passphrase>",
	Short: "Derive and persist a keypair for an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		km := NewKeysManager(keysDir, args[0])
		pub, _, err := km.Create(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "public key: %s\n", hex.EncodeToString(pub))
		return nil
	},
}

var keysLoadCmd = &cobra.Command{
	Use:   "load <account>",
	Short: "Load and print an account's public key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		km := NewKeysManager(keysDir, args[0])
		pub, _, err := km.Load()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "public key: %s\n", hex.EncodeToString(pub))
		return nil
	},
}

func init() {
	keysCmd.PersistentFlags().StringVar(&keysDir, "dir", ".", "directory holding <account>.pub/.priv files")
	keysCmd.AddCommand(keysCreateCmd, keysLoadCmd)
}
