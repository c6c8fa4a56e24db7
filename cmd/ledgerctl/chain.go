package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ledgerd/core"
)

var blockStorePath string

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Inspect a block store without running a node",
}

func openReadOnlyCoordinator() (*core.Coordinator, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return core.NewCoordinator(blockStorePath, core.NewHashProvider(), logger)
}

var chainTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the current chain height and tip hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := openReadOnlyCoordinator()
		if err != nil {
			return err
		}
		defer coord.Close()
		top, ok := coord.BlockQuery().Top()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "empty chain")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "height=%d hash=%s\n", top.Header.Height, top.Hash.Hex())
		return nil
	},
}

var chainGetBlockCmd = &cobra.Command{
	Use:   "get-block <height>",
	Short: "Print a block by height",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid height: %w", err)
		}
		coord, err := openReadOnlyCoordinator()
		if err != nil {
			return err
		}
		defer coord.Close()
		blk, ok := coord.BlockQuery().GetBlockByHeight(h)
		if !ok {
			return fmt.Errorf("block %d not found", h)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "height=%d hash=%s prev=%s txs=%d\n",
			blk.Header.Height, blk.Hash.Hex(), blk.Header.PrevHash.Hex(), len(blk.Transactions))
		return nil
	},
}

var chainGetAccountCmd = &cobra.Command{
	Use:   "get-account <name> <domain>",
	Short: "Print an account's quorum and signatories",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := openReadOnlyCoordinator()
		if err != nil {
			return err
		}
		defer coord.Close()
		id := core.NewAccountID(args[0], args[1])
		acc, ok := coord.WSVQuery().GetAccount(id)
		if !ok {
			return fmt.Errorf("account %s not found", id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "id=%s quorum=%d signatories=%d\n", acc.ID, acc.Quorum, len(acc.Signatories))
		return nil
	},
}

func init() {
	chainCmd.PersistentFlags().StringVar(&blockStorePath, "block-store", "ledger.blocks", "path to the block store file")
	chainCmd.AddCommand(chainTopCmd, chainGetBlockCmd, chainGetAccountCmd)
}
