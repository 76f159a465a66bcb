package cmd

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <from> <to> <amount>",
	Short: "Move funds between two accounts.",
	Args:  cobra.ExactArgs(3),
	RunE:  transferRun,
}

func init() {
	rootCmd.AddCommand(transferCmd)
}

func transferRun(cmd *cobra.Command, args []string) error {
	from, err := database.ToAccountID(args[0])
	if err != nil {
		return err
	}

	to, err := database.ToAccountID(args[1])
	if err != nil {
		return err
	}

	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}

	return send(cmd, wire.NewTransfer(from, to, amount))
}
