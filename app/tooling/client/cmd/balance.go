package cmd

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <account>",
	Short: "Print the balance of an account.",
	Args:  cobra.ExactArgs(1),
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	account, err := database.ToAccountID(args[0])
	if err != nil {
		return err
	}

	return send(cmd, wire.NewBalance(account))
}
