package cmd

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
	"github.com/spf13/cobra"
)

var createAccountCmd = &cobra.Command{
	Use:   "create-account <account> <starting-balance>",
	Short: "Open an account funded with a starting balance.",
	Args:  cobra.ExactArgs(2),
	RunE:  createAccountRun,
}

func init() {
	rootCmd.AddCommand(createAccountCmd)
}

func createAccountRun(cmd *cobra.Command, args []string) error {
	account, err := database.ToAccountID(args[0])
	if err != nil {
		return err
	}

	startingBalance, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	return send(cmd, wire.NewCreateAccount(account, startingBalance))
}
