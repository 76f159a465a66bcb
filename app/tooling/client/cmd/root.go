// Package cmd contains the client commands.
package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
	"github.com/ardanlabs/blockledger/foundation/logger"
	"github.com/spf13/cobra"
)

var (
	host    string
	port    int
	verbose bool
	timeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "127.0.0.1", "Host of the node.")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 9999, "Command port of the node.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log the exchange with the node.")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Give up waiting for the node after this long, 0 waits forever.")
}

var rootCmd = &cobra.Command{
	Use:          "client",
	Short:        "Send commands to a ledger node",
	SilenceUsage: true,
}

// Execute runs the command named on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// send delivers the command to the node and prints the result. A rejected
// command is returned as an error.
func send(cmd *cobra.Command, c wire.Command) error {
	log, err := logger.New("CLIENT", verbose, "stderr")
	if err != nil {
		return err
	}
	defer log.Sync()

	codec, err := wire.NewCodec()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	log.Debugw("client", "status", "connecting to node", "addr", addr, "type", c.Type)

	res, err := codec.Exchange(ctx, addr, c)
	if err != nil {
		return err
	}

	log.Debugw("client", "status", "result received", "ok", res.OK)

	fmt.Fprintln(cmd.OutOrStdout(), res)
	if !res.OK {
		return fmt.Errorf("%s rejected: %s", c.Type, res.Error)
	}

	return nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
