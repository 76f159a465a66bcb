// This program sends commands to a ledger node.
package main

import "github.com/ardanlabs/blockledger/app/tooling/client/cmd"

func main() {
	cmd.Execute()
}
