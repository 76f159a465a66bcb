// Package wire defines the commands and results exchanged with the node over
// a connection and the CBOR codec that carries them.
package wire

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/fxamacker/cbor/v2"
)

// Set of command types understood by the node.
const (
	TypeCreateAccount = "create-account"
	TypeTransfer      = "transfer"
	TypeBalance       = "balance"
)

// MaxCommandSize bounds how many bytes are read from a connection for a
// single command.
const MaxCommandSize = 4096

// Command is a request sent by a client. Which fields are used depends on
// the type.
type Command struct {
	Type            string             `json:"type" validate:"required"`
	Account         database.AccountID `json:"account,omitempty"`
	StartingBalance float64            `json:"starting_balance,omitempty" validate:"finite,gte=0"`
	From            database.AccountID `json:"from_account,omitempty"`
	To              database.AccountID `json:"to_account,omitempty"`
	Amount          float64            `json:"amount,omitempty" validate:"finite,gte=0"`
}

// NewCreateAccount constructs a create account command.
func NewCreateAccount(account database.AccountID, startingBalance float64) Command {
	return Command{Type: TypeCreateAccount, Account: account, StartingBalance: startingBalance}
}

// NewTransfer constructs a transfer command.
func NewTransfer(from database.AccountID, to database.AccountID, amount float64) Command {
	return Command{Type: TypeTransfer, From: from, To: to, Amount: amount}
}

// NewBalance constructs a balance query command.
func NewBalance(account database.AccountID) Command {
	return Command{Type: TypeBalance, Account: account}
}

// Result is the reply to a command. A failed command carries only the
// reason in Error.
type Result struct {
	OK          bool                 `json:"ok"`
	BlockID     database.BlockID     `json:"block_id"`
	OperationID database.OperationID `json:"operation_id"`
	Balance     *float64             `json:"balance,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Failure constructs a failed result from the error.
func Failure(err error) Result {
	return Result{Error: err.Error()}
}

// String renders the result the way the client prints it.
func (r Result) String() string {
	switch {
	case !r.OK:
		return fmt.Sprintf("error: %s", r.Error)
	case r.Balance != nil:
		return fmt.Sprintf("balance: %g", *r.Balance)
	default:
		return fmt.Sprintf("confirmed: block[%d] operation[%s]", r.BlockID, r.OperationID)
	}
}

// =============================================================================

// Codec encodes values with canonical CBOR and rejects unknown or duplicate
// fields when decoding.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCodec constructs the codec.
func NewCodec() (*Codec, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("could not build encoder: %w", err)
	}

	decOptions := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels:   8,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}
	dec, err := decOptions.DecMode()
	if err != nil {
		return nil, fmt.Errorf("could not build decoder: %w", err)
	}

	c := Codec{
		enc: enc,
		dec: dec,
	}

	return &c, nil
}

// Encode writes one value to the writer.
func (c *Codec) Encode(w io.Writer, v any) error {
	return c.enc.NewEncoder(w).Encode(v)
}

// Decode reads one value from the reader. At most MaxCommandSize bytes are
// consumed. An empty stream returns io.EOF.
func (c *Codec) Decode(r io.Reader, v any) error {
	return c.dec.NewDecoder(io.LimitReader(r, MaxCommandSize)).Decode(v)
}

// Exchange dials the node, sends the command and waits for the result. The
// connection is closed when the context ends.
func (c *Codec) Exchange(ctx context.Context, addr string, cmd Command) (Result, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{}, fmt.Errorf("connecting to node %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := c.Encode(conn, cmd); err != nil {
		return Result{}, fmt.Errorf("sending %s command: %w", cmd.Type, err)
	}

	var res Result
	if err := c.Decode(conn, &res); err != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("waiting for %s result: %w", cmd.Type, ctx.Err())
		}
		return Result{}, fmt.Errorf("waiting for %s result: %w", cmd.Type, err)
	}

	return res, nil
}
