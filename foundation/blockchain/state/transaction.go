package state

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// Set of business rule rejections. None of these are fatal to the node.
var (
	ErrReservedAccount   = errors.New("master account is reserved")
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("cannot transfer to the same account")
	ErrInvalidAmount     = errors.New("amount must be a finite non-negative number")
	ErrNotImplemented    = errors.New("got command that is not implemented")
)

// Receipt identifies the block that confirmed an operation.
type Receipt struct {
	BlockID     database.BlockID     `json:"block_id"`
	OperationID database.OperationID `json:"operation_id"`
}

// =============================================================================

// QueryAccountBalance returns the balance of a normal account.
func (s *State) QueryAccountBalance(account database.AccountID) (float64, error) {
	if account.IsMaster() {
		return 0, fmt.Errorf("balance of account %s: %w", account, ErrReservedAccount)
	}

	balance, found := s.QueryBalance(account)
	if !found {
		return 0, fmt.Errorf("balance of account %s: %w", account, ErrAccountNotFound)
	}

	return balance, nil
}

// CreateAccount credits a new account with its starting balance from the
// master account and blocks until the operation is confirmed in a block.
func (s *State) CreateAccount(ctx context.Context, account database.AccountID, startingBalance float64) (Receipt, error) {
	if account.IsMaster() {
		return Receipt{}, fmt.Errorf("create account %s: %w", account, ErrReservedAccount)
	}
	if !validAmount(startingBalance) {
		return Receipt{}, fmt.Errorf("create account %s with %g: %w", account, startingBalance, ErrInvalidAmount)
	}

	op := database.NewOperation(database.MasterAccount, account, startingBalance, time.Now())

	check := func(confirmed database.Blocks, pending database.Operations) error {
		if confirmed.ContainsAccount(account) || pending.ContainsAccount(account) {
			return fmt.Errorf("create account %s: %w", account, ErrAccountExists)
		}
		return nil
	}

	return s.submitAndWait(ctx, op, check)
}

// Transfer moves the amount between two accounts and blocks until the
// operation is confirmed in a block. The balance of the sending account
// includes its pending operations.
func (s *State) Transfer(ctx context.Context, from database.AccountID, to database.AccountID, amount float64) (Receipt, error) {
	if from.IsMaster() || to.IsMaster() {
		return Receipt{}, fmt.Errorf("transfer %s -> %s: %w", from, to, ErrReservedAccount)
	}
	if from == to {
		return Receipt{}, fmt.Errorf("transfer %s -> %s: %w", from, to, ErrSelfTransfer)
	}
	if !validAmount(amount) {
		return Receipt{}, fmt.Errorf("transfer %g from account %s: %w", amount, from, ErrInvalidAmount)
	}

	op := database.NewOperation(from, to, amount, time.Now())

	check := func(confirmed database.Blocks, pending database.Operations) error {
		c, cok := confirmed.Total(from)
		p, pok := pending.Total(from)

		balance, found := database.CombineTotals(c, cok, p, pok)
		if !found || !(balance >= amount) {
			return fmt.Errorf("transfer %g from account %s: %w", amount, from, ErrInsufficientFunds)
		}
		return nil
	}

	return s.submitAndWait(ctx, op, check)
}

// =============================================================================

// validAmount reports whether the amount is a finite number that is not
// negative. NaN fails the comparison.
func validAmount(amount float64) bool {
	return amount >= 0 && !math.IsInf(amount, 1)
}

// submitAndWait validates and submits the operation, then waits for the
// producer to confirm it. A wake means some block was published, not that
// this operation is in it, so every block published since the submit is
// checked before waiting again.
func (s *State) submitAndWait(ctx context.Context, op database.Operation, check CheckFunc) (Receipt, error) {

	// Capture the generation before the submit so a block cut right after
	// the submit still wakes this handler.
	gen := s.signal.Generation()

	next, err := s.SubmitValidated(op, check)
	if err != nil {
		return Receipt{}, err
	}

	for {
		latest, g, err := s.signal.Wait(ctx, gen)
		if err != nil {
			s.evHandler("state: submitAndWait: op[%s]: WAIT: %s", op.ID, err)
			return Receipt{}, fmt.Errorf("waiting for confirmation of operation %s: %w", op.ID, err)
		}
		gen = g

		for id := next; id <= latest; id++ {
			if s.QueryBlockContains(id, op.ID) {
				s.evHandler("state: submitAndWait: op[%s]: confirmed in block[%d]", op.ID, id)
				return Receipt{BlockID: id, OperationID: op.ID}, nil
			}
		}

		if latest >= next {
			next = latest + 1
		}
	}
}
