package database

import (
	"fmt"
	"time"
)

// Operation moves an amount from one account to another. Account creation is
// an operation from the master account.
type Operation struct {
	ID     OperationID `json:"id"`
	From   AccountID   `json:"from"`
	To     AccountID   `json:"to"`
	Amount float64     `json:"amount"`
}

// NewOperation constructs an operation whose id is derived from its content
// and the submission time.
func NewOperation(from AccountID, to AccountID, amount float64, now time.Time) Operation {
	return Operation{
		ID:     GenerateID(to, from, amount, time.Duration(now.UnixNano())),
		From:   from,
		To:     to,
		Amount: amount,
	}
}

// String implements the fmt.Stringer interface for logging.
func (op Operation) String() string {
	return fmt.Sprintf("%s:%s->%s:%g", op.ID, op.From, op.To, op.Amount)
}

// Total returns the signed effect of this operation on the account and false
// when the operation does not reference the account. An operation from an
// account to itself credits and debits the same amount.
func (op Operation) Total(account AccountID) (float64, bool) {
	switch account {
	case op.To:
		if op.From == op.To {
			return 0, true
		}
		return op.Amount, true
	case op.From:
		return -op.Amount, true
	}

	return 0, false
}

// =============================================================================

// Operations is an ordered set of operations.
type Operations []Operation

// Total sums the effect of every operation on the account. It returns false
// when no operation references the account, which separates an account that
// was never created from one holding a zero balance.
func (ops Operations) Total(account AccountID) (float64, bool) {
	var sum float64
	var found bool

	for _, op := range ops {
		if amount, ok := op.Total(account); ok {
			sum += amount
			found = true
		}
	}

	return sum, found
}

// ContainsAccount reports whether any operation credits or debits the account.
func (ops Operations) ContainsAccount(account AccountID) bool {
	for _, op := range ops {
		if op.To == account || op.From == account {
			return true
		}
	}

	return false
}

// Contains reports whether an operation with the id is in the set.
func (ops Operations) Contains(id OperationID) bool {
	for _, op := range ops {
		if op.ID == id {
			return true
		}
	}

	return false
}

// CombineTotals adds two partial totals. The result is absent only when both
// parts are absent.
func CombineTotals(a float64, aOK bool, b float64, bOK bool) (float64, bool) {
	switch {
	case aOK && bOK:
		return a + b, true
	case aOK:
		return a, true
	case bOK:
		return b, true
	}

	return 0, false
}
