package database

import (
	"fmt"
	"strconv"
)

// MasterAccount is the reserved account that issues the starting balance of
// every new account. It is never the target of an account creation and never
// a side of a transfer.
const MasterAccount AccountID = 0

// AccountID represents an account that is associated with operations on
// the blockchain.
type AccountID uint64

// ToAccountID converts a decimal string to an account.
func ToAccountID(s string) (AccountID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account format %q: %w", s, err)
	}

	return AccountID(v), nil
}

// IsMaster reports whether this is the reserved issuance account.
func (a AccountID) IsMaster() bool {
	return a == MasterAccount
}

// String implements the fmt.Stringer interface.
func (a AccountID) String() string {
	return strconv.FormatUint(uint64(a), 10)
}
