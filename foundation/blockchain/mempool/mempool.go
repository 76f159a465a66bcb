// Package mempool maintains the pending operations of the blockchain until
// the producer drains them into a block.
package mempool

import (
	"github.com/algorand/go-deadlock"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// Mempool represents the buffer of operations waiting to be confirmed. The
// operations are kept in submission order, which is the order they take in
// the block that drains them.
type Mempool struct {
	pool database.Operations
	mu   deadlock.Mutex
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: database.Operations{},
	}
}

// Count returns the current number of operations in the pool.
func (mp *Mempool) Count() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return len(mp.pool)
}

// Upsert appends an operation to the pool and returns the new length. It
// never rejects an operation.
func (mp *Mempool) Upsert(op database.Operation) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, op)

	return len(mp.pool)
}

// UpsertIf calls check with the pending operations while holding the pool
// lock and appends the operation only if check returns nil. This makes the
// validation and the submit a single step against other submitters.
func (mp *Mempool) UpsertIf(op database.Operation, check func(pending database.Operations) error) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if err := check(mp.pool); err != nil {
		return len(mp.pool), err
	}

	mp.pool = append(mp.pool, op)

	return len(mp.pool), nil
}

// Drain removes and returns every operation in the pool. Ownership of the
// returned slice moves to the caller.
func (mp *Mempool) Drain() database.Operations {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	ops := mp.pool
	mp.pool = database.Operations{}

	return ops
}

// Copy returns a copy of the pending operations.
func (mp *Mempool) Copy() database.Operations {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	cpy := make(database.Operations, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Total returns the effect of the pending operations on the account.
func (mp *Mempool) Total(account database.AccountID) (float64, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mp.pool.Total(account)
}

// ContainsAccount reports whether a pending operation references the account.
func (mp *Mempool) ContainsAccount(account database.AccountID) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mp.pool.ContainsAccount(account)
}

// Truncate clears all the operations from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = database.Operations{}
}
