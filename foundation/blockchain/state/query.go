package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain. It is a
// sentinel and never the height of a real block.
const QueryLatest = database.BlockID(^uint64(0) >> 1)

// =============================================================================

// QueryBalance returns the balance of the account across the confirmed blocks
// and the pending operations. It returns false when no operation references
// the account.
func (s *State) QueryBalance(account database.AccountID) (float64, bool) {
	var balance float64
	var found bool

	s.db.View(func(blocks database.Blocks) {
		confirmed, cok := blocks.Total(account)
		pending, pok := s.mempool.Total(account)
		balance, found = database.CombineTotals(confirmed, cok, pending, pok)
	})

	return balance, found
}

// QueryAccountExists reports whether any confirmed or pending operation
// references the account.
func (s *State) QueryAccountExists(account database.AccountID) bool {
	var exists bool

	s.db.View(func(blocks database.Blocks) {
		exists = blocks.ContainsAccount(account) || s.mempool.ContainsAccount(account)
	})

	return exists
}

// QueryBlockContains reports whether the specified block holds the operation.
// A block that does not exist yet holds nothing.
func (s *State) QueryBlockContains(blockID database.BlockID, opID database.OperationID) bool {
	var contains bool

	s.db.View(func(blocks database.Blocks) {
		contains = blocks.ContainsOperation(blockID, opID)
	})

	return contains
}

// QueryBlockCount returns the number of confirmed blocks.
func (s *State) QueryBlockCount() int {
	return s.db.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
func (s *State) QueryBlocksByNumber(from database.BlockID, to database.BlockID) database.Blocks {
	if from == QueryLatest {
		latest, ok := s.db.LatestBlock()
		if !ok {
			return database.Blocks{}
		}
		from = latest.ID
		to = from
	}

	return s.db.Range(from, to)
}

// QueryLatestBlock returns a copy of the latest block and false when no
// block has been produced.
func (s *State) QueryLatestBlock() (database.Block, bool) {
	return s.db.LatestBlock()
}

// QueryMempool returns a copy of the pending operations.
func (s *State) QueryMempool() database.Operations {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryLastPublished returns the id of the last published block and false
// when nothing has been published.
func (s *State) QueryLastPublished() (database.BlockID, bool) {
	return s.signal.Latest()
}
