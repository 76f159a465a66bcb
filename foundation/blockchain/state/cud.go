package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// CheckFunc validates an operation against a consistent view of the
// confirmed blocks and the pending operations.
type CheckFunc func(confirmed database.Blocks, pending database.Operations) error

// Submit adds an operation to the mempool. It never rejects the operation,
// business rules are the caller's responsibility.
func (s *State) Submit(op database.Operation) {
	n := s.mempool.Upsert(op)
	s.evHandler("state: Submit: op[%s]: pending[%d]", op, n)
}

// SubmitValidated runs check and adds the operation to the mempool as one
// step. The block read lock is held so no block can be cut in between, and
// the mempool lock is held so no other submit can change the pending set the
// check saw. It returns the id of the block the operation will be confirmed
// in when the check passes.
func (s *State) SubmitValidated(op database.Operation, check CheckFunc) (database.BlockID, error) {
	var next database.BlockID
	var n int
	var err error

	s.db.View(func(blocks database.Blocks) {
		next = database.BlockID(len(blocks))
		n, err = s.mempool.UpsertIf(op, func(pending database.Operations) error {
			return check(blocks, pending)
		})
	})

	if err != nil {
		s.evHandler("state: SubmitValidated: op[%s]: REJECTED: %s", op, err)
		return 0, err
	}

	s.evHandler("state: SubmitValidated: op[%s]: pending[%d]: block[%d]", op, n, next)

	return next, nil
}
