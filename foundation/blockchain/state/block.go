package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// CutBlock drains every pending operation into a new block, appends it to the
// chain and wakes every waiting handler. Only the block producer calls this
// function, which makes it the single writer of the chain.
//
// The drain and the append happen under the block write lock, so readers see
// the operations either pending or confirmed, never in neither place. The
// block is published only after it is appended.
func (s *State) CutBlock() database.Block {
	block := s.db.Commit(s.mempool.Drain)

	s.signal.Publish(block.ID)

	s.evHandler("state: CutBlock: block[%d]: ops[%d]", block.ID, len(block.Operations))

	if s.recorder != nil {
		s.recorder.BlockCommitted(block, s.mempool.Count())
	}

	return block
}
