package database

import "time"

// BlockID is the sequential number of a block, starting at zero.
type BlockID uint64

// Block represents a group of operations batched together by the producer.
type Block struct {
	ID         BlockID    `json:"id"`
	TimeStamp  uint64     `json:"timestamp"`
	Operations Operations `json:"operations"`
}

// NewBlock constructs the block with the specified number from the drained
// operations. An empty set of operations is a valid block.
func NewBlock(id BlockID, ops Operations, now time.Time) Block {
	if ops == nil {
		ops = Operations{}
	}

	return Block{
		ID:         id,
		TimeStamp:  uint64(now.UTC().Unix()),
		Operations: ops,
	}
}

// Total returns the effect of the block on the account.
func (b Block) Total(account AccountID) (float64, bool) {
	return b.Operations.Total(account)
}

// =============================================================================

// Blocks is the ordered sequence of confirmed blocks where the index of a
// block is its id.
type Blocks []Block

// Total folds the per block totals. It returns false when no block holds an
// operation referencing the account.
func (bs Blocks) Total(account AccountID) (float64, bool) {
	var sum float64
	var found bool

	for _, b := range bs {
		total, ok := b.Total(account)
		sum, found = CombineTotals(sum, found, total, ok)
	}

	return sum, found
}

// ContainsAccount reports whether any block references the account.
func (bs Blocks) ContainsAccount(account AccountID) bool {
	for _, b := range bs {
		if b.Operations.ContainsAccount(account) {
			return true
		}
	}

	return false
}

// ContainsOperation reports whether the specified block holds the operation.
// A block id past the end of the chain is not an error, it holds nothing.
func (bs Blocks) ContainsOperation(blockID BlockID, opID OperationID) bool {
	if uint64(blockID) >= uint64(len(bs)) {
		return false
	}

	return bs[blockID].Operations.Contains(opID)
}
