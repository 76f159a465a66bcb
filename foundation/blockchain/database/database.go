// Package database handles the lower level support for maintaining the
// confirmed blocks of the ledger in memory.
package database

import (
	"time"

	"github.com/algorand/go-deadlock"
)

// Database manages the append-only sequence of confirmed blocks. Many readers
// may view the blocks concurrently while the single writer, the block
// producer, appends.
type Database struct {
	mu     deadlock.RWMutex
	blocks Blocks
}

// New constructs an empty database.
func New() *Database {
	return &Database{
		blocks: Blocks{},
	}
}

// View calls the function with the confirmed blocks while holding the read
// lock. The blocks must not be retained or modified after the function
// returns. Callers may acquire the mempool lock inside the function, the
// database lock is always taken first.
func (db *Database) View(fn func(blocks Blocks)) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	fn(db.blocks)
}

// Commit takes the write lock, asks drain for the operations of the next
// block, appends the block and returns it. drain runs while the write lock is
// held so no reader observes the operations in neither place.
func (db *Database) Commit(drain func() Operations) Block {
	db.mu.Lock()
	defer db.mu.Unlock()

	block := NewBlock(BlockID(len(db.blocks)), drain(), time.Now())
	db.blocks = append(db.blocks, block)

	return block
}

// Count returns the number of confirmed blocks.
func (db *Database) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// GetBlock returns the block with the specified id.
func (db *Database) GetBlock(id BlockID) (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if uint64(id) >= uint64(len(db.blocks)) {
		return Block{}, false
	}

	return db.blocks[id], true
}

// LatestBlock returns the most recently appended block and false when no
// block has been produced yet.
func (db *Database) LatestBlock() (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 {
		return Block{}, false
	}

	return db.blocks[len(db.blocks)-1], true
}

// Range returns a copy of the blocks from and to inclusive, clamped to the
// current chain.
func (db *Database) Range(from BlockID, to BlockID) Blocks {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 || from > to || uint64(from) >= uint64(len(db.blocks)) {
		return Blocks{}
	}

	last := BlockID(len(db.blocks) - 1)
	if to > last {
		to = last
	}

	out := make(Blocks, 0, to-from+1)
	return append(out, db.blocks[from:to+1]...)
}
