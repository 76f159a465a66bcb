// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/blockledger/foundation/blockchain/signal"
)

/*
	Locking discipline.

	The state shares three resources between the request handlers and the
	block producer. Each is guarded by its own lock.

	- confirmed blocks: read/write lock inside database.Database.
	- pending operations: mutex inside mempool.Mempool.
	- last published block: mutex paired with a condition variable inside
	  signal.Signal.

	When both the block and the pending locks are needed, the block lock is
	always taken first. The signal lock is never held with another lock, and no
	lock is held while a handler waits for a publication.
*/

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of operations and blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for producing blocks.
type Worker interface {
	Shutdown()
	SignalCutBlock()
}

// Recorder captures measurements about produced blocks.
type Recorder interface {
	BlockCommitted(block database.Block, pending int)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	EvHandler EventHandler
	Recorder  Recorder
}

// State manages the blockchain database.
type State struct {
	evHandler EventHandler
	recorder  Recorder

	db      *database.Database
	mempool *mempool.Mempool
	signal  *signal.Signal

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		evHandler: ev,
		recorder:  cfg.Recorder,

		db:      database.New(),
		mempool: mempool.New(),
		signal:  signal.New(),
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
