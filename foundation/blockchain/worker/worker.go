// Package worker implements the block producer for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
)

// Worker manages the block production workflow for the blockchain.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	cutBlock  chan bool
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes. A block is cut every interval,
// whether or not operations are pending.
func Run(st *state.State, interval time.Duration, evHandler state.EventHandler) *Worker {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	w := Worker{
		state:     st,
		ticker:    time.NewTicker(interval),
		shut:      make(chan struct{}),
		cutBlock:  make(chan bool, 1),
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.producerOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. Handlers still waiting
// for a confirmation stay blocked until their context ends.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalCutBlock asks the producer to cut a block now instead of waiting for
// the next tick. If there is already a signal pending in the channel, just
// return since a block will be cut.
func (w *Worker) SignalCutBlock() {
	select {
	case w.cutBlock <- true:
	default:
	}
	w.evHandler("worker: SignalCutBlock: cut block signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
