// Package signal provides the broadcast used by request handlers to wait for
// the producer to publish a block.
package signal

import (
	"context"
	"sync"

	"github.com/algorand/go-deadlock"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// Signal holds the id of the last published block and wakes every waiter
// when a new block is published. The cell and the condition variable share
// one lock so a waiter never observes the id change without the wake.
//
// A wake is not targeted at any operation. Waiters must recheck their own
// condition after every wake.
type Signal struct {
	mu         deadlock.Mutex
	cond       *sync.Cond
	generation uint64
	latest     database.BlockID
	published  bool
}

// New constructs a signal with nothing published.
func New() *Signal {
	var s Signal
	s.cond = sync.NewCond(&s.mu)

	return &s
}

// Publish records the block id as the last published and wakes all waiters.
func (s *Signal) Publish(id database.BlockID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = id
	s.published = true
	s.generation++

	s.cond.Broadcast()
}

// Generation returns the number of publications so far. Capture it before
// submitting an operation and pass it to Wait so a publication that happens
// between the submit and the wait is not missed.
func (s *Signal) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generation
}

// Latest returns the last published block id and false if nothing has been
// published yet.
func (s *Signal) Latest() (database.BlockID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest, s.published
}

// Wait blocks until a publication happens after the specified generation,
// then returns the last published block id and the current generation.
// Several publications may be coalesced into one wake. The wait ends early
// with the context error when the context is done.
func (s *Signal) Wait(ctx context.Context, after uint64) (database.BlockID, uint64, error) {

	// sync.Cond has no notion of a context. When the context can be
	// cancelled, a helper goroutine broadcasts on cancellation so the waiter
	// gets to recheck ctx.Err.
	if done := ctx.Done(); done != nil {
		stop := make(chan struct{})
		defer close(stop)

		go func() {
			select {
			case <-done:
				s.mu.Lock()
				s.cond.Broadcast()
				s.mu.Unlock()
			case <-stop:
			}
		}()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.generation <= after {
		if err := ctx.Err(); err != nil {
			return s.latest, s.generation, err
		}
		s.cond.Wait()
	}

	return s.latest, s.generation, nil
}

// WaitForNextPublication blocks until the producer publishes a block after
// the call is made and returns that block id.
func (s *Signal) WaitForNextPublication(ctx context.Context) (database.BlockID, error) {
	id, _, err := s.Wait(ctx, s.Generation())
	return id, err
}
