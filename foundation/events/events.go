// Package events fans node activity out to registered listeners such as
// websocket clients.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is how many events a slow listener may fall behind before
// events are dropped for it.
const messageBuffer = 100

// Events maintains a set of listener channels keyed by a unique id.
type Events struct {
	mu     sync.RWMutex
	m      map[string]chan string
	closed bool
}

// New constructs an empty set of listeners.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Acquire registers a listener under the id and returns its channel. The
// channel is closed on Release or Shutdown. After Shutdown a closed channel
// is returned.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if evt.closed {
		ch := make(chan string)
		close(ch)
		return ch
	}

	if ch, exists := evt.m[id]; exists {
		return ch
	}

	ch := make(chan string, messageBuffer)
	evt.m[id] = ch
	return ch
}

// Release closes and removes the listener registered under the id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send delivers the message to every listener. A listener whose buffer is
// full misses the message; Send never blocks.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}

// Count returns the number of registered listeners.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Shutdown closes and removes every listener. Later calls to Acquire get a
// closed channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
	evt.closed = true
}
