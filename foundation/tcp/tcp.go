// Package tcp provides a listener that serves every accepted connection on
// its own goroutine.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler serves one connection. The context is canceled when the server
// shuts down. The server closes the connection after the handler returns.
type Handler func(ctx context.Context, conn net.Conn)

// Server accepts connections and hands each to the handler. The number of
// connections served at once is not bounded.
type Server struct {
	log      *zap.SugaredLogger
	listener net.Listener
	handler  Handler
	ctx      context.Context
	cancel   context.CancelFunc
	shut     chan struct{}
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// Listen binds the address and constructs a server for it. Call Serve to
// start accepting.
func Listen(addr string, handler Handler, log *zap.SugaredLogger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := Server{
		log:      log,
		listener: listener,
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
		shut:     make(chan struct{}),
		conns:    make(map[net.Conn]struct{}),
	}

	return &s, nil
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until Shutdown is called, then returns nil.
func (s *Server) Serve() error {
	var backoff time.Duration

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShutdown() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			// Back off on accept failures such as running out of file
			// descriptors.
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(2*backoff, time.Second)
			}
			s.log.Errorw("tcp", "status", "accept failed", "retry", backoff, "ERROR", err)

			select {
			case <-time.After(backoff):
				continue
			case <-s.shut:
				return nil
			}
		}
		backoff = 0

		s.track(conn)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)

			s.handler(s.ctx, conn)
		}()
	}
}

// Shutdown stops accepting, cancels the context handed to the handlers and
// waits for them to return. Connections still open when the context ends
// are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.shut:
		return nil
	default:
		close(s.shut)
	}

	err := s.listener.Close()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err

	case <-ctx.Done():
		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()

		<-done
		return fmt.Errorf("connections still open at shutdown: %w", ctx.Err())
	}
}

// =============================================================================

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn.Close()
	delete(s.conns, conn)
}

func (s *Server) isShutdown() bool {
	select {
	case <-s.shut:
		return true
	default:
		return false
	}
}
