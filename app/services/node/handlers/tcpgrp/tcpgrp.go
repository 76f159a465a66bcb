// Package tcpgrp serves ledger commands arriving on raw connections.
package tcpgrp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/ardanlabs/blockledger/business/sys/metrics"
	"github.com/ardanlabs/blockledger/business/sys/validate"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handlers manages the command connections.
type Handlers struct {
	Log            *zap.SugaredLogger
	State          *state.State
	Codec          *wire.Codec
	Metrics        *metrics.Metrics
	ConfirmTimeout time.Duration
}

// Connection reads one command, executes it and writes the result back.
func (h Handlers) Connection(ctx context.Context, conn net.Conn) {
	traceID := uuid.NewString()
	remote := conn.RemoteAddr().String()

	h.Log.Debugw("connection", "traceid", traceID, "status", "accepted", "remoteaddr", remote)

	var cmd wire.Command
	if err := h.Codec.Decode(conn, &cmd); err != nil {
		if errors.Is(err, io.EOF) {
			h.Log.Debugw("connection", "traceid", traceID, "status", "closed by client", "remoteaddr", remote)
			return
		}
		h.reply(traceID, conn, wire.Failure(fmt.Errorf("failed to deserialize: %w", err)))
		return
	}

	if err := validate.Check(cmd); err != nil {
		h.reply(traceID, conn, wire.Failure(fmt.Errorf("failed to deserialize: %w", err)))
		return
	}

	h.Log.Infow("command started", "traceid", traceID, "type", cmd.Type, "remoteaddr", remote)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopWatch := watch(conn, cancel)

	start := time.Now()
	result := h.Execute(ctx, traceID, cmd)
	connected := stopWatch()

	outcome := "ok"
	if !result.OK {
		outcome = "rejected"
	}
	h.Metrics.Command(cmd.Type, outcome, time.Since(start))

	h.Log.Infow("command completed", "traceid", traceID, "type", cmd.Type, "outcome", outcome,
		"since", time.Since(start))

	if !connected {
		h.Log.Infow("connection", "traceid", traceID, "status", "closed before reply", "remoteaddr", remote)
		return
	}
	h.reply(traceID, conn, result)
}

// Execute runs the command against the ledger. A panic while executing is
// reported as a failed result.
func (h Handlers) Execute(ctx context.Context, traceID string, cmd wire.Command) (result wire.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			h.Log.Errorw("command", "traceid", traceID, "type", cmd.Type, "status", "PANIC", "ERROR", rec,
				"trace", string(debug.Stack()))
			result = wire.Failure(fmt.Errorf("command %s failed: %v", cmd.Type, rec))
		}
	}()

	if h.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.ConfirmTimeout)
		defer cancel()
	}

	switch cmd.Type {
	case wire.TypeCreateAccount:
		receipt, err := h.State.CreateAccount(ctx, cmd.Account, cmd.StartingBalance)
		if err != nil {
			return h.reject(traceID, err)
		}
		return wire.Result{OK: true, BlockID: receipt.BlockID, OperationID: receipt.OperationID}

	case wire.TypeTransfer:
		receipt, err := h.State.Transfer(ctx, cmd.From, cmd.To, cmd.Amount)
		if err != nil {
			return h.reject(traceID, err)
		}
		return wire.Result{OK: true, BlockID: receipt.BlockID, OperationID: receipt.OperationID}

	case wire.TypeBalance:
		balance, err := h.State.QueryAccountBalance(cmd.Account)
		if err != nil {
			return h.reject(traceID, err)
		}
		return wire.Result{OK: true, Balance: &balance}
	}

	return h.reject(traceID, fmt.Errorf("%w: %q", state.ErrNotImplemented, cmd.Type))
}

// =============================================================================

func (h Handlers) reject(traceID string, err error) wire.Result {
	h.Log.Infow("command rejected", "traceid", traceID, "reason", err)
	return wire.Failure(err)
}

// watch cancels the command once the client goes away. A client sends a
// single command and then only reads, so any read ending in an error means the
// connection is gone. The returned func stops watching and reports whether the
// client was still connected.
func watch(conn net.Conn, cancel context.CancelFunc) func() bool {
	gone := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		if _, err := io.Copy(io.Discard, conn); !isTimeout(err) {
			close(gone)
			cancel()
		}
	}()

	return func() bool {
		conn.SetReadDeadline(time.Now())
		<-done
		conn.SetReadDeadline(time.Time{})

		select {
		case <-gone:
			return false
		default:
			return true
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (h Handlers) reply(traceID string, conn net.Conn, result wire.Result) {
	if err := h.Codec.Encode(conn, result); err != nil {
		h.Log.Errorw("connection", "traceid", traceID, "status", "reply failed", "ERROR", err)
	}
}
