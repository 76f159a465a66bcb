// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/blockledger/business/sys/validate"
	"github.com/ardanlabs/blockledger/business/web/errs"
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log            *zap.SugaredLogger
	State          *state.State
	WS             websocket.Upgrader
	Evts           *events.Events
	ConfirmTimeout time.Duration
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the node.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// This starts a ticker to send a ping to the client.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Balance returns the balance of an account.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account, err := database.ToAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	bal, err := h.State.QueryAccountBalance(account)
	if err != nil {
		return errs.FromLedger(err)
	}

	resp := balance{
		Account: account,
		Balance: bal,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByNumber returns the blocks in the specified range. Without a range
// every block is returned.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	toStr := web.Param(r, "to")

	var blocks database.Blocks
	switch {
	case fromStr == "" && toStr == "":
		blocks = h.State.QueryBlocksByNumber(0, state.QueryLatest)

	default:
		from, err := parseBlockID(fromStr)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		to, err := parseBlockID(toStr)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		if from != state.QueryLatest && from > to {
			return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
		}

		blocks = h.State.QueryBlocksByNumber(from, to)
	}

	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(blocks), http.StatusOK)
}

// Mempool returns the set of uncommitted operations.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ops := h.State.QueryMempool()
	return web.Respond(ctx, w, toOperations(ops), http.StatusOK)
}

// CreateAccount opens an account and replies once it is confirmed in a block.
func (h Handlers) CreateAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ca createAccount
	if err := web.Decode(r, &ca); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	if err := validate.Check(ca); err != nil {
		return err
	}

	h.Log.Infow("create account", "traceid", v.TraceID, "account", ca.Account, "starting_balance", ca.StartingBalance)

	ctx, cancel := h.confirmContext(ctx)
	defer cancel()

	rcpt, err := h.State.CreateAccount(ctx, ca.Account, ca.StartingBalance)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, receipt(rcpt), http.StatusCreated)
}

// Transfer moves funds between accounts and replies once the transfer is
// confirmed in a block.
func (h Handlers) Transfer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tr transfer
	if err := web.Decode(r, &tr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	if err := validate.Check(tr); err != nil {
		return err
	}

	h.Log.Infow("transfer", "traceid", v.TraceID, "from", tr.From, "to", tr.To, "amount", tr.Amount)

	ctx, cancel := h.confirmContext(ctx)
	defer cancel()

	rcpt, err := h.State.Transfer(ctx, tr.From, tr.To, tr.Amount)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, receipt(rcpt), http.StatusOK)
}

// =============================================================================

func (h Handlers) confirmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.ConfirmTimeout > 0 {
		return context.WithTimeout(ctx, h.ConfirmTimeout)
	}
	return context.WithCancel(ctx)
}

func parseBlockID(s string) (database.BlockID, error) {
	if s == "latest" {
		return state.QueryLatest, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q", s)
	}

	return database.BlockID(n), nil
}
