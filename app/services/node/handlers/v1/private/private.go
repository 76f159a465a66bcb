// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/blockledger/business/web/errs"
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status := struct {
		Blocks        int               `json:"blocks"`
		Pending       int               `json:"pending"`
		LastPublished *database.BlockID `json:"last_published,omitempty"`
	}{
		Blocks:  h.State.QueryBlockCount(),
		Pending: h.State.QueryMempoolLength(),
	}

	if id, ok := h.State.QueryLastPublished(); ok {
		status.LastPublished = &id
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// CutBlock asks the block producer to cut a block now.
func (h Handlers) CutBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("block producer not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalCutBlock()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "block cut signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}
