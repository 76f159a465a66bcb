// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/blockledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/blockledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log            *zap.SugaredLogger
	State          *state.State
	Evts           *events.Events
	ConfirmTimeout time.Duration
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:            cfg.Log,
		State:          cfg.State,
		WS:             websocket.Upgrader{},
		Evts:           cfg.Evts,
		ConfirmTimeout: cfg.ConfirmTimeout,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/balances/:account", pbl.Balance)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/blocks/list/:from/:to", pbl.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/accounts", pbl.CreateAccount)
	app.Handle(http.MethodPost, version, "/tx/transfer", pbl.Transfer)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodPost, version, "/node/block/cut", prv.CutBlock)
}
