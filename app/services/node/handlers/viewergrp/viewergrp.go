// Package viewergrp serves a page that streams the node events live.
package viewergrp

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/ardanlabs/blockledger/foundation/web"
)

//go:embed index.html
var index []byte

// Index serves the viewer page. The page opens a websocket on /v1/events.
func Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(index)
	return err
}
