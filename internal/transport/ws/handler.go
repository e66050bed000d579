package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/yuuma-dev/translachat/internal/chat"
)

// Handler serves one upgraded connection and returns when it closes.
type Handler func(ctx context.Context, conn chat.Conn)

// UpgradeHandler returns an http.HandlerFunc that upgrades requests to
// WebSocket and serves them with handle. The connection outlives the HTTP
// request, so handle runs against the server's context, not the request's.
func UpgradeHandler(ctx context.Context, handle Handler, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			logger.Warn("failed to upgrade WebSocket connection", "addr", r.RemoteAddr, "err", err)
			return
		}
		handle(ctx, NewConn(conn))
	}
}
