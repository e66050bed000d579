// Command relayd runs the hosted chat relay: an HTTP room management API
// plus a WebSocket relay endpoint.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/yuuma-dev/translachat/internal/chat"
	"github.com/yuuma-dev/translachat/internal/config"
	"github.com/yuuma-dev/translachat/internal/rooms"
	"github.com/yuuma-dev/translachat/internal/transport/ws"
)

func main() {
	listen := flag.String("listen", "", "Address to listen on (defaults to RELAYD_ADDR)")
	flag.Parse()

	cfg := config.Load()
	if *listen == "" {
		*listen = cfg.RelayListen
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manager := rooms.NewManager()
	relay := chat.NewRelay(chat.Options{
		CheckRoom: manager.Exists,
		Logger:    logger,
	})

	go func() {
		for ev := range relay.Events() {
			logger.Debug("relay event", "kind", ev.Kind.String(), "room", ev.Room, "name", ev.Name)
		}
	}()

	srv := &http.Server{
		Addr:    *listen,
		Handler: newMux(ctx, manager, relay, logger),
	}

	go func() {
		logger.Info("relay started", "addr", *listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	// Closing member connections first lets peers observe the disconnect as
	// a leave notification before the listener goes away.
	relay.Stop()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("shutdown complete")
}

func newMux(ctx context.Context, manager *rooms.Manager, relay *chat.Relay, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		code, err := manager.Create()
		if err != nil {
			logger.Error("failed to create room", "err", err)
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}
		logger.Info("room created", "code", code)
		writeJSON(w, map[string]string{"code": code})
	})

	mux.HandleFunc("GET /api/rooms/{code}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]bool{"exists": manager.Exists(r.PathValue("code"))})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.Handle("/ws", ws.UpgradeHandler(ctx, relay.HandleConn, logger))

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
