package test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yuuma-dev/translachat/internal/chat"
	"github.com/yuuma-dev/translachat/internal/client"
	"github.com/yuuma-dev/translachat/internal/display"
	"github.com/yuuma-dev/translachat/internal/rooms"
	"github.com/yuuma-dev/translachat/internal/translate"
	"github.com/yuuma-dev/translachat/internal/transport/tcp"
	"github.com/yuuma-dev/translachat/internal/transport/ws"
	"github.com/yuuma-dev/translachat/pkg/protocol"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitForAddr polls the TCP server until its listener is bound.
func waitForAddr(t *testing.T, srv *tcp.Server) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if addr := srv.Addr(); addr != "" {
			return addr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server address is empty")
	return ""
}

// nextOfType reads messages until one of the wanted type arrives, skipping
// join/leave notifications interleaved with chat traffic.
func nextOfType(t *testing.T, messages <-chan protocol.Message, want protocol.Type) protocol.Message {
	t.Helper()
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				t.Fatalf("message channel closed while waiting for %s", want)
			}
			if msg.Type == want {
				return msg
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for %s message", want)
		}
	}
}

func expectClosed(t *testing.T, messages <-chan protocol.Message) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-messages:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("message channel was not closed")
		}
	}
}

func TestIntegration_DirectTopology(t *testing.T) {
	relay := chat.NewRelay(chat.Options{DefaultRoom: "LOBBY", Logger: quietLogger()})
	srv := tcp.New(":0", relay.HandleConn, quietLogger())
	go func() {
		_ = srv.Start()
	}()
	defer srv.Stop()
	defer relay.Stop()

	addr := waitForAddr(t, srv)

	naoto := client.NewTCP(addr, "Naoto", "ja")
	if err := naoto.Connect(); err != nil {
		t.Fatalf("Naoto failed to connect: %v", err)
	}
	defer naoto.Disconnect()
	if err := naoto.Join(); err != nil {
		t.Fatalf("Naoto failed to join: %v", err)
	}

	minji := client.NewTCP(addr, "MinJi", "ko")
	if err := minji.Connect(); err != nil {
		t.Fatalf("MinJi failed to connect: %v", err)
	}
	if err := minji.Join(); err != nil {
		t.Fatalf("MinJi failed to join: %v", err)
	}

	// The earlier member is notified about the new arrival.
	note := nextOfType(t, naoto.Messages(), protocol.TypeSystem)
	if note.Text != "MinJi (ko) joined" {
		t.Errorf("join notification = %q", note.Text)
	}

	if err := naoto.SendChat("こんにちは"); err != nil {
		t.Fatalf("Naoto failed to send chat: %v", err)
	}
	msg := nextOfType(t, minji.Messages(), protocol.TypeChat)
	if msg.Name != "Naoto" || msg.Lang != "ja" || msg.Text != "こんにちは" {
		t.Errorf("relayed chat = %+v", msg)
	}

	// The relay transports the original text verbatim; translation happens
	// on the receiving side only.
	if msg.Text != "こんにちは" {
		t.Errorf("chat text was altered in transit: %q", msg.Text)
	}

	minji.Disconnect()
	left := nextOfType(t, naoto.Messages(), protocol.TypeSystem)
	if left.Text != "MinJi left" {
		t.Errorf("leave notification = %q", left.Text)
	}
}

func TestIntegration_HostedTopology(t *testing.T) {
	manager := rooms.NewManager()
	relay := chat.NewRelay(chat.Options{CheckRoom: manager.Exists, Logger: quietLogger()})
	defer relay.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		code, err := manager.Create()
		if err != nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"code": code})
	})
	mux.HandleFunc("GET /api/rooms/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"exists": manager.Exists(r.PathValue("code"))})
	})
	mux.Handle("/ws", ws.UpgradeHandler(ctx, relay.HandleConn, quietLogger()))

	httpSrv := httptest.NewServer(mux)
	defer httpSrv.Close()

	api := rooms.NewClient(httpSrv.URL)
	code, err := api.Create(context.Background())
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}

	exists, err := api.Exists(context.Background(), code)
	if err != nil {
		t.Fatalf("failed to look up room: %v", err)
	}
	if !exists {
		t.Fatalf("created room %s does not exist", code)
	}

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"

	naoto := client.NewWebSocket(wsURL, code, "Naoto", "ja")
	if err := naoto.Connect(); err != nil {
		t.Fatalf("Naoto failed to connect: %v", err)
	}
	defer naoto.Disconnect()
	if err := naoto.Join(); err != nil {
		t.Fatalf("Naoto failed to join: %v", err)
	}

	minji := client.NewWebSocket(wsURL, code, "MinJi", "ko")
	if err := minji.Connect(); err != nil {
		t.Fatalf("MinJi failed to connect: %v", err)
	}
	defer minji.Disconnect()
	if err := minji.Join(); err != nil {
		t.Fatalf("MinJi failed to join: %v", err)
	}

	note := nextOfType(t, naoto.Messages(), protocol.TypeSystem)
	if note.Text != "MinJi (ko) joined" {
		t.Errorf("join notification = %q", note.Text)
	}

	if err := minji.SendChat("안녕하세요"); err != nil {
		t.Fatalf("MinJi failed to send chat: %v", err)
	}
	msg := nextOfType(t, naoto.Messages(), protocol.TypeChat)
	if msg.Name != "MinJi" || msg.Lang != "ko" || msg.Text != "안녕하세요" {
		t.Errorf("relayed chat = %+v", msg)
	}
}

func TestIntegration_JoinUnknownRoomIsRejected(t *testing.T) {
	manager := rooms.NewManager()
	relay := chat.NewRelay(chat.Options{CheckRoom: manager.Exists, Logger: quietLogger()})
	defer relay.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.UpgradeHandler(ctx, relay.HandleConn, quietLogger()))
	httpSrv := httptest.NewServer(mux)
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"

	c := client.NewWebSocket(wsURL, "NOSUCH", "Naoto", "ja")
	if err := c.Connect(); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer c.Disconnect()
	if err := c.Join(); err != nil {
		t.Fatalf("failed to send join: %v", err)
	}

	errMsg := nextOfType(t, c.Messages(), protocol.TypeError)
	if errMsg.Text != "room not found" {
		t.Errorf("error text = %q", errMsg.Text)
	}
	expectClosed(t, c.Messages())
}

func TestIntegration_TranslationFlow(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text       string `json:"text"`
			SourceLang string `json:"source_lang"`
			TargetLang string `json:"target_lang"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"translated_text": "[" + req.TargetLang + "] " + req.Text,
		})
	}))
	defer backend.Close()

	relay := chat.NewRelay(chat.Options{DefaultRoom: "LOBBY", Logger: quietLogger()})
	srv := tcp.New(":0", relay.HandleConn, quietLogger())
	go func() {
		_ = srv.Start()
	}()
	defer srv.Stop()
	defer relay.Stop()

	addr := waitForAddr(t, srv)

	naoto := client.NewTCP(addr, "Naoto", "ja")
	if err := naoto.Connect(); err != nil {
		t.Fatalf("Naoto failed to connect: %v", err)
	}
	defer naoto.Disconnect()
	if err := naoto.Join(); err != nil {
		t.Fatalf("Naoto failed to join: %v", err)
	}

	minji := client.NewTCP(addr, "MinJi", "ko")
	if err := minji.Connect(); err != nil {
		t.Fatalf("MinJi failed to connect: %v", err)
	}
	defer minji.Disconnect()
	if err := minji.Join(); err != nil {
		t.Fatalf("MinJi failed to join: %v", err)
	}

	if err := naoto.SendChat("こんにちは"); err != nil {
		t.Fatalf("Naoto failed to send chat: %v", err)
	}

	// MinJi's side runs the inbound pipeline: receive, detect the foreign
	// language, fetch the translation, render.
	handler := display.NewHandler("MinJi", "ko", translate.New(backend.URL), nil)
	msg := nextOfType(t, minji.Messages(), protocol.TypeChat)
	ev := handler.HandleChat(context.Background(), msg)

	if ev.Kind != display.KindPeer {
		t.Errorf("Kind = %v, want KindPeer", ev.Kind)
	}
	if ev.TranslatedText != "[ko] こんにちは" {
		t.Errorf("TranslatedText = %q", ev.TranslatedText)
	}
	if ev.OriginalText != "こんにちは" {
		t.Errorf("OriginalText = %q", ev.OriginalText)
	}
}
