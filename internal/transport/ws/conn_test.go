package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yuuma-dev/translachat/internal/chat"
	transportws "github.com/yuuma-dev/translachat/internal/transport/ws"
)

// dialTestServer starts an httptest server that upgrades connections and
// serves them with handle, then dials it with a real WebSocket client.
func dialTestServer(t *testing.T, handle transportws.Handler) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(transportws.UpgradeHandler(context.Background(), handle, nil))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial test server: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConn_ReadWrite(t *testing.T) {
	received := make(chan []byte, 1)
	client := dialTestServer(t, func(ctx context.Context, conn chat.Conn) {
		data, err := conn.Read(ctx)
		if err != nil {
			t.Errorf("server Read() error = %v", err)
			return
		}
		received <- data
		if err := conn.Write(ctx, []byte(`{"type":"system","text":"pong"}`)); err != nil {
			t.Errorf("server Write() error = %v", err)
		}
		conn.Close()
	})

	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"system","text":"ping"}`)); err != nil {
		t.Fatalf("client write error = %v", err)
	}

	select {
	case data := <-received:
		if string(data) != `{"type":"system","text":"ping"}` {
			t.Errorf("server received %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("server never received the frame")
	}

	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read error = %v", err)
	}
	if string(data) != `{"type":"system","text":"pong"}` {
		t.Errorf("client received %q", data)
	}
}

func TestConn_ReadAfterClientClose(t *testing.T) {
	readErr := make(chan error, 1)
	client := dialTestServer(t, func(ctx context.Context, conn chat.Conn) {
		_, err := conn.Read(ctx)
		readErr <- err
		conn.Close()
	})

	client.Close()

	select {
	case err := <-readErr:
		if err == nil {
			t.Error("server Read() expected error after client close")
		}
	case <-time.After(time.Second):
		t.Fatal("server Read() never returned")
	}
}
