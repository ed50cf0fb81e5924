package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func dialTestConn(t *testing.T, handler http.HandlerFunc) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestWebsocketConnWritesTextFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	done := make(chan error, 1)

	client := dialTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			done <- err
			return
		}
		conn := NewWebsocketConn(ws)
		done <- conn.WriteMessage([]byte(`{"type":"pong"}`))
	})

	kind, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("expected a text frame, got %d", kind)
	}
	if string(data) != `{"type":"pong"}` {
		t.Fatalf("unexpected payload: %s", data)
	}
	if err := <-done; err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func TestWebsocketConnRejectsOversizedInboundFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	readErr := make(chan error, 1)

	client := dialTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			readErr <- err
			return
		}
		NewWebsocketConn(ws)
		_, _, err = ws.ReadMessage()
		readErr <- err
	})

	if err := client.WriteMessage(websocket.TextMessage, make([]byte, maxMessageSize+1)); err != nil {
		t.Fatalf("client write: %v", err)
	}

	if err := <-readErr; err == nil {
		t.Fatal("expected the oversized frame to fail the read")
	}
}
