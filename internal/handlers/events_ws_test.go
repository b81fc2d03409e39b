package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

func TestEventsWSHandler_NotifyWithoutClients(t *testing.T) {
	h := NewEventsWSHandler()

	// Broadcasting into an empty client set must not panic or block.
	h.Notify(engine.AlertEvent{Type: engine.EventAlertCreated})

	if count := h.ClientCount(); count != 0 {
		t.Errorf("expected 0 clients, got %d", count)
	}
}

func TestEventsWSHandler_BroadcastsToClient(t *testing.T) {
	h := NewEventsWSHandler()
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Wait for the server side to register the client.
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	event := engine.AlertEvent{
		Type: engine.EventAlertFiring,
		Alert: database.Alert{
			ID:       "alert-1",
			Summary:  "CPU High on web-server-01",
			Severity: database.AlertSeverityHigh,
		},
		Timestamp: time.Now(),
	}
	h.Notify(event)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var received engine.AlertEvent
	if err := json.Unmarshal(payload, &received); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if received.Type != engine.EventAlertFiring {
		t.Errorf("expected firing event, got %s", received.Type)
	}
	if received.Alert.ID != "alert-1" {
		t.Errorf("expected alert-1, got %s", received.Alert.ID)
	}
}

func TestEventsWSHandler_RemovesDisconnectedClient(t *testing.T) {
	h := NewEventsWSHandler()
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("disconnected client was never removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
