package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// EventsWSHandler streams alert lifecycle events to websocket clients
// (dashboards, CLIs). It doubles as a notification sink: the engine's fanout
// delivers every alert event here and connected clients receive it as JSON.
type EventsWSHandler struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]bool
}

// wsClient is one connected websocket subscriber
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// clientSendBuffer bounds the per-client queue; clients that fall this far
// behind are dropped.
const clientSendBuffer = 64

// NewEventsWSHandler creates a new websocket events handler
func NewEventsWSHandler() *EventsWSHandler {
	return &EventsWSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]bool),
	}
}

// HandleWebSocket upgrades GET /ws/events connections
func (h *EventsWSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	log.Printf("Events websocket client connected: %s", conn.RemoteAddr())

	go h.writeLoop(client)
	go h.readLoop(client)
}

// Notify implements engine.Notifier by broadcasting the event to all
// connected clients. Fire-and-forget: a slow client is disconnected, never
// waited on.
func (h *EventsWSHandler) Notify(event engine.AlertEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode alert event: %v", err)
		return
	}

	h.mu.Lock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
			log.Printf("Dropping slow events websocket client: %s", client.conn.RemoteAddr())
		}
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected subscribers
func (h *EventsWSHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *EventsWSHandler) writeLoop(client *wsClient) {
	defer client.conn.Close()

	for payload := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(client)
			return
		}
	}
}

// readLoop drains incoming frames so pings are answered and close frames
// are noticed.
func (h *EventsWSHandler) readLoop(client *wsClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			h.remove(client)
			return
		}
	}
}

func (h *EventsWSHandler) remove(client *wsClient) {
	h.mu.Lock()
	if h.clients[client] {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	client.conn.Close()
}
