package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// HTTPHandler handles HTTP endpoints
type HTTPHandler struct {
	apiHandler     *APIHandler
	webhookHandler *WebhookHandler
	eventsHandler  *EventsWSHandler
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(apiHandler *APIHandler, webhookHandler *WebhookHandler, eventsHandler *EventsWSHandler) *HTTPHandler {
	return &HTTPHandler{
		apiHandler:     apiHandler,
		webhookHandler: webhookHandler,
		eventsHandler:  eventsHandler,
	}
}

// SetupRoutes configures all HTTP routes
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	if h.apiHandler != nil {
		h.apiHandler.SetupRoutes(mux)
	}
	if h.webhookHandler != nil {
		mux.HandleFunc("/webhook/metrics", h.webhookHandler.HandleMetrics)
	}
	if h.eventsHandler != nil {
		mux.HandleFunc("/ws/events", h.eventsHandler.HandleWebSocket)
	}
}

// handleHealth returns a simple health check response
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{
		"status":  "ok",
		"version": "1.0.0",
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}
