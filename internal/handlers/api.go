package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/vibhukrishnas/sams-sub016/internal/api"
	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// APIHandler exposes the engine over the REST API
type APIHandler struct {
	engine *engine.Engine
	store  *database.AlertStore
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(eng *engine.Engine, store *database.AlertStore) *APIHandler {
	return &APIHandler{engine: eng, store: store}
}

// SetupRoutes sets up API routes
func (h *APIHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/statistics", h.handleStatistics)
	mux.HandleFunc("/api/v1/alerts", h.handleAlerts)
	mux.HandleFunc("/api/v1/alerts/", h.handleAlertAction)
	mux.HandleFunc("/api/v1/correlation-groups", h.handleGroups)
	mux.HandleFunc("/api/v1/correlation-groups/", h.handleGroupAlerts)
	mux.HandleFunc("/api/v1/rules", h.handleRules)
}

// handleStatistics handles GET /api/v1/statistics
func (h *APIHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	api.RespondJSON(w, http.StatusOK, h.engine.GetProcessingStatistics())
}

// handleAlerts handles GET /api/v1/alerts
// Query params: status (pending|firing|acknowledged|resolved|open), limit
func (h *APIHandler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	status := r.URL.Query().Get("status")
	if status == "open" {
		api.RespondJSON(w, http.StatusOK, h.engine.OpenAlerts())
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	alerts, err := h.store.ListAlerts(database.AlertStatus(status), limit)
	if err != nil {
		log.Printf("Failed to list alerts: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	api.RespondJSON(w, http.StatusOK, alerts)
}

// AcknowledgeRequest is the body of POST /api/v1/alerts/{id}/acknowledge
type AcknowledgeRequest struct {
	ActorID string `json:"actor_id"`
	Comment string `json:"comment"`
}

// ResolveRequest is the body of POST /api/v1/alerts/{id}/resolve
type ResolveRequest struct {
	Reason string `json:"reason"`
}

// handleAlertAction routes /api/v1/alerts/{id}, /api/v1/alerts/{id}/acknowledge,
// and /api/v1/alerts/{id}/resolve
func (h *APIHandler) handleAlertAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		h.handleGetAlert(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "acknowledge":
		h.handleAcknowledge(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "resolve":
		h.handleResolve(w, r, parts[0])
	default:
		api.RespondError(w, http.StatusNotFound, "Not found")
	}
}

func (h *APIHandler) handleGetAlert(w http.ResponseWriter, r *http.Request, alertID string) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	alert, err := h.engine.GetAlert(alertID)
	if err != nil {
		if errors.Is(err, engine.ErrAlertNotFound) {
			api.RespondErrorWithCode(w, http.StatusNotFound, api.CodeAlertNotFound, "Alert not found")
			return
		}
		log.Printf("Failed to get alert %s: %v", alertID, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to get alert")
		return
	}
	api.RespondJSON(w, http.StatusOK, alert)
}

func (h *APIHandler) handleAcknowledge(w http.ResponseWriter, r *http.Request, alertID string) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AcknowledgeRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ActorID == "" {
		api.RespondError(w, http.StatusBadRequest, "actor_id is required")
		return
	}

	if err := h.engine.AcknowledgeAlert(alertID, req.ActorID, req.Comment); err != nil {
		if errors.Is(err, engine.ErrAlertNotFound) {
			api.RespondErrorWithCode(w, http.StatusNotFound, api.CodeAlertNotFound, "Alert not found")
			return
		}
		log.Printf("Failed to acknowledge alert %s: %v", alertID, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to acknowledge alert")
		return
	}
	api.RespondNoContent(w)
}

func (h *APIHandler) handleResolve(w http.ResponseWriter, r *http.Request, alertID string) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ResolveRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Reason == "" {
		req.Reason = "Manually resolved"
	}

	if err := h.engine.ResolveAlert(alertID, req.Reason); err != nil {
		if errors.Is(err, engine.ErrAlertNotFound) {
			api.RespondErrorWithCode(w, http.StatusNotFound, api.CodeAlertNotFound, "Alert not found")
			return
		}
		log.Printf("Failed to resolve alert %s: %v", alertID, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to resolve alert")
		return
	}
	api.RespondNoContent(w)
}

// handleGroups handles GET /api/v1/correlation-groups
func (h *APIHandler) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	api.RespondJSON(w, http.StatusOK, h.engine.ActiveGroups())
}

// handleGroupAlerts handles GET /api/v1/correlation-groups/{id}/alerts
func (h *APIHandler) handleGroupAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/correlation-groups/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "alerts" || parts[0] == "" {
		api.RespondErrorWithCode(w, http.StatusNotFound, api.CodeGroupNotFound, "Not found")
		return
	}

	alerts, err := h.store.ListGroupAlerts(parts[0])
	if err != nil {
		log.Printf("Failed to list group alerts: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list group alerts")
		return
	}
	api.RespondJSON(w, http.StatusOK, alerts)
}

// handleRules handles GET /api/v1/rules
func (h *APIHandler) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rules, err := h.store.ListEnabledRules()
	if err != nil {
		log.Printf("Failed to list rules: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list rules")
		return
	}
	api.RespondJSON(w, http.StatusOK, rules)
}
