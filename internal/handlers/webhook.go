package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/vibhukrishnas/sams-sub016/internal/api"
	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// WebhookHandler ingests metric samples from the monitoring pipeline and
// feeds them through the processing engine
type WebhookHandler struct {
	engine *engine.Engine
	store  *database.AlertStore
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(eng *engine.Engine, store *database.AlertStore) *WebhookHandler {
	return &WebhookHandler{engine: eng, store: store}
}

// metricsPayload accepts either a single sample or a batch
type metricsPayload struct {
	Samples []engine.MetricSample `json:"samples"`
}

// HandleMetrics processes POST /webhook/metrics. Each sample is evaluated
// against every applicable enabled rule.
func (h *WebhookHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var payload metricsPayload
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeInvalidPayload, err.Error())
		return
	}
	if len(payload.Samples) == 0 {
		api.RespondError(w, http.StatusBadRequest, "No samples in payload")
		return
	}

	rules, err := h.store.ListEnabledRules()
	if err != nil {
		log.Printf("Failed to load rules for metric ingestion: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to load rules")
		return
	}

	for _, sample := range payload.Samples {
		if sample.TargetID == "" || sample.MetricName == "" {
			continue
		}
		if sample.Timestamp.IsZero() {
			sample.Timestamp = time.Now()
		}
		h.engine.ProcessMetrics(rules, sample)
	}

	api.RespondAccepted(w, map[string]int{"accepted": len(payload.Samples)})
}
