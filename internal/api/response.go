package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error codes shared across handlers. Operator tooling keys retry and
// escalation behavior off these rather than parsing messages.
const (
	CodeAlertNotFound  = "alert_not_found"
	CodeGroupNotFound  = "group_not_found"
	CodeInvalidPayload = "invalid_payload"
)

// ErrorResponse is the JSON error envelope every endpoint returns. Code is
// optional and, when present, is one of the stable identifiers above.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON writes data as a JSON response with the given status code.
// Encoding failures are logged; by then the status line is already on the
// wire, so nothing else can be done for the client.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// RespondError writes an error envelope without a machine-readable code.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondErrorWithCode writes an error envelope carrying one of the shared
// error codes.
func RespondErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// RespondAccepted acknowledges an ingestion request that will be processed
// asynchronously, such as a batch of metric samples.
func RespondAccepted(w http.ResponseWriter, data interface{}) {
	RespondJSON(w, http.StatusAccepted, data)
}

// RespondNoContent writes a 204 for actions with nothing to report back,
// such as acknowledging or resolving an alert.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
