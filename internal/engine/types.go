package engine

import (
	"errors"
	"time"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// ErrAlertNotFound is returned when an acknowledge or resolve call references
// an alert ID the engine has never seen.
var ErrAlertNotFound = errors.New("alert not found")

// MetricSample is one observed metric value for a target
type MetricSample struct {
	OrganizationID string    `json:"organization_id"`
	TargetID       string    `json:"target_id"`
	TargetName     string    `json:"target_name"`
	MetricName     string    `json:"metric_name"`
	Value          float64   `json:"value"`
	Timestamp      time.Time `json:"timestamp"`
}

// EvaluationResult is what the rule-evaluation collaborator produces
type EvaluationResult struct {
	Triggered      bool    `json:"triggered"`
	ActualValue    float64 `json:"actual_value"`
	ThresholdValue float64 `json:"threshold_value"`
	Message        string  `json:"message"`
}

// Evaluator decides whether a rule triggers for a metric sample. The engine
// catches evaluator errors; they never crash a processing cycle.
type Evaluator interface {
	Evaluate(rule *database.AlertRule, sample MetricSample) (EvaluationResult, error)
}

// Repository is the read/write persistence contract the engine needs.
// Persistence is best-effort: a failed save is logged and does not roll back
// the in-memory state change that already happened.
type Repository interface {
	SaveAlert(alert *database.Alert) error
	SaveGroup(group *database.CorrelationGroup) error
	DeleteGroup(id string) error
	FindAlertByID(id string) (*database.Alert, error)
	FindOpenByFingerprint(fingerprint string) (*database.Alert, error)
}

// EventType classifies alert lifecycle events sent to notification sinks
type EventType string

const (
	EventAlertCreated      EventType = "alert.created"
	EventAlertFiring       EventType = "alert.firing"
	EventAlertAcknowledged EventType = "alert.acknowledged"
	EventAlertResolved     EventType = "alert.resolved"
)

// AlertEvent is the payload delivered to notification sinks
type AlertEvent struct {
	Type      EventType      `json:"type"`
	Alert     database.Alert `json:"alert"`
	Timestamp time.Time      `json:"timestamp"`
}

// Notifier receives alert events. Delivery is fire-and-forget from the
// engine's perspective; guarantees belong to the sink.
type Notifier interface {
	Notify(event AlertEvent)
}

// Statistics is a snapshot of the engine's running counters and gauges
type Statistics struct {
	TotalAlertsProcessed    uint64    `json:"total_alerts_processed"`
	DuplicateAlerts         uint64    `json:"duplicate_alerts"`
	CorrelatedAlerts        uint64    `json:"correlated_alerts"`
	AutoResolvedAlerts      uint64    `json:"auto_resolved_alerts"`
	EvaluationErrors        uint64    `json:"evaluation_errors"`
	ActiveAlerts            int       `json:"active_alerts"`
	ActiveCorrelationGroups int       `json:"active_correlation_groups"`
	CorrelationRate         float64   `json:"correlation_rate"`
	Timestamp               time.Time `json:"timestamp"`
}
