package database

import "time"

// Default windows applied when a rule doesn't override them
const (
	DefaultSuppressionDuration = 120 * time.Second
	DefaultCorrelationWindow   = 5 * time.Minute
)

// AlertRule is the read-only configuration the engine consumes per rule.
// Durations are stored in seconds, matching the rules file.
type AlertRule struct {
	ID             string `gorm:"primaryKey;size:64" json:"id"`
	OrganizationID string `gorm:"size:64;index" json:"organization_id"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Description    string `gorm:"type:text" json:"description"`
	Category       string `gorm:"size:64" json:"category"`
	MetricName     string `gorm:"size:255;not null" json:"metric_name"`
	Operator       string `gorm:"size:4;not null" json:"operator"`
	Threshold      float64 `json:"threshold"`

	Severity AlertSeverity `gorm:"type:varchar(20);not null" json:"severity"`
	Enabled  bool          `json:"enabled"`

	EvaluationInterval  int  `json:"evaluation_interval"`
	ForDuration         int  `json:"for_duration"`
	SuppressionEnabled  bool `json:"suppression_enabled"`
	SuppressionDuration int  `json:"suppression_duration"`
	CorrelationEnabled  bool `json:"correlation_enabled"`
	CorrelationWindow   int  `json:"correlation_window"`
	AutoResolveEnabled  bool `json:"auto_resolve_enabled"`
	AutoResolveDuration int  `json:"auto_resolve_duration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AlertRule) TableName() string {
	return "alert_rules"
}

// SuppressionWindow returns the rule's suppression window, falling back to
// the default when the rule doesn't set one.
func (r *AlertRule) SuppressionWindow() time.Duration {
	if r.SuppressionEnabled && r.SuppressionDuration > 0 {
		return time.Duration(r.SuppressionDuration) * time.Second
	}
	return DefaultSuppressionDuration
}

// CorrelationWindowDuration returns the rule's correlation window, falling
// back to the default when the rule doesn't set one.
func (r *AlertRule) CorrelationWindowDuration() time.Duration {
	if r.CorrelationWindow > 0 {
		return time.Duration(r.CorrelationWindow) * time.Second
	}
	return DefaultCorrelationWindow
}

// ForDurationDuration returns how long the condition must hold before a
// pending alert is promoted to firing.
func (r *AlertRule) ForDurationDuration() time.Duration {
	return time.Duration(r.ForDuration) * time.Second
}

// AutoResolveDurationDuration returns the minimum quiet time before an open
// alert may be auto-resolved.
func (r *AlertRule) AutoResolveDurationDuration() time.Duration {
	return time.Duration(r.AutoResolveDuration) * time.Second
}
