package database

import (
	"time"
)

// AlertSeverity is the severity assigned to a rule and its alerts
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// severityRanks defines the total order used for group severity computation.
// Never compare severities as strings.
var severityRanks = map[AlertSeverity]int{
	AlertSeverityInfo:     0,
	AlertSeverityLow:      1,
	AlertSeverityMedium:   2,
	AlertSeverityHigh:     3,
	AlertSeverityCritical: 4,
}

// Rank returns the position of the severity in the total order.
// Unknown severities rank below info.
func (s AlertSeverity) Rank() int {
	if rank, ok := severityRanks[s]; ok {
		return rank
	}
	return -1
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b AlertSeverity) AlertSeverity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "pending"
	AlertStatusFiring       AlertStatus = "firing"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// IsOpen returns true for any non-resolved status
func (s AlertStatus) IsOpen() bool {
	return s != AlertStatusResolved
}

// Alert is one triggered-rule instance. Alerts are never hard-deleted;
// once resolved_at is set the row only changes through reads.
type Alert struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string `gorm:"size:64;index" json:"organization_id"`
	RuleID         string `gorm:"size:64;not null;index" json:"rule_id"`
	RuleName       string `gorm:"size:255" json:"rule_name"`
	TargetID       string `gorm:"size:255;not null" json:"target_id"`
	TargetName     string `gorm:"size:255" json:"target_name"`
	MetricName     string `gorm:"size:255;not null" json:"metric_name"`
	Category       string `gorm:"size:64" json:"category"`

	Severity AlertSeverity `gorm:"type:varchar(20);not null" json:"severity"`
	Status   AlertStatus   `gorm:"type:varchar(20);not null;index" json:"status"`

	Summary     string `gorm:"type:text" json:"summary"`
	Description string `gorm:"type:text" json:"description"`

	MetricValue    float64 `json:"metric_value"`
	ThresholdValue float64 `json:"threshold_value"`

	// Fingerprint identifies "the same problem" for dedup. Many alerts share
	// one fingerprint over time but at most one of them is open.
	Fingerprint string `gorm:"size:255;not null;index" json:"fingerprint"`

	CorrelationGroupID *string `gorm:"size:36;index" json:"correlation_group_id"`

	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastUpdatedAt time.Time  `gorm:"not null" json:"last_updated_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`

	AcknowledgedBy        string `gorm:"size:64" json:"acknowledged_by"`
	AcknowledgmentComment string `gorm:"type:text" json:"acknowledgment_comment"`
	ResolutionReason      string `gorm:"type:text" json:"resolution_reason"`
}

func (Alert) TableName() string {
	return "alerts"
}

// IsOpen reports whether the alert is still in a non-resolved state
func (a *Alert) IsOpen() bool {
	return a.Status.IsOpen()
}

// CorrelationGroup is a cluster of alerts believed to share a root cause.
// Membership lives on the alerts (correlation_group_id); the row carries
// the derived fields.
type CorrelationGroup struct {
	ID             string        `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string        `gorm:"size:64;index" json:"organization_id"`
	Severity       AlertSeverity `gorm:"type:varchar(20);not null" json:"severity"`
	RootCause      string        `gorm:"type:text" json:"root_cause"`
	AlertCount     int           `gorm:"not null" json:"alert_count"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	LastUpdatedAt  time.Time     `gorm:"not null" json:"last_updated_at"`
}

func (CorrelationGroup) TableName() string {
	return "correlation_groups"
}
