// Package testhelpers provides data builders for testing
package testhelpers

import (
	"time"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// ========================================
// Alert Rule Builder
// ========================================

// RuleBuilder builds AlertRule instances for testing
type RuleBuilder struct {
	rule database.AlertRule
}

// NewRuleBuilder creates a new rule builder with defaults
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{
		rule: database.AlertRule{
			ID:                 "rule-cpu-high",
			OrganizationID:     "org-1",
			Name:               "CPU High",
			Category:           "system",
			MetricName:         "cpu_usage",
			Operator:           ">",
			Threshold:          80,
			Severity:           database.AlertSeverityHigh,
			Enabled:            true,
			EvaluationInterval: 60,
			ForDuration:        300,
			SuppressionEnabled: true,
			CorrelationEnabled: true,
			CreatedAt:          time.Now(),
			UpdatedAt:          time.Now(),
		},
	}
}

// WithID sets the rule ID
func (b *RuleBuilder) WithID(id string) *RuleBuilder {
	b.rule.ID = id
	return b
}

// WithName sets the rule name
func (b *RuleBuilder) WithName(name string) *RuleBuilder {
	b.rule.Name = name
	return b
}

// WithCategory sets the rule category
func (b *RuleBuilder) WithCategory(category string) *RuleBuilder {
	b.rule.Category = category
	return b
}

// WithMetric sets the metric name
func (b *RuleBuilder) WithMetric(metric string) *RuleBuilder {
	b.rule.MetricName = metric
	return b
}

// WithThreshold sets the operator and threshold
func (b *RuleBuilder) WithThreshold(operator string, threshold float64) *RuleBuilder {
	b.rule.Operator = operator
	b.rule.Threshold = threshold
	return b
}

// WithSeverity sets the severity
func (b *RuleBuilder) WithSeverity(severity database.AlertSeverity) *RuleBuilder {
	b.rule.Severity = severity
	return b
}

// WithForDuration sets the for-duration in seconds
func (b *RuleBuilder) WithForDuration(seconds int) *RuleBuilder {
	b.rule.ForDuration = seconds
	return b
}

// WithSuppression sets the suppression window in seconds
func (b *RuleBuilder) WithSuppression(seconds int) *RuleBuilder {
	b.rule.SuppressionEnabled = true
	b.rule.SuppressionDuration = seconds
	return b
}

// WithCorrelation enables or disables correlation
func (b *RuleBuilder) WithCorrelation(enabled bool) *RuleBuilder {
	b.rule.CorrelationEnabled = enabled
	return b
}

// WithCorrelationWindow sets the correlation window in seconds
func (b *RuleBuilder) WithCorrelationWindow(seconds int) *RuleBuilder {
	b.rule.CorrelationEnabled = true
	b.rule.CorrelationWindow = seconds
	return b
}

// WithAutoResolve enables auto-resolution with the given quiet period
func (b *RuleBuilder) WithAutoResolve(seconds int) *RuleBuilder {
	b.rule.AutoResolveEnabled = true
	b.rule.AutoResolveDuration = seconds
	return b
}

// Disabled marks the rule as disabled
func (b *RuleBuilder) Disabled() *RuleBuilder {
	b.rule.Enabled = false
	return b
}

// Build returns the constructed rule
func (b *RuleBuilder) Build() database.AlertRule {
	return b.rule
}

// BuildPtr returns a pointer to the constructed rule
func (b *RuleBuilder) BuildPtr() *database.AlertRule {
	rule := b.rule
	return &rule
}

// ========================================
// Metric Sample Builder
// ========================================

// SampleBuilder builds MetricSample instances for testing
type SampleBuilder struct {
	sample engine.MetricSample
}

// NewSampleBuilder creates a new sample builder with defaults
func NewSampleBuilder() *SampleBuilder {
	return &SampleBuilder{
		sample: engine.MetricSample{
			OrganizationID: "org-1",
			TargetID:       "server-01",
			TargetName:     "web-server-01",
			MetricName:     "cpu_usage",
			Value:          95,
			Timestamp:      time.Now(),
		},
	}
}

// WithTarget sets the target ID and name
func (b *SampleBuilder) WithTarget(id, name string) *SampleBuilder {
	b.sample.TargetID = id
	b.sample.TargetName = name
	return b
}

// WithMetric sets the metric name
func (b *SampleBuilder) WithMetric(metric string) *SampleBuilder {
	b.sample.MetricName = metric
	return b
}

// WithValue sets the observed value
func (b *SampleBuilder) WithValue(value float64) *SampleBuilder {
	b.sample.Value = value
	return b
}

// WithOrganization sets the organization ID
func (b *SampleBuilder) WithOrganization(orgID string) *SampleBuilder {
	b.sample.OrganizationID = orgID
	return b
}

// WithTimestamp sets the sample timestamp
func (b *SampleBuilder) WithTimestamp(ts time.Time) *SampleBuilder {
	b.sample.Timestamp = ts
	return b
}

// Build returns the constructed sample
func (b *SampleBuilder) Build() engine.MetricSample {
	return b.sample
}

// ========================================
// Alert Builder
// ========================================

// AlertBuilder builds Alert instances for testing
type AlertBuilder struct {
	alert database.Alert
}

// NewAlertBuilder creates a new alert builder with defaults
func NewAlertBuilder() *AlertBuilder {
	now := time.Now()
	return &AlertBuilder{
		alert: database.Alert{
			ID:             "alert-1",
			OrganizationID: "org-1",
			RuleID:         "rule-cpu-high",
			RuleName:       "CPU High",
			TargetID:       "server-01",
			TargetName:     "web-server-01",
			MetricName:     "cpu_usage",
			Category:       "system",
			Severity:       database.AlertSeverityHigh,
			Status:         database.AlertStatusPending,
			Summary:        "CPU High on web-server-01",
			MetricValue:    95,
			ThresholdValue: 80,
			Fingerprint:    "rule-cpu-high:server-01:cpu_usage",
			CreatedAt:      now,
			LastUpdatedAt:  now,
		},
	}
}

// WithID sets the alert ID
func (b *AlertBuilder) WithID(id string) *AlertBuilder {
	b.alert.ID = id
	return b
}

// WithTarget sets the target ID and name
func (b *AlertBuilder) WithTarget(id, name string) *AlertBuilder {
	b.alert.TargetID = id
	b.alert.TargetName = name
	return b
}

// WithCategory sets the category
func (b *AlertBuilder) WithCategory(category string) *AlertBuilder {
	b.alert.Category = category
	return b
}

// WithMetric sets the metric name
func (b *AlertBuilder) WithMetric(metric string) *AlertBuilder {
	b.alert.MetricName = metric
	return b
}

// WithSeverity sets the severity
func (b *AlertBuilder) WithSeverity(severity database.AlertSeverity) *AlertBuilder {
	b.alert.Severity = severity
	return b
}

// WithStatus sets the lifecycle status
func (b *AlertBuilder) WithStatus(status database.AlertStatus) *AlertBuilder {
	b.alert.Status = status
	return b
}

// WithFingerprint sets the dedup fingerprint
func (b *AlertBuilder) WithFingerprint(fp string) *AlertBuilder {
	b.alert.Fingerprint = fp
	return b
}

// WithCreatedAt sets both created and last-updated timestamps
func (b *AlertBuilder) WithCreatedAt(ts time.Time) *AlertBuilder {
	b.alert.CreatedAt = ts
	b.alert.LastUpdatedAt = ts
	return b
}

// Build returns the constructed alert
func (b *AlertBuilder) Build() database.Alert {
	return b.alert
}

// BuildPtr returns a pointer to the constructed alert
func (b *AlertBuilder) BuildPtr() *database.Alert {
	alert := b.alert
	return &alert
}
