package testhelpers

import (
	"testing"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

func TestRuleBuilder(t *testing.T) {
	rule := NewRuleBuilder().
		WithID("rule-disk-full").
		WithName("Disk Nearly Full").
		WithCategory("storage").
		WithMetric("disk_usage").
		WithThreshold(">=", 95).
		WithSeverity(database.AlertSeverityCritical).
		Build()

	if rule.ID != "rule-disk-full" {
		t.Errorf("expected ID rule-disk-full, got %s", rule.ID)
	}
	if rule.Name != "Disk Nearly Full" {
		t.Errorf("expected Name 'Disk Nearly Full', got %s", rule.Name)
	}
	if rule.Category != "storage" {
		t.Errorf("expected Category storage, got %s", rule.Category)
	}
	if rule.MetricName != "disk_usage" {
		t.Errorf("expected MetricName disk_usage, got %s", rule.MetricName)
	}
	if rule.Operator != ">=" || rule.Threshold != 95 {
		t.Errorf("expected >= 95, got %s %v", rule.Operator, rule.Threshold)
	}
	if rule.Severity != database.AlertSeverityCritical {
		t.Errorf("expected severity critical, got %s", rule.Severity)
	}
	if !rule.Enabled {
		t.Error("expected Enabled true by default")
	}
}

func TestRuleBuilder_Disabled(t *testing.T) {
	rule := NewRuleBuilder().Disabled().Build()
	if rule.Enabled {
		t.Error("expected Enabled false")
	}
}

func TestRuleBuilder_AutoResolve(t *testing.T) {
	rule := NewRuleBuilder().WithAutoResolve(600).Build()
	if !rule.AutoResolveEnabled || rule.AutoResolveDuration != 600 {
		t.Errorf("unexpected auto-resolve config %v/%d", rule.AutoResolveEnabled, rule.AutoResolveDuration)
	}
}

func TestSampleBuilder(t *testing.T) {
	sample := NewSampleBuilder().
		WithTarget("db-01", "postgres-primary").
		WithMetric("db_connections").
		WithValue(250).
		Build()

	if sample.TargetID != "db-01" || sample.TargetName != "postgres-primary" {
		t.Errorf("unexpected target %s/%s", sample.TargetID, sample.TargetName)
	}
	if sample.MetricName != "db_connections" {
		t.Errorf("expected db_connections, got %s", sample.MetricName)
	}
	if sample.Value != 250 {
		t.Errorf("expected value 250, got %v", sample.Value)
	}
	if sample.Timestamp.IsZero() {
		t.Error("expected a default timestamp")
	}
}

func TestAlertBuilder(t *testing.T) {
	alert := NewAlertBuilder().
		WithID("alert-42").
		WithStatus(database.AlertStatusFiring).
		WithSeverity(database.AlertSeverityCritical).
		Build()

	if alert.ID != "alert-42" {
		t.Errorf("expected ID alert-42, got %s", alert.ID)
	}
	if alert.Status != database.AlertStatusFiring {
		t.Errorf("expected status firing, got %s", alert.Status)
	}
	if alert.Severity != database.AlertSeverityCritical {
		t.Errorf("expected severity critical, got %s", alert.Severity)
	}
	if alert.Fingerprint == "" {
		t.Error("expected a default fingerprint")
	}
}
