package handlers

import (
	"net/http"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
	"github.com/vibhukrishnas/sams-sub016/internal/evaluation"
	"github.com/vibhukrishnas/sams-sub016/internal/testhelpers"
)

// setupHandlerTest creates an engine over an in-memory SQLite store together
// with the handlers under test
func setupHandlerTest(t *testing.T) (*APIHandler, *WebhookHandler, *engine.Engine, *database.AlertStore) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	store := database.NewAlertStore(db)
	eng := engine.NewEngine(store, evaluation.NewThresholdEvaluator(), nil, engine.Config{})
	return NewAPIHandler(eng, store), NewWebhookHandler(eng, store), eng, store
}

// triggerTestAlert pushes one triggering sample through the engine
func triggerTestAlert(t *testing.T, eng *engine.Engine) database.Alert {
	t.Helper()
	rule := testhelpers.NewRuleBuilder().BuildPtr()
	sample := testhelpers.NewSampleBuilder().WithValue(95).Build()
	eng.EvaluateRule(rule, sample)

	open := eng.OpenAlerts()
	if len(open) != 1 {
		t.Fatalf("expected 1 open alert, got %d", len(open))
	}
	return open[0]
}

func TestAPIHandler_Statistics(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)
	triggerTestAlert(t, eng)

	var stats engine.Statistics
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/statistics", nil).
		ExecuteFunc(apiHandler.handleStatistics).
		AssertStatus(http.StatusOK).
		DecodeJSON(&stats)

	if stats.TotalAlertsProcessed != 1 {
		t.Errorf("expected 1 processed, got %d", stats.TotalAlertsProcessed)
	}
	if stats.ActiveAlerts != 1 {
		t.Errorf("expected 1 active alert, got %d", stats.ActiveAlerts)
	}
}

func TestAPIHandler_Statistics_MethodNotAllowed(t *testing.T) {
	apiHandler, _, _, _ := setupHandlerTest(t)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/v1/statistics", nil).
		ExecuteFunc(apiHandler.handleStatistics).
		AssertStatus(http.StatusMethodNotAllowed)
}

func TestAPIHandler_ListOpenAlerts(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)
	alert := triggerTestAlert(t, eng)

	var alerts []database.Alert
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/alerts?status=open", nil).
		ExecuteFunc(apiHandler.handleAlerts).
		AssertStatus(http.StatusOK).
		DecodeJSON(&alerts)

	if len(alerts) != 1 || alerts[0].ID != alert.ID {
		t.Errorf("expected the open alert, got %+v", alerts)
	}
}

func TestAPIHandler_ListAlertsFromStore(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)
	alert := triggerTestAlert(t, eng)
	if err := eng.ResolveAlert(alert.ID, "fixed"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var alerts []database.Alert
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/alerts?status=resolved", nil).
		ExecuteFunc(apiHandler.handleAlerts).
		AssertStatus(http.StatusOK).
		DecodeJSON(&alerts)

	if len(alerts) != 1 || alerts[0].Status != database.AlertStatusResolved {
		t.Errorf("expected the resolved alert, got %+v", alerts)
	}
}

func TestAPIHandler_GetAlert(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)
	alert := triggerTestAlert(t, eng)

	var got database.Alert
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/alerts/"+alert.ID, nil).
		ExecuteFunc(apiHandler.handleAlertAction).
		AssertStatus(http.StatusOK).
		DecodeJSON(&got)

	if got.ID != alert.ID {
		t.Errorf("expected alert %s, got %s", alert.ID, got.ID)
	}
}

func TestAPIHandler_GetAlert_NotFound(t *testing.T) {
	apiHandler, _, _, _ := setupHandlerTest(t)

	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/alerts/no-such-alert", nil).
		ExecuteFunc(apiHandler.handleAlertAction).
		AssertStatus(http.StatusNotFound)
}

func TestAPIHandler_Acknowledge(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)
	alert := triggerTestAlert(t, eng)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/v1/alerts/"+alert.ID+"/acknowledge", nil).
		WithJSONBody(AcknowledgeRequest{ActorID: "user-7", Comment: "on it"}).
		ExecuteFunc(apiHandler.handleAlertAction).
		AssertStatus(http.StatusNoContent)

	got, err := eng.GetAlert(alert.ID)
	if err != nil {
		t.Fatalf("get alert failed: %v", err)
	}
	if got.Status != database.AlertStatusAcknowledged || got.AcknowledgedBy != "user-7" {
		t.Errorf("expected acknowledged by user-7, got %+v", got)
	}
}

func TestAPIHandler_Acknowledge_MissingActor(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)
	alert := triggerTestAlert(t, eng)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/v1/alerts/"+alert.ID+"/acknowledge", nil).
		WithJSONBody(AcknowledgeRequest{Comment: "anonymous"}).
		ExecuteFunc(apiHandler.handleAlertAction).
		AssertStatus(http.StatusBadRequest)
}

func TestAPIHandler_Resolve(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)
	alert := triggerTestAlert(t, eng)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/v1/alerts/"+alert.ID+"/resolve", nil).
		WithJSONBody(ResolveRequest{}).
		ExecuteFunc(apiHandler.handleAlertAction).
		AssertStatus(http.StatusNoContent)

	got, _ := eng.GetAlert(alert.ID)
	if got.Status != database.AlertStatusResolved {
		t.Errorf("expected resolved, got %s", got.Status)
	}
	if got.ResolutionReason != "Manually resolved" {
		t.Errorf("expected default reason, got %q", got.ResolutionReason)
	}
}

func TestAPIHandler_Resolve_NotFound(t *testing.T) {
	apiHandler, _, _, _ := setupHandlerTest(t)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/v1/alerts/no-such-alert/resolve", nil).
		WithJSONBody(ResolveRequest{Reason: "gone"}).
		ExecuteFunc(apiHandler.handleAlertAction).
		AssertStatus(http.StatusNotFound)
}

func TestAPIHandler_GroupsAndMembers(t *testing.T) {
	apiHandler, _, eng, _ := setupHandlerTest(t)

	// Two similar alerts on one target form a group.
	ruleCPU := testhelpers.NewRuleBuilder().Build()
	ruleLoad := testhelpers.NewRuleBuilder().
		WithID("rule-cpu-load").
		WithName("CPU Load").
		WithMetric("cpu_load").
		Build()
	eng.EvaluateRule(&ruleCPU, testhelpers.NewSampleBuilder().WithValue(95).Build())
	eng.EvaluateRule(&ruleLoad, testhelpers.NewSampleBuilder().WithMetric("cpu_load").WithValue(95).Build())

	var groups []database.CorrelationGroup
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/correlation-groups", nil).
		ExecuteFunc(apiHandler.handleGroups).
		AssertStatus(http.StatusOK).
		DecodeJSON(&groups)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].AlertCount != 2 {
		t.Errorf("expected 2 members, got %d", groups[0].AlertCount)
	}

	var members []database.Alert
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/correlation-groups/"+groups[0].ID+"/alerts", nil).
		ExecuteFunc(apiHandler.handleGroupAlerts).
		AssertStatus(http.StatusOK).
		DecodeJSON(&members)

	if len(members) != 2 {
		t.Errorf("expected 2 member alerts from the store, got %d", len(members))
	}
}

func TestAPIHandler_Rules(t *testing.T) {
	apiHandler, _, _, store := setupHandlerTest(t)

	rule := testhelpers.NewRuleBuilder().Build()
	if err := store.SaveRule(&rule); err != nil {
		t.Fatalf("save rule failed: %v", err)
	}

	var rules []database.AlertRule
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/v1/rules", nil).
		ExecuteFunc(apiHandler.handleRules).
		AssertStatus(http.StatusOK).
		DecodeJSON(&rules)

	if len(rules) != 1 || rules[0].ID != rule.ID {
		t.Errorf("expected the saved rule, got %+v", rules)
	}
}

func TestAPIHandler_StaleAlertActionAfterCleanup(t *testing.T) {
	// An alert evicted from memory can still be resolved through the
	// repository fallback.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	store := database.NewAlertStore(db)

	now := time.Now()
	clock := &now
	eng := engine.NewEngine(store, evaluation.NewThresholdEvaluator(), nil, engine.Config{
		Now: func() time.Time { return *clock },
	})
	apiHandler := NewAPIHandler(eng, store)

	alert := triggerTestAlert(t, eng)

	later := now.Add(time.Hour)
	clock = &later
	eng.Cleanup()

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/v1/alerts/"+alert.ID+"/resolve", nil).
		WithJSONBody(ResolveRequest{Reason: "late fix"}).
		ExecuteFunc(apiHandler.handleAlertAction).
		AssertStatus(http.StatusNoContent)

	stored, _ := store.FindAlertByID(alert.ID)
	if stored == nil || stored.Status != database.AlertStatusResolved {
		t.Errorf("expected resolved in store, got %+v", stored)
	}
}
