package engine

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// DefaultSimilarityThreshold is the minimum score for two alerts to correlate
const DefaultSimilarityThreshold = 0.7

// DefaultRetentionWindow is how long stale entries stay in the in-memory
// index before the cleanup sweep evicts them
const DefaultRetentionWindow = 30 * time.Minute

// Config tunes the engine. Zero values fall back to the defaults above.
type Config struct {
	SimilarityThreshold float64
	Weights             SimilarityWeights
	RetentionWindow     time.Duration

	// Now is the clock; tests inject a virtual one. Defaults to time.Now.
	Now func() time.Time
}

// Engine correlates alerts and drives them through their lifecycle. One
// mutex guards the open-alert set, the dedup index, and the group registry;
// correlation decisions need a globally consistent view of open alerts.
// Persistence and notification happen after the lock is released, on copies.
type Engine struct {
	repo      Repository
	evaluator Evaluator
	notifier  Notifier

	threshold float64
	weights   SimilarityWeights
	retention time.Duration
	now       func() time.Time

	mu     sync.Mutex
	open   map[string]*openAlert          // fingerprint -> open alert entry
	alerts map[string]*database.Alert     // alert ID -> retained alert
	groups map[string]*correlationCluster // group ID -> cluster

	totalProcessed atomic.Uint64
	duplicates     atomic.Uint64
	correlated     atomic.Uint64
	autoResolved   atomic.Uint64
	evalErrors     atomic.Uint64
}

// openAlert tracks a non-resolved alert together with the rule config it was
// created from and the timing marks used by the pending->firing guard.
type openAlert struct {
	alert *database.Alert
	rule  database.AlertRule

	// conditionSince is when the triggering condition most recently became
	// true: set at creation and restarted by the first trigger after a
	// clearing evaluation. The sweep measures forDuration from here, so the
	// condition must have held continuously for the whole span.
	conditionSince time.Time

	// clearedSince is set when a not-triggered evaluation arrives and zeroed
	// again on the next triggered one. A pending alert is only promoted while
	// it is zero.
	clearedSince time.Time
}

// correlationCluster is a group row plus its member IDs in insertion order
type correlationCluster struct {
	row     *database.CorrelationGroup
	members []string
}

// NewEngine creates a processing engine. The notifier may be nil.
func NewEngine(repo Repository, evaluator Evaluator, notifier Notifier, cfg Config) *Engine {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.Weights == (SimilarityWeights{}) {
		cfg.Weights = DefaultSimilarityWeights
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = DefaultRetentionWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{
		repo:      repo,
		evaluator: evaluator,
		notifier:  notifier,
		threshold: cfg.SimilarityThreshold,
		weights:   cfg.Weights,
		retention: cfg.RetentionWindow,
		now:       cfg.Now,
		open:      make(map[string]*openAlert),
		alerts:    make(map[string]*database.Alert),
		groups:    make(map[string]*correlationCluster),
	}
}

// Fingerprint derives the deterministic dedup key for a rule/target/metric
// combination.
func Fingerprint(ruleID, targetID, metricName string) string {
	return fmt.Sprintf("%s:%s:%s", ruleID, targetID, metricName)
}

// EvaluateRule runs one rule against one metric sample and applies the
// outcome: dedup, alert creation, correlation, or auto-resolution. Evaluator
// failures are counted and swallowed; the rule is simply re-evaluated on its
// next cycle.
func (e *Engine) EvaluateRule(rule *database.AlertRule, sample MetricSample) {
	result, err := e.evaluator.Evaluate(rule, sample)
	if err != nil {
		e.evalErrors.Add(1)
		log.Printf("Rule evaluation failed for rule %s: %v", rule.ID, err)
		return
	}

	fingerprint := Fingerprint(rule.ID, sample.TargetID, sample.MetricName)

	if !result.Triggered {
		e.handleClear(rule, fingerprint, result)
		return
	}
	e.handleTriggered(rule, sample, fingerprint, result)
}

// ProcessMetrics evaluates every applicable rule against a metric sample
func (e *Engine) ProcessMetrics(rules []database.AlertRule, sample MetricSample) {
	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled || rule.MetricName != sample.MetricName {
			continue
		}
		if rule.OrganizationID != "" && sample.OrganizationID != "" &&
			rule.OrganizationID != sample.OrganizationID {
			continue
		}
		e.EvaluateRule(rule, sample)
	}
}

func (e *Engine) handleTriggered(rule *database.AlertRule, sample MetricSample, fingerprint string, result EvaluationResult) {
	var fx sideEffects

	e.mu.Lock()
	if entry, ok := e.open[fingerprint]; ok && entry.alert.IsOpen() {
		e.retriggerLocked(entry, rule, result, &fx)
		e.mu.Unlock()
		e.flush(fx)
		return
	}
	e.mu.Unlock()

	// The cleanup sweep may have evicted an alert the repository still holds
	// open. Look it up before creating a second alert for the same problem.
	// The lookup happens outside the lock; re-check the index afterwards.
	stored := e.findStoredOpen(fingerprint)

	e.mu.Lock()
	now := e.now()

	if entry, ok := e.open[fingerprint]; ok && entry.alert.IsOpen() {
		// A concurrent evaluation re-populated the index while the lock
		// was released.
		e.retriggerLocked(entry, rule, result, &fx)
		e.mu.Unlock()
		e.flush(fx)
		return
	}

	if stored != nil {
		// Re-adopt the stored alert into the index so the suppression
		// window keeps applying to it.
		entry := &openAlert{alert: stored, rule: *rule, conditionSince: now}
		e.open[fingerprint] = entry
		e.alerts[stored.ID] = stored
		e.retriggerLocked(entry, rule, result, &fx)
		e.mu.Unlock()
		e.flush(fx)
		return
	}

	alert := e.newAlert(rule, sample, fingerprint, result, now)
	e.totalProcessed.Add(1)
	e.open[fingerprint] = &openAlert{alert: alert, rule: *rule, conditionSince: now}
	e.alerts[alert.ID] = alert

	if rule.CorrelationEnabled {
		e.correlateLocked(alert, rule, now, &fx)
	}

	fx.saveAlert(alert)
	fx.event(EventAlertCreated, alert, now)
	e.mu.Unlock()

	e.flush(fx)
	log.Printf("New alert %s: %s", alert.ID, alert.Summary)
}

// retriggerLocked refreshes an existing open alert for a repeat trigger. At
// most one open alert exists per fingerprint, so no new alert is produced;
// inside the suppression window the repeat only bumps the duplicate counter.
// Caller holds e.mu.
func (e *Engine) retriggerLocked(entry *openAlert, rule *database.AlertRule, result EvaluationResult, fx *sideEffects) {
	now := e.now()

	// The condition is true again. If a clearing evaluation interrupted it,
	// the promotion clock restarts from this trigger.
	if !entry.clearedSince.IsZero() {
		entry.clearedSince = time.Time{}
		entry.conditionSince = now
	}

	if now.Sub(entry.alert.LastUpdatedAt) < rule.SuppressionWindow() {
		e.duplicates.Add(1)
		entry.alert.LastUpdatedAt = now
		fx.saveAlert(entry.alert)
		log.Printf("Duplicate alert suppressed: %s", entry.alert.Fingerprint)
		return
	}

	entry.alert.LastUpdatedAt = now
	entry.alert.MetricValue = result.ActualValue
	fx.saveAlert(entry.alert)
}

// findStoredOpen consults the repository for an open alert that aged out of
// the in-memory index. Lookup failures are logged and treated as a miss; the
// in-memory state stays authoritative.
func (e *Engine) findStoredOpen(fingerprint string) *database.Alert {
	stored, err := e.repo.FindOpenByFingerprint(fingerprint)
	if err != nil {
		log.Printf("Failed to look up open alert for %s: %v", fingerprint, err)
		return nil
	}
	if stored == nil || !stored.IsOpen() {
		return nil
	}
	return stored
}

func (e *Engine) handleClear(rule *database.AlertRule, fingerprint string, result EvaluationResult) {
	var fx sideEffects

	e.mu.Lock()
	now := e.now()

	entry, ok := e.open[fingerprint]
	if !ok || !entry.alert.IsOpen() {
		e.mu.Unlock()
		return
	}

	if entry.clearedSince.IsZero() {
		entry.clearedSince = now
	}

	if rule.AutoResolveEnabled && now.Sub(entry.alert.LastUpdatedAt) >= rule.AutoResolveDurationDuration() {
		detail := result.Message
		if detail == "" {
			detail = "condition no longer met"
		}
		e.resolveLocked(entry.alert, "Auto-resolved: "+detail, now, &fx)
		e.autoResolved.Add(1)
		log.Printf("Auto-resolved alert %s (%s)", entry.alert.ID, detail)
	}

	e.mu.Unlock()
	e.flush(fx)
}

func (e *Engine) newAlert(rule *database.AlertRule, sample MetricSample, fingerprint string, result EvaluationResult, now time.Time) *database.Alert {
	targetName := sample.TargetName
	if targetName == "" {
		targetName = sample.TargetID
	}

	return &database.Alert{
		ID:             uuid.NewString(),
		OrganizationID: rule.OrganizationID,
		RuleID:         rule.ID,
		RuleName:       rule.Name,
		TargetID:       sample.TargetID,
		TargetName:     targetName,
		MetricName:     sample.MetricName,
		Category:       rule.Category,
		Severity:       rule.Severity,
		Status:         database.AlertStatusPending,
		Summary:        fmt.Sprintf("%s on %s", rule.Name, targetName),
		Description: fmt.Sprintf("Alert rule '%s' triggered for target '%s'. Metric '%s' value %.2f exceeds threshold %.2f",
			rule.Name, targetName, sample.MetricName, result.ActualValue, result.ThresholdValue),
		MetricValue:    result.ActualValue,
		ThresholdValue: result.ThresholdValue,
		Fingerprint:    fingerprint,
		CreatedAt:      now,
		LastUpdatedAt:  now,
	}
}

// AcknowledgeAlert marks an alert acknowledged by an actor. Re-acknowledging
// overwrites actor, comment, and timestamp without error; acknowledging a
// resolved alert is a no-op success.
func (e *Engine) AcknowledgeAlert(alertID, actorID, comment string) error {
	var fx sideEffects

	e.mu.Lock()
	alert, ok := e.alerts[alertID]
	if !ok {
		e.mu.Unlock()
		return e.acknowledgeEvicted(alertID, actorID, comment)
	}

	if !alert.IsOpen() {
		e.mu.Unlock()
		return nil
	}

	now := e.now()
	alert.Status = database.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = actorID
	alert.AcknowledgmentComment = comment
	alert.LastUpdatedAt = now
	fx.saveAlert(alert)
	fx.event(EventAlertAcknowledged, alert, now)
	e.mu.Unlock()

	e.flush(fx)
	log.Printf("Alert %s acknowledged by %s", alertID, actorID)
	return nil
}

// acknowledgeEvicted handles alerts that aged out of the in-memory index but
// still exist in the repository.
func (e *Engine) acknowledgeEvicted(alertID, actorID, comment string) error {
	stored, err := e.repo.FindAlertByID(alertID)
	if err != nil {
		return fmt.Errorf("failed to look up alert %s: %w", alertID, err)
	}
	if stored == nil {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	if !stored.IsOpen() {
		return nil
	}

	now := e.now()
	stored.Status = database.AlertStatusAcknowledged
	stored.AcknowledgedAt = &now
	stored.AcknowledgedBy = actorID
	stored.AcknowledgmentComment = comment
	stored.LastUpdatedAt = now

	if err := e.repo.SaveAlert(stored); err != nil {
		log.Printf("Failed to persist acknowledgment for alert %s: %v", alertID, err)
	}
	if e.notifier != nil {
		e.notifier.Notify(AlertEvent{Type: EventAlertAcknowledged, Alert: *stored, Timestamp: now})
	}
	return nil
}

// ResolveAlert resolves an alert with a free-text reason. Resolving an
// already-resolved alert is a no-op success; resolved is terminal.
func (e *Engine) ResolveAlert(alertID, reason string) error {
	var fx sideEffects

	e.mu.Lock()
	alert, ok := e.alerts[alertID]
	if !ok {
		e.mu.Unlock()
		return e.resolveEvicted(alertID, reason)
	}

	if !alert.IsOpen() {
		e.mu.Unlock()
		return nil
	}

	now := e.now()
	e.resolveLocked(alert, reason, now, &fx)
	e.mu.Unlock()

	e.flush(fx)
	log.Printf("Alert %s resolved: %s", alertID, reason)
	return nil
}

func (e *Engine) resolveEvicted(alertID, reason string) error {
	stored, err := e.repo.FindAlertByID(alertID)
	if err != nil {
		return fmt.Errorf("failed to look up alert %s: %w", alertID, err)
	}
	if stored == nil {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	if !stored.IsOpen() {
		return nil
	}

	now := e.now()
	stored.Status = database.AlertStatusResolved
	stored.ResolvedAt = &now
	stored.ResolutionReason = reason
	stored.LastUpdatedAt = now

	if err := e.repo.SaveAlert(stored); err != nil {
		log.Printf("Failed to persist resolution for alert %s: %v", alertID, err)
	}
	if e.notifier != nil {
		e.notifier.Notify(AlertEvent{Type: EventAlertResolved, Alert: *stored, Timestamp: now})
	}
	return nil
}

// resolveLocked applies the terminal transition and detaches the alert from
// the dedup index and its correlation group. Caller holds e.mu.
func (e *Engine) resolveLocked(alert *database.Alert, reason string, now time.Time, fx *sideEffects) {
	alert.Status = database.AlertStatusResolved
	alert.ResolvedAt = &now
	alert.ResolutionReason = reason
	alert.LastUpdatedAt = now

	if entry, ok := e.open[alert.Fingerprint]; ok && entry.alert.ID == alert.ID {
		delete(e.open, alert.Fingerprint)
	}

	if alert.CorrelationGroupID != nil {
		e.removeFromGroupLocked(*alert.CorrelationGroupID, alert.ID, now, fx)
	}

	fx.saveAlert(alert)
	fx.event(EventAlertResolved, alert, now)
}

// GetAlert returns a copy of a retained alert, falling back to the repository
func (e *Engine) GetAlert(alertID string) (*database.Alert, error) {
	e.mu.Lock()
	if alert, ok := e.alerts[alertID]; ok {
		snapshot := *alert
		e.mu.Unlock()
		return &snapshot, nil
	}
	e.mu.Unlock()

	stored, err := e.repo.FindAlertByID(alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up alert %s: %w", alertID, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	return stored, nil
}

// GetProcessingStatistics returns a snapshot of the running counters and
// gauges. Counter reads are relaxed; gauges take the lock briefly.
func (e *Engine) GetProcessingStatistics() Statistics {
	e.mu.Lock()
	activeAlerts := len(e.open)
	activeGroups := len(e.groups)
	e.mu.Unlock()

	total := e.totalProcessed.Load()
	correlated := e.correlated.Load()

	rate := 0.0
	if total > 0 {
		rate = float64(correlated) / float64(total) * 100
	}

	return Statistics{
		TotalAlertsProcessed:    total,
		DuplicateAlerts:         e.duplicates.Load(),
		CorrelatedAlerts:        correlated,
		AutoResolvedAlerts:      e.autoResolved.Load(),
		EvaluationErrors:        e.evalErrors.Load(),
		ActiveAlerts:            activeAlerts,
		ActiveCorrelationGroups: activeGroups,
		CorrelationRate:         rate,
		Timestamp:               e.now(),
	}
}

// OpenAlerts returns copies of all currently-open alerts, newest first
func (e *Engine) OpenAlerts() []database.Alert {
	e.mu.Lock()
	alerts := make([]database.Alert, 0, len(e.open))
	for _, entry := range e.open {
		alerts = append(alerts, *entry.alert)
	}
	e.mu.Unlock()

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].CreatedAt.Equal(alerts[j].CreatedAt) {
			return alerts[i].ID < alerts[j].ID
		}
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts
}

// ActiveGroups returns copies of all active correlation groups, newest first
func (e *Engine) ActiveGroups() []database.CorrelationGroup {
	e.mu.Lock()
	groups := make([]database.CorrelationGroup, 0, len(e.groups))
	for _, cluster := range e.groups {
		groups = append(groups, *cluster.row)
	}
	e.mu.Unlock()

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].ID < groups[j].ID
		}
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups
}
