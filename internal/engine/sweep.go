package engine

import (
	"log"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// Sweep advances pending alerts to firing once their rule's forDuration has
// elapsed with the condition true for the whole span. A clearing evaluation
// restarts that span at the next trigger. A scheduler (or a test harness
// driving a virtual clock) calls this periodically.
// Returns the number of alerts promoted.
func (e *Engine) Sweep() int {
	var fx sideEffects

	e.mu.Lock()
	now := e.now()
	promoted := 0

	for _, entry := range e.open {
		alert := entry.alert
		if alert.Status != database.AlertStatusPending {
			continue
		}
		// A clearing evaluation since the last trigger blocks promotion.
		if !entry.clearedSince.IsZero() {
			continue
		}
		if now.Sub(entry.conditionSince) < entry.rule.ForDurationDuration() {
			continue
		}

		alert.Status = database.AlertStatusFiring
		alert.LastUpdatedAt = now
		fx.saveAlert(alert)
		fx.event(EventAlertFiring, alert, now)
		promoted++
	}
	e.mu.Unlock()

	e.flush(fx)
	if promoted > 0 {
		log.Printf("Lifecycle sweep promoted %d alerts to firing", promoted)
	}
	return promoted
}

// Cleanup evicts stale entries from the in-memory index: resolved alerts
// past retention, open alerts that have not been updated within the
// retention window, and groups left without members. Evicted rows stay in
// the repository for audit; only the in-memory working set shrinks.
// Returns the number of alerts evicted.
func (e *Engine) Cleanup() int {
	var fx sideEffects

	e.mu.Lock()
	now := e.now()
	cutoff := now.Add(-e.retention)
	evicted := 0

	for id, alert := range e.alerts {
		switch {
		case alert.Status == database.AlertStatusResolved:
			if alert.ResolvedAt != nil && alert.ResolvedAt.Before(cutoff) {
				delete(e.alerts, id)
			}
		case alert.LastUpdatedAt.Before(cutoff):
			if entry, ok := e.open[alert.Fingerprint]; ok && entry.alert.ID == id {
				delete(e.open, alert.Fingerprint)
			}
			if alert.CorrelationGroupID != nil {
				e.removeFromGroupLocked(*alert.CorrelationGroupID, id, now, &fx)
			}
			delete(e.alerts, id)
			evicted++
		}
	}

	// A group with zero members is garbage regardless of how it got there.
	for id, cluster := range e.groups {
		if len(cluster.members) == 0 {
			delete(e.groups, id)
			fx.deleteGroup(id)
		}
	}
	e.mu.Unlock()

	e.flush(fx)
	if evicted > 0 {
		log.Printf("Cleanup evicted %d stale alerts", evicted)
	}
	return evicted
}
