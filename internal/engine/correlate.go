package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// correlateLocked clusters a newly created alert with similar open alerts.
// Candidates are open alerts whose creation time falls within the rule's
// correlation window of the new alert and whose similarity meets the
// threshold; both conditions are required. Caller holds e.mu.
func (e *Engine) correlateLocked(alert *database.Alert, rule *database.AlertRule, now time.Time, fx *sideEffects) {
	window := rule.CorrelationWindowDuration()

	var candidates []*database.Alert
	for _, entry := range e.open {
		candidate := entry.alert
		if candidate.ID == alert.ID {
			continue
		}
		diff := alert.CreatedAt.Sub(candidate.CreatedAt)
		if diff < 0 {
			diff = -diff
		}
		if diff > window {
			continue
		}
		if Similarity(alert, candidate, e.weights) < e.threshold {
			continue
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		// Stays ungrouped; it remains open and eligible as later alerts
		// arrive.
		return
	}

	// Strict ascending creation time, ties by lexical ID, so group selection
	// is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	// Reuse the group of the earliest-created candidate that has one. Groups
	// are never merged, even when the new alert bridges two of them.
	var cluster *correlationCluster
	for _, candidate := range candidates {
		if candidate.CorrelationGroupID == nil {
			continue
		}
		if existing, ok := e.groups[*candidate.CorrelationGroupID]; ok {
			cluster = existing
			break
		}
	}

	if cluster == nil {
		cluster = &correlationCluster{
			row: &database.CorrelationGroup{
				ID:             uuid.NewString(),
				OrganizationID: alert.OrganizationID,
				Severity:       database.AlertSeverityInfo,
				CreatedAt:      now,
				LastUpdatedAt:  now,
			},
		}
		e.groups[cluster.row.ID] = cluster

		for _, candidate := range candidates {
			if candidate.CorrelationGroupID == nil {
				e.addMemberLocked(cluster, candidate, fx)
			}
		}
	}

	e.addMemberLocked(cluster, alert, fx)
	e.correlated.Add(1)
	e.refreshGroupLocked(cluster, now, fx)
}

// addMemberLocked attaches an alert to a cluster. Caller holds e.mu and is
// responsible for calling refreshGroupLocked afterwards.
func (e *Engine) addMemberLocked(cluster *correlationCluster, alert *database.Alert, fx *sideEffects) {
	groupID := cluster.row.ID
	alert.CorrelationGroupID = &groupID
	cluster.members = append(cluster.members, alert.ID)
	fx.saveAlert(alert)
}

// removeFromGroupLocked detaches an alert from its cluster, evicting the
// cluster when it has no members left. Caller holds e.mu.
func (e *Engine) removeFromGroupLocked(groupID, alertID string, now time.Time, fx *sideEffects) {
	cluster, ok := e.groups[groupID]
	if !ok {
		return
	}

	for i, member := range cluster.members {
		if member == alertID {
			cluster.members = append(cluster.members[:i], cluster.members[i+1:]...)
			break
		}
	}

	if len(cluster.members) == 0 {
		delete(e.groups, groupID)
		fx.deleteGroup(groupID)
		return
	}
	e.refreshGroupLocked(cluster, now, fx)
}

// refreshGroupLocked re-derives severity (max over members), root cause, and
// member count after every membership change. Caller holds e.mu.
func (e *Engine) refreshGroupLocked(cluster *correlationCluster, now time.Time, fx *sideEffects) {
	members := make([]*database.Alert, 0, len(cluster.members))
	for _, id := range cluster.members {
		if alert, ok := e.alerts[id]; ok {
			members = append(members, alert)
		}
	}

	severity := database.AlertSeverityInfo
	for _, member := range members {
		severity = database.MaxSeverity(severity, member.Severity)
	}

	cluster.row.Severity = severity
	cluster.row.RootCause = AnalyzeRootCause(members)
	cluster.row.AlertCount = len(members)
	cluster.row.LastUpdatedAt = now
	fx.saveGroup(cluster.row)
}
