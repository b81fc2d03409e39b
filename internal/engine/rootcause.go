package engine

import (
	"fmt"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// AnalyzeRootCause derives a human-readable explanation from the composition
// of a correlation group. Pure function over the member list; the caller
// recomputes it synchronously on every membership change so it is never
// stale.
func AnalyzeRootCause(members []*database.Alert) string {
	if len(members) == 0 {
		return ""
	}

	// Count members per alert type and per target, keeping first-seen order
	// for deterministic tie-breaks.
	typeCounts := make(map[string]int)
	typeOrder := make([]string, 0, len(members))
	targets := make(map[string]bool)

	for _, alert := range members {
		t := alertType(alert)
		if _, seen := typeCounts[t]; !seen {
			typeOrder = append(typeOrder, t)
		}
		typeCounts[t]++
		targets[alert.TargetID] = true
	}

	mostCommonType := typeOrder[0]
	for _, t := range typeOrder[1:] {
		if typeCounts[t] > typeCounts[mostCommonType] {
			mostCommonType = t
		}
	}

	if len(targets) == 1 {
		return fmt.Sprintf("Target %s experiencing %s issues", members[0].TargetID, mostCommonType)
	}
	return fmt.Sprintf("Multi-target %s issues affecting %d targets", mostCommonType, len(targets))
}

// alertType is the classification used for root-cause counting: the rule
// category when present, else the metric name.
func alertType(alert *database.Alert) string {
	if alert.Category != "" {
		return alert.Category
	}
	return alert.MetricName
}
