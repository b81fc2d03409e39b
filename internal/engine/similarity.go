package engine

import (
	"strings"
	"time"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// SimilarityWeights are the weights of the independent similarity signals.
// They sum to 1.0.
type SimilarityWeights struct {
	SameTarget   float64
	SameCategory float64
	SameSeverity float64
	Temporal     float64
}

// DefaultSimilarityWeights is the fixed default scheme
var DefaultSimilarityWeights = SimilarityWeights{
	SameTarget:   0.4,
	SameCategory: 0.3,
	SameSeverity: 0.2,
	Temporal:     0.1,
}

// temporalProximity is the creation-time distance under which two alerts
// earn the temporal signal
const temporalProximity = time.Minute

// Similarity computes the 0..1 relatedness score between two alerts. It is
// symmetric, deterministic, and free of side effects.
func Similarity(a, b *database.Alert, w SimilarityWeights) float64 {
	score := 0.0

	if a.TargetID == b.TargetID {
		score += w.SameTarget
	}

	if sameCategory(a, b) {
		score += w.SameCategory
	}

	if a.Severity == b.Severity {
		score += w.SameSeverity
	}

	diff := a.CreatedAt.Sub(b.CreatedAt)
	if diff < 0 {
		diff = -diff
	}
	if diff <= temporalProximity {
		score += w.Temporal
	}

	return score
}

// sameCategory matches on the rule category when both alerts carry one,
// otherwise on the metric family (the metric name up to its first underscore,
// so cpu_usage and cpu_load share a family).
func sameCategory(a, b *database.Alert) bool {
	if a.Category != "" && b.Category != "" {
		return a.Category == b.Category
	}
	return metricFamily(a.MetricName) == metricFamily(b.MetricName)
}

func metricFamily(metric string) string {
	if idx := strings.IndexByte(metric, '_'); idx > 0 {
		return metric[:idx]
	}
	return metric
}
