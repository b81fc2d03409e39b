package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// RuleSpec is one alert-rule definition in the rules file. Durations are in
// seconds.
type RuleSpec struct {
	ID             string  `yaml:"id"`
	OrganizationID string  `yaml:"organization_id"`
	Name           string  `yaml:"name"`
	Description    string  `yaml:"description"`
	Category       string  `yaml:"category"`
	Metric         string  `yaml:"metric"`
	Operator       string  `yaml:"operator"`
	Threshold      float64 `yaml:"threshold"`
	Severity       string  `yaml:"severity"`
	Enabled        *bool   `yaml:"enabled"`

	EvaluationInterval  int  `yaml:"evaluation_interval"`
	ForDuration         int  `yaml:"for_duration"`
	SuppressionEnabled  *bool `yaml:"suppression_enabled"`
	SuppressionDuration int  `yaml:"suppression_duration"`
	CorrelationEnabled  *bool `yaml:"correlation_enabled"`
	CorrelationWindow   int  `yaml:"correlation_window"`
	AutoResolveEnabled  bool `yaml:"auto_resolve_enabled"`
	AutoResolveDuration int  `yaml:"auto_resolve_duration"`
}

type rulesFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

// LoadRules reads alert-rule definitions from a YAML file
func LoadRules(path string) ([]database.AlertRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules parses alert-rule definitions from YAML bytes
func ParseRules(data []byte) ([]database.AlertRule, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := make([]database.AlertRule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		rule, err := spec.toModel()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (spec RuleSpec) toModel() (database.AlertRule, error) {
	if spec.ID == "" {
		return database.AlertRule{}, fmt.Errorf("missing id")
	}
	if spec.Name == "" {
		return database.AlertRule{}, fmt.Errorf("rule %s: missing name", spec.ID)
	}
	if spec.Metric == "" {
		return database.AlertRule{}, fmt.Errorf("rule %s: missing metric", spec.ID)
	}

	severity, err := parseSeverity(spec.Severity)
	if err != nil {
		return database.AlertRule{}, fmt.Errorf("rule %s: %w", spec.ID, err)
	}

	operator := spec.Operator
	if operator == "" {
		operator = ">"
	}

	interval := spec.EvaluationInterval
	if interval <= 0 {
		interval = 60
	}

	return database.AlertRule{
		ID:                  spec.ID,
		OrganizationID:      spec.OrganizationID,
		Name:                spec.Name,
		Description:         spec.Description,
		Category:            spec.Category,
		MetricName:          spec.Metric,
		Operator:            operator,
		Threshold:           spec.Threshold,
		Severity:            severity,
		Enabled:             boolOrDefault(spec.Enabled, true),
		EvaluationInterval:  interval,
		ForDuration:         spec.ForDuration,
		SuppressionEnabled:  boolOrDefault(spec.SuppressionEnabled, true),
		SuppressionDuration: spec.SuppressionDuration,
		CorrelationEnabled:  boolOrDefault(spec.CorrelationEnabled, true),
		CorrelationWindow:   spec.CorrelationWindow,
		AutoResolveEnabled:  spec.AutoResolveEnabled,
		AutoResolveDuration: spec.AutoResolveDuration,
	}, nil
}

func parseSeverity(raw string) (database.AlertSeverity, error) {
	switch database.AlertSeverity(raw) {
	case database.AlertSeverityInfo, database.AlertSeverityLow, database.AlertSeverityMedium,
		database.AlertSeverityHigh, database.AlertSeverityCritical:
		return database.AlertSeverity(raw), nil
	case "":
		return database.AlertSeverityMedium, nil
	default:
		return "", fmt.Errorf("unknown severity %q", raw)
	}
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
