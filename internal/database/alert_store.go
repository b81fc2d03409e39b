package database

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlertStore is the gorm-backed persistence layer for alerts, correlation
// groups, and rules. The engine treats persistence as best-effort; the
// in-memory lifecycle stays authoritative even when a save fails.
type AlertStore struct {
	db *gorm.DB
}

// NewAlertStore creates a new alert store
func NewAlertStore(db *gorm.DB) *AlertStore {
	return &AlertStore{db: db}
}

// SaveAlert inserts or updates an alert by ID
func (s *AlertStore) SaveAlert(alert *Alert) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(alert).Error
}

// SaveGroup inserts or updates a correlation group by ID
func (s *AlertStore) SaveGroup(group *CorrelationGroup) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(group).Error
}

// DeleteGroup removes an evicted correlation group
func (s *AlertStore) DeleteGroup(id string) error {
	return s.db.Delete(&CorrelationGroup{}, "id = ?", id).Error
}

// FindAlertByID returns an alert by ID, or nil when it doesn't exist
func (s *AlertStore) FindAlertByID(id string) (*Alert, error) {
	var alert Alert
	err := s.db.First(&alert, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// FindOpenByFingerprint returns the currently-open alert for a fingerprint,
// or nil when none is open. At most one open alert exists per fingerprint.
func (s *AlertStore) FindOpenByFingerprint(fingerprint string) (*Alert, error) {
	var alert Alert
	err := s.db.Where("fingerprint = ? AND status <> ?", fingerprint, AlertStatusResolved).
		Order("created_at DESC").First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// ListAlerts returns alerts ordered newest first, optionally filtered by status
func (s *AlertStore) ListAlerts(status AlertStatus, limit int) ([]Alert, error) {
	q := s.db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var alerts []Alert
	err := q.Find(&alerts).Error
	return alerts, err
}

// ListGroups returns correlation groups ordered newest first
func (s *AlertStore) ListGroups(limit int) ([]CorrelationGroup, error) {
	q := s.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var groups []CorrelationGroup
	err := q.Find(&groups).Error
	return groups, err
}

// ListGroupAlerts returns the member alerts of a correlation group
func (s *AlertStore) ListGroupAlerts(groupID string) ([]Alert, error) {
	var alerts []Alert
	err := s.db.Where("correlation_group_id = ?", groupID).
		Order("created_at ASC").Find(&alerts).Error
	return alerts, err
}

// SaveRule inserts or updates a rule by ID
func (s *AlertStore) SaveRule(rule *AlertRule) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rule).Error
}

// ListEnabledRules returns all enabled rules
func (s *AlertStore) ListEnabledRules() ([]AlertRule, error) {
	var rules []AlertRule
	err := s.db.Where("enabled = ?", true).Order("id ASC").Find(&rules).Error
	return rules, err
}
