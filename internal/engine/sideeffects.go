package engine

import (
	"log"
	"time"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
)

// sideEffects accumulates persistence writes and notifications decided under
// the engine lock. They are flushed after the lock is released so blocking
// boundary calls never hold up concurrent evaluations. All entries are copies
// taken at decision time.
type sideEffects struct {
	alertSaves   []database.Alert
	groupSaves   []database.CorrelationGroup
	groupDeletes []string
	events       []AlertEvent
}

func (fx *sideEffects) saveAlert(alert *database.Alert) {
	fx.alertSaves = append(fx.alertSaves, *alert)
}

func (fx *sideEffects) saveGroup(group *database.CorrelationGroup) {
	fx.groupSaves = append(fx.groupSaves, *group)
}

func (fx *sideEffects) deleteGroup(id string) {
	fx.groupDeletes = append(fx.groupDeletes, id)
}

func (fx *sideEffects) event(eventType EventType, alert *database.Alert, now time.Time) {
	fx.events = append(fx.events, AlertEvent{Type: eventType, Alert: *alert, Timestamp: now})
}

// flush performs the accumulated writes and notifications. Failures are
// logged and do not roll back the in-memory state that already changed; the
// in-memory lifecycle is the source of truth.
func (e *Engine) flush(fx sideEffects) {
	for i := range fx.alertSaves {
		if err := e.repo.SaveAlert(&fx.alertSaves[i]); err != nil {
			log.Printf("Failed to persist alert %s: %v", fx.alertSaves[i].ID, err)
		}
	}
	for i := range fx.groupSaves {
		if err := e.repo.SaveGroup(&fx.groupSaves[i]); err != nil {
			log.Printf("Failed to persist correlation group %s: %v", fx.groupSaves[i].ID, err)
		}
	}
	for _, id := range fx.groupDeletes {
		if err := e.repo.DeleteGroup(id); err != nil {
			log.Printf("Failed to delete correlation group %s: %v", id, err)
		}
	}

	if e.notifier == nil {
		return
	}
	for _, event := range fx.events {
		e.notifier.Notify(event)
	}
}
