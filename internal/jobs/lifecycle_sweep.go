// Package jobs contains the periodic background sweeps that drive
// time-based alert lifecycle transitions. The sweeps themselves are plain
// functions on the engine; these wrappers only add scheduling, so tests can
// drive logical time through the engine directly.
package jobs

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// LifecycleSweep periodically promotes pending alerts to firing once their
// for-duration has elapsed
type LifecycleSweep struct {
	engine  *engine.Engine
	running atomic.Bool
}

// NewLifecycleSweep creates a new lifecycle sweep job
func NewLifecycleSweep(eng *engine.Engine) *LifecycleSweep {
	return &LifecycleSweep{engine: eng}
}

// Run executes one sweep iteration. A run that starts while the previous one
// is still in flight is skipped rather than queued.
// Returns the number of alerts promoted.
func (j *LifecycleSweep) Run() int {
	if !j.running.CompareAndSwap(false, true) {
		log.Println("Lifecycle sweep still running, skipping this cycle")
		return 0
	}
	defer j.running.Store(false)

	return j.engine.Sweep()
}

// Start begins the periodic sweeps
func (j *LifecycleSweep) Start(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Run()
		case <-stop:
			log.Println("Lifecycle sweep stopped")
			return
		}
	}
}
