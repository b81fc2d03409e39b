package jobs

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// CleanupJob periodically evicts stale alerts and empty correlation groups
// from the engine's in-memory index
type CleanupJob struct {
	engine  *engine.Engine
	running atomic.Bool
}

// NewCleanupJob creates a new cleanup job
func NewCleanupJob(eng *engine.Engine) *CleanupJob {
	return &CleanupJob{engine: eng}
}

// Run executes one cleanup iteration, skipping when the previous one is
// still in flight. Returns the number of alerts evicted.
func (j *CleanupJob) Run() int {
	if !j.running.CompareAndSwap(false, true) {
		log.Println("Cleanup still running, skipping this cycle")
		return 0
	}
	defer j.running.Store(false)

	return j.engine.Cleanup()
}

// Start begins the periodic cleanup
func (j *CleanupJob) Start(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Run()
		case <-stop:
			log.Println("Cleanup job stopped")
			return
		}
	}
}
