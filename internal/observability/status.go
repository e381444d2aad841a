package observability

import (
	"sync"
	"time"
)

// Counter names tracked by the process status.
type Counter string

const (
	CounterGoalsCreated  Counter = "goals_created"
	CounterPlansAI       Counter = "plans_ai"
	CounterPlansFallback Counter = "plans_fallback"
	CounterStepToggles   Counter = "step_toggles"
	CounterGoalsDone     Counter = "goals_completed"
)

type SystemStatus struct {
	mu            sync.RWMutex
	Counters      map[Counter]int64
	LastHeartbeat time.Time
}

// Snapshot is a copy of the status safe to serialize.
type Snapshot struct {
	Uptime        string            `json:"uptime"`
	LastHeartbeat time.Time         `json:"last_heartbeat"`
	Counters      map[Counter]int64 `json:"counters"`
}

var globalStatus = &SystemStatus{
	Counters:      make(map[Counter]int64),
	LastHeartbeat: time.Now(),
}

// Incr bumps a process-wide counter.
func Incr(c Counter) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.Counters[c]++
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() Snapshot {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	counters := make(map[Counter]int64, len(globalStatus.Counters))
	for k, v := range globalStatus.Counters {
		counters[k] = v
	}
	return Snapshot{
		Uptime:        time.Since(startTime).Round(time.Second).String(),
		LastHeartbeat: globalStatus.LastHeartbeat,
		Counters:      counters,
	}
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
