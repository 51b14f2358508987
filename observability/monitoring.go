// Package observability aggregates runtime counters for the debug surface.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"arena-ledger/domain"
	"arena-ledger/domain/event"
)

// MonitoringStats is the snapshot exposed to the debug endpoints.
type MonitoringStats struct {
	// --- LEDGER METRICS ---
	RewardsApplied      uint64 `json:"rewards_applied"`
	AdjustmentsApplied  uint64 `json:"adjustments_applied"`
	AdjustmentsRejected uint64 `json:"adjustments_rejected"`
	Joins               uint64 `json:"joins"`
	Rejoins             uint64 `json:"rejoins"`
	Leaves              uint64 `json:"leaves"`
	WorkerRestarts      uint64 `json:"worker_restarts"`

	// --- PROCESS METRICS ---
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float32 `json:"ram_percent"`

	// --- SYSTEM METRICS ---
	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`
}

// MonitoringManager counts what flows through the telemetry channel.
// It implements event.Handler and is registered on the telemetry worker.
type MonitoringManager struct {
	log *slog.Logger
	mu  sync.RWMutex

	rewardsApplied      uint64
	adjustmentsApplied  uint64
	adjustmentsRejected uint64
	joins               uint64
	rejoins             uint64
	leaves              uint64
	workerRestarts      uint64

	lastProcessStats event.ProcessStats
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) Handle(t event.Telemetry) {
	switch evt := t.(type) {
	case event.BalanceChanged:
		// Successful administrative adjustments carry their own reason
		// and must not inflate the reward counter.
		if evt.Reason == domain.RewardReason {
			atomic.AddUint64(&mm.rewardsApplied, 1)
		} else {
			atomic.AddUint64(&mm.adjustmentsApplied, 1)
		}
	case event.AdjustmentRejected:
		atomic.AddUint64(&mm.adjustmentsRejected, 1)
	case event.ParticipantJoined:
		atomic.AddUint64(&mm.joins, 1)
		if evt.Rejoined {
			atomic.AddUint64(&mm.rejoins, 1)
		}
	case event.ParticipantLeft:
		atomic.AddUint64(&mm.leaves, 1)
	case event.WorkerRestarted:
		atomic.AddUint64(&mm.workerRestarts, 1)
	case event.ProcessStats:
		mm.mu.Lock()
		mm.lastProcessStats = evt
		mm.mu.Unlock()
	default:
		mm.log.Debug("Unhandled telemetry", "at", t.OccurredAt().Format(time.RFC3339))
	}
}

// GetLatest assembles a consistent snapshot, merging the counters with
// the Go runtime's own memory statistics.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	proc := mm.lastProcessStats
	mm.mu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MonitoringStats{
		RewardsApplied:      atomic.LoadUint64(&mm.rewardsApplied),
		AdjustmentsApplied:  atomic.LoadUint64(&mm.adjustmentsApplied),
		AdjustmentsRejected: atomic.LoadUint64(&mm.adjustmentsRejected),
		Joins:               atomic.LoadUint64(&mm.joins),
		Rejoins:             atomic.LoadUint64(&mm.rejoins),
		Leaves:              atomic.LoadUint64(&mm.leaves),
		WorkerRestarts:      atomic.LoadUint64(&mm.workerRestarts),
		CPUPercent:          proc.CPUPercent,
		RAMPercent:          proc.RAMPercent,
		AllocMemMb:          m.Alloc / 1024 / 1024,
		NumGC:               m.NumGC,
	}
}
