package observability

import (
	"log/slog"
	"testing"
	"time"

	"arena-ledger/domain"
	"arena-ledger/domain/event"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_CountsTelemetry(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	now := time.Now().UTC()

	mm.Handle(event.ParticipantJoined{PID: "alice-session", At: now})
	mm.Handle(event.ParticipantJoined{PID: "alice-session", Rejoined: true, At: now})
	mm.Handle(event.BalanceChanged{PID: "alice-session", Balance: 110, Reason: domain.RewardReason, At: now})
	mm.Handle(event.BalanceChanged{PID: "alice-session", Balance: 120, Reason: domain.RewardReason, At: now})
	// A successful correction changes the balance too, but is not a reward
	mm.Handle(event.BalanceChanged{PID: "alice-session", Balance: 90, Reason: "refund rollback", At: now})
	mm.Handle(event.AdjustmentRejected{PID: "alice-session", Delta: -500, At: now})
	mm.Handle(event.ParticipantLeft{PID: "alice-session", At: now})
	mm.Handle(event.WorkerRestarted{Name: "AdjusterWorker", At: now})
	mm.Handle(event.ProcessStats{PID: 42, CPUPercent: 12.5, RAMPercent: 3.5, Status: "S", At: now})

	stats := mm.GetLatest()
	req.Equal(uint64(2), stats.RewardsApplied)
	req.Equal(uint64(1), stats.AdjustmentsApplied)
	req.Equal(uint64(1), stats.AdjustmentsRejected)
	req.Equal(uint64(2), stats.Joins)
	req.Equal(uint64(1), stats.Rejoins)
	req.Equal(uint64(1), stats.Leaves)
	req.Equal(uint64(1), stats.WorkerRestarts)
	req.Equal(12.5, stats.CPUPercent)
	req.Equal(float32(3.5), stats.RAMPercent)
}
