package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"arena-ledger/domain/event"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker samples the server's own process on a fixed
// interval and publishes the measurements as telemetry.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	telemetryChan  chan event.Telemetry
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(
	log *slog.Logger,
	telemetryChan chan event.Telemetry,
	metricInterval time.Duration,
) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	pid := os.Getpid()
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		w.log.Error("Error while retrieving own process", "pid", pid, "err", err)
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			stats, err := w.sample(pid, p)
			if err != nil {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.telemetryChan <- stats:
			default:
				w.log.Debug("Observability telemetry health sample lost")
			}
		}
	}
}

func (w *HealthMonitoringWorker) sample(pid int, p *process.Process) (event.ProcessStats, error) {
	status, err := p.Status()
	if err != nil {
		w.log.Error("Error while finding process status", "err", err)
		return event.ProcessStats{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Error while finding process cpu usage", "err", err)
		return event.ProcessStats{}, err
	}
	ram, err := p.MemoryPercent()
	if err != nil {
		w.log.Error("Error while finding process ram usage", "err", err)
		return event.ProcessStats{}, err
	}

	return event.ProcessStats{
		PID:        pid,
		CPUPercent: cpu,
		RAMPercent: ram,
		Status:     status,
		At:         time.Now().UTC(),
	}, nil
}
