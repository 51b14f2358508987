package event

import "time"

// Handler reacts to telemetry pulled off the telemetry channel.
type Handler interface {
	Handle(t Telemetry)
}

// ProcessStats is a self-measurement of the server process.
type ProcessStats struct {
	PID        int
	CPUPercent float64
	RAMPercent float32
	Status     string
	At         time.Time
}

func (e ProcessStats) OccurredAt() time.Time { return e.At }

// WorkerRestarted is emitted by the supervisor after recovering a panic.
type WorkerRestarted struct {
	Name string
	At   time.Time
}

func (e WorkerRestarted) OccurredAt() time.Time { return e.At }
