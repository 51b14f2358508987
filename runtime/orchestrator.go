// Package runtime wires the authoritative ledger to its delivery pipeline.
// It orchestrates workers, channels and subscriptions without containing
// business logic or domain rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"arena-ledger/contract"
	"arena-ledger/domain"
	"arena-ledger/domain/event"
	"arena-ledger/runtime/workers"

	"github.com/google/uuid"
)

type Orchestrator struct {
	mu              sync.Mutex
	log             *slog.Logger
	numWorkers      int
	ledger          *domain.Ledger
	permanentSinks  []contract.EventSink
	supervisor      contract.ISupervisor
	registry        contract.IRegistry
	commands        chan domain.Command
	domainEvents    chan event.DomainEvent
	telemetryEvents chan event.Telemetry
	handlers        []event.Handler
	sinkTimeout     time.Duration
	metricInterval  time.Duration
}

func NewOrchestrator(log *slog.Logger, ledger *domain.Ledger,
	supervisor *workers.Supervisor, registry *Registry,
	numWorkers, bufferSize int,
	sinkTimeout, metricInterval time.Duration) *Orchestrator {
	telemetryEvents := make(chan event.Telemetry, bufferSize)
	supervisor.NotifyRestarts(telemetryEvents)

	return &Orchestrator{
		log:             log,
		numWorkers:      numWorkers,
		ledger:          ledger,
		permanentSinks:  nil,
		supervisor:      supervisor,
		registry:        registry,
		commands:        make(chan domain.Command, bufferSize),
		domainEvents:    make(chan event.DomainEvent, bufferSize),
		telemetryEvents: telemetryEvents,
		sinkTimeout:     sinkTimeout,
		metricInterval:  metricInterval,
	}
}

// Add registers permanent sinks that receive every domain event.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Handle registers telemetry handlers (counters, log writers).
func (o *Orchestrator) Handle(handlers ...event.Handler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, handlers...)
}

// Join admits a participant into the ledger and announces it.
// The returned balance is authoritative: a new record starts at the
// configured value, a re-join resumes the retained one.
func (o *Orchestrator) Join(p domain.Participant) (domain.Balance, bool) {
	balance, created := o.ledger.Join(p)

	o.publish(event.ParticipantJoined{
		PID:         p.ID,
		DisplayName: p.DisplayName,
		Balance:     balance,
		Rejoined:    !created,
		At:          time.Now().UTC(),
	})
	return balance, created
}

// Leave marks the participant disconnected and drops their connection
// from the registry so the fanout stops targeting it.
func (o *Orchestrator) Leave(id domain.ParticipantID) error {
	if err := o.ledger.Leave(id); err != nil {
		return err
	}
	o.registry.Unsubscribe(id)

	// The leaver's own stream is already gone at this point: the Left
	// announcement is for the permanent sinks, not the departing display.
	o.publish(event.ParticipantLeft{PID: id, At: time.Now().UTC()})
	return nil
}

// RequestReward validates and applies a reward synchronously, so the
// caller gets the new authoritative balance in the reply. The matching
// BalanceChanged event feeds the journal and the participant's display.
func (o *Orchestrator) RequestReward(id domain.ParticipantID, amount int64) (domain.Balance, error) {
	balance, err := o.ledger.Credit(id, amount)
	if err != nil {
		return 0, err
	}

	name, _ := o.ledger.DisplayName(id)
	o.publish(event.BalanceChanged{
		ID:          uuid.New(),
		PID:         id,
		DisplayName: name,
		Delta:       amount,
		Balance:     balance,
		Reason:      domain.RewardReason,
		At:          time.Now().UTC(),
	})
	return balance, nil
}

func (o *Orchestrator) GetBalance(id domain.ParticipantID) (domain.Balance, error) {
	return o.ledger.Balance(id)
}

// Dispatch queues an administrative command for the adjuster pool.
// Best effort: a full channel drops the command rather than stalling
// the caller.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	select {
	case o.commands <- cmd:
	default:
		o.log.Warn(fmt.Sprintf("Command channel full, dropping command for %s", cmd.Participant()))
	}
}

func (o *Orchestrator) Subscribe(id domain.ParticipantID, sink contract.EventSink) {
	o.registry.Subscribe(id, sink)
}

func (o *Orchestrator) Unsubscribe(id domain.ParticipantID) {
	o.registry.Unsubscribe(id)
}

// UnsubscribeSink is the stream handlers' cleanup path: it only removes
// the given sink, never a replacement registered by a reconnect.
func (o *Orchestrator) UnsubscribeSink(id domain.ParticipantID, sink contract.EventSink) {
	o.registry.UnsubscribeSink(id, sink)
}

// publish pushes a domain event into the pipeline. The authoritative
// state already moved, so delivery is best effort; replication catches
// up on the next successful push.
func (o *Orchestrator) publish(evt event.DomainEvent) {
	select {
	case o.domainEvents <- evt:
	default:
		o.log.Warn("Domain event channel full, dropping event", "participant", evt.Participant())
	}
}

// Start prepares all workers and then runs the supervisor. It uses a
// preparation pattern to minimize mutex locking time, and blocks until
// the context is canceled and every worker has finished.
func (o *Orchestrator) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	poolWorkers := o.prepareAdjusterPool()

	// 2. Critical Section (Short Lock)
	o.mu.Lock()
	fanoutWorker := workers.NewEventFanout(
		o.log,
		o.permanentSinks,
		o.registry,
		o.domainEvents,
		o.telemetryEvents,
		o.sinkTimeout,
	)
	telemetryWorker := workers.NewTelemetryWorker(o.log, o.telemetryEvents, o.handlers)
	healthWorker := workers.NewHealthMonitoringWorker(o.log, o.telemetryEvents, o.metricInterval)

	o.supervisor.Add(fanoutWorker)
	o.supervisor.Add(telemetryWorker)
	o.supervisor.Add(healthWorker)
	for _, w := range poolWorkers {
		o.supervisor.Add(w)
	}
	o.mu.Unlock()

	// 3. Execution phase (No Lock)
	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// prepareAdjusterPool creates the worker pool draining administrative commands.
func (o *Orchestrator) prepareAdjusterPool() []contract.Worker {
	var res []contract.Worker
	for i := 0; i < o.numWorkers; i++ {
		res = append(res, workers.NewAdjusterWorker(o.ledger, o.commands, o.domainEvents, o.log))
	}
	return res
}

// Stop initiates a graceful shutdown of the orchestrator.
// It cancels the supervision context to signal workers to stop.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
