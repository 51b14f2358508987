//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"arena-ledger/domain"
	"arena-ledger/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	SinkFor(id domain.ParticipantID) (EventSink, bool)
	Subscribe(id domain.ParticipantID, sink EventSink)
	Unsubscribe(id domain.ParticipantID)
	UnsubscribeSink(id domain.ParticipantID, sink EventSink)
	Sessions() int
}

type IOrchestrator interface {
	Join(p domain.Participant) (domain.Balance, bool)
	Leave(id domain.ParticipantID) error
	RequestReward(id domain.ParticipantID, amount int64) (domain.Balance, error)
	GetBalance(id domain.ParticipantID) (domain.Balance, error)
	Dispatch(cmd domain.Command)
	Subscribe(id domain.ParticipantID, sink EventSink)
	Unsubscribe(id domain.ParticipantID)
	UnsubscribeSink(id domain.ParticipantID, sink EventSink)
	Start(ctx context.Context) error
	Stop()
}

// ILedgerService is the application facade the transport layer talks to.
type ILedgerService interface {
	Join(ctx context.Context, displayName string) (domain.Participant, domain.Balance, bool, error)
	Leave(ctx context.Context, id domain.ParticipantID) error
	RequestReward(ctx context.Context, id domain.ParticipantID, amount int64) (domain.Balance, error)
	GetBalance(ctx context.Context, id domain.ParticipantID) (domain.Balance, error)
	Subscribe(id domain.ParticipantID, sink EventSink)
	Unsubscribe(id domain.ParticipantID)
	UnsubscribeSink(id domain.ParticipantID, sink EventSink)
	AdjustBalance(cmd domain.AdjustBalanceCommand)
}

// ISessionService issues and validates the session handle a participant
// presents on every authenticated call.
type ISessionService interface {
	Issue(p domain.Participant) (string, error)
	Validate(token string) (domain.ParticipantID, error)
}
