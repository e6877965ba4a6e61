package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

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

// EventSink is one recipient's delivery channel. Consume must not block
// the caller beyond the context deadline: fan-out to a slow connection
// never stalls processing of other connections' events.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks live sessions and room membership. A room entry exists
// if and only if its member set is non-empty.
type IRegistry interface {
	Connect(connID string, sink EventSink)
	Disconnect(connID string)
	HasSession(connID string) bool
	Subscribe(connID string, roomID domain.RoomID, username string)
	Unsubscribe(connID string, roomID domain.RoomID)
	Members(roomID domain.RoomID) []domain.Member
	SinksFor(roomID domain.RoomID) []EventSink
}

type ICoordinator interface {
	Connect(connID string, sink EventSink)
	Dispatch(cmd domain.Command)
	Start(ctx context.Context) error
	Stop()
}
