//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"personal-chat/domain"
	"personal-chat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
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

// EventSink is one live delivery target, usually a websocket
// connection. Consume must not block past the fan-out timeout.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks which connections are members of which rooms and
// resolves a room into its live sinks. Membership is transient and
// connection-scoped; it is never persisted.
type IRegistry interface {
	SinksForRoom(roomKey domain.RoomKey) []EventSink
	Subscribe(connID domain.ConnectionID, roomKey domain.RoomKey, sink EventSink)
	Unsubscribe(connID domain.ConnectionID, roomKey domain.RoomKey)
	Drop(connID domain.ConnectionID)
}

// IPresenceRegistry maps live connections to the identities they
// announced. Announce and Remove report whether the registry actually
// changed, so the caller broadcasts exactly one snapshot per effective
// mutation.
type IPresenceRegistry interface {
	Announce(connID domain.ConnectionID, identity domain.Identity, displayName string) bool
	Remove(connID domain.ConnectionID) bool
	Snapshot() []domain.PresenceEntry
}
