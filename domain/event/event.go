// Package event defines the domain events flowing from the delivery
// engine to connected clients. Events are routed by room key; the
// fan-out layer resolves the room into the set of live connections.
package event

import (
	"personal-chat/domain"

	"github.com/google/uuid"
)

type DomainEvent interface {
	RoomKey() domain.RoomKey
}

// PresenceChanged carries a full snapshot of the presence registry.
// Snapshots replace each other entirely; there is no diffing.
type PresenceChanged struct {
	Entries []domain.PresenceEntry
}

func (PresenceChanged) RoomKey() domain.RoomKey {
	return domain.BroadcastRoom()
}

// MessageReceived carries a persisted message to the members of its
// pairwise room. The message always holds its store-assigned id.
type MessageReceived struct {
	Room    domain.RoomKey
	Message domain.Message
}

func (m MessageReceived) RoomKey() domain.RoomKey {
	return m.Room
}

// MessageDeleted notifies a room that a message was removed by its
// sender.
type MessageDeleted struct {
	Room      domain.RoomKey
	MessageID uuid.UUID
}

func (m MessageDeleted) RoomKey() domain.RoomKey {
	return m.Room
}
