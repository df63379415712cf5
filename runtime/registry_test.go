package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"personal-chat/domain"
	"personal-chat/domain/event"
)

type nopSink struct{ id int }

func (nopSink) Consume(context.Context, event.DomainEvent) error { return nil }

func TestRegistry_Subscribe_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := domain.ConnectionID(uuid.NewString())
	roomKey := domain.PairwiseRoom("alice", "bob")
	sink := nopSink{id: 1}

	// Given no connection is registered
	req.Nil(registry.SinksForRoom(roomKey))

	// When a connection subscribes to a room
	registry.Subscribe(connID, roomKey, sink)

	// Then it is the room's only member
	sinks := registry.SinksForRoom(roomKey)
	req.Len(sinks, 1)
	req.Contains(sinks, sink)
}

func TestRegistry_Subscribe_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomKey := domain.PairwiseRoom("alice", "bob")
	sink1 := nopSink{id: 1}
	sink2 := nopSink{id: 2}

	registry.Subscribe("conn-1", roomKey, sink1)
	registry.Subscribe("conn-2", roomKey, sink2)

	sinks := registry.SinksForRoom(roomKey)
	req.Len(sinks, 2)
	req.Contains(sinks, sink1)
	req.Contains(sinks, sink2)
}

func TestRegistry_Unsubscribe_Leaves_Other_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomKey := domain.PairwiseRoom("alice", "bob")
	sink1 := nopSink{id: 1}
	sink2 := nopSink{id: 2}
	registry.Subscribe("conn-1", roomKey, sink1)
	registry.Subscribe("conn-2", roomKey, sink2)

	// When one connection leaves the room
	registry.Unsubscribe("conn-1", roomKey)

	// Then only the other remains
	sinks := registry.SinksForRoom(roomKey)
	req.Len(sinks, 1)
	req.Contains(sinks, sink2)
}

func TestRegistry_Drop_Removes_From_All_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := nopSink{id: 1}
	broadcast := domain.BroadcastRoom()
	pairwise := domain.PairwiseRoom("alice", "bob")

	// Given a connection sitting in the broadcast room and a pairwise room
	registry.Subscribe("conn-1", broadcast, sink)
	registry.Subscribe("conn-1", pairwise, sink)

	// When the transport closes the connection
	registry.Drop("conn-1")

	// Then no fan-out can reach it anymore
	req.Nil(registry.SinksForRoom(broadcast))
	req.Nil(registry.SinksForRoom(pairwise))
}

func TestRegistry_Drop_Unknown_Connection_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Subscribe("conn-1", domain.BroadcastRoom(), nopSink{id: 1})

	registry.Drop("unknown")

	req.Len(registry.SinksForRoom(domain.BroadcastRoom()), 1)
}
