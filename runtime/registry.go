package runtime

import (
	"sync"

	"personal-chat/contract"
	"personal-chat/domain"
)

type Set map[domain.ConnectionID]struct{}

// Registry tracks which live connections belong to which rooms and
// owns the connection -> sink directory. Membership is transient; a
// connection may sit in several rooms (the broadcast room plus any
// number of pairwise rooms) but its sink is managed in a single place.
type Registry struct {
	mu          sync.RWMutex
	sinks       map[domain.ConnectionID]contract.EventSink
	roomMembers map[domain.RoomKey]Set
	memberRooms map[domain.ConnectionID]map[domain.RoomKey]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sinks:       make(map[domain.ConnectionID]contract.EventSink),
		roomMembers: make(map[domain.RoomKey]Set),
		memberRooms: make(map[domain.ConnectionID]map[domain.RoomKey]struct{}),
	}
}

// SinksForRoom resolves a room into the sinks of its current members.
// It performs a two-step lookup: member ids via roomMembers, then the
// actual sinks via the connection directory. Returns nil when the room
// has no members.
func (r *Registry) SinksForRoom(roomKey domain.RoomKey) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomKey]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connID := range members {
		if sink, exists := r.sinks[connID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a connection's sink and adds it to a room,
// initializing the room set on the fly.
func (r *Registry) Subscribe(connID domain.ConnectionID, roomKey domain.RoomKey, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[connID] = sink

	if _, ok := r.roomMembers[roomKey]; !ok {
		r.roomMembers[roomKey] = make(Set)
	}
	r.roomMembers[roomKey][connID] = struct{}{}

	if _, ok := r.memberRooms[connID]; !ok {
		r.memberRooms[connID] = make(map[domain.RoomKey]struct{})
	}
	r.memberRooms[connID][roomKey] = struct{}{}
}

// Unsubscribe removes a connection from one room, leaving no empty
// sets behind.
func (r *Registry) Unsubscribe(connID domain.ConnectionID, roomKey domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveRoom(connID, roomKey)
}

// Drop removes a connection from every room and deletes its sink.
// Called on transport close, atomically with the connection's
// destruction, so no fan-out can reach a dead connection afterwards.
func (r *Registry) Drop(connID domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomKey := range r.memberRooms[connID] {
		r.leaveRoom(connID, roomKey)
	}
	delete(r.sinks, connID)
}

func (r *Registry) leaveRoom(connID domain.ConnectionID, roomKey domain.RoomKey) {
	if members, ok := r.roomMembers[roomKey]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.roomMembers, roomKey)
		}
	}
	if rooms, ok := r.memberRooms[connID]; ok {
		delete(rooms, roomKey)
		if len(rooms) == 0 {
			delete(r.memberRooms, connID)
		}
	}
}
