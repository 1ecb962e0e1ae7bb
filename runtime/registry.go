package runtime

import (
	"socket-deva/contract"
	"socket-deva/domain"
	"sync"

	"github.com/samber/lo"
)

var _ contract.IRegistry = (*Registry)(nil)

type Set map[string]struct{}

// Registry maps live connections to the room of their session.
// It never owns the connections: closing them is the transport's job.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.ConnectionSink // map connection -> Sink
	rooms       map[string]domain.RoomKey          // map connection -> room
	roomMembers map[domain.RoomKey]Set             // map room to connections
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.ConnectionSink),
		rooms:       make(map[string]domain.RoomKey),
		roomMembers: make(map[domain.RoomKey]Set),
	}
}

// Join registers a connection and puts it in the room of its session.
// Joining again re-affirms membership; a connection moving to another room
// leaves the previous one, a session belongs to exactly one room.
func (r *Registry) Join(session domain.Session, sink contract.ConnectionSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := session.ConnectionID
	if previous, ok := r.rooms[id]; ok && previous != session.Room {
		r.removeMember(previous, id)
	}
	r.sessions[id] = sink
	r.rooms[id] = session.Room

	if _, ok := r.roomMembers[session.Room]; !ok {
		r.roomMembers[session.Room] = make(Set)
	}
	r.roomMembers[session.Room][id] = struct{}{}
}

// Leave removes a connection from the registry and from its room.
// Unknown connections are ignored.
func (r *Registry) Leave(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, connectionID)
	if room, ok := r.rooms[connectionID]; ok {
		delete(r.rooms, connectionID)
		r.removeMember(room, connectionID)
	}
}

// removeMember drops empty rooms so the map does not grow with every client seen.
func (r *Registry) removeMember(room domain.RoomKey, connectionID string) {
	members, ok := r.roomMembers[room]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(r.roomMembers, room)
	}
}

// SinksForRoom returns the connections of a room, nil when the room is empty.
func (r *Registry) SinksForRoom(room domain.RoomKey) []contract.ConnectionSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	var sinks []contract.ConnectionSink
	for id := range members {
		if sink, exists := r.sessions[id]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

func (r *Registry) Sinks() []contract.ConnectionSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.sessions)
}

func (r *Registry) Sink(connectionID string) (contract.ConnectionSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[connectionID]
	return sink, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Rooms lists the room keys that currently have at least one member.
func (r *Registry) Rooms() []domain.RoomKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.roomMembers)
}
