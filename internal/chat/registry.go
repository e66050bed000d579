package chat

import (
	"sync"

	"github.com/google/uuid"
)

// ConnID identifies a connection in the registry. IDs are generated, so no
// identity or membership is ever keyed on the connection object itself.
type ConnID string

// NewConnID returns a fresh connection identifier.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// PeerIdentity is the declared identity of a joined peer. Immutable once
// recorded; a second join on the same connection replaces it wholesale.
type PeerIdentity struct {
	Name string
	Lang string
}

// Registry tracks joined peers and their room membership. Identity and
// membership live in parallel lookup tables keyed by ConnID.
type Registry struct {
	mu    sync.RWMutex
	peers map[ConnID]PeerIdentity
	rooms map[string]map[ConnID]bool
	room  map[ConnID]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		peers: make(map[ConnID]PeerIdentity),
		rooms: make(map[string]map[ConnID]bool),
		room:  make(map[ConnID]string),
	}
}

// RegisterJoin records the identity for a connection and adds it to the room.
// A second join from the same connection overwrites the identity and returns
// the previous one.
func (r *Registry) RegisterJoin(id ConnID, roomCode, name, lang string) *PeerIdentity {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prev *PeerIdentity
	if p, ok := r.peers[id]; ok {
		prev = &p
		if old := r.room[id]; old != roomCode {
			r.removeFromRoom(id, old)
		}
	}

	r.peers[id] = PeerIdentity{Name: name, Lang: lang}
	r.room[id] = roomCode
	if r.rooms[roomCode] == nil {
		r.rooms[roomCode] = make(map[ConnID]bool)
	}
	r.rooms[roomCode][id] = true
	return prev
}

// Unregister removes a connection's identity and room membership. It returns
// the identity and room the connection had, or nil if it never joined.
func (r *Registry) Unregister(id ConnID) (*PeerIdentity, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.peers[id]
	if !ok {
		return nil, ""
	}
	roomCode := r.room[id]
	delete(r.peers, id)
	delete(r.room, id)
	r.removeFromRoom(id, roomCode)
	return &p, roomCode
}

// Identity returns the declared identity for a connection, if it has joined.
func (r *Registry) Identity(id ConnID) (PeerIdentity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[id]
	return p, ok
}

// RoomMembers returns a snapshot of the connection IDs in a room. Fan-out
// iterates the snapshot, so concurrent joins and leaves cannot corrupt it.
func (r *Registry) RoomMembers(roomCode string) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomCode]
	ids := make([]ConnID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// RoomSize returns the number of joined connections in a room.
func (r *Registry) RoomSize(roomCode string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomCode])
}

// Count returns the total number of joined connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// removeFromRoom must be called with r.mu held.
func (r *Registry) removeFromRoom(id ConnID, roomCode string) {
	if members := r.rooms[roomCode]; members != nil {
		delete(members, id)
		if len(members) == 0 {
			delete(r.rooms, roomCode)
		}
	}
}
