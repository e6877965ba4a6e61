package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Memberships maps a connection ID to the display name it joined under.
type Memberships map[string]string

type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink // map connection -> Sink
	roomMembers map[domain.RoomID]Memberships // map room -> members
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]Memberships),
	}
}

// Connect registers the delivery channel of a freshly opened transport
// session. Membership is granted separately, on the first join.
func (r *Registry) Connect(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = sink
}

// Disconnect removes the session entry of a closed connection. Any room
// membership must already have been removed by the leave transition;
// a sink-less member would otherwise silently miss broadcasts.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, connID)
}

func (r *Registry) HasSession(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[connID]
	return ok
}

// Subscribe adds a connection to a room under the given display name.
// If the room does not yet exist in the registry, it is initialized on
// the fly. Re-subscribing the same connection only updates the name.
func (r *Registry) Subscribe(connID string, roomID domain.RoomID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Memberships)
	}
	r.roomMembers[roomID][connID] = username
}

// Unsubscribe removes a connection from a room. The empty-room check runs
// under the same lock as the removal, so no reader can ever observe a
// room with zero members. No-op if the room or the member is absent.
func (r *Registry) Unsubscribe(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, connID)

		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
}

// Members returns a consistent snapshot of a room's membership.
// Nil if the room doesn't exist.
func (r *Registry) Members(roomID domain.RoomID) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	r.assertNonEmpty(roomID, members)
	return lo.MapToSlice(members, func(connID, username string) domain.Member {
		return domain.Member{ConnectionID: connID, Username: username}
	})
}

// SinksFor retrieves all active delivery channels for a specific room.
// It performs a two-step lookup:
// 1. Identifies connection IDs associated with the room via roomMembers.
// 2. Resolves those IDs into actual EventSinks using the sessions map.
//
// A member whose session vanished between removal and lookup is simply
// skipped; broadcast is best-effort. Returns nil if the room doesn't
// exist or has no reachable members.
func (r *Registry) SinksFor(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	r.assertNonEmpty(roomID, members)
	var activeSinks []contract.EventSink
	for connID := range members {
		if sink, exists := r.sessions[connID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// assertNonEmpty enforces the registry's structural invariant: an empty
// room entry is unreachable by construction, so finding one is a bug,
// not a recoverable condition.
func (r *Registry) assertNonEmpty(roomID domain.RoomID, members Memberships) {
	if len(members) == 0 {
		panic(fmt.Sprintf("registry: room %q exists with zero members", roomID))
	}
}
