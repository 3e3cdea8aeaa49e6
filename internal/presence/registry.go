// Package presence owns the in-memory registry of which users are online in
// which rooms. The registry is exclusively owned by the socket handlers; no
// other component reads or writes it.
package presence

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/domain"
)

// Registry maps a room to its current members, keyed by user id, so a user
// counts at most once per room regardless of how many connections they hold.
// Handlers for different connections run on different goroutines, so every
// operation takes the mutex.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]map[domain.UserID]domain.OnlineUser
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomKey]map[domain.UserID]domain.OnlineUser),
	}
}

// Join records user as a member of room, creating the room lazily.
// Rejoining overwrites the prior identity snapshot.
func (r *Registry) Join(room domain.RoomKey, user domain.OnlineUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[domain.UserID]domain.OnlineUser)
		r.rooms[room] = members
	}
	members[user.ID] = user
	log.Debug().Str("module", "presence").Str("room", string(room)).Str("user", string(user.ID)).Msg("joined")
}

// Leave removes the user from the room; a no-op when absent. The room's map
// is dropped once its last member leaves.
func (r *Registry) Leave(room domain.RoomKey, userID domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	log.Debug().Str("module", "presence").Str("room", string(room)).Str("user", string(userID)).Msg("left")
}

// Members returns an unordered snapshot of the room's current members.
func (r *Registry) Members(room domain.RoomKey) []domain.OnlineUser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]domain.OnlineUser, 0, len(members))
	for _, u := range members {
		out = append(out, u)
	}
	return out
}

// RemoveEverywhere removes the user from every room they are in and returns
// the affected rooms, for broadcasting departures on disconnect.
func (r *Registry) RemoveEverywhere(userID domain.UserID) []domain.RoomKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected []domain.RoomKey
	for room, members := range r.rooms {
		if _, ok := members[userID]; !ok {
			continue
		}
		delete(members, userID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
		affected = append(affected, room)
	}
	if len(affected) > 0 {
		log.Debug().Str("module", "presence").Str("user", string(userID)).Int("rooms", len(affected)).Msg("removed everywhere")
	}
	return affected
}

// RoomCount reports how many rooms currently have at least one member.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// MemberCount reports the number of users present in a room.
func (r *Registry) MemberCount(room domain.RoomKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
