package socket

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/domain"
)

// Frame is an encoded outbound websocket message.
type Frame []byte

// sender is the outbound half of a connection. Session emits go through it
// so tests can substitute a fake.
type sender interface {
	TrySend(f Frame) error
}

// SessionID identifies one websocket connection. A user with two tabs open
// holds two sessions.
type SessionID string

type session struct {
	ID   SessionID
	User domain.OnlineUser
	conn sender
}

// Hub holds the broadcast groups: which sessions receive emits for which
// room. It tracks connections; the presence registry tracks users. Emits are
// non-blocking, a saturated session has the frame dropped.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomKey]map[SessionID]*session
	byRooms map[SessionID]map[domain.RoomKey]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[domain.RoomKey]map[SessionID]*session),
		byRooms: make(map[SessionID]map[domain.RoomKey]struct{}),
	}
}

// Join adds the session to the room's broadcast group.
func (h *Hub) Join(key domain.RoomKey, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.rooms[key]
	if !ok {
		group = make(map[SessionID]*session)
		h.rooms[key] = group
	}
	group[s.ID] = s
	rooms, ok := h.byRooms[s.ID]
	if !ok {
		rooms = make(map[domain.RoomKey]struct{})
		h.byRooms[s.ID] = rooms
	}
	rooms[key] = struct{}{}
}

// Leave removes the session from the room's broadcast group; a no-op when
// the session is not in it.
func (h *Hub) Leave(key domain.RoomKey, sid SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(key, sid)
}

func (h *Hub) leaveLocked(key domain.RoomKey, sid SessionID) {
	if group, ok := h.rooms[key]; ok {
		delete(group, sid)
		if len(group) == 0 {
			delete(h.rooms, key)
		}
	}
	if rooms, ok := h.byRooms[sid]; ok {
		delete(rooms, key)
		if len(rooms) == 0 {
			delete(h.byRooms, sid)
		}
	}
}

// Remove drops the session from every broadcast group on teardown.
func (h *Hub) Remove(sid SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.byRooms[sid] {
		h.leaveLocked(key, sid)
	}
	delete(h.byRooms, sid)
}

// Rooms returns the broadcast groups the session currently belongs to.
func (h *Hub) Rooms(sid SessionID) []domain.RoomKey {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.RoomKey, 0, len(h.byRooms[sid]))
	for key := range h.byRooms[sid] {
		out = append(out, key)
	}
	return out
}

// Emit delivers the frame to every group member except exclude. Returns how
// many sends succeeded and how many were dropped.
func (h *Hub) Emit(key domain.RoomKey, exclude SessionID, f Frame) (sent, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sid, s := range h.rooms[key] {
		if sid == exclude {
			continue
		}
		if err := s.conn.TrySend(f); err != nil {
			dropped++
			continue
		}
		sent++
	}
	if dropped > 0 {
		log.Warn().Str("module", "socket.hub").Str("room", string(key)).Int("dropped", dropped).Msg("slow consumers dropped frames")
	}
	return sent, dropped
}
