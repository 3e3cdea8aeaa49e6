package socket

import (
	"encoding/json"

	"github.com/avelis/huddle/internal/domain"
)

// Envelope is the wire shape of every frame, inbound and outbound:
// one JSON object per websocket text message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound events.
const (
	EvJoinProject    = "join:project"
	EvLeaveProject   = "leave:project"
	EvJoinWorkspace  = "join:workspace"
	EvLeaveWorkspace = "leave:workspace"
	EvTaskCreate     = "task:create"
	EvTaskUpdate     = "task:update"
	EvTaskDelete     = "task:delete"
	EvTaskMove       = "task:move"
	EvMessageSend    = "message:send"
	EvTypingStart    = "typing:start"
	EvTypingStop     = "typing:stop"
	EvPing           = "ping"
)

// Outbound events.
const (
	EvUserJoined     = "user:joined"
	EvUserLeft       = "user:left"
	EvRoomUsers      = "room:users"
	EvWorkspaceUsers = "workspace:users"
	EvTaskCreated    = "task:created"
	EvTaskUpdated    = "task:updated"
	EvTaskDeleted    = "task:deleted"
	EvTaskMoved      = "task:moved"
	EvMessageNew     = "message:new"
	EvTyping         = "typing"
	EvError          = "error"
	EvPong           = "pong"
)

// UserJoinedEvent is emitted to existing room members when someone joins.
type UserJoinedEvent struct {
	UserID domain.UserID     `json:"userId"`
	User   domain.OnlineUser `json:"user"`
}

// UserLeftEvent is emitted to remaining room members on leave or disconnect.
type UserLeftEvent struct {
	UserID domain.UserID `json:"userId"`
}

// RoomUsersEvent answers a joining client's "who else is here" query.
type RoomUsersEvent struct {
	Users []domain.OnlineUser `json:"users"`
}

// ErrorEvent carries the originating event name back to the caller.
type ErrorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type roomPayload struct {
	ProjectID   string `json:"projectId"`
	WorkspaceID string `json:"workspaceId"`
}

func (p roomPayload) id(kind domain.RoomKind) string {
	if kind == domain.KindWorkspace {
		return p.WorkspaceID
	}
	return p.ProjectID
}

type taskPayload struct {
	ProjectID  string          `json:"projectId"`
	Task       json.RawMessage `json:"task,omitempty"`
	TaskID     string          `json:"taskId,omitempty"`
	FromColumn string          `json:"fromColumn,omitempty"`
	ToColumn   string          `json:"toColumn,omitempty"`
}

// TaskEvent is the enriched broadcast: the inbound payload stamped with the
// acting user.
type TaskEvent struct {
	taskPayload
	Actor domain.OnlineUser `json:"actor"`
}

type messagePayload struct {
	ChannelID   string          `json:"channelId"`
	WorkspaceID string          `json:"workspaceId"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// MessageEvent is emitted to the workspace room when someone sends a chat
// message.
type MessageEvent struct {
	messagePayload
	Author domain.OnlineUser `json:"author"`
	SentAt int64             `json:"sentAt"`
}

// TypingEvent is emitted to the workspace room on typing start/stop.
type TypingEvent struct {
	ChannelID string        `json:"channelId"`
	UserID    domain.UserID `json:"userId"`
	Started   bool          `json:"started"`
}
