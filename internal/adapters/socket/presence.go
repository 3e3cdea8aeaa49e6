package socket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/domain"
)

// handleJoin runs the strict join path for both room kinds: validate the id,
// join the broadcast group, record presence, announce to peers, and answer
// the caller with the current roster. The roster is taken after the local
// join, so it always includes the caller.
func (ctl *Controller) handleJoin(s *session, kind domain.RoomKind, data []byte) {
	event := "join:" + string(kind)

	if !ctl.limiter.Allow(s.User.ID) {
		log.Warn().Str("module", "socket").Str("sid", string(s.ID)).Str("user", string(s.User.ID)).Msg("join rate limited")
		ctl.replyError(s, event, "too many join attempts")
		return
	}

	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("event", event).Msg("bad join payload")
		ctl.replyError(s, event, domain.ErrMissingID.Error())
		return
	}
	key, err := domain.NewRoomKey(kind, p.id(kind))
	if err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("event", event).Msg("join rejected")
		ctl.replyError(s, event, err.Error())
		return
	}

	ctl.hub.Join(key, s)
	ctl.presence.Join(key, s.User)
	log.Info().Str("module", "socket").Str("sid", string(s.ID)).Str("room", string(key)).Msg("join")

	ctl.emitRoom(key, s.ID, EvUserJoined, UserJoinedEvent{UserID: s.User.ID, User: s.User})

	reply := EvRoomUsers
	if kind == domain.KindWorkspace {
		reply = EvWorkspaceUsers
	}
	ctl.send(s, reply, RoomUsersEvent{Users: ctl.presence.Members(key)})
}

// handleLeave is best-effort cleanup: the id is only checked for presence,
// not format, since any room the caller could have joined already passed the
// strict check. Failures are logged, never surfaced to the caller.
func (ctl *Controller) handleLeave(s *session, kind domain.RoomKind, data []byte) {
	event := "leave:" + string(kind)

	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("event", event).Msg("bad leave payload")
		return
	}
	key, err := domain.NewRoomKeyLoose(kind, p.id(kind))
	if err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("event", event).Msg("leave ignored")
		return
	}

	ctl.hub.Leave(key, s.ID)
	ctl.presence.Leave(key, s.User.ID)
	log.Info().Str("module", "socket").Str("sid", string(s.ID)).Str("room", string(key)).Msg("leave")

	ctl.emitRoom(key, s.ID, EvUserLeft, UserLeftEvent{UserID: s.User.ID})
}

// handleDisconnect fires once per connection teardown. Presence is per-user,
// so the user is removed from every room they were in, and each affected
// room's remaining members hear one user:left.
func (ctl *Controller) handleDisconnect(s *session) {
	for _, key := range ctl.presence.RemoveEverywhere(s.User.ID) {
		ctl.emitRoom(key, s.ID, EvUserLeft, UserLeftEvent{UserID: s.User.ID})
	}
	ctl.hub.Remove(s.ID)
}
