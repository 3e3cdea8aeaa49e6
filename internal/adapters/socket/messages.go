package socket

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/domain"
)

// Chat channels scope to workspaces, so chat traffic fans out through the
// workspace room.

func (ctl *Controller) handleMessage(s *session, data []byte) {
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "socket").Msg("bad message payload")
		ctl.replyError(s, EvMessageSend, "malformed message payload")
		return
	}
	key, err := domain.NewRoomKeyLoose(domain.KindWorkspace, p.WorkspaceID)
	if err != nil {
		ctl.replyError(s, EvMessageSend, "missing workspaceId")
		return
	}

	ctl.emitRoom(key, s.ID, EvMessageNew, MessageEvent{
		messagePayload: p,
		Author:         s.User,
		SentAt:         time.Now().UnixMilli(),
	})
}

func (ctl *Controller) handleTyping(s *session, data []byte, started bool) {
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "socket").Msg("bad typing payload")
		return
	}
	key, err := domain.NewRoomKeyLoose(domain.KindWorkspace, p.WorkspaceID)
	if err != nil {
		return
	}

	ctl.emitRoom(key, s.ID, EvTyping, TypingEvent{
		ChannelID: p.ChannelID,
		UserID:    s.User.ID,
		Started:   started,
	})
}
