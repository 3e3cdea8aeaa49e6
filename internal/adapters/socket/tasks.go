package socket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/domain"
)

// handleTask is a stateless pass-through: the payload is re-emitted to the
// other members of the project room with the acting user attached. The
// durable record of the change is made by the CRUD path independently of
// this broadcast.
func (ctl *Controller) handleTask(s *session, inEvent, outEvent string, data []byte) {
	var p taskPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("event", inEvent).Msg("bad task payload")
		ctl.replyError(s, inEvent, "malformed task payload")
		return
	}
	key, err := domain.NewRoomKeyLoose(domain.KindProject, p.ProjectID)
	if err != nil {
		ctl.replyError(s, inEvent, "missing projectId")
		return
	}

	ctl.emitRoom(key, s.ID, outEvent, TaskEvent{taskPayload: p, Actor: s.User})
}
