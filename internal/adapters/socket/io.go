package socket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/domain"
)

func (ctl *Controller) writePump(s *session, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "socket").Str("sid", string(s.ID)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "socket").Str("sid", string(s.ID)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(s *session, c *wsConn) {
	defer func() {
		ctl.handleDisconnect(s)
		c.Close()
		log.Info().Str("module", "socket").Str("sid", string(s.ID)).Msg("disconnected")
	}()

	// Standard gorilla pacing: the read deadline outlives one missed ping.
	pongWait := ctl.cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "socket").Str("sid", string(s.ID)).Msg("readPump read error")
			}
			return
		}
		ctl.dispatch(s, data)
	}
}

func (ctl *Controller) dispatch(s *session, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("sid", string(s.ID)).Msg("bad frame json")
		return
	}

	// A panicking handler must not take the connection down. Join-path
	// failures are reported to the caller; everything else is logged only.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "socket").Str("sid", string(s.ID)).Str("event", env.Event).Interface("panic", r).Msg("handler panic")
			switch env.Event {
			case EvJoinProject, EvJoinWorkspace:
				ctl.replyError(s, env.Event, "internal error")
			}
		}
	}()

	switch env.Event {
	case EvJoinProject:
		ctl.handleJoin(s, domain.KindProject, env.Data)
	case EvLeaveProject:
		ctl.handleLeave(s, domain.KindProject, env.Data)
	case EvJoinWorkspace:
		ctl.handleJoin(s, domain.KindWorkspace, env.Data)
	case EvLeaveWorkspace:
		ctl.handleLeave(s, domain.KindWorkspace, env.Data)
	case EvTaskCreate:
		ctl.handleTask(s, EvTaskCreate, EvTaskCreated, env.Data)
	case EvTaskUpdate:
		ctl.handleTask(s, EvTaskUpdate, EvTaskUpdated, env.Data)
	case EvTaskDelete:
		ctl.handleTask(s, EvTaskDelete, EvTaskDeleted, env.Data)
	case EvTaskMove:
		ctl.handleTask(s, EvTaskMove, EvTaskMoved, env.Data)
	case EvMessageSend:
		ctl.handleMessage(s, env.Data)
	case EvTypingStart:
		ctl.handleTyping(s, env.Data, true)
	case EvTypingStop:
		ctl.handleTyping(s, env.Data, false)
	case EvPing:
		ctl.send(s, EvPong, nil)
	default:
		log.Warn().Str("module", "socket").Str("event", env.Event).Msg("unknown event")
	}
}

func encode(event string, data any) (Frame, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// send delivers one event to the session itself, best-effort.
func (ctl *Controller) send(s *session, event string, data any) {
	f, err := encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "socket").Str("event", event).Msg("encode event")
		return
	}
	if err := s.conn.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("sid", string(s.ID)).Str("event", event).Msg("send dropped")
	}
}

// emitRoom broadcasts one event to the room's group, excluding the sender.
func (ctl *Controller) emitRoom(key domain.RoomKey, exclude SessionID, event string, data any) {
	f, err := encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "socket").Str("event", event).Msg("encode event")
		return
	}
	ctl.hub.Emit(key, exclude, f)
}

func (ctl *Controller) replyError(s *session, event, message string) {
	ctl.send(s, EvError, ErrorEvent{Event: event, Message: message})
}
