package socket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/avelis/huddle/internal/config"
	"github.com/avelis/huddle/internal/domain"
	"github.com/avelis/huddle/internal/presence"
)

// fakeConn records emitted frames; set full to simulate a saturated send
// queue.
type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

// events decodes every recorded frame and returns those matching the event
// name; an empty name matches all.
func (f *fakeConn) events(t *testing.T, name string) []Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Envelope
	for _, fr := range f.frames {
		var env Envelope
		if err := json.Unmarshal(fr, &env); err != nil {
			t.Fatalf("recorded frame is not an envelope: %v", err)
		}
		if name == "" || env.Event == name {
			out = append(out, env)
		}
	}
	return out
}

func testController() *Controller {
	cfg := &config.Config{
		SendBuffer:   32,
		ReadLimit:    32768,
		PingPeriod:   54 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewController(cfg, NewHub(), presence.NewRegistry(), NewJoinRateLimiter(100, time.Minute))
}

func testSession(id int) (*session, *fakeConn) {
	conn := &fakeConn{}
	uid := fmt.Sprintf("%024d", id)
	s := &session{
		ID:   SessionID(fmt.Sprintf("sid-%d", id)),
		User: domain.OnlineUser{ID: domain.UserID(uid), Name: fmt.Sprintf("user-%d", id), Email: fmt.Sprintf("u%d@example.com", id)},
		conn: conn,
	}
	return s, conn
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	b, err := encode(event, data)
	if err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	return b
}

func decodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode %s data: %v", env.Event, err)
	}
	return v
}
