package socket

import (
	"testing"
)

func TestTaskEventsReEmitWithActor(t *testing.T) {
	ctl := testController()
	a, _ := testSession(1)
	b, connB := testSession(2)
	joinProject(t, ctl, a, projectID)
	joinProject(t, ctl, b, projectID)

	ctl.dispatch(a, frame(t, EvTaskCreate, map[string]any{
		"projectId": projectID,
		"task":      map[string]any{"title": "write tests", "column": "todo"},
	}))

	created := connB.events(t, EvTaskCreated)
	if len(created) != 1 {
		t.Fatalf("expected 1 task:created for peer, got %d", len(created))
	}
	ev := decodeData[TaskEvent](t, created[0])
	if ev.ProjectID != projectID {
		t.Fatalf("projectId not carried through: %+v", ev)
	}
	if ev.Actor.ID != a.User.ID {
		t.Fatalf("actor not stamped: %+v", ev.Actor)
	}
	if len(ev.Task) == 0 {
		t.Fatalf("task body not carried through")
	}
}

func TestTaskMoveCarriesColumns(t *testing.T) {
	ctl := testController()
	a, _ := testSession(1)
	b, connB := testSession(2)
	joinProject(t, ctl, a, projectID)
	joinProject(t, ctl, b, projectID)

	ctl.dispatch(a, frame(t, EvTaskMove, map[string]any{
		"projectId":  projectID,
		"taskId":     "507f1f77bcf86cd799439099",
		"fromColumn": "todo",
		"toColumn":   "doing",
	}))

	moved := connB.events(t, EvTaskMoved)
	if len(moved) != 1 {
		t.Fatalf("expected 1 task:moved, got %d", len(moved))
	}
	ev := decodeData[TaskEvent](t, moved[0])
	if ev.TaskID != "507f1f77bcf86cd799439099" || ev.FromColumn != "todo" || ev.ToColumn != "doing" {
		t.Fatalf("move fields not carried through: %+v", ev)
	}
}

func TestTaskWithoutProjectIDReportsError(t *testing.T) {
	ctl := testController()
	a, connA := testSession(1)
	b, connB := testSession(2)
	joinProject(t, ctl, a, projectID)
	joinProject(t, ctl, b, projectID)

	ctl.dispatch(a, frame(t, EvTaskUpdate, map[string]any{
		"task": map[string]any{"title": "orphan"},
	}))

	if errs := connA.events(t, EvError); len(errs) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(errs))
	}
	if got := connB.events(t, EvTaskUpdated); len(got) != 0 {
		t.Fatalf("emitted despite missing projectId")
	}
}

func TestTaskBroadcastSkipsSenderAndOtherRooms(t *testing.T) {
	ctl := testController()
	a, connA := testSession(1)
	b, connB := testSession(2)
	joinProject(t, ctl, a, projectID)
	joinProject(t, ctl, b, "507f1f77bcf86cd799439033")

	ctl.dispatch(a, frame(t, EvTaskDelete, map[string]any{
		"projectId": projectID,
		"taskId":    "507f1f77bcf86cd799439099",
	}))

	if got := connA.events(t, EvTaskDeleted); len(got) != 0 {
		t.Fatalf("sender received its own broadcast")
	}
	if got := connB.events(t, EvTaskDeleted); len(got) != 0 {
		t.Fatalf("other room received the broadcast")
	}
}

func TestMessageSendFansOutToWorkspace(t *testing.T) {
	ctl := testController()
	a, _ := testSession(1)
	b, connB := testSession(2)
	ctl.dispatch(a, frame(t, EvJoinWorkspace, map[string]any{"workspaceId": workspaceID}))
	ctl.dispatch(b, frame(t, EvJoinWorkspace, map[string]any{"workspaceId": workspaceID}))

	ctl.dispatch(a, frame(t, EvMessageSend, map[string]any{
		"channelId":   "507f1f77bcf86cd799439044",
		"workspaceId": workspaceID,
		"body":        map[string]any{"text": "hello"},
	}))

	msgs := connB.events(t, EvMessageNew)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message:new, got %d", len(msgs))
	}
	ev := decodeData[MessageEvent](t, msgs[0])
	if ev.Author.ID != a.User.ID {
		t.Fatalf("author not stamped: %+v", ev.Author)
	}
	if ev.ChannelID != "507f1f77bcf86cd799439044" || len(ev.Body) == 0 {
		t.Fatalf("payload not carried through: %+v", ev)
	}
	if ev.SentAt == 0 {
		t.Fatalf("sentAt not stamped")
	}
}

func TestTypingEvents(t *testing.T) {
	ctl := testController()
	a, _ := testSession(1)
	b, connB := testSession(2)
	ctl.dispatch(a, frame(t, EvJoinWorkspace, map[string]any{"workspaceId": workspaceID}))
	ctl.dispatch(b, frame(t, EvJoinWorkspace, map[string]any{"workspaceId": workspaceID}))

	ctl.dispatch(a, frame(t, EvTypingStart, map[string]any{"channelId": "c1", "workspaceId": workspaceID}))
	ctl.dispatch(a, frame(t, EvTypingStop, map[string]any{"channelId": "c1", "workspaceId": workspaceID}))

	typing := connB.events(t, EvTyping)
	if len(typing) != 2 {
		t.Fatalf("expected 2 typing events, got %d", len(typing))
	}
	start := decodeData[TypingEvent](t, typing[0])
	stop := decodeData[TypingEvent](t, typing[1])
	if !start.Started || stop.Started {
		t.Fatalf("started flags wrong: %+v %+v", start, stop)
	}
	if start.UserID != a.User.ID {
		t.Fatalf("typing user not stamped: %+v", start)
	}
}
