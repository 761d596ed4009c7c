package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/model"
)

type fakeAgent struct {
	healthErr error
	reply     api.AgentResponse
	sendErr   error
	block     chan struct{}
	entered   chan struct{}

	sends   atomic.Int32
	invokes atomic.Int32
}

func (f *fakeAgent) SendMessage(ctx context.Context, text string) (api.AgentResponse, error) {
	f.sends.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.reply, f.sendErr
}

func (f *fakeAgent) InvokeAction(ctx context.Context, name string) (api.AgentResponse, error) {
	f.invokes.Add(1)
	return f.reply, f.sendErr
}

func (f *fakeAgent) HealthCheck(ctx context.Context) (api.HealthStatus, error) {
	if f.healthErr != nil {
		return api.HealthStatus{}, f.healthErr
	}
	return api.HealthStatus{Status: "healthy"}, nil
}

type fakeCreator struct {
	mu     sync.Mutex
	drafts []model.TaskDraft
	err    error
}

func (f *fakeCreator) CreateTask(ctx context.Context, d model.TaskDraft) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, d)
	if f.err != nil {
		return model.Task{}, f.err
	}
	return model.Task{
		ID:       41 + len(f.drafts),
		Title:    d.Title,
		Priority: d.Priority,
		Status:   model.StatusPending,
		Category: d.Category,
		OwnerID:  d.OwnerID,
	}, nil
}

func (f *fakeCreator) calls() []model.TaskDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TaskDraft(nil), f.drafts...)
}

type fixedOwner int

func (o fixedOwner) OwnerID() (int, bool) { return int(o), o > 0 }

func newCore(t *testing.T, agent *fakeAgent, creator *fakeCreator, max int) *Core {
	t.Helper()
	n := 0
	c := New(Options{
		Agent:       agent,
		Tasks:       creator,
		Owner:       fixedOwner(7),
		MaxMessages: max,
		Now:         func() time.Time { return time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("m%d", n)
		},
	})
	c.Start(context.Background())
	return c
}

func previewReply() api.AgentResponse {
	due := "2025-06-01"
	cat := "errand"
	return api.AgentResponse{
		Type:    "message",
		Content: "Here is the task I would create.",
		Action:  "preview",
		Task:    &model.TaskDraft{Title: "Buy milk", Priority: model.PriorityHigh, DueDate: &due, Category: &cat},
	}
}

func TestThread_EvictsOldestBeyondCap(t *testing.T) {
	t.Parallel()

	th := NewThread(3)
	dropped := 0
	for i := 0; i < 5; i++ {
		dropped += th.Append(model.ChatMessage{ID: fmt.Sprint(i)})
	}
	if dropped != 2 {
		t.Fatalf("expected 2 evictions, got %d", dropped)
	}
	got := th.Messages()
	if len(got) != 3 || got[0].ID != "2" || got[2].ID != "4" {
		t.Fatalf("unexpected thread contents: %+v", got)
	}
}

func TestCore_ThreadNeverExceedsMax(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: api.AgentResponse{Type: "message", Content: "ok"}}
	c := newCore(t, agent, &fakeCreator{}, 4)
	for i := 0; i < 10; i++ {
		if _, err := c.Send(context.Background(), fmt.Sprintf("hello %d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if n := len(c.Messages()); n > 4 {
			t.Fatalf("thread grew to %d", n)
		}
	}
	msgs := c.Messages()
	if msgs[len(msgs)-2].Content != "hello 9" {
		t.Fatalf("expected newest user message retained, got %+v", msgs)
	}
}

func TestCore_StartWelcomeDependsOnHealth(t *testing.T) {
	t.Parallel()

	up := newCore(t, &fakeAgent{}, &fakeCreator{}, 0)
	if !up.AgentAvailable() || up.Messages()[0].Content != welcomeAvailable {
		t.Fatalf("expected available welcome, got %+v", up.Messages())
	}
	down := newCore(t, &fakeAgent{healthErr: errors.New("refused")}, &fakeCreator{}, 0)
	if down.AgentAvailable() || down.Messages()[0].Content != welcomeUnavailable {
		t.Fatalf("expected unavailable welcome, got %+v", down.Messages())
	}
}

func TestCore_StartKeepsMessagesSentBeforeHealthCheck(t *testing.T) {
	t.Parallel()

	c := New(Options{Agent: &fakeAgent{}, Tasks: &fakeCreator{}, Owner: fixedOwner(7)})
	if _, err := c.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	before := c.Messages()

	if !c.Start(context.Background()) {
		t.Fatalf("expected healthy agent")
	}
	after := c.Messages()
	if len(after) != len(before) || after[0].Content != "hello" {
		t.Fatalf("start dropped the earlier exchange: before=%+v after=%+v", before, after)
	}

	c.Reset()
	if len(c.Messages()) != 0 {
		t.Fatalf("expected empty thread after reset")
	}
	c.Start(context.Background())
	if msgs := c.Messages(); len(msgs) != 1 || msgs[0].Content != welcomeAvailable {
		t.Fatalf("expected welcome on a fresh thread, got %+v", msgs)
	}
}

func TestCore_UnavailableAgentUsesLocalFallback(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{healthErr: &api.Error{Kind: api.KindNetwork}}
	c := newCore(t, agent, &fakeCreator{}, 0)

	out, err := c.Send(context.Background(), "what is due?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !out.Fallback {
		t.Fatalf("expected fallback outcome")
	}
	if agent.sends.Load() != 0 {
		t.Fatalf("expected zero agent calls, got %d", agent.sends.Load())
	}
	msgs := c.Messages()
	if last := msgs[len(msgs)-1]; last.Sender != model.SenderAI || last.Content != fallbackText {
		t.Fatalf("unexpected fallback message: %+v", last)
	}
}

func TestCore_TaskCommandOpensFormWithoutNetwork(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"CREATE_TASK", "/task", "  /TASK "} {
		agent := &fakeAgent{}
		c := newCore(t, agent, &fakeCreator{}, 0)
		before := len(c.Messages())
		out, err := c.Send(context.Background(), text)
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		if !out.OpenForm || !c.FormOpen() {
			t.Fatalf("%q: expected form to open", text)
		}
		if agent.sends.Load() != 0 || len(c.Messages()) != before {
			t.Fatalf("%q: expected no messages and no agent calls", text)
		}
	}
}

func TestCore_BlankInputIsIgnored(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{}
	c := newCore(t, agent, &fakeCreator{}, 0)
	if _, err := c.Send(context.Background(), "   "); err != nil {
		t.Fatalf("send: %v", err)
	}
	if agent.sends.Load() != 0 || len(c.Messages()) != 1 {
		t.Fatalf("blank input should be a no-op")
	}
}

func TestCore_ConfirmPreviewCreatesExactlyOnce(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: previewReply()}
	creator := &fakeCreator{}
	c := newCore(t, agent, creator, 0)

	out, err := c.Send(context.Background(), "add a task to buy milk")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !out.PreviewStaged {
		t.Fatalf("expected preview to be staged")
	}
	if len(creator.calls()) != 0 {
		t.Fatalf("preview must not create anything")
	}
	msgs := c.Messages()
	notice := msgs[len(msgs)-1]
	if notice.Kind != model.MessageInfo || notice.Priority == nil || *notice.Priority != model.PriorityHigh {
		t.Fatalf("expected annotated preview notice, got %+v", notice)
	}
	if notice.DueDate == nil || *notice.DueDate != "2025-06-01" || notice.Category == nil || *notice.Category != "errand" {
		t.Fatalf("expected due date and category annotations, got %+v", notice)
	}

	task, err := c.ConfirmPreview(context.Background())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	calls := creator.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one create call, got %d", len(calls))
	}
	d := calls[0]
	if d.Title != "Buy milk" || d.Priority != model.PriorityHigh || *d.DueDate != "2025-06-01" || *d.Category != "errand" || d.OwnerID != 7 {
		t.Fatalf("unexpected draft sent: %+v", d)
	}

	confirmations := 0
	for _, m := range c.Messages() {
		if m.Kind == model.MessageConfirmation {
			confirmations++
			if !strings.Contains(m.Content, fmt.Sprintf("Task ID: %d", task.ID)) {
				t.Fatalf("confirmation missing id: %q", m.Content)
			}
		}
	}
	if confirmations != 1 {
		t.Fatalf("expected one confirmation message, got %d", confirmations)
	}
	if _, ok := c.Preview(); ok {
		t.Fatalf("preview slot should be empty after confirm")
	}
	if _, err := c.ConfirmPreview(context.Background()); !errors.Is(err, ErrNoPreview) {
		t.Fatalf("expected ErrNoPreview on second confirm, got %v", err)
	}
	if len(creator.calls()) != 1 {
		t.Fatalf("second confirm must not create")
	}
}

func TestCore_NewPreviewReplacesPrevious(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: previewReply()}
	c := newCore(t, agent, &fakeCreator{}, 0)
	if _, err := c.Send(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	agent.reply.Task = &model.TaskDraft{Title: "Walk dog", Priority: "urgent"}
	if _, err := c.Send(context.Background(), "second"); err != nil {
		t.Fatal(err)
	}
	p, ok := c.Preview()
	if !ok || p.Draft.Title != "Walk dog" {
		t.Fatalf("expected latest preview, got %+v", p)
	}
	if p.Draft.Priority != "" {
		t.Fatalf("unknown priority should be dropped, got %q", p.Draft.Priority)
	}
}

func TestCore_EmbeddedPreviewInContent(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: api.AgentResponse{
		Type:    "message",
		Content: `{"type":"message","content":"Sounds good","action":"preview","task":{"title":"Call mom","priority":"low"}}`,
	}}
	c := newCore(t, agent, &fakeCreator{}, 0)
	out, err := c.Send(context.Background(), "remind me")
	if err != nil {
		t.Fatal(err)
	}
	p, ok := c.Preview()
	if !out.PreviewStaged || !ok || p.Draft.Title != "Call mom" || p.Draft.Priority != model.PriorityLow {
		t.Fatalf("expected embedded preview, got %+v", p)
	}
}

func TestCore_CancelPreview(t *testing.T) {
	t.Parallel()

	creator := &fakeCreator{}
	c := newCore(t, &fakeAgent{reply: previewReply()}, creator, 0)
	if _, err := c.Send(context.Background(), "buy milk"); err != nil {
		t.Fatal(err)
	}
	if err := c.CancelPreview(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := c.Preview(); ok {
		t.Fatalf("preview should be cleared")
	}
	if len(creator.calls()) != 0 {
		t.Fatalf("cancel must not create")
	}
	if err := c.CancelPreview(); !errors.Is(err, ErrNoPreview) {
		t.Fatalf("expected ErrNoPreview, got %v", err)
	}
}

func TestCore_ConfirmFailureClearsSlotAndRaisesNotice(t *testing.T) {
	t.Parallel()

	creator := &fakeCreator{err: &api.Error{Kind: api.KindHTTP, Status: 500, Detail: "boom"}}
	c := newCore(t, &fakeAgent{reply: previewReply()}, creator, 0)
	if _, err := c.Send(context.Background(), "buy milk"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ConfirmPreview(context.Background()); !api.IsKind(err, api.KindHTTP) {
		t.Fatalf("expected http error, got %v", err)
	}
	if _, ok := c.Preview(); ok {
		t.Fatalf("slot should be cleared after failure")
	}
	n, ok := c.Notice()
	if !ok || n.RetryLabel != "Try Different Action" || n.Message != "boom" {
		t.Fatalf("unexpected notice: %+v", n)
	}
	c.Retry()
	if _, ok := c.Notice(); ok {
		t.Fatalf("retry should clear the notice")
	}
}

func TestCore_ConcurrentSendIsRejected(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{
		reply:   api.AgentResponse{Type: "message", Content: "done"},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := newCore(t, agent, &fakeCreator{}, 0)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "list my tasks")
		errc <- err
	}()
	<-agent.entered

	if !c.Busy(ActionSend) || c.Phase() != PhaseExecutingTask {
		t.Fatalf("expected send in flight, phase %s", c.Phase())
	}
	if _, err := c.Send(context.Background(), "again"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(agent.block)
	if err := <-errc; err != nil {
		t.Fatalf("first send: %v", err)
	}
	if agent.sends.Load() != 1 {
		t.Fatalf("expected one agent call, got %d", agent.sends.Load())
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("expected idle after completion, got %s", c.Phase())
	}
}

func TestCore_SubmitTaskForm(t *testing.T) {
	t.Parallel()

	creator := &fakeCreator{}
	c := newCore(t, &fakeAgent{}, creator, 0)
	c.Send(context.Background(), "/task")

	if _, err := c.SubmitTaskForm(context.Background(), model.TaskDraft{Title: "   "}); !api.IsKind(err, api.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(creator.calls()) != 0 {
		t.Fatalf("blank title must not reach the backend")
	}

	cat := "home"
	task, err := c.SubmitTaskForm(context.Background(), model.TaskDraft{Title: "Fix sink", Priority: model.PriorityLow, Category: &cat})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if task.OwnerID != 7 || c.FormOpen() {
		t.Fatalf("expected owner attribution and closed form, got %+v", task)
	}
	msgs := c.Messages()
	user := msgs[len(msgs)-2]
	want := "Creating task: Fix sink\nDescription: None\nPriority: low\nDue: None\nCategory: home"
	if user.Sender != model.SenderUser || user.Content != want {
		t.Fatalf("unexpected summary message: %q", user.Content)
	}
	if msgs[len(msgs)-1].Kind != model.MessageConfirmation {
		t.Fatalf("expected confirmation, got %+v", msgs[len(msgs)-1])
	}
}

func TestCore_ConfirmWithoutSessionFailsWithoutNetwork(t *testing.T) {
	t.Parallel()

	creator := &fakeCreator{}
	c := New(Options{Agent: &fakeAgent{reply: previewReply()}, Tasks: creator, Owner: fixedOwner(0)})
	c.Start(context.Background())
	if _, err := c.Send(context.Background(), "buy milk"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ConfirmPreview(context.Background()); !api.IsKind(err, api.KindAuthRequired) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if len(creator.calls()) != 0 {
		t.Fatalf("expected no create call")
	}
}

func TestCore_AgentErrorReplySetsNotice(t *testing.T) {
	t.Parallel()

	c := newCore(t, &fakeAgent{reply: api.AgentResponse{Type: "error", Content: "tool failed"}}, &fakeCreator{}, 0)
	if _, err := c.Send(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	msgs := c.Messages()
	if msgs[len(msgs)-1].Kind != model.MessageError {
		t.Fatalf("expected error message, got %+v", msgs[len(msgs)-1])
	}
	if n, ok := c.Notice(); !ok || n.Message != "tool failed" {
		t.Fatalf("unexpected notice: %+v", n)
	}
}

func TestNewNotice_GuidancePerKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		err   error
		label string
	}{
		{"network", &api.Error{Kind: api.KindNetwork}, "Retry Connection"},
		{"timeout", &api.Error{Kind: api.KindTimeout}, "Retry Request"},
		{"no token", &api.Error{Kind: api.KindAuthRequired}, "Refresh Session"},
		{"rejected token", &api.Error{Kind: api.KindUnauthorized, Status: 401}, "Refresh Session"},
		{"rate limit", &api.Error{Kind: api.KindHTTP, Status: 429}, "Wait & Retry"},
		{"server", &api.Error{Kind: api.KindHTTP, Status: 502}, "Try Different Action"},
		{"bad request", &api.Error{Kind: api.KindHTTP, Status: 400}, "Try Again"},
		{"validation", api.ValidationError("title is required"), "Edit & Retry"},
		{"plain", errors.New("x"), "Try Again"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			n := NewNotice(tc.err)
			if n.RetryLabel != tc.label || n.Guidance == "" {
				t.Fatalf("got %+v, want label %q", n, tc.label)
			}
		})
	}
}

func TestPhase_String(t *testing.T) {
	t.Parallel()

	if PhaseExecutingTask.String() != "executing-task-operation" || PhaseIdle.String() != "idle" {
		t.Fatalf("unexpected phase names")
	}
}
