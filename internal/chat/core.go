package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskdeck/internal/api"
	"taskdeck/internal/collections"
	"taskdeck/internal/logging"
	"taskdeck/internal/model"
)

// Sentinels that open the task form instead of going to the agent.
const (
	CreateTaskCommand = "CREATE_TASK"
	TaskSlashCommand  = "/task"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseContactingAgent
	PhaseExecutingTask
	PhaseContactingBackend
)

func (p Phase) String() string {
	switch p {
	case PhaseContactingAgent:
		return "contacting-agent"
	case PhaseExecutingTask:
		return "executing-task-operation"
	case PhaseContactingBackend:
		return "contacting-backend"
	default:
		return "idle"
	}
}

// Action identifies a logical operation guarded by its own in-flight gate.
type Action string

const (
	ActionSend    Action = "send"
	ActionConfirm Action = "confirm"
	ActionForm    Action = "form"
)

var (
	ErrBusy      = errors.New("chat: action already in progress")
	ErrNoPreview = errors.New("chat: no task preview staged")
)

// TaskCreator persists confirmed tasks.
type TaskCreator interface {
	CreateTask(ctx context.Context, draft model.TaskDraft) (model.Task, error)
}

// Owner reports the signed-in user's id.
type Owner interface {
	OwnerID() (int, bool)
}

type Options struct {
	Agent       Agent
	Tasks       TaskCreator
	Owner       Owner
	MaxMessages int
	Logger      *zap.Logger
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// QuickReply is a canned prompt offered under the input.
type QuickReply struct {
	ID     string
	Label  string
	Prompt string
}

var QuickReplies = []QuickReply{
	{ID: "create-task", Label: "Create task", Prompt: CreateTaskCommand},
	{ID: "check-tasks", Label: "Check tasks", Prompt: "What tasks do I have pending?"},
	{ID: "mark-complete", Label: "Mark task complete", Prompt: "I want to mark a task as complete"},
}

// Outcome describes what Send did beyond appending messages.
type Outcome struct {
	OpenForm      bool
	PreviewStaged bool
	Fallback      bool
}

// Core is the chat state: thread, preview slot, error notice and busy gates. All methods are
// safe for concurrent use; network calls run without holding the lock.
type Core struct {
	agent  Agent
	tasks  TaskCreator
	owner  Owner
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
	remote Responder
	local  Responder

	mu        sync.Mutex
	thread    *Thread
	available bool
	preview   *model.TaskPreview
	notice    *Notice
	formOpen  bool
	inflight  map[Action]Phase
}

func New(opts Options) *Core {
	c := &Core{
		agent:    opts.Agent,
		tasks:    opts.Tasks,
		owner:    opts.Owner,
		log:      opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
		thread:   NewThread(opts.MaxMessages),
		inflight: map[Action]Phase{},
		local:    fallbackResponder{},
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.agent != nil {
		c.remote = agentResponder{agent: c.agent}
	}
	return c
}

// Start checks agent health and seeds an empty thread with the matching welcome message.
// A thread that already has messages is left alone.
func (c *Core) Start(ctx context.Context) bool {
	ok := c.CheckHealth(ctx)
	welcome := welcomeUnavailable
	if ok {
		welcome = welcomeAvailable
	}
	c.mu.Lock()
	if c.thread.Len() == 0 {
		c.appendLocked(model.SenderAI, welcome, model.MessageInfo)
	}
	c.mu.Unlock()
	return ok
}

// Reset drops the thread, the staged preview and the notice, e.g. when the user signs out.
func (c *Core) Reset() {
	c.mu.Lock()
	c.thread.Reset()
	c.preview = nil
	c.notice = nil
	c.formOpen = false
	c.mu.Unlock()
}

// CheckHealth refreshes the availability flag that selects the responder.
func (c *Core) CheckHealth(ctx context.Context) bool {
	ok := false
	if c.agent != nil {
		_, err := c.agent.HealthCheck(ctx)
		ok = err == nil
		if err != nil {
			c.log.Info("agent unavailable", zap.String("kind", string(api.KindOf(err))), zap.String("error", logging.SanitizeError(err)))
		}
	}
	c.mu.Lock()
	c.available = ok
	c.mu.Unlock()
	return ok
}

func (c *Core) AgentAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

func (c *Core) responder() Responder {
	if c.available && c.remote != nil {
		return c.remote
	}
	return c.local
}

// IsTaskCommand reports whether text is one of the form-opening sentinels.
func IsTaskCommand(text string) bool {
	text = strings.TrimSpace(text)
	return text == CreateTaskCommand || strings.EqualFold(text, TaskSlashCommand)
}

// Send routes one user message: sentinel commands open the form, an unavailable agent gets a
// local reply, otherwise the agent answers and may stage a task preview.
func (c *Core) Send(ctx context.Context, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, nil
	}
	if IsTaskCommand(text) {
		c.mu.Lock()
		c.formOpen = true
		c.mu.Unlock()
		return Outcome{OpenForm: true}, nil
	}

	phase := PhaseContactingAgent
	if strings.Contains(strings.ToLower(text), "task") {
		phase = PhaseExecutingTask
	}
	if err := c.acquire(ActionSend, phase); err != nil {
		return Outcome{}, err
	}
	defer c.release(ActionSend)

	c.mu.Lock()
	c.appendLocked(model.SenderUser, text, model.MessageText)
	r := c.responder()
	fallback := !c.available
	c.mu.Unlock()

	rep, err := r.Respond(ctx, text)
	return c.deliver(rep, err, fallback)
}

// InvokeAction sends a named action event to the agent and appends its reply.
func (c *Core) InvokeAction(ctx context.Context, name string) (Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{}, api.ValidationError("action name is required")
	}
	if err := c.acquire(ActionSend, PhaseContactingAgent); err != nil {
		return Outcome{}, err
	}
	defer c.release(ActionSend)

	c.mu.Lock()
	r := c.responder()
	fallback := !c.available
	c.mu.Unlock()

	rep, err := r.Invoke(ctx, name)
	return c.deliver(rep, err, fallback)
}

func (c *Core) deliver(rep Reply, err error, fallback bool) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		n := NewNotice(err)
		c.appendLocked(model.SenderAI, n.Message, model.MessageError)
		c.notice = &n
		c.log.Warn("agent request failed", zap.String("kind", string(n.Kind)))
		return Outcome{}, err
	}

	out := Outcome{Fallback: fallback}
	if rep.Preview != nil {
		c.preview = &model.TaskPreview{Draft: *rep.Preview, ProposedAt: c.now()}
		c.appendPreviewLocked(rep.Text, *rep.Preview)
		out.PreviewStaged = true
		return out, nil
	}
	c.appendLocked(model.SenderAI, rep.Text, rep.Kind)
	if rep.Kind == model.MessageError {
		n := agentNotice(rep.Text)
		c.notice = &n
	}
	return out, nil
}

func (c *Core) appendPreviewLocked(text string, d model.TaskDraft) {
	var b strings.Builder
	if t := strings.TrimSpace(text); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Task preview: %s", d.Title)
	if d.Description != "" {
		fmt.Fprintf(&b, "\nDescription: %s", d.Description)
	}
	b.WriteString("\nConfirm to create this task, or cancel to discard it.")

	m := c.message(model.SenderAI, b.String(), model.MessageInfo)
	if d.Priority != "" {
		p := d.Priority
		m.Priority = &p
	}
	m.Category = d.Category
	m.DueDate = d.DueDate
	c.thread.Append(m)
}

// ConfirmPreview creates the staged task. The slot is cleared whether or not creation succeeds.
func (c *Core) ConfirmPreview(ctx context.Context) (model.Task, error) {
	if err := c.acquire(ActionConfirm, PhaseExecutingTask); err != nil {
		return model.Task{}, err
	}
	defer c.release(ActionConfirm)

	c.mu.Lock()
	if c.preview == nil {
		c.mu.Unlock()
		return model.Task{}, ErrNoPreview
	}
	draft := c.preview.Draft
	c.preview = nil
	c.mu.Unlock()

	return c.create(ctx, draft)
}

// CancelPreview discards the staged task.
func (c *Core) CancelPreview() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview == nil {
		return ErrNoPreview
	}
	title := c.preview.Draft.Title
	c.preview = nil
	c.appendLocked(model.SenderAI, fmt.Sprintf("Task creation cancelled: %s", title), model.MessageInfo)
	return nil
}

// SubmitTaskForm creates a task directly through the backend, bypassing the agent.
func (c *Core) SubmitTaskForm(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if err := collections.ValidateTaskDraft(draft); err != nil {
		return model.Task{}, err
	}
	if err := c.acquire(ActionForm, PhaseContactingBackend); err != nil {
		return model.Task{}, err
	}
	defer c.release(ActionForm)

	c.mu.Lock()
	c.appendLocked(model.SenderUser, formSummary(draft), model.MessageText)
	c.formOpen = false
	c.mu.Unlock()

	return c.create(ctx, draft)
}

func formSummary(d model.TaskDraft) string {
	orNone := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "None"
		}
		return s
	}
	priority := d.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	return fmt.Sprintf("Creating task: %s\nDescription: %s\nPriority: %s\nDue: %s\nCategory: %s",
		d.Title, orNone(d.Description), priority, orNone(deref(d.DueDate)), orNone(deref(d.Category)))
}

// create validates, attributes the draft to the session user and issues one CreateTask.
func (c *Core) create(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	fail := func(err error) (model.Task, error) {
		n := NewNotice(err)
		c.mu.Lock()
		c.appendLocked(model.SenderAI, n.Message, model.MessageError)
		c.notice = &n
		c.mu.Unlock()
		return model.Task{}, err
	}

	if err := collections.ValidateTaskDraft(draft); err != nil {
		return fail(err)
	}
	if c.tasks == nil {
		return fail(&api.Error{Kind: api.KindNetwork, Detail: "task service is not configured"})
	}
	if c.owner != nil {
		id, ok := c.owner.OwnerID()
		if !ok {
			return fail(&api.Error{Kind: api.KindAuthRequired, Detail: "Please login first"})
		}
		draft.OwnerID = id
	}

	task, err := c.tasks.CreateTask(ctx, draft)
	if err != nil {
		c.log.Warn("create task failed", zap.String("kind", string(api.KindOf(err))), zap.String("error", logging.SanitizeError(err)))
		return fail(err)
	}

	c.mu.Lock()
	m := c.message(model.SenderAI, confirmationText(task), model.MessageConfirmation)
	p := task.Priority
	m.Priority = &p
	m.Category = task.Category
	if d := task.DueDay(); d != "" {
		m.DueDate = &d
	}
	c.thread.Append(m)
	c.mu.Unlock()
	c.log.Info("task created from chat", zap.Int("task_id", task.ID))
	return task, nil
}

func confirmationText(t model.Task) string {
	return fmt.Sprintf("Task created successfully!\nTitle: %s\nPriority: %s\nStatus: %s\nTask ID: %d",
		t.Title, t.Priority, t.Status, t.ID)
}

func (c *Core) acquire(a Action, p Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[a]; busy {
		return ErrBusy
	}
	c.inflight[a] = p
	return nil
}

func (c *Core) release(a Action) {
	c.mu.Lock()
	delete(c.inflight, a)
	c.mu.Unlock()
}

func (c *Core) message(sender model.Sender, text string, kind model.MessageKind) model.ChatMessage {
	return model.ChatMessage{ID: c.newID(), Content: text, Sender: sender, Timestamp: c.now(), Kind: kind}
}

func (c *Core) appendLocked(sender model.Sender, text string, kind model.MessageKind) {
	c.thread.Append(c.message(sender, text, kind))
}

// Messages returns a snapshot of the thread, oldest first.
func (c *Core) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thread.Messages()
}

func (c *Core) Preview() (model.TaskPreview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview == nil {
		return model.TaskPreview{}, false
	}
	return *c.preview, true
}

func (c *Core) Notice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

// Retry clears the error notice. It does not replay the failed action.
func (c *Core) Retry() {
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
}

// Phase reports the most significant in-flight phase.
func (c *Core) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range []Action{ActionConfirm, ActionForm, ActionSend} {
		if p, ok := c.inflight[a]; ok {
			return p
		}
	}
	return PhaseIdle
}

func (c *Core) Busy(a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[a]
	return ok
}

func (c *Core) FormOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formOpen
}

func (c *Core) CloseForm() {
	c.mu.Lock()
	c.formOpen = false
	c.mu.Unlock()
}
