package chat

import (
	"context"

	"taskdeck/internal/api"
	"taskdeck/internal/model"
)

// Agent is the slice of the API client the chat talks to.
type Agent interface {
	SendMessage(ctx context.Context, text string) (api.AgentResponse, error)
	InvokeAction(ctx context.Context, name string) (api.AgentResponse, error)
	HealthCheck(ctx context.Context) (api.HealthStatus, error)
}

// Reply is what a responder produced for one user message.
type Reply struct {
	Text    string
	Kind    model.MessageKind
	Preview *model.TaskDraft
}

// Responder answers a user message. Exactly one implementation is active, chosen by the
// agent availability flag.
type Responder interface {
	Respond(ctx context.Context, text string) (Reply, error)
	Invoke(ctx context.Context, action string) (Reply, error)
}

const (
	welcomeAvailable   = "Hello! I'm your AI assistant. How can I help you manage your tasks today?"
	welcomeUnavailable = "Hello! I'm your AI assistant. Note: The AI agent is currently unavailable. You can still create tasks manually with the task form (type /task)."
	fallbackText       = "I'm currently unavailable, but you can use the task form to manage your tasks. Type /task or pick 'Create task' to add a new task!"
)

type agentResponder struct {
	agent Agent
}

func (r agentResponder) Respond(ctx context.Context, text string) (Reply, error) {
	resp, err := r.agent.SendMessage(ctx, text)
	if err != nil {
		return Reply{}, err
	}
	return classify(resp), nil
}

func (r agentResponder) Invoke(ctx context.Context, action string) (Reply, error) {
	resp, err := r.agent.InvokeAction(ctx, action)
	if err != nil {
		return Reply{}, err
	}
	return classify(resp), nil
}

func classify(resp api.AgentResponse) Reply {
	if draft, text := extractPreview(resp); draft != nil {
		return Reply{Text: text, Kind: model.MessageInfo, Preview: draft}
	}
	if resp.Type == "error" {
		return Reply{Text: resp.Content, Kind: model.MessageError}
	}
	return Reply{Text: resp.Content, Kind: model.MessageText}
}

// fallbackResponder never touches the network.
type fallbackResponder struct{}

func (fallbackResponder) Respond(context.Context, string) (Reply, error) {
	return Reply{Text: fallbackText, Kind: model.MessageInfo}, nil
}

func (fallbackResponder) Invoke(context.Context, string) (Reply, error) {
	return Reply{Text: fallbackText, Kind: model.MessageInfo}, nil
}
