package api

import (
	"context"
	"net/http"

	"taskdeck/internal/model"
)

// AgentEvent is the body posted to the agent's chatkit endpoint.
type AgentEvent struct {
	Type      string        `json:"type"`
	Message   *AgentMessage `json:"message,omitempty"`
	Action    *AgentAction  `json:"action,omitempty"`
	AuthToken *string       `json:"auth_token,omitempty"`
}

type AgentMessage struct {
	Content string `json:"content"`
}

type AgentAction struct {
	Name string `json:"name"`
}

// AgentResponse is the agent's reply. Action and Task are set when the agent proposes a task.
type AgentResponse struct {
	Type    string           `json:"type"`
	Content string           `json:"content"`
	Done    bool             `json:"done"`
	Action  string           `json:"action,omitempty"`
	Task    *model.TaskDraft `json:"task,omitempty"`
}

type HealthStatus struct {
	Status string `json:"status"`
}

// SendMessage forwards user text to the agent together with the current token so the agent
// can act on the user's behalf.
func (c *Client) SendMessage(ctx context.Context, text string) (AgentResponse, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return AgentResponse{}, &Error{Kind: KindAuthRequired, Detail: "could not read stored token", Err: err}
	}
	ev := AgentEvent{
		Type:      "user_message",
		Message:   &AgentMessage{Content: text},
		AuthToken: &tok,
	}
	var out AgentResponse
	url, path := c.agent("/chatkit/api")
	if err := c.do(ctx, call{op: "SendMessage", method: http.MethodPost, url: url, path: path, body: ev, out: &out}); err != nil {
		return AgentResponse{}, err
	}
	return out, nil
}

func (c *Client) InvokeAction(ctx context.Context, name string) (AgentResponse, error) {
	ev := AgentEvent{Type: "action_invoked", Action: &AgentAction{Name: name}}
	var out AgentResponse
	url, path := c.agent("/chatkit/api")
	if err := c.do(ctx, call{op: "InvokeAction", method: http.MethodPost, url: url, path: path, body: ev, out: &out}); err != nil {
		return AgentResponse{}, err
	}
	return out, nil
}

func (c *Client) HealthCheck(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	url, path := c.agent("/health")
	if err := c.do(ctx, call{op: "HealthCheck", method: http.MethodGet, url: url, path: path, out: &out}); err != nil {
		return HealthStatus{}, err
	}
	return out, nil
}
