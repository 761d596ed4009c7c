package api

import (
	"context"
	"fmt"
	"net/http"

	"taskdeck/internal/model"
)

func (c *Client) GetTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	url, path := c.backend("/tasks")
	if err := c.do(ctx, call{op: "GetTasks", method: http.MethodGet, url: url, path: path, auth: authRequired, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (model.Task, error) {
	var out model.Task
	url, path := c.backend(fmt.Sprintf("/tasks/%d", id))
	if err := c.do(ctx, call{op: "GetTask", method: http.MethodGet, url: url, path: path, auth: authRequired, out: &out}); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// CreateTask posts a new task. Priority defaults to medium, status is always pending and a
// recurrence pattern is only sent for recurring tasks. The server echo is returned.
func (c *Client) CreateTask(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	draft.Status = model.StatusPending
	if !draft.IsRecurring {
		draft.RecurrencePattern = nil
	}
	draft.Category = model.OptionalString(deref(draft.Category))
	draft.DueDate = model.OptionalString(deref(draft.DueDate))

	var out model.Task
	url, path := c.backend("/tasks")
	if err := c.do(ctx, call{op: "CreateTask", method: http.MethodPost, url: url, path: path, auth: authRequired, body: draft, out: &out}); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// UpdateTask sends only the supplied fields.
func (c *Client) UpdateTask(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error) {
	var out model.Task
	url, path := c.backend(fmt.Sprintf("/tasks/%d", id))
	if err := c.do(ctx, call{op: "UpdateTask", method: http.MethodPut, url: url, path: path, auth: authRequired, body: patch, out: &out}); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	url, path := c.backend(fmt.Sprintf("/tasks/%d", id))
	return c.do(ctx, call{op: "DeleteTask", method: http.MethodDelete, url: url, path: path, auth: authRequired})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
