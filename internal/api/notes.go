package api

import (
	"context"
	"fmt"
	"net/http"

	"taskdeck/internal/model"
)

func (c *Client) GetNotes(ctx context.Context) ([]model.Note, error) {
	var out []model.Note
	url, path := c.backend("/notes")
	if err := c.do(ctx, call{op: "GetNotes", method: http.MethodGet, url: url, path: path, auth: authRequired, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetNote(ctx context.Context, id int) (model.Note, error) {
	var out model.Note
	url, path := c.backend(fmt.Sprintf("/notes/%d", id))
	if err := c.do(ctx, call{op: "GetNote", method: http.MethodGet, url: url, path: path, auth: authRequired, out: &out}); err != nil {
		return model.Note{}, err
	}
	return out, nil
}

func (c *Client) CreateNote(ctx context.Context, draft model.NoteDraft) (model.Note, error) {
	draft.Category = model.OptionalString(deref(draft.Category))
	var out model.Note
	url, path := c.backend("/notes")
	if err := c.do(ctx, call{op: "CreateNote", method: http.MethodPost, url: url, path: path, auth: authRequired, body: draft, out: &out}); err != nil {
		return model.Note{}, err
	}
	return out, nil
}

func (c *Client) UpdateNote(ctx context.Context, id int, patch model.NotePatch) (model.Note, error) {
	var out model.Note
	url, path := c.backend(fmt.Sprintf("/notes/%d", id))
	if err := c.do(ctx, call{op: "UpdateNote", method: http.MethodPut, url: url, path: path, auth: authRequired, body: patch, out: &out}); err != nil {
		return model.Note{}, err
	}
	return out, nil
}

func (c *Client) DeleteNote(ctx context.Context, id int) error {
	url, path := c.backend(fmt.Sprintf("/notes/%d", id))
	return c.do(ctx, call{op: "DeleteNote", method: http.MethodDelete, url: url, path: path, auth: authRequired})
}
