package api

import (
	"context"
	"net/http"

	"github.com/Tiliavir/lma/internal/model"
)

func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	return list[model.Note](ctx, c, EndpointNotes)
}

func (c *Client) CreateNote(ctx context.Context, in model.NoteInput) (model.Note, error) {
	var out model.Note
	err := c.do(ctx, http.MethodPost, EndpointNotes, in, &out, true)
	return out, err
}

func (c *Client) UpdateNote(ctx context.Context, id int64, in model.NoteInput) (model.Note, error) {
	var out model.Note
	err := c.do(ctx, http.MethodPatch, itemPath(EndpointNotes, id), in, &out, true)
	return out, err
}

func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(EndpointNotes, id), nil, nil, true)
}
