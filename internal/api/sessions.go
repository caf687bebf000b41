package api

import (
	"context"
	"net/http"

	"github.com/Tiliavir/lma/internal/model"
)

// ListSessions returns every focus session visible to the user.
func (c *Client) ListSessions(ctx context.Context) ([]model.FocusSession, error) {
	return list[model.FocusSession](ctx, c, EndpointSessions)
}

// CreateSession opens a focus session. The server assigns the id.
func (c *Client) CreateSession(ctx context.Context, in model.CreateSession) (model.FocusSession, error) {
	var out model.FocusSession
	err := c.do(ctx, http.MethodPost, EndpointSessions, in, &out, true)
	return out, err
}

// UpdateSession ends a focus session; the response carries duration_minutes.
func (c *Client) UpdateSession(ctx context.Context, id int64, in model.EndSession) (model.FocusSession, error) {
	var out model.FocusSession
	err := c.do(ctx, http.MethodPatch, itemPath(EndpointSessions, id), in, &out, true)
	return out, err
}
