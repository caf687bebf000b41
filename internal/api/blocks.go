package api

import (
	"context"
	"net/http"

	"github.com/Tiliavir/lma/internal/model"
)

func (c *Client) ListBlocks(ctx context.Context) ([]model.Block, error) {
	return list[model.Block](ctx, c, EndpointBlocks)
}

func (c *Client) CreateBlock(ctx context.Context, in model.BlockInput) (model.Block, error) {
	var out model.Block
	err := c.do(ctx, http.MethodPost, EndpointBlocks, in, &out, true)
	return out, err
}

func (c *Client) UpdateBlock(ctx context.Context, id int64, in model.BlockInput) (model.Block, error) {
	var out model.Block
	err := c.do(ctx, http.MethodPatch, itemPath(EndpointBlocks, id), in, &out, true)
	return out, err
}

func (c *Client) DeleteBlock(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(EndpointBlocks, id), nil, nil, true)
}
