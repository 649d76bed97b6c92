package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) profileResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := h.ds.Initialize(ctx, UserIDFromContext(ctx), "")
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, summarize(p))
}

func (h *handlers) missionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	board, err := h.ds.Missions(ctx, UserIDFromContext(ctx), h.now())
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, board)
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.Workouts(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	since := h.now().AddDate(0, 0, -14)
	recent := workouts[:0:0]
	for _, w := range workouts {
		if !w.StartTime.Before(since) {
			recent = append(recent, w)
		}
	}
	return jsonContents(req.Params.URI, recent)
}
