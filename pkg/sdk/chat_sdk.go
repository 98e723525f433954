package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// Chat sends one client message to the dialogue and returns the next turn
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("[SDK]: invalid chat request: %w", err)
	}

	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Reset asks the service to start a fresh dialogue for the user and returns its opening turn
func (c *Client) Reset(ctx context.Context, req *ResetRequest) (*ChatResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("[SDK]: invalid reset request: %w", ErrMissingUserID)
	}

	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/reset", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
