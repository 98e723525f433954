package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// Feedback submits free-form feedback about the assessment
func (c *Client) Feedback(ctx context.Context, req *FeedbackRequest) (*ChatResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("[SDK]: invalid feedback request: %w", ErrMissingUserID)
	}

	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/feedback", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// HealthData submits manually measured vitals used as extra evidence
func (c *Client) HealthData(ctx context.Context, req *HealthDataRequest) (*ChatResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("[SDK]: invalid health data request: %w", ErrMissingUserID)
	}

	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/health_data", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// EditProfile updates the demographics the service assesses against
func (c *Client) EditProfile(ctx context.Context, req *ProfileRequest) (*ChatResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("[SDK]: invalid profile request: %w", ErrMissingUserID)
	}

	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/edit_profile", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Symptoms lists the symptom names the service recognizes
func (c *Client) Symptoms(ctx context.Context) ([]string, error) {
	var out SymptomsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/symptoms", nil, &out); err != nil {
		return nil, err
	}

	return out.Symptoms, nil
}
