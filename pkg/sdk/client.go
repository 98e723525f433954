package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client wraps calls to the symptom-assessment dialogue service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service rooted at baseURL.
// The underlying http.Client has no timeout; callers bound calls with their context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// WithHTTPClient swaps the http.Client used for requests
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// BaseURL returns the service root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON is a helper to perform JSON requests to the service
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("[SDK]: could not encode '%s %s' body: %w", method, path, err)
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[SDK]: '%s %s' failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// On error, read body and return error
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(b)}
	}

	// If no output expected, return early
	if out == nil {
		return nil
	}

	// Decode the response body into the output struct
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[SDK]: could not decode '%s %s' response: %w", method, path, err)
	}
	return nil
}

// StatusError is returned when the service answers with a non-2xx status
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("[SDK]: '%s %s' failed: %d: %s", e.Method, e.Path, e.Code, e.Body)
}
