package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultPaths maps flows to the endpoint paths of the intake API.
var DefaultPaths = map[string]string{
	FlowAlbum:   "/api/albums",
	FlowRequest: "/api/requests",
}

// HTTPOptions configures an HTTP gateway.
type HTTPOptions struct {
	BaseURL string
	Paths   map[string]string
	Client  *http.Client
	Timeout time.Duration
}

// HTTP posts submissions as JSON to a remote intake API and decodes its
// {success, data, error} envelope.
type HTTP struct {
	baseURL string
	paths   map[string]string
	client  *http.Client
}

var _ Gateway = (*HTTP)(nil)

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		ID string `json:"id"`
	} `json:"data"`
}

// NewHTTP constructs an HTTP gateway. A supplied client is cloned so the
// timeout can be applied without mutating the caller's value.
func NewHTTP(options HTTPOptions) (*HTTP, error) {
	base := strings.TrimRight(strings.TrimSpace(options.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base url is required")
	}

	var client *http.Client
	if options.Client != nil {
		clone := *options.Client
		if options.Timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.Timeout
		}
		client = &clone
	} else {
		client = &http.Client{Timeout: options.Timeout}
	}

	paths := make(map[string]string, len(DefaultPaths))
	for flow, path := range DefaultPaths {
		paths[flow] = path
	}
	for flow, path := range options.Paths {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			paths[flow] = trimmed
		}
	}

	return &HTTP{baseURL: base, paths: paths, client: client}, nil
}

// Submit posts submission to the flow's endpoint.
func (g *HTTP) Submit(ctx context.Context, submission Submission) (Outcome, error) {
	path, ok := g.paths[submission.Flow]
	if !ok {
		return Outcome{}, fmt.Errorf("gateway: no endpoint for flow %q", submission.Flow)
	}

	body, err := json.Marshal(submission)
	if err != nil {
		return Outcome{}, fmt.Errorf("gateway: encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if submission.Token != "" {
		req.Header.Set("Authorization", "Bearer "+submission.Token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("gateway: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Outcome{}, fmt.Errorf("gateway: read response: %w", err)
	}

	var decoded apiResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil && resp.StatusCode < 300 {
			return Outcome{}, fmt.Errorf("gateway: decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 || !decoded.Success {
		return Failed(decoded.Error), nil
	}
	if decoded.Data.ID == "" {
		return Outcome{}, errors.New("gateway: response is missing the created id")
	}
	return Succeeded(decoded.Data.ID), nil
}
