package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	evaluatePath          = "/policy/evaluate"
	defaultRequestTimeout = 10 * time.Second
)

// Client queries a remote authorization service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds an authorization client for the service at baseURL.
func NewClient(baseURL string, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("authorization service url is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
		logger:  logger,
	}, nil
}

type evaluateRequest struct {
	Resources   []Resource `json:"resources"`
	Permissions []string   `json:"permissions"`
}

type evaluateResponse struct {
	Result []bool `json:"result"`
}

func (c *Client) CheckEverything(ctx context.Context, token, permission string) (bool, error) {
	verdicts, err := c.evaluate(ctx, token, []Resource{EverythingResource()}, permission)
	if err != nil {
		return false, err
	}
	return verdicts[0], nil
}

func (c *Client) CheckObjects(ctx context.Context, token string, resources []Resource, permission string) ([]bool, error) {
	if len(resources) == 0 {
		return []bool{}, nil
	}
	return c.evaluate(ctx, token, resources, permission)
}

func (c *Client) evaluate(ctx context.Context, token string, resources []Resource, permission string) ([]bool, error) {
	body, err := json.Marshal(evaluateRequest{Resources: resources, Permissions: []string{permission}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+evaluatePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authorization query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("authorization service rejected evaluate call",
			"status", resp.StatusCode, "permission", permission)
		return nil, fmt.Errorf("authorization query: unexpected status %d", resp.StatusCode)
	}

	var parsed evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("authorization query: %w", err)
	}
	if len(parsed.Result) != len(resources) {
		return nil, fmt.Errorf("authorization query: %d verdicts for %d resources",
			len(parsed.Result), len(resources))
	}
	return parsed.Result, nil
}
