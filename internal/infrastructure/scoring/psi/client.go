package psi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxReportBytes = 8 * 1024 * 1024

// Client fetches scoring reports from the external scoring-runner service.
// The runner owns the poll-until-ready/retry loop; a single call here either
// returns the finished report or the runner's own error after its retry
// budget is exhausted.
type Client struct {
	baseURL string
	client  *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("scoring runner base URL is required")
	}
	if cfg.Timeout <= 0 {
		// Covers the runner's full internal retry budget.
		cfg.Timeout = 90 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// RunUntilSuccess asks the scoring runner for a finished report for url and
// returns the raw serialized payload.
func (c *Client) RunUntilSuccess(ctx context.Context, pageURL string) (string, error) {
	endpoint := c.baseURL + "/api/v1/score?url=" + url.QueryEscape(pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build scoring request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scoring runner request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, maxReportBytes)
	if err != nil {
		return "", fmt.Errorf("failed to read scoring response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Surface the runner's own message so callers see why its retry
		// budget was exhausted.
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = resp.Status
		}
		return "", fmt.Errorf("scoring runner returned %d: %s", resp.StatusCode, message)
	}

	return string(body), nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}
