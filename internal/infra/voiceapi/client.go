// Package voiceapi is the capture side of POST /api/voice.
package voiceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-shop/internal/domain"
)

const maxResponseBytes = 1 << 20

type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Query sends one transcript. Any JSON object in the reply is returned as a
// result whatever the status code, so error replies surface through
// QueryResult.Error.
func (c *Client) Query(ctx context.Context, text string) (*domain.QueryResult, error) {
	payload, err := json.Marshal(domain.VoiceRequest{Text: &text})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var result domain.QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	return &result, nil
}
