package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-shop/internal/domain"
)

// MaxResponseBytes bounds the delegate reply that can be relayed.
const MaxResponseBytes = 1 << 20

// ErrResponseTooLarge is returned for replies over MaxResponseBytes. They are
// never relayed in part.
var ErrResponseTooLarge = errors.New("delegate response too large")

// Client posts unmatched transcripts to an n8n webhook.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a client for url. A zero timeout leaves the call unbounded.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward makes exactly one call. Non-2xx replies are returned as a
// response, not an error, so the caller can relay them.
func (c *Client) Forward(ctx context.Context, in domain.DelegateRequest) (*domain.DelegateResponse, error) {
	if in.Products == nil {
		in.Products = []domain.Product{}
	}

	bodyBytes, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(respBody) > MaxResponseBytes {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, ErrResponseTooLarge)
	}

	return &domain.DelegateResponse{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}
