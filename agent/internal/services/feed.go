package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"whale-watcher/agent/internal/events"
)

// FeedClient polls the upstream swap feed. Any failure here means "no
// swaps this cycle"; the orchestrator aborts the cycle with no side
// effects.
type FeedClient struct {
	url    string
	client *http.Client
}

func NewFeedClient(url string) *FeedClient {
	return &FeedClient{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *FeedClient) FetchSwaps(ctx context.Context) ([]events.Swap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swap feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("swap feed returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading swap feed response: %w", err)
	}

	swaps, err := events.ParseSwaps(body)
	if err != nil {
		return nil, err
	}
	return swaps, nil
}
