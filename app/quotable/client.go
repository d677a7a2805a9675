package quotable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the quotable HTTP API. Every call is a single GET bounded
// by the configured timeout; there are no retries.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL string, timeout time.Duration, userAgent string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Client{client: client}
}

// Search queries the remote search endpoint. An empty or missing result list
// is an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]apiQuote, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/search/quotes")
	if err != nil {
		return nil, fmt.Errorf("quote API request failed: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("quote API request failed with status %d", res.StatusCode())
	}

	var parsed searchResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quote API response: %w", err)
	}

	if parsed.Results == nil {
		return []apiQuote{}, nil
	}

	return parsed.Results, nil
}

// Random fetches one random quote. The endpoint returns either a single
// object or a one-element array depending on API version; both are handled.
func (c *Client) Random(ctx context.Context) (*apiQuote, error) {
	res, err := c.client.R().
		SetContext(ctx).
		Get("/quotes/random")
	if err != nil {
		return nil, fmt.Errorf("quote API request failed: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("quote API request failed with status %d", res.StatusCode())
	}

	body := res.Body()

	var list []apiQuote
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return nil, fmt.Errorf("no data returned from quote API")
		}
		return &list[0], nil
	}

	var single apiQuote
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, fmt.Errorf("failed to parse quote API response: %w", err)
	}
	if single.Content == "" {
		return nil, fmt.Errorf("no data returned from quote API")
	}

	return &single, nil
}
