// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the outbound HTTP surface for third-party integrations. The
// timeout covers the whole exchange including body read.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// PostForm sends an application/x-www-form-urlencoded POST. Used for
// OAuth-style token exchanges.
func (c *Client) PostForm(ctx context.Context, endpoint string, data url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.httpClient.Do(req)
}

// PostJSON sends a JSON POST with an optional bearer token.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload []byte, bearerToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}
	return c.httpClient.Do(req)
}
