package bigrow

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient is the interface for HTTP client.
type HTTPClient interface {
	// Get sends a GET request to the BigRow gateway.
	Get(context.Context, *url.URL) (*http.Response, error)
	// Post sends a POST request to the BigRow gateway.
	Post(context.Context, *url.URL, []byte) (*http.Response, error)
	// Delete sends a DELETE request to the BigRow gateway.
	Delete(context.Context, *url.URL) (*http.Response, error)
	// Close releases idle transport resources.
	Close()
}

type httpClient struct {
	client *http.Client

	retries int
	pause   time.Duration
}

// NewHTTPClient creates a new internal HTTP client with the retry knobs of
// the given config.
func NewHTTPClient(config *Config) HTTPClient {
	return &httpClient{
		client:  &http.Client{},
		retries: config.Retries,
		pause:   config.RetryPause,
	}
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Get(ctx context.Context, u *url.URL) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, u, nil)
}

func (c *httpClient) Post(ctx context.Context, u *url.URL, body []byte) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, u, body)
}

func (c *httpClient) Delete(ctx context.Context, u *url.URL) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, u, nil)
}

func (c *httpClient) Close() {
	c.client.CloseIdleConnections()
}

// do issues the request and retries transport-level failures up to the
// configured retry count. A response is returned as-is whatever its status
// code; the caller decides what an error status means.
func (c *httpClient) do(ctx context.Context, method string, u *url.URL, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pause):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}
