package limitless

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// ErrNotAuthenticated is returned by endpoints that need a session when
// Login has not succeeded.
var ErrNotAuthenticated = errors.New("limitless: not authenticated")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("limitless api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
	auth    bool
}

type response struct {
	body    []byte
	cookies []*http.Cookie
}

func (c *Client) doRequest(ctx context.Context, r request) (*response, error) {
	fullURL := c.baseURL + r.path
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.auth {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.session})
	}

	c.logger.Debug("limitless request", "method", r.method, "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Error("limitless API error", "status", resp.StatusCode, "path", r.path, "body", string(body))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return &response{body: body, cookies: resp.Cookies()}, nil
}

func (c *Client) doWithRetry(ctx context.Context, r request) (*response, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// backoff * (0.5 to 1.5)
			wait := backoff / 2
			if backoff > 0 {
				wait += time.Duration(rand.Int63n(int64(backoff)))
			}
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", wait,
				"path", r.path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}

			backoff *= 2
		}

		resp, err := c.doRequest(ctx, r)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// getJSON performs a GET with retries and decodes the body into out.
// Numbers are decoded as json.Number when out holds interface values.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, auth bool, out any) error {
	resp, err := c.doWithRetry(ctx, request{method: http.MethodGet, path: path, query: query, auth: auth})
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(resp.body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
