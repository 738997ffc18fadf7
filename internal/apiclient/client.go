// Package apiclient talks to the assignment tracker backend. Every response
// shape the backend uses for failure is normalized here into an error, so
// callers only ever see (payload, error).
package apiclient

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

	"github.com/rs/zerolog"
)

// Sentinel errors for common failure classes.
var (
	ErrNotFound     = errors.New("not found")
	ErrStreamClosed = errors.New("sync stream closed before completion")
)

// APIError is a failure reported by the backend, either as a non-2xx status
// or as an {"error": ...} / {"success": false} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client is an HTTP client for the tracker backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Stream is used for the long-lived sync stream; it must not set a
	// whole-request timeout.
	Stream     *http.Client
	RetryCount int
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

// New creates a client for baseURL.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTP:       &http.Client{Timeout: timeout},
		Stream:     &http.Client{},
		RetryCount: 2,
		RetryDelay: 250 * time.Millisecond,
		Logger:     logger,
	}
}

// result is the envelope most write endpoints answer with.
type result struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Updated int    `json:"updated"`
}

// do executes a JSON request. GETs are retried on transport failure.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	attempts := 1
	if method == http.MethodGet {
		attempts += c.RetryCount
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			c.Logger.Warn().Int("attempt", i).Str("path", path).Err(lastErr).Msg("retrying request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.RetryDelay * time.Duration(i)):
			}
		}

		respBody, status, err := c.roundTrip(ctx, method, path, body)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return err
			}
			continue
		}
		return decode(status, respBody, out)
	}
	return lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	c.Logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")
	return respBody, resp.StatusCode, nil
}

// decode applies the backend's error conventions, then unmarshals into out.
func decode(status int, body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)

	var env result
	isObject := len(trimmed) > 0 && trimmed[0] == '{'
	if isObject {
		_ = json.Unmarshal(trimmed, &env)
	}

	if status >= 400 {
		if env.Error != "" {
			return &APIError{Status: status, Message: env.Error}
		}
		msg := strings.TrimSpace(string(trimmed))
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{Status: status, Message: fmt.Sprintf("HTTP %d: %s", status, msg)}
	}

	if isObject {
		if env.Error != "" {
			return &APIError{Status: status, Message: env.Error}
		}
		if env.Success != nil && !*env.Success {
			return &APIError{Status: status, Message: "Unknown error"}
		}
	}

	if out != nil && len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// post sends body to a write endpoint and returns the normalized envelope.
func (c *Client) post(ctx context.Context, path string, body any) (result, error) {
	var env result
	err := c.do(ctx, http.MethodPost, path, body, &env)
	return env, err
}
