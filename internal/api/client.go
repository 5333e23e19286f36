// Package api is the request executor for the coaching backend: it builds
// URLs, attaches auth, serializes bodies, times out, and classifies
// failures. Response shapes are left to the callers, which parse them
// tolerantly.
package api

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

	"github.com/novahuman/compass/internal/config"
	"github.com/novahuman/compass/internal/logger"
)

const defaultTimeout = 20 * time.Second

// Client talks to the coaching backend.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *http.Client
	log     zerolog.Logger

	// OnUnauthorized runs once per 401 response, before the error is
	// returned. The CLI installs a hook that clears the cached credential;
	// the login boundary itself is a collaborator, not part of this core.
	OnUnauthorized func()
}

// NewClient creates a backend client from configuration.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBase, "/"),
		token:   cfg.Token,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		log:     logger.WithField("component", "api"),
	}
}

// SetToken replaces the bearer credential for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Get issues a GET request and returns the decoded-or-raw payload.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with a JSON body. A nil body is sent as {}.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	if body == nil {
		body = map[string]interface{}{}
	}
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	url := c.url(path)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Content-Type only on requests that carry a body.
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded)
		if !timeout {
			var netErr interface{ Timeout() bool }
			timeout = errors.As(err, &netErr) && netErr.Timeout()
		}
		c.log.Debug().Str("url", url).Bool("timeout", timeout).Err(err).Msg("request failed")
		return nil, &RequestError{URL: url, Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return nil, &HTTPError{
			Status:  resp.StatusCode,
			Body:    string(data),
			Message: errorMessage(data),
		}
	}

	return tolerantPayload(data), nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// errorMessage pulls a human-readable message out of a JSON error body.
func errorMessage(data []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// tolerantPayload hands back the body as JSON. Backends occasionally return
// plain text on success paths; that is re-encoded as a JSON string so read
// paths can treat undecodable bodies as data, never as a hard failure.
func tolerantPayload(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, err := json.Marshal(string(trimmed))
	if err != nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(quoted)
}
