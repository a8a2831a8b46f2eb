package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/chatify/chatify-cli/internal/errors"
)

// Client talks to the hosted Chatify REST API. All state lives server-side;
// the client only holds the base URL and an HTTP client with a timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// errorBody is the shape the API uses for failure payloads. Some endpoints
// use "error", others "message".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorBody) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do executes one API request. A non-empty token is sent as a bearer
// credential. Non-2xx statuses are mapped onto the shared error taxonomy so
// services only ever switch on error codes.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal("encode request body").WithCause(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return apperrors.Internal("build request").WithCause(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeRemoteFailure, "Remote API unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeRemoteFailure, "Read response body", err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeRemoteFailure, "Decode response body", err)
		}
	}
	return nil
}

func (c *Client) statusError(status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	message := body.text()

	switch status {
	case http.StatusTooManyRequests:
		return apperrors.RateLimited()
	case http.StatusUnauthorized:
		if message == "" {
			message = "Missing or invalid credentials"
		}
		return apperrors.Unauthorized(message)
	case http.StatusForbidden:
		if message == "" {
			message = "Session is no longer valid"
		}
		return apperrors.Forbidden(message)
	case http.StatusNotFound:
		if message == "" {
			message = "Resource"
		}
		return apperrors.NotFound(message)
	}

	if message == "" {
		message = snippet(raw)
	}
	return apperrors.RemoteFailure(status, message)
}

// snippet keeps error payloads short enough for a notice line.
func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

// get/post/put/patch/delete wrappers keep endpoint methods one-liners.

func (c *Client) get(ctx context.Context, path string, query url.Values, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, query, token, nil, out)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, token, body, out)
}

func (c *Client) put(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, token, body, out)
}

func (c *Client) patch(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, token, body, out)
}

func (c *Client) delete(ctx context.Context, path, token string) error {
	return c.do(ctx, http.MethodDelete, path, nil, token, nil, nil)
}

// escapePath escapes one path segment.
func escapePath(segment string) string {
	return url.PathEscape(segment)
}
