package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// Client talks to the plant blog HTTP API. Authenticated calls take the
// session token explicitly; the client itself holds no session.
type Client struct {
	baseURL string
	http    *http.Client
	Logger  *zap.SugaredLogger
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		Logger:  logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and decodes a success body into out. It returns the
// response status whenever a response was received.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		js, err := json.Marshal(in)
		if err != nil {
			return 0, &TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.Logger.Errorw("request failed",
			"op", op,
			"requestID", reqID,
			"error", err)
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	js, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &TransportError{Op: op, Err: err}
	}

	c.Logger.Debugw("api call",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"requestID", reqID,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newStatusError(op, resp.StatusCode, js)
	}

	if out != nil && len(bytes.TrimSpace(js)) > 0 {
		if err := json.Unmarshal(js, out); err != nil {
			return resp.StatusCode, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return resp.StatusCode, nil
}
