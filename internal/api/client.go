// Package api implements the REST clients for the user and connection
// services. It owns all HTTP concerns; callers only ever see decoded
// payloads or typed errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"networkpro-client/internal/config"
	"networkpro-client/internal/models"
)

const clientVersion = "1.4.0"

// Client talks to the user-service and connection-service REST APIs.
type Client struct {
	httpClient *http.Client
	userBase   string
	connBase   string
	logger     *slog.Logger
}

// New creates a Client with a tuned transport.
func New(cfg config.Config, logger *slog.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:           8,
		MaxIdleConnsPerHost:    8,
		IdleConnTimeout:        30 * time.Second,
		ForceAttemptHTTP2:      true,
		MaxResponseHeaderBytes: 1 << 20, // 1MB limit
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		userBase: strings.TrimRight(cfg.UserAPIBaseURL, "/"),
		connBase: strings.TrimRight(cfg.ConnectionAPIBaseURL, "/"),
		logger:   logger,
	}
}

// Close releases idle transport connections.
func (c *Client) Close() {
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// do executes one request with correlation headers and returns the body for
// any 2xx status. Every other outcome becomes a *models.NetworkError.
func (c *Client) do(ctx context.Context, op, method, url string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &models.NetworkError{Op: op, Err: err}
	}

	correlationID := uuid.New().String()
	req.Header.Set("X-Correlation-Id", correlationID)
	req.Header.Set("X-Client-Version", clientVersion)
	req.Header.Set("Accept", "application/json, text/plain")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "correlation_id", correlationID, "error", err)
		return nil, &models.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &models.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("request rejected", "op", op, "status", resp.StatusCode, "correlation_id", correlationID)
		return nil, &models.NetworkError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP error: %s", resp.Status),
		}
	}

	c.logger.Debug("request ok", "op", op, "status", resp.StatusCode, "correlation_id", correlationID)
	return payload, nil
}

// doJSON marshals in (when non-nil), executes the request, and decodes the
// response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, op, method, url string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	payload, err := c.do(ctx, op, method, url, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &models.NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
