// Copyright 2025 Status Developers
// SPDX-License-Identifier: Apache-2.0

// Package host talks to the debug listener of a Status host client.
package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/status-im/status-dev-cli/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Endpoints exposed by the host client.
const (
	PathAddDApp     = "/add-dapp"
	PathRemoveDApp  = "/remove-dapp"
	PathDAppChanged = "/dapp-changed"
	PathSwitchNode  = "/switch-node"
)

const tracerName = "github.com/status-im/status-dev-cli/internal/host"

// Request is the body of every POST to the host.
type Request struct {
	Encoded string `json:"encoded"`
}

// Client handles interactions with the host client
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a client for the host listening at baseURL
// (for example http://localhost:5561).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// BaseURL returns the host address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends the encoded payload to path. Any response counts as success;
// only transport errors are returned. Requests are never retried.
func (c *Client) Post(ctx context.Context, path, encoded string) error {
	url := c.baseURL + path

	ctx, span := c.tracer.Start(ctx, "host.post", trace.WithAttributes(
		attribute.String("http.url", url),
		attribute.Int("payload.length", len(encoded)),
	))
	defer span.End()

	body, err := json.Marshal(Request{Encoded: encoded})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return fmt.Errorf("failed to reach host at %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	logger.Logger.Debug("Host responded", "url", url, "status", resp.StatusCode)
	return nil
}
