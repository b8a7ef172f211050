// Package client provides the outbound HTTP client used to reach relay targets.
package client

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"http-relay-go/internal/config"
	"http-relay-go/internal/metrics"
)

// TargetClient sends relayed requests to arbitrary targets.
type TargetClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewTargetClient creates a TargetClient with connection pooling. It sets no
// overall client timeout: the relay bounds each call with its own context.
// The metrics parameter is optional; pass nil to disable target metrics recording.
func NewTargetClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *TargetClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Relay.IdleConnections,
		MaxIdleConnsPerHost: cfg.Relay.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &TargetClient{
		httpClient: &http.Client{Transport: transport},
		logger:     logger.With("component", "target_client"),
		metrics:    m,
	}
}

// Do executes an HTTP request against a target and returns the raw response.
// The caller is responsible for closing the response body.
func (c *TargetClient) Do(req *http.Request) (*http.Response, error) {
	c.logger.Debug("target request",
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(req.Method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.TargetDuration.WithLabelValues(method).Observe(duration)
		}
		return nil, fmt.Errorf("target request: %w", err)
	}

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.TargetDuration.WithLabelValues(method).Observe(duration)
		c.metrics.TargetResponses.WithLabelValues(method, status).Inc()
	}

	return resp, nil
}
