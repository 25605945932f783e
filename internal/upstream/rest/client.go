package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/pkg/circuitbreaker"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/metrics"
)

type Config struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures int
	BreakerReset       time.Duration
}

// Client is the shared HTTP client for the booking platform backend. It
// attaches the session's bearer token, maps the backend's error taxonomy
// onto AppError codes and records per-operation metrics.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewClient(cfg Config, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "upstream",
			MaxFailures: cfg.BreakerMaxFailures,
			Timeout:     cfg.BreakerReset,
		}),
		metrics: m,
	}
}

// envelope is the backend's uniform response shape. Success is a pointer
// because older endpoints omit it and signal failure by status alone.
type envelope struct {
	Success    *bool             `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Message    string            `json:"message"`
	Pagination *model.Pagination `json:"pagination"`
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, token string, body, out interface{}) (*model.Pagination, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("marshal %s request: %w", op, err))
		}
		reqBody = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("build %s request: %w", op, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var resp *http.Response
	start := time.Now()
	err = c.breaker.Execute(func() error {
		var execErr error
		resp, execErr = c.http.Do(req)
		if execErr != nil {
			return execErr
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		return nil
	})
	c.observe(op, start, resp, err)

	if err != nil {
		if resp == nil {
			log.Warn().Err(err).Str("operation", op).Msg("upstream transport failure")
			return nil, apperrors.UpstreamUnavailable(err)
		}
		// 5xx reached the breaker as a failure but still carries a body.
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamUnavailable(fmt.Errorf("read %s response: %w", op, err))
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, apperrors.Upstream("malformed response from backend", err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.statusError(op, resp.StatusCode, env.Message)
	}

	// Application-level failure in a 2xx body is treated like an HTTP error
	// for display purposes.
	if env.Success != nil && !*env.Success {
		return nil, apperrors.Upstream(env.Message, nil)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, apperrors.Upstream("malformed response from backend", err)
		}
	}
	return env.Pagination, nil
}

func (c *Client) statusError(op string, status int, message string) error {
	err := fmt.Errorf("%s: upstream status %d", op, status)
	switch status {
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(err)
	case http.StatusForbidden:
		if message == "" {
			message = "forbidden"
		}
		return apperrors.Forbidden(message)
	case http.StatusNotFound:
		return apperrors.NotFound(op, err)
	default:
		return apperrors.Upstream(message, err)
	}
}

func (c *Client) observe(op string, start time.Time, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	status := "error"
	if err == nil && resp != nil {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	c.metrics.UpstreamRequests.WithLabelValues(op, status).Inc()
	if err != nil {
		kind := "transport"
		if resp != nil {
			kind = "status"
		}
		c.metrics.UpstreamErrors.WithLabelValues(op, kind).Inc()
	}
}
