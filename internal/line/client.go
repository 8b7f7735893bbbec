package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"order-relay/internal/flex"

	"github.com/rs/zerolog"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 64 << 10

type pushRequest struct {
	To       string          `json:"to"`
	Messages []*flex.Message `json:"messages"`
}

// apiError is the error body returned by the Messaging API.
type apiError struct {
	Message string `json:"message"`
	Details []struct {
		Message  string `json:"message"`
		Property string `json:"property"`
	} `json:"details"`
}

// client implements Dispatcher over HTTP.
type client struct {
	http    *http.Client
	pushURL string
	token   string
	to      string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewDispatcher creates a Dispatcher for the LINE push endpoint.
func NewDispatcher(cfg Config, logger zerolog.Logger) Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &client{
		http:    httpClient,
		pushURL: strings.TrimRight(cfg.BaseURL, "/") + PushPath,
		token:   cfg.ChannelAccessToken,
		to:      cfg.To,
		timeout: timeout,
		logger:  logger.With().Str("component", "line-dispatcher").Logger(),
	}
}

// Send pushes msg once and reports the outcome.
func (c *client) Send(ctx context.Context, msg *flex.Message) Result {
	start := time.Now()
	res := c.send(ctx, msg)
	res.Duration = time.Since(start)

	if res.OK {
		c.logger.Info().
			Int("status", res.StatusCode).
			Str("request_id", res.RequestID).
			Dur("duration", res.Duration).
			Msg("push message delivered")
	} else {
		c.logger.Error().
			Int("status", res.StatusCode).
			Str("request_id", res.RequestID).
			Str("detail", res.Detail).
			Dur("duration", res.Duration).
			Msg("push message failed")
	}

	return res
}

func (c *client) send(ctx context.Context, msg *flex.Message) Result {
	if msg == nil {
		return Result{Detail: "no message to send"}
	}

	body, err := json.Marshal(pushRequest{To: c.to, Messages: []*flex.Message{msg}})
	if err != nil {
		return Result{Detail: fmt.Sprintf("failed to encode push request: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(body))
	if err != nil {
		return Result{Detail: fmt.Sprintf("failed to build push request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return Result{Detail: fmt.Sprintf("push timed out after %s", c.timeout)}
		}
		return Result{Detail: fmt.Sprintf("push request failed: %v", err)}
	}
	defer resp.Body.Close()

	res := Result{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Line-Request-Id"),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		res.Detail = fmt.Sprintf("failed to read push response: %v", err)
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Detail = describeError(resp.StatusCode, raw)
		return res
	}

	var ack map[string]json.RawMessage
	if err := json.Unmarshal(raw, &ack); err != nil {
		res.Detail = fmt.Sprintf("malformed push acknowledgement: %q", truncate(string(raw), 200))
		return res
	}

	res.OK = true
	return res
}

func describeError(status int, raw []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		parts := []string{apiErr.Message}
		for _, d := range apiErr.Details {
			if d.Property != "" {
				parts = append(parts, d.Property+": "+d.Message)
			} else {
				parts = append(parts, d.Message)
			}
		}
		return fmt.Sprintf("push rejected with status %d: %s", status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("push rejected with status %d: %s", status, truncate(strings.TrimSpace(string(raw)), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
