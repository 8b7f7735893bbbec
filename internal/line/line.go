// Package line delivers composed Flex messages through the LINE Messaging API
// push endpoint.
package line

import (
	"context"
	"net/http"
	"time"

	"order-relay/internal/flex"
)

// PushPath is the LINE Messaging API push endpoint path.
const PushPath = "/v2/bot/message/push"

// DefaultTimeout bounds a push call when the configuration leaves it unset.
const DefaultTimeout = 5 * time.Second

// Dispatcher sends one message to the configured destination.
type Dispatcher interface {
	// Send makes exactly one push attempt. It never returns an error:
	// every failure is reported through the Result.
	Send(ctx context.Context, msg *flex.Message) Result
}

// Result captures the outcome of a single push attempt.
type Result struct {
	OK         bool
	StatusCode int
	RequestID  string
	Detail     string
	Duration   time.Duration
}

// Config holds the push endpoint settings.
type Config struct {
	BaseURL            string
	ChannelAccessToken string
	To                 string
	Timeout            time.Duration
	HTTPClient         *http.Client
}
