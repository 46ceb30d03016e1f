// Package httpx builds outbound HTTP clients with retries. The returned
// *http.Client has the stdlib interface and retryablehttp logic inside.
package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// LeveledSlog adapts slog to retryablehttp.LeveledLogger.
type LeveledSlog struct {
	inner *slog.Logger
}

// Error is logged as WARN: intermediate failures are retried.
func (l LeveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Info(msg, keysAndValues...)
}

func (l LeveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

type Option func(*retryablehttp.Client)

func WithMaxRetries(maxRetries int) Option {
	return func(c *retryablehttp.Client) {
		c.RetryMax = maxRetries
	}
}

func WithRetryWait(min, max time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = min
		c.RetryWaitMax = max
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *retryablehttp.Client) {
		c.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: logger})
	}
}

// WithPassthroughErrors returns the last transport error or response
// instead of the "giving up after N attempts" error, which embeds the URL.
func WithPassthroughErrors() Option {
	return func(c *retryablehttp.Client) {
		c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	}
}

// NewClient retries connection errors and 5xx responses (except 501) up to
// three times; 429 is handed back to the caller. timeout bounds the whole
// call including retries.
func NewClient(timeout time.Duration, options ...Option) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: slog.Default().With("subsystem", "httpx")})
	retryClient.CheckRetry = DefaultRetryPolicy

	for _, option := range options {
		option(retryClient)
	}

	client := retryClient.StandardClient()
	client.Timeout = timeout
	return client
}

// DefaultRetryPolicy wraps retryablehttp.DefaultRetryPolicy and treats
// 429 Too Many Requests as final.
func DefaultRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// StripURL unwraps *url.Error layers so that the request URL is not part of
// the message. Telegram file and API URLs embed the bot token.
func StripURL(err error) error {
	for {
		var uerr *url.Error
		if !errors.As(err, &uerr) {
			return err
		}
		err = uerr.Err
	}
}
