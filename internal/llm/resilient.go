package llm

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"golang.org/x/time/rate"

	"git.home.luguber.info/inful/autodocs/internal/config"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
	"git.home.luguber.info/inful/autodocs/internal/retry"
)

// Resilient wraps a Client with a per-attempt timeout, bounded retries for transient
// failures and an optional rate limiter.
type Resilient struct {
	next    Client
	policy  retry.Policy
	timeout time.Duration
	limiter *rate.Limiter
	sleep   retry.Sleeper
}

// ResilientOption customizes a Resilient client.
type ResilientOption func(*Resilient)

// WithSleeper replaces the backoff sleeper (tests use an instant one).
func WithSleeper(s retry.Sleeper) ResilientOption {
	return func(r *Resilient) { r.sleep = s }
}

// WithLimiter sets the limiter consulted before every attempt.
func WithLimiter(l *rate.Limiter) ResilientOption {
	return func(r *Resilient) { r.limiter = l }
}

// NewResilient decorates next using the timeout, retry and pacing settings of cfg.
func NewResilient(next Client, cfg config.LLMConfig, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		next:    next,
		policy:  retry.FromConfig(cfg.Retry),
		timeout: cfg.Timeout,
		sleep:   retry.ContextSleep,
	}
	if cfg.RequestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resilient) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := retry.Do(ctx, r.policy, r.sleep, IsTransient, func(ctx context.Context, attempt int) error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		attemptCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		out, err := r.next.Generate(attemptCtx, prompt)
		if err != nil {
			// A deadline hit by this attempt alone is a timeout, not a cancellation.
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				err = &timeoutError{cause: err}
			}
			slog.Warn("Language model request failed",
				logfields.Attempt(attempt),
				slog.Bool("transient", IsTransient(err)),
				logfields.Error(err))
			return err
		}
		text = out
		return nil
	})
	return text, err
}

type timeoutError struct{ cause error }

func (e *timeoutError) Error() string { return "request timed out: " + e.cause.Error() }
func (e *timeoutError) Unwrap() error { return e.cause }

// IsTransient reports whether err is worth retrying. Rate limiting, 5xx responses,
// per-attempt timeouts, network failures and empty answers are transient. Client errors
// such as 401 and 403 are permanent, as is cancellation by the caller.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *timeoutError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.StatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func transientStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}
