package engine

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryPolicy bounds transport-level retries. Zero MaxRetries disables
// retrying entirely.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy retries connection failures a couple of times with
// exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	var te *TransportError
	if errors.As(err, &te) && te.RetryAfter > 0 && te.RetryAfter <= p.MaxDelay {
		return te.RetryAfter
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// retryingClient wraps an LLMClient with connection-failure retries.
// Only errors where the request never reached the server are retried, so
// resending cannot duplicate server-side work. Everything else propagates
// immediately.
type retryingClient struct {
	inner  LLMClient
	policy RetryPolicy
}

// NewRetryingClient decorates client with the given retry policy.
func NewRetryingClient(client LLMClient, policy RetryPolicy) LLMClient {
	if policy.MaxRetries <= 0 {
		return client
	}
	return &retryingClient{inner: client, policy: policy}
}

func (c *retryingClient) Chat(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (LLMResponse, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := c.inner.Chat(ctx, model, messages, toolSchemas, opts)
		if err == nil {
			return resp, nil
		}

		var te *TransportError
		if !errors.As(err, &te) || !te.Retryable() || attempt >= c.policy.MaxRetries {
			return LLMResponse{}, err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return LLMResponse{}, NewTransportError(ctx.Err(), 0, 0)
		case <-time.After(c.policy.delay(attempt, lastErr)):
		}
	}
}
