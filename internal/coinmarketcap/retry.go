package coinmarketcap

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"go.uber.org/zap"
)

// FearGreedWithRetry fetches the index with exponential backoff for at most
// maxElapsed. API errors other than rate limiting are not retried.
func (c *Client) FearGreedWithRetry(ctx context.Context, limit int, maxElapsed time.Duration) (domain.FearGreedSeries, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	notify := func(err error, d time.Duration) {
		c.logger.Info("Retrying Fear & Greed fetch", zap.Error(err), zap.Duration("backoff", d))
	}

	operation := func() (domain.FearGreedSeries, error) {
		series, err := c.FearGreed(ctx, limit)
		if err == nil {
			return series, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !retryable(apiErr.Code) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(maxElapsed),
		backoff.WithNotify(notify))
}

// retryable reports whether an API status code is worth another attempt:
// rate limits (1008 per minute, 1011 IP) and internal errors.
func retryable(code int) bool {
	switch code {
	case 1008, 1011, 500:
		return true
	}
	return false
}
