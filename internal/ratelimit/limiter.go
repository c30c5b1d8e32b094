package ratelimit

import "context"

// Limiter throttles login traffic per client key before any database work.
type Limiter interface {
	Allow(ctx context.Context, clientKey string) (bool, error)
}
