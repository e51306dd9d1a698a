package extractor

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedGenerator throttles calls to the wrapped Generator to a requests-per-minute budget.
type RateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator wraps next with a limiter of rpm requests per minute and a burst of one.
func NewRateLimitedGenerator(next Generator, rpm int) *RateLimitedGenerator {
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (g *RateLimitedGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return g.next.Generate(ctx, req)
}
