package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// circuitState tracks rate-limit backoff for a single extractor.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries extractors in order, skipping those with open circuits.
// It implements port.StructuredExtractor.
type FallbackExtractor struct {
	extractors []port.StructuredExtractor
	circuits   []*circuitState
	names      []string
	logger     *zap.Logger
	now        func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.StructuredExtractor, names []string, logger *zap.Logger) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		logger:     logger,
		now:        time.Now,
	}
}

func (f *FallbackExtractor) ClassifyDocument(ctx context.Context, input port.DocumentInput) (*domain.Signals, error) {
	return tryInOrder(ctx, f, "classify", func(e port.StructuredExtractor) (*domain.Signals, error) {
		return e.ClassifyDocument(ctx, input)
	})
}

func (f *FallbackExtractor) ExtractStructured(ctx context.Context, input port.ExtractInput) (*port.RawExtraction, error) {
	return tryInOrder(ctx, f, "extract", func(e port.StructuredExtractor) (*port.RawExtraction, error) {
		return e.ExtractStructured(ctx, input)
	})
}

func tryInOrder[T any](ctx context.Context, f *FallbackExtractor, op string, call func(port.StructuredExtractor) (T, error)) (T, error) {
	var zero T
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.extractors {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Info("skipping extractor with open circuit",
				zap.String("extractor", f.names[i]),
				zap.String("op", op),
				zap.Time("reset_at", resetAt))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := call(e)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("extractor failed",
			zap.String("extractor", f.names[i]),
			zap.String("op", op),
			zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	// Either every extractor was skipped or every attempt was rate limited.
	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return zero, NewRateLimitError("all", fmt.Errorf("all extractors rate limited"), retryAfter)
	}

	return zero, fmt.Errorf("all extractors failed: %w", lastErr)
}
