package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// LLMExtractor implements port.StructuredExtractor on top of a single provider Generator.
type LLMExtractor struct {
	gen        Generator
	maxRetries int
	backoff    time.Duration
}

// LLMOption configures an LLMExtractor.
type LLMOption func(*LLMExtractor)

// WithMaxRetries retries failed generator calls up to n extra times. Rate limit errors are
// never retried here; they are left to FallbackExtractor's circuit.
func WithMaxRetries(n int) LLMOption {
	return func(e *LLMExtractor) { e.maxRetries = n }
}

// WithBackoff sets the base delay between retries; attempt k waits k*d.
func WithBackoff(d time.Duration) LLMOption {
	return func(e *LLMExtractor) { e.backoff = d }
}

// NewLLMExtractor wraps gen as a StructuredExtractor.
func NewLLMExtractor(gen Generator, opts ...LLMOption) *LLMExtractor {
	e := &LLMExtractor{gen: gen, backoff: 500 * time.Millisecond}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *LLMExtractor) ClassifyDocument(ctx context.Context, input port.DocumentInput) (*domain.Signals, error) {
	resp, err := e.generate(ctx, Request{Document: input, Prompt: BuildSignalPrompt()})
	if err != nil {
		return nil, err
	}

	text := CleanJSON(resp.Text)
	var sig domain.Signals
	if err := json.Unmarshal([]byte(text), &sig); err != nil {
		return nil, fmt.Errorf("parsing signal JSON from %s: %w (raw: %s)", resp.Model, err, Truncate(text, 500))
	}
	return &sig, nil
}

func (e *LLMExtractor) ExtractStructured(ctx context.Context, input port.ExtractInput) (*port.RawExtraction, error) {
	prompt, err := BuildExtractionPrompt(input.Directive, input.Schema)
	if err != nil {
		return nil, err
	}

	resp, err := e.generate(ctx, Request{Document: input.Document, Prompt: prompt})
	if err != nil {
		return nil, err
	}

	return &port.RawExtraction{
		Data:      json.RawMessage(CleanJSON(resp.Text)),
		ModelUsed: resp.Model,
	}, nil
}

func (e *LLMExtractor) generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * e.backoff):
			}
		}

		resp, err := e.gen.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}
