package extractor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasdoc/internal/extractor"
)

func TestRateLimitedGenerator_FirstCallImmediate(t *testing.T) {
	gen := &stubGenerator{text: "{}", model: "stub"}
	rl := extractor.NewRateLimitedGenerator(gen, 60)

	resp, err := rl.Generate(context.Background(), extractor.Request{})
	require.NoError(t, err)
	assert.Equal(t, "stub", resp.Model)
	assert.Equal(t, 1, gen.calls)
}

func TestRateLimitedGenerator_WaitRespectsDeadline(t *testing.T) {
	gen := &stubGenerator{text: "{}"}
	rl := extractor.NewRateLimitedGenerator(gen, 1) // one request per minute

	_, err := rl.Generate(context.Background(), extractor.Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.Generate(ctx, extractor.Request{})

	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}
