package extractor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gasdoc/internal/domain"
	"gasdoc/internal/extractor"
	"gasdoc/internal/port"
	"gasdoc/mocks"
)

func raw(model string) *port.RawExtraction {
	return &port.RawExtraction{Data: []byte(`{"overall_confidence_score": 80}`), ModelUsed: model}
}

var extractIn = port.ExtractInput{Document: pdf, DocumentType: domain.DocTypeSupplyMultiPlatform}

func TestFallbackExtractor_FirstSucceeds(t *testing.T) {
	e1 := new(mocks.MockStructuredExtractor)
	e2 := new(mocks.MockStructuredExtractor)
	e1.On("ExtractStructured", mock.Anything, extractIn).Return(raw("claude"), nil)

	fe := extractor.NewFallbackExtractor([]port.StructuredExtractor{e1, e2}, []string{"claude", "gemini"}, zap.NewNop())

	out, err := fe.ExtractStructured(context.Background(), extractIn)
	require.NoError(t, err)
	assert.Equal(t, "claude", out.ModelUsed)
	e2.AssertNotCalled(t, "ExtractStructured", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_FirstFails_SecondSucceeds(t *testing.T) {
	e1 := new(mocks.MockStructuredExtractor)
	e2 := new(mocks.MockStructuredExtractor)
	e1.On("ClassifyDocument", mock.Anything, pdf).Return(nil, errors.New("generic error"))
	e2.On("ClassifyDocument", mock.Anything, pdf).Return(&domain.Signals{Platforms: []string{"Arthit"}}, nil)

	fe := extractor.NewFallbackExtractor([]port.StructuredExtractor{e1, e2}, []string{"claude", "gemini"}, nil)

	sig, err := fe.ClassifyDocument(context.Background(), pdf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arthit"}, sig.Platforms)
}

func TestFallbackExtractor_RateLimitOpensCircuit(t *testing.T) {
	e1 := new(mocks.MockStructuredExtractor)
	e2 := new(mocks.MockStructuredExtractor)
	rlErr := extractor.NewRateLimitError("claude", errors.New("429"), time.Minute)
	e1.On("ExtractStructured", mock.Anything, extractIn).Return(nil, rlErr).Once()
	e2.On("ExtractStructured", mock.Anything, extractIn).Return(raw("gemini"), nil)

	fe := extractor.NewFallbackExtractor([]port.StructuredExtractor{e1, e2}, []string{"claude", "gemini"}, zap.NewNop())

	for i := 0; i < 2; i++ {
		out, err := fe.ExtractStructured(context.Background(), extractIn)
		require.NoError(t, err)
		assert.Equal(t, "gemini", out.ModelUsed)
	}
	e1.AssertNumberOfCalls(t, "ExtractStructured", 1)
	e2.AssertNumberOfCalls(t, "ExtractStructured", 2)
}

func TestFallbackExtractor_AllRateLimited(t *testing.T) {
	e1 := new(mocks.MockStructuredExtractor)
	e2 := new(mocks.MockStructuredExtractor)
	e1.On("ExtractStructured", mock.Anything, extractIn).Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 30*time.Second))
	e2.On("ExtractStructured", mock.Anything, extractIn).Return(nil, extractor.NewRateLimitError("gemini", errors.New("429"), 90*time.Second))

	fe := extractor.NewFallbackExtractor([]port.StructuredExtractor{e1, e2}, []string{"claude", "gemini"}, zap.NewNop())

	_, err := fe.ExtractStructured(context.Background(), extractIn)
	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)

	// Both circuits are now open; nothing is called again.
	_, err = fe.ExtractStructured(context.Background(), extractIn)
	require.True(t, errors.As(err, &rlErr))
	e1.AssertNumberOfCalls(t, "ExtractStructured", 1)
	e2.AssertNumberOfCalls(t, "ExtractStructured", 1)
}

func TestFallbackExtractor_AllFail(t *testing.T) {
	e1 := new(mocks.MockStructuredExtractor)
	e2 := new(mocks.MockStructuredExtractor)
	e1.On("ExtractStructured", mock.Anything, extractIn).Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 30*time.Second))
	e2.On("ExtractStructured", mock.Anything, extractIn).Return(nil, errors.New("500 internal"))

	fe := extractor.NewFallbackExtractor([]port.StructuredExtractor{e1, e2}, []string{"claude", "gemini"}, zap.NewNop())

	_, err := fe.ExtractStructured(context.Background(), extractIn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all extractors failed")
	assert.Contains(t, err.Error(), "500 internal")
}

func TestFallbackExtractor_CancelledContext(t *testing.T) {
	e1 := new(mocks.MockStructuredExtractor)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fe := extractor.NewFallbackExtractor([]port.StructuredExtractor{e1}, []string{"claude"}, zap.NewNop())

	_, err := fe.ExtractStructured(ctx, extractIn)
	assert.ErrorIs(t, err, context.Canceled)
	e1.AssertNotCalled(t, "ExtractStructured", mock.Anything, mock.Anything)
}
