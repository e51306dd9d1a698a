package extractor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasdoc/internal/domain"
	"gasdoc/internal/extractor"
	"gasdoc/internal/port"
)

// stubGenerator records the last request and replays a canned response.
type stubGenerator struct {
	text  string
	model string
	err   error
	last  extractor.Request
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, r extractor.Request) (*extractor.Response, error) {
	s.last = r
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &extractor.Response{Text: s.text, Model: s.model}, nil
}

var pdf = port.DocumentInput{Content: []byte("%PDF-1.7"), ContentType: "application/pdf"}

func TestLLMExtractor_ClassifyDocument(t *testing.T) {
	gen := &stubGenerator{
		model: "stub-1",
		text: "```json\n" + `{
			"platforms": ["C5", "G4/48"],
			"vendors": ["Mitsui Oil Exploration"],
			"flags": {"hasHeatQuantitySection": true, "hasAccountingData": true},
			"language": "mixed",
			"keyTermsFound": ["ค่าก๊าซ", "Heat Quantity"]
		}` + "\n```",
	}

	sig, err := extractor.NewLLMExtractor(gen).ClassifyDocument(context.Background(), pdf)
	require.NoError(t, err)

	assert.Equal(t, []string{"C5", "G4/48"}, sig.Platforms)
	assert.True(t, sig.Flags.HasHeatQuantitySection)
	assert.False(t, sig.Flags.HasOperatorStatement)
	assert.Equal(t, domain.LanguageMixed, sig.Language)
	assert.Equal(t, pdf, gen.last.Document)
	assert.Contains(t, gen.last.Prompt, "hasVendorInvoiceTable")
}

func TestLLMExtractor_ClassifyDocument_BadJSON(t *testing.T) {
	gen := &stubGenerator{model: "stub-1", text: "I think this is a supply statement."}

	_, err := extractor.NewLLMExtractor(gen).ClassifyDocument(context.Background(), pdf)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing signal JSON")
}

func TestLLMExtractor_ExtractStructured(t *testing.T) {
	gen := &stubGenerator{model: "stub-2", text: "```json\n{\"overall_confidence_score\": 90}\n```"}

	out, err := extractor.NewLLMExtractor(gen).ExtractStructured(context.Background(), port.ExtractInput{
		Document:     pdf,
		DocumentType: domain.DocTypeFieldPurchaseInvoice,
		Directive:    "Extract the field purchase invoice.",
		Schema:       map[string]any{"type": "object", "required": []string{"overall_confidence_score"}},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"overall_confidence_score": 90}`, string(out.Data))
	assert.Equal(t, "stub-2", out.ModelUsed)
	assert.Contains(t, gen.last.Prompt, "Extract the field purchase invoice.")
	assert.Contains(t, gen.last.Prompt, `"overall_confidence_score"`)
}

func TestLLMExtractor_PropagatesGeneratorError(t *testing.T) {
	rlErr := extractor.NewRateLimitError("stub", errors.New("429"), 5*time.Second)
	gen := &stubGenerator{err: rlErr}

	_, err := extractor.NewLLMExtractor(gen).ExtractStructured(context.Background(), port.ExtractInput{Document: pdf})

	var got *extractor.RateLimitError
	assert.True(t, errors.As(err, &got))
}

// flakyGenerator fails a fixed number of times before succeeding.
type flakyGenerator struct {
	failures int
	err      error
	calls    int
}

func (f *flakyGenerator) Generate(_ context.Context, _ extractor.Request) (*extractor.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &extractor.Response{Text: `{"overall_confidence_score": 60}`, Model: "flaky"}, nil
}

func TestLLMExtractor_RetriesTransientErrors(t *testing.T) {
	gen := &flakyGenerator{failures: 2, err: errors.New("connection reset")}
	ext := extractor.NewLLMExtractor(gen, extractor.WithMaxRetries(2), extractor.WithBackoff(time.Millisecond))

	out, err := ext.ExtractStructured(context.Background(), port.ExtractInput{Document: pdf})
	require.NoError(t, err)
	assert.Equal(t, "flaky", out.ModelUsed)
	assert.Equal(t, 3, gen.calls)
}

func TestLLMExtractor_GivesUpAfterMaxRetries(t *testing.T) {
	gen := &flakyGenerator{failures: 5, err: errors.New("connection reset")}
	ext := extractor.NewLLMExtractor(gen, extractor.WithMaxRetries(1), extractor.WithBackoff(time.Millisecond))

	_, err := ext.ExtractStructured(context.Background(), port.ExtractInput{Document: pdf})
	require.Error(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestLLMExtractor_DoesNotRetryRateLimits(t *testing.T) {
	gen := &flakyGenerator{failures: 1, err: extractor.NewRateLimitError("stub", errors.New("429"), time.Second)}
	ext := extractor.NewLLMExtractor(gen, extractor.WithMaxRetries(3), extractor.WithBackoff(time.Millisecond))

	_, err := ext.ExtractStructured(context.Background(), port.ExtractInput{Document: pdf})
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}
