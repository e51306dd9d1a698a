package vertex

import (
	"context"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasdoc/internal/config"
)

func TestNewGenerator_RequiresProjectAndRegion(t *testing.T) {
	_, err := NewGenerator(context.Background(), &config.ExtractorProviderConfig{Region: "asia-southeast1"})
	assert.Error(t, err)

	_, err = NewGenerator(context.Background(), &config.ExtractorProviderConfig{Project: "gas-billing"})
	assert.Error(t, err)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"platforms":`),
				genai.Blob{MIMEType: "image/png", Data: []byte{0x89}},
				genai.Text(`["C5"]}`),
			}},
			FinishReason: genai.FinishReasonStop,
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"platforms":["C5"]}`, text)
}

func TestResponseText_Errors(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, "no candidates"},
		{"no candidates", &genai.GenerateContentResponse{}, "no candidates"},
		{
			"truncated",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content:      &genai.Content{Parts: []genai.Part{genai.Text("{")}},
				FinishReason: genai.FinishReasonMaxTokens,
			}}},
			"MAX_TOKENS",
		},
		{
			"no text parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
			}}},
			"no text parts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responseText(tt.resp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
