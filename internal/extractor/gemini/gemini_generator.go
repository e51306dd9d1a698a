package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"gasdoc/internal/config"
	"gasdoc/internal/extractor"
)

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

func init() {
	extractor.RegisterProvider("gemini", func(cfg *config.ExtractorProviderConfig) (extractor.Generator, error) {
		return NewGenerator(cfg), nil
	})
}

// Generator implements extractor.Generator on the Gemini generateContent API.
type Generator struct {
	api   *extractor.HTTPAPI
	model string
}

func NewGenerator(cfg *config.ExtractorProviderConfig) *Generator {
	return NewGeneratorWithEndpoint(cfg, "")
}

// NewGeneratorWithEndpoint overrides the generateContent URL. An empty endpoint derives it
// from the model name.
func NewGeneratorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Generator {
	model := extractor.ModelOrDefault(cfg, "gemini-2.0-flash")
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	header := http.Header{}
	header.Set("x-goog-api-key", cfg.APIKey)
	return &Generator{
		api:   extractor.NewHTTPAPI("gemini", endpoint, header, cfg),
		model: model,
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	InlineData *inlineData `json:"inline_data,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	Temperature      float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func (g *Generator) Generate(ctx context.Context, r extractor.Request) (*extractor.Response, error) {
	switch r.Document.ContentType {
	case "application/pdf", "text/plain":
	default:
		return nil, fmt.Errorf("unsupported content type for extraction: %s", r.Document.ContentType)
	}

	payload := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: r.Document.ContentType,
					Data:     base64.StdEncoding.EncodeToString(r.Document.Content),
				}},
				{Text: r.Prompt},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			MaxOutputTokens:  16384,
		},
	}

	var resp generateResponse
	if err := g.api.PostJSON(ctx, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == "MAX_TOKENS" {
		return nil, fmt.Errorf("gemini output truncated (finishReason: MAX_TOKENS)")
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("gemini returned no text parts")
	}
	return &extractor.Response{Text: sb.String(), Model: g.model}, nil
}
