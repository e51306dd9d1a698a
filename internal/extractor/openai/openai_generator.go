package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"gasdoc/internal/config"
	"gasdoc/internal/extractor"
	"gasdoc/internal/port"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

func init() {
	extractor.RegisterProvider("openai", func(cfg *config.ExtractorProviderConfig) (extractor.Generator, error) {
		return NewGenerator(cfg), nil
	})
}

// Generator implements extractor.Generator on OpenAI chat completions in JSON mode.
type Generator struct {
	api   *extractor.HTTPAPI
	model string
}

func NewGenerator(cfg *config.ExtractorProviderConfig) *Generator {
	return NewGeneratorWithEndpoint(cfg, apiURL)
}

// NewGeneratorWithEndpoint points the generator at a compatible chat completions endpoint.
func NewGeneratorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Generator {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)
	return &Generator{
		api:   extractor.NewHTTPAPI("openai", endpoint, header, cfg),
		model: extractor.ModelOrDefault(cfg, "gpt-4o"),
	}
}

type fileRef struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type contentPart struct {
	Type string   `json:"type"`
	Text string   `json:"text,omitempty"`
	File *fileRef `json:"file,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string         `json:"model"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
	Messages            []chatMessage  `json:"messages"`
	ResponseFormat      responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (g *Generator) Generate(ctx context.Context, r extractor.Request) (*extractor.Response, error) {
	doc, err := documentPart(r.Document)
	if err != nil {
		return nil, err
	}

	payload := chatRequest{
		Model:               g.model,
		MaxCompletionTokens: 16384,
		Messages: []chatMessage{{
			Role:    "user",
			Content: []contentPart{doc, {Type: "text", Text: r.Prompt}},
		}},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	var resp chatResponse
	if err := g.api.PostJSON(ctx, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("openai output truncated (finish_reason: length)")
	}
	return &extractor.Response{Text: resp.Choices[0].Message.Content, Model: g.model}, nil
}

// documentPart inlines text documents and attaches PDFs as base64 data URIs.
func documentPart(doc port.DocumentInput) (contentPart, error) {
	switch doc.ContentType {
	case "application/pdf":
		uri := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(doc.Content)
		return contentPart{Type: "file", File: &fileRef{Filename: "document.pdf", FileData: uri}}, nil
	case "text/plain":
		return contentPart{Type: "text", Text: "DOCUMENT TEXT:\n" + string(doc.Content)}, nil
	default:
		return contentPart{}, fmt.Errorf("unsupported content type for extraction: %s", doc.ContentType)
	}
}
