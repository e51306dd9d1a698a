package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"gasdoc/internal/config"
	"gasdoc/internal/extractor"
	"gasdoc/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	maxTokens  = 16384
)

func init() {
	extractor.RegisterProvider("claude", func(cfg *config.ExtractorProviderConfig) (extractor.Generator, error) {
		return NewGenerator(cfg), nil
	})
}

// Generator implements extractor.Generator on the Anthropic Messages API.
type Generator struct {
	api   *extractor.HTTPAPI
	model string
}

func NewGenerator(cfg *config.ExtractorProviderConfig) *Generator {
	return NewGeneratorWithEndpoint(cfg, apiURL)
}

// NewGeneratorWithEndpoint points the generator at a different Messages endpoint.
func NewGeneratorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Generator {
	header := http.Header{}
	header.Set("x-api-key", cfg.APIKey)
	header.Set("anthropic-version", apiVersion)
	return &Generator{
		api:   extractor.NewHTTPAPI("claude", endpoint, header, cfg),
		model: extractor.ModelOrDefault(cfg, "claude-sonnet-4-20250514"),
	}
}

type source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type block struct {
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	Source *source `json:"source,omitempty"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (g *Generator) Generate(ctx context.Context, r extractor.Request) (*extractor.Response, error) {
	doc, err := documentBlock(r.Document)
	if err != nil {
		return nil, err
	}

	payload := messagesRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role:    "user",
			Content: []block{doc, {Type: "text", Text: r.Prompt}},
		}},
	}

	var resp messagesResponse
	if err := g.api.PostJSON(ctx, payload, &resp); err != nil {
		return nil, err
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("claude output truncated (stop_reason: max_tokens)")
	}
	for _, c := range resp.Content {
		if c.Type == "text" || c.Type == "" {
			return &extractor.Response{Text: c.Text, Model: g.model}, nil
		}
	}
	return nil, fmt.Errorf("claude returned no text content")
}

func documentBlock(doc port.DocumentInput) (block, error) {
	switch doc.ContentType {
	case "application/pdf":
		return block{Type: "document", Source: &source{
			Type:      "base64",
			MediaType: doc.ContentType,
			Data:      base64.StdEncoding.EncodeToString(doc.Content),
		}}, nil
	case "text/plain":
		return block{Type: "document", Source: &source{
			Type:      "text",
			MediaType: doc.ContentType,
			Data:      string(doc.Content),
		}}, nil
	default:
		return block{}, fmt.Errorf("unsupported content type for extraction: %s", doc.ContentType)
	}
}
