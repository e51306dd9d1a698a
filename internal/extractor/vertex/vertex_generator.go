package vertex

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gasdoc/internal/config"
	"gasdoc/internal/extractor"
)

func init() {
	extractor.RegisterProvider("vertex", func(cfg *config.ExtractorProviderConfig) (extractor.Generator, error) {
		return NewGenerator(context.Background(), cfg)
	})
}

// Generator implements extractor.Generator using Gemini models served from Vertex AI.
// Credentials come from Application Default Credentials.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a Vertex AI client for cfg.Project in cfg.Region.
func NewGenerator(ctx context.Context, cfg *config.ExtractorProviderConfig) (*Generator, error) {
	if cfg.Project == "" || cfg.Region == "" {
		return nil, fmt.Errorf("vertex: project and region cannot be empty")
	}
	client, err := genai.NewClient(ctx, cfg.Project, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, r extractor.Request) (*extractor.Response, error) {
	switch r.Document.ContentType {
	case "application/pdf", "text/plain":
	default:
		return nil, fmt.Errorf("unsupported content type for extraction: %s", r.Document.ContentType)
	}

	model := g.client.GenerativeModel(g.model)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
		MaxOutputTokens:  genai.Ptr[int32](16384),
	}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: r.Document.ContentType, Data: r.Document.Content},
		genai.Text(r.Prompt))
	if err != nil {
		if status.Code(err) == codes.ResourceExhausted {
			return nil, extractor.NewRateLimitError("vertex", err, 0)
		}
		return nil, fmt.Errorf("calling vertex AI: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return &extractor.Response{Text: text, Model: g.model}, nil
}

// Close releases the underlying client connection.
func (g *Generator) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("output truncated (finish_reason: MAX_TOKENS): response exceeded output token limit")
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from API: no text parts")
	}
	return sb.String(), nil
}
