package extractor

import (
	"context"
	"strings"

	"gasdoc/internal/port"
)

// Request is a single prompt-plus-document call to a model provider.
type Request struct {
	Document port.DocumentInput
	Prompt   string
}

// Response is the raw text a provider produced for a Request.
type Response struct {
	Text  string
	Model string
}

// Generator is the provider-level primitive: send a document and a prompt, get JSON text back.
// Providers live in subpackages and register themselves via RegisterProvider.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// CleanJSON strips whitespace and markdown code fences that models sometimes wrap around JSON.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// Truncate shortens s for inclusion in error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
