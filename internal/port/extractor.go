package port

import (
	"context"
	"encoding/json"

	"gasdoc/internal/domain"
)

// DocumentInput carries the raw bytes handed to an external extractor.
type DocumentInput struct {
	Content     []byte
	ContentType string
}

// ExtractInput carries everything a structured extraction needs.
type ExtractInput struct {
	Document     DocumentInput
	DocumentType domain.DocumentType
	Directive    string
	Schema       map[string]any // JSON Schema the response must satisfy
}

// RawExtraction is the unvalidated JSON object returned by an extractor.
type RawExtraction struct {
	Data      json.RawMessage
	ModelUsed string
}

// SignalSource gathers textual and structural evidence from a document.
type SignalSource interface {
	ClassifyDocument(ctx context.Context, input DocumentInput) (*domain.Signals, error)
}

// StructuredExtractor abstracts the external, schema-constrained extraction capability.
type StructuredExtractor interface {
	SignalSource
	ExtractStructured(ctx context.Context, input ExtractInput) (*RawExtraction, error)
}
