package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"gasdoc/internal/domain"
)

// OverallConfidenceKey is the envelope key carrying the extractor's overall confidence score.
const OverallConfidenceKey = "overall_confidence_score"

// RowConfidenceKey is the per-row confidence key.
const RowConfidenceKey = "confidence_score"

type envelopeSchema struct {
	compiled *jsonschema.Schema
}

// envelopeDocument is the loose structural shape every extractor response must have:
// an object, a numeric overall confidence and, for multi-row types, an array of objects.
// Field-level contracts are checked separately so that bad rows can be dropped individually.
func envelopeDocument(e *Entry) map[string]any {
	props := map[string]any{
		OverallConfidenceKey: map[string]any{"type": "number"},
	}
	if e.MultiRow() {
		props[e.Rows.Name] = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		}
	}
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
}

func compileEnvelope(e *Entry) (*envelopeSchema, error) {
	b, err := json.Marshal(envelopeDocument(e))
	if err != nil {
		return nil, fmt.Errorf("marshal envelope schema: %w", err)
	}
	url := fmt.Sprintf("%s.envelope.json", e.DocumentType)
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add envelope schema: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}
	return &envelopeSchema{compiled: s}, nil
}

func (s *envelopeSchema) validate(doc any) error {
	if s == nil {
		return nil
	}
	if err := s.compiled.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return &domain.SchemaValidationError{
				Field:    envelopeLocation(ve),
				Row:      -1,
				Expected: "extraction envelope",
				Observed: ve.Message,
			}
		}
		return fmt.Errorf("validate envelope: %w", err)
	}
	return nil
}

// envelopeLocation returns the deepest instance location of a validation failure.
func envelopeLocation(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return "/"
	}
	return ve.InstanceLocation
}

// ResponseSchema renders the JSON Schema handed to the extractor as its structured-output
// constraint. Nullable optional fields are expressed as type unions.
func (e *Entry) ResponseSchema() map[string]any {
	props := map[string]any{}
	var required []string
	for _, f := range e.Header {
		props[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	if e.MultiRow() {
		rowProps := map[string]any{
			RowConfidenceKey: map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     100,
				"description": "Confidence score (0-100) for this item.",
			},
		}
		var rowRequired []string
		for _, f := range e.Rows.Fields {
			rowProps[f.Name] = fieldSchema(f)
			if f.Required {
				rowRequired = append(rowRequired, f.Name)
			}
		}
		item := map[string]any{"type": "object", "properties": rowProps}
		if len(rowRequired) > 0 {
			item["required"] = rowRequired
		}
		props[e.Rows.Name] = map[string]any{
			"type":        "array",
			"description": e.Rows.Description,
			"items":       item,
		}
		required = append(required, e.Rows.Name)
	}
	props[OverallConfidenceKey] = map[string]any{
		"type":        "number",
		"minimum":     0,
		"maximum":     100,
		"description": "Overall confidence score (0-100) for the entire extraction.",
	}
	required = append(required, OverallConfidenceKey)

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func fieldSchema(f FieldSpec) map[string]any {
	t := "string"
	if f.Type == domain.ValueNumber {
		t = "number"
	}
	s := map[string]any{"description": f.Description}
	if f.Required {
		s["type"] = t
	} else {
		s["type"] = []string{t, "null"}
	}
	return s
}
