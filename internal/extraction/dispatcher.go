package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
	"gasdoc/internal/schema"
)

// LowConfidenceCeiling caps the overall confidence of multi-row extractions with no valid rows.
const LowConfidenceCeiling = 20.0

// Dispatcher resolves the schema entry for a document type, calls the structured
// extractor and validates what comes back against the field contract.
type Dispatcher struct {
	registry  *schema.Registry
	extractor port.StructuredExtractor
	timeout   time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each extractor call.
func WithTimeout(d time.Duration) Option {
	return func(x *Dispatcher) { x.timeout = d }
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(registry *schema.Registry, extractor port.StructuredExtractor, opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: registry, extractor: extractor}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Extract returns the validated ExtractionRecord for doc as type dt. It never classifies.
func (d *Dispatcher) Extract(ctx context.Context, doc domain.Document, dt domain.DocumentType) (*domain.ExtractionRecord, error) {
	if dt == domain.DocTypeUnknown {
		return nil, &domain.UnsupportedTypeError{DocumentType: dt}
	}
	entry, err := d.registry.Lookup(dt)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	raw, err := d.extractor.ExtractStructured(callCtx, port.ExtractInput{
		Document:     port.DocumentInput{Content: doc.Content, ContentType: doc.ContentType},
		DocumentType: dt,
		Directive:    entry.Directive,
		Schema:       entry.ResponseSchema(),
	})
	if err != nil {
		var unavailable *domain.ExtractorUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &domain.ExtractorUnavailableError{Op: "extract", Err: err}
	}

	rec, err := Validate(entry, raw.Data)
	if err != nil {
		return nil, err
	}
	rec.ModelUsed = raw.ModelUsed
	return rec, nil
}

// Validate decodes raw extractor output and checks it against entry's field contract.
func Validate(entry *schema.Entry, data []byte) (*domain.ExtractionRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &domain.SchemaValidationError{
			DocumentType: entry.DocumentType,
			Field:        "/",
			Row:          -1,
			Expected:     "JSON object",
			Observed:     fmt.Sprintf("malformed JSON (%v)", err),
		}
	}
	if err := entry.ValidateEnvelope(doc); err != nil {
		var sve *domain.SchemaValidationError
		if errors.As(err, &sve) {
			sve.DocumentType = entry.DocumentType
		}
		return nil, err
	}
	obj, _ := doc.(map[string]any)

	rec := &domain.ExtractionRecord{
		DocumentType: entry.DocumentType,
		Fields:       domain.Fields{},
	}
	fields, err := validateFields(entry.Header, obj, -1)
	if err != nil {
		err.DocumentType = entry.DocumentType
		return nil, err
	}
	rec.Fields = fields
	rec.OverallConfidence = confidence(obj[schema.OverallConfidenceKey], 0)

	if !entry.MultiRow() {
		return rec, nil
	}

	items, _ := obj[entry.Rows.Name].([]any)
	rec.Rows = []domain.Row{}
	for i, item := range items {
		m, _ := item.(map[string]any)
		rowFields, verr := validateFields(entry.Rows.Fields, m, i)
		if verr != nil {
			verr.DocumentType = entry.DocumentType
			rec.RowIssues = append(rec.RowIssues, *verr)
			continue
		}
		rec.Rows = append(rec.Rows, domain.Row{
			Fields:     rowFields,
			Confidence: confidence(m[schema.RowConfidenceKey], rec.OverallConfidence),
		})
	}
	if len(rec.Rows) == 0 && rec.OverallConfidence > LowConfidenceCeiling {
		rec.OverallConfidence = LowConfidenceCeiling
	}
	return rec, nil
}

func validateFields(contract schema.FieldContract, obj map[string]any, row int) (domain.Fields, *domain.SchemaValidationError) {
	out := make(domain.Fields, len(contract))
	for _, f := range contract {
		raw, present := obj[f.Name]
		v, observed, ok := coerce(f.Type, raw)
		if !ok {
			return nil, &domain.SchemaValidationError{Field: f.Name, Row: row, Expected: string(f.Type), Observed: observed}
		}
		if v.IsNull() && f.Required {
			if !present {
				observed = "missing"
			}
			return nil, &domain.SchemaValidationError{Field: f.Name, Row: row, Expected: string(f.Type), Observed: observed}
		}
		out[f.Name] = v
	}
	return out, nil
}

// coerce converts a decoded JSON value to the declared kind. It returns the observed
// JSON type and false on a mismatch.
func coerce(kind domain.ValueKind, raw any) (domain.Value, string, bool) {
	if raw == nil {
		return domain.Null, "null", true
	}
	switch kind {
	case domain.ValueNumber:
		switch v := raw.(type) {
		case json.Number:
			d, err := decimal.NewFromString(v.String())
			if err != nil {
				return domain.Null, "number " + v.String(), false
			}
			return domain.NumberValue(d), "number", true
		case string:
			if isBlank(v) {
				return domain.Null, "empty string", true
			}
			d, err := ParseNumber(v)
			if err != nil {
				return domain.Null, fmt.Sprintf("string %q", v), false
			}
			return domain.NumberValue(d), "string", true
		}
	case domain.ValueText:
		if s, ok := raw.(string); ok {
			return domain.TextValue(s), "string", true
		}
	}
	return domain.Null, jsonType(raw), false
}

func confidence(raw any, fallback float64) float64 {
	n, ok := raw.(json.Number)
	if !ok {
		return fallback
	}
	f, err := n.Float64()
	if err != nil {
		return fallback
	}
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return f
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
