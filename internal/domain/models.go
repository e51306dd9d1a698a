package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// StructuralFlags are the boolean layout/terminology indicators observed in a document.
type StructuralFlags struct {
	HasMultiplePlatforms   bool `json:"hasMultiplePlatforms"`
	HasMultipleVendors     bool `json:"hasMultipleVendors"`
	HasOperatorStatement   bool `json:"hasOperatorStatement"`
	HasSingleFieldFocus    bool `json:"hasSingleFieldFocus"`
	HasStatementOfAccount  bool `json:"hasStatementOfAccount"`
	HasStatementNumber     bool `json:"hasStatementNumber"`
	HasTotalSaleVolume     bool `json:"hasTotalSaleVolume"`
	HasCTEPSaleVolume      bool `json:"hasCTEPSaleVolume"`
	HasHeatQuantitySection bool `json:"hasHeatQuantitySection"`
	HasVendorInvoiceTable  bool `json:"hasVendorInvoiceTable"`
	HasAccountingData      bool `json:"hasAccountingData"`
}

// Signals is the evidence bundle a signal source reports for one document.
type Signals struct {
	Platforms     []string        `json:"platforms"`
	Vendors       []string        `json:"vendors"`
	Flags         StructuralFlags `json:"flags"`
	Language      Language        `json:"language"`
	KeyTermsFound []string        `json:"keyTermsFound"`
}

// DetectedFeatures is the evidence section of a ClassificationResult.
type DetectedFeatures struct {
	Platforms       []string        `json:"platforms"`
	StructuralFlags StructuralFlags `json:"structuralFlags"`
	Language        Language        `json:"language"`
	KeyTermsFound   []string        `json:"keyTermsFound"`
}

// ClassificationResult is the outcome of running the classifier on one document.
type ClassificationResult struct {
	DocumentType     DocumentType     `json:"documentType"`
	Confidence       int              `json:"confidence"`
	Reasoning        string           `json:"reasoning"`
	DetectedFeatures DetectedFeatures `json:"detectedFeatures"`
}

// Document is an opaque input buffer plus its sniffed content type.
type Document struct {
	Name        string
	Content     []byte
	ContentType string
	Pages       int // 0 when not a PDF
}

// Value is an extracted scalar: an exact decimal number, a string, or null.
type Value struct {
	Kind   ValueKind
	Number decimal.Decimal
	Text   string
}

// Null is the absent value.
var Null = Value{Kind: ValueNull}

// NumberValue wraps an exact decimal.
func NumberValue(d decimal.Decimal) Value { return Value{Kind: ValueNumber, Number: d} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Kind: ValueText, Text: s} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.Kind == ValueNull || v.Kind == "" }

// JSON returns the JSON-serializable form; numbers become json.Number so that the
// exact decimal text survives encoding.
func (v Value) JSON() any {
	switch v.Kind {
	case ValueNumber:
		return json.Number(v.Number.String())
	case ValueText:
		return v.Text
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.JSON())
}

// Fields maps field names to extracted values.
type Fields map[string]Value

// Get returns the named value, or Null when absent.
func (f Fields) Get(name string) Value {
	if v, ok := f[name]; ok {
		return v
	}
	return Null
}

// Row is one validated item of a multi-row document.
type Row struct {
	Fields     Fields  `json:"fields"`
	Confidence float64 `json:"confidence"`
}

// ExtractionRecord is the validated output of one extractor invocation.
type ExtractionRecord struct {
	DocumentType      DocumentType            `json:"documentType"`
	Fields            Fields                  `json:"fields"`
	Rows              []Row                   `json:"rows,omitempty"`
	RowIssues         []SchemaValidationError `json:"rowIssues,omitempty"`
	OverallConfidence float64                 `json:"overallConfidence"`
	ModelUsed         string                  `json:"modelUsed,omitempty"`
}

// OutputRecord is the caller-facing, JSON-serializable mapping produced by a transform.
type OutputRecord map[string]any
