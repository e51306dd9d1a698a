package schema

import (
	"github.com/shopspring/decimal"

	"gasdoc/internal/domain"
)

// FieldSpec declares one extracted field: its name, semantic type and whether it must be present.
type FieldSpec struct {
	Name        string
	Type        domain.ValueKind
	Required    bool
	Default     *decimal.Decimal
	Description string
}

// HasDefault reports whether an absent value resolves to a declared default.
func (f FieldSpec) HasDefault() bool {
	return f.Default != nil
}

// FieldContract is the ordered set of fields an extraction must produce.
type FieldContract []FieldSpec

// Field returns the FieldSpec for name.
func (c FieldContract) Field(name string) (FieldSpec, bool) {
	for _, f := range c {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RowSet declares the repeated item collection of a multi-row document type.
type RowSet struct {
	Name        string
	Description string
	Fields      FieldContract
}

// Entry binds a document type to its field contract, extraction directive and transform.
type Entry struct {
	DocumentType domain.DocumentType
	Header       FieldContract
	Rows         *RowSet
	Directive    string
	Transform    Transform

	envelope *envelopeSchema
}

// MultiRow reports whether the entry extracts a repeated item collection.
func (e *Entry) MultiRow() bool {
	return e.Rows != nil
}

// ValidateEnvelope checks the raw decoded extractor output against the compiled envelope schema.
func (e *Entry) ValidateEnvelope(doc any) error {
	return e.envelope.validate(doc)
}

func num(name, desc string, required bool) FieldSpec {
	return FieldSpec{Name: name, Type: domain.ValueNumber, Required: required, Description: desc}
}

func str(name, desc string, required bool) FieldSpec {
	return FieldSpec{Name: name, Type: domain.ValueText, Required: required, Description: desc}
}

func withDefault(f FieldSpec, d decimal.Decimal) FieldSpec {
	f.Default = &d
	return f
}
