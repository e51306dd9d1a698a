package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyDocument       = errors.New("document content is empty")
	ErrInvalidPDF          = errors.New("document is not a readable PDF")
	ErrInvalidDocumentType = errors.New("invalid document type")

	ErrExtractorUnavailable  = errors.New("structured extractor unavailable")
	ErrSchemaValidation      = errors.New("extracted content does not match schema")
	ErrUnsupportedType       = errors.New("unsupported document type")
	ErrUnregisteredType      = errors.New("document type not registered")
	ErrIncompleteAggregation = errors.New("incomplete aggregation input")
)

// ExtractorUnavailableError wraps a failed call to the external extractor. It is transient.
type ExtractorUnavailableError struct {
	Op  string
	Err error
}

func (e *ExtractorUnavailableError) Error() string {
	return fmt.Sprintf("extractor unavailable during %s: %v", e.Op, e.Err)
}

func (e *ExtractorUnavailableError) Unwrap() error { return e.Err }

func (e *ExtractorUnavailableError) Is(target error) bool {
	return target == ErrExtractorUnavailable
}

// SchemaValidationError names the field whose extracted value broke the field contract.
// Row is -1 for document-level fields.
type SchemaValidationError struct {
	DocumentType DocumentType `json:"documentType"`
	Field        string       `json:"field"`
	Row          int          `json:"row"`
	Expected     string       `json:"expected"`
	Observed     string       `json:"observed"`
}

func (e *SchemaValidationError) Error() string {
	where := e.Field
	if e.Row >= 0 {
		where = fmt.Sprintf("row %d field %s", e.Row, e.Field)
	}
	return fmt.Sprintf("schema validation failed for %s: %s: expected %s, observed %s",
		e.DocumentType, where, e.Expected, e.Observed)
}

func (e *SchemaValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}

// UnsupportedTypeError is returned when extraction or processing is requested for a type
// that cannot be dispatched, most commonly unknown.
type UnsupportedTypeError struct {
	DocumentType DocumentType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("DocumentType=%s cannot be processed", e.DocumentType)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// UnregisteredTypeError is returned by the schema registry for types it has no entry for.
type UnregisteredTypeError struct {
	DocumentType DocumentType
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("no schema registered for document type %q", e.DocumentType)
}

func (e *UnregisteredTypeError) Is(target error) bool {
	return target == ErrUnregisteredType
}

// IncompleteAggregationError means a sum-combine addend was absent after validation,
// which points at a registry/schema mismatch.
type IncompleteAggregationError struct {
	DocumentType DocumentType
	Output       string
	Missing      string
}

func (e *IncompleteAggregationError) Error() string {
	return fmt.Sprintf("cannot compute %s for %s: input %s is missing", e.Output, e.DocumentType, e.Missing)
}

func (e *IncompleteAggregationError) Is(target error) bool {
	return target == ErrIncompleteAggregation
}
