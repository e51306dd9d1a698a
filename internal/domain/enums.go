package domain

import (
	"fmt"
	"strings"
)

// FileType represents the accepted document upload formats.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeText FileType = "txt"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeText: "text/plain",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"text/plain":      FileTypeText,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
	"txt": FileTypeText,
}

// DocumentType is the closed set of billing document classes.
type DocumentType string

const (
	DocTypeSupplyMultiPlatform        DocumentType = "supply_multi_platform"
	DocTypeSinglePlatformStatement    DocumentType = "single_platform_statement"
	DocTypeMultiVendorPlatformInvoice DocumentType = "multi_vendor_platform_invoice"
	DocTypeFieldPurchaseInvoice       DocumentType = "field_purchase_invoice"
	DocTypeUnknown                    DocumentType = "unknown"
)

// DocumentTypes returns every classifiable type in registry order. Unknown is not included.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeSupplyMultiPlatform,
		DocTypeSinglePlatformStatement,
		DocTypeMultiVendorPlatformInvoice,
		DocTypeFieldPurchaseInvoice,
	}
}

// ParseDocumentType accepts a document type tag, case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if t == DocTypeUnknown {
		return t, nil
	}
	for _, known := range DocumentTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, s)
}

// Language is the dominant script of a document.
type Language string

const (
	LanguageThai    Language = "thai"
	LanguageEnglish Language = "english"
	LanguageMixed   Language = "mixed"
)

// ValueKind tags the dynamic type carried by a Value.
type ValueKind string

const (
	ValueNull   ValueKind = "null"
	ValueNumber ValueKind = "number"
	ValueText   ValueKind = "string"
)

// TransformKind names the post-processing shape bound to a document type.
type TransformKind string

const (
	TransformIdentity   TransformKind = "identity"
	TransformRename     TransformKind = "rename"
	TransformSumCombine TransformKind = "sum_combine"
)
