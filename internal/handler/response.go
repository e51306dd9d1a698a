package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gasdoc/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response. Details carries the structured
// error payload where one exists, e.g. the offending field of a schema violation.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, txt"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest, "EMPTY_DOCUMENT", "document content is empty"
	case errors.Is(err, domain.ErrInvalidPDF):
		return http.StatusBadRequest, "INVALID_PDF", "document is not a readable PDF"
	case errors.Is(err, domain.ErrInvalidDocumentType):
		return http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", err.Error()
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest, "UNSUPPORTED_DOCUMENT_TYPE", err.Error()
	case errors.Is(err, domain.ErrUnregisteredType):
		return http.StatusBadRequest, "UNREGISTERED_DOCUMENT_TYPE", err.Error()
	case errors.Is(err, domain.ErrSchemaValidation):
		return http.StatusUnprocessableEntity, "SCHEMA_VALIDATION_FAILED", err.Error()
	case errors.Is(err, domain.ErrIncompleteAggregation):
		return http.StatusInternalServerError, "INCOMPLETE_AGGREGATION", err.Error()
	case errors.Is(err, domain.ErrExtractorUnavailable):
		return http.StatusServiceUnavailable, "EXTRACTOR_UNAVAILABLE", "structured extractor is unavailable; retry later"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// errorDetails returns the structured payload of typed domain errors.
func errorDetails(err error) interface{} {
	var sve *domain.SchemaValidationError
	if errors.As(err, &sve) {
		return sve
	}
	var iae *domain.IncompleteAggregationError
	if errors.As(err, &iae) {
		return gin.H{"documentType": iae.DocumentType, "output": iae.Output, "missing": iae.Missing}
	}
	return nil
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, logger *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		logger.Error("request failed",
			zap.Any("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg, Details: errorDetails(err)},
	})
}
